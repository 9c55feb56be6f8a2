// Package categorise assigns business categories to statement descriptions
// using an ordered keyword rule list. The first matching rule wins.
package categorise

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
)

// Rule maps any of its keywords to a category.
type Rule struct {
	Keywords   []string         `yaml:"keywords"`
	Category   model.Category   `yaml:"category"`
	Confidence model.Confidence `yaml:"confidence"`
}

// Result is the outcome of categorising one description.
type Result struct {
	Category   model.Category
	Confidence model.Confidence
}

// Engine evaluates rules in the order they were given.
type Engine struct {
	rules []Rule
}

// New creates an Engine. Keywords are lower-cased once here.
func New(rules []Rule) *Engine {
	norm := make([]Rule, len(rules))
	for i, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				kws = append(kws, k)
			}
		}
		conf := r.Confidence
		if conf == "" {
			conf = model.ConfidenceMedium
		}
		norm[i] = Rule{Keywords: kws, Category: r.Category, Confidence: conf}
	}
	return &Engine{rules: norm}
}

// Default returns an Engine over DefaultRules.
func Default() *Engine {
	return New(DefaultRules())
}

// Rules returns the engine's rules in evaluation order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Categorise matches description and vendor against the rules. Without a
// match the result is OTHER with LOW confidence.
func (e *Engine) Categorise(description, vendor string) Result {
	text := strings.ToLower(description + " " + vendor)
	for _, r := range e.rules {
		for _, k := range r.Keywords {
			if strings.Contains(text, k) {
				return Result{Category: r.Category, Confidence: r.Confidence}
			}
		}
	}
	return Result{Category: model.CategoryOther, Confidence: model.ConfidenceLow}
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadFile reads a YAML rule list. Rule order in the file is evaluation order.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	for i, r := range rf.Rules {
		if r.Category == "" {
			return nil, fmt.Errorf("rule %d: missing category", i+1)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d: no keywords", i+1)
		}
		switch r.Confidence {
		case "", model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow:
		default:
			return nil, fmt.Errorf("rule %d: unknown confidence %q", i+1, r.Confidence)
		}
	}
	return rf.Rules, nil
}

// SaveFile writes rules in the format LoadFile reads.
func SaveFile(path string, rules []Rule) error {
	data, err := yaml.Marshal(ruleFile{Rules: rules})
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
