package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LebsNeo/mrmoney-sub000/internal/categorise"
	"github.com/LebsNeo/mrmoney-sub000/internal/config"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default config and categorisation rule file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized mrmoney at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")

	return cmd
}

func runInit(dir string, force bool) error {
	for _, d := range []string{"rules", "logs", "imports"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	rulesPath := filepath.Join("rules", "categorisation-rules.yaml")
	if err := categorise.SaveFile(filepath.Join(dir, rulesPath), categorise.DefaultRules()); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	cfg := config.Default()
	cfg.Import.RulesPath = rulesPath
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	env := "# MRMONEY_DATABASE_PATH=mrmoney.db\n# MRMONEY_LOG_LEVEL=debug\n"
	if err := os.WriteFile(filepath.Join(dir, ".env.example"), []byte(env), 0o644); err != nil {
		return fmt.Errorf("writing .env.example: %w", err)
	}
	gitignore := "*.db\n*.db-wal\n*.db-shm\n.env\nlogs/\nimports/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
