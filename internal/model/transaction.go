package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FlowDirection says whether money came in or went out.
type FlowDirection string

const (
	FlowIncome  FlowDirection = "INCOME"
	FlowExpense FlowDirection = "EXPENSE"
)

// Category is the business category assigned to a transaction.
type Category string

const (
	CategoryOTAPayout      Category = "OTA_PAYOUT"
	CategoryGuestPayment   Category = "GUEST_PAYMENT"
	CategoryCleaning       Category = "CLEANING"
	CategoryLaundry        Category = "LAUNDRY"
	CategoryUtilities      Category = "UTILITIES"
	CategoryMaintenance    Category = "MAINTENANCE"
	CategorySalaries       Category = "SALARIES"
	CategorySupplies       Category = "SUPPLIES"
	CategoryFoodBeverage   Category = "FOOD_AND_BEVERAGE"
	CategoryMarketing      Category = "MARKETING"
	CategoryCommission     Category = "COMMISSION"
	CategorySoftware       Category = "SOFTWARE"
	CategoryInsurance      Category = "INSURANCE"
	CategoryBankCharges    Category = "BANK_CHARGES"
	CategoryTaxes          Category = "TAXES"
	CategoryRent           Category = "RENT"
	CategoryTransport      Category = "TRANSPORT"
	CategoryProfessional   Category = "PROFESSIONAL_SERVICES"
	CategoryOwnerTransfers Category = "OWNER_TRANSFERS"
	CategoryOther          Category = "OTHER"
)

// Confidence is a coarse quality label for an automatically assigned category.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Scope identifies where imported rows belong.
type Scope struct {
	PropertyID     string `json:"propertyId"`
	OrganisationID string `json:"organisationId"`
}

// BankRow is what a dialect produces for one data line.
type BankRow struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // signed as the bank reports it
}

// ParsedTransaction is one normalized bank statement row. It is never
// mutated after creation; re-importing creates a new record.
type ParsedTransaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // always non-negative
	Flow        FlowDirection   `json:"flow"`
	Category    Category        `json:"category"`
	Confidence  Confidence      `json:"confidence"`
	Duplicate   bool            `json:"duplicate"`
	RawLine     string          `json:"rawLine"`
}

// StoredTransaction is a previously persisted transaction as seen by the
// duplicate detector.
type StoredTransaction struct {
	ID         string
	PropertyID string
	Date       time.Time
	Amount     decimal.Decimal
	Flow       FlowDirection
}

// BankImportResult is the outcome of parsing one bank statement file.
type BankImportResult struct {
	Dialect             string              `json:"dialect"`
	Transactions        []ParsedTransaction `json:"transactions"`
	PotentialDuplicates []ParsedTransaction `json:"potentialDuplicates"`
	Unrecognised        []string            `json:"unrecognised"`
}
