package categorise

import "github.com/LebsNeo/mrmoney-sub000/internal/model"

// DefaultRules returns the built-in hospitality rule list. Order is load
// bearing: cleaning and laundry come before the generic booking keywords,
// and platform payouts come before guest payments.
func DefaultRules() []Rule {
	return []Rule{
		{Keywords: []string{"cleaning", "cleaner", "housekeeping", "domestic"}, Category: model.CategoryCleaning, Confidence: model.ConfidenceHigh},
		{Keywords: []string{"laundry", "linen", "dry clean"}, Category: model.CategoryLaundry, Confidence: model.ConfidenceHigh},
		{Keywords: []string{"commission"}, Category: model.CategoryCommission, Confidence: model.ConfidenceHigh},
		{Keywords: []string{"booking.com", "airbnb", "lekkerslaap", "expedia", "payout"}, Category: model.CategoryOTAPayout, Confidence: model.ConfidenceHigh},
		{Keywords: []string{"booking", "reservation", "deposit", "guest", "accommodation"}, Category: model.CategoryGuestPayment, Confidence: model.ConfidenceMedium},
		{Keywords: []string{"eskom", "electricity", "prepaid elec", "water", "municipal", "rates"}, Category: model.CategoryUtilities, Confidence: model.ConfidenceHigh},
		{Keywords: []string{"telkom", "vodacom", "mtn", "internet", "fibre", "wifi"}, Category: model.CategoryUtilities, Confidence: model.ConfidenceMedium},
		{Keywords: []string{"salary", "salaries", "wages", "payroll", "uif"}, Category: model.CategorySalaries, Confidence: model.ConfidenceHigh},
		{Keywords: []string{"plumb", "electrician", "repair", "maintenance", "hardware", "builders", "paint"}, Category: model.CategoryMaintenance, Confidence: model.ConfidenceMedium},
		{Keywords: []string{"makro", "game stores", "toiletries", "amenities", "supplies"}, Category: model.CategorySupplies, Confidence: model.ConfidenceMedium},
		{Keywords: []string{"woolworths", "checkers", "pick n pay", "spar", "shoprite", "restaurant", "coffee", "bakery"}, Category: model.CategoryFoodBeverage, Confidence: model.ConfidenceMedium},
		{Keywords: []string{"google ads", "facebook", "meta", "advert", "marketing"}, Category: model.CategoryMarketing, Confidence: model.ConfidenceMedium},
		{Keywords: []string{"software", "subscription", "channel manager", "nightsbridge", "microsoft", "xero"}, Category: model.CategorySoftware, Confidence: model.ConfidenceMedium},
		{Keywords: []string{"insurance", "santam", "outsurance", "hollard"}, Category: model.CategoryInsurance, Confidence: model.ConfidenceHigh},
		{Keywords: []string{"bank charge", "service fee", "monthly fee", "admin fee", "cash deposit fee", "interest"}, Category: model.CategoryBankCharges, Confidence: model.ConfidenceHigh},
		{Keywords: []string{"sars", "vat", "provisional tax", "paye"}, Category: model.CategoryTaxes, Confidence: model.ConfidenceHigh},
		{Keywords: []string{"rent", "lease", "bond"}, Category: model.CategoryRent, Confidence: model.ConfidenceMedium},
		{Keywords: []string{"engen", "shell", "sasol", "bp ", "caltex", "fuel", "uber"}, Category: model.CategoryTransport, Confidence: model.ConfidenceMedium},
		{Keywords: []string{"accountant", "attorney", "legal", "audit", "consult"}, Category: model.CategoryProfessional, Confidence: model.ConfidenceMedium},
		{Keywords: []string{"transfer", "owner", "drawings"}, Category: model.CategoryOwnerTransfers, Confidence: model.ConfidenceLow},
	}
}
