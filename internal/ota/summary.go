package ota

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/LebsNeo/mrmoney-sub000/internal/model"
)

// ReconcileTolerance is how far figures may drift before a soft warning.
var ReconcileTolerance = decimal.NewFromInt(1)

// summarise totals the batches, fixes the period and appends reconciliation
// warnings. Differences never fail an import.
func summarise(platform string, payouts []model.ParsedOTAPayout, bookingCount int, warnings []string) model.OTAImportResult {
	res := model.OTAImportResult{
		Platform:         platform,
		Payouts:          payouts,
		TotalGross:       decimal.Zero,
		TotalCommission:  decimal.Zero,
		TotalServiceFees: decimal.Zero,
		TotalNet:         decimal.Zero,
		BookingCount:     bookingCount,
		Warnings:         append([]string{}, warnings...),
	}
	if res.Payouts == nil {
		res.Payouts = []model.ParsedOTAPayout{}
	}

	for _, p := range payouts {
		res.TotalGross = res.TotalGross.Add(p.TotalGross())
		res.TotalCommission = res.TotalCommission.Add(p.TotalCommission())
		res.TotalServiceFees = res.TotalServiceFees.Add(p.TotalServiceFees())
		res.TotalNet = res.TotalNet.Add(p.TotalNet())

		if !p.PayoutDate.IsZero() {
			d := p.PayoutDate
			if res.PeriodStart == nil || d.Before(*res.PeriodStart) {
				res.PeriodStart = &d
			}
			if res.PeriodEnd == nil || d.After(*res.PeriodEnd) {
				res.PeriodEnd = &d
			}
		}
		res.Warnings = append(res.Warnings, reconcile(p)...)
	}
	return res
}

// reconcile compares each booking's deductions with its net and the batch's
// declared amount with the sum of nets.
func reconcile(p model.ParsedOTAPayout) []string {
	var warns []string
	for _, it := range p.Items {
		if it.Status != model.StatusOkay || it.Gross.IsZero() {
			continue
		}
		expected := it.Gross.Sub(it.Commission).Sub(it.ServiceFee).Sub(it.VAT)
		if diff := expected.Sub(it.Net); diff.Abs().GreaterThan(ReconcileTolerance) {
			warns = append(warns, fmt.Sprintf("booking %s: gross less deductions is %s but net is %s (difference %s)",
				it.ExternalRef, expected.StringFixed(2), it.Net.StringFixed(2), diff.StringFixed(2)))
		}
	}
	if p.Declared && len(p.Items) > 0 {
		if diff := p.PayoutAmount.Sub(p.TotalNet()); diff.Abs().GreaterThan(ReconcileTolerance) {
			warns = append(warns, fmt.Sprintf("payout %s: declared %s but line-items net to %s (difference %s)",
				p.Reference, p.PayoutAmount.StringFixed(2), p.TotalNet().StringFixed(2), diff.StringFixed(2)))
		}
	}
	return warns
}

// normaliseStatus maps platform status spellings onto the stored values.
func normaliseStatus(s string) string {
	switch lower(s) {
	case "", "ok", "okay", "confirmed", "completed", "paid":
		return model.StatusOkay
	case "cancelled", "canceled", "cancellation", "no_show", "no show":
		return model.StatusCanceled
	default:
		return s
	}
}
