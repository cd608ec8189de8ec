// Package fees computes processing and platform fees for payment quoting and
// reconciliation. Everything in here is pure - no state, no I/O.
package fees

import (
	"math"

	"github.com/Lucid-Directions/cashapp-fynlo-sub009/internal/domain"
)

// DefaultPlatformRate is the platform fee percentage applied when no
// per-method override is configured. Cash is always exempt.
const DefaultPlatformRate = 1.0

// Breakdown is the full fee picture for one amount and method.
type Breakdown struct {
	ProcessingFee float64 `json:"processing_fee"`
	PlatformFee   float64 `json:"platform_fee"`
	TotalFee      float64 `json:"total_fee"`
	NetAmount     float64 `json:"net_amount"`
}

// PlatformFee returns the platform fee for the amount and method. Rates are
// percentages keyed by method; a missing entry falls back to
// DefaultPlatformRate. Cash always carries a zero platform fee.
func PlatformFee(amount float64, method domain.MethodID, rates map[domain.MethodID]float64) float64 {
	if method == domain.MethodCash {
		return 0
	}
	rate := DefaultPlatformRate
	if r, ok := rates[method]; ok {
		rate = r
	}
	return round2(amount * rate / 100)
}

// Combine assembles a Breakdown from already-computed fee amounts. NetAmount
// is clamped at zero so a misconfigured fee schedule can never produce a
// negative settlement figure.
func Combine(amount, processingFee, platformFee float64) Breakdown {
	total := round2(processingFee + platformFee)
	net := round2(amount - total)
	if net < 0 {
		net = 0
	}
	return Breakdown{
		ProcessingFee: round2(processingFee),
		PlatformFee:   round2(platformFee),
		TotalFee:      total,
		NetAmount:     net,
	}
}

// Totals computes the full breakdown from percentage rates: processingRate is
// the method's nominal processing percentage, the platform rate comes from the
// rates table.
func Totals(amount, processingRate float64, method domain.MethodID, rates map[domain.MethodID]float64) Breakdown {
	processing := round2(amount * processingRate / 100)
	platform := PlatformFee(amount, method, rates)
	return Combine(amount, processing, platform)
}

// round2 rounds to two decimal places, the smallest unit we settle in.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
