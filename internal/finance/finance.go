// internal/finance/finance.go

// Package finance computes ROI metrics from editable financial estimates.
package finance

import (
	"math"

	"idea-lab/internal/models"
)

// Infinite is returned for break-even values that are never reached.
var Infinite = math.Inf(1)

// Metrics are derived from FinancialEstimates and a LandedCost adjustment.
type Metrics struct {
	Margin             float64 `json:"margin"`
	MonthlyProfit      float64 `json:"monthlyProfit"`
	BreakEvenUnits     float64 `json:"breakEvenUnits"`
	BreakEvenMonths    float64 `json:"breakEvenMonths"`
	AdjustedInvestment float64 `json:"adjustedInvestment"`
	Duty               float64 `json:"duty"`
	VAT                float64 `json:"vat"`
}

// IsInfinite reports whether v is the never-breaks-even sentinel.
func IsInfinite(v float64) bool {
	return math.IsInf(v, 1)
}

// Calculate is pure; call it again after any input change.
func Calculate(est models.FinancialEstimates, lc models.LandedCost) Metrics {
	m := Metrics{}
	m.Margin = est.PricePerUnit - est.CostPerUnit
	m.MonthlyProfit = m.Margin*est.EstimatedMonthlySales - est.MonthlyFixedCosts

	m.AdjustedInvestment = est.InitialInvestment
	if lc.Enabled {
		m.Duty = est.InitialInvestment * lc.CustomsPercent / 100
		taxable := est.InitialInvestment + m.Duty + lc.Shipping
		m.VAT = taxable * lc.VATPercent / 100
		m.AdjustedInvestment = est.InitialInvestment + lc.Shipping + m.Duty + m.VAT + lc.Fees
	}

	m.BreakEvenUnits = Infinite
	if m.Margin > 0 {
		m.BreakEvenUnits = math.Ceil(est.MonthlyFixedCosts / m.Margin)
	}
	m.BreakEvenMonths = Infinite
	if m.MonthlyProfit > 0 {
		m.BreakEvenMonths = math.Ceil(m.AdjustedInvestment / m.MonthlyProfit)
	}
	return m
}

// JSONSafe replaces infinite sentinels with -1 so the metrics survive
// encoding/json, which rejects Inf.
func (m Metrics) JSONSafe() Metrics {
	if IsInfinite(m.BreakEvenUnits) {
		m.BreakEvenUnits = -1
	}
	if IsInfinite(m.BreakEvenMonths) {
		m.BreakEvenMonths = -1
	}
	return m
}
