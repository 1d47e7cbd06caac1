// Copyright 2026 Peter Edge
//
// All rights reserved.

package schwabctlreport

import (
	"strconv"
	"time"

	"github.com/bufdev/schwabctl/internal/pkg/mathdec"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlbalances"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctllot"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlrollup"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlverify"
	"github.com/shopspring/decimal"
)

// RowOverview represents a single row of the row log for display.
type RowOverview struct {
	// Time is the transaction time in the configured timezone.
	Time string `json:"time"`
	// Type is the broker transaction type.
	Type string `json:"type"`
	// SubType is the broker sub-type.
	SubType string `json:"sub_type,omitempty"`
	// Ref is the transaction ID or order ID.
	Ref string `json:"ref,omitempty"`
	// Description is the broker description.
	Description string `json:"description"`
	// SubAccount is the broker sub-account.
	SubAccount string `json:"sub_account,omitempty"`
	// Symbol is the affected symbol.
	Symbol string `json:"symbol,omitempty"`
	// Instruction is the normalized instruction.
	Instruction string `json:"instruction,omitempty"`
	// Amount is the item amount.
	Amount string `json:"amount,omitempty"`
	// Price is the item price.
	Price string `json:"price,omitempty"`
	// NetAmount is the transaction net amount.
	NetAmount string `json:"net_amount"`
	// Commission is the commission fee.
	Commission string `json:"commission"`
	// RegFee is the regulatory fee.
	RegFee string `json:"reg_fee"`
	// PositionEffect is the broker position effect followed by diagnostic labels.
	PositionEffect string `json:"position_effect,omitempty"`
	// Quantity is the symbol quantity after the row, for position-affecting rows.
	Quantity string `json:"quantity,omitempty"`
	// Positions is the open position summary after the row.
	Positions string `json:"positions,omitempty"`
	// FIFOGain is the realized FIFO gain of the row.
	FIFOGain string `json:"fifo_gain"`
	// LIFOGain is the realized LIFO gain of the row.
	LIFOGain string `json:"lifo_gain"`
	// FIFODuration is the quantity-weighted FIFO holding duration.
	FIFODuration string `json:"fifo_duration,omitempty"`
	// LIFODuration is the quantity-weighted LIFO holding duration.
	LIFODuration string `json:"lifo_duration,omitempty"`
	// Cash is the cash balance after the row.
	Cash string `json:"cash"`
	// Alternatives is the cash alternatives balance after the row.
	Alternatives string `json:"alternatives"`
	// Margin is the margin balance after the row.
	Margin string `json:"margin"`
	// Short is the short balance after the row.
	Short string `json:"short"`
	// FIFOValue is the sweep plus the FIFO allocated cost.
	FIFOValue string `json:"fifo_value"`
	// LIFOValue is the sweep plus the LIFO allocated cost.
	LIFOValue string `json:"lifo_value"`
	// Totals are the period totals, set on the last row of each period.
	Totals schwabctlrollup.Totals `json:"totals"`
}

// RowOverviewHeaders returns the column headers for table/CSV output.
func RowOverviewHeaders() []string {
	return []string{
		"TIME", "TYPE", "SUB TYPE", "REF", "DESCRIPTION", "SUB ACCOUNT", "SYMBOL", "INSTRUCTION",
		"AMOUNT", "PRICE", "NET AMOUNT", "COMMISSION", "REG FEE", "POSITION EFFECT", "QUANTITY", "POSITIONS",
		"FIFO GAIN", "LIFO GAIN", "FIFO DURATION", "LIFO DURATION",
		"CASH", "ALTERNATIVES", "MARGIN", "SHORT", "FIFO VALUE", "LIFO VALUE",
		"FIFO DAILY", "LIFO DAILY", "FIFO WEEKLY", "LIFO WEEKLY",
		"FIFO MONTHLY", "LIFO MONTHLY", "FIFO ANNUAL", "LIFO ANNUAL",
	}
}

// RowOverviewToRow converts a RowOverview to a string slice for table/CSV output.
//
// Period totals are only shown when non-zero.
func RowOverviewToRow(r *RowOverview) []string {
	return []string{
		r.Time,
		r.Type,
		r.SubType,
		r.Ref,
		r.Description,
		r.SubAccount,
		r.Symbol,
		r.Instruction,
		r.Amount,
		r.Price,
		r.NetAmount,
		r.Commission,
		r.RegFee,
		r.PositionEffect,
		r.Quantity,
		r.Positions,
		r.FIFOGain,
		r.LIFOGain,
		r.FIFODuration,
		r.LIFODuration,
		r.Cash,
		r.Alternatives,
		r.Margin,
		r.Short,
		r.FIFOValue,
		r.LIFOValue,
		nonZeroMoneyString(r.Totals.Daily.FIFO),
		nonZeroMoneyString(r.Totals.Daily.LIFO),
		nonZeroMoneyString(r.Totals.Weekly.FIFO),
		nonZeroMoneyString(r.Totals.Weekly.LIFO),
		nonZeroMoneyString(r.Totals.Monthly.FIFO),
		nonZeroMoneyString(r.Totals.Monthly.LIFO),
		nonZeroMoneyString(r.Totals.Annual.FIFO),
		nonZeroMoneyString(r.Totals.Annual.LIFO),
	}
}

// RowOverviews returns the rows of the result for display.
func (r *Result) RowOverviews() []*RowOverview {
	rowOverviews := make([]*RowOverview, 0, len(r.Rows))
	for i, row := range r.Rows {
		rowOverview := &RowOverview{
			Time:           row.Time.Format(time.DateTime),
			Type:           row.Type,
			SubType:        row.SubType,
			Ref:            row.Ref,
			Description:    row.Description,
			SubAccount:     row.SubAccount,
			Symbol:         row.Symbol,
			Instruction:    string(row.Instruction),
			NetAmount:      mathdec.ToMoneyString(row.NetAmount),
			Commission:     mathdec.ToMoneyString(row.Commission),
			RegFee:         mathdec.ToMoneyString(row.RegFee),
			PositionEffect: row.PositionEffectLabel(),
			Positions:      row.Positions,
			FIFOGain:       mathdec.ToMoneyString(row.FIFOGain),
			LIFOGain:       mathdec.ToMoneyString(row.LIFOGain),
			FIFODuration:   formatDuration(row.FIFODuration),
			LIFODuration:   formatDuration(row.LIFODuration),
			Cash:           mathdec.ToMoneyString(row.Cash),
			Alternatives:   mathdec.ToMoneyString(row.Alternatives),
			Margin:         mathdec.ToMoneyString(row.Margin),
			Short:          mathdec.ToMoneyString(row.Short),
			FIFOValue:      mathdec.ToMoneyString(row.FIFOValue),
			LIFOValue:      mathdec.ToMoneyString(row.LIFOValue),
		}
		if row.Symbol != "" {
			rowOverview.Amount = mathdec.ToString(row.Amount)
			rowOverview.Price = mathdec.ToString(row.Price)
		}
		if row.HasQuantity {
			rowOverview.Quantity = mathdec.ToString(row.Quantity)
		}
		if i < len(r.Totals) {
			rowOverview.Totals = r.Totals[i]
		}
		rowOverviews = append(rowOverviews, rowOverview)
	}
	return rowOverviews
}

// PositionOverview represents a single open position for display.
type PositionOverview struct {
	// Symbol is the ticker symbol.
	Symbol string `json:"symbol"`
	// Quantity is the signed open quantity.
	Quantity string `json:"quantity"`
	// FIFOAveragePrice is the FIFO weighted average price.
	FIFOAveragePrice string `json:"fifo_average_price"`
	// FIFOAllocated is the FIFO allocated cost.
	FIFOAllocated string `json:"fifo_allocated"`
	// LIFOAveragePrice is the LIFO weighted average price.
	LIFOAveragePrice string `json:"lifo_average_price"`
	// LIFOAllocated is the LIFO allocated cost.
	LIFOAllocated string `json:"lifo_allocated"`
}

// PositionOverviewHeaders returns the column headers for table/CSV output.
func PositionOverviewHeaders() []string {
	return []string{"SYMBOL", "QUANTITY", "FIFO AVG PRICE", "FIFO ALLOCATED", "LIFO AVG PRICE", "LIFO ALLOCATED"}
}

// PositionOverviewToRow converts a PositionOverview to a string slice for table/CSV output.
func PositionOverviewToRow(p *PositionOverview) []string {
	return []string{
		p.Symbol,
		p.Quantity,
		p.FIFOAveragePrice,
		p.FIFOAllocated,
		p.LIFOAveragePrice,
		p.LIFOAllocated,
	}
}

// PositionOverviews returns the open positions of the result for display.
func (r *Result) PositionOverviews() []*PositionOverview {
	positionOverviews := make([]*PositionOverview, 0, len(r.Positions))
	for _, position := range r.Positions {
		positionOverviews = append(positionOverviews, newPositionOverview(position))
	}
	return positionOverviews
}

// PositionTotalsRow returns the totals row of the position table, with the
// account-level allocated costs and the balances.
func (r *Result) PositionTotalsRow() []string {
	return []string{
		"TOTAL",
		"",
		"",
		mathdec.ToMoneyString(r.aggregator.Allocated(schwabctllot.MethodFIFO)),
		"",
		mathdec.ToMoneyString(r.aggregator.Allocated(schwabctllot.MethodLIFO)),
	}
}

// BalancesOverview represents the final balances for display.
type BalancesOverview struct {
	Cash         string `json:"cash"`
	Alternatives string `json:"alternatives"`
	Margin       string `json:"margin"`
	Short        string `json:"short"`
	Sweep        string `json:"sweep"`
}

// BalancesOverview returns the final balances of the result for display.
func (r *Result) BalancesOverview() *BalancesOverview {
	return newBalancesOverview(r.Balances)
}

// LotOverview represents a single open lot for display.
type LotOverview struct {
	// Symbol is the ticker symbol.
	Symbol string `json:"symbol"`
	// Method is the cost-basis method.
	Method string `json:"method"`
	// Opened is the time the lot was opened, in the configured timezone.
	Opened string `json:"opened"`
	// Quantity is the signed lot quantity.
	Quantity string `json:"quantity"`
	// Price is the per-unit price of the lot.
	Price string `json:"price"`
	// Cost is the quantity times the price.
	Cost string `json:"cost"`
}

// LotOverviewHeaders returns the column headers for table/CSV output.
func LotOverviewHeaders() []string {
	return []string{"SYMBOL", "METHOD", "OPENED", "QUANTITY", "PRICE", "COST"}
}

// LotOverviewToRow converts a LotOverview to a string slice for table/CSV output.
func LotOverviewToRow(l *LotOverview) []string {
	return []string{l.Symbol, l.Method, l.Opened, l.Quantity, l.Price, l.Cost}
}

// PeriodGainOverview represents the realized gains of one calendar period for display.
type PeriodGainOverview struct {
	// Period is the kind of period.
	Period string `json:"period"`
	// Start is the first date of the period.
	Start string `json:"start"`
	// FIFO is the realized FIFO gain of the period.
	FIFO string `json:"fifo"`
	// LIFO is the realized LIFO gain of the period.
	LIFO string `json:"lifo"`
	// Rows is the number of rows in the period.
	Rows int `json:"rows"`
}

// PeriodGainOverviewHeaders returns the column headers for table/CSV output.
func PeriodGainOverviewHeaders() []string {
	return []string{"PERIOD", "START", "FIFO", "LIFO", "ROWS"}
}

// PeriodGainOverviewToRow converts a PeriodGainOverview to a string slice for table/CSV output.
func PeriodGainOverviewToRow(p *PeriodGainOverview) []string {
	return []string{p.Period, p.Start, p.FIFO, p.LIFO, strconv.Itoa(p.Rows)}
}

// PeriodGainOverviews returns one overview per period of the given kind that has rows.
func (r *Result) PeriodGainOverviews(period schwabctlrollup.Period) []*PeriodGainOverview {
	periodTotals := schwabctlrollup.Summarize(r.Rows, period)
	periodGainOverviews := make([]*PeriodGainOverview, 0, len(periodTotals))
	for _, periodTotal := range periodTotals {
		periodGainOverviews = append(periodGainOverviews, &PeriodGainOverview{
			Period: periodTotal.Period.String(),
			Start:  periodTotal.Start.String(),
			FIFO:   mathdec.ToMoneyString(periodTotal.Gains.FIFO),
			LIFO:   mathdec.ToMoneyString(periodTotal.Gains.LIFO),
			Rows:   periodTotal.Rows,
		})
	}
	return periodGainOverviews
}

// PeriodGainTotalsRow returns the totals row of the period gain table.
func (r *Result) PeriodGainTotalsRow() []string {
	fifo := decimal.Zero
	lifo := decimal.Zero
	for _, row := range r.Rows {
		fifo = fifo.Add(row.FIFOGain)
		lifo = lifo.Add(row.LIFOGain)
	}
	return []string{"TOTAL", "", mathdec.ToMoneyString(fifo), mathdec.ToMoneyString(lifo), strconv.Itoa(len(r.Rows))}
}

// DiscrepancyOverview represents a single verification discrepancy for display.
type DiscrepancyOverview struct {
	// Symbol is the ticker symbol, empty for balance discrepancies.
	Symbol string `json:"symbol,omitempty"`
	// Type is the kind of discrepancy.
	Type string `json:"type"`
	// Computed is the computed value.
	Computed string `json:"computed"`
	// Reported is the broker-reported value.
	Reported string `json:"reported"`
}

// DiscrepancyOverviewHeaders returns the column headers for table/CSV output.
func DiscrepancyOverviewHeaders() []string {
	return []string{"SYMBOL", "TYPE", "COMPUTED", "REPORTED"}
}

// DiscrepancyOverviewToRow converts a DiscrepancyOverview to a string slice for table/CSV output.
func DiscrepancyOverviewToRow(d *DiscrepancyOverview) []string {
	return []string{d.Symbol, d.Type, d.Computed, d.Reported}
}

// NewDiscrepancyOverviews converts discrepancies for display.
func NewDiscrepancyOverviews(discrepancies []schwabctlverify.Discrepancy) []*DiscrepancyOverview {
	discrepancyOverviews := make([]*DiscrepancyOverview, 0, len(discrepancies))
	for _, discrepancy := range discrepancies {
		discrepancyOverviews = append(discrepancyOverviews, &DiscrepancyOverview{
			Symbol:   discrepancy.Symbol,
			Type:     discrepancy.Type.String(),
			Computed: discrepancy.ComputedValue,
			Reported: discrepancy.ReportedValue,
		})
	}
	return discrepancyOverviews
}

// DiagnosticOverview represents a single row diagnostic.
type DiagnosticOverview struct {
	Time    string `json:"time"`
	Ref     string `json:"ref,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

// *** PRIVATE ***

func newPositionOverview(position schwabctlbalances.Position) *PositionOverview {
	return &PositionOverview{
		Symbol:           position.Symbol,
		Quantity:         mathdec.ToString(position.Quantity),
		FIFOAveragePrice: mathdec.ToString(position.FIFOAveragePrice.Round(4)),
		FIFOAllocated:    mathdec.ToMoneyString(position.FIFOAllocated),
		LIFOAveragePrice: mathdec.ToString(position.LIFOAveragePrice.Round(4)),
		LIFOAllocated:    mathdec.ToMoneyString(position.LIFOAllocated),
	}
}

func newBalancesOverview(balances schwabctlbalances.Balances) *BalancesOverview {
	return &BalancesOverview{
		Cash:         mathdec.ToMoneyString(balances.Cash),
		Alternatives: mathdec.ToMoneyString(balances.Alternatives),
		Margin:       mathdec.ToMoneyString(balances.Margin),
		Short:        mathdec.ToMoneyString(balances.Short),
		Sweep:        mathdec.ToMoneyString(balances.Sweep),
	}
}

func newLotOverview(symbol string, method schwabctllot.Method, lot schwabctllot.Lot, location *time.Location) *LotOverview {
	return &LotOverview{
		Symbol:   symbol,
		Method:   method.String(),
		Opened:   lot.Opened.In(location).Format(time.DateTime),
		Quantity: mathdec.ToString(lot.Quantity),
		Price:    mathdec.ToString(lot.Price),
		Cost:     mathdec.ToMoneyString(lot.Quantity.Mul(lot.Price)),
	}
}

// formatDuration formats a holding duration in days with one decimal, or returns
// the empty string for a zero duration.
func formatDuration(duration time.Duration) string {
	if duration == 0 {
		return ""
	}
	days := decimal.NewFromInt(int64(duration)).Div(decimal.NewFromInt(int64(24 * time.Hour)))
	return days.StringFixed(1) + "d"
}

func nonZeroMoneyString(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return mathdec.ToMoneyString(d)
}
