package portfolio

import (
	"fmt"
	"io"
	"strings"

	tw "github.com/olekukonko/tablewriter"

	"github.com/sharelot/sharelot/money"
	"github.com/sharelot/sharelot/util"
)

type _PrintHelper struct {
	PrintAllDecimals bool
}

func (h _PrintHelper) CurrStr(val money.Money) string {
	if h.PrintAllDecimals {
		return val.Amount.String()
	}
	return val.Amount.StringFixed(2)
}

func (h _PrintHelper) DollarStr(val money.Money) string {
	return "$" + h.CurrStr(val)
}

func (h _PrintHelper) PlusMinusDollar(val money.Money, showPlus bool) string {
	if val.IsNegative() {
		return fmt.Sprintf("-$%s", h.CurrStr(val.Neg()))
	}
	plus := ""
	if showPlus {
		plus = "+"
	}
	return fmt.Sprintf("%s$%s", plus, h.CurrStr(val))
}

func strOrDash(useStr bool, str string) string {
	if useStr {
		return str
	}
	return "-"
}

type RenderTable struct {
	Header []string
	Rows   [][]string
	Footer []string
	Notes  []string
	Errors []error
}

// RenderGainsTableModel builds the realized gains table: one row per
// allocation, with per-fiscal-year totals and a grand total in the
// footer.
func RenderGainsTableModel(
	rows []GainsRow, totals []FiscalYearTotal, renderFullDollarValues bool) *RenderTable {

	table := &RenderTable{}
	table.Header = []string{"Security", "Sell Date", "Buy Date", "Days Held", "Shares",
		"Proceeds", "Cost Base", "Cap. Gain", "Fiscal Year",
	}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	sawDiscount := false
	for _, r := range rows {
		discountAsterix := util.Tern(r.DiscountEligible, " *", "")
		sawDiscount = sawDiscount || r.DiscountEligible
		table.Rows = append(table.Rows, []string{
			r.Instrument,
			r.SellDate.String(),
			r.BuyDate.String(),
			fmt.Sprintf("%d", r.DaysHeld),
			r.Quantity.String(),
			ph.DollarStr(r.Proceeds),
			ph.DollarStr(r.CostBase),
			ph.PlusMinusDollar(r.CapitalGain, false) + discountAsterix,
			r.FiscalYear,
		})
	}

	// Footer
	yearStrs := []string{}
	yearValsStrs := []string{}
	grandTotal := money.Money{}
	for _, t := range totals {
		yearStrs = append(yearStrs, t.FiscalYear)
		yearValsStrs = append(yearValsStrs, ph.PlusMinusDollar(t.Gain, false))
		grandTotal = grandTotal.Add(t.Gain)
	}
	totalFooterLabel := "Total"
	totalFooterValsStr := ph.PlusMinusDollar(grandTotal, false)
	if len(totals) > 0 {
		totalFooterLabel += "\n" + strings.Join(yearStrs, "\n")
		totalFooterValsStr += "\n" + strings.Join(yearValsStrs, "\n")
	}
	table.Footer = []string{"", "", "", "", "", "", totalFooterLabel, totalFooterValsStr, ""}

	if sawDiscount {
		table.Notes = append(table.Notes, " * = held longer than 12 months, CGT discount may apply")
	}
	return table
}

/*
Generates a RenderTable that will render out to this:
| Fiscal Year | Proceeds | Cost Base | Capital Gains | Discount Eligible |
+-------------+----------+-----------+---------------+-------------------+
| FY2023/24   | xxxx.xx  | xxxx.xx   | xxxx.xx       | xxxx.xx           |
*/
func RenderAggregateGainsTableModel(totals []FiscalYearTotal, renderFullDollarValues bool) *RenderTable {
	table := &RenderTable{}
	table.Header = []string{"Fiscal Year", "Proceeds", "Cost Base", "Capital Gains", "Discount Eligible"}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	for _, t := range totals {
		table.Rows = append(table.Rows, []string{
			t.FiscalYear,
			ph.DollarStr(t.Proceeds),
			ph.DollarStr(t.CostBase),
			ph.PlusMinusDollar(t.Gain, false),
			ph.PlusMinusDollar(t.DiscountEligibleGain, false),
		})
	}
	return table
}

// RenderHoldingsTableModel builds the open positions table.
func RenderHoldingsTableModel(rows []HoldingsRow, renderFullDollarValues bool) *RenderTable {
	table := &RenderTable{}
	table.Header = []string{"Security", "Shares", "Cost Base", "Market Value", "Unrealized Gain"}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	for _, r := range rows {
		hasValue := !r.MarketValue.IsZero()
		table.Rows = append(table.Rows, []string{
			r.Instrument,
			r.Quantity.String(),
			ph.DollarStr(r.CostBase),
			strOrDash(hasValue, ph.DollarStr(r.MarketValue)),
			strOrDash(hasValue, ph.PlusMinusDollar(r.UnrealizedGain, true)),
		})
	}
	return table
}

func PrintRenderTable(title string, tableModel *RenderTable, writer io.Writer) {
	for _, err := range tableModel.Errors {
		fmt.Fprintf(writer, "[!] %v. Printing parsed information state:\n", err)
	}
	fmt.Fprintf(writer, "%s\n", title)

	table := tw.NewWriter(writer)
	table.SetHeader(tableModel.Header)
	table.SetBorder(false)
	table.SetRowLine(true)

	for _, row := range tableModel.Rows {
		table.Append(row)
	}

	table.SetFooter(tableModel.Footer)

	table.Render()

	for _, note := range tableModel.Notes {
		fmt.Fprintln(writer, note)
	}
}
