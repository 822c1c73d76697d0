package projection

import (
	"fmt"
	"sort"

	"github.com/lotline/proforma/pkg/absorption"
	"github.com/lotline/proforma/pkg/costs"
	"github.com/lotline/proforma/pkg/debt"
	"github.com/lotline/proforma/pkg/lotbank"
)

// SectionKind is the closed set of section variants a projection can contain.
type SectionKind string

const (
	SectionCosts           SectionKind = "COST"
	SectionGrossRevenue    SectionKind = "REVENUE_GROSS"
	SectionDeductions      SectionKind = "REVENUE_DEDUCTION"
	SectionNetRevenue      SectionKind = "REVENUE_NET"
	SectionFinancing       SectionKind = "FINANCING"
	SectionLotbankDeposits SectionKind = "LOTBANK_DEPOSITS"
	SectionLotbankCredits  SectionKind = "LOTBANK_CREDITS"
	SectionLotbankFees     SectionKind = "LOTBANK_FEES"
)

// PeriodAmount is one non-zero entry of a sparse per-period series.
type PeriodAmount struct {
	PeriodIndex int     `json:"periodIndex"`
	Amount      float64 `json:"amount"`
}

// LineItem is one display row. Costs and outflows are negative, revenue and
// inflows are positive.
type LineItem struct {
	Category    string         `json:"category"`
	Subcategory string         `json:"subcategory,omitempty"`
	Description string         `json:"description"`
	Periods     []PeriodAmount `json:"periods"`
	Total       float64        `json:"total"`
}

// Section is a named group of line items with sparse per-period subtotals.
type Section struct {
	Kind      SectionKind    `json:"kind"`
	Name      string         `json:"name"`
	Lines     []LineItem     `json:"lines"`
	Subtotals []PeriodAmount `json:"subtotals"`
	Total     float64        `json:"total"`
}

// sparse converts a dense series to sparse form, omitting zero entries.
func sparse(dense []float64) []PeriodAmount {
	var out []PeriodAmount
	for i, amount := range dense {
		if amount != 0 {
			out = append(out, PeriodAmount{PeriodIndex: i, Amount: amount})
		}
	}
	return out
}

// dense expands a sparse series back to a dense slice of the given length.
func dense(entries []PeriodAmount, periodCount int) []float64 {
	out := make([]float64, periodCount)
	for _, entry := range entries {
		if entry.PeriodIndex >= 0 && entry.PeriodIndex < periodCount {
			out[entry.PeriodIndex] += entry.Amount
		}
	}
	return out
}

func newLine(category, description string, series []float64) LineItem {
	total := 0.0
	for _, v := range series {
		total += v
	}
	return LineItem{
		Category:    category,
		Description: description,
		Periods:     sparse(series),
		Total:       total,
	}
}

func newSection(kind SectionKind, name string, periodCount int, lines ...LineItem) Section {
	subtotals := make([]float64, periodCount)
	total := 0.0
	for _, line := range lines {
		for _, entry := range line.Periods {
			subtotals[entry.PeriodIndex] += entry.Amount
		}
		total += line.Total
	}
	return Section{
		Kind:      kind,
		Name:      name,
		Lines:     lines,
		Subtotals: sparse(subtotals),
		Total:     total,
	}
}

// assembleSections groups every sub-engine output into display sections in
// the fixed order: costs, gross revenue, deductions, net revenue, financing,
// lotbank.
func assembleSections(
	costSchedule *costs.Schedule,
	salesSchedule *absorption.Schedule,
	loanSchedules []*debt.Schedule,
	lotbankSchedule *lotbank.Schedule,
	containerNames map[int]string,
	periodCount int,
) []Section {
	var sections []Section

	var costLines []LineItem
	for _, category := range costSchedule.CategoryNames() {
		summary := costSchedule.Categories[category]
		negated := make([]float64, periodCount)
		for i, amount := range summary.PeriodAmounts {
			negated[i] = -amount
		}
		costLines = append(costLines, newLine("Costs", category, negated))
	}
	sections = append(sections, newSection(SectionCosts, "Development Costs", periodCount, costLines...))

	grossLines := revenueLinesByContainer(salesSchedule, containerNames, periodCount, false)
	sections = append(sections, newSection(SectionGrossRevenue, "Gross Revenue", periodCount, grossLines...))

	commissions := make([]float64, periodCount)
	closing := make([]float64, periodCount)
	subdivision := make([]float64, periodCount)
	for i := range salesSchedule.PeriodSales {
		bucket := &salesSchedule.PeriodSales[i]
		commissions[i] = -bucket.Commissions
		closing[i] = -bucket.ClosingCosts
		subdivision[i] = -bucket.SubdivisionCosts
	}
	sections = append(sections, newSection(SectionDeductions, "Revenue Deductions", periodCount,
		newLine("Deductions", "Commissions", commissions),
		newLine("Deductions", "Closing Costs", closing),
		newLine("Deductions", "Subdivision Costs", subdivision),
	))

	netLines := revenueLinesByContainer(salesSchedule, containerNames, periodCount, true)
	sections = append(sections, newSection(SectionNetRevenue, "Net Revenue", periodCount, netLines...))

	if len(loanSchedules) > 0 {
		var loanLines []LineItem
		for _, sched := range loanSchedules {
			loanLines = append(loanLines, newLine("Financing", sched.Name, sched.NetCashFlow))
		}
		sections = append(sections, newSection(SectionFinancing, "Financing", periodCount, loanLines...))
	}

	if lotbankSchedule != nil {
		sections = append(sections,
			newSection(SectionLotbankDeposits, "Lotbank Deposits", periodCount,
				newLine("Lotbank", "Initial Option Deposits", lotbankSchedule.InitialDeposits),
			),
			newSection(SectionLotbankCredits, "Lotbank Deposit Credits", periodCount,
				newLine("Lotbank", "Deposit Credits", lotbankSchedule.DepositCredits),
			),
			newSection(SectionLotbankFees, "Lotbank Fees", periodCount,
				newLine("Lotbank", "Management Fees", lotbankSchedule.ManagementFees),
				newLine("Lotbank", "Default Provisions", lotbankSchedule.DefaultProvisions),
				newLine("Lotbank", "Underwriting Fee", lotbankSchedule.UnderwritingFees),
			),
		)
	}

	return sections
}

// revenueLinesByContainer builds one line per contributing container, in
// container-ID order, using net or gross figures.
func revenueLinesByContainer(sched *absorption.Schedule, containerNames map[int]string, periodCount int, net bool) []LineItem {
	ids := sched.ContainerIDs()
	sort.Ints(ids)

	var lines []LineItem
	for _, id := range ids {
		series := make([]float64, periodCount)
		for p := range sched.PeriodSales {
			if net {
				series[p] = sched.PeriodSales[p].NetByContainer[id]
			} else {
				series[p] = sched.PeriodSales[p].GrossByContainer[id]
			}
		}
		name := containerNames[id]
		if name == "" {
			name = fmt.Sprintf("Division %d", id)
		}
		lines = append(lines, newLine("Revenue", name, series))
	}
	return lines
}

// netCashFlows sums every section's per-period amounts except gross revenue
// and revenue deductions, which would double count net revenue.
func netCashFlows(sections []Section, periodCount int) []float64 {
	flows := make([]float64, periodCount)
	for _, section := range sections {
		if section.Kind == SectionGrossRevenue || section.Kind == SectionDeductions {
			continue
		}
		for _, entry := range section.Subtotals {
			flows[entry.PeriodIndex] += entry.Amount
		}
	}
	return flows
}
