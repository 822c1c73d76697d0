// Package output provides utilities for formatting and displaying projection
// results.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lotline/proforma/internal/projection"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable summary.
func PrettyFormat(w io.Writer, proj *projection.Projection) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "--- Projection for %s ---\n", proj.ProjectName)
	fmt.Fprintf(w, "%d monthly periods, %s through %s\n\n",
		proj.TotalPeriods,
		proj.Periods[0].Label,
		proj.Periods[len(proj.Periods)-1].Label,
	)

	for _, section := range proj.Sections {
		_, _ = p.Fprintf(w, "%-28s $%.2f\n", section.Name, section.Total)
		for _, line := range section.Lines {
			_, _ = p.Fprintf(w, "  %-26s $%.2f\n", line.Description, line.Total)
		}
	}

	fmt.Fprintf(w, "\n--- Summary ---\n")
	_, _ = p.Fprintf(w, "Total Revenue:   $%.2f\n", proj.Summary.TotalRevenue)
	_, _ = p.Fprintf(w, "Total Costs:     $%.2f\n", proj.Summary.TotalCosts)
	_, _ = p.Fprintf(w, "Net Profit:      $%.2f\n", proj.Summary.NetProfit)
	_, _ = p.Fprintf(w, "NPV (%.2f%%):    $%.2f\n", proj.DiscountRate, proj.Summary.NPV)
	_, _ = p.Fprintf(w, "Peak Equity:     $%.2f\n", proj.Summary.PeakEquity)
	if proj.Summary.IRR != nil {
		fmt.Fprintf(w, "IRR:             %.2f%%\n", *proj.Summary.IRR*100)
	} else {
		fmt.Fprintf(w, "IRR:             n/a\n")
	}
	if proj.Summary.EquityMultiple != nil {
		fmt.Fprintf(w, "Equity Multiple: %.2fx\n", *proj.Summary.EquityMultiple)
	} else {
		fmt.Fprintf(w, "Equity Multiple: n/a\n")
	}
	if proj.Summary.PaybackPeriod != nil {
		fmt.Fprintf(w, "Payback Period:  %s\n", proj.Periods[*proj.Summary.PaybackPeriod].Label)
	} else {
		fmt.Fprintf(w, "Payback Period:  n/a\n")
	}
}

// CsvFormat writes one row per period with a column per section subtotal plus
// the net cash flow.
func CsvFormat(w io.Writer, proj *projection.Projection) {
	fmt.Fprintf(w, `"period"`)
	for _, section := range proj.Sections {
		fmt.Fprintf(w, `,"%s"`, section.Name)
	}
	fmt.Fprintf(w, ",\"net cash flow\",\"cumulative\"\n")

	subtotals := make([][]float64, len(proj.Sections))
	for i, section := range proj.Sections {
		subtotals[i] = make([]float64, proj.TotalPeriods)
		for _, entry := range section.Subtotals {
			subtotals[i][entry.PeriodIndex] = entry.Amount
		}
	}

	previous := 0.0
	for p := 0; p < proj.TotalPeriods; p++ {
		fmt.Fprintf(w, `"%s"`, proj.Periods[p].Label)
		net := 0.0
		for i, section := range proj.Sections {
			fmt.Fprintf(w, `,"%.2f"`, subtotals[i][p])
			if section.Kind != projection.SectionGrossRevenue && section.Kind != projection.SectionDeductions {
				net += subtotals[i][p]
			}
		}
		previous += net
		fmt.Fprintf(w, ",\"%.2f\",\"%.2f\"\n", net, previous)
	}
}

// JSONFormat writes the full projection as indented JSON.
func JSONFormat(w io.Writer, proj *projection.Projection) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(proj)
}
