// Package validation performs sanity checks on project definitions and
// runtime options, returning warnings for suspicious but workable inputs.
package validation

import (
	"fmt"

	"github.com/lotline/proforma/internal/config"
	"github.com/lotline/proforma/pkg/constants"
)

// ValidateOutputFormat returns an error for unknown output formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid output format %q; expected %s, %s, or %s",
			format, constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON)
	}
}

// ValidateSource returns an error for unknown data sources.
func ValidateSource(source string) error {
	switch source {
	case constants.SourceYAML, constants.SourcePostgres:
		return nil
	default:
		return fmt.Errorf("invalid source %q; expected %s or %s",
			source, constants.SourceYAML, constants.SourcePostgres)
	}
}

// ValidateConfiguration checks a project definition and returns warnings.
// Warnings flag inputs that will compute but probably not as intended.
func ValidateConfiguration(conf *config.Configuration) []string {
	var warnings []string

	if conf.Project.StartDate == "" {
		warnings = append(warnings, "project has no start date; parsing will fail")
	}
	if conf.Project.DiscountRate == 0 {
		warnings = append(warnings, "discount rate is zero; NPV will equal the undiscounted sum")
	}

	hold := conf.Project.HoldPeriodMonths
	for _, item := range conf.BudgetItems {
		if item.Amount == 0 {
			warnings = append(warnings, fmt.Sprintf("budget item %q has zero amount", item.Description))
		}
		if hold > 0 && item.StartPeriod > hold {
			warnings = append(warnings, fmt.Sprintf("budget item %q starts after the hold period ends", item.Description))
		}
		if hold > 0 && item.StartPeriod+item.PeriodsToComplete-1 > hold {
			warnings = append(warnings, fmt.Sprintf("budget item %q extends past the hold period; the overflow amount is dropped", item.Description))
		}
	}

	for _, sale := range conf.ParcelSales {
		if sale.SalePeriod == 0 {
			warnings = append(warnings, fmt.Sprintf("parcel sale %q has no sale period and will be excluded", sale.Description))
		}
		if hold > 0 && sale.SalePeriod > hold {
			warnings = append(warnings, fmt.Sprintf("parcel sale %q closes after the hold period ends", sale.Description))
		}
		if sale.NetRevenue > sale.GrossRevenue {
			warnings = append(warnings, fmt.Sprintf("parcel sale %q has net revenue above gross revenue", sale.Description))
		}
	}

	for _, loan := range conf.Loans {
		if loan.TakesOutLoanID != 0 {
			warnings = append(warnings, fmt.Sprintf("loan %q declares a takeout linkage; the projection will fail", loan.Name))
		}
		if loan.TermMonths > 0 && loan.TermYears > 0 {
			warnings = append(warnings, fmt.Sprintf("loan %q declares both term months and years; months take precedence", loan.Name))
		}
	}

	return warnings
}
