// Package config defines the YAML project definition and includes functions
// for loading and parsing it.
package config

import (
	"fmt"

	"github.com/lotline/proforma/pkg/constants"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds one project definition plus runtime options.
type Configuration struct {
	Project     Project      `yaml:"project"`
	Divisions   []Division   `yaml:"divisions"`
	BudgetItems []BudgetItem `yaml:"budgetItems"`
	ParcelSales []ParcelSale `yaml:"parcelSales"`
	Loans       []Loan       `yaml:"loans"`

	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// Project holds the deal-level assumptions.
type Project struct {
	ID                int     `yaml:"id"`
	Name              string  `yaml:"name"`
	StartDate         string  `yaml:"startDate"` // YYYY-MM
	HoldPeriodMonths  int     `yaml:"holdPeriodMonths"`
	AnalysisType      string  `yaml:"analysisType"`
	DiscountRate      float64 `yaml:"discountRate"`      // annual percent
	PriceGrowthRate   float64 `yaml:"priceGrowthRate"`   // annual percent
	CostInflationRate float64 `yaml:"costInflationRate"` // annual percent
	TotalAcreage      float64 `yaml:"totalAcreage"`
	AcquisitionCost   float64 `yaml:"acquisitionCost"`

	Lotbank LotbankTerms `yaml:"lotbank,omitempty"`
}

// LotbankTerms holds the deal-level lotbank parameters.
type LotbankTerms struct {
	ManagementFeePct    float64 `yaml:"managementFeePct"`
	DefaultProvisionPct float64 `yaml:"defaultProvisionPct"`
	UnderwritingFee     float64 `yaml:"underwritingFee"`
}

// Division is one container in the project hierarchy.
type Division struct {
	ID      int     `yaml:"id"`
	Name    string  `yaml:"name"`
	Acreage float64 `yaml:"acreage"`

	LotbankDepositPct    *float64 `yaml:"lotbankDepositPct,omitempty"`
	LotbankDepositCapPct *float64 `yaml:"lotbankDepositCapPct,omitempty"`
	LotbankPremiumPct    *float64 `yaml:"lotbankPremiumPct,omitempty"`
}

// BudgetItem is one funded cost activity.
type BudgetItem struct {
	Description       string   `yaml:"description"`
	Category          string   `yaml:"category"`
	ContainerID       int      `yaml:"containerId"`
	Amount            float64  `yaml:"amount"`
	StartPeriod       int      `yaml:"startPeriod"`
	PeriodsToComplete int      `yaml:"periodsToComplete"`
	TimingMethod      string   `yaml:"timingMethod"`
	CurveSteepness    float64  `yaml:"curveSteepness"`
	EscalationRate    *float64 `yaml:"escalationRate,omitempty"`
}

// ParcelSale is one parcel sale assumption.
type ParcelSale struct {
	ParcelID         int     `yaml:"parcelId"`
	Description      string  `yaml:"description"`
	ContainerID      int     `yaml:"containerId"`
	ProductType      string  `yaml:"productType"`
	SalePeriod       int     `yaml:"salePeriod"`
	Units            int     `yaml:"units"`
	Acreage          float64 `yaml:"acreage"`
	GrossRevenue     float64 `yaml:"grossRevenue"`
	NetRevenue       float64 `yaml:"netRevenue"`
	Commissions      float64 `yaml:"commissions"`
	ClosingCosts     float64 `yaml:"closingCosts"`
	SubdivisionCosts float64 `yaml:"subdivisionCosts"`
}

// Loan is one loan master record.
type Loan struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	ContainerID int    `yaml:"containerId"`
	Structure   string `yaml:"structureType" mapstructure:"structureType"`

	CommitmentAmount float64 `yaml:"commitmentAmount"`
	InterestRate     float64 `yaml:"interestRate"` // annual percent
	StartDate        string  `yaml:"startDate"`    // YYYY-MM

	TermMonths         int `yaml:"termMonths"`
	TermYears          int `yaml:"termYears"`
	InterestOnlyMonths int `yaml:"interestOnlyMonths"`
	AmortizationMonths int `yaml:"amortizationMonths"`

	OriginationFeePct float64 `yaml:"originationFeePct"`
	ClosingCosts      float64 `yaml:"closingCosts"`
	InterestReserve   float64 `yaml:"interestReserve"`
	NetLoanProceeds   float64 `yaml:"netLoanProceeds"`

	DrawTriggerType       string  `yaml:"drawTriggerType"`
	ReleasePricePct       float64 `yaml:"releasePricePct"`
	MinimumReleasePrice   float64 `yaml:"minimumReleasePrice"`
	RepaymentAcceleration float64 `yaml:"repaymentAcceleration"`

	TakesOutLoanID int `yaml:"takesOutLoanId"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// project definition there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}
