package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lotline/proforma/internal/config"
	"github.com/lotline/proforma/internal/projection"
	"github.com/lotline/proforma/pkg/output"
	"github.com/lotline/proforma/pkg/validation"
	"go.uber.org/zap"
)

func loadFixture(t *testing.T) *config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration("../test_project.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return conf
}

func project(t *testing.T, conf *config.Configuration, req projection.Request) *projection.Projection {
	t.Helper()
	engine := projection.NewEngine(zap.NewNop(), config.NewSource(conf).Providers())
	proj, err := engine.Project(context.Background(), req)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	return proj
}

func sectionByKind(proj *projection.Projection, kind projection.SectionKind) *projection.Section {
	for i := range proj.Sections {
		if proj.Sections[i].Kind == kind {
			return &proj.Sections[i]
		}
	}
	return nil
}

// TestProjectionBaseline pins the full pipeline against known totals for the
// shared fixture: config load, engine run, section assembly, and summary.
func TestProjectionBaseline(t *testing.T) {
	conf := loadFixture(t)

	if warnings := validation.ValidateConfiguration(conf); len(warnings) != 0 {
		t.Errorf("fixture produced warnings: %v", warnings)
	}

	proj := project(t, conf, projection.Request{ProjectID: 1, IncludeFinancing: true})

	if proj.TotalPeriods != 36 {
		t.Errorf("total periods = %d, expected 36 from the hold period", proj.TotalPeriods)
	}
	if proj.ProjectName != "Cedar Crossing" {
		t.Errorf("project name = %s, expected Cedar Crossing", proj.ProjectName)
	}

	expectedKinds := []projection.SectionKind{
		projection.SectionCosts,
		projection.SectionGrossRevenue,
		projection.SectionDeductions,
		projection.SectionNetRevenue,
		projection.SectionFinancing,
	}
	if len(proj.Sections) != len(expectedKinds) {
		t.Fatalf("got %d sections, expected %d", len(proj.Sections), len(expectedKinds))
	}
	for i, kind := range expectedKinds {
		if proj.Sections[i].Kind != kind {
			t.Errorf("section %d = %s, expected %s", i, proj.Sections[i].Kind, kind)
		}
	}

	// 240000 sitework + 50000 entitlement + 300000 amenity.
	if costsSection := sectionByKind(proj, projection.SectionCosts); math.Abs(costsSection.Total-(-590000)) > 0.01 {
		t.Errorf("cost section total = %.2f, expected -590000", costsSection.Total)
	}
	if gross := sectionByKind(proj, projection.SectionGrossRevenue); math.Abs(gross.Total-4250000) > 0.01 {
		t.Errorf("gross revenue = %.2f, expected 4250000", gross.Total)
	}
	if deductions := sectionByKind(proj, projection.SectionDeductions); math.Abs(deductions.Total-(-255000)) > 0.01 {
		t.Errorf("deductions = %.2f, expected -255000", deductions.Total)
	}
	if net := sectionByKind(proj, projection.SectionNetRevenue); math.Abs(net.Total-3995000) > 0.01 {
		t.Errorf("net revenue = %.2f, expected 3995000", net.Total)
	}

	financing := sectionByKind(proj, projection.SectionFinancing)
	if len(financing.Lines) != 2 {
		t.Fatalf("financing lines = %d, expected the revolver and the land note", len(financing.Lines))
	}
	for _, line := range financing.Lines {
		if line.Total >= 0 {
			t.Errorf("loan %s lifetime flow = %.2f, expected a net cost", line.Description, line.Total)
		}
	}
	// The land note pays 36 months of interest-only at 6% on 500000 and a
	// balloon equal to the full principal, so its lifetime flow is the interest.
	for _, line := range financing.Lines {
		if line.Description == "Land Note" && math.Abs(line.Total-(-90000)) > 0.01 {
			t.Errorf("land note lifetime flow = %.2f, expected -90000", line.Total)
		}
	}

	if math.Abs(proj.Summary.TotalCosts-590000) > 0.01 {
		t.Errorf("summary costs = %.2f, expected 590000", proj.Summary.TotalCosts)
	}
	if math.Abs(proj.Summary.TotalRevenue-3995000) > 0.01 {
		t.Errorf("summary revenue = %.2f, expected 3995000", proj.Summary.TotalRevenue)
	}
	final := proj.Summary.CumulativeCash[len(proj.Summary.CumulativeCash)-1]
	if math.Abs(proj.Summary.NetProfit-final) > 0.01 {
		t.Errorf("net profit %.2f does not match final cumulative %.2f", proj.Summary.NetProfit, final)
	}
	if proj.Summary.IRR == nil {
		t.Error("IRR = nil, expected a rate for a mixed-sign annual series")
	}
	if proj.Summary.EquityMultiple == nil {
		t.Error("equity multiple = nil, expected a value")
	}
}

// TestProjectionContainerFilter restricts the run to Phase 1 and checks the
// engine drops Phase 2 records.
func TestProjectionContainerFilter(t *testing.T) {
	conf := loadFixture(t)
	proj := project(t, conf, projection.Request{ProjectID: 1, ContainerIDs: []int{1}})

	// Phase 2's amenity center and takedown are out of scope.
	if costsSection := sectionByKind(proj, projection.SectionCosts); math.Abs(costsSection.Total-(-290000)) > 0.01 {
		t.Errorf("filtered costs = %.2f, expected -290000", costsSection.Total)
	}
	if net := sectionByKind(proj, projection.SectionNetRevenue); math.Abs(net.Total-1880000) > 0.01 {
		t.Errorf("filtered net revenue = %.2f, expected 1880000", net.Total)
	}
}

// TestProjectionWithoutFinancing drops the loans and checks the bottom line
// reduces to net revenue minus costs.
func TestProjectionWithoutFinancing(t *testing.T) {
	conf := loadFixture(t)
	proj := project(t, conf, projection.Request{ProjectID: 1, IncludeFinancing: false})

	if section := sectionByKind(proj, projection.SectionFinancing); section != nil {
		t.Error("financing section present, expected none")
	}
	if math.Abs(proj.Summary.NetProfit-(3995000-590000)) > 0.01 {
		t.Errorf("unlevered net profit = %.2f, expected 3405000", proj.Summary.NetProfit)
	}
}

// TestProjectionLotbank runs a lotbank deal end to end from a generated file.
func TestProjectionLotbank(t *testing.T) {
	definition := `---
project:
  id: 2
  name: Lotbank Deal
  startDate: 2026-01
  analysisType: LOTBANK
  discountRate: 10
  lotbank:
    managementFeePct: 1.2
    defaultProvisionPct: 0.6
    underwritingFee: 25000
divisions:
  - id: 1
    name: 50ft
    acreage: 40
    lotbankDepositPct: 20
parcelSales:
  - parcelId: 1
    description: Takedown
    containerId: 1
    productType: 50ft
    salePeriod: 6
    units: 10
    grossRevenue: 1000000
    netRevenue: 940000
`
	path := filepath.Join(t.TempDir(), "lotbank.yaml")
	if err := os.WriteFile(path, []byte(definition), 0o644); err != nil {
		t.Fatalf("writing lotbank fixture: %v", err)
	}
	conf, err := config.LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	proj := project(t, conf, projection.Request{ProjectID: 2})

	deposits := sectionByKind(proj, projection.SectionLotbankDeposits)
	if deposits == nil {
		t.Fatal("missing lotbank deposits section")
	}
	if math.Abs(deposits.Total-200000) > 0.01 {
		t.Errorf("deposits = %.2f, expected 200000 for 10 lots at 20%% of 100000", deposits.Total)
	}
	credits := sectionByKind(proj, projection.SectionLotbankCredits)
	if credits == nil || math.Abs(credits.Total+deposits.Total) > 0.01 {
		t.Errorf("credits = %+v, expected the deposits returned in full", credits)
	}
	if fees := sectionByKind(proj, projection.SectionLotbankFees); fees == nil || fees.Total >= 0 {
		t.Errorf("fees = %+v, expected a negative total", fees)
	}
}

// TestOutputFormats exercises every output writer against the fixture run.
func TestOutputFormats(t *testing.T) {
	conf := loadFixture(t)
	proj := project(t, conf, projection.Request{ProjectID: 1, IncludeFinancing: true})

	var pretty bytes.Buffer
	output.PrettyFormat(&pretty, proj)
	for _, expected := range []string{"Cedar Crossing", "Development Costs", "Net Revenue", "--- Summary ---"} {
		if !strings.Contains(pretty.String(), expected) {
			t.Errorf("pretty output missing %q", expected)
		}
	}

	var csv bytes.Buffer
	output.CsvFormat(&csv, proj)
	lines := strings.Split(strings.TrimSpace(csv.String()), "\n")
	if len(lines) != proj.TotalPeriods+1 {
		t.Errorf("CSV has %d lines, expected header plus %d periods", len(lines), proj.TotalPeriods)
	}

	var js bytes.Buffer
	if err := output.JSONFormat(&js, proj); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding JSON output: %v", err)
	}
	if decoded["projectName"] != "Cedar Crossing" {
		t.Errorf("JSON projectName = %v", decoded["projectName"])
	}
}
