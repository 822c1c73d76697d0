package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleProject = `---
project:
  id: 1
  name: Cedar Crossing
  startDate: 2026-01
  analysisType: STANDARD
  discountRate: 10
divisions:
  - id: 1
    name: Phase 1
    acreage: 40
budgetItems:
  - description: Sitework
    category: Development
    containerId: 1
    amount: 120000
    startPeriod: 1
    periodsToComplete: 12
    timingMethod: distributed
parcelSales:
  - parcelId: 1
    description: Phase 1 closeout
    containerId: 1
    productType: 50ft
    salePeriod: 6
    units: 10
    grossRevenue: 1000000
    netRevenue: 940000
`

func postProjection(t *testing.T, handler http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleProjection(t *testing.T) {
	handler := NewHandler(nil, 0, "test")
	rec := postProjection(t, handler, "/api/projection", sampleProject)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Projection struct {
			ProjectName  string `json:"projectName"`
			TotalPeriods int    `json:"totalPeriods"`
			RunID        string `json:"runId"`
		} `json:"projection"`
		Duration string `json:"duration"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Projection.ProjectName != "Cedar Crossing" {
		t.Errorf("project name = %s, expected Cedar Crossing", resp.Projection.ProjectName)
	}
	if resp.Projection.TotalPeriods != 12 {
		t.Errorf("total periods = %d, expected 12", resp.Projection.TotalPeriods)
	}
	if resp.Projection.RunID == "" {
		t.Error("run ID missing from response")
	}
	if resp.Duration == "" {
		t.Error("duration missing from response")
	}
}

func TestHandleProjectionQueryParams(t *testing.T) {
	handler := NewHandler(nil, 0, "test")

	rec := postProjection(t, handler, "/api/projection?discountRate=20&includeFinancing=false", sampleProject)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200; body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Projection struct {
			DiscountRate float64 `json:"discountRate"`
		} `json:"projection"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Projection.DiscountRate != 20 {
		t.Errorf("discount rate = %v, expected the 20 override", resp.Projection.DiscountRate)
	}

	rec = postProjection(t, handler, "/api/projection?discountRate=high", sampleProject)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400 for a non-numeric discount rate", rec.Code)
	}

	rec = postProjection(t, handler, "/api/projection?containers=1,x", sampleProject)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400 for malformed container IDs", rec.Code)
	}
}

func TestHandleProjectionBadYAML(t *testing.T) {
	handler := NewHandler(nil, 0, "test")
	rec := postProjection(t, handler, "/api/projection", "project: [not: valid")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400 for malformed YAML", rec.Code)
	}
}

func TestHandleProjectionTooLarge(t *testing.T) {
	handler := NewHandler(nil, 64, "test")
	rec := postProjection(t, handler, "/api/projection", sampleProject)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, expected 413 beyond the upload limit", rec.Code)
	}
}

func TestHandleProjectionMethodNotAllowed(t *testing.T) {
	handler := NewHandler(nil, 0, "test")
	req := httptest.NewRequest(http.MethodGet, "/api/projection", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, expected 405", rec.Code)
	}
}

func TestHandleProjectionUnsupportedLoan(t *testing.T) {
	body := sampleProject + `loans:
  - id: 1
    name: Bridge
    structureType: TERM
    commitmentAmount: 100000
    termMonths: 12
    takesOutLoanId: 2
`
	handler := NewHandler(nil, 0, "test")
	rec := postProjection(t, handler, "/api/projection", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, expected 422 for a takeout structure; body: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleVersion(t *testing.T) {
	handler := NewHandler(nil, 0, "1.2.3")
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["version"] != "1.2.3" {
		t.Errorf("version = %s, expected 1.2.3", resp["version"])
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Address != ":8080" {
		t.Errorf("address = %s, expected :8080", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 256*1024 {
		t.Errorf("upload size = %d, expected 262144", cfg.UploadSizeBytes())
	}

	// A missing file falls back to defaults rather than failing.
	cfg, err = LoadConfig("/nonexistent/server-config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v for a missing file", err)
	}
	if cfg.Address != ":8080" {
		t.Errorf("address = %s, expected the default", cfg.Address)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{input: "1024", expected: 1024},
		{input: "64K", expected: 64 * 1024},
		{input: "2M", expected: 2 * 1024 * 1024},
		{input: "1G", expected: 1024 * 1024 * 1024},
		{input: "", expected: 256 * 1024},
		{input: "ten", wantErr: true},
		{input: "-5", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSize(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSize(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("parseSize(%q) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}
