package usecase

import (
	"testing"

	"github.com/cleartag/labelscan/internal/domain"
)

func TestComplianceScore(t *testing.T) {
	want := []int{0, 14, 29, 43, 57, 71, 86, 100}
	for found, score := range want {
		if got := ComplianceScore(found); got != score {
			t.Errorf("ComplianceScore(%d) = %d, want %d", found, got, score)
		}
	}
}

func TestStatusForScore(t *testing.T) {
	tests := []struct {
		score int
		want  domain.ComplianceStatus
	}{
		{100, domain.StatusFullyCompliant},
		{99, domain.StatusPartiallyCompliant},
		{85, domain.StatusPartiallyCompliant},
		{70, domain.StatusPartiallyCompliant},
		{69, domain.StatusNonCompliant},
		{50, domain.StatusNonCompliant},
		{0, domain.StatusNonCompliant},
	}

	for _, tt := range tests {
		if got := StatusForScore(tt.score); got != tt.want {
			t.Errorf("StatusForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestBuildReport(t *testing.T) {
	details := domain.NewDeclarations()
	details.Set(domain.FieldCommonName, "Green Tea")
	details.Set(domain.FieldMRP, "10")
	details.Set(domain.FieldNetQuantity, "100 g")
	details.Set(domain.FieldDateOfMfg, "01/01/2026")
	details.Set(domain.FieldConsumerCare, "Details Detected")

	report := BuildReport(details)

	if report.ProductName != "Green Tea" {
		t.Errorf("ProductName = %q, want Green Tea", report.ProductName)
	}
	if report.Score != 71 {
		t.Errorf("Score = %d, want 71", report.Score)
	}
	if report.Status != domain.StatusPartiallyCompliant {
		t.Errorf("Status = %s, want Partially Compliant", report.Status)
	}
	if report.MissingCount != 2 {
		t.Errorf("MissingCount = %d, want 2", report.MissingCount)
	}
	if report.Message != "Found 5/7 Mandatory Declarations." {
		t.Errorf("Message = %q", report.Message)
	}
}
