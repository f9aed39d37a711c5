package usecase

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/cleartag/labelscan/internal/domain"
)

const wheatBiscuitsLabel = `PREMIUM WHEAT BISCUITS
Manufactured by: Golden Foods Pvt Ltd, Mumbai, India
MRP Rs. 50.00 (Incl of all taxes)
Net Weight: 100 g
Pkd: 12/12/2025
care@goldenfoods.com
Ingredients: Wheat, Sugar`

const fullyDeclaredLabel = `Commodity Name: Wheat Biscuits
Marketed by: Golden Foods Pvt Ltd, 123 Industrial Area, Mumbai
Country of Origin: India
M.R.P. Rs 120.00
Net Qty: 500 g
Mfg Date: 03 Jan 2026
Consumer Care: 1800-123-4567`

func TestAnalyzeText_WheatBiscuitsScenario(t *testing.T) {
	report := AnalyzeText(wheatBiscuitsLabel)

	expectFound := map[domain.Field]string{
		domain.FieldMRP:             "50.00",
		domain.FieldNetQuantity:     "100 g",
		domain.FieldDateOfMfg:       "12/12/2025",
		domain.FieldCountryOfOrigin: "India (Inferred)",
	}
	for field, want := range expectFound {
		got := report.Details.Get(field)
		if !got.Found {
			t.Errorf("%s: Found = false, want true", field)
			continue
		}
		if got.Value != want {
			t.Errorf("%s: Value = %q, want %q", field, got.Value, want)
		}
	}

	care := report.Details.Get(domain.FieldConsumerCare)
	if !care.Found || !strings.Contains(care.Value, "care@goldenfoods.com") {
		t.Errorf("consumer_care = %+v, want found with email", care)
	}

	manufacturer := report.Details.Get(domain.FieldManufacturerDetails)
	if !manufacturer.Found {
		t.Fatalf("manufacturer_details not found")
	}
	if !strings.HasPrefix(manufacturer.Value, "Golden Foods Pvt Ltd") {
		t.Errorf("manufacturer_details = %q, want prefix 'Golden Foods Pvt Ltd'", manufacturer.Value)
	}
	if !strings.HasSuffix(manufacturer.Value, "...") {
		t.Errorf("manufacturer_details = %q, want ellipsis marker", manufacturer.Value)
	}

	name := report.Details.Get(domain.FieldCommonName)
	if name.Found || name.Value != domain.MissingValue {
		t.Errorf("common_name = %+v, want missing", name)
	}

	if report.Details.FoundCount() != 6 {
		t.Errorf("found = %d, want 6", report.Details.FoundCount())
	}
	if report.Score != 86 {
		t.Errorf("Score = %d, want 86", report.Score)
	}
	if report.Status != domain.StatusPartiallyCompliant {
		t.Errorf("Status = %s, want %s", report.Status, domain.StatusPartiallyCompliant)
	}
	if report.MissingCount != 1 {
		t.Errorf("MissingCount = %d, want 1", report.MissingCount)
	}
	if report.ProductName != domain.UnknownProductName {
		t.Errorf("ProductName = %q, want %q", report.ProductName, domain.UnknownProductName)
	}
	if report.Message != "Found 6/7 Mandatory Declarations." {
		t.Errorf("Message = %q", report.Message)
	}
}

func TestAnalyzeText_FullyDeclared(t *testing.T) {
	report := AnalyzeText(fullyDeclaredLabel)

	if report.Score != 100 || report.Status != domain.StatusFullyCompliant {
		t.Fatalf("Score/Status = %d/%s, want 100/%s; details: %+v",
			report.Score, report.Status, domain.StatusFullyCompliant, report.Details)
	}
	if report.ProductName != "Wheat Biscuits" {
		t.Errorf("ProductName = %q, want Wheat Biscuits", report.ProductName)
	}
	if got := report.Details.Get(domain.FieldCountryOfOrigin).Value; got != "India" {
		t.Errorf("country_of_origin = %q, want India", got)
	}
	if got := report.Details.Get(domain.FieldDateOfMfg).Value; got != "03 Jan 2026" {
		t.Errorf("date_of_mfg = %q, want '03 Jan 2026'", got)
	}
	if got := report.Details.Get(domain.FieldConsumerCare).Value; got != "1800-123-4567" {
		t.Errorf("consumer_care = %q, want 1800-123-4567", got)
	}
	if got := report.Details.Get(domain.FieldMRP).Value; got != "120.00" {
		t.Errorf("mrp = %q, want 120.00", got)
	}
	if report.MissingCount != 0 {
		t.Errorf("MissingCount = %d, want 0", report.MissingCount)
	}
}

func TestAnalyzeText_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		report := AnalyzeText(text)

		if report.Score != 0 {
			t.Errorf("Score = %d, want 0", report.Score)
		}
		if report.Status != domain.StatusNonCompliant {
			t.Errorf("Status = %s, want Non-Compliant", report.Status)
		}
		if report.MissingCount != domain.FieldCount {
			t.Errorf("MissingCount = %d, want 7", report.MissingCount)
		}
		if report.ProductName != domain.UnknownProductName {
			t.Errorf("ProductName = %q, want Unknown Product", report.ProductName)
		}
		for _, f := range domain.Fields() {
			decl := report.Details.Get(f)
			if decl.Found || decl.Value != domain.MissingValue || decl.Label != f.Label() {
				t.Errorf("%s = %+v, want missing with label", f, decl)
			}
		}
	}
}

func TestExtractDeclarations_Fields(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field domain.Field
		found bool
		value string
	}{
		{"mrp with currency token", "MRP: ₹ 99", domain.FieldMRP, true, "99"},
		{"mrp from price", "Price 45.50 only", domain.FieldMRP, true, "45.50"},
		{"mrp from inr", "INR 250", domain.FieldMRP, true, "250"},
		{"mrp keeps first match", "MRP 10.00 Price 20.00", domain.FieldMRP, true, "10.00"},
		{"rs inside word is ignored", "offers 20 cookies", domain.FieldMRP, false, domain.MissingValue},
		{"net quantity kg", "Net Wt. 1.5 kg", domain.FieldNetQuantity, true, "1.5 kg"},
		{"net quantity ml", "Net Volume: 250ml", domain.FieldNetQuantity, true, "250ml"},
		{"net quantity litre", "Net Quantity 1 Ltr", domain.FieldNetQuantity, true, "1 Ltr"},
		{"contents pieces", "Contents: 12 pieces", domain.FieldNetQuantity, true, "12 pieces"},
		{"quantity without unit", "Net Qty: 12", domain.FieldNetQuantity, false, domain.MissingValue},
		{"date with dashes", "Mfd: 01-02-24", domain.FieldDateOfMfg, true, "01-02-24"},
		{"date with dots", "Packed on 5.11.2025", domain.FieldDateOfMfg, true, "5.11.2025"},
		{"date with month name", "Expiry: 12 March 2027", domain.FieldDateOfMfg, true, "12 March 2027"},
		{"date without trigger", "12/12/2025", domain.FieldDateOfMfg, false, domain.MissingValue},
		{"date on other line", "Use by:\n12/12/2025", domain.FieldDateOfMfg, false, domain.MissingValue},
		{"care email", "write to Help@Example.co.in", domain.FieldConsumerCare, true, "Help@Example.co.in"},
		{"care mobile", "Ph: +91 98765 43210", domain.FieldConsumerCare, true, "+91 98765 43210"},
		{"care keyword only", "For complaints contact our office", domain.FieldConsumerCare, true, "Details Detected"},
		{"care email and phone", "feedback@abc.com / 1800 111 2222", domain.FieldConsumerCare, true, "feedback@abc.com, 1800 111 2222"},
		{"barcode is not a phone", "8901234567890", domain.FieldConsumerCare, false, domain.MissingValue},
		{"manufacturer multi-line", "Mfd by:\nAcme Ltd,\nPune", domain.FieldManufacturerDetails, true, "Acme Ltd, Pune..."},
		{"manufacturer truncated", "Marketed by: " + strings.Repeat("x", 80), domain.FieldManufacturerDetails, true, strings.Repeat("x", 50) + "..."},
		{"manufacturer stops at blank line", "Mktd by: Acme\n\nMRP 10", domain.FieldManufacturerDetails, true, "Acme..."},
		{"country explicit", "Made in Sri Lanka.", domain.FieldCountryOfOrigin, true, "Sri Lanka"},
		{"country inferred", "Registered office: Delhi, INDIA", domain.FieldCountryOfOrigin, true, "India (Inferred)"},
		{"indian is not india", "Indian Oil", domain.FieldCountryOfOrigin, false, domain.MissingValue},
		{"original is not origin", "original recipe", domain.FieldCountryOfOrigin, false, domain.MissingValue},
		{"common name", "Product Name: Masala Oats\nMRP 20", domain.FieldCommonName, true, "Masala Oats"},
		{"common name from item", "Item: Green Tea", domain.FieldCommonName, true, "Green Tea"},
		{"products is not a trigger", "dairy products", domain.FieldCommonName, false, domain.MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractDeclarations(tt.text).Get(tt.field)
			if got.Found != tt.found {
				t.Errorf("Found = %v, want %v (value %q)", got.Found, tt.found, got.Value)
			}
			if got.Value != tt.value {
				t.Errorf("Value = %q, want %q", got.Value, tt.value)
			}
			if got.Label != tt.field.Label() {
				t.Errorf("Label = %q, want %q", got.Label, tt.field.Label())
			}
		})
	}
}

func TestAnalyzeText_ReportConsistency(t *testing.T) {
	fixtures := []string{
		"",
		wheatBiscuitsLabel,
		fullyDeclaredLabel,
		"MRP 10",
		"made in india",
		"Product Manufactured by X Foods",
		"\xff\xfe broken utf8 MRP 5",
		strings.Repeat("noise ", 500),
	}

	for _, text := range fixtures {
		report := AnalyzeText(text)
		found := report.Details.FoundCount()

		if report.MissingCount+found != domain.FieldCount {
			t.Errorf("missing %d + found %d != 7 for %q", report.MissingCount, found, text)
		}
		if report.Score != ComplianceScore(found) {
			t.Errorf("Score = %d, want %d for %q", report.Score, ComplianceScore(found), text)
		}
		if report.Status != StatusForScore(report.Score) {
			t.Errorf("Status = %s does not follow score %d", report.Status, report.Score)
		}
		for _, f := range domain.Fields() {
			if report.Details.Get(f).Label != f.Label() {
				t.Errorf("%s label mismatch", f)
			}
		}
	}
}

func TestAnalyzeText_Idempotent(t *testing.T) {
	first := AnalyzeText(wheatBiscuitsLabel)
	for i := 0; i < 5; i++ {
		if again := AnalyzeText(wheatBiscuitsLabel); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestAnalyzeText_OverlappingTriggers(t *testing.T) {
	// Both fields trigger on the same phrase; each is judged independently.
	report := AnalyzeText("Product Manufactured by X Foods")

	if !report.Details.Get(domain.FieldCommonName).Found {
		t.Error("common_name not found")
	}
	if !report.Details.Get(domain.FieldManufacturerDetails).Found {
		t.Error("manufacturer_details not found")
	}
}

func TestRegexRuleEngine_Analyze(t *testing.T) {
	engine := NewRegexRuleEngine()

	if engine.Name() != "regex" {
		t.Errorf("Name() = %q, want regex", engine.Name())
	}

	report, err := engine.Analyze(context.Background(), wheatBiscuitsLabel)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !reflect.DeepEqual(report, AnalyzeText(wheatBiscuitsLabel)) {
		t.Error("Analyze() differs from AnalyzeText()")
	}
}
