package domain

// ComplianceStatus is the overall verdict derived from the compliance score
type ComplianceStatus string

const (
	StatusNonCompliant       ComplianceStatus = "Non-Compliant"
	StatusPartiallyCompliant ComplianceStatus = "Partially Compliant"
	StatusFullyCompliant     ComplianceStatus = "Fully Compliant"
)

// UnknownProductName is reported when no common name declaration was found
const UnknownProductName = "Unknown Product"

// ComplianceReport is the structured result of analysing one label
type ComplianceReport struct {
	ProductName  string           `json:"product_name"`
	Status       ComplianceStatus `json:"compliance_status"`
	Score        int              `json:"compliance_score"` // 0-100
	MissingCount int              `json:"missing_count"`
	Details      Declarations     `json:"details"`
	Message      string           `json:"message"`
}

// AnalyzeRequest carries OCR text submitted directly for analysis
type AnalyzeRequest struct {
	Text string `json:"text"`
}
