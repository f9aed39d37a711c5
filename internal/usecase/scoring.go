package usecase

import (
	"fmt"
	"math"

	"github.com/cleartag/labelscan/internal/domain"
)

// Status thresholds on the 0-100 compliance score
const (
	fullyCompliantScore     = 100
	partiallyCompliantScore = 70
)

// ComplianceScore returns round(100 * found / 7)
func ComplianceScore(found int) int {
	return int(math.Round(100 * float64(found) / float64(domain.FieldCount)))
}

// StatusForScore maps a compliance score to its status
func StatusForScore(score int) domain.ComplianceStatus {
	switch {
	case score >= fullyCompliantScore:
		return domain.StatusFullyCompliant
	case score >= partiallyCompliantScore:
		return domain.StatusPartiallyCompliant
	default:
		return domain.StatusNonCompliant
	}
}

// BuildReport derives the aggregate report from a complete declaration set.
// Every engine builds its report here, so score, status and missing count
// always agree with the details.
func BuildReport(details domain.Declarations) *domain.ComplianceReport {
	found := details.FoundCount()
	score := ComplianceScore(found)

	productName := domain.UnknownProductName
	if name := details.Get(domain.FieldCommonName); name.Found {
		productName = name.Value
	}

	return &domain.ComplianceReport{
		ProductName:  productName,
		Status:       StatusForScore(score),
		Score:        score,
		MissingCount: domain.FieldCount - found,
		Details:      details,
		Message:      fmt.Sprintf("Found %d/%d Mandatory Declarations.", found, domain.FieldCount),
	}
}
