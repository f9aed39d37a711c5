package usecase

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cleartag/labelscan/internal/domain"
)

const (
	// manufacturerExcerptLen is the number of characters kept after a
	// manufacturer trigger
	manufacturerExcerptLen = 50
	ellipsis               = "..."

	inferredIndia       = "India (Inferred)"
	careDetailsDetected = "Details Detected"
)

const monthNames = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

// Package-level compiled patterns. They run against lower-cased text and are
// never mutated after init.
var (
	mrpPattern = regexp.MustCompile(
		`\b(?:m\.?r\.?p\.?|price|rs\.?|inr)\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*[:\-]?\s*(\d+(?:\.\d{2})?)`)

	netQuantityPattern = regexp.MustCompile(
		`\b(?:net\s*(?:qty|quantity|wt|weight|vol|volume)|contents?)\.?\s*[:\-]?\s*(\d+(?:\.\d+)?\s*(?:kg|ml|ltr|l|g|pieces|pcs))`)

	// The trigger and the date must share a line, at most 20 non-digit
	// characters apart ("pkd. on:", "date of mfg:").
	dateOfMfgPattern = regexp.MustCompile(
		`\b(?:pkd|mfg|mfd|packed|manufactured|date|use\s*by|expiry|exp)\b[^\d\n]{0,20}?` +
			`(\d{1,2}[/\-.]\d{1,2}[/\-.](?:\d{4}|\d{2})|\d{1,2}[\s\-]*(?:` + monthNames + `)\.?[\s\-,]*(?:\d{4}|\d{2}))`)

	careKeywordPattern = regexp.MustCompile(
		`\b(?:customer\s*care|consumer\s*care|feedback|complaints?|contact|e-?mail|phone|tel|call)\b`)
	emailPattern = regexp.MustCompile(`[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	// Toll-free, mobile and STD landline numbers, optionally +91 prefixed.
	// The surrounding non-digit guards keep barcodes and licence numbers out.
	phonePattern = regexp.MustCompile(
		`(?:^|[^\d+])((?:\+91[\s\-]?)?(?:1[89]00[\s\-]?\d{3}[\s\-]?\d{3,4}|[6-9]\d{4}[\s\-]?\d{5}|0\d{2,4}[\s\-]?\d{6,8}))(?:\D|$)`)

	manufacturerPattern = regexp.MustCompile(
		`\b(?:manufactured|marketed|packed|mfd|mktd)\b\.?(?:\s*(?:by|in)\b)?\s*[:\-]?\s*(\S)`)

	countryPattern = regexp.MustCompile(
		`\b(?:country\s*of\s*origin|made\s*in|origin)\b\s*[:\-]?\s*([a-z][^\n,;:()]*)`)
	indiaPattern = regexp.MustCompile(`\bindia\b`)

	commonNamePattern = regexp.MustCompile(
		`\b(?:commodity|product|item)(?:\s*name)?\b\s*[:\-]?\s*([a-z0-9][^\n]*)`)
)

// labelText pairs OCR text with a lower-cased copy that has identical byte
// offsets, so matches found in lower can be sliced out of original.
type labelText struct {
	original string
	lower    string
}

func newLabelText(text string) labelText {
	text = strings.ReplaceAll(strings.ToValidUTF8(text, "?"), "\r\n", "\n")
	lower := strings.Map(func(r rune) rune {
		l := unicode.ToLower(r)
		if utf8.RuneLen(l) != utf8.RuneLen(r) {
			return r
		}
		return l
	}, text)
	return labelText{original: text, lower: lower}
}

// group returns submatch g of loc from the original-case text
func (t labelText) group(loc []int, g int) string {
	if loc == nil || loc[2*g] < 0 {
		return ""
	}
	return t.original[loc[2*g]:loc[2*g+1]]
}

// fieldRule extracts one declaration. It reports the value and whether the
// declaration was found.
type fieldRule func(t labelText) (string, bool)

// fieldRules holds one rule per declaration, indexed by field
var fieldRules = [domain.FieldCount]fieldRule{
	domain.FieldManufacturerDetails: extractManufacturer,
	domain.FieldCommonName:          extractCommonName,
	domain.FieldNetQuantity:         firstGroup(netQuantityPattern),
	domain.FieldMRP:                 firstGroup(mrpPattern),
	domain.FieldDateOfMfg:           firstGroup(dateOfMfgPattern),
	domain.FieldConsumerCare:        extractConsumerCare,
	domain.FieldCountryOfOrigin:     extractCountryOfOrigin,
}

// RegexRuleEngine is the pattern-based ComplianceEngine. It holds no state.
type RegexRuleEngine struct{}

// NewRegexRuleEngine creates a new regex rule engine
func NewRegexRuleEngine() *RegexRuleEngine {
	return &RegexRuleEngine{}
}

// Name returns the engine identifier used in configuration
func (e *RegexRuleEngine) Name() string { return "regex" }

// Analyze builds a compliance report from raw label text. It never fails.
func (e *RegexRuleEngine) Analyze(ctx context.Context, text string) (*domain.ComplianceReport, error) {
	return AnalyzeText(text), nil
}

// AnalyzeText is the pure text -> report function behind RegexRuleEngine
func AnalyzeText(text string) *domain.ComplianceReport {
	return BuildReport(ExtractDeclarations(text))
}

// ExtractDeclarations searches text for each mandatory declaration. The
// leftmost match of each field's pattern decides the verdict.
func ExtractDeclarations(text string) domain.Declarations {
	details := domain.NewDeclarations()
	if strings.TrimSpace(text) == "" {
		return details
	}

	t := newLabelText(text)
	for _, field := range domain.Fields() {
		if value, ok := fieldRules[field](t); ok {
			details.Set(field, value)
		}
	}
	return details
}

func firstGroup(pattern *regexp.Regexp) fieldRule {
	return func(t labelText) (string, bool) {
		loc := pattern.FindStringSubmatchIndex(t.lower)
		if loc == nil {
			return "", false
		}
		return strings.TrimSpace(t.group(loc, 1)), true
	}
}

func extractConsumerCare(t labelText) (string, bool) {
	var parts []string
	if loc := emailPattern.FindStringIndex(t.lower); loc != nil {
		parts = append(parts, t.original[loc[0]:loc[1]])
	}
	if loc := phonePattern.FindStringSubmatchIndex(t.lower); loc != nil {
		parts = append(parts, t.group(loc, 1))
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", "), true
	}
	if careKeywordPattern.MatchString(t.lower) {
		return careDetailsDetected, true
	}
	return "", false
}

// extractManufacturer keeps an excerpt of the text following the trigger,
// up to the end of its paragraph, whitespace collapsed and always marked with
// an ellipsis.
func extractManufacturer(t labelText) (string, bool) {
	loc := manufacturerPattern.FindStringSubmatchIndex(t.lower)
	if loc == nil {
		return "", false
	}
	rest := t.original[loc[2]:]
	if i := strings.Index(rest, "\n\n"); i >= 0 {
		rest = rest[:i]
	}
	if utf8.RuneCountInString(rest) > manufacturerExcerptLen {
		rest = string([]rune(rest)[:manufacturerExcerptLen])
	}
	excerpt := strings.Join(strings.Fields(rest), " ")
	return excerpt + ellipsis, true
}

func extractCountryOfOrigin(t labelText) (string, bool) {
	if loc := countryPattern.FindStringSubmatchIndex(t.lower); loc != nil {
		if value := trimClause(t.group(loc, 1)); value != "" {
			return value, true
		}
	}
	if indiaPattern.MatchString(t.lower) {
		return inferredIndia, true
	}
	return "", false
}

// extractCommonName has no fallback: without a trigger the name stays missing
func extractCommonName(t labelText) (string, bool) {
	loc := commonNamePattern.FindStringSubmatchIndex(t.lower)
	if loc == nil {
		return "", false
	}
	value := trimClause(t.group(loc, 1))
	return value, value != ""
}

func trimClause(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), " .-")
}
