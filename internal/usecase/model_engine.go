package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cleartag/labelscan/internal/domain"
)

// maxPromptText is the number of OCR characters forwarded to the model
const maxPromptText = 1000

// noValueAnswers are model answers treated as "declaration not present"
var noValueAnswers = map[string]bool{
	"":        true,
	"missing": true,
	"null":    true,
	"none":    true,
	"n/a":     true,
	"na":      true,
	"unknown": true,
}

const promptTemplate = `Analyze the following product label text and extract the mandatory declarations.
Return a single JSON object with exactly these keys: %s.
Each value must be the text found on the label, or null when the declaration is absent.

Text:
%s

JSON:
`

// ModelRuleEngine extracts declarations by prompting a language model.
// It produces the same report shape as RegexRuleEngine.
type ModelRuleEngine struct {
	client             domain.ModelClient
	enableDebugLogging bool
}

// NewModelRuleEngine creates a model-backed compliance engine
func NewModelRuleEngine(client domain.ModelClient, enableDebugLogging bool) *ModelRuleEngine {
	return &ModelRuleEngine{
		client:             client,
		enableDebugLogging: enableDebugLogging,
	}
}

// Name returns the engine identifier used in configuration
func (e *ModelRuleEngine) Name() string { return "model" }

// Analyze prompts the model and converts its JSON answer into a report.
// Empty text short-circuits to an all-missing report without a model call.
func (e *ModelRuleEngine) Analyze(ctx context.Context, text string) (*domain.ComplianceReport, error) {
	if strings.TrimSpace(text) == "" {
		return BuildReport(domain.NewDeclarations()), nil
	}
	if e.client == nil {
		return nil, fmt.Errorf("%w: model client not configured", domain.ErrModelFailure)
	}

	completion, err := e.client.Complete(ctx, buildPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrModelFailure, err)
	}

	if e.enableDebugLogging {
		log.Printf("[MODEL] Completion: %q", completion)
	}

	details, err := parseModelAnswer(completion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrModelFailure, err)
	}
	return BuildReport(details), nil
}

func buildPrompt(text string) string {
	if runes := []rune(text); len(runes) > maxPromptText {
		text = string(runes[:maxPromptText])
	}
	keys := make([]string, 0, domain.FieldCount)
	for _, f := range domain.Fields() {
		keys = append(keys, f.Key())
	}
	return fmt.Sprintf(promptTemplate, strings.Join(keys, ", "), text)
}

// parseModelAnswer decodes the first JSON object in a completion. Models
// often stop before the closing brace, so a missing one is restored.
func parseModelAnswer(completion string) (domain.Declarations, error) {
	details := domain.NewDeclarations()

	start := strings.Index(completion, "{")
	if start < 0 {
		return details, fmt.Errorf("no JSON object in completion")
	}
	body := completion[start:]
	if end := strings.LastIndex(body, "}"); end >= 0 {
		body = body[:end+1]
	} else {
		body += "}"
	}

	var answer map[string]interface{}
	if err := json.Unmarshal([]byte(body), &answer); err != nil {
		return details, fmt.Errorf("decode completion: %w", err)
	}

	for key, raw := range answer {
		field, ok := domain.ParseField(strings.ToLower(strings.TrimSpace(key)))
		if !ok {
			continue
		}
		if value, ok := answerValue(raw); ok {
			details.Set(field, value)
		}
	}
	return details, nil
}

func answerValue(raw interface{}) (string, bool) {
	var value string
	switch v := raw.(type) {
	case string:
		value = strings.TrimSpace(v)
	case float64:
		value = strings.TrimSpace(fmt.Sprintf("%g", v))
	case bool:
		if !v {
			return "", false
		}
		value = "Details Detected"
	default:
		return "", false
	}
	if noValueAnswers[strings.ToLower(value)] {
		return "", false
	}
	return value, true
}
