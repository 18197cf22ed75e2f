package proxy

import (
	"github.com/bizmatters/agent-builder/number-advisor/internal/models"
	"github.com/bizmatters/agent-builder/number-advisor/internal/upstream"
)

// resultFrom reads answer and recommendedNumbers from a successful outcome.
// Missing or mistyped fields default to "" and an empty list.
func resultFrom(out upstream.Outcome) *models.RecommendationResult {
	result := &models.RecommendationResult{
		RecommendedNumbers: []models.RecommendedNumber{},
	}

	obj, ok := out.JSONObject()
	if !ok {
		return result
	}

	result.Answer = stringField(obj, "answer")

	entries, _ := obj["recommendedNumbers"].([]interface{})
	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		result.RecommendedNumbers = append(result.RecommendedNumbers, models.RecommendedNumber{
			Geo:            stringField(m, "geo"),
			Type:           stringField(m, "type"),
			Status:         stringField(m, "status"),
			SMSEnabled:     boolField(m, "smsEnabled"),
			VoiceEnabled:   boolField(m, "voiceEnabled"),
			Considerations: stringField(m, "considerations"),
			Restrictions:   stringField(m, "restrictions"),
		})
	}
	return result
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}
