package gateway

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/bizmatters/agent-builder/number-advisor/internal/models"
)

const maxInquiryBytes = 1 << 20

// decodeInquiry reads each top-level field on its own so a mistyped optional
// field never discards the question. Unreadable or non-object bodies decode
// to an empty Inquiry.
func decodeInquiry(body io.Reader) models.Inquiry {
	var inquiry models.Inquiry
	if body == nil {
		return inquiry
	}
	data, err := io.ReadAll(io.LimitReader(body, maxInquiryBytes))
	if err != nil {
		return inquiry
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return inquiry
	}

	inquiry.Question = rawString(fields["question"])
	inquiry.Details = decodeDetails(fields["details"])
	inquiry.History = decodeHistory(fields["history"])
	return inquiry
}

// decodeDetails returns nil for absent or falsy values. Any other non-object
// value yields a Details block with every field empty.
func decodeDetails(raw json.RawMessage) *models.Details {
	if falsy(raw) {
		return nil
	}

	details := &models.Details{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return details
	}

	details.SMSType = rawString(fields["smsType"])
	details.UseCase = rawString(fields["useCase"])
	details.BusinessPresence = rawString(fields["businessPresence"])
	details.Timeline = rawString(fields["timeline"])
	details.Volume = rawString(fields["volume"])
	details.VoiceRequired = rawString(fields["voiceRequired"])
	details.SelectedCountries = rawStrings(fields["selectedCountries"])
	return details
}

// decodeHistory keeps every array element as a turn; non-string role or
// content is treated as missing. A non-array history is empty.
func decodeHistory(raw json.RawMessage) []models.Turn {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	history := make([]models.Turn, 0, len(entries))
	for _, entry := range entries {
		var fields map[string]json.RawMessage
		_ = json.Unmarshal(entry, &fields)
		history = append(history, models.Turn{
			Role:    rawStringPtr(fields["role"]),
			Content: rawStringPtr(fields["content"]),
		})
	}
	return history
}

func rawString(raw json.RawMessage) string {
	if s := rawStringPtr(raw); s != nil {
		return *s
	}
	return ""
}

func rawStringPtr(raw json.RawMessage) *string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	return &s
}

// rawStrings keeps the string elements of an array and drops the rest
func rawStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := rawStringPtr(item); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

func falsy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return true
	}
	return false
}
