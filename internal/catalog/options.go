// Package catalog lists the requirement choices the chat UI offers
package catalog

// Option is one selectable value with its display label
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options mirrors the fields of models.Details
type Options struct {
	SMSType           []Option `json:"smsType"`
	UseCase           []Option `json:"useCase"`
	BusinessPresence  []Option `json:"businessPresence"`
	Timeline          []Option `json:"timeline"`
	Volume            []Option `json:"volume"`
	VoiceRequired     []Option `json:"voiceRequired"`
	PriorityCountries []string `json:"priorityCountries"`
}

var anyOption = Option{Value: "", Label: "Any"}

// Default returns the catalogue. Every list starts with the "Any" choice.
func Default() Options {
	return Options{
		SMSType: []Option{
			anyOption,
			{Value: "1-way", Label: "1-way SMS"},
			{Value: "2-way", Label: "2-way SMS"},
		},
		UseCase: []Option{
			anyOption,
			{Value: "marketing", Label: "Marketing"},
			{Value: "support", Label: "Support"},
			{Value: "authentication", Label: "Authentication"},
			{Value: "notifications", Label: "Notifications"},
		},
		BusinessPresence: []Option{
			anyOption,
			{Value: "yes-local", Label: "Yes - Local presence"},
			{Value: "no-local", Label: "No local presence"},
		},
		Timeline: []Option{
			anyOption,
			{Value: "asap", Label: "ASAP"},
			{Value: "1-2 days", Label: "1-2 days"},
			{Value: "1-3 weeks", Label: "1-3 weeks"},
			{Value: "6-12 weeks", Label: "6-12 weeks"},
		},
		Volume: []Option{
			anyOption,
			{Value: "<1k/day", Label: "Low (<1k/day)"},
			{Value: "1k-10k/day", Label: "Medium (1k-10k/day)"},
			{Value: "10k-100k/day", Label: "High (10k-100k/day)"},
			{Value: ">100k/day", Label: "Very High (>100k/day)"},
		},
		VoiceRequired: []Option{
			anyOption,
			{Value: "yes", Label: "Required"},
			{Value: "no", Label: "Not required"},
		},
		PriorityCountries: []string{
			"US", "GB", "CA", "AU", "DE", "FR", "IT", "ES", "NL", "SE", "NO",
			"DK", "FI", "IE", "BE", "CH", "AT", "PT", "BR", "MX", "AR", "CL",
			"IN", "SG", "JP", "KR", "HK", "TW", "TH", "MY", "PH", "ID", "VN",
		},
	}
}
