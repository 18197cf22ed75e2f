package models

// Inquiry is the question plus form context submitted by the chat UI
type Inquiry struct {
	Question string   `json:"question"`
	Details  *Details `json:"details,omitempty"`
	History  []Turn   `json:"history,omitempty"`
}

// Details carries the structured requirements picked in the filter sidebar
type Details struct {
	SMSType           string   `json:"smsType"`
	UseCase           string   `json:"useCase"`
	BusinessPresence  string   `json:"businessPresence"`
	Timeline          string   `json:"timeline"`
	Volume            string   `json:"volume"`
	VoiceRequired     string   `json:"voiceRequired"`
	SelectedCountries []string `json:"selectedCountries"`
}

// Turn is one prior chat message. Nil fields mean the client omitted them.
type Turn struct {
	Role    *string `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

// RecommendedNumber describes one phone number option suggested by the upstream service
type RecommendedNumber struct {
	Geo            string `json:"geo"`
	Type           string `json:"type"`
	Status         string `json:"status,omitempty"`
	SMSEnabled     bool   `json:"smsEnabled"`
	VoiceEnabled   bool   `json:"voiceEnabled"`
	Considerations string `json:"considerations"`
	Restrictions   string `json:"restrictions"`
}

// RecommendationResult is the client-facing success body
type RecommendationResult struct {
	Answer             string              `json:"answer"`
	RecommendedNumbers []RecommendedNumber `json:"recommendedNumbers"`
}

// AnswerResponse is the trimmed success body used by routes that omit recommendations
type AnswerResponse struct {
	Answer string `json:"answer"`
}

// UpstreamQuestion is the only payload ever sent upstream
type UpstreamQuestion struct {
	Question string `json:"question"`
}
