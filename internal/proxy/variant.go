package proxy

import (
	"time"

	"github.com/bizmatters/agent-builder/number-advisor/internal/config"
	"github.com/bizmatters/agent-builder/number-advisor/internal/models"
)

// Variant selects per-route behaviour of the proxy
type Variant struct {
	Name                   string
	Timeout                time.Duration
	RetryUnauthorized      bool
	IncludeRecommendations bool
}

// VariantFromConfig builds a Variant from a route section of the config
func VariantFromConfig(name string, rc config.RouteConfig) Variant {
	return Variant{
		Name:                   name,
		Timeout:                rc.Timeout,
		RetryUnauthorized:      rc.RetryUnauthorized,
		IncludeRecommendations: rc.IncludeRecommendations,
	}
}

// Shape trims the result to what this route returns to clients
func (v Variant) Shape(result *models.RecommendationResult) interface{} {
	if v.IncludeRecommendations {
		return result
	}
	return models.AnswerResponse{Answer: result.Answer}
}
