package gateway

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bizmatters/agent-builder/number-advisor/internal/catalog"
	"github.com/bizmatters/agent-builder/number-advisor/internal/config"
	"github.com/bizmatters/agent-builder/number-advisor/internal/logger"
	"github.com/bizmatters/agent-builder/number-advisor/internal/models"
	"github.com/bizmatters/agent-builder/number-advisor/internal/proxy"
)

// BreakerReporter exposes upstream circuit breaker states for readiness checks
type BreakerReporter interface {
	BreakerStates() map[string]string
}

// Routes holds the proxy variant served by each question route
type Routes struct {
	QA       proxy.Variant
	QASimple proxy.Variant
}

// Handler handles HTTP requests for the gateway layer
type Handler struct {
	proxyService *proxy.Service
	routes       Routes
	options      catalog.Options
	breakers     BreakerReporter
	log          zerolog.Logger
}

// NewHandler creates a new gateway handler. breakers may be nil.
func NewHandler(proxyService *proxy.Service, routes Routes, breakers BreakerReporter, log zerolog.Logger) *Handler {
	return &Handler{
		proxyService: proxyService,
		routes:       routes,
		options:      catalog.Default(),
		breakers:     breakers,
		log:          log,
	}
}

// AskQA godoc
// @Summary Ask a question
// @Description Forward a question with requirement details and chat history to the QA service. Returns the answer only.
// @Tags qa
// @Accept json
// @Produce json
// @Param request body models.Inquiry true "Question and context"
// @Success 200 {object} models.AnswerResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Failure 502 {object} models.UpstreamErrorResponse
// @Failure 503 {object} models.UpstreamErrorResponse
// @Failure 504 {object} models.UpstreamErrorResponse
// @Router /qa [post]
func (h *Handler) AskQA(c *gin.Context) {
	h.ask(c, h.routes.QA)
}

// AskQASimple godoc
// @Summary Ask a question and get number recommendations
// @Description Same as /qa, but retries once without the Bearer scheme on 401 and returns recommendedNumbers.
// @Tags qa
// @Accept json
// @Produce json
// @Param request body models.Inquiry true "Question and context"
// @Success 200 {object} models.RecommendationResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Failure 502 {object} models.UpstreamErrorResponse
// @Failure 503 {object} models.UpstreamErrorResponse
// @Failure 504 {object} models.UpstreamErrorResponse
// @Router /qa/simple [post]
func (h *Handler) AskQASimple(c *gin.Context) {
	h.ask(c, h.routes.QASimple)
}

func (h *Handler) ask(c *gin.Context, variant proxy.Variant) {
	inquiry := decodeInquiry(c.Request.Body)

	result, err := h.proxyService.Ask(c.Request.Context(), variant, inquiry)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, variant.Shape(result))
}

func (h *Handler) respondError(c *gin.Context, err error) {
	log := logger.FromContext(c.Request.Context(), h.log)

	var upstreamErr *proxy.UpstreamError
	switch {
	case errors.Is(err, proxy.ErrInvalidQuestion):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: models.MsgInvalidQuestion})

	case errors.Is(err, config.ErrNotConfigured):
		log.Error().Err(err).Msg("Rejecting question, upstream is not configured")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: models.MsgNotConfigured})

	case errors.As(err, &upstreamErr):
		log.Warn().
			Int("status", upstreamErr.Status).
			Strs("tried", upstreamErr.Tried).
			Msg("Upstream failed")
		c.JSON(responseStatus(upstreamErr.Status), models.UpstreamErrorResponse{
			Error:  models.MsgUpstreamError,
			Tried:  upstreamErr.Tried,
			Status: upstreamErr.Status,
			Body:   upstreamErr.Body,
		})

	default:
		log.Error().Err(err).Msg("Unexpected error while proxying question")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: models.MsgUnexpectedError})
	}
}

// responseStatus echoes the upstream status unless it cannot carry an error body
func responseStatus(status int) int {
	if status < 400 || status > 599 {
		return http.StatusBadGateway
	}
	return status
}

// GetOptions godoc
// @Summary Requirement options
// @Description Select options for every details field and the countries listed first
// @Tags qa
// @Produce json
// @Success 200 {object} catalog.Options
// @Router /options [get]
func (h *Handler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.options)
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ready reports whether questions can be proxied
func (h *Handler) Ready(c *gin.Context) {
	body := gin.H{"status": "ready"}
	if h.breakers != nil {
		if states := h.breakers.BreakerStates(); len(states) > 0 {
			body["breakers"] = states
		}
	}

	if !h.proxyService.Configured() {
		body["status"] = "not ready"
		body["error"] = "upstream not configured"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
