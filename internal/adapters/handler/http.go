package handler

import (
	"context"
	"errors"
	"imagestudio/internal/adapters/identity"
	"imagestudio/internal/core/domain"
	"imagestudio/internal/core/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// HTTP serves the generation endpoint and its supporting routes.
type HTTP struct {
	submitter service.Submitter
	history   *service.HistoryService
	timeout   time.Duration
}

func NewHTTP(submitter service.Submitter, history *service.HistoryService, timeout time.Duration) *HTTP {
	return &HTTP{submitter: submitter, history: history, timeout: timeout}
}

// NewEngine builds a gin engine with the standard middleware chain and all routes mounted.
func NewEngine(h *HTTP, validator TokenValidator) *gin.Engine {
	engine := gin.New()
	engine.Use(
		RecoveryMiddleware(),
		RequestIDMiddleware(),
		TracingMiddleware("imagestudio"),
		LoggerMiddleware(),
		IdentityMiddleware(validator),
	)

	h.Register(engine)
	return engine
}

func (h *HTTP) Register(engine *gin.Engine) {
	engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.POST("/replicate/generate-image", h.Generate)
	api.GET("/models", h.Models)
	api.GET("/images", RequireIdentity(), h.Images)
}

type generateReq struct {
	Prompt string         `json:"prompt"`
	Model  domain.ModelID `json:"model"`
}

func (h *HTTP) Generate(c *gin.Context) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Model == "" {
		req.Model = domain.DefaultModel
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	log.Debug().Str("model", string(req.Model)).Int("promptLength", len(req.Prompt)).Msg("received prompt")

	result := h.submitter.Submit(ctx, req.Prompt, req.Model)
	if !result.OK() {
		c.JSON(failureStatus(result.Err), gin.H{"error": result.Message()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"output": []string{result.ImageURL}})
}

func failureStatus(err error) int {
	if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrInvalidModel) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type modelResp struct {
	ID               domain.ModelID `json:"id"`
	Name             string         `json:"name"`
	UpstreamName     string         `json:"upstreamName"`
	Description      string         `json:"description"`
	ShortDescription string         `json:"shortDescription"`
	Default          bool           `json:"default"`
	Parameters       map[string]any `json:"parameters"`
}

func (h *HTTP) Models(c *gin.Context) {
	models := lo.Map(domain.Models(), func(d domain.ModelDescriptor, _ int) modelResp {
		return modelResp{
			ID:               d.ID,
			Name:             d.Name,
			UpstreamName:     d.UpstreamName,
			Description:      d.Description,
			ShortDescription: d.ShortDescription,
			Default:          d.ID == domain.DefaultModel,
			Parameters:       lo.OmitByKeys(d.Parameters.Input(""), []string{"prompt"}),
		}
	})

	c.JSON(http.StatusOK, gin.H{"models": models})
}

func (h *HTTP) Images(c *gin.Context) {
	id, _ := identity.FromContext(c.Request.Context())

	records, err := h.history.List(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("identity", id).Msg("error fetching images")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch images"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"images": records})
}
