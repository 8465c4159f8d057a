package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/career-passport/internal/domain"
	"github.com/prohmpiriya/career-passport/internal/dto"
	"github.com/prohmpiriya/career-passport/internal/service"
	"github.com/prohmpiriya/career-passport/pkg/response"
)

// MatchHandler handles student/organization match HTTP requests
type MatchHandler struct {
	matchService service.MatchService
	responder
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(matchService service.MatchService, opts Options) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
		responder:    newResponder(opts),
	}
}

// Create handles POST /matches
func (h *MatchHandler) Create(c *gin.Context) {
	var req dto.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c)
		return
	}

	match, err := h.matchService.Create(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err, "create match")
		return
	}

	c.JSON(http.StatusCreated, response.Success("match", match))
}

// List handles GET /matches?walletAddress=
func (h *MatchHandler) List(c *gin.Context) {
	matches, err := h.matchService.List(c.Request.Context(), c.Query("walletAddress"))
	if err != nil {
		if !h.degraded(c, err, "matches") {
			h.fail(c, err, "list matches")
			return
		}
		matches = []*domain.Match{}
	}

	c.JSON(http.StatusOK, response.Success("matches", matches))
}

// UpdateStatus handles PATCH /matches/:matchId/status
func (h *MatchHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateMatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c)
		return
	}

	match, err := h.matchService.UpdateStatus(c.Request.Context(), c.Param("matchId"), &req)
	if err != nil {
		h.fail(c, err, "update match status")
		return
	}

	c.JSON(http.StatusOK, response.Success("match", match))
}
