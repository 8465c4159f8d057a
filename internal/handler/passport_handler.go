package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/career-passport/internal/domain"
	"github.com/prohmpiriya/career-passport/internal/service"
	"github.com/prohmpiriya/career-passport/pkg/response"
)

// PassportHandler serves on-chain passport reads
type PassportHandler struct {
	passportService service.PassportService
	// timeout bounds one passport request including retries; zero disables it
	timeout time.Duration
	responder
}

// NewPassportHandler creates a new PassportHandler
func NewPassportHandler(passportService service.PassportService, timeout time.Duration, opts Options) *PassportHandler {
	return &PassportHandler{
		passportService: passportService,
		timeout:         timeout,
		responder:       newResponder(opts),
	}
}

func (h *PassportHandler) readContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func provenance[T any](body response.Body, read *domain.PassportRead[T]) response.Body {
	body = body.With("source", read.Source).With("stale", read.Stale)
	if !read.FetchedAt.IsZero() {
		body = body.With("fetchedAt", read.FetchedAt.UTC().Format(time.RFC3339))
	}
	return body
}

// Stamps handles GET /passport/:walletAddress/stamps
func (h *PassportHandler) Stamps(c *gin.Context) {
	ctx, cancel := h.readContext(c)
	defer cancel()

	read, err := h.passportService.Stamps(ctx, c.Param("walletAddress"))
	if err != nil {
		h.fail(c, err, "read stamps")
		return
	}

	c.JSON(http.StatusOK, provenance(response.Success("stamps", read.Data), read))
}

// NFTs handles GET /passport/:walletAddress/nfts
func (h *PassportHandler) NFTs(c *gin.Context) {
	ctx, cancel := h.readContext(c)
	defer cancel()

	read, err := h.passportService.NFTs(ctx, c.Param("walletAddress"))
	if err != nil {
		h.fail(c, err, "read nfts")
		return
	}

	c.JSON(http.StatusOK, provenance(response.Success("nfts", read.Data), read))
}

// Eligibility handles GET /passport/:walletAddress/eligibility?organization=
func (h *PassportHandler) Eligibility(c *gin.Context) {
	ctx, cancel := h.readContext(c)
	defer cancel()

	read, err := h.passportService.Eligibility(ctx, c.Param("walletAddress"), c.Query("organization"))
	if err != nil {
		h.fail(c, err, "read eligibility")
		return
	}

	body := response.OK().
		With("organization", read.Data.Organization).
		With("stampCount", read.Data.StampCount).
		With("canMint", read.Data.CanMint).
		With("hasPlatformNft", read.Data.HasPlatformNft)
	c.JSON(http.StatusOK, provenance(body, read))
}
