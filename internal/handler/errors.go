package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/career-passport/internal/domain"
	"github.com/prohmpiriya/career-passport/internal/service"
	"github.com/prohmpiriya/career-passport/pkg/logger"
	"github.com/prohmpiriya/career-passport/pkg/response"
)

// Messages returned with 503 when the store tables are missing
const (
	SetupHintMessage   = "Store table not initialized. Run 'go run ./cmd/setup' to create the tables."
	UnavailableMessage = "Service temporarily unavailable"
)

// Options carries what every handler needs besides its services
type Options struct {
	Logger *logger.Logger
	// Production hides the setup hint from 503 bodies
	Production bool
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.NewNop()
	}
	return o
}

// responder turns service errors into HTTP responses
type responder struct {
	opts Options
}

func newResponder(opts Options) responder {
	return responder{opts: opts.withDefaults()}
}

func (r responder) log(c *gin.Context) *logger.Logger {
	return r.opts.Logger.WithContext(c.Request.Context())
}

// fail writes the response for err. action completes "Failed to ..." on 500s.
func (r responder) fail(c *gin.Context, err error, action string) {
	body := r.errorBody(c, err, action)
	_ = c.Error(err)
	c.JSON(body.Status(), body)
}

func (r responder) errorBody(c *gin.Context, err error, action string) *response.ErrorBody {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		if field := domain.FieldOf(err); field != "" {
			return response.FieldError(field, domain.MessageOf(err))
		}
		return response.BadRequest(domain.MessageOf(err))
	case domain.KindNotFound:
		return response.NotFound(domain.MessageOf(err))
	case domain.KindConflict:
		switch {
		case errors.Is(err, service.ErrAlreadyApplied):
			return response.Error(response.ErrCodeAlreadyApplied, domain.MessageOf(err))
		case errors.Is(err, service.ErrOpenMatchExists):
			return response.Conflict(domain.MessageOf(err))
		default:
			return response.Error(response.ErrCodeDuplicateEntry, domain.MessageOf(err))
		}
	case domain.KindUnavailable:
		r.log(c).Warn("store unavailable", zap.String("action", action), zap.Error(err))
		if r.opts.Production {
			return response.ServiceUnavailable(UnavailableMessage)
		}
		return response.ServiceUnavailable(SetupHintMessage)
	default:
		r.log(c).Error("request failed", zap.String("action", action), zap.Error(err))
		return response.InternalError("Failed to " + action)
	}
}

// degraded reports whether a list read failed only because the store is not
// set up, in which case the caller answers with an empty list
func (r responder) degraded(c *gin.Context, err error, what string) bool {
	if !domain.IsUnavailable(err) {
		return false
	}
	r.log(c).Warn("store unavailable, returning empty list", zap.String("list", what), zap.Error(err))
	return true
}

func (r responder) badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
}
