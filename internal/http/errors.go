package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/pool-engine/internal/engine"
	"github.com/hxuan190/pool-engine/internal/http/httputil"
)

// respondEngineError maps engine sentinel errors onto HTTP statuses.
func respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrPoolNotFound):
		httputil.NotFound(c, err.Error())
	case errors.Is(err, engine.ErrPoolAlreadyExists):
		httputil.Conflict(c, err.Error())
	case errors.Is(err, engine.ErrIdenticalTokens),
		errors.Is(err, engine.ErrInvalidToken),
		errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, engine.ErrAmountTooLarge):
		httputil.BadRequest(c, err.Error())
	case errors.Is(err, engine.ErrInsufficientLiquidity),
		errors.Is(err, engine.ErrInsufficientShares),
		errors.Is(err, engine.ErrTransferFailed):
		httputil.Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, engine.ErrReentrancyRejected):
		httputil.Conflict(c, err.Error())
	default:
		httputil.InternalError(c, err.Error())
	}
}
