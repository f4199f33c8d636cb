package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/pool-engine/internal/domain"
	"github.com/hxuan190/pool-engine/internal/engine"
	"github.com/hxuan190/pool-engine/internal/http/httputil"
	"github.com/hxuan190/pool-engine/internal/metrics"
)

type SwapHandler struct {
	engineSvc *engine.Service
}

func NewSwapHandler(engineSvc *engine.Service) *SwapHandler {
	return &SwapHandler{engineSvc: engineSvc}
}

func (h *SwapHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	private.POST("", h.executeSwap)
}

func (h *SwapHandler) Root() string {
	return "/swap"
}

// SwapRequest executes a swap against a pool
type SwapRequest struct {
	// Input token address
	TokenIn string `json:"tokenIn" binding:"required" example:"0x1111111111111111111111111111111111111111"`

	// Output token address
	TokenOut string `json:"tokenOut" binding:"required" example:"0x2222222222222222222222222222222222222222"`

	// Input amount in smallest token units
	AmountIn string `json:"amountIn" binding:"required" example:"1000000000"`

	// Account paying the input and receiving the output
	Caller string `json:"caller" binding:"required" example:"0x3333333333333333333333333333333333333333"`
}

// SwapResponse contains the settled swap amounts
type SwapResponse struct {
	TokenIn   string `json:"tokenIn" example:"0x1111111111111111111111111111111111111111"`
	TokenOut  string `json:"tokenOut" example:"0x2222222222222222222222222222222222222222"`
	AmountIn  string `json:"amountIn" example:"1000000000"`
	AmountOut string `json:"amountOut" example:"1993205416"`
}

// @Summary Execute swap
// @Description Swap an exact input amount of tokenIn for tokenOut at the constant-product price.
// @Description The swap settles atomically: both token legs move, or neither does and no state changes.
// @Tags swap
// @Accept json
// @Produce json
// @Param request body SwapRequest true "Swap parameters"
// @Success 200 {object} httputil.Response{data=SwapResponse}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response "Pool not found"
// @Failure 422 {object} httputil.Response "Insufficient liquidity or transfer failure"
// @Router /api/v1/swap [post]
func (h *SwapHandler) executeSwap(c *gin.Context) {
	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	tokenIn, err := domain.ParseAddress(req.TokenIn)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid tokenIn address")
		return
	}
	tokenOut, err := domain.ParseAddress(req.TokenOut)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid tokenOut address")
		return
	}
	caller, err := domain.ParseAddress(req.Caller)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid caller address")
		return
	}
	amountIn, ok := parseAmount(c, "amountIn", req.AmountIn)
	if !ok {
		return
	}

	start := time.Now()
	amountOut, err := h.engineSvc.Engine().Swap(tokenIn, tokenOut, amountIn, caller)
	metrics.SwapDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SwapRequests.WithLabelValues("error").Inc()
		respondEngineError(c, err)
		return
	}
	metrics.SwapRequests.WithLabelValues("success").Inc()

	httputil.HandleSuccess(c, SwapResponse{
		TokenIn:   tokenIn.String(),
		TokenOut:  tokenOut.String(),
		AmountIn:  amountIn.Dec(),
		AmountOut: amountOut.Dec(),
	})
}
