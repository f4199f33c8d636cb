package http

import (
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/pool-engine/internal/domain"
	"github.com/hxuan190/pool-engine/internal/engine"
	"github.com/hxuan190/pool-engine/internal/http/httputil"
	"github.com/hxuan190/pool-engine/internal/metrics"
)

type QuoteHandler struct {
	engineSvc *engine.Service
}

func NewQuoteHandler(engineSvc *engine.Service) *QuoteHandler {
	return &QuoteHandler{engineSvc: engineSvc}
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getQuote)
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

// QuoteRequest represents the parameters for a swap quote
type QuoteRequest struct {
	// Input token address
	TokenIn string `form:"tokenIn" binding:"required" example:"0x1111111111111111111111111111111111111111"`

	// Output token address
	TokenOut string `form:"tokenOut" binding:"required" example:"0x2222222222222222222222222222222222222222"`

	// Input amount in smallest token units
	AmountIn string `form:"amountIn" binding:"required" example:"1000000000"`
}

// QuoteResponse contains the calculated swap output
type QuoteResponse struct {
	TokenIn  string `json:"tokenIn" example:"0x1111111111111111111111111111111111111111"`
	TokenOut string `json:"tokenOut" example:"0x2222222222222222222222222222222222222222"`

	// Input amount the quote was computed for
	AmountIn string `json:"amountIn" example:"1000000000"`

	// Output amount after the pool fee, rounded down
	AmountOut string `json:"amountOut" example:"1993205416"`

	// Pool fee in basis points
	FeeBps uint64 `json:"feeBps" example:"30"`
}

// @Summary Get swap quote
// @Description Calculate the constant-product swap output for a token pair without executing.
// @Description The quote applies the pool fee and rounds down; the same amount swapped
// @Description immediately afterwards settles at exactly the quoted output.
// @Tags quote
// @Produce json
// @Param tokenIn query string true "Input token address"
// @Param tokenOut query string true "Output token address"
// @Param amountIn query string true "Input amount in smallest token units" example("1000000000")
// @Success 200 {object} httputil.Response{data=QuoteResponse}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response "Pool not found"
// @Failure 422 {object} httputil.Response "Insufficient liquidity"
// @Router /api/v1/quote [get]
func (h *QuoteHandler) getQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.HandleBadRequest(c, "invalid query parameters: "+err.Error())
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
	amountIn, ok := parseAmount(c, "amountIn", req.AmountIn)
	if !ok {
		return
	}

	amountOut, err := h.engineSvc.Engine().AmountOut(tokenIn, tokenOut, amountIn)
	if err != nil {
		metrics.QuoteRequests.WithLabelValues("error").Inc()
		respondEngineError(c, err)
		return
	}
	metrics.QuoteRequests.WithLabelValues("success").Inc()

	httputil.HandleSuccess(c, QuoteResponse{
		TokenIn:   tokenIn.String(),
		TokenOut:  tokenOut.String(),
		AmountIn:  amountIn.Dec(),
		AmountOut: amountOut.Dec(),
		FeeBps:    h.engineSvc.Engine().FeeBps(),
	})
}
