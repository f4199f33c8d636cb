package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/pool-engine/internal/domain"
	"github.com/hxuan190/pool-engine/internal/engine"
	"github.com/hxuan190/pool-engine/internal/http/httputil"
	"github.com/hxuan190/pool-engine/internal/metrics"
)

type LiquidityHandler struct {
	engineSvc *engine.Service
}

func NewLiquidityHandler(engineSvc *engine.Service) *LiquidityHandler {
	return &LiquidityHandler{engineSvc: engineSvc}
}

func (h *LiquidityHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	private.POST("/add", h.addLiquidity)
	private.POST("/remove", h.removeLiquidity)
}

func (h *LiquidityHandler) Root() string {
	return "/liquidity"
}

// AddLiquidityRequest deposits both tokens of a pair into its pool
type AddLiquidityRequest struct {
	TokenA string `json:"tokenA" binding:"required" example:"0x1111111111111111111111111111111111111111"`
	TokenB string `json:"tokenB" binding:"required" example:"0x2222222222222222222222222222222222222222"`

	// Deposit amount of tokenA in smallest units
	AmountA string `json:"amountA" binding:"required" example:"1000000000"`

	// Deposit amount of tokenB in smallest units
	AmountB string `json:"amountB" binding:"required" example:"2000000000"`

	// Provider account funding the deposit and receiving the shares
	Provider string `json:"provider" binding:"required" example:"0x3333333333333333333333333333333333333333"`
}

// AddLiquidityResponse contains the minted share amount
type AddLiquidityResponse struct {
	// Liquidity shares minted to the provider
	SharesMinted string `json:"sharesMinted" example:"3000000000"`
}

// @Summary Add liquidity
// @Description Deposit both tokens of a pair and mint liquidity shares to the provider.
// @Description Both deposit legs settle or neither does.
// @Tags liquidity
// @Accept json
// @Produce json
// @Param request body AddLiquidityRequest true "Deposit parameters"
// @Success 200 {object} httputil.Response{data=AddLiquidityResponse}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response "Pool not found"
// @Failure 422 {object} httputil.Response "Transfer failure"
// @Router /api/v1/liquidity/add [post]
func (h *LiquidityHandler) addLiquidity(c *gin.Context) {
	var req AddLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	a, err := domain.ParseAddress(req.TokenA)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid tokenA address")
		return
	}
	b, err := domain.ParseAddress(req.TokenB)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid tokenB address")
		return
	}
	provider, err := domain.ParseAddress(req.Provider)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid provider address")
		return
	}
	amountA, ok := parseAmount(c, "amountA", req.AmountA)
	if !ok {
		return
	}
	amountB, ok := parseAmount(c, "amountB", req.AmountB)
	if !ok {
		return
	}

	start := time.Now()
	minted, err := h.engineSvc.Engine().AddLiquidity(a, b, amountA, amountB, provider)
	metrics.LiquidityOpDuration.WithLabelValues("add").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LiquidityOps.WithLabelValues("add", "error").Inc()
		respondEngineError(c, err)
		return
	}
	metrics.LiquidityOps.WithLabelValues("add", "success").Inc()

	httputil.HandleSuccess(c, AddLiquidityResponse{SharesMinted: minted.Dec()})
}

// RemoveLiquidityRequest burns shares and withdraws both tokens
type RemoveLiquidityRequest struct {
	TokenA string `json:"tokenA" binding:"required" example:"0x1111111111111111111111111111111111111111"`
	TokenB string `json:"tokenB" binding:"required" example:"0x2222222222222222222222222222222222222222"`

	// Liquidity shares to burn
	Shares string `json:"shares" binding:"required" example:"1500000000"`

	// Provider account burning shares and receiving the tokens
	Provider string `json:"provider" binding:"required" example:"0x3333333333333333333333333333333333333333"`
}

// RemoveLiquidityResponse contains the withdrawn amounts in canonical order
type RemoveLiquidityResponse struct {
	// Amount of the canonical first token paid out
	Amount0 string `json:"amount0" example:"500000000"`

	// Amount of the canonical second token paid out
	Amount1 string `json:"amount1" example:"1000000000"`
}

// @Summary Remove liquidity
// @Description Burn liquidity shares and withdraw the proportional amounts of both tokens.
// @Tags liquidity
// @Accept json
// @Produce json
// @Param request body RemoveLiquidityRequest true "Withdrawal parameters"
// @Success 200 {object} httputil.Response{data=RemoveLiquidityResponse}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response "Pool not found"
// @Failure 422 {object} httputil.Response "Insufficient shares or transfer failure"
// @Router /api/v1/liquidity/remove [post]
func (h *LiquidityHandler) removeLiquidity(c *gin.Context) {
	var req RemoveLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	a, err := domain.ParseAddress(req.TokenA)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid tokenA address")
		return
	}
	b, err := domain.ParseAddress(req.TokenB)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid tokenB address")
		return
	}
	provider, err := domain.ParseAddress(req.Provider)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid provider address")
		return
	}
	shares, ok := parseAmount(c, "shares", req.Shares)
	if !ok {
		return
	}

	start := time.Now()
	amount0, amount1, err := h.engineSvc.Engine().RemoveLiquidity(a, b, shares, provider)
	metrics.LiquidityOpDuration.WithLabelValues("remove").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LiquidityOps.WithLabelValues("remove", "error").Inc()
		respondEngineError(c, err)
		return
	}
	metrics.LiquidityOps.WithLabelValues("remove", "success").Inc()

	httputil.HandleSuccess(c, RemoveLiquidityResponse{
		Amount0: amount0.Dec(),
		Amount1: amount1.Dec(),
	})
}
