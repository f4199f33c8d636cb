package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/hxuan190/pool-engine/internal/domain"
	"github.com/hxuan190/pool-engine/internal/engine"
	"github.com/hxuan190/pool-engine/internal/http/httputil"
	"github.com/hxuan190/pool-engine/internal/metrics"
)

type PoolHandler struct {
	engineSvc *engine.Service
}

func NewPoolHandler(engineSvc *engine.Service) *PoolHandler {
	return &PoolHandler{engineSvc: engineSvc}
}

func (h *PoolHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/stats", h.getStats)
	pub.GET("/list", h.listPools)
	pub.GET("/id", h.getPoolID)
	pub.GET("/reserves", h.getReserves)
	pub.GET("/price", h.getPrice)
	pub.GET("/liquidity", h.getLiquidity)
	private.POST("", h.createPool)
}

func (h *PoolHandler) Root() string {
	return "/pools"
}

// pairQuery selects a pool by its unordered token pair.
type pairQuery struct {
	TokenA string `form:"tokenA" binding:"required" example:"0x1111111111111111111111111111111111111111"`
	TokenB string `form:"tokenB" binding:"required" example:"0x2222222222222222222222222222222222222222"`
}

func parsePair(c *gin.Context) (domain.Address, domain.Address, bool) {
	var q pairQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.HandleBadRequest(c, "invalid query parameters: "+err.Error())
		return domain.Address{}, domain.Address{}, false
	}
	a, err := domain.ParseAddress(q.TokenA)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid tokenA address")
		return domain.Address{}, domain.Address{}, false
	}
	b, err := domain.ParseAddress(q.TokenB)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid tokenB address")
		return domain.Address{}, domain.Address{}, false
	}
	return a, b, true
}

func parseAmount(c *gin.Context, field, raw string) (*uint256.Int, bool) {
	amount, err := uint256.FromDecimal(raw)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid "+field+": must be an unsigned decimal integer")
		return nil, false
	}
	return amount, true
}

// PoolStatsResponse contains aggregate engine statistics
type PoolStatsResponse struct {
	// Total number of registered pools
	PoolCount int `json:"pool_count" example:"12"`

	// Total number of settled swaps since service start
	SwapCount uint64 `json:"swap_count" example:"4589"`

	// Total number of settled liquidity operations since service start
	LiquidityOpCount uint64 `json:"liquidity_op_count" example:"231"`
}

func (h *PoolHandler) getStats(c *gin.Context) {
	pools, swaps, liquidityOps := h.engineSvc.Engine().Stats()
	httputil.HandleSuccess(c, PoolStatsResponse{
		PoolCount:        pools,
		SwapCount:        swaps,
		LiquidityOpCount: liquidityOps,
	})
}

// PoolInfo contains basic information about a pool
type PoolInfo struct {
	// Pool identifier (hex digest of the canonical token pair)
	Key string `json:"key" example:"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"`

	// First token of the canonical pair
	Token0 string `json:"token0" example:"0x1111111111111111111111111111111111111111"`

	// Second token of the canonical pair
	Token1 string `json:"token1" example:"0x2222222222222222222222222222222222222222"`

	// Current reserve of token0 in smallest units
	Reserve0 string `json:"reserve0" example:"1000000000"`

	// Current reserve of token1 in smallest units
	Reserve1 string `json:"reserve1" example:"2000000000"`

	// Outstanding liquidity share supply
	TotalShares string `json:"total_shares" example:"3000000000"`
}

// PoolListResponse contains paginated list of pools
type PoolListResponse struct {
	Pools []PoolInfo `json:"pools"`

	// Total number of pools across all pages
	Total int `json:"total" example:"12"`

	// Current page number (1-indexed)
	Page int `json:"page" example:"1"`

	// Number of pools per page (max 500)
	Limit int `json:"limit" example:"100"`

	// Total number of pages available
	Pages int `json:"pages" example:"1"`
}

func (h *PoolHandler) listPools(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	allPools := h.engineSvc.Engine().Pools()
	total := len(allPools)

	pages := (total + limit - 1) / limit
	offset := (page - 1) * limit
	end := offset + limit
	if offset > total {
		offset = total
	}
	if end > total {
		end = total
	}

	pools := make([]PoolInfo, 0, end-offset)
	for _, pool := range allPools[offset:end] {
		pools = append(pools, PoolInfo{
			Key:         pool.Key.String(),
			Token0:      pool.Token0.String(),
			Token1:      pool.Token1.String(),
			Reserve0:    pool.Reserve0.Dec(),
			Reserve1:    pool.Reserve1.Dec(),
			TotalShares: pool.TotalShares.Dec(),
		})
	}

	httputil.HandleSuccess(c, PoolListResponse{
		Pools: pools,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	})
}

// PoolIDResponse contains the derived pool identifier for a token pair
type PoolIDResponse struct {
	Key string `json:"key" example:"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"`

	// Whether a pool is currently registered for the pair
	Exists bool `json:"exists" example:"true"`
}

// @Summary Derive pool identifier
// @Description Derive the deterministic pool identifier for an unordered token pair.
// @Description The identifier is independent of argument order and does not require the pool to exist.
// @Tags pools
// @Produce json
// @Param tokenA query string true "First token address"
// @Param tokenB query string true "Second token address"
// @Success 200 {object} httputil.Response{data=PoolIDResponse}
// @Failure 400 {object} httputil.Response
// @Router /api/v1/pools/id [get]
func (h *PoolHandler) getPoolID(c *gin.Context) {
	a, b, ok := parsePair(c)
	if !ok {
		return
	}
	key, err := h.engineSvc.Engine().PoolID(a, b)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	httputil.HandleSuccess(c, PoolIDResponse{
		Key:    key.String(),
		Exists: h.engineSvc.Engine().PoolExists(a, b),
	})
}

// ReservesResponse contains pool reserves in the caller's token order
type ReservesResponse struct {
	// Reserve of tokenA in smallest units
	ReserveA string `json:"reserve_a" example:"1000000000"`

	// Reserve of tokenB in smallest units
	ReserveB string `json:"reserve_b" example:"2000000000"`
}

// @Summary Get pool reserves
// @Description Return the pool's reserves ordered to match the query's tokenA/tokenB.
// @Tags pools
// @Produce json
// @Param tokenA query string true "First token address"
// @Param tokenB query string true "Second token address"
// @Success 200 {object} httputil.Response{data=ReservesResponse}
// @Failure 404 {object} httputil.Response
// @Router /api/v1/pools/reserves [get]
func (h *PoolHandler) getReserves(c *gin.Context) {
	a, b, ok := parsePair(c)
	if !ok {
		return
	}
	reserveA, reserveB, err := h.engineSvc.Engine().Reserves(a, b)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	httputil.HandleSuccess(c, ReservesResponse{
		ReserveA: reserveA.Dec(),
		ReserveB: reserveB.Dec(),
	})
}

// PriceResponse contains a fixed-point spot price
type PriceResponse struct {
	// Price of one unit of tokenA denominated in tokenB, scaled by 1e18
	Price string `json:"price" example:"2000000000000000000"`

	// Fixed-point scale applied to the price
	Scale string `json:"scale" example:"1000000000000000000"`
}

// @Summary Get spot price
// @Description Return the reserve-ratio spot price of tokenA in units of tokenB, scaled by 1e18.
// @Description The spot price ignores fees and trade size.
// @Tags pools
// @Produce json
// @Param tokenA query string true "Token being priced"
// @Param tokenB query string true "Denominating token"
// @Success 200 {object} httputil.Response{data=PriceResponse}
// @Failure 404 {object} httputil.Response
// @Failure 422 {object} httputil.Response
// @Router /api/v1/pools/price [get]
func (h *PoolHandler) getPrice(c *gin.Context) {
	a, b, ok := parsePair(c)
	if !ok {
		return
	}
	price, err := h.engineSvc.Engine().Price(a, b)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	httputil.HandleSuccess(c, PriceResponse{
		Price: price.Dec(),
		Scale: engine.PriceScale.Dec(),
	})
}

// LiquidityResponse contains a provider's share position
type LiquidityResponse struct {
	Provider string `json:"provider" example:"0x3333333333333333333333333333333333333333"`

	// Provider's liquidity share balance
	Shares string `json:"shares" example:"3000000000"`
}

// @Summary Get provider liquidity
// @Description Return the provider's liquidity share balance in the pair's pool.
// @Description Providers with no position get a zero balance, not an error.
// @Tags pools
// @Produce json
// @Param tokenA query string true "First token address"
// @Param tokenB query string true "Second token address"
// @Param provider query string true "Provider address"
// @Success 200 {object} httputil.Response{data=LiquidityResponse}
// @Failure 404 {object} httputil.Response
// @Router /api/v1/pools/liquidity [get]
func (h *PoolHandler) getLiquidity(c *gin.Context) {
	a, b, ok := parsePair(c)
	if !ok {
		return
	}
	provider, err := domain.ParseAddress(c.Query("provider"))
	if err != nil {
		httputil.HandleBadRequest(c, "invalid provider address")
		return
	}
	shares, err := h.engineSvc.Engine().Liquidity(a, b, provider)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	httputil.HandleSuccess(c, LiquidityResponse{
		Provider: provider.String(),
		Shares:   shares.Dec(),
	})
}

// CreatePoolRequest registers a pool for a token pair
type CreatePoolRequest struct {
	TokenA string `json:"tokenA" binding:"required" example:"0x1111111111111111111111111111111111111111"`
	TokenB string `json:"tokenB" binding:"required" example:"0x2222222222222222222222222222222222222222"`
}

// CreatePoolResponse contains the new pool's identifier
type CreatePoolResponse struct {
	Key string `json:"key" example:"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"`
}

// @Summary Create pool
// @Description Register an empty pool for an unordered token pair. At most one pool per pair.
// @Tags pools
// @Accept json
// @Produce json
// @Param request body CreatePoolRequest true "Token pair"
// @Success 200 {object} httputil.Response{data=CreatePoolResponse}
// @Failure 400 {object} httputil.Response
// @Failure 409 {object} httputil.Response "Pool already exists"
// @Router /api/v1/pools [post]
func (h *PoolHandler) createPool(c *gin.Context) {
	var req CreatePoolRequest
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

	key, err := h.engineSvc.Engine().CreatePool(a, b)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	metrics.PoolsCreated.Inc()
	metrics.PoolCount.Set(float64(h.engineSvc.Engine().Registry().Len()))

	httputil.HandleSuccess(c, CreatePoolResponse{Key: key.String()})
}
