package http

import (
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/pool-engine/internal/bank"
	"github.com/hxuan190/pool-engine/internal/domain"
	"github.com/hxuan190/pool-engine/internal/http/httputil"
)

type BankHandler struct {
	bankSvc *bank.Service
}

func NewBankHandler(bankSvc *bank.Service) *BankHandler {
	return &BankHandler{bankSvc: bankSvc}
}

func (h *BankHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/balance", h.getBalance)
	admin.POST("/mint", h.mint)
}

func (h *BankHandler) Root() string {
	return "/bank"
}

// MintRequest credits tokens to a holder. Dev faucet; admin surface only.
type MintRequest struct {
	Token  string `json:"token" binding:"required" example:"0x1111111111111111111111111111111111111111"`
	Holder string `json:"holder" binding:"required" example:"0x3333333333333333333333333333333333333333"`
	Amount string `json:"amount" binding:"required" example:"1000000000000"`
}

// BalanceResponse contains a holder's token balance
type BalanceResponse struct {
	Token   string `json:"token" example:"0x1111111111111111111111111111111111111111"`
	Holder  string `json:"holder" example:"0x3333333333333333333333333333333333333333"`
	Balance string `json:"balance" example:"1000000000000"`
}

// @Summary Get token balance
// @Description Return the holder's balance of a token in the custody ledger.
// @Tags bank
// @Produce json
// @Param token query string true "Token address"
// @Param holder query string true "Holder address"
// @Success 200 {object} httputil.Response{data=BalanceResponse}
// @Failure 400 {object} httputil.Response
// @Router /api/v1/bank/balance [get]
func (h *BankHandler) getBalance(c *gin.Context) {
	token, err := domain.ParseAddress(c.Query("token"))
	if err != nil {
		httputil.HandleBadRequest(c, "invalid token address")
		return
	}
	holder, err := domain.ParseAddress(c.Query("holder"))
	if err != nil {
		httputil.HandleBadRequest(c, "invalid holder address")
		return
	}

	balance := h.bankSvc.Ledger().BalanceOf(token, holder)
	httputil.HandleSuccess(c, BalanceResponse{
		Token:   token.String(),
		Holder:  holder.String(),
		Balance: balance.Dec(),
	})
}

// @Summary Mint tokens
// @Description Credit an amount of a token to a holder in the custody ledger.
// @Tags bank
// @Accept json
// @Produce json
// @Param request body MintRequest true "Mint parameters"
// @Success 200 {object} httputil.Response{data=BalanceResponse}
// @Failure 400 {object} httputil.Response
// @Router /api/v1/admin/bank/mint [post]
func (h *BankHandler) mint(c *gin.Context) {
	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	token, err := domain.ParseAddress(req.Token)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid token address")
		return
	}
	holder, err := domain.ParseAddress(req.Holder)
	if err != nil {
		httputil.HandleBadRequest(c, "invalid holder address")
		return
	}
	amount, ok := parseAmount(c, "amount", req.Amount)
	if !ok {
		return
	}

	if err := h.bankSvc.Ledger().Mint(token, holder, amount); err != nil {
		httputil.HandleBadRequest(c, err.Error())
		return
	}

	httputil.HandleSuccess(c, BalanceResponse{
		Token:   token.String(),
		Holder:  holder.String(),
		Balance: h.bankSvc.Ledger().BalanceOf(token, holder).Dec(),
	})
}
