package handler

import (
	"errors"
	"io"
	"net/http"

	"zold-node/internal/adapter/http/dto"
	"zold-node/internal/core/domain"
	"zold-node/internal/core/ports"
	"zold-node/pkg/apperror"
	"zold-node/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WalletHandler serves wallet pull, push and balance endpoints.
type WalletHandler struct {
	ledger ports.LedgerService
	log    zerolog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger ports.LedgerService, log zerolog.Logger) *WalletHandler {
	return &WalletHandler{ledger: ledger, log: log}
}

// Pull handles GET /wallets/:id. The body is the stored wallet document
// exactly as a push would accept it.
func (h *WalletHandler) Pull(c *gin.Context) {
	id, ok := bindWalletID(c)
	if !ok {
		return
	}

	w, err := h.ledger.Pull(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	body, err := w.Serialize()
	if err != nil {
		h.log.Error().Err(err).Str("wallet", id.String()).Msg("failed to serialize stored wallet")
		response.Error(c, apperror.InternalError(err))
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}

// Push handles PUT /wallets/:id.
func (h *WalletHandler) Push(c *gin.Context) {
	id, ok := bindWalletID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperror.ErrPayloadTooLarge())
			return
		}
		response.Error(c, apperror.ErrMalformedWallet(err))
		return
	}

	result, err := h.ledger.Push(c.Request.Context(), id, body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PushResponse{
		ID:           result.Wallet.ID().String(),
		Balance:      result.Wallet.Balance().Zents(),
		Transactions: result.Wallet.Len(),
		Accepted:     result.Accepted,
		Rejected:     result.Rejected,
		Unchanged:    result.Unchanged,
	})
}

// Balance handles GET /wallets/:id/balance.
func (h *WalletHandler) Balance(c *gin.Context) {
	id, ok := bindWalletID(c)
	if !ok {
		return
	}

	balance, err := h.ledger.Balance(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		ID:      id.String(),
		Balance: balance.Zents(),
		ZLD:     balance.ZLD(),
	})
}

// bindWalletID validates the :id path parameter and writes a 400 when it is
// not a wallet id.
func bindWalletID(c *gin.Context) (domain.Id, bool) {
	var uri dto.WalletURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.ErrInvalidWalletID(c.Param("id")))
		return 0, false
	}
	id, err := domain.ParseId(uri.ID)
	if err != nil {
		response.Error(c, apperror.ErrInvalidWalletID(uri.ID))
		return 0, false
	}
	return id, true
}
