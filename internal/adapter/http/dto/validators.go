package dto

import (
	"zold-node/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("wallet_id", validateWalletID)
	}
}

// validateWalletID accepts exactly 16 lowercase hex digits.
func validateWalletID(fl validator.FieldLevel) bool {
	_, err := domain.ParseId(fl.Field().String())
	return err == nil
}
