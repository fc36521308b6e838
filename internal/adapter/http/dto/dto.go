package dto

// WalletURI binds the :id path parameter of wallet routes.
type WalletURI struct {
	ID string `uri:"id" binding:"required,wallet_id"`
}

// PushResponse is the response body for a successful push.
type PushResponse struct {
	ID           string `json:"id"`
	Balance      int64  `json:"balance"` // zents
	Transactions int    `json:"transactions"`
	Accepted     int    `json:"accepted"`
	Rejected     int    `json:"rejected"`
	Unchanged    bool   `json:"unchanged"`
}

// BalanceResponse is the response for balance query.
type BalanceResponse struct {
	ID      string `json:"id"`
	Balance int64  `json:"balance"` // zents
	ZLD     string `json:"zld"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

// Envelope is the success wrapper written by pkg/response, used by clients
// to decode typed data.
type Envelope[T any] struct {
	Data      T      `json:"data"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ErrorBody is the error wrapper written by pkg/response.
type ErrorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}
