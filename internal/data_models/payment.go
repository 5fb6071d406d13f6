package dto

type DepositRequest struct {
	ClientID      int64  `json:"client_id"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
}

type WithdrawRequest struct {
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	AccountNumber string `json:"account_number"`
	Role          string `json:"role"`
}
