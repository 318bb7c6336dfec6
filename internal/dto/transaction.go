package dto

import "time"

// CreateTransactionRequest carries the client-supplied fields for a new
// transaction. The owner is always taken from the authenticated user, never
// from the body.
type CreateTransactionRequest struct {
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

// UpdateTransactionRequest is a partial update: a zero-value field (empty
// string, zero amount, nil date) is treated as "not supplied" and leaves the
// stored value untouched.
type UpdateTransactionRequest struct {
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
}

type TransactionResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type StatsResponse struct {
	TotalIncome      float64 `json:"totalIncome"`
	TotalExpense     float64 `json:"totalExpense"`
	Balance          float64 `json:"balance"`
	TransactionCount int     `json:"transactionCount"`
}
