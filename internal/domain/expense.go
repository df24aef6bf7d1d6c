package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense representa uma despesa operacional registrada no painel administrativo.
type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	WarehouseID string          `json:"warehouseId,omitempty"`
	IncurredAt  time.Time       `json:"incurredAt"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ExpenseFilter define os filtros aceitos na listagem de despesas.
type ExpenseFilter struct {
	Category    string
	WarehouseID string
}
