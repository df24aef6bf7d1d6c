package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserType é o papel do usuário no sistema.
type UserType string

const (
	UserAdmin UserType = "ADMIN"
	UserBuyer UserType = "BUYER"
)

// User representa a entidade do usuário, no formato fornecido pelo provedor de autenticação.
// Discount é um percentual aplicado a todo o carrinho do usuário, identificado por DiscountCode.
type User struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	DisplayName  string          `json:"displayName"`
	PasswordHash string          `json:"-"` // Oculta o hash da senha no JSON de resposta
	TypeUser     UserType        `json:"typeUser"`
	DiscountCode string          `json:"discountCode,omitempty"`
	Discount     decimal.Decimal `json:"discount"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}
