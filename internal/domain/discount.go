package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountKind define como o valor de uma regra é interpretado.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// DiscountScope define a quais produtos uma regra se aplica.
type DiscountScope string

const (
	ScopeAllProducts      DiscountScope = "all"
	ScopeSpecificProducts DiscountScope = "products"
)

// DiscountRule é um código de desconto global (UserID vazio) ou vinculado a um usuário.
type DiscountRule struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Kind       DiscountKind    `json:"kind"`
	Value      decimal.Decimal `json:"value"`
	StartsAt   *time.Time      `json:"startsAt,omitempty"`
	EndsAt     *time.Time      `json:"endsAt,omitempty"`
	AppliesTo  DiscountScope   `json:"appliesTo"`
	ProductIDs []string        `json:"productIds,omitempty"`
	UserID     string          `json:"userId,omitempty"`
	IsActive   bool            `json:"isActive"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Global indica se a regra não está vinculada a nenhum usuário.
func (r DiscountRule) Global() bool {
	return r.UserID == ""
}

// QuoteLine é o resultado do cálculo para uma linha do carrinho.
type QuoteLine struct {
	Item      CartItem        `json:"item"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	RuleCode  string          `json:"ruleCode,omitempty"`
}

// Quote é o resultado da aplicação de descontos sobre um carrinho inteiro.
type Quote struct {
	Lines         []QuoteLine     `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discountTotal"`
	Total         decimal.Decimal `json:"total"`
}
