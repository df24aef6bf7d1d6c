package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa uma joia do catálogo.
type Product struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"` // Stock Keeping Unit (código único de produto)
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Ref converte o produto na referência usada pelas linhas do carrinho.
func (p Product) Ref() ProductRef {
	return ProductRef{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.ImageURL,
		Category: p.Category,
	}
}

// ProductFilter define os parâmetros de busca e paginação do catálogo.
type ProductFilter struct {
	Page       int
	Limit      int
	Name       string
	Category   string
	ActiveOnly bool
}
