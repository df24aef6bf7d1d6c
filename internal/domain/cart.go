package domain

import "github.com/shopspring/decimal"

// UncategorizedBucket é o nome do grupo para produtos sem categoria.
const UncategorizedBucket = "Sin categoría"

// ProductRef é a referência de produto carregada por uma linha de carrinho.
type ProductRef struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Category string          `json:"category,omitempty"`
}

// CartItem é um produto no carrinho com quantidade >= 1.
type CartItem struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
}

// LineTotal devolve price * quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartLineRequest é o payload de cotação enviado pela vitrine: apenas referência e quantidade.
type CartLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// QuoteRequest é o corpo de POST /v1/cart/quote.
type QuoteRequest struct {
	Lines []CartLineRequest `json:"lines"`
}
