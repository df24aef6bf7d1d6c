// Package pricing contém as funções puras do carrinho: subtotal, extremos de preço,
// agrupamento por categoria e a aplicação de regras de desconto.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"gojoyas/internal/domain"
)

// CategoryGroup é um grupo de linhas do carrinho com a mesma categoria.
type CategoryGroup struct {
	Category string            `json:"category"`
	Items    []domain.CartItem `json:"items"`
}

// Subtotal soma price * quantity de todas as linhas. Preço ausente conta como zero.
func Subtotal(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// MostExpensive devolve a linha de maior preço unitário, ou nil para carrinho vazio.
// Em empate prevalece a primeira encontrada.
func MostExpensive(items []domain.CartItem) *domain.CartItem {
	if len(items) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(items); i++ {
		if items[i].Product.Price.GreaterThan(items[best].Product.Price) {
			best = i
		}
	}
	found := items[best]
	return &found
}

// Cheapest devolve a linha de menor preço unitário, ou nil para carrinho vazio.
// Em empate prevalece a primeira encontrada.
func Cheapest(items []domain.CartItem) *domain.CartItem {
	if len(items) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(items); i++ {
		if items[i].Product.Price.LessThan(items[best].Product.Price) {
			best = i
		}
	}
	found := items[best]
	return &found
}

// GroupByCategory particiona as linhas por categoria, na ordem da primeira aparição.
// Linhas sem categoria vão para o grupo domain.UncategorizedBucket.
func GroupByCategory(items []domain.CartItem) []CategoryGroup {
	var groups []CategoryGroup
	index := make(map[string]int)

	for _, it := range items {
		category := strings.TrimSpace(it.Product.Category)
		if category == "" {
			category = domain.UncategorizedBucket
		}
		pos, ok := index[category]
		if !ok {
			pos = len(groups)
			index[category] = pos
			groups = append(groups, CategoryGroup{Category: category})
		}
		groups[pos].Items = append(groups[pos].Items, it)
	}
	return groups
}
