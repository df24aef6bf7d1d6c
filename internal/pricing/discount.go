package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"gojoyas/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Applies indica se a regra vale para o produto e o usuário no instante now.
// Uma regra vinculada a usuário só vale para aquele usuário, e apenas enquanto ativo.
// O código de desconto do usuário não é único, por isso não serve de vínculo.
func Applies(rule domain.DiscountRule, productID string, user *domain.User, now time.Time) bool {
	if !rule.IsActive || !rule.Value.IsPositive() {
		return false
	}
	if rule.StartsAt != nil && now.Before(*rule.StartsAt) {
		return false
	}
	if rule.EndsAt != nil && now.After(*rule.EndsAt) {
		return false
	}

	if !rule.Global() {
		if user == nil || !user.IsActive || rule.UserID != user.ID {
			return false
		}
	}

	if rule.AppliesTo == domain.ScopeSpecificProducts {
		for _, id := range rule.ProductIDs {
			if id == productID {
				return true
			}
		}
		return false
	}
	return true
}

// LineDiscount calcula o desconto da regra sobre uma linha, limitado ao total da linha.
// Percentual: total da linha * valor / 100. Fixo: min(valor, preço unitário) por unidade.
func LineDiscount(rule domain.DiscountRule, item domain.CartItem) decimal.Decimal {
	lineTotal := item.LineTotal()
	var discount decimal.Decimal

	switch rule.Kind {
	case domain.DiscountPercentage:
		discount = lineTotal.Mul(rule.Value).Div(hundred)
	case domain.DiscountFixed:
		perUnit := decimal.Min(rule.Value, item.Product.Price)
		discount = perUnit.Mul(decimal.NewFromInt(int64(item.Quantity)))
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(discount, lineTotal).Round(2)
}

// UserRule converte os campos discountCode/discount do usuário autenticado numa regra
// percentual vinculada a ele, válida para todos os produtos.
func UserRule(user *domain.User) (domain.DiscountRule, bool) {
	if user == nil || !user.IsActive || !user.Discount.IsPositive() {
		return domain.DiscountRule{}, false
	}
	return domain.DiscountRule{
		ID:        "user:" + user.ID,
		Code:      user.DiscountCode,
		Kind:      domain.DiscountPercentage,
		Value:     user.Discount,
		AppliesTo: domain.ScopeAllProducts,
		UserID:    user.ID,
		IsActive:  true,
	}, true
}

// Quote aplica as regras ao carrinho. Por linha vale apenas o maior desconto individual
// (sem acúmulo entre regras); em empate prevalece a regra que aparece primeiro.
func Quote(items []domain.CartItem, rules []domain.DiscountRule, user *domain.User, now time.Time) domain.Quote {
	candidates := rules
	if ur, ok := UserRule(user); ok {
		candidates = append(append([]domain.DiscountRule(nil), rules...), ur)
	}

	q := domain.Quote{
		Lines:         make([]domain.QuoteLine, 0, len(items)),
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		Total:         decimal.Zero,
	}

	for _, it := range items {
		line := domain.QuoteLine{
			Item:      it,
			LineTotal: it.LineTotal().Round(2),
			Discount:  decimal.Zero,
		}
		for _, rule := range candidates {
			if !Applies(rule, it.Product.ID, user, now) {
				continue
			}
			if d := LineDiscount(rule, it); d.GreaterThan(line.Discount) {
				line.Discount = d
				line.RuleCode = rule.Code
			}
		}
		line.Total = line.LineTotal.Sub(line.Discount)

		q.Lines = append(q.Lines, line)
		q.Subtotal = q.Subtotal.Add(line.LineTotal)
		q.DiscountTotal = q.DiscountTotal.Add(line.Discount)
	}
	q.Total = q.Subtotal.Sub(q.DiscountTotal)
	return q
}

// ActiveRules filtra as regras globais vigentes em now, preservando a ordem.
func ActiveRules(rules []domain.DiscountRule, now time.Time) []domain.DiscountRule {
	var out []domain.DiscountRule
	for _, r := range rules {
		if !r.Global() || !r.IsActive {
			continue
		}
		if r.StartsAt != nil && now.Before(*r.StartsAt) {
			continue
		}
		if r.EndsAt != nil && now.After(*r.EndsAt) {
			continue
		}
		out = append(out, r)
	}
	return out
}
