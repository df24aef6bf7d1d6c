package discountservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gojoyas/internal/domain"
	apperror "gojoyas/internal/errors"
	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/pricing"
)

// DiscountRepository define a persistência dos códigos de desconto.
type DiscountRepository interface {
	CreateDiscount(ctx context.Context, rule domain.DiscountRule) (domain.DiscountRule, error)
	GetDiscountByID(ctx context.Context, id string) (domain.DiscountRule, error)
	ListDiscounts(ctx context.Context) ([]domain.DiscountRule, error)
	UpdateDiscount(ctx context.Context, rule domain.DiscountRule) (domain.DiscountRule, error)
	DeleteDiscount(ctx context.Context, id string) error
}

// ProductFinder resolve as linhas do carrinho contra o catálogo.
type ProductFinder interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
}

// UserFinder carrega o usuário autenticado (provedor de autenticação).
type UserFinder interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// Service gerencia códigos de desconto e calcula cotações de carrinho.
type Service struct {
	repo     DiscountRepository
	products ProductFinder
	users    UserFinder
	logger   logger.Logger
	now      func() time.Time
}

// Option customiza o Service.
type Option func(*Service)

// WithClock substitui o relógio usado para avaliar a vigência das regras.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService cria e retorna uma nova instância do Serviço de Descontos.
func NewService(repo DiscountRepository, products ProductFinder, users UserFinder, logger logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		products: products,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDiscount valida e cadastra um novo código de desconto.
func (s *Service) CreateDiscount(ctx context.Context, rule domain.DiscountRule) (domain.DiscountRule, error) {
	rule = normalizeRule(rule)
	if err := validateRule(rule); err != nil {
		s.logger.Warn("Falha na validação do código de desconto.", map[string]interface{}{"code": rule.Code, "error": err.Error()})
		return domain.DiscountRule{}, err
	}

	created, err := s.repo.CreateDiscount(ctx, rule)
	if err != nil {
		s.logger.Error("Falha ao criar código de desconto no repositório.", err)
		return domain.DiscountRule{}, err
	}

	s.logger.Info("Código de desconto criado.", map[string]interface{}{"id": created.ID, "code": created.Code})
	return created, nil
}

// UpdateDiscount valida e sobrescreve um código existente.
func (s *Service) UpdateDiscount(ctx context.Context, rule domain.DiscountRule) (domain.DiscountRule, error) {
	if _, err := uuid.Parse(rule.ID); err != nil {
		return domain.DiscountRule{}, apperror.NewValidationError("O ID do desconto deve ser um UUID válido.")
	}
	rule = normalizeRule(rule)
	if err := validateRule(rule); err != nil {
		s.logger.Warn("Falha na validação do código de desconto.", map[string]interface{}{"id": rule.ID, "error": err.Error()})
		return domain.DiscountRule{}, err
	}

	updated, err := s.repo.UpdateDiscount(ctx, rule)
	if err != nil {
		s.logger.Error("Falha ao atualizar código de desconto no repositório.", err)
		return domain.DiscountRule{}, err
	}
	return updated, nil
}

// DeleteDiscount remove um código de desconto.
func (s *Service) DeleteDiscount(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do desconto deve ser um UUID válido.")
	}
	if err := s.repo.DeleteDiscount(ctx, id); err != nil {
		s.logger.Error("Falha ao deletar código de desconto no repositório.", err)
		return err
	}
	return nil
}

// GetDiscount busca um código pelo ID.
func (s *Service) GetDiscount(ctx context.Context, id string) (domain.DiscountRule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.DiscountRule{}, apperror.NewValidationError("O ID do desconto deve ser um UUID válido.")
	}
	return s.repo.GetDiscountByID(ctx, id)
}

// ListDiscounts devolve todos os códigos, na ordem de criação.
func (s *Service) ListDiscounts(ctx context.Context) ([]domain.DiscountRule, error) {
	rules, err := s.repo.ListDiscounts(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar códigos de desconto.", err)
		return nil, err
	}
	return rules, nil
}

// ListActive devolve as regras globais vigentes agora (vitrine).
func (s *Service) ListActive(ctx context.Context) ([]domain.DiscountRule, error) {
	rules, err := s.ListDiscounts(ctx)
	if err != nil {
		return nil, err
	}
	active := pricing.ActiveRules(rules, s.now())
	if active == nil {
		active = []domain.DiscountRule{}
	}
	return active, nil
}

// Quote resolve as linhas contra o catálogo e aplica os descontos do usuário (userID pode ser vazio).
func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest, userID string) (domain.Quote, error) {
	s.logger.Debug("Iniciando cotação de carrinho.", map[string]interface{}{"lines": len(req.Lines), "user_id": userID})

	ids := make([]string, 0, len(req.Lines))
	for i, line := range req.Lines {
		if strings.TrimSpace(line.ProductID) == "" {
			return domain.Quote{}, apperror.NewFieldError(fmt.Sprintf("lines[%d].productId", i), "O produto é obrigatório.")
		}
		if line.Quantity < 1 {
			return domain.Quote{}, apperror.NewFieldError(fmt.Sprintf("lines[%d].quantity", i), "A quantidade deve ser pelo menos 1.")
		}
		ids = append(ids, line.ProductID)
	}

	catalog, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Falha ao resolver produtos do carrinho.", err)
		return domain.Quote{}, err
	}

	items := make([]domain.CartItem, 0, len(req.Lines))
	for i, line := range req.Lines {
		product, ok := catalog[line.ProductID]
		if !ok || !product.IsActive {
			return domain.Quote{}, apperror.NewFieldError(fmt.Sprintf("lines[%d].productId", i),
				fmt.Sprintf("Produto %s indisponível.", line.ProductID))
		}
		items = append(items, domain.CartItem{Product: product.Ref(), Quantity: line.Quantity})
	}

	var user *domain.User
	if userID != "" {
		u, err := s.users.FindByID(ctx, userID)
		if err != nil {
			var nf *apperror.NotFoundError
			if !errors.As(err, &nf) {
				s.logger.Error("Falha ao carregar usuário da cotação.", err)
				return domain.Quote{}, err
			}
			// Token de um usuário removido: cotação sem desconto pessoal.
			s.logger.Warn("Usuário do token não encontrado.", map[string]interface{}{"user_id": userID})
		} else {
			user = &u
		}
	}

	rules, err := s.repo.ListDiscounts(ctx)
	if err != nil {
		s.logger.Error("Falha ao carregar regras de desconto.", err)
		return domain.Quote{}, err
	}

	quote := pricing.Quote(items, rules, user, s.now())

	s.logger.Info("Cotação calculada.", map[string]interface{}{
		"subtotal":       quote.Subtotal.String(),
		"discount_total": quote.DiscountTotal.String(),
		"total":          quote.Total.String(),
	})
	return quote, nil
}

// normalizeRule limpa o código e garante lista de produtos não nula (regras "all" chegam sem ela).
func normalizeRule(rule domain.DiscountRule) domain.DiscountRule {
	rule.Code = strings.TrimSpace(rule.Code)
	if rule.ProductIDs == nil {
		rule.ProductIDs = []string{}
	}
	return rule
}

func validateRule(rule domain.DiscountRule) error {
	if rule.Code == "" {
		return apperror.NewFieldError("code", "O código é obrigatório.")
	}
	switch rule.Kind {
	case domain.DiscountPercentage:
		if rule.Value.GreaterThan(decimalHundred) {
			return apperror.NewFieldError("value", "O percentual não pode ser maior que 100.")
		}
	case domain.DiscountFixed:
	default:
		return apperror.NewFieldError("kind", fmt.Sprintf("Tipo de desconto inválido: %q.", rule.Kind))
	}
	if !rule.Value.IsPositive() {
		return apperror.NewFieldError("value", "O valor do desconto deve ser positivo.")
	}
	if rule.StartsAt != nil && rule.EndsAt != nil && !rule.EndsAt.After(*rule.StartsAt) {
		return apperror.NewFieldError("endsAt", "A data final deve ser posterior à data inicial.")
	}
	switch rule.AppliesTo {
	case domain.ScopeAllProducts:
	case domain.ScopeSpecificProducts:
		if len(rule.ProductIDs) == 0 {
			return apperror.NewFieldError("productIds", "Informe ao menos um produto.")
		}
	default:
		return apperror.NewFieldError("appliesTo", fmt.Sprintf("Escopo inválido: %q.", rule.AppliesTo))
	}
	if rule.UserID != "" {
		if _, err := uuid.Parse(rule.UserID); err != nil {
			return apperror.NewFieldError("userId", "O usuário deve ser um UUID válido.")
		}
	}
	return nil
}

var decimalHundred = decimal.NewFromInt(100)
