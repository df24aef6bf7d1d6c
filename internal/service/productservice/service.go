package productservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gojoyas/internal/domain"
	apperror "gojoyas/internal/errors"
	"gojoyas/internal/pkg/logger"
)

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB, Cache).
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

// Service implementa as regras de negócio do catálogo de joias.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateProduct valida e cadastra um novo produto no catálogo.
func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if strings.TrimSpace(product.Name) == "" {
		return domain.Product{}, apperror.NewFieldError("name", "O nome do produto é obrigatório.")
	}
	if strings.TrimSpace(product.SKU) == "" {
		return domain.Product{}, apperror.NewFieldError("sku", "O SKU do produto é obrigatório.")
	}
	if !product.Price.IsPositive() {
		return domain.Product{}, apperror.NewFieldError("price", "O preço do produto deve ser positivo.")
	}

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.IsActive = true

	createdProduct, err := s.repo.Save(ctx, product)
	if err != nil {
		s.logger.Error("Falha ao salvar produto no repositório.", err)
		return domain.Product{}, err
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{"id": createdProduct.ID, "sku": createdProduct.SKU})
	return createdProduct, nil
}

// GetProductByID busca um produto pelo ID.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	return s.repo.FindByID(ctx, id)
}

// GetProducts lista o catálogo com paginação e filtros opcionais
// ("name", "category", "is_active").
func (s *Service) GetProducts(ctx context.Context, page, limit int, filters map[string]string) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := domain.ProductFilter{Page: page, Limit: limit}
	if v, ok := filters["name"]; ok {
		filter.Name = v
	}
	if v, ok := filters["category"]; ok {
		filter.Category = v
	}
	if v, ok := filters["is_active"]; ok {
		filter.ActiveOnly = v == "true"
	}

	s.logger.Debug("Buscando produtos.", map[string]interface{}{"page": page, "limit": limit, "name": filter.Name, "category": filter.Category})

	products, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Falha ao buscar produtos no repositório.", err)
		return nil, apperror.NewInternalError(fmt.Sprintf("Falha interna ao buscar produtos. (%s)", err.Error()), err)
	}
	return products, nil
}
