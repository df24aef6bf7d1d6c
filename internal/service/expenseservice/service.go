package expenseservice

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"gojoyas/internal/domain"
	apperror "gojoyas/internal/errors"
	"gojoyas/internal/pkg/logger"
)

// ExpenseRepository define a persistência das despesas.
type ExpenseRepository interface {
	CreateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, error)
	GetExpenseByID(ctx context.Context, id string) (domain.Expense, error)
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error)
	UpdateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

// Service implementa o cadastro de despesas do painel administrativo.
type Service struct {
	repo   ExpenseRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Despesas.
func NewService(repo ExpenseRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateExpense valida e registra uma nova despesa.
func (s *Service) CreateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, error) {
	if err := validateExpense(expense); err != nil {
		s.logger.Warn("Falha na validação da despesa.", map[string]interface{}{"error": err.Error()})
		return domain.Expense{}, err
	}
	expense.Description = strings.TrimSpace(expense.Description)

	created, err := s.repo.CreateExpense(ctx, expense)
	if err != nil {
		s.logger.Error("Falha ao criar despesa no repositório.", err)
		return domain.Expense{}, err
	}
	return created, nil
}

// GetExpense busca uma despesa pelo ID.
func (s *Service) GetExpense(ctx context.Context, id string) (domain.Expense, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Expense{}, apperror.NewValidationError("O ID da despesa deve ser um UUID válido.")
	}
	return s.repo.GetExpenseByID(ctx, id)
}

// ListExpenses lista as despesas aplicando os filtros opcionais.
func (s *Service) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	if filter.WarehouseID != "" {
		if _, err := uuid.Parse(filter.WarehouseID); err != nil {
			return nil, apperror.NewFieldError("warehouseId", "O armazém deve ser um UUID válido.")
		}
	}
	expenses, err := s.repo.ListExpenses(ctx, filter)
	if err != nil {
		s.logger.Error("Falha ao listar despesas.", err)
		return nil, err
	}
	return expenses, nil
}

// UpdateExpense valida e sobrescreve uma despesa existente.
func (s *Service) UpdateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, error) {
	if _, err := uuid.Parse(expense.ID); err != nil {
		return domain.Expense{}, apperror.NewValidationError("O ID da despesa deve ser um UUID válido.")
	}
	if err := validateExpense(expense); err != nil {
		s.logger.Warn("Falha na validação da despesa.", map[string]interface{}{"id": expense.ID, "error": err.Error()})
		return domain.Expense{}, err
	}
	expense.Description = strings.TrimSpace(expense.Description)

	updated, err := s.repo.UpdateExpense(ctx, expense)
	if err != nil {
		s.logger.Error("Falha ao atualizar despesa no repositório.", err)
		return domain.Expense{}, err
	}
	return updated, nil
}

// DeleteExpense remove uma despesa.
func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da despesa deve ser um UUID válido.")
	}
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		s.logger.Error("Falha ao deletar despesa no repositório.", err)
		return err
	}
	return nil
}

func validateExpense(e domain.Expense) error {
	if strings.TrimSpace(e.Description) == "" {
		return apperror.NewFieldError("description", "A descrição da despesa é obrigatória.")
	}
	if !e.Amount.IsPositive() {
		return apperror.NewFieldError("amount", "O valor da despesa deve ser maior que zero.")
	}
	if e.WarehouseID != "" {
		if _, err := uuid.Parse(e.WarehouseID); err != nil {
			return apperror.NewFieldError("warehouseId", "O armazém deve ser um UUID válido.")
		}
	}
	return nil
}
