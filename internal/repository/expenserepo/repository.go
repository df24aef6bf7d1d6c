package expenserepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gojoyas/internal/domain"
	"gojoyas/internal/errors"
	"gojoyas/internal/pkg/logger"
)

// ExpenseRepository persiste as despesas operacionais.
type ExpenseRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewExpenseRepository cria e retorna uma nova instância do Repositório de Despesas.
func NewExpenseRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *ExpenseRepository {
	return &ExpenseRepository{DB: db, DBTimeout: dbTimeout, logger: logger}
}

const expenseColumns = `id, description, category, amount, warehouse_id, incurred_at, created_at, updated_at`

func scanExpense(row interface{ Scan(...interface{}) error }) (domain.Expense, error) {
	var (
		e           domain.Expense
		warehouseID sql.NullString
	)
	err := row.Scan(&e.ID, &e.Description, &e.Category, &e.Amount, &warehouseID,
		&e.IncurredAt, &e.CreatedAt, &e.UpdatedAt)
	e.WarehouseID = warehouseID.String
	return e, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateExpense insere uma nova despesa.
func (r *ExpenseRepository) CreateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, error) {
	r.logger.Debug("Iniciando CreateExpense no repositório.", map[string]interface{}{"category": expense.Category})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now
	if expense.IncurredAt.IsZero() {
		expense.IncurredAt = now
	}

	query := `INSERT INTO expenses (` + expenseColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctxTimeout, query,
		expense.ID, expense.Description, expense.Category, expense.Amount, nullString(expense.WarehouseID),
		expense.IncurredAt, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir despesa no DB.", err)
		return domain.Expense{}, errors.NewDBError("Falha ao criar despesa", err)
	}

	r.logger.Info("Despesa criada com sucesso.", map[string]interface{}{"id": expense.ID, "amount": expense.Amount.String()})
	return expense, nil
}

// GetExpenseByID busca uma despesa pelo ID.
func (r *ExpenseRepository) GetExpenseByID(ctx context.Context, id string) (domain.Expense, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`
	expense, err := scanExpense(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Expense{}, errors.NewNotFoundError(fmt.Sprintf("Despesa com ID %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar despesa no DB.", err)
		return domain.Expense{}, errors.NewDBError("Falha ao buscar despesa", err)
	}
	return expense, nil
}

// ListExpenses lista as despesas, mais recentes primeiro, aplicando os filtros informados.
func (r *ExpenseRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	r.logger.Debug("Iniciando ListExpenses no repositório.", map[string]interface{}{"category": filter.Category, "warehouse_id": filter.WarehouseID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var (
		conds []string
		args  []interface{}
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.WarehouseID != "" {
		args = append(args, filter.WarehouseID)
		conds = append(conds, fmt.Sprintf("warehouse_id = $%d", len(args)))
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY incurred_at DESC"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao executar ListExpenses query.", err)
		return nil, errors.NewDBError("Falha ao listar despesas", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear despesa em ListExpenses.", err)
			return nil, errors.NewDBError("Falha ao mapear despesas do DB", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de despesas", err)
	}

	r.logger.Info("ListExpenses concluído com sucesso.", map[string]interface{}{"total": len(expenses)})
	return expenses, nil
}

// UpdateExpense sobrescreve os campos editáveis de uma despesa.
func (r *ExpenseRepository) UpdateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, error) {
	r.logger.Debug("Iniciando UpdateExpense no repositório.", map[string]interface{}{"id": expense.ID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	expense.UpdatedAt = time.Now().UTC()
	query := `
        UPDATE expenses
        SET description = $1, category = $2, amount = $3, warehouse_id = $4, incurred_at = $5, updated_at = $6
        WHERE id = $7
        RETURNING created_at`

	err := r.DB.QueryRowContext(ctxTimeout, query,
		expense.Description, expense.Category, expense.Amount, nullString(expense.WarehouseID),
		expense.IncurredAt, expense.UpdatedAt, expense.ID,
	).Scan(&expense.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Expense{}, errors.NewNotFoundError(fmt.Sprintf("Despesa com ID %s não encontrada para atualização.", expense.ID))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar despesa no DB.", err)
		return domain.Expense{}, errors.NewDBError("Falha ao atualizar despesa", err)
	}

	r.logger.Info("Despesa atualizada com sucesso.", map[string]interface{}{"id": expense.ID})
	return expense, nil
}

// DeleteExpense remove uma despesa pelo ID.
func (r *ExpenseRepository) DeleteExpense(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar despesa do DB.", err)
		return errors.NewDBError("Falha ao deletar despesa", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Despesa com ID %s não encontrada para exclusão.", id))
	}

	r.logger.Info("Despesa deletada com sucesso.", map[string]interface{}{"id": id})
	return nil
}
