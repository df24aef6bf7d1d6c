package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gojoyas/internal/domain"
	apperror "gojoyas/internal/errors"
	"gojoyas/internal/pkg/logger"
)

// UserRepository persiste usuários do painel e da vitrine.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const userColumns = `id, email, display_name, password_hash, type_user, discount_code, discount, is_active, created_at, updated_at`

// Save insere um novo usuário no banco de dados.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	query := `INSERT INTO users (` + userColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, string(user.TypeUser),
		user.DiscountCode, user.Discount, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.logger.Info("Email já cadastrado.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.NewConflictError(fmt.Sprintf("O email '%s' já está cadastrado.", user.Email))
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to insert user (DB)", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	r.logger.Debug("Iniciando FindByEmail de usuário no repositório.", map[string]interface{}{"email_attempt": email})
	return r.findOne(ctx, "email", email)
}

// FindByID busca um usuário pelo ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	r.logger.Debug("Iniciando FindByID de usuário no repositório.", map[string]interface{}{"user_id": id})
	return r.findOne(ctx, "id", id)
}

func (r *UserRepository) findOne(ctx context.Context, column, value string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// column vem sempre de constantes internas, nunca da requisição.
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	var (
		user     domain.User
		typeUser string
	)
	err := r.DB.QueryRowContext(ctxTimeout, query, value).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &typeUser,
		&user.DiscountCode, &user.Discount, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Usuário não encontrado no DB.", map[string]interface{}{column: value})
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com %s '%s' não encontrado", column, value))
		}
		r.logger.Error("Falha ao buscar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user (DB)", err)
	}
	user.TypeUser = domain.UserType(typeUser)

	r.logger.Info("Usuário encontrado no repositório.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}
