package userservice

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"gojoyas/internal/domain"
	apperror "gojoyas/internal/errors"
	"gojoyas/internal/pkg/logger"
)

// UserRepository é o contrato de persistência esperado pelo serviço de usuários.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// TokenService é o contrato da camada de token (internal/pkg/token)
type TokenService interface {
	GenerateToken(userID string, typeUser string) (string, error)
}

// UserService define o serviço de lógica de negócio para a entidade User.
type UserService struct {
	UserRepo UserRepository
	TokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do UserService, injetando o Repositório.
func NewService(repo UserRepository, tokenSvc TokenService, logger logger.Logger) *UserService {
	return &UserService{
		UserRepo: repo,
		TokenSvc: tokenSvc,
		logger:   logger,
	}
}

const minPasswordLength = 8

// Register registra um novo comprador.
// Ele faz o hashing da senha e lida com validações básicas.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(registration.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, apperror.NewFieldError("email", "Email inválido.")
	}
	if len(registration.Password) < minPasswordLength {
		return domain.User{}, apperror.NewFieldError("password", "A senha deve ter pelo menos 8 caracteres.")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	newUser := domain.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(registration.DisplayName),
		PasswordHash: string(hashedPassword),
		TypeUser:     domain.UserBuyer, // Define o papel padrão
		IsActive:     true,
	}

	// ConflictError (email duplicado) e DBError vêm tipados do repositório.
	user, err := s.UserRepo.Save(ctx, newUser)
	if err != nil {
		s.logger.Error("Falha ao registrar usuário.", err)
		return domain.User{}, err
	}

	s.logger.Info("Usuário registrado.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// Login autentica um usuário, verifica a senha e gera um JWT.
func (s *UserService) Login(ctx context.Context, email string, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	user, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// NotFound vira 401 para não dar dicas sobre emails cadastrados.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	if !user.IsActive {
		return "", apperror.NewForbiddenError("Usuário desativado.")
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.ID, string(user.TypeUser))
	if err != nil {
		s.logger.Error("Falha ao gerar token de autenticação.", err)
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login realizado.", map[string]interface{}{"user_id": user.ID, "type_user": string(user.TypeUser)})
	return tokenString, nil
}

// GetByID devolve o usuário pelo ID.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}
