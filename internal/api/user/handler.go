package user

import (
	"context"
	"net/http"

	"gojoyas/internal/api/response"
	"gojoyas/internal/domain"
	apperror "gojoyas/internal/errors"
	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/pkg/middleware"
)

// UserService define o contrato que o Handler espera da camada de Serviço.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, email string, password string) (string, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
}

// LoginRequest é o payload de POST /v1/login.
type LoginRequest struct {
	Email    string `json:"email" example:"admin@gojoyas.cl"`
	Password string `json:"password" example:"segredo123"`
}

// LoginResponse devolve o JWT emitido.
type LoginResponse struct {
	Token string `json:"token"`
}

// Handler agrupa os endpoints de autenticação.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler de usuários.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	response.Write(w, r, h.Logger, data, err, successStatus)
}

// RegisterUserHandler lida com a requisição POST /v1/register.
// @Summary Registra um novo comprador
// @Tags auth
// @Accept json
// @Produce json
// @Param user body domain.UserRegistration true "Email, senha e nome"
// @Success 201 {object} domain.User
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Router /register [post]
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var registration domain.UserRegistration
	if err := response.Decode(w, r, &registration); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	user, err := h.Service.Register(r.Context(), registration)
	h.handleServiceResponse(w, r, user, err, http.StatusCreated)
}

// LoginUserHandler lida com a requisição POST /v1/login.
// @Summary Autentica e devolve um JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credenciais"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /login [post]
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var loginReq LoginRequest
	if err := response.Decode(w, r, &loginReq); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	token, err := h.Service.Login(r.Context(), loginReq.Email, loginReq.Password)
	h.handleServiceResponse(w, r, LoginResponse{Token: token}, err, http.StatusOK)
}

// MeHandler lida com a requisição GET /v1/me.
// @Summary Usuário autenticado
// @Description Devolve o usuário do token, incluindo discountCode e discount.
// @Tags auth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Security ApiKeyAuth
// @Router /me [get]
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Token ausente."), http.StatusOK)
		return
	}

	user, err := h.Service.GetByID(r.Context(), claims.UserID)
	h.handleServiceResponse(w, r, user, err, http.StatusOK)
}
