// Package backend é o cliente HTTP do painel administrativo para a API REST do gojoyas.
// Não há retentativas: cada falha é devolvida uma única vez ao chamador.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gojoyas/internal/domain"
	"gojoyas/internal/pkg/logger"
)

// APIError representa uma resposta não-2xx do backend.
type APIError struct {
	Status   int
	Category string
	Message  string
}

// Error devolve a mensagem exibível ao usuário.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend respondeu com status %d", e.Status)
}

// Client fala JSON sobre HTTP com o backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     logger.Logger
}

// Option customiza o Client.
type Option func(*Client)

// WithToken envia o JWT no header Authorization.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient substitui o http.Client padrão.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout define o timeout de cada requisição.
// Trabalha numa cópia do http.Client para não alterar um cliente compartilhado vindo de WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// New cria o cliente apontando para baseURL (ex: http://localhost:8080).
func New(baseURL string, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListWarehouses busca todos os armazéns com seus itens.
func (c *Client) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	var out []domain.Warehouse
	err := c.do(ctx, http.MethodGet, "/v1/warehouses", nil, &out)
	return out, err
}

// GetWarehouse busca um armazém pelo ID.
func (c *Client) GetWarehouse(ctx context.Context, id string) (domain.Warehouse, error) {
	var out domain.Warehouse
	err := c.do(ctx, http.MethodGet, "/v1/warehouses/"+url.PathEscape(id), nil, &out)
	return out, err
}

// CreateWarehouse persiste um novo armazém e devolve o eco do backend.
func (c *Client) CreateWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error) {
	var out domain.Warehouse
	err := c.do(ctx, http.MethodPost, "/v1/warehouses", w, &out)
	return out, err
}

// UpdateWarehouse grava o armazém completo; w.Version deve ser a versão lida.
func (c *Client) UpdateWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error) {
	var out domain.Warehouse
	err := c.do(ctx, http.MethodPut, "/v1/warehouses/"+url.PathEscape(w.ID), w, &out)
	return out, err
}

// ListDiscounts busca todos os códigos de desconto.
func (c *Client) ListDiscounts(ctx context.Context) ([]domain.DiscountRule, error) {
	var out []domain.DiscountRule
	err := c.do(ctx, http.MethodGet, "/v1/discounts", nil, &out)
	return out, err
}

// ListExpenses busca as despesas, opcionalmente filtradas.
func (c *Client) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.WarehouseID != "" {
		q.Set("warehouseId", filter.WarehouseID)
	}
	path := "/v1/expenses"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []domain.Expense
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// CreateExpense registra uma despesa.
func (c *Client) CreateExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	var out domain.Expense
	err := c.do(ctx, http.MethodPost, "/v1/expenses", e, &out)
	return out, err
}

// Ping consulta o health check do backend.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dst interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("falha ao serializar requisição: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("falha ao montar requisição: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("Chamando backend.", map[string]interface{}{"method": method, "path": path})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend inacessível.", map[string]interface{}{"method": method, "path": path, "error": err.Error()})
		return fmt.Errorf("falha ao chamar backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body domain.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Category = body.Category
			apiErr.Message = body.Message
		}
		c.logger.Warn("Backend recusou a requisição.", map[string]interface{}{
			"method": method, "path": path, "status": resp.StatusCode, "category": apiErr.Category,
		})
		return apiErr
	}

	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("resposta inválida do backend: %w", err)
	}
	return nil
}
