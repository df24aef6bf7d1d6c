package schema

import (
	"fmt"
	"net/http"
	"reflect"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"

	"gojoyas/internal/api/response"
	"gojoyas/internal/domain"
	apperror "gojoyas/internal/errors"
	"gojoyas/internal/pkg/logger"
)

// entities lista os payloads de fronteira cujo JSON Schema é publicado.
var entities = map[string]interface{}{
	"warehouse":     domain.Warehouse{},
	"item":          domain.WarehouseItem{},
	"expense":       domain.Expense{},
	"discount":      domain.DiscountRule{},
	"product":       domain.Product{},
	"quote-request": domain.QuoteRequest{},
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// Handler publica os JSON Schemas usados pelos formulários do painel.
type Handler struct {
	schemas map[string]*jsonschema.Schema
	Logger  logger.Logger
}

// NewHandler gera todos os schemas uma única vez.
func NewHandler(log logger.Logger) *Handler {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			// Valores monetários trafegam como string decimal ("12990.50").
			if t == decimalType {
				return &jsonschema.Schema{Type: "string", Pattern: `^-?[0-9]+(\.[0-9]+)?$`}
			}
			return nil
		},
	}

	schemas := make(map[string]*jsonschema.Schema, len(entities))
	for name, v := range entities {
		schemas[name] = reflector.Reflect(v)
	}
	return &Handler{schemas: schemas, Logger: log}
}

// Names devolve as entidades disponíveis em ordem alfabética.
func (h *Handler) Names() []string {
	names := make([]string, 0, len(h.schemas))
	for name := range h.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetSchemaHandler lida com a requisição GET /v1/schemas/{entity}.
// @Summary JSON Schema de um payload
// @Tags schemas
// @Produce json
// @Param entity path string true "warehouse, item, expense, discount, product ou quote-request"
// @Success 200 {object} object
// @Failure 404 {object} domain.ErrorResponse "Entidade desconhecida"
// @Router /schemas/{entity} [get]
func (h *Handler) GetSchemaHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("entity")
	s, ok := h.schemas[name]
	if !ok {
		response.Write(w, r, h.Logger, nil, apperror.NewNotFoundError(fmt.Sprintf("Schema '%s' não existe.", name)), http.StatusOK)
		return
	}
	response.Write(w, r, h.Logger, s, nil, http.StatusOK)
}
