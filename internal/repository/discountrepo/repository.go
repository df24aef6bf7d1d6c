package discountrepo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gojoyas/internal/domain"
	"gojoyas/internal/errors"
	"gojoyas/internal/pkg/cache"
	"gojoyas/internal/pkg/logger"
)

// Chave de cache da lista completa de códigos de desconto.
const discountListCacheKey = "discounts:all"

// DiscountRepository persiste os códigos de desconto.
// A lista completa fica em cache (Cache-Aside) e é invalidada a cada escrita.
type DiscountRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewDiscountRepository cria e retorna uma nova instância do Repositório de Descontos.
func NewDiscountRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *DiscountRepository {
	return &DiscountRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

const discountColumns = `id, code, kind, value, starts_at, ends_at, applies_to, product_ids, user_id, is_active, created_at, updated_at`

func scanDiscount(row interface{ Scan(...interface{}) error }) (domain.DiscountRule, error) {
	var (
		d          domain.DiscountRule
		kind       string
		appliesTo  string
		startsAt   sql.NullTime
		endsAt     sql.NullTime
		userID     sql.NullString
		productIDs pq.StringArray
	)
	err := row.Scan(&d.ID, &d.Code, &kind, &d.Value, &startsAt, &endsAt, &appliesTo,
		&productIDs, &userID, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.DiscountRule{}, err
	}
	d.Kind = domain.DiscountKind(kind)
	d.AppliesTo = domain.DiscountScope(appliesTo)
	d.ProductIDs = []string(productIDs)
	d.UserID = userID.String
	if startsAt.Valid {
		t := startsAt.Time
		d.StartsAt = &t
	}
	if endsAt.Valid {
		t := endsAt.Time
		d.EndsAt = &t
	}
	return d, nil
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// productIDsParam nunca devolve NULL: product_ids é NOT NULL e uma regra "all" chega sem lista.
func productIDsParam(ids []string) driver.Valuer {
	if ids == nil {
		ids = []string{}
	}
	return pq.Array(ids)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return stdErrors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *DiscountRepository) invalidate(ctx context.Context) {
	if err := r.Cache.Delete(ctx, discountListCacheKey); err != nil {
		r.logger.Warn("Falha ao invalidar cache de descontos.", map[string]interface{}{"error": err.Error()})
	}
}

// CreateDiscount insere um novo código de desconto.
func (r *DiscountRepository) CreateDiscount(ctx context.Context, rule domain.DiscountRule) (domain.DiscountRule, error) {
	r.logger.Debug("Iniciando CreateDiscount no repositório.", map[string]interface{}{"code": rule.Code})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	query := `INSERT INTO discount_codes (` + discountColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.DB.ExecContext(ctxTimeout, query,
		rule.ID, rule.Code, string(rule.Kind), rule.Value, nullTimePtr(rule.StartsAt), nullTimePtr(rule.EndsAt),
		string(rule.AppliesTo), productIDsParam(rule.ProductIDs), nullString(rule.UserID), rule.IsActive,
		rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.DiscountRule{}, errors.NewConflictError(fmt.Sprintf("O código '%s' já existe.", rule.Code))
		}
		r.logger.Error("Falha ao inserir desconto no DB.", err)
		return domain.DiscountRule{}, errors.NewDBError("Falha ao criar código de desconto", err)
	}
	r.invalidate(ctxTimeout)

	r.logger.Info("Código de desconto criado com sucesso.", map[string]interface{}{"id": rule.ID, "code": rule.Code})
	return rule, nil
}

// GetDiscountByID busca um código de desconto pelo ID.
func (r *DiscountRepository) GetDiscountByID(ctx context.Context, id string) (domain.DiscountRule, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + discountColumns + ` FROM discount_codes WHERE id = $1`
	rule, err := scanDiscount(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.DiscountRule{}, errors.NewNotFoundError(fmt.Sprintf("Código de desconto com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar desconto no DB.", err)
		return domain.DiscountRule{}, errors.NewDBError("Falha ao buscar código de desconto", err)
	}
	return rule, nil
}

// ListDiscounts devolve todos os códigos na ordem de criação, usando a estratégia Cache-Aside.
// A ordem importa: em caso de empate no cálculo, vence a regra mais antiga.
func (r *DiscountRepository) ListDiscounts(ctx context.Context) ([]domain.DiscountRule, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	cached, err := r.Cache.Get(ctxTimeout, discountListCacheKey)
	if err == nil {
		var rules []domain.DiscountRule
		if json.Unmarshal([]byte(cached), &rules) == nil {
			r.logger.Debug("Cache HIT da lista de descontos.", map[string]interface{}{"total": len(rules)})
			return rules, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao ler descontos do cache Redis.", map[string]interface{}{"error": err.Error()})
	}

	query := `SELECT ` + discountColumns + ` FROM discount_codes ORDER BY created_at, code`
	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar ListDiscounts query.", err)
		return nil, errors.NewDBError("Falha ao listar códigos de desconto", err)
	}
	defer rows.Close()

	rules := []domain.DiscountRule{}
	for rows.Next() {
		rule, err := scanDiscount(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear desconto em ListDiscounts.", err)
			return nil, errors.NewDBError("Falha ao mapear descontos do DB", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de descontos", err)
	}

	if data, marshalErr := json.Marshal(rules); marshalErr == nil {
		if setErr := r.Cache.Set(ctxTimeout, discountListCacheKey, data, r.CacheTTL); setErr != nil {
			r.logger.Warn("Falha ao gravar descontos no cache.", map[string]interface{}{"error": setErr.Error()})
		}
	}

	r.logger.Info("ListDiscounts concluído com sucesso.", map[string]interface{}{"total": len(rules)})
	return rules, nil
}

// UpdateDiscount sobrescreve um código de desconto existente.
func (r *DiscountRepository) UpdateDiscount(ctx context.Context, rule domain.DiscountRule) (domain.DiscountRule, error) {
	r.logger.Debug("Iniciando UpdateDiscount no repositório.", map[string]interface{}{"id": rule.ID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rule.UpdatedAt = time.Now().UTC()
	sets := []string{
		"code = $1", "kind = $2", "value = $3", "starts_at = $4", "ends_at = $5",
		"applies_to = $6", "product_ids = $7", "user_id = $8", "is_active = $9", "updated_at = $10",
	}
	query := `UPDATE discount_codes SET ` + strings.Join(sets, ", ") + ` WHERE id = $11 RETURNING created_at`

	err := r.DB.QueryRowContext(ctxTimeout, query,
		rule.Code, string(rule.Kind), rule.Value, nullTimePtr(rule.StartsAt), nullTimePtr(rule.EndsAt),
		string(rule.AppliesTo), productIDsParam(rule.ProductIDs), nullString(rule.UserID), rule.IsActive,
		rule.UpdatedAt, rule.ID,
	).Scan(&rule.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.DiscountRule{}, errors.NewNotFoundError(fmt.Sprintf("Código de desconto com ID %s não encontrado para atualização.", rule.ID))
	}
	if err != nil {
		if isUniqueViolation(err) {
			return domain.DiscountRule{}, errors.NewConflictError(fmt.Sprintf("O código '%s' já existe.", rule.Code))
		}
		r.logger.Error("Falha ao atualizar desconto no DB.", err)
		return domain.DiscountRule{}, errors.NewDBError("Falha ao atualizar código de desconto", err)
	}
	r.invalidate(ctxTimeout)

	r.logger.Info("Código de desconto atualizado com sucesso.", map[string]interface{}{"id": rule.ID})
	return rule, nil
}

// DeleteDiscount remove um código de desconto pelo ID.
func (r *DiscountRepository) DeleteDiscount(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM discount_codes WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar desconto do DB.", err)
		return errors.NewDBError("Falha ao deletar código de desconto", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Código de desconto com ID %s não encontrado para exclusão.", id))
	}
	r.invalidate(ctxTimeout)

	r.logger.Info("Código de desconto deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}
