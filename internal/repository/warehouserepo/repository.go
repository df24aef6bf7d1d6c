package warehouserepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gojoyas/internal/domain"
	"gojoyas/internal/errors"
	"gojoyas/internal/pkg/logger"
)

// WarehouseRepository implementa a persistência de armazéns e seus itens.
// Os itens são gravados com a posição na lista, pois as operações do ledger são posicionais.
type WarehouseRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewWarehouseRepository cria e retorna uma nova instância do Repositório de Armazéns.
func NewWarehouseRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *WarehouseRepository {
	return &WarehouseRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const warehouseColumns = `id, name, location, capacity, current_occupancy, status, last_inventory_date, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWarehouse(row rowScanner) (domain.Warehouse, error) {
	var (
		w        domain.Warehouse
		lastInv  sql.NullTime
		statusDB string
	)
	err := row.Scan(&w.ID, &w.Name, &w.Location, &w.Capacity, &w.CurrentOccupancy,
		&statusDB, &lastInv, &w.Version, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return domain.Warehouse{}, err
	}
	w.Status = domain.WarehouseStatus(statusDB)
	if lastInv.Valid {
		w.LastInventoryDate = lastInv.Time
	}
	w.Items = []domain.WarehouseItem{}
	return w, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// CreateWarehouse insere o armazém e seus itens numa única transação.
func (r *WarehouseRepository) CreateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	r.logger.Debug("Iniciando CreateWarehouse no repositório.", map[string]interface{}{"name": warehouse.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if warehouse.ID == "" {
		warehouse.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	warehouse.CreatedAt = now
	warehouse.UpdatedAt = now
	warehouse.Version = 1

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de CreateWarehouse.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query := `
        INSERT INTO warehouses (` + warehouseColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.ExecContext(ctxTimeout, query,
		warehouse.ID, warehouse.Name, warehouse.Location, warehouse.Capacity, warehouse.CurrentOccupancy,
		string(warehouse.Status), nullTime(warehouse.LastInventoryDate), warehouse.Version,
		warehouse.CreatedAt, warehouse.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir armazém no DB.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao criar armazém", err)
	}

	if err = insertItems(ctxTimeout, tx, warehouse.ID, warehouse.Items); err != nil {
		r.logger.Error("Falha ao inserir itens do armazém no DB.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao criar itens do armazém", err)
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("Falha ao confirmar transação de CreateWarehouse.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao confirmar criação do armazém", err)
	}

	if warehouse.Items == nil {
		warehouse.Items = []domain.WarehouseItem{}
	}
	r.logger.Info("Armazém criado com sucesso.", map[string]interface{}{"id": warehouse.ID, "name": warehouse.Name, "items": len(warehouse.Items)})
	return warehouse, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, warehouseID string, items []domain.WarehouseItem) error {
	const itemSQL = `
        INSERT INTO warehouse_items (id, warehouse_id, position, product_id, sku, quantity, minimum_stock, location, status, last_updated)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for i, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()
			items[i].ID = it.ID
		}
		if it.LastUpdated.IsZero() {
			it.LastUpdated = time.Now().UTC()
			items[i].LastUpdated = it.LastUpdated
		}
		_, err := tx.ExecContext(ctx, itemSQL,
			it.ID, warehouseID, i, it.ProductID, it.SKU, it.Quantity, it.MinimumStock,
			it.Location, string(it.Status), it.LastUpdated,
		)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// GetWarehouseByID busca um armazém pelo ID, com os itens na ordem gravada.
func (r *WarehouseRepository) GetWarehouseByID(ctx context.Context, id string) (domain.Warehouse, error) {
	r.logger.Debug("Iniciando GetWarehouseByID no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE id = $1`

	warehouse, err := scanWarehouse(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		r.logger.Info("Armazém não encontrado.", map[string]interface{}{"id": id})
		return domain.Warehouse{}, errors.NewNotFoundError(fmt.Sprintf("Armazém com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar armazém no DB.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao buscar armazém", err)
	}

	items, err := r.loadItems(ctxTimeout, []string{id})
	if err != nil {
		r.logger.Error("Falha ao buscar itens do armazém no DB.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao buscar itens do armazém", err)
	}
	if list, ok := items[id]; ok {
		warehouse.Items = list
	}

	r.logger.Info("Armazém encontrado.", map[string]interface{}{"id": id, "name": warehouse.Name})
	return warehouse, nil
}

// GetAllWarehouses busca todos os armazéns e carrega os itens com uma única query.
func (r *WarehouseRepository) GetAllWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	r.logger.Debug("Iniciando GetAllWarehouses no repositório.", nil)

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + warehouseColumns + ` FROM warehouses ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar GetAllWarehouses query.", err)
		return nil, errors.NewDBError("Falha ao buscar todos os armazéns", err)
	}
	defer rows.Close()

	warehouses := []domain.Warehouse{}
	ids := []string{}
	for rows.Next() {
		warehouse, err := scanWarehouse(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear armazém na iteração de GetAllWarehouses.", err)
			return nil, errors.NewDBError("Falha ao mapear armazéns do DB", err)
		}
		warehouses = append(warehouses, warehouse)
		ids = append(ids, warehouse.ID)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de armazéns.", err)
		return nil, errors.NewDBError("Erro após iteração de armazéns", err)
	}

	if len(ids) > 0 {
		items, err := r.loadItems(ctxTimeout, ids)
		if err != nil {
			r.logger.Error("Falha ao buscar itens dos armazéns no DB.", err)
			return nil, errors.NewDBError("Falha ao buscar itens dos armazéns", err)
		}
		for i := range warehouses {
			if list, ok := items[warehouses[i].ID]; ok {
				warehouses[i].Items = list
			}
		}
	}

	r.logger.Info("GetAllWarehouses concluído com sucesso.", map[string]interface{}{"total_warehouses": len(warehouses)})
	return warehouses, nil
}

func (r *WarehouseRepository) loadItems(ctx context.Context, warehouseIDs []string) (map[string][]domain.WarehouseItem, error) {
	query := `
        SELECT warehouse_id, id, product_id, sku, quantity, minimum_stock, location, status, last_updated
        FROM warehouse_items
        WHERE warehouse_id = ANY($1)
        ORDER BY warehouse_id, position`

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(warehouseIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.WarehouseItem, len(warehouseIDs))
	for rows.Next() {
		var (
			whID   string
			it     domain.WarehouseItem
			status string
		)
		if err := rows.Scan(&whID, &it.ID, &it.ProductID, &it.SKU, &it.Quantity, &it.MinimumStock,
			&it.Location, &status, &it.LastUpdated); err != nil {
			return nil, err
		}
		it.Status = domain.StockStatus(status)
		out[whID] = append(out[whID], it)
	}
	return out, rows.Err()
}

// UpdateWarehouse atualiza o armazém usando Controle de Concorrência Otimista (OCC):
// a gravação só acontece se a versão recebida for a versão atual no DB.
// A lista de itens é regravada por inteiro na mesma transação.
func (r *WarehouseRepository) UpdateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	r.logger.Debug("Iniciando UpdateWarehouse no repositório.", map[string]interface{}{"id": warehouse.ID, "version": warehouse.Version})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de UpdateWarehouse.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	query := `
        UPDATE warehouses
        SET name = $1, location = $2, capacity = $3, current_occupancy = $4, status = $5,
            last_inventory_date = $6, version = $7, updated_at = $8
        WHERE id = $9 AND version = $10
        RETURNING created_at`

	var createdAt time.Time
	err = tx.QueryRowContext(ctxTimeout, query,
		warehouse.Name, warehouse.Location, warehouse.Capacity, warehouse.CurrentOccupancy,
		string(warehouse.Status), nullTime(warehouse.LastInventoryDate),
		warehouse.Version+1, now, warehouse.ID, warehouse.Version,
	).Scan(&createdAt)

	if err == sql.ErrNoRows {
		// Distingue armazém inexistente de versão desatualizada.
		var exists bool
		if qErr := tx.QueryRowContext(ctxTimeout, `SELECT EXISTS(SELECT 1 FROM warehouses WHERE id = $1)`, warehouse.ID).Scan(&exists); qErr != nil {
			r.logger.Error("Falha ao verificar existência do armazém.", qErr)
			return domain.Warehouse{}, errors.NewDBError("Falha ao atualizar armazém", qErr)
		}
		if !exists {
			r.logger.Info("Armazém não encontrado para atualização.", map[string]interface{}{"id": warehouse.ID})
			return domain.Warehouse{}, errors.NewNotFoundError(fmt.Sprintf("Armazém com ID %s não encontrado para atualização.", warehouse.ID))
		}
		r.logger.Warn("Conflito de concorrência otimista detectado.", map[string]interface{}{
			"id":               warehouse.ID,
			"expected_version": warehouse.Version,
		})
		return domain.Warehouse{}, errors.NewConflictError("O armazém foi modificado por outra operação. Recarregue e tente novamente.")
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar armazém no DB.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao atualizar armazém", err)
	}

	if _, err = tx.ExecContext(ctxTimeout, `DELETE FROM warehouse_items WHERE warehouse_id = $1`, warehouse.ID); err != nil {
		r.logger.Error("Falha ao limpar itens do armazém.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao atualizar itens do armazém", err)
	}
	if err = insertItems(ctxTimeout, tx, warehouse.ID, warehouse.Items); err != nil {
		r.logger.Error("Falha ao regravar itens do armazém.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao atualizar itens do armazém", err)
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("Falha ao confirmar transação de UpdateWarehouse.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao confirmar atualização do armazém", err)
	}

	warehouse.Version++
	warehouse.CreatedAt = createdAt
	warehouse.UpdatedAt = now
	if warehouse.Items == nil {
		warehouse.Items = []domain.WarehouseItem{}
	}

	r.logger.Info("Armazém atualizado com sucesso.", map[string]interface{}{"id": warehouse.ID, "new_version": warehouse.Version})
	return warehouse, nil
}

// DeleteWarehouse remove um armazém pelo ID (os itens caem em cascata).
func (r *WarehouseRepository) DeleteWarehouse(ctx context.Context, id string) error {
	r.logger.Debug("Iniciando DeleteWarehouse no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar armazém do DB.", err)
		return errors.NewDBError("Falha ao deletar armazém", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após DeleteWarehouse.", err)
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	if rowsAffected == 0 {
		r.logger.Info("Armazém não encontrado para exclusão.", map[string]interface{}{"id": id})
		return errors.NewNotFoundError(fmt.Sprintf("Armazém com ID %s não encontrado para exclusão.", id))
	}

	r.logger.Info("Armazém deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}
