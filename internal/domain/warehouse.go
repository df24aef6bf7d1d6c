package domain

import (
	"time"
)

// WarehouseStatus representa o estado operacional de um armazém.
type WarehouseStatus string

const (
	WarehouseActive      WarehouseStatus = "ACTIVE"
	WarehouseInactive    WarehouseStatus = "INACTIVE"
	WarehouseMaintenance WarehouseStatus = "MAINTENANCE"
)

// Valid indica se o status pertence ao conjunto fechado aceito pela API.
func (s WarehouseStatus) Valid() bool {
	switch s {
	case WarehouseActive, WarehouseInactive, WarehouseMaintenance:
		return true
	}
	return false
}

// StockStatus é a classificação derivada de um item a partir de (quantity, minimumStock).
// Nunca deve ser atribuída diretamente: use ledger.StockStatusFor.
type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLowStock   StockStatus = "low_stock"
	StockOutOfStock StockStatus = "out_of_stock"
)

// Warehouse representa um armazém físico com capacidade e itens estocados.
// CurrentOccupancy é derivado: soma das quantidades de Items.
type Warehouse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Location          string          `json:"location"`
	Capacity          int             `json:"capacity"`
	CurrentOccupancy  int             `json:"currentOccupancy"`
	Status            WarehouseStatus `json:"status"`
	Items             []WarehouseItem `json:"items"`
	LastInventoryDate time.Time       `json:"lastInventoryDate"`
	Version           int             `json:"version"` // Controle de Concorrência Otimista (OCC)
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// WarehouseItem é uma linha de estoque de um produto dentro de um armazém.
type WarehouseItem struct {
	ID           string      `json:"id"`
	ProductID    string      `json:"productId"`
	SKU          string      `json:"sku"`
	Quantity     int         `json:"quantity"`
	MinimumStock int         `json:"minimumStock"`
	Location     string      `json:"location"`
	LastUpdated  time.Time   `json:"lastUpdated"`
	Status       StockStatus `json:"status"`
}

// Clone devolve uma cópia profunda do armazém (a lista de itens não é compartilhada).
func (w Warehouse) Clone() Warehouse {
	c := w
	if w.Items != nil {
		c.Items = make([]WarehouseItem, len(w.Items))
		copy(c.Items, w.Items)
	}
	return c
}

// OccupancyReport é a visão resumida de ocupação exposta ao painel administrativo.
type OccupancyReport struct {
	WarehouseID      string  `json:"warehouseId"`
	Capacity         int     `json:"capacity"`
	CurrentOccupancy int     `json:"currentOccupancy"`
	OccupancyPercent string  `json:"occupancyPercent" example:"25.0"`
	Ratio            float64 `json:"ratio"`
	InStock          int     `json:"inStock"`
	LowStock         int     `json:"lowStock"`
	OutOfStock       int     `json:"outOfStock"`
}

// StockAdjustment é o ajuste relativo de quantidade de um item (entrada ou saída de mercadoria).
type StockAdjustment struct {
	Delta  int    `json:"delta" example:"-2"`
	Reason string `json:"reason,omitempty" example:"venda balcão"`
}
