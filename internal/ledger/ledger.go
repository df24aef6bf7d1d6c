// Package ledger mantém a contabilidade de ocupação e de status de estoque de um armazém.
//
// Todas as funções são síncronas e em memória. A validação de campos obrigatórios e de
// capacidade acontece no momento do envio do formulário (camada de serviço), não aqui.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"gojoyas/internal/domain"
)

// ItemField identifica o campo de um WarehouseItem alterado por UpdateItem.
type ItemField string

const (
	FieldQuantity     ItemField = "quantity"
	FieldMinimumStock ItemField = "minimumStock"
	FieldSKU          ItemField = "sku"
	FieldProductID    ItemField = "productId"
	FieldLocation     ItemField = "location"
)

var (
	// ErrIndexOutOfRange é retornado quando a posição não existe na lista de itens.
	ErrIndexOutOfRange = errors.New("ledger: índice de item fora do intervalo")
	// ErrUnknownField é retornado para um campo fora do conjunto de ItemField.
	ErrUnknownField = errors.New("ledger: campo de item desconhecido")
	// ErrInvalidValue é retornado quando o valor não tem o tipo esperado pelo campo.
	ErrInvalidValue = errors.New("ledger: valor inválido para o campo")
)

// StockStatusFor é a regra única de classificação de estoque.
// quantity == 0 → out_of_stock; 0 < quantity <= minimumStock → low_stock; caso contrário in_stock.
func StockStatusFor(quantity, minimumStock int) domain.StockStatus {
	switch {
	case quantity <= 0:
		return domain.StockOutOfStock
	case quantity <= minimumStock:
		return domain.StockLowStock
	default:
		return domain.StockInStock
	}
}

// Occupancy soma as quantidades de todos os itens.
func Occupancy(items []domain.WarehouseItem) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

// AddItem anexa o item, deriva seu status e recalcula a ocupação.
// Não há verificação de ID duplicado: a unicidade é responsabilidade de quem chama.
func AddItem(w *domain.Warehouse, item domain.WarehouseItem) {
	item.Status = StockStatusFor(item.Quantity, item.MinimumStock)
	w.Items = append(w.Items, item)
	w.CurrentOccupancy = Occupancy(w.Items)
}

// UpdateItem altera um campo do item na posição index.
// Para quantity e minimumStock o status do item e a ocupação são recalculados;
// os demais campos são sobrescritos sem recálculo.
func UpdateItem(w *domain.Warehouse, index int, field ItemField, value any) error {
	if index < 0 || index >= len(w.Items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	item := &w.Items[index]

	switch field {
	case FieldQuantity, FieldMinimumStock:
		n, ok := toInt(value)
		if !ok {
			return fmt.Errorf("%w: %s=%v", ErrInvalidValue, field, value)
		}
		if field == FieldQuantity {
			item.Quantity = n
		} else {
			item.MinimumStock = n
		}
		item.Status = StockStatusFor(item.Quantity, item.MinimumStock)
		w.CurrentOccupancy = Occupancy(w.Items)
		return nil
	case FieldSKU, FieldProductID, FieldLocation:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s=%v", ErrInvalidValue, field, value)
		}
		switch field {
		case FieldSKU:
			item.SKU = s
		case FieldProductID:
			item.ProductID = s
		default:
			item.Location = s
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// RemoveItem remove o item na posição index e recalcula a ocupação.
func RemoveItem(w *domain.Warehouse, index int) error {
	if index < 0 || index >= len(w.Items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	w.Items = append(w.Items[:index], w.Items[index+1:]...)
	w.CurrentOccupancy = Occupancy(w.Items)
	return nil
}

// Recompute re-deriva o status de todos os itens e a ocupação do armazém.
// Usado sempre que um armazém atravessa uma fronteira (JSON, banco de dados).
func Recompute(w *domain.Warehouse) {
	for i := range w.Items {
		w.Items[i].Status = StockStatusFor(w.Items[i].Quantity, w.Items[i].MinimumStock)
	}
	w.CurrentOccupancy = Occupancy(w.Items)
}

// OccupancyPercent devolve currentOccupancy/capacity*100, ou 0 quando capacity <= 0.
func OccupancyPercent(w domain.Warehouse) float64 {
	if w.Capacity <= 0 {
		return 0
	}
	return float64(w.CurrentOccupancy) / float64(w.Capacity) * 100
}

// FormatOccupancyPercent formata o percentual com uma casa decimal (ex.: "25.0").
func FormatOccupancyPercent(w domain.Warehouse) string {
	return strconv.FormatFloat(OccupancyPercent(w), 'f', 1, 64)
}

// LowStockItems devolve os itens que exigem reposição (low_stock ou out_of_stock), na ordem original.
func LowStockItems(w domain.Warehouse) []domain.WarehouseItem {
	var out []domain.WarehouseItem
	for _, it := range w.Items {
		if StockStatusFor(it.Quantity, it.MinimumStock) != domain.StockInStock {
			out = append(out, it)
		}
	}
	return out
}

// Report monta o resumo de ocupação e a contagem de itens por status.
func Report(w domain.Warehouse) domain.OccupancyReport {
	r := domain.OccupancyReport{
		WarehouseID:      w.ID,
		Capacity:         w.Capacity,
		CurrentOccupancy: Occupancy(w.Items),
	}
	w.CurrentOccupancy = r.CurrentOccupancy
	r.Ratio = OccupancyPercent(w)
	r.OccupancyPercent = FormatOccupancyPercent(w)

	for _, it := range w.Items {
		switch StockStatusFor(it.Quantity, it.MinimumStock) {
		case domain.StockInStock:
			r.InStock++
		case domain.StockLowStock:
			r.LowStock++
		default:
			r.OutOfStock++
		}
	}
	return r
}

// toInt aceita os tipos numéricos que chegam de formulários e de JSON decodificado em any.
func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
