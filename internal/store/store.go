// Package store é o contêiner de estado do painel administrativo.
//
// Toda escrita passa por três verificações antes de tocar no estado: o contexto do
// chamador, o token de encerramento (Close) e a ordem das respostas. Cargas e descontos
// usam a sequência de requisições do recurso; mutações de armazém comparam a versão
// confirmada pelo backend, de modo que uma gravação já aceita nunca é descartada só
// porque outra requisição, posterior e malsucedida, começou depois dela.
// Mutações de armazém são aplicadas numa cópia de staging e só entram na coleção
// depois que o backend confirma.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"gojoyas/internal/domain"
	"gojoyas/internal/ledger"
	"gojoyas/internal/pkg/logger"
)

var (
	// ErrClosed indica que o store foi encerrado antes da resposta chegar.
	ErrClosed = errors.New("store: encerrado")
	// ErrNotLoaded indica que o armazém não está na coleção local.
	ErrNotLoaded = errors.New("store: armazém não carregado")
	// ErrSuperseded indica que uma requisição mais nova já gravou o mesmo recurso.
	ErrSuperseded = errors.New("store: resposta descartada por uma requisição mais recente")
)

// Backend é a persistência remota usada pelo store (internal/client/backend).
type Backend interface {
	ListWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	CreateWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error)
	UpdateWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error)
	ListDiscounts(ctx context.Context) ([]domain.DiscountRule, error)
}

const (
	keyWarehouses = "warehouses"
	keyDiscounts  = "discounts"
)

// DefaultDiscountTTL é a idade máxima dos descontos antes do refetch.
const DefaultDiscountTTL = 5 * time.Minute

// Store guarda as coleções espelhadas do backend.
type Store struct {
	backend     Backend
	logger      logger.Logger
	now         func() time.Time
	discountTTL time.Duration

	mu                 sync.RWMutex
	warehouses         []domain.Warehouse
	discounts          []domain.DiscountRule
	discountsFetchedAt time.Time
	seq                map[string]uint64
	warehouseWrites    uint64
	inFlight           int
	closed             bool

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Option customiza o Store.
type Option func(*Store)

// WithDiscountTTL define a janela de validade da lista de descontos.
func WithDiscountTTL(ttl time.Duration) Option {
	return func(s *Store) { s.discountTTL = ttl }
}

// WithClock substitui o relógio (testes).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New cria um store vazio.
func New(backend Backend, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		backend:     backend,
		logger:      log,
		now:         time.Now,
		discountTTL: DefaultDiscountTTL,
		seq:         make(map[string]uint64),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// --- Seletores ---

// Warehouses devolve uma cópia da coleção de armazéns.
func (s *Store) Warehouses() []domain.Warehouse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Warehouse, len(s.warehouses))
	for i, w := range s.warehouses {
		out[i] = w.Clone()
	}
	return out
}

// Warehouse devolve uma cópia do armazém id.
func (s *Store) Warehouse(id string) (domain.Warehouse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.warehouses[i].Clone(), true
	}
	return domain.Warehouse{}, false
}

// Discounts devolve uma cópia das regras de desconto.
func (s *Store) Discounts() []domain.DiscountRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DiscountRule(nil), s.discounts...)
}

// DiscountsFetchedAt devolve o instante do último fetch bem-sucedido (zero se nunca).
func (s *Store) DiscountsFetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discountsFetchedAt
}

// Stale indica se os descontos passaram da idade máxima.
func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.staleLocked()
}

// Loading indica se há chamadas ao backend em andamento.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// --- Ações ---

// LoadWarehouses busca a coleção no backend e a substitui por inteiro.
func (s *Store) LoadWarehouses(ctx context.Context) error {
	token, writes, err := s.beginLoad()
	if err != nil {
		return err
	}
	defer s.finish()

	warehouses, err := s.backend.ListWarehouses(ctx)
	if err != nil {
		s.logger.Warn("Falha ao carregar armazéns.", map[string]interface{}{"error": err.Error()})
		return err
	}
	for i := range warehouses {
		ledger.Recompute(&warehouses[i])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.canWrite(ctx, keyWarehouses, token); err != nil {
		return err
	}
	// Uma mutação confirmada depois do início do load é mais nova que esta lista.
	if s.warehouseWrites != writes {
		return ErrSuperseded
	}
	s.warehouses = warehouses
	s.warehouseWrites++

	s.logger.Info("Armazéns carregados.", map[string]interface{}{"count": len(warehouses)})
	return nil
}

// CreateWarehouse persiste o armazém e, confirmado, o acrescenta à coleção.
func (s *Store) CreateWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error) {
	staged := w.Clone()
	ledger.Recompute(&staged)

	if _, err := s.begin("warehouse:new"); err != nil {
		return domain.Warehouse{}, err
	}
	defer s.finish()

	created, err := s.backend.CreateWarehouse(ctx, staged)
	if err != nil {
		s.logger.Warn("Falha ao criar armazém.", map[string]interface{}{"name": w.Name, "error": err.Error()})
		return domain.Warehouse{}, err
	}
	ledger.Recompute(&created)

	s.mu.Lock()
	defer s.mu.Unlock()
	// Criações não competem entre si: cada uma gera um armazém novo no backend.
	if err := s.alive(ctx); err != nil {
		return domain.Warehouse{}, err
	}
	s.warehouses = append(s.warehouses, created)
	s.warehouseWrites++

	return created.Clone(), nil
}

// MutateWarehouse aplica fn numa cópia de staging, persiste e só então incorpora o eco do backend.
// Se fn ou o backend falharem, a coleção local fica intacta.
func (s *Store) MutateWarehouse(ctx context.Context, id string, fn func(w *domain.Warehouse) error) (domain.Warehouse, error) {
	current, ok := s.Warehouse(id)
	if !ok {
		return domain.Warehouse{}, ErrNotLoaded
	}

	staged := current.Clone()
	if err := fn(&staged); err != nil {
		return domain.Warehouse{}, err
	}
	ledger.Recompute(&staged)

	if _, err := s.begin("warehouse:" + id); err != nil {
		return domain.Warehouse{}, err
	}
	defer s.finish()

	saved, err := s.backend.UpdateWarehouse(ctx, staged)
	if err != nil {
		s.logger.Warn("Backend recusou a mutação. Staging descartado.", map[string]interface{}{"id": id, "error": err.Error()})
		return domain.Warehouse{}, err
	}
	ledger.Recompute(&saved)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.alive(ctx); err != nil {
		return domain.Warehouse{}, err
	}
	i := s.indexOf(id)
	// Só uma versão confirmada mais nova que a nossa pode nos substituir.
	if i >= 0 && s.warehouses[i].Version > saved.Version {
		return domain.Warehouse{}, ErrSuperseded
	}
	if i >= 0 {
		s.warehouses[i] = saved
	} else {
		s.warehouses = append(s.warehouses, saved)
	}
	s.warehouseWrites++

	return saved.Clone(), nil
}

// AddItem acrescenta um item ao armazém via MutateWarehouse.
func (s *Store) AddItem(ctx context.Context, id string, item domain.WarehouseItem) (domain.Warehouse, error) {
	return s.MutateWarehouse(ctx, id, func(w *domain.Warehouse) error {
		ledger.AddItem(w, item)
		return nil
	})
}

// UpdateItem altera um campo do item na posição index via MutateWarehouse.
func (s *Store) UpdateItem(ctx context.Context, id string, index int, field ledger.ItemField, value any) (domain.Warehouse, error) {
	return s.MutateWarehouse(ctx, id, func(w *domain.Warehouse) error {
		return ledger.UpdateItem(w, index, field, value)
	})
}

// RemoveItem remove o item na posição index via MutateWarehouse.
func (s *Store) RemoveItem(ctx context.Context, id string, index int) (domain.Warehouse, error) {
	return s.MutateWarehouse(ctx, id, func(w *domain.Warehouse) error {
		return ledger.RemoveItem(w, index)
	})
}

// RefreshDiscounts busca as regras quando estão velhas (ou force) e informa se houve refetch.
func (s *Store) RefreshDiscounts(ctx context.Context, force bool) (bool, error) {
	if !force && !s.Stale() {
		return false, nil
	}

	token, err := s.begin(keyDiscounts)
	if err != nil {
		return false, err
	}
	defer s.finish()

	rules, err := s.backend.ListDiscounts(ctx)
	if err != nil {
		s.logger.Warn("Falha ao atualizar descontos.", map[string]interface{}{"error": err.Error()})
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.canWrite(ctx, keyDiscounts, token); err != nil {
		return false, err
	}
	s.discounts = rules
	s.discountsFetchedAt = s.now()

	s.logger.Debug("Descontos atualizados.", map[string]interface{}{"count": len(rules)})
	return true, nil
}

// StartDiscountRefresher verifica a validade dos descontos a cada interval
// até ctx ser cancelado ou Close ser chamado.
func (s *Store) StartDiscountRefresher(ctx context.Context, interval time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				if _, err := s.RefreshDiscounts(ctx, false); err != nil && !errors.Is(err, ErrClosed) {
					s.logger.Error("Refetch periódico de descontos falhou.", err)
				}
			}
		}
	}()
}

// Close invalida o token de encerramento e espera o refresher terminar.
// Respostas que chegarem depois são descartadas com ErrClosed.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
	s.wg.Wait()
}

// --- internos ---

func (s *Store) begin(key string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	s.seq[key]++
	s.inFlight++
	return s.seq[key], nil
}

func (s *Store) beginLoad() (uint64, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, 0, ErrClosed
	}
	s.seq[keyWarehouses]++
	s.inFlight++
	return s.seq[keyWarehouses], s.warehouseWrites, nil
}

func (s *Store) finish() {
	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
}

// alive e canWrite devem ser chamados com s.mu travado.
func (s *Store) alive(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	return ctx.Err()
}

func (s *Store) canWrite(ctx context.Context, key string, token uint64) error {
	if err := s.alive(ctx); err != nil {
		return err
	}
	if s.seq[key] != token {
		return ErrSuperseded
	}
	return nil
}

func (s *Store) staleLocked() bool {
	if s.discountsFetchedAt.IsZero() {
		return true
	}
	return s.now().Sub(s.discountsFetchedAt) >= s.discountTTL
}

func (s *Store) indexOf(id string) int {
	for i, w := range s.warehouses {
		if w.ID == id {
			return i
		}
	}
	return -1
}
