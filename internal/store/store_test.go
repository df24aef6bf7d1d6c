package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gojoyas/internal/domain"
	"gojoyas/internal/ledger"
	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/store"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Warehouse), args.Error(1)
}

func (m *MockBackend) CreateWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error) {
	args := m.Called(ctx, w)
	return args.Get(0).(domain.Warehouse), args.Error(1)
}

func (m *MockBackend) UpdateWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error) {
	args := m.Called(ctx, w)
	return args.Get(0).(domain.Warehouse), args.Error(1)
}

func (m *MockBackend) ListDiscounts(ctx context.Context) ([]domain.DiscountRule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.DiscountRule), args.Error(1)
}

func central() domain.Warehouse {
	return domain.Warehouse{
		ID:       "w1",
		Name:     "Central",
		Location: "São Paulo",
		Capacity: 100,
		Status:   domain.WarehouseActive,
		Version:  1,
		Items: []domain.WarehouseItem{
			{ID: "i1", ProductID: "p1", SKU: "ANL-01", Quantity: 5, MinimumStock: 10},
			{ID: "i2", ProductID: "p2", SKU: "COL-02", Quantity: 20, MinimumStock: 5},
		},
	}
}

func loaded(t *testing.T, b *MockBackend, opts ...store.Option) *store.Store {
	t.Helper()
	s := store.New(b, logger.NewLogger("error"), opts...)
	b.On("ListWarehouses", mock.Anything).Return([]domain.Warehouse{central()}, nil).Once()
	require.NoError(t, s.LoadWarehouses(context.Background()))
	return s
}

func TestLoadWarehouses_RecomputesDerivedFields(t *testing.T) {
	b := new(MockBackend)
	s := loaded(t, b)

	ws := s.Warehouses()
	require.Len(t, ws, 1)
	assert.Equal(t, 25, ws[0].CurrentOccupancy)
	assert.Equal(t, domain.StockLowStock, ws[0].Items[0].Status)
	assert.Equal(t, domain.StockInStock, ws[0].Items[1].Status)
	assert.Equal(t, "25.0", ledger.FormatOccupancyPercent(ws[0]))
}

func TestSelectorsReturnCopies(t *testing.T) {
	b := new(MockBackend)
	s := loaded(t, b)

	w, ok := s.Warehouse("w1")
	require.True(t, ok)
	w.Items[0].Quantity = 999

	again, _ := s.Warehouse("w1")
	assert.Equal(t, 5, again.Items[0].Quantity)
}

func TestMutateWarehouse_MergesOnlyOnSuccess(t *testing.T) {
	b := new(MockBackend)
	s := loaded(t, b)

	b.On("UpdateWarehouse", mock.Anything, mock.MatchedBy(func(w domain.Warehouse) bool {
		return w.Items[0].Quantity == 0 && w.CurrentOccupancy == 20 && w.Version == 1
	})).Return(func() domain.Warehouse {
		w := central()
		w.Items[0].Quantity = 0
		w.Version = 2
		return w
	}(), nil).Once()

	got, err := s.UpdateItem(context.Background(), "w1", 0, ledger.FieldQuantity, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, got.CurrentOccupancy)
	assert.Equal(t, domain.StockOutOfStock, got.Items[0].Status)

	w, _ := s.Warehouse("w1")
	assert.Equal(t, 2, w.Version)
	assert.Equal(t, 20, w.CurrentOccupancy)
	b.AssertExpectations(t)
}

func TestMutateWarehouse_BackendFailureDiscardsStaging(t *testing.T) {
	b := new(MockBackend)
	s := loaded(t, b)

	b.On("UpdateWarehouse", mock.Anything, mock.Anything).Return(domain.Warehouse{}, errors.New("O armazém foi alterado por outra sessão.")).Once()

	_, err := s.RemoveItem(context.Background(), "w1", 1)
	require.EqualError(t, err, "O armazém foi alterado por outra sessão.")

	w, _ := s.Warehouse("w1")
	assert.Len(t, w.Items, 2)
	assert.Equal(t, 25, w.CurrentOccupancy)
	assert.False(t, s.Loading())
}

func TestMutateWarehouse_LedgerErrorSkipsBackend(t *testing.T) {
	b := new(MockBackend)
	s := loaded(t, b)

	_, err := s.RemoveItem(context.Background(), "w1", 7)
	assert.ErrorIs(t, err, ledger.ErrIndexOutOfRange)

	_, err = s.AddItem(context.Background(), "nao-existe", domain.WarehouseItem{})
	assert.ErrorIs(t, err, store.ErrNotLoaded)

	b.AssertNotCalled(t, "UpdateWarehouse", mock.Anything, mock.Anything)
}

func TestCreateWarehouse_AppendsBackendEcho(t *testing.T) {
	b := new(MockBackend)
	s := store.New(b, logger.NewLogger("error"))

	draft := central()
	draft.ID = ""
	echo := central()
	echo.ID = "w-new"
	b.On("CreateWarehouse", mock.Anything, mock.MatchedBy(func(w domain.Warehouse) bool {
		return w.CurrentOccupancy == 25
	})).Return(echo, nil).Once()

	created, err := s.CreateWarehouse(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "w-new", created.ID)

	_, ok := s.Warehouse("w-new")
	assert.True(t, ok)
}

// blockingBackend segura UpdateWarehouse até release ser fechado.
type blockingBackend struct {
	*MockBackend
	started chan struct{}
	release chan struct{}
}

func (b *blockingBackend) UpdateWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error) {
	close(b.started)
	<-b.release
	w.Version++
	return w, nil
}

func TestClose_DropsLateResponses(t *testing.T) {
	b := &blockingBackend{MockBackend: new(MockBackend), started: make(chan struct{}), release: make(chan struct{})}
	b.MockBackend.On("ListWarehouses", mock.Anything).Return([]domain.Warehouse{central()}, nil).Once()

	s := store.New(b, logger.NewLogger("error"))
	require.NoError(t, s.LoadWarehouses(context.Background()))

	var (
		wg  sync.WaitGroup
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err = s.UpdateItem(context.Background(), "w1", 0, ledger.FieldSKU, "ANL-99")
	}()

	<-b.started
	assert.True(t, s.Loading())
	s.Close()
	close(b.release)
	wg.Wait()

	assert.ErrorIs(t, err, store.ErrClosed)
	w, _ := s.Warehouse("w1")
	assert.Equal(t, "ANL-01", w.Items[0].SKU)
	assert.Equal(t, 1, w.Version)

	assert.ErrorIs(t, s.LoadWarehouses(context.Background()), store.ErrClosed)
}

func TestMutateWarehouse_CanceledContextDropsWrite(t *testing.T) {
	b := new(MockBackend)
	s := loaded(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	b.On("UpdateWarehouse", mock.Anything, mock.Anything).Run(func(mock.Arguments) { cancel() }).Return(central(), nil).Once()

	_, err := s.UpdateItem(ctx, "w1", 0, ledger.FieldLocation, "B-2")
	assert.ErrorIs(t, err, context.Canceled)
}

// slowListBackend devolve listas diferentes para o primeiro e o segundo ListWarehouses.
type slowListBackend struct {
	*MockBackend
	mu       sync.Mutex
	calls    int
	firstHit chan struct{}
	release  chan struct{}
}

func (b *slowListBackend) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	b.mu.Lock()
	b.calls++
	call := b.calls
	b.mu.Unlock()

	w := central()
	if call == 1 {
		close(b.firstHit)
		<-b.release
		w.Name = "Antigo"
		return []domain.Warehouse{w}, nil
	}
	w.Name = "Novo"
	return []domain.Warehouse{w}, nil
}

func TestLoadWarehouses_OlderResponseNeverOverwritesNewer(t *testing.T) {
	b := &slowListBackend{MockBackend: new(MockBackend), firstHit: make(chan struct{}), release: make(chan struct{})}
	s := store.New(b, logger.NewLogger("error"))

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = s.LoadWarehouses(context.Background())
	}()

	<-b.firstHit
	require.NoError(t, s.LoadWarehouses(context.Background()))
	close(b.release)
	wg.Wait()

	assert.ErrorIs(t, firstErr, store.ErrSuperseded)
	w, _ := s.Warehouse("w1")
	assert.Equal(t, "Novo", w.Name)
}

func TestRefreshDiscounts_RespectsTTL(t *testing.T) {
	b := new(MockBackend)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := store.New(b, logger.NewLogger("error"), store.WithClock(clock), store.WithDiscountTTL(5*time.Minute))

	assert.True(t, s.Stale())
	assert.True(t, s.DiscountsFetchedAt().IsZero())

	rules := []domain.DiscountRule{{ID: "d1", Code: "VERAO10"}}
	b.On("ListDiscounts", mock.Anything).Return(rules, nil).Twice()

	refreshed, err := s.RefreshDiscounts(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, rules, s.Discounts())
	assert.Equal(t, now, s.DiscountsFetchedAt())

	now = now.Add(4 * time.Minute)
	refreshed, err = s.RefreshDiscounts(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, refreshed, "dentro do TTL não refaz o fetch")

	refreshed, err = s.RefreshDiscounts(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, refreshed, "force ignora o TTL")

	now = now.Add(5 * time.Minute)
	assert.True(t, s.Stale())
	b.AssertExpectations(t)
}

func TestStartDiscountRefresher_StopsOnClose(t *testing.T) {
	b := new(MockBackend)
	fetched := make(chan struct{}, 1)
	b.On("ListDiscounts", mock.Anything).Run(func(mock.Arguments) {
		select {
		case fetched <- struct{}{}:
		default:
		}
	}).Return([]domain.DiscountRule{}, nil)

	s := store.New(b, logger.NewLogger("error"), store.WithDiscountTTL(0))
	s.StartDiscountRefresher(context.Background(), 5*time.Millisecond)

	select {
	case <-fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher não executou")
	}

	s.Close()
	_, err := s.RefreshDiscounts(context.Background(), true)
	assert.ErrorIs(t, err, store.ErrClosed)
}

// scriptedBackend delega UpdateWarehouse para update, escolhido por teste.
type scriptedBackend struct {
	*MockBackend
	update func(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error)
}

func (b *scriptedBackend) UpdateWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error) {
	return b.update(ctx, w)
}

func TestMutateWarehouse_ConfirmedWriteSurvivesLaterConflict(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	b := &scriptedBackend{MockBackend: new(MockBackend)}
	b.update = func(_ context.Context, w domain.Warehouse) (domain.Warehouse, error) {
		if w.Items[0].Quantity == 0 {
			close(started)
			<-release
			w.Version = 2
			return w, nil
		}
		return domain.Warehouse{}, errors.New("O armazém foi alterado por outra sessão.")
	}
	b.MockBackend.On("ListWarehouses", mock.Anything).Return([]domain.Warehouse{central()}, nil).Once()

	s := store.New(b, logger.NewLogger("error"))
	require.NoError(t, s.LoadWarehouses(context.Background()))

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = s.UpdateItem(context.Background(), "w1", 0, ledger.FieldQuantity, 0)
	}()

	<-started
	_, err := s.UpdateItem(context.Background(), "w1", 1, ledger.FieldQuantity, 3)
	require.EqualError(t, err, "O armazém foi alterado por outra sessão.")

	close(release)
	wg.Wait()

	require.NoError(t, firstErr)
	w, _ := s.Warehouse("w1")
	assert.Equal(t, 2, w.Version)
	assert.Equal(t, 0, w.Items[0].Quantity)
	assert.Equal(t, 20, w.CurrentOccupancy)
}

func TestMutateWarehouse_OlderEchoNeverOverwritesNewerVersion(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	b := &scriptedBackend{MockBackend: new(MockBackend)}
	b.update = func(_ context.Context, w domain.Warehouse) (domain.Warehouse, error) {
		if w.Items[0].Quantity == 0 {
			close(started)
			<-release
			w.Version = 2
			return w, nil
		}
		w.Version = 3
		return w, nil
	}
	b.MockBackend.On("ListWarehouses", mock.Anything).Return([]domain.Warehouse{central()}, nil).Once()

	s := store.New(b, logger.NewLogger("error"))
	require.NoError(t, s.LoadWarehouses(context.Background()))

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = s.UpdateItem(context.Background(), "w1", 0, ledger.FieldQuantity, 0)
	}()

	<-started
	_, err := s.UpdateItem(context.Background(), "w1", 1, ledger.FieldQuantity, 3)
	require.NoError(t, err)

	close(release)
	wg.Wait()

	assert.ErrorIs(t, firstErr, store.ErrSuperseded)
	w, _ := s.Warehouse("w1")
	assert.Equal(t, 3, w.Version)
	assert.Equal(t, 3, w.Items[1].Quantity)
}
