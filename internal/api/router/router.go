package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "gojoyas/docs" // registra a especificação Swagger
	"gojoyas/internal/api/cart"
	"gojoyas/internal/api/discount"
	"gojoyas/internal/api/expense"
	"gojoyas/internal/api/product"
	"gojoyas/internal/api/schema"
	"gojoyas/internal/api/user"
	"gojoyas/internal/api/warehouse"
	"gojoyas/internal/domain"
	"gojoyas/internal/pkg/cache"
	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/pkg/middleware"
)

// Handlers agrupa os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Product   *product.Handler
	User      *user.Handler
	Warehouse *warehouse.Handler
	Expense   *expense.Handler
	Discount  *discount.Handler
	Cart      *cart.Handler
	Schema    *schema.Handler
}

// Options reúne as dependências transversais do roteador.
type Options struct {
	TokenSvc   middleware.TokenService
	Cache      cache.Client // nil desliga o rate limit
	RateLimit  int
	RateWindow time.Duration
	Logger     logger.Logger
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, opts Options) http.Handler {
	mux := http.NewServeMux()

	authMiddleware := middleware.NewAuthMiddleware(opts.TokenSvc)
	adminOnly := middleware.PermissionMiddleware(domain.UserAdmin)

	// authed exige apenas um token válido; admin exige também o papel ADMIN.
	authed := func(fn http.HandlerFunc) http.Handler {
		return authMiddleware(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return authMiddleware(adminOnly(fn))
	}

	// --- 1. Health Check e Documentação ---
	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// --- 2. Usuários ---
	mux.HandleFunc("POST /v1/register", h.User.RegisterUserHandler)
	mux.HandleFunc("POST /v1/login", h.User.LoginUserHandler)
	mux.Handle("GET /v1/me", authed(h.User.MeHandler))

	// --- 3. Catálogo ---
	mux.HandleFunc("GET /v1/products", h.Product.GetProductsHandler)
	mux.HandleFunc("GET /v1/products/{id}", h.Product.GetProductByIDHandler)
	mux.Handle("POST /v1/products", admin(h.Product.CreateProductHandler))

	// --- 4. Armazéns e itens (ledger) ---
	mux.Handle("GET /v1/warehouses", admin(h.Warehouse.GetAllWarehousesHandler))
	mux.Handle("POST /v1/warehouses", admin(h.Warehouse.CreateWarehouseHandler))
	mux.Handle("GET /v1/warehouses/{id}", admin(h.Warehouse.GetWarehouseByIDHandler))
	mux.Handle("PUT /v1/warehouses/{id}", admin(h.Warehouse.UpdateWarehouseHandler))
	mux.Handle("DELETE /v1/warehouses/{id}", admin(h.Warehouse.DeleteWarehouseHandler))
	mux.Handle("GET /v1/warehouses/{id}/occupancy", admin(h.Warehouse.OccupancyHandler))
	mux.Handle("POST /v1/warehouses/{id}/items", admin(h.Warehouse.AddItemHandler))
	mux.Handle("PATCH /v1/warehouses/{id}/items/{index}", admin(h.Warehouse.UpdateItemHandler))
	mux.Handle("DELETE /v1/warehouses/{id}/items/{index}", admin(h.Warehouse.RemoveItemHandler))
	mux.Handle("POST /v1/warehouses/{id}/items/{index}/adjust", admin(h.Warehouse.AdjustItemHandler))

	// --- 5. Despesas ---
	mux.Handle("GET /v1/expenses", admin(h.Expense.ListExpensesHandler))
	mux.Handle("POST /v1/expenses", admin(h.Expense.CreateExpenseHandler))
	mux.Handle("GET /v1/expenses/{id}", admin(h.Expense.GetExpenseHandler))
	mux.Handle("PUT /v1/expenses/{id}", admin(h.Expense.UpdateExpenseHandler))
	mux.Handle("DELETE /v1/expenses/{id}", admin(h.Expense.DeleteExpenseHandler))

	// --- 6. Descontos ---
	// "active" é um segmento literal e tem precedência sobre {id}.
	mux.HandleFunc("GET /v1/discounts/active", h.Discount.ListActiveHandler)
	mux.Handle("GET /v1/discounts", admin(h.Discount.ListDiscountsHandler))
	mux.Handle("POST /v1/discounts", admin(h.Discount.CreateDiscountHandler))
	mux.Handle("GET /v1/discounts/{id}", admin(h.Discount.GetDiscountHandler))
	mux.Handle("PUT /v1/discounts/{id}", admin(h.Discount.UpdateDiscountHandler))
	mux.Handle("DELETE /v1/discounts/{id}", admin(h.Discount.DeleteDiscountHandler))

	// --- 7. Carrinho e Schemas ---
	mux.Handle("POST /v1/cart/quote", authed(h.Cart.QuoteHandler))
	mux.HandleFunc("GET /v1/schemas/{entity}", h.Schema.GetSchemaHandler)

	// --- 8. Middlewares Globais ---
	var handler http.Handler = mux
	if opts.Cache != nil && opts.RateLimit > 0 {
		handler = middleware.RateLimiter(opts.Cache, opts.RateLimit, opts.RateWindow, opts.Logger)(handler)
	}
	return handler
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
