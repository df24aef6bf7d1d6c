// @title gojoyas API
// @version 1.0
// @description Razão de armazéns, descontos e despesas do back-office da joalheria.
// @BasePath /v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Infraestrutura e utilitários
	"gojoyas/config"
	"gojoyas/internal/pkg/cache"
	"gojoyas/internal/pkg/database"
	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"gojoyas/internal/api/cart"
	"gojoyas/internal/api/discount"
	"gojoyas/internal/api/expense"
	"gojoyas/internal/api/product"
	"gojoyas/internal/api/router"
	"gojoyas/internal/api/schema"
	"gojoyas/internal/api/user"
	"gojoyas/internal/api/warehouse"
	"gojoyas/internal/repository/discountrepo"
	"gojoyas/internal/repository/expenserepo"
	"gojoyas/internal/repository/productrepo"
	"gojoyas/internal/repository/userrepo"
	"gojoyas/internal/repository/warehouserepo"
	"gojoyas/internal/service/discountservice"
	"gojoyas/internal/service/expenseservice"
	"gojoyas/internal/service/productservice"
	"gojoyas/internal/service/userservice"
	"gojoyas/internal/service/warehouseservice"
)

func main() {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// Sem .env seguimos apenas com o ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Inicializando serviço GoJoyas.", map[string]interface{}{"env": cfg.Environment})

	// 1. Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis). Sem Redis os repositórios leem direto do banco e o rate limit libera o tráfego.
	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		log.Warn("Redis indisponível na inicialização. Seguindo sem cache.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
	} else {
		log.Info("Conexão Redis estabelecida.", nil)
	}
	defer cacheClient.Close()

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// 2. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	warehouseRepo := warehouserepo.NewWarehouseRepository(db, cfg.DBTimeout, log)
	expenseRepo := expenserepo.NewExpenseRepository(db, cfg.DBTimeout, log)
	discountRepo := discountrepo.NewDiscountRepository(db, cacheClient, cfg.DBTimeout, cfg.DiscountCacheTTL, log)
	log.Debug("Repositórios inicializados.", nil)

	productSvc := productservice.NewService(productRepo, log)
	userSvc := userservice.NewService(userRepo, tokenSvc, log)
	warehouseSvc := warehouseservice.NewService(warehouseRepo, log)
	expenseSvc := expenseservice.NewService(expenseRepo, log)
	discountSvc := discountservice.NewService(discountRepo, productRepo, userRepo, log)
	log.Debug("Serviços inicializados.", nil)

	handlers := router.Handlers{
		Product:   product.NewHandler(productSvc, log),
		User:      user.NewHandler(userSvc, log),
		Warehouse: warehouse.NewHandler(warehouseSvc, log),
		Expense:   expense.NewHandler(expenseSvc, log),
		Discount:  discount.NewHandler(discountSvc, log),
		Cart:      cart.NewHandler(discountSvc, log),
		Schema:    schema.NewHandler(log),
	}
	log.Debug("Handlers inicializados.", nil)

	// 3. Roteador e Servidor
	r := router.NewRouter(handlers, router.Options{
		TokenSvc:   tokenSvc,
		Cache:      cacheClient,
		RateLimit:  cfg.RateLimitMaxRequests,
		RateWindow: cfg.RateLimitPeriod,
		Logger:     log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor GoJoyas ouvindo na porta.", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
