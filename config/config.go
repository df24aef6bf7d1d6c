package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config armazena todas as configurações do serviço (DB, Cache, Segurança, Robustez)
// e do cliente administrativo (backend remoto, atualização de descontos, liveness).
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Banco de Dados (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis)
	RedisAddr        string
	CacheTimeout     time.Duration
	DiscountCacheTTL time.Duration // TTL da lista de descontos no Redis

	// Segurança (JWT)
	JWTSecretKey string
	TokenExpiry  time.Duration

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// ClientConfig contém as configurações do cliente administrativo (cmd/admin).
type ClientConfig struct {
	LogLevel         string
	BackendURL       string
	BackendToken     string
	RequestTimeout   time.Duration
	DiscountStaleTTL time.Duration // Idade máxima dos descontos antes do refetch
	LivenessURL      string
	LivenessInterval time.Duration
}

// LoadConfig carrega as configurações do servidor a partir das variáveis de ambiente.
func LoadConfig() *Config {
	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. Banco de Dados (PostgreSQL)
		// mustGetEnv garante que a aplicação não inicie sem credenciais de DB
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second, // 5s padrão

		// 3. Cache (Redis)
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTimeout:     getDurationEnv("CACHE_TIMEOUT_SEC", 10) * time.Second,       // 10s padrão
		DiscountCacheTTL: getDurationEnv("DISCOUNT_CACHE_TTL_SEC", 300) * time.Second, // 5 min padrão

		// 4. Segurança (JWT)
		JWTSecretKey: mustGetEnv("JWT_SECRET_KEY"),
		TokenExpiry:  getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute, // 60 min padrão

		// 5. Rate Limiting
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute, // 1 min padrão
	}

	return cfg
}

// LoadClientConfig carrega as configurações do cliente administrativo.
func LoadClientConfig() *ClientConfig {
	return &ClientConfig{
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		BackendURL:       getEnv("BACKEND_URL", "http://localhost:8080"),
		BackendToken:     getEnv("BACKEND_TOKEN", ""),
		RequestTimeout:   getDurationEnv("BACKEND_TIMEOUT_SEC", 10) * time.Second,
		DiscountStaleTTL: getDurationEnv("DISCOUNT_STALE_MIN", 5) * time.Minute,
		LivenessURL:      getEnv("LIVENESS_URL", ""),
		LivenessInterval: getDurationEnv("LIVENESS_INTERVAL_MIN", 5) * time.Minute,
	}
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration (sem unidade).
func getDurationEnv(key string, defaultValue int) time.Duration {
	return time.Duration(getIntEnv(key, defaultValue))
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
