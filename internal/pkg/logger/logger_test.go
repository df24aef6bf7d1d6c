package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gojoyas/internal/pkg/logger"
)

func TestZapLogger_WritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.New(zap.New(core))

	log.Info("Armazém criado com sucesso.", map[string]interface{}{"id": "w-1", "capacity": 100})
	log.Error("Falha ao persistir armazém.", errors.New("db down"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Armazém criado com sucesso.", entries[0].Message)
	assert.Equal(t, "w-1", entries[0].ContextMap()["id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "db down", entries[1].ContextMap()["error"])
}

func TestZapLogger_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := logger.New(zap.New(core))

	log.Debug("não deve aparecer", nil)
	log.Warn("estoque baixo", map[string]interface{}{"sku": "AN-1"})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestNewLogger_UnknownLevelDoesNotPanic(t *testing.T) {
	log := logger.NewLogger("verbose")
	assert.NotPanics(t, func() { log.Debug("ignorado", nil) })
}
