package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("CFG_TEST_STR", "value")
	t.Setenv("CFG_TEST_INT", "not-a-number")
	t.Setenv("CFG_TEST_DUR", "90m")
	t.Setenv("CFG_TEST_BAD_DUR", "-1h")

	assert.Equal(t, "value", EnvDefault("CFG_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefault("CFG_TEST_MISSING", "def"))
	assert.Equal(t, 7, EnvIntDefault("CFG_TEST_INT", 7))
	assert.Equal(t, 90*time.Minute, EnvDurationDefault("CFG_TEST_DUR", time.Hour))
	assert.Equal(t, time.Hour, EnvDurationDefault("CFG_TEST_BAD_DUR", time.Hour))

	t.Setenv("CFG_TEST_BOOL", "false")
	assert.False(t, EnvBoolDefault("CFG_TEST_BOOL", true))
	assert.True(t, EnvBoolDefault("CFG_TEST_MISSING", true))
}

func TestLoad(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")

	cfg := Load()

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
}
