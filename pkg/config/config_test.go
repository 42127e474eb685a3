package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FeiJiang1234/presencekit/pkg/config"
)

type testConfig struct {
	Name    string        `env:"TEST_APP_NAME" envDefault:"presencekit"`
	Port    int           `env:"TEST_APP_PORT" envDefault:"8080"`
	Timeout time.Duration `env:"TEST_APP_TIMEOUT" envDefault:"5s"`
	Tags    []string      `env:"TEST_APP_TAGS" envSeparator:","`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "presencekit", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.Tags)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TEST_APP_NAME", "broker")
	t.Setenv("TEST_APP_PORT", "9090")
	t.Setenv("TEST_APP_TIMEOUT", "250ms")
	t.Setenv("TEST_APP_TAGS", "a,b,c")

	var cfg testConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "broker", cfg.Name)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Tags)
}

func TestLoad_NilPointer(t *testing.T) {
	err := config.Load[testConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("TEST_APP_PORT", "not-a-number")

	var cfg testConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParse)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	t.Setenv("TEST_APP_PORT", "nope")

	var cfg testConfig
	assert.Panics(t, func() { config.MustLoad(&cfg) })
}
