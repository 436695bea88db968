package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/gateway/core/config"
)

type testConfig struct {
	Addr  string `env:"CONFIG_TEST_ADDR" envDefault:":8080"`
	Debug bool   `env:"CONFIG_TEST_DEBUG" envDefault:"false"`
}

func TestLoad(t *testing.T) {
	t.Setenv("CONFIG_TEST_ADDR", ":9090")

	var cfg testConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, ":9090", cfg.Addr)
	assert.False(t, cfg.Debug)
}

func TestLoadCachesPerType(t *testing.T) {
	t.Setenv("CONFIG_TEST_ADDR", ":9090")

	var first testConfig
	require.NoError(t, config.Load(&first))

	// Changing the environment after the first load has no effect: the
	// cached value is returned.
	t.Setenv("CONFIG_TEST_ADDR", ":7070")

	var second testConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first, second)
}

func TestLoadRejectsNonStructPointer(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, config.Load(nil), config.ErrNotStructPointer)
	assert.ErrorIs(t, config.Load(testConfig{}), config.ErrNotStructPointer)

	var s string
	assert.ErrorIs(t, config.Load(&s), config.ErrNotStructPointer)
}
