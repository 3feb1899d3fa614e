package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CMAN_PORT", "")
		cfg := Load()
		// An empty value is still "set" and must fall back to the default for ints.
		assert.Equal(t, defaultPort, cfg.Port)
		assert.Equal(t, defaultTickPeriod, cfg.TickPeriod)
		assert.Equal(t, cfg.TickPeriod, cfg.ClientTickPeriod)
		assert.Equal(t, time.Duration(0), cfg.IdleTimeout)
		assert.Equal(t, defaultMapPath, cfg.MapPath)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("CMAN_PORT", "4000")
		t.Setenv("CMAN_TICK", "16ms")
		t.Setenv("CMAN_CLIENT_TICK", "100ms")
		t.Setenv("CMAN_IDLE_TIMEOUT", "30s")
		t.Setenv("CMAN_MAP", "maps/small.txt")
		cfg := Load()
		assert.Equal(t, 4000, cfg.Port)
		assert.Equal(t, 16*time.Millisecond, cfg.TickPeriod)
		assert.Equal(t, 100*time.Millisecond, cfg.ClientTickPeriod)
		assert.Equal(t, 30*time.Second, cfg.IdleTimeout)
		assert.Equal(t, "maps/small.txt", cfg.MapPath)
	})

	t.Run("invalid values fall back", func(t *testing.T) {
		t.Setenv("CMAN_PORT", "abc")
		t.Setenv("CMAN_TICK", "-1s")
		cfg := Load()
		assert.Equal(t, defaultPort, cfg.Port)
		assert.Equal(t, defaultTickPeriod, cfg.TickPeriod)
	})
}
