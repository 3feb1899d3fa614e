package main

import (
	"bytes"
	"testing"

	"github.com/beka-birhanu/cman/config"
	"github.com/beka-birhanu/cman/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	cfg := config.Config{Port: 1337, MapPath: "map.txt"}

	t.Run("positional only", func(t *testing.T) {
		opts, err := parseArgs([]string{"cman", "127.0.0.1"}, cfg, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, game.RoleCman, opts.role)
		assert.Equal(t, "127.0.0.1", opts.addr)
		assert.Equal(t, 1337, opts.port)
		assert.Equal(t, "map.txt", opts.mapPath)
	})

	t.Run("flags anywhere", func(t *testing.T) {
		opts, err := parseArgs([]string{"--port", "4000", "watcher", "localhost", "--map", "other.txt"}, cfg, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, game.RoleSpectator, opts.role)
		assert.Equal(t, "localhost", opts.addr)
		assert.Equal(t, 4000, opts.port)
		assert.Equal(t, "other.txt", opts.mapPath)
	})

	invalid := map[string][]string{
		"missing address": {"spirit"},
		"too many":        {"spirit", "localhost", "extra"},
		"unknown role":    {"ghost", "localhost"},
		"bad port":        {"--port", "70000", "cman", "localhost"},
		"unknown flag":    {"--color", "cman", "localhost"},
	}
	for name, args := range invalid {
		t.Run(name, func(t *testing.T) {
			var stderr bytes.Buffer
			_, err := parseArgs(args, cfg, &stderr)
			assert.Error(t, err)
		})
	}
}
