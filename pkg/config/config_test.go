package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestInitConfig_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}

func TestLoadConfig(t *testing.T) {
	testCases := []struct {
		content     string
		check       func(t *testing.T, cfg *Config)
		description string
	}{
		{
			`[server]
max_limit = 32
[search]
raw_limit = 5
[http]
addr = "127.0.0.1:9000"
enable_metrics = false`,
			func(t *testing.T, cfg *Config) {
				assert.Equal(t, 32, cfg.Server.MaxLimit)
				assert.Equal(t, 5, cfg.Search.RawLimit)
				assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
				assert.False(t, cfg.HTTP.EnableMetrics)
				assert.Equal(t, 100, cfg.Search.AdvancePenalty, "unset keys keep defaults")
			},
			"Valid file",
		},
		{
			`[server]
max_limit = "lots"
default_limit = 5
rate_limit = 3
[search]
advance_penalty = 50`,
			func(t *testing.T, cfg *Config) {
				assert.Equal(t, 64, cfg.Server.MaxLimit)
				assert.Equal(t, 5, cfg.Server.DefaultLimit)
				assert.Equal(t, 3.0, cfg.Server.RateLimit)
				assert.Equal(t, 50, cfg.Search.AdvancePenalty)
			},
			"Type mismatch recovers the valid keys",
		},
		{
			"[server\nmax_limit = ",
			func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
			"Unparseable file falls back to defaults",
		},
		{
			`[server]
max_limit = 0
default_limit = 500
[search]
advance_penalty = -1
raw_limit = 0`,
			func(t *testing.T, cfg *Config) {
				assert.Equal(t, 64, cfg.Server.MaxLimit)
				assert.Equal(t, 20, cfg.Server.DefaultLimit)
				assert.Equal(t, 100, cfg.Search.AdvancePenalty)
				assert.Equal(t, 20, cfg.Search.RawLimit)
			},
			"Out of range values reset",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			writeFile(t, path, tc.content)
			cfg, err := LoadConfig(path)
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	maxLimit, rawLimit := 10, 4
	require.NoError(t, cfg.Update(path, &maxLimit, nil, &rawLimit))

	assert.Equal(t, 10, cfg.Server.MaxLimit)
	assert.Equal(t, 10, cfg.Server.DefaultLimit, "default limit clamped to the new max")
	assert.Equal(t, 4, cfg.Search.RawLimit)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))
	live := NewLive(DefaultConfig(), path)
	before := live.Get()

	n := 12
	require.NoError(t, live.Update(&n, nil, nil))
	assert.Equal(t, 12, live.Get().Server.MaxLimit)
	assert.Equal(t, 64, before.Server.MaxLimit, "earlier snapshots are not modified")

	writeFile(t, path, "[server]\nmax_limit = 3\n")
	require.NoError(t, live.Reload())
	assert.Equal(t, 3, live.Get().Server.MaxLimit)

	assert.NoError(t, NewLive(DefaultConfig(), "").Reload())
}

func TestRestartRequired(t *testing.T) {
	prev := DefaultConfig()
	next := prev.Clone()
	next.Server.MaxLimit = 3
	next.Search.RawLimit = 4
	assert.Empty(t, RestartRequired(prev, next), "limits apply on the next request")

	next.Search.AdvancePenalty = 10
	next.HTTP.Addr = ":9090"
	assert.Equal(t, []string{"search.advance_penalty", "http.addr"}, RestartRequired(prev, next))
	assert.Nil(t, RestartRequired(nil, next))
}

func TestLive_ReloadKeepsNewPenalty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))
	live := NewLive(DefaultConfig(), path)

	writeFile(t, path, "[search]\nadvance_penalty = 5\n")
	require.NoError(t, live.Reload())
	assert.Equal(t, 5, live.Get().Search.AdvancePenalty, "the file value is stored even though it applies on restart")
}

func TestLiveWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))
	live := NewLive(DefaultConfig(), path)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- live.Watch(ctx) }()

	// Rewrite on every poll until the watcher has been registered and the
	// debounce has fired.
	assert.Eventually(t, func() bool {
		writeFile(t, path, "[server]\nmax_limit = 7\n")
		return live.Get().Server.MaxLimit == 7
	}, 5*time.Second, 250*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
