package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/withjet/backend/internal/config"
)

func TestRunServerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestLoadBots(t *testing.T) {
	store, err := loadBots(config.BotsConfig{})
	require.NoError(t, err)
	_, ok := store.FindByID("demo")
	assert.True(t, ok)

	path := filepath.Join(t.TempDir(), "bots.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bots:\n  - id: shop\n    name: Shop\n    status: active\n"), 0o600))
	store, err = loadBots(config.BotsConfig{File: path})
	require.NoError(t, err)
	_, ok = store.FindByID("shop")
	assert.True(t, ok)

	_, err = loadBots(config.BotsConfig{File: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}
