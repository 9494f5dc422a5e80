package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/partsdesk/internal/config"
	"github.com/PabloGalante/partsdesk/internal/domain"
)

func TestBuildAppBackends(t *testing.T) {
	tests := []struct {
		name  string
		setup func(cfg *config.Config)
	}{
		{"memory", func(*config.Config) {}},
		{"sqlite", func(cfg *config.Config) {
			cfg.StorageBackend = "sqlite"
			cfg.SQLitePath = filepath.Join(t.TempDir(), "partsdesk.db")
		}},
		{"live catalog", func(cfg *config.Config) {
			cfg.CatalogLive = true
			cfg.CatalogBaseURL = "http://127.0.0.1:1"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.setup(cfg)
			require.NoError(t, cfg.Validate())

			a, err := buildApp(context.Background(), cfg)
			require.NoError(t, err)
			defer a.Close()

			assert.NotNil(t, a.Conversations)
			assert.NotNil(t, a.Catalog)
		})
	}
}

func TestBuildAppRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.LLMProvider = "parrot"

	_, err := buildApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRunChat(t *testing.T) {
	a, err := buildApp(context.Background(), config.Default())
	require.NoError(t, err)
	defer a.Close()

	in := strings.NewReader("PS12584610\n\nexit\nthis is never read\n")
	var out strings.Builder

	err = runChat(context.Background(), a.Conversations, domain.ConversationID("cli-test"), in, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "[PS12584610]")
	assert.NotContains(t, out.String(), "never read")

	_, turns, err := a.Conversations.GetTimeline(context.Background(), "cli-test", 0)
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}
