package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmtz-dev/bancos-reader/internal/config"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	names := make([]string, 0, 2)
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "convert")
	assert.Contains(t, names, "serve")
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestLoadConfig(t *testing.T) {
	t.Run("no flag returns defaults", func(t *testing.T) {
		cfg, err := loadConfig(NewRootCommand())
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("flag selects a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		want := config.Default()
		want.Server.Port = 7070
		require.NoError(t, config.Save(path, want))

		root := NewRootCommand()
		require.NoError(t, root.ParseFlags([]string{"--config", path}))

		cfg, err := loadConfig(root)
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Server.Port)
	})

	t.Run("missing file errors", func(t *testing.T) {
		root := NewRootCommand()
		require.NoError(t, root.ParseFlags([]string{"--config", "/nonexistent/cfg.yaml"}))

		_, err := loadConfig(root)
		assert.Error(t, err)
	})
}

func TestCSVPathFor(t *testing.T) {
	tests := []struct {
		input     string
		outputDir string
		expected  string
	}{
		{"/data/BBVA 5516 MXN.pdf", "", "/data/BBVA 5516 MXN.csv"},
		{"/data/BBVA 5516 MXN.pdf", "/out", "/out/BBVA 5516 MXN.csv"},
		{"statement.pdf", "", "statement.csv"},
		{"statement.pdf", "exports", "exports/statement.csv"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, csvPathFor(tt.input, tt.outputDir), tt.input)
	}
}
