package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mara-voss/dualpane/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsTemplate(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := config.Load()
	require.Equal(t, config.Template(), cfg)
}

func TestLoadFillsMissingFieldsFromTemplate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	appDir := filepath.Join(dir, "dualpane")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, config.FileName), []byte(`
show_hidden_files = true
`), 0o644))

	cfg := config.Load()
	require.True(t, cfg.ShowHiddenFiles)
	require.Equal(t, config.SortByName, cfg.DefaultSortField)
	require.Equal(t, 0.5, cfg.SplitRatio)
	require.Equal(t, config.DateFormatShort, cfg.DateFormat)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := config.Template()
	cfg.ShowHiddenFiles = true
	cfg.FavoriteDirs = []string{"/home/user/projects"}
	require.NoError(t, config.Save(cfg))

	got := config.Load()
	require.True(t, got.ShowHiddenFiles)
	require.Equal(t, []string{"/home/user/projects"}, got.FavoriteDirs)
}
