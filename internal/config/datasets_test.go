package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDatasetFile_FileNotFound(t *testing.T) {
	datasets, err := LoadDatasetFile(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, datasets)
}

func TestLoadDatasetFile_SkipsInvalidLines(t *testing.T) {
	dir := t.TempDir()
	content := `# local datasets

Pharmacy = /srv/pharmacy.csv
=missing-name.csv
no-separator
empty=
bakery=bakery_2024.csv
`
	writeFile(t, filepath.Join(dir, "datasets"), content)

	datasets, err := LoadDatasetFile(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"pharmacy": "/srv/pharmacy.csv",
		"bakery":   "bakery_2024.csv",
	}, datasets)
}

func TestLoad_MergesDatasetFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, filepath.Join(xdg, "basketmine", "datasets"), "grocery=/mnt/grocery.csv\nbakery=bakery.csv\n")

	cfg, err := Load("")
	require.NoError(t, err)

	p, ok := cfg.DatasetPath("grocery")
	require.True(t, ok)
	assert.Equal(t, "/mnt/grocery.csv", p, "registry file overrides the built-in path")
	assert.Equal(t, []string{"grocery", "shopping", "cafe", "restaurant", "bookstore", "bakery"}, cfg.DatasetNames())
}

func TestResolveDataset(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cafe_transactions.csv")
	require.NoError(t, os.WriteFile(file, []byte("Item1\ncoffee\n"), 0o644))

	cfg := Default()
	cfg.DataDir = dir

	name, path, err := cfg.ResolveDataset(file)
	require.NoError(t, err)
	assert.Equal(t, "cafe", name)
	assert.Equal(t, file, path)

	name, path, err = cfg.ResolveDataset("Bookstore")
	require.NoError(t, err)
	assert.Equal(t, "bookstore", name)
	assert.Equal(t, filepath.Join(dir, "bookstoretransactions.csv"), path)

	_, _, err = cfg.ResolveDataset("pharmacy")
	assert.ErrorIs(t, err, ErrUnknownDataset)
	assert.Contains(t, err.Error(), "grocery")

	_, _, err = cfg.ResolveDataset("")
	assert.ErrorIs(t, err, ErrUnknownDataset)
}
