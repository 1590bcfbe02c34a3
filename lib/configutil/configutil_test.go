package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Driver   string `json:"driver"`
	Password string `json:"password"`
	Port     int    `json:"port"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	require.NoError(t, err)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("dir", "config.local.json5"), LocalPath(filepath.Join("dir", "config.json5")))
	require.Equal(t, "config.local", LocalPath("config"))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	_, err := ReadConfig[testConfig](path)
	require.ErrorIs(t, err, os.ErrNotExist)

	writeFile(t, path, `{
		// comments are allowed
		driver: "sqlite",
		port: 3306,
	}`)
	cfg, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Driver: "sqlite", Port: 3306}, cfg)

	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ driver: "mysql" }`)
	cfg, err = ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "mysql", cfg.Driver)
	require.Equal(t, 3306, cfg.Port)
}

func TestReadConfigExpandsEnv(t *testing.T) {
	t.Setenv("TRENDING_TEST_PASSWORD", "hunter2")

	path := filepath.Join(t.TempDir(), "config.json5")
	writeFile(t, path, `{ password: "${TRENDING_TEST_PASSWORD}" }`)

	cfg, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "hunter2", cfg.Password)
}

func TestReadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	writeFile(t, path, `{ driver: `)

	_, err := ReadConfig[testConfig](path)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}
