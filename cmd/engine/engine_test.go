package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"jobboard-engine/internal/secrets"
)

func withDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := dataDirFlag
	dataDirFlag = dir
	t.Cleanup(func() { dataDirFlag = prev })
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLoadConfig_BootstrapsDefault(t *testing.T) {
	dir := withDataDir(t)
	t.Setenv("JOBBOARD_STORE_DRIVER", "")

	cfg, path, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), path)
	assert.FileExists(t, path)
	assert.Equal(t, dir, cfg.App.DataDir)
	assert.Equal(t, filepath.Join(dir, "jobboard.db"), cfg.StoreOptions().Path)
}

func TestLoadConfig_InvalidFails(t *testing.T) {
	withDataDir(t)
	t.Setenv("JOBBOARD_STORE_DRIVER", "mysql")

	_, _, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store")
}

func TestMigrateCommand(t *testing.T) {
	dir := withDataDir(t)
	t.Setenv("JOBBOARD_STORE_DRIVER", "")

	out, err := execute(t, "", "migrate", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	_, err = os.Stat(filepath.Join(dir, "jobboard.db"))
	assert.NoError(t, err)
}

func TestSecretsCommands(t *testing.T) {
	keyring.MockInit()
	t.Setenv("JOOBLE_KEY", "")

	out, err := execute(t, "abc123\n", "secrets", "set", secrets.JoobleKey)
	require.NoError(t, err)
	assert.Contains(t, out, "stored")
	assert.Equal(t, "abc123", secrets.Lookup(secrets.JoobleKey, ""))

	out, err = execute(t, "", "secrets", "list")
	require.NoError(t, err)
	assert.Regexp(t, secrets.JoobleKey+`\s+JOOBLE_KEY\s+set`, out)
	assert.NotContains(t, out, "abc123")

	_, err = execute(t, "", "secrets", "delete", secrets.JoobleKey)
	require.NoError(t, err)
	assert.Empty(t, secrets.Lookup(secrets.JoobleKey, ""))

	_, err = execute(t, "x\n", "secrets", "set", "bogus")
	assert.Error(t, err)
}
