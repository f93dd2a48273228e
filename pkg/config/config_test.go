package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"src.devlab.sh/pkg/env"
	"src.devlab.sh/pkg/must"
	"src.devlab.sh/pkg/testutil"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(testutil.TempDir(t), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "dev-lab", cfg.Topic)
	assert.Equal(t, filepath.Join(cfg.DataDir, "boxcalc.db"), cfg.DBPath())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "config.yaml")
	must.WriteFile(path, `
session: lab
remote:
  api_url: http://calc.example:8080
  relay_addr: calc.example:7470
server:
  db_path: /var/lib/boxcalc.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lab", cfg.Session)
	assert.Equal(t, "http://calc.example:8080", cfg.Remote.APIURL)
	assert.Equal(t, "calc.example:7470", cfg.Remote.RelayAddr)
	assert.Equal(t, "/var/lib/boxcalc.db", cfg.DBPath())
	// Unset keys keep defaults.
	assert.Equal(t, "dev-lab", cfg.Topic)
	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddr)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "config.yaml")
	must.WriteFile(path, "session: [\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(env.BOXCALC_SESSION, "from-env")
	t.Setenv(env.BOXCALC_RELAY_ADDR, "relay:1")
	t.Setenv(env.BOXCALC_TOPIC, "")

	path := filepath.Join(testutil.TempDir(t), "config.yaml")
	must.WriteFile(path, "session: from-file\ntopic: file-topic\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Session)
	assert.Equal(t, "relay:1", cfg.Remote.RelayAddr)
	assert.Equal(t, "file-topic", cfg.Topic)
}

func TestSave(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "sub", "config.yaml")
	cfg := Default()
	cfg.Session = "saved"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
