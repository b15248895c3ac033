package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  type: sqlite
  database: /tmp/cgviewer.db
storage:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "1.0.0", cfg.Ingest.Version)
	assert.Equal(t, "./data", cfg.Ingest.DataDir)
	assert.Equal(t, 50, cfg.Ingest.TopN)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
ingest:
  version: "2.0.0"
  data_dir: "/tmp/data"
  top_n: 100
database:
  type: postgres
  host: db.example.com
  port: 5432
  database: cgviewer
  user: admin
  password: secret
storage:
  type: local
  local_path: /tmp/storage
server:
  port: 9090
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", cfg.Ingest.Version)
	assert.Equal(t, "/tmp/data", cfg.Ingest.DataDir)
	assert.Equal(t, 100, cfg.Ingest.TopN)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "cgviewer", cfg.Database.Database)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_InvalidDatabaseType(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  type: oracle
storage:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestLoad_COSWithCredentials(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  type: sqlite
  database: /tmp/cgviewer.db
storage:
  type: cos
  bucket: test-bucket
  region: ap-guangzhou
  secret_id: test-id
  secret_key: test-key
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, "cos", cfg.Storage.Type)
	assert.Equal(t, "test-bucket", cfg.Storage.Bucket)
}

func TestValidate_UnsupportedDatabaseType(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Type: "oracle"},
		Storage:  StorageConfig{Type: "local"},
		Server:   ServerConfig{Port: 8080},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestValidate_InvalidServerPort(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Type: "sqlite", Database: "./cgviewer.db"},
		Storage:  StorageConfig{Type: "local"},
		Server:   ServerConfig{Port: 0},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server port must be positive")
}

func TestGetSessionDir(t *testing.T) {
	cfg := &Config{
		Ingest: IngestConfig{DataDir: "/tmp/data"},
	}

	sessionDir := cfg.GetSessionDir("session-123")
	assert.Equal(t, "/tmp/data/session-123", sessionDir)
}

func TestEnsureDataDir(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "ingest", "data")

	cfg := &Config{
		Ingest: IngestConfig{DataDir: dataDir},
	}

	err := cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(dataDir)
	assert.NoError(t, err)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
database:
  type: mysql
  host: mysql.local
storage:
  type: local
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, "mysql.local", cfg.Database.Host)
}
