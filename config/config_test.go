package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	// Create a test config file
	configPath := filepath.Join(tempDir, "test_config.yaml")
	configContent := `
log_level: -4
server:
  port: "9090"
storage:
  type: gcs
  bucket: my-collections
  object_prefix: prod
cache:
  max_memory_documents: 100
  memory_ttl_minutes: 30
limits:
  max_document_bytes: 1048576
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	// Test loading the config
	cfg, err := Load(configPath)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, -4, cfg.LogLevel)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "gcs", cfg.Storage.Type)
	assert.Equal(t, "my-collections", cfg.Storage.Bucket)
	assert.Equal(t, "prod", cfg.Storage.ObjectPrefix)
	assert.Equal(t, int64(100), cfg.Cache.MaxMemoryDocuments)
	assert.Equal(t, 30, cfg.Cache.MemoryTTLMinutes)
	assert.Equal(t, int64(1048576), cfg.Limits.MaxDocumentBytes)
}

func TestLoadDefaults(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "minimal_config.yaml")
	err := os.WriteFile(configPath, []byte("log_level: 0\n"), 0644)
	assert.NoError(t, err)

	cfg, err := Load(configPath)

	// Assert defaults are applied
	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, int64(500), cfg.Cache.MaxMemoryDocuments)
	assert.Equal(t, 120, cfg.Cache.MemoryTTLMinutes)
	assert.Equal(t, int64(64<<20), cfg.Limits.MaxDocumentBytes)
}

func TestLoadNonExistentFile(t *testing.T) {
	// Test loading a non-existent config file
	cfg, err := Load("non_existent_file.yaml")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()

	// Create an invalid YAML file
	configPath := filepath.Join(tempDir, "invalid_config.yaml")
	configContent := `
log_level: -4
invalid_yaml: [this is not valid yaml
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	// Test loading the invalid config
	cfg, err := Load(configPath)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
