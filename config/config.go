package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Limits  LimitsConfig  `yaml:"limits"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type string `yaml:"type"`

	// Local storage options
	DataDir string `yaml:"data_dir"`

	// GCS storage options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

type CacheConfig struct {
	// Maximum number of in-memory collection documents held at once.
	MaxMemoryDocuments int64 `yaml:"max_memory_documents"`

	// Lifetime of a memory-backed document in minutes. Evicted or expired
	// documents require a re-upload.
	MemoryTTLMinutes int `yaml:"memory_ttl_minutes"`
}

type LimitsConfig struct {
	// Maximum accepted collection document size in bytes.
	MaxDocumentBytes int64 `yaml:"max_document_bytes"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// Set defaults if not provided
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "local"
	}

	if config.Storage.DataDir == "" {
		config.Storage.DataDir = "data"
	}

	if config.Cache.MaxMemoryDocuments <= 0 {
		config.Cache.MaxMemoryDocuments = 500
	}

	if config.Cache.MemoryTTLMinutes <= 0 {
		config.Cache.MemoryTTLMinutes = 120
	}

	if config.Limits.MaxDocumentBytes <= 0 {
		config.Limits.MaxDocumentBytes = 64 << 20
	}

	return config, nil
}
