package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"` // SQLite file path
	} `yaml:"database"`

	Upload struct {
		MaxSizeMB int64 `yaml:"max_size_mb"`
	} `yaml:"upload"`
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Upload.MaxSizeMB << 20
}

// LoadConfig loads configuration from YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Set defaults
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}

	if config.Server.Port == "" {
		config.Server.Port = "8000"
	}

	if config.Database.Path == "" {
		config.Database.Path = "./data/feedback.db"
	}

	if config.Upload.MaxSizeMB == 0 {
		config.Upload.MaxSizeMB = 16
	}

	return config, nil
}
