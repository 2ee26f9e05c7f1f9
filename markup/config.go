package markup

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"markpin/extract"
)

// Config holds all markpin configuration.
type Config struct {
	DBPath        string          `yaml:"db_path"`
	ListenAddr    string          `yaml:"listen_addr"`
	IngestTimeout time.Duration   `yaml:"ingest_timeout"`
	Extract       extract.Profile `yaml:"extract"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "markpin.db"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8086"
	}
	if c.IngestTimeout <= 0 {
		// Bounds the ingestion transaction; payloads are tens of threads and
		// hundreds of comments, so this is generous.
		c.IngestTimeout = 30 * time.Second
	}
	c.Extract.Defaults()
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
