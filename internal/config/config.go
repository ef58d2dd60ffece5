package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	NATS      NATSConfig      `yaml:"nats"`
	MinIO     MinIOConfig     `yaml:"minio"`
	Vision    VisionConfig    `yaml:"vision"`
	Detection DetectionConfig `yaml:"detection"`
	Sampler   SamplerConfig   `yaml:"sampler"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StorageConfig controls object retention. FrameRetention is the number of
// captured frames kept per camera; 0 disables cleanup.
type StorageConfig struct {
	FrameRetention int `yaml:"frame_retention"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// VisionConfig configures the external multimodal model endpoint.
type VisionConfig struct {
	APIKey                string `yaml:"api_key"`
	BaseURL               string `yaml:"base_url"`
	Model                 string `yaml:"model"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	MaxTokens             int    `yaml:"max_tokens"`
}

type DetectionConfig struct {
	CriminalThreshold int `yaml:"criminal_threshold"`
	EvidenceThreshold int `yaml:"evidence_threshold"`
	Concurrency       int `yaml:"concurrency"`
}

type SamplerConfig struct {
	DefaultIntervalSeconds int `yaml:"default_interval_seconds"`
	CaptureTimeoutSeconds  int `yaml:"capture_timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

// Validate reports configuration that must be present before startup.
// A missing vision API key fails here rather than on the first request.
func (c *Config) Validate() error {
	if c.Vision.APIKey == "" {
		return fmt.Errorf("vision.api_key is not configured")
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Vision.Model == "" {
		cfg.Vision.Model = "gpt-4o"
	}
	if cfg.Vision.RequestTimeoutSeconds == 0 {
		cfg.Vision.RequestTimeoutSeconds = 60
	}
	if cfg.Vision.MaxTokens == 0 {
		cfg.Vision.MaxTokens = 500
	}
	if cfg.Detection.CriminalThreshold == 0 {
		cfg.Detection.CriminalThreshold = 70
	}
	if cfg.Detection.EvidenceThreshold == 0 {
		cfg.Detection.EvidenceThreshold = 75
	}
	if cfg.Detection.Concurrency == 0 {
		cfg.Detection.Concurrency = 6
	}
	if cfg.Sampler.DefaultIntervalSeconds == 0 {
		cfg.Sampler.DefaultIntervalSeconds = 5
	}
	if cfg.Sampler.CaptureTimeoutSeconds == 0 {
		cfg.Sampler.CaptureTimeoutSeconds = 10
	}
	if cfg.Storage.FrameRetention == 0 {
		cfg.Storage.FrameRetention = 100
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ARGUS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ARGUS_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("ARGUS_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("ARGUS_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("ARGUS_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("ARGUS_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("ARGUS_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("ARGUS_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("ARGUS_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("ARGUS_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("ARGUS_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("ARGUS_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("ARGUS_VISION_API_KEY"); v != "" {
		cfg.Vision.APIKey = v
	}
	if v := os.Getenv("ARGUS_VISION_BASE_URL"); v != "" {
		cfg.Vision.BaseURL = v
	}
	if v := os.Getenv("ARGUS_VISION_MODEL"); v != "" {
		cfg.Vision.Model = v
	}
	if v := os.Getenv("ARGUS_DETECTION_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Detection.Concurrency = n
		}
	}
}
