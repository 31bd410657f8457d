package config

import (
	"errors"
	"fmt"
	"strings"
)

type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	Server        ServerConfig        `mapstructure:"server"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	S3            S3Config            `mapstructure:"s3"`
	Export        ExportConfig        `mapstructure:"export"`
}

// DatabaseConfig carries the five BioMatrix connection strings plus the
// connection tuning the store handle needs.
type DatabaseConfig struct {
	Driver                string             `mapstructure:"driver"`
	Host                  string             `mapstructure:"host"`
	Port                  int                `mapstructure:"port"`
	User                  string             `mapstructure:"user"`
	Password              string             `mapstructure:"password"`
	DBName                string             `mapstructure:"dbname"`
	SSLMode               string             `mapstructure:"sslmode"`
	ConnectTimeoutSeconds int                `mapstructure:"connect_timeout_seconds"`
	Pool                  DatabasePoolConfig `mapstructure:"pool"`
}

type DatabasePoolConfig struct {
	MaxOpenConns       int `mapstructure:"max_open_conns"`
	MaxIdleConns       int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int `mapstructure:"conn_max_lifetime_minutes"`
}

type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	TimeoutSeconds int        `mapstructure:"timeout_seconds"`
	Environment    string     `mapstructure:"environment"`
	CORS           CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
	Loki   LokiConfig    `mapstructure:"loki"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`        // e.g. "logs/biomatrix.log"
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotate after N MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type LokiConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"` // e.g. "http://localhost:3100"
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	PresignTTLSec   int    `mapstructure:"presign_ttl_seconds"`
}

// ExportConfig drives the report pull: which task file to read and where the
// exam reports go.
type ExportConfig struct {
	TaskFile  string `mapstructure:"task_file"`
	OutputDir string `mapstructure:"output_dir"`
	Sink      string `mapstructure:"sink"` // dir, s3
}

var supportedDrivers = []string{"postgres", "postgresql", "pgx", "mysql", "sqlite"}

func (c *Config) Validate() error {
	var errs []error

	driver := strings.ToLower(c.Database.Driver)
	known := false
	for _, d := range supportedDrivers {
		if d == driver {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("database.driver %q is not one of %v", c.Database.Driver, supportedDrivers))
	}
	if c.Database.DBName == "" {
		errs = append(errs, errors.New("database.dbname is required"))
	}
	if c.Database.ConnectTimeoutSeconds < 0 {
		errs = append(errs, errors.New("database.connect_timeout_seconds must not be negative"))
	}

	switch c.Export.Sink {
	case "", "dir":
	case "s3":
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("s3.bucket is required when export.sink is s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("export.sink %q must be dir or s3", c.Export.Sink))
	}

	return errors.Join(errs...)
}
