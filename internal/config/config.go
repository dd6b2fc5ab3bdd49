package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "SALESBOARD"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// StorageConfig selects the object store and the product catalog inside it.
type StorageConfig struct {
	// Backend is one of s3, gcs, sheets or file.
	Backend string `yaml:"backend" envconfig:"BACKEND" validate:"oneof=s3 gcs sheets file"`
	// Bucket is the S3/GCS bucket, the spreadsheet ID for sheets, or a
	// sub-directory of BaseDir for file.
	Bucket string `yaml:"bucket" envconfig:"BUCKET" validate:"required"`
	// Products maps a product name to its object key.
	Products map[string]string `yaml:"products" envconfig:"PRODUCTS" validate:"min=1,dive,keys,required,endkeys,required"`

	Region          string        `yaml:"region" envconfig:"REGION"`
	Endpoint        string        `yaml:"endpoint" envconfig:"ENDPOINT" validate:"omitempty,url"`
	UsePathStyle    bool          `yaml:"use_path_style" envconfig:"USE_PATH_STYLE"`
	CredentialsFile string        `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	BaseDir         string        `yaml:"base_dir" envconfig:"BASE_DIR"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`

	// Encoding of CSV objects: utf-8 or euc-kr.
	Encoding       string `yaml:"encoding" envconfig:"ENCODING" validate:"oneof=utf-8 utf8 euc-kr cp949"`
	QuantityColumn string `yaml:"quantity_column" envconfig:"QUANTITY_COLUMN" validate:"required"`
}

// ProductNames returns the catalog keys in a stable order.
func (s StorageConfig) ProductNames() []string {
	names := make([]string, 0, len(s.Products))
	for name := range s.Products {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReportConfig contains presentation defaults.
type ReportConfig struct {
	WindowDays  int    `yaml:"window_days" envconfig:"WINDOW_DAYS" validate:"min=0,max=7"`
	Language    string `yaml:"language" envconfig:"LANGUAGE" validate:"oneof=ko en"`
	ChartWidth  int    `yaml:"chart_width" envconfig:"CHART_WIDTH" validate:"min=200"`
	ChartHeight int    `yaml:"chart_height" envconfig:"CHART_HEIGHT" validate:"min=150"`
	// FontFile is an optional TrueType font for chart text (e.g. NanumGothic.ttf).
	FontFile string `yaml:"font_file" envconfig:"FONT_FILE"`
}

// TelemetryConfig contains OpenTelemetry exporter settings.
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file and SALESBOARD_* environment variables, in increasing
// order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit YAML file path. An empty path skips the
// file layer.
func LoadFrom(configFile string) (*Config, error) {
	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable keep the default or file value.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	// yaml.v2 merges into a non-nil map; a file catalog replaces the default one.
	products := cfg.Storage.Products
	cfg.Storage.Products = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if cfg.Storage.Products == nil {
		cfg.Storage.Products = products
	}
	return nil
}

// validate validates the configuration
func (c *Config) validate() error {
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	c.Storage.Encoding = strings.ToLower(c.Storage.Encoding)
	c.Logging.Level = strings.ToLower(c.Logging.Level)

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
		}
		return err
	}

	if c.Storage.Backend == "file" && c.Storage.BaseDir == "" {
		return fmt.Errorf("storage base_dir is required for the file backend")
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/salesboard.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  45 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/salesboard.log",
		},
		Storage: StorageConfig{
			Backend: "s3",
			Bucket:  DefaultBucket,
			Products: map[string]string{
				"550": "erp/550.csv",
				"콩국물": "erp/soup.csv",
			},
			Region:         "ap-northeast-2",
			BaseDir:        "data",
			Timeout:        30 * time.Second,
			Encoding:       "utf-8",
			QuantityColumn: DefaultQuantityColumn,
		},
		Report: ReportConfig{
			WindowDays:  5,
			Language:    "ko",
			ChartWidth:  1000,
			ChartHeight: 600,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
