package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FACEGUARD_"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Quality    QualityConfig    `yaml:"quality"`
	Engine     EngineConfig     `yaml:"engine"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Privacy    PrivacyConfig    `yaml:"privacy"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	TrustedProxies    []string      `yaml:"trusted_proxies"`
}

// StorageConfig locates the consent ledger, client credentials, deletion
// schedule, encryption key and encrypted blobs.
type StorageConfig struct {
	Root string `yaml:"root"`
}

type QualityConfig struct {
	MinBrightness     float64 `yaml:"min_brightness"`
	MinContrast       float64 `yaml:"min_contrast"`
	MinResolution     int     `yaml:"min_resolution"`
	MinFaceConfidence float64 `yaml:"min_face_confidence"`
	AnalysisMaxSide   int     `yaml:"analysis_max_side"`
}

// EngineConfig points at the face verification engine. A zero Timeout means
// requests are never cut short by the client.
type EngineConfig struct {
	URL      string        `yaml:"url"`
	Model    string        `yaml:"model"`
	Detector string        `yaml:"detector"`
	Timeout  time.Duration `yaml:"timeout"`
}

type MonitoringConfig struct {
	LogDir              string        `yaml:"log_dir"`
	WindowSize          int           `yaml:"window_size"`
	CalibrationInterval time.Duration `yaml:"calibration_interval"`
}

type PrivacyConfig struct {
	RetainImages  bool          `yaml:"retain_images"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	BcryptCost    int           `yaml:"bcrypt_cost"`
}

type LoggingConfig struct {
	Level     string `yaml:"level"`
	AuditFile string `yaml:"audit_file"`
}

// Default returns the configuration used for every key a file or the
// environment leaves unset.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			MaxUploadBytes:    32 << 20,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
		},
		Storage: StorageConfig{
			Root: "./data/secure_storage",
		},
		Quality: QualityConfig{
			MinBrightness:     40,
			MinContrast:       20,
			MinResolution:     224,
			MinFaceConfidence: 0.5,
			AnalysisMaxSide:   1024,
		},
		Engine: EngineConfig{
			URL:      "http://localhost:5005",
			Model:    "Facenet512",
			Detector: "opencv",
		},
		Monitoring: MonitoringConfig{
			LogDir:              "./data/monitoring",
			WindowSize:          100,
			CalibrationInterval: 7 * 24 * time.Hour,
		},
		Privacy: PrivacyConfig{
			SweepInterval: time.Hour,
			BcryptCost:    12,
		},
		Logging: LoggingConfig{
			Level:     "info",
			AuditFile: "./data/monitoring/audit.jsonl",
		},
	}
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the YAML file at path (optional) over the defaults, applies
// FACEGUARD_* environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	str("ADDR", &cfg.Server.Addr)
	if v, ok := lookup(EnvPrefix + "TRUSTED_PROXIES"); ok && v != "" {
		cfg.Server.TrustedProxies = strings.Split(v, ",")
	}
	str("STORAGE_ROOT", &cfg.Storage.Root)
	float("MIN_BRIGHTNESS", &cfg.Quality.MinBrightness)
	float("MIN_CONTRAST", &cfg.Quality.MinContrast)
	integer("MIN_RESOLUTION", &cfg.Quality.MinResolution)
	float("MIN_FACE_CONFIDENCE", &cfg.Quality.MinFaceConfidence)
	str("ENGINE_URL", &cfg.Engine.URL)
	str("ENGINE_MODEL", &cfg.Engine.Model)
	str("ENGINE_DETECTOR", &cfg.Engine.Detector)
	duration("ENGINE_TIMEOUT", &cfg.Engine.Timeout)
	str("MONITORING_LOG_DIR", &cfg.Monitoring.LogDir)
	integer("MONITORING_WINDOW_SIZE", &cfg.Monitoring.WindowSize)
	duration("CALIBRATION_INTERVAL", &cfg.Monitoring.CalibrationInterval)
	boolean("RETAIN_IMAGES", &cfg.Privacy.RetainImages)
	duration("SWEEP_INTERVAL", &cfg.Privacy.SweepInterval)
	integer("BCRYPT_COST", &cfg.Privacy.BcryptCost)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("AUDIT_FILE", &cfg.Logging.AuditFile)

	return errors.Join(errs...)
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Storage.Root == "" {
		errs = append(errs, errors.New("storage.root is required"))
	}
	if c.Quality.MinResolution <= 0 {
		errs = append(errs, errors.New("quality.min_resolution must be positive"))
	}
	if c.Quality.MinFaceConfidence < 0 || c.Quality.MinFaceConfidence > 1 {
		errs = append(errs, errors.New("quality.min_face_confidence must be within [0,1]"))
	}
	if c.Engine.URL == "" {
		errs = append(errs, errors.New("engine.url is required"))
	}
	if c.Engine.Model == "" {
		errs = append(errs, errors.New("engine.model is required"))
	}
	if c.Monitoring.LogDir == "" {
		errs = append(errs, errors.New("monitoring.log_dir is required"))
	}
	if c.Monitoring.WindowSize < 10 {
		errs = append(errs, errors.New("monitoring.window_size must be at least 10"))
	}
	if c.Monitoring.CalibrationInterval <= 0 {
		errs = append(errs, errors.New("monitoring.calibration_interval must be positive"))
	}
	if c.Privacy.SweepInterval <= 0 {
		errs = append(errs, errors.New("privacy.sweep_interval must be positive"))
	}
	return errors.Join(errs...)
}

// Settings is the subset of configuration safe to expose over HTTP.
type Settings struct {
	Quality    QualitySettings    `json:"quality"`
	Engine     EngineSettings     `json:"face_detection"`
	Monitoring MonitoringSettings `json:"monitoring"`
	Privacy    PrivacySettings    `json:"privacy"`
}

type QualitySettings struct {
	MinBrightness     float64 `json:"min_brightness"`
	MinContrast       float64 `json:"min_contrast"`
	MinResolution     int     `json:"min_resolution"`
	MinFaceConfidence float64 `json:"min_face_confidence"`
}

type EngineSettings struct {
	Model    string `json:"model"`
	Detector string `json:"detector"`
}

type MonitoringSettings struct {
	WindowSize      int     `json:"window_size"`
	CalibrationDays float64 `json:"calibration_days"`
}

type PrivacySettings struct {
	RetainImages      bool `json:"retain_images"`
	EncryptionEnabled bool `json:"encryption_enabled"`
}

// Public returns the sanitized settings view. Paths, URLs and credentials are
// never included.
func (c *Config) Public() Settings {
	return Settings{
		Quality: QualitySettings{
			MinBrightness:     c.Quality.MinBrightness,
			MinContrast:       c.Quality.MinContrast,
			MinResolution:     c.Quality.MinResolution,
			MinFaceConfidence: c.Quality.MinFaceConfidence,
		},
		Engine: EngineSettings{
			Model:    c.Engine.Model,
			Detector: c.Engine.Detector,
		},
		Monitoring: MonitoringSettings{
			WindowSize:      c.Monitoring.WindowSize,
			CalibrationDays: c.Monitoring.CalibrationInterval.Hours() / 24,
		},
		Privacy: PrivacySettings{
			RetainImages:      c.Privacy.RetainImages,
			EncryptionEnabled: true,
		},
	}
}
