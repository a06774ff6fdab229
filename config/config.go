package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const appDir = "fin-annotator"

// Annotation modes.
const (
	ModeDataset = "dataset"
	ModePredict = "predict"
)

// Config holds runtime configuration for the annotator.
// Fields may be loaded from a JSON file, overridden from the environment
// (optionally via a .env file) and finally by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Dataset location
	DatasetRoot string `json:"dataset_root"`
	Split       string `json:"split"`
	Mode        string `json:"mode"`

	// Prediction
	DetectorURL string  `json:"detector_url"`
	Confidence  float64 `json:"confidence"`

	// Canvas
	Zoom          int    `json:"zoom"`
	ResizeEnabled bool   `json:"resize_enabled"`
	DefaultLabel  string `json:"default_label"`

	AutosaveOnNavigate bool   `json:"autosave_on_navigate"`
	ConfirmDeletes     bool   `json:"confirm_deletes"`
	ImageCacheSize     int    `json:"image_cache_size"`
	ProgressDB         string `json:"progress_db"`

	WindowWidth  int `json:"window_width"`
	WindowHeight int `json:"window_height"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:              false,
		DatasetRoot:        "",
		Split:              "train",
		Mode:               ModeDataset,
		DetectorURL:        "",
		Confidence:         0.4,
		Zoom:               1,
		ResizeEnabled:      false,
		DefaultLabel:       "good_fin",
		AutosaveOnNavigate: true,
		ConfirmDeletes:     true,
		ImageCacheSize:     8,
		ProgressDB:         "",
		WindowWidth:        1280,
		WindowHeight:       900,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Split) {
	case "train", "valid", "test":
		c.Split = strings.ToLower(c.Split)
	default:
		c.Split = "train"
	}
	if c.Mode != ModeDataset && c.Mode != ModePredict {
		c.Mode = ModeDataset
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		c.Confidence = 0.4
	}
	if c.Zoom != 1 && c.Zoom != 2 {
		c.Zoom = 1
	}
	if c.DefaultLabel != "good_fin" && c.DefaultLabel != "bad_fin" {
		c.DefaultLabel = "good_fin"
	}
	if c.ImageCacheSize <= 0 {
		c.ImageCacheSize = 8
	}
	if c.WindowWidth < 320 {
		c.WindowWidth = 1280
	}
	if c.WindowHeight < 240 {
		c.WindowHeight = 900
	}
	return nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(appDir, "config.json"))
}

// DefaultProgressDB returns the per-user progress database location.
func DefaultProgressDB() (string, error) {
	return xdg.DataFile(filepath.Join(appDir, "progress.db"))
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// LoadEnv reads KEY=VALUE pairs from envFile into the process environment
// without overriding variables that are already set. A missing file is ignored.
func LoadEnv(envFile string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from FIN_* environment variables.
func (c *Config) ApplyEnv() {
	c.Debug = getEnvAsBool("FIN_DEBUG", c.Debug)
	c.DatasetRoot = getEnv("FIN_DATASET", c.DatasetRoot)
	c.Split = getEnv("FIN_SPLIT", c.Split)
	c.Mode = getEnv("FIN_MODE", c.Mode)
	c.DetectorURL = getEnv("FIN_DETECTOR_URL", c.DetectorURL)
	c.Confidence = getEnvAsFloat("FIN_CONFIDENCE", c.Confidence)
	c.Zoom = getEnvAsInt("FIN_ZOOM", c.Zoom)
	c.DefaultLabel = getEnv("FIN_DEFAULT_LABEL", c.DefaultLabel)
	c.AutosaveOnNavigate = getEnvAsBool("FIN_AUTOSAVE", c.AutosaveOnNavigate)
	c.ConfirmDeletes = getEnvAsBool("FIN_CONFIRM_DELETES", c.ConfirmDeletes)
	c.ProgressDB = getEnv("FIN_PROGRESS_DB", c.ProgressDB)
	_ = c.Validate()
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
