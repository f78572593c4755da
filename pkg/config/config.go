package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Health   HealthConfig   `yaml:"health" json:"health"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Training TrainingConfig `yaml:"training" json:"training"`
	Logs     LogsConfig     `yaml:"logs" json:"logs"`
	Auth     AuthConfig     `yaml:"auth" json:"auth"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	Address         string        `yaml:"address" json:"address"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout" json:"readTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`
}

// HealthConfig holds the gRPC health endpoint configuration
type HealthConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
	Port    int    `yaml:"port" json:"port"`
}

// StorageConfig describes where projects, datasets and base weights live.
// A task directory is DataDir/<owner>/<task>.
type StorageConfig struct {
	DataDir    string `yaml:"dataDir" json:"dataDir"`
	ModelsDir  string `yaml:"modelsDir" json:"modelsDir"`
	RunsDir    string `yaml:"runsDir" json:"runsDir"`       // relative to the task directory
	DatasetDir string `yaml:"datasetDir" json:"datasetDir"` // relative to the task directory
}

// TrainingConfig holds the external commands and their defaults
type TrainingConfig struct {
	// TrainCommand and ExportCommand are argv templates rendered with text/template.
	TrainCommand  []string          `yaml:"trainCommand" json:"trainCommand"`
	ExportCommand []string          `yaml:"exportCommand" json:"exportCommand"`
	Env           map[string]string `yaml:"env" json:"env"`
	Weights       WeightsConfig     `yaml:"weights" json:"weights"`

	GracePeriod        time.Duration `yaml:"gracePeriod" json:"gracePeriod"`
	OutputDrainTimeout time.Duration `yaml:"outputDrainTimeout" json:"outputDrainTimeout"`

	Defaults TrainingDefaults `yaml:"defaults" json:"defaults"`
}

// WeightsConfig names the weights file looked up inside a finished run,
// relative to the run directory.
type WeightsConfig struct {
	Preferred string `yaml:"preferred" json:"preferred"`
	Fallback  string `yaml:"fallback" json:"fallback"`
}

// TrainingDefaults are applied to request fields left empty
type TrainingDefaults struct {
	Epochs       int     `yaml:"epochs" json:"epochs"`
	ImgSize      int     `yaml:"imgSize" json:"imgSize"`
	Batch        int     `yaml:"batch" json:"batch"`
	Device       string  `yaml:"device" json:"device"`
	TrainRatio   float64 `yaml:"trainRatio" json:"trainRatio"`
	ExportFormat string  `yaml:"exportFormat" json:"exportFormat"`
	ExportOpset  int     `yaml:"exportOpset" json:"exportOpset"`
}

// LogsConfig bounds the in-memory job logs
type LogsConfig struct {
	MaxLines        int           `yaml:"maxLines" json:"maxLines"`
	RetainLines     int           `yaml:"retainLines" json:"retainLines"`
	FinishedTTL     time.Duration `yaml:"finishedTtl" json:"finishedTtl"`
	MaxFinished     int           `yaml:"maxFinished" json:"maxFinished"`
	JanitorInterval time.Duration `yaml:"janitorInterval" json:"janitorInterval"`
	PollInterval    time.Duration `yaml:"pollInterval" json:"pollInterval"`
}

// AuthConfig holds the users allowed to use the API and their task grants
type AuthConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Realm   string        `yaml:"realm" json:"realm"`
	Users   []UserConfig  `yaml:"users" json:"users"`
	Grants  []GrantConfig `yaml:"grants" json:"grants"`
}

// UserConfig is a principal with a bcrypt password hash
type UserConfig struct {
	Username     string `yaml:"username" json:"username"`
	PasswordHash string `yaml:"passwordHash" json:"-"`
	Admin        bool   `yaml:"admin" json:"admin"`
}

// GrantConfig gives a user access to a task owned by someone else
type GrantConfig struct {
	Username string `yaml:"username" json:"username"`
	Owner    string `yaml:"owner" json:"owner"`
	Task     string `yaml:"task" json:"task"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// DefaultConfig provides default configuration values
var DefaultConfig = Config{
	Version: "1.0",
	Server: ServerConfig{
		Address:         "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	},
	Health: HealthConfig{
		Enabled: true,
		Address: "127.0.0.1",
		Port:    50051,
	},
	Storage: StorageConfig{
		DataDir:    "/var/lib/annotrain/projects",
		ModelsDir:  "/var/lib/annotrain/models",
		RunsDir:    "runs",
		DatasetDir: "TrainData",
	},
	Training: TrainingConfig{
		TrainCommand: []string{
			"yolo", "detect", "train",
			"data={{ .Data }}",
			"model={{ .Model }}",
			"epochs={{ .Epochs }}",
			"imgsz={{ .ImgSize }}",
			"batch={{ .Batch }}",
			"device={{ .Device }}",
			"project={{ .Project }}",
			"name={{ .Name }}",
			"exist_ok=False",
		},
		ExportCommand: []string{
			"yolo", "export",
			"model={{ .Weights }}",
			"format={{ .Format | lower }}",
			"opset={{ .Opset }}",
		},
		Env: map[string]string{
			"PYTHONUTF8":       "1",
			"PYTHONUNBUFFERED": "1",
		},
		Weights: WeightsConfig{
			Preferred: "weights/best.pt",
			Fallback:  "weights/last.pt",
		},
		GracePeriod:        2 * time.Second,
		OutputDrainTimeout: 5 * time.Second,
		Defaults: TrainingDefaults{
			Epochs:       50,
			ImgSize:      640,
			Batch:        16,
			Device:       "0",
			TrainRatio:   0.8,
			ExportFormat: "onnx",
			ExportOpset:  17,
		},
	},
	Logs: LogsConfig{
		MaxLines:        5000,
		RetainLines:     4000,
		FinishedTTL:     24 * time.Hour,
		MaxFinished:     200,
		JanitorInterval: 5 * time.Minute,
		PollInterval:    time.Second,
	},
	Auth: AuthConfig{
		Enabled: true,
		Realm:   "annotrain",
	},
	Logging: LoggingConfig{
		Level:  "INFO",
		Format: "text",
		Output: "stdout",
	},
}

// GetServerAddress returns the HTTP listen address in host:port form.
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}

// GetHealthAddress returns the gRPC health listen address in host:port form.
func (c *Config) GetHealthAddress() string {
	return net.JoinHostPort(c.Health.Address, strconv.Itoa(c.Health.Port))
}

// TaskDir returns the directory holding the images and labels of a task.
func (c *Config) TaskDir(owner, task string) string {
	return filepath.Join(c.Storage.DataDir, owner, task)
}

// RunRoot returns the directory training runs of a task are written to.
func (c *Config) RunRoot(owner, task string) string {
	return filepath.Join(c.TaskDir(owner, task), c.Storage.RunsDir)
}

// LoadConfig loads configuration from the first config file found and
// applies ANNOTRAIN_* environment overrides on top.
// Returns the loaded configuration and the path it was read from.
func LoadConfig() (*Config, string, error) {
	config := defaults()

	path, err := loadFromFile(&config)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config file: %w", err)
	}

	if err := applyEnvOverrides(&config); err != nil {
		return nil, "", err
	}

	if e := config.Validate(); e != nil {
		return nil, "", fmt.Errorf("configuration validation failed: %w", e)
	}

	return &config, path, nil
}

// defaults copies DefaultConfig so that file values merged into maps and
// slices never leak back into the package variable.
func defaults() Config {
	config := DefaultConfig
	config.Training.TrainCommand = append([]string(nil), DefaultConfig.Training.TrainCommand...)
	config.Training.ExportCommand = append([]string(nil), DefaultConfig.Training.ExportCommand...)
	config.Training.Env = make(map[string]string, len(DefaultConfig.Training.Env))
	for k, v := range DefaultConfig.Training.Env {
		config.Training.Env[k] = v
	}
	return config
}

func applyEnvOverrides(config *Config) error {
	if val := os.Getenv("ANNOTRAIN_SERVER_ADDRESS"); val != "" {
		config.Server.Address = val
	}
	if val := os.Getenv("ANNOTRAIN_SERVER_PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid ANNOTRAIN_SERVER_PORT %q: %w", val, err)
		}
		config.Server.Port = port
	}
	if val := os.Getenv("ANNOTRAIN_DATA_DIR"); val != "" {
		config.Storage.DataDir = val
	}
	if val := os.Getenv("ANNOTRAIN_MODELS_DIR"); val != "" {
		config.Storage.ModelsDir = val
	}
	if val := os.Getenv("ANNOTRAIN_LOG_LEVEL"); val != "" {
		config.Logging.Level = val
	}
	if val := os.Getenv("ANNOTRAIN_LOG_FORMAT"); val != "" {
		config.Logging.Format = val
	}
	return nil
}

// loadFromFile loads configuration from the first available YAML file.
// Returns the path of the loaded file or "built-in defaults" if no file found.
func loadFromFile(config *Config) (string, error) {
	configPaths := []string{
		os.Getenv("ANNOTRAIN_CONFIG_PATH"),
		"./config/annotrain.yml",
		"./annotrain.yml",
		"/etc/annotrain/annotrain.yml",
	}

	for _, path := range configPaths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return "", fmt.Errorf("failed to parse config file %s: %w", path, err)
		}

		return path, nil
	}

	return "built-in defaults (no config file found)", nil
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Health.Enabled && (c.Health.Port < 1 || c.Health.Port > 65535) {
		return fmt.Errorf("invalid health port: %d", c.Health.Port)
	}

	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage data directory is required")
	}

	if c.Storage.RunsDir == "" || filepath.IsAbs(c.Storage.RunsDir) {
		return fmt.Errorf("storage runs directory must be a relative path: %q", c.Storage.RunsDir)
	}

	if len(c.Training.TrainCommand) == 0 {
		return fmt.Errorf("training command is required")
	}

	if c.Training.Weights.Preferred == "" {
		return fmt.Errorf("preferred weights name is required")
	}

	if c.Training.GracePeriod <= 0 {
		return fmt.Errorf("invalid grace period: %s", c.Training.GracePeriod)
	}

	if r := c.Training.Defaults.TrainRatio; r <= 0 || r >= 1 {
		return fmt.Errorf("invalid default train ratio: %v", r)
	}

	if c.Logs.MaxLines < 1 {
		return fmt.Errorf("invalid max log lines: %d", c.Logs.MaxLines)
	}

	if c.Logs.RetainLines < 1 || c.Logs.RetainLines > c.Logs.MaxLines {
		return fmt.Errorf("retained log lines must be between 1 and %d: %d", c.Logs.MaxLines, c.Logs.RetainLines)
	}

	if c.Logs.MaxFinished < 0 {
		return fmt.Errorf("invalid max finished logs: %d", c.Logs.MaxFinished)
	}

	if c.Auth.Enabled {
		seen := make(map[string]bool, len(c.Auth.Users))
		for _, u := range c.Auth.Users {
			if u.Username == "" || u.PasswordHash == "" {
				return fmt.Errorf("auth users need a username and a password hash")
			}
			if seen[u.Username] {
				return fmt.Errorf("duplicate auth user: %s", u.Username)
			}
			seen[u.Username] = true
		}
	}

	validLevels := map[string]bool{
		"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
	}
	if !validLevels[strings.ToUpper(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}
