package common

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Output modes for the card sink.
const (
	OutputModeAppend    = "append"    // keep existing rows; header only when the file is new or empty
	OutputModeOverwrite = "overwrite" // truncate and write a fresh header every run
)

// Config holds all application configuration
type Config struct {
	Cards  CardsConfig  `yaml:"cards"`
	OCR    OCRConfig    `yaml:"ocr"`
	LLM    LLMConfig    `yaml:"llm"`
	Ledger LedgerConfig `yaml:"ledger"`
}

// CardsConfig holds the batch input/output settings
type CardsConfig struct {
	InputDirectory   string `yaml:"input_directory"`
	OutputFile       string `yaml:"output_file"`
	OutputMode       string `yaml:"output_mode"`
	ErrorLog         string `yaml:"error_log"`
	PreserveSentinel bool   `yaml:"preserve_sentinel"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract   string `yaml:"tesseract"`
	Lang        string `yaml:"lang"`
	PSM         int    `yaml:"psm"`
	OEM         int    `yaml:"oem"`
	TessdataDir string `yaml:"tessdata_dir"`
	// TSVConfidence runs a second tesseract pass for word confidences.
	TSVConfidence bool `yaml:"tsv_confidence"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	Model         string        `yaml:"model"`
	Temperature   float32       `yaml:"temperature"`
	MaxTokens     int           `yaml:"max_tokens"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxAttempts   int           `yaml:"max_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
	RatePerSecond float64       `yaml:"rate_per_second"`
}

// LedgerConfig holds the run-ledger database settings. Empty DSN disables the ledger.
type LedgerConfig struct {
	DSN         string        `yaml:"dsn"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Cards: CardsConfig{
			OutputFile: "cards.csv",
			OutputMode: OutputModeAppend,
			ErrorLog:   "log.txt",
		},
		OCR: OCRConfig{
			Tesseract: "tesseract",
			Lang:      "eng",
			PSM:       6,
		},
		LLM: LLMConfig{
			Model:       "gpt-3.5-turbo",
			Temperature: 0.5,
			MaxTokens:   50,
			Timeout:     45 * time.Second,
			MaxAttempts: 3,
			RetryDelay:  time.Second,
		},
		Ledger: LedgerConfig{
			DialTimeout: 3 * time.Second,
		},
	}
}

// LoadConfig layers defaults, an optional YAML file, an optional .env file and the
// process environment, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError("CONFIG_ERROR", "read config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "parse config file", err)
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, NewAppError("CONFIG_ERROR", "load .env", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Cards.InputDirectory = getEnv("CARDS_INPUT_DIR", c.Cards.InputDirectory)
	c.Cards.OutputFile = getEnv("CARDS_OUTPUT_FILE", c.Cards.OutputFile)
	c.Cards.OutputMode = getEnv("CARDS_OUTPUT_MODE", c.Cards.OutputMode)
	c.Cards.ErrorLog = getEnv("CARDS_ERROR_LOG", c.Cards.ErrorLog)
	c.Cards.PreserveSentinel = getEnvAsBool("CARDS_PRESERVE_NA", c.Cards.PreserveSentinel)

	c.OCR.Tesseract = getEnv("TESSERACT_BIN", c.OCR.Tesseract)
	c.OCR.Lang = getEnv("TESSERACT_LANG", c.OCR.Lang)
	c.OCR.PSM = getEnvAsInt("TESSERACT_PSM", c.OCR.PSM)
	c.OCR.OEM = getEnvAsInt("TESSERACT_OEM", c.OCR.OEM)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.TSVConfidence = getEnvAsBool("TESSERACT_TSV_CONFIDENCE", c.OCR.TSVConfidence)

	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("OPENAI_MODEL", c.LLM.Model)
	c.LLM.Temperature = getEnvAsFloat32("OPENAI_TEMPERATURE", c.LLM.Temperature)
	c.LLM.MaxTokens = getEnvAsInt("OPENAI_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.Timeout = getEnvAsDuration("OPENAI_TIMEOUT", c.LLM.Timeout)
	c.LLM.MaxAttempts = getEnvAsInt("LLM_MAX_ATTEMPTS", c.LLM.MaxAttempts)
	c.LLM.RetryDelay = getEnvAsDuration("LLM_RETRY_DELAY", c.LLM.RetryDelay)
	c.LLM.RatePerSecond = getEnvAsFloat64("LLM_RATE_PER_SECOND", c.LLM.RatePerSecond)

	c.Ledger.DSN = getEnv("LEDGER_DSN", c.Ledger.DSN)
	c.Ledger.DialTimeout = getEnvAsDuration("LEDGER_DIAL_TIMEOUT", c.Ledger.DialTimeout)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the settings a batch run cannot start without.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("CARDS_INPUT_DIR", c.Cards.InputDirectory, Required).
		Field("CARDS_OUTPUT_FILE", c.Cards.OutputFile, Required).
		Field("OPENAI_API_KEY", c.LLM.APIKey, Required).
		Field("CARDS_OUTPUT_MODE", c.Cards.OutputMode, OneOf(OutputModeAppend, OutputModeOverwrite)).
		Field("LLM_MAX_ATTEMPTS", c.LLM.MaxAttempts, AtLeast(1)).
		Field("LLM_RETRY_DELAY", c.LLM.RetryDelay, AtLeast(0))
	return ValidateAndReturnError(v)
}
