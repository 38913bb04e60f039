package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Settings holds the scalar runtime configuration.
type Settings struct {
	DefaultModel string  `env:"ARGUS_DEFAULT_MODEL" envDefault:"glm-4.7"`
	Temperature  float64 `env:"ARGUS_TEMPERATURE" envDefault:"0.3"`
	MaxTokens    int     `env:"ARGUS_MAX_TOKENS" envDefault:"4000"`

	RetryAttempts    int           `env:"ARGUS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryMinWait     time.Duration `env:"ARGUS_RETRY_MIN_WAIT" envDefault:"1s"`
	RetryMaxWait     time.Duration `env:"ARGUS_RETRY_MAX_WAIT" envDefault:"10s"`
	RetryStatusCodes []int         `env:"ARGUS_RETRY_STATUS_CODES" envSeparator:"," envDefault:"429,500,502,503,504"`

	CacheEnabled    bool `env:"ARGUS_CACHE_ENABLED" envDefault:"true"`
	CacheTTLSeconds int  `env:"ARGUS_CACHE_TTL" envDefault:"3600"`
	CacheMaxSize    int  `env:"ARGUS_CACHE_MAX_SIZE" envDefault:"100"`

	LogLevel   string `env:"ARGUS_LOG_LEVEL" envDefault:"info"`
	ModelsFile string `env:"ARGUS_MODELS_FILE"`
}

// Load reads the .env file if present, parses settings from the environment,
// and builds the model registry (built-ins, optionally overlaid by a YAML
// model file).
func Load() (Settings, *Registry, error) {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, nil, fmt.Errorf("parsing environment: %w", err)
	}

	models := builtinModels()
	if s.ModelsFile != "" {
		loaded, err := loadModelFile(s.ModelsFile)
		if err != nil {
			return Settings{}, nil, err
		}
		models = loaded
	}

	return s, NewRegistry(models), nil
}
