package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, MongoDB, the
// language and speech providers, background generation and game sessions.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8000" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request.
		// Game WebSocket connections are exempt.
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// AllowedOrigins lists CORS and WebSocket origins, "*" allows all
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-default:"*" yaml:"allowedOrigins"`
	} `yaml:"http"`

	// MongoDB contains the document store connection settings
	MongoDB struct {
		// URI is the MongoDB connection string
		URI string `env:"MONGODB_URI" env-default:"mongodb://localhost:27017" yaml:"uri"`
		// Database is the name of the database holding the missions collection
		Database string `env:"MONGODB_DB" env-default:"radio_mirchi" yaml:"database"`
		// ConnectTimeout bounds the initial connection and ping
		ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" env-default:"10s" yaml:"connectTimeout"`
		// MaxPoolSize limits the number of connections per server
		MaxPoolSize uint64 `env:"MONGODB_MAX_POOL_SIZE" env-default:"50" yaml:"maxPoolSize"`
	} `yaml:"mongodb"`

	// LLM configures the Gemini language model
	LLM struct {
		APIKey  string        `env:"GOOGLE_API_KEY" yaml:"apiKey"`
		Model   string        `env:"LLM_MODEL" env-default:"gemini-1.5-flash-latest" yaml:"model"`
		BaseURL string        `env:"LLM_BASE_URL" env-default:"https://generativelanguage.googleapis.com" yaml:"baseUrl"`
		Timeout time.Duration `env:"LLM_TIMEOUT" env-default:"1m" yaml:"timeout"`
	} `yaml:"llm"`

	// Deepgram configures text-to-speech and live transcription
	Deepgram struct {
		APIKey    string `env:"DEEPGRAM_API_KEY" yaml:"apiKey"`
		BaseURL   string `env:"DEEPGRAM_BASE_URL" env-default:"https://api.deepgram.com" yaml:"baseUrl"`
		ListenURL string `env:"DEEPGRAM_LISTEN_URL" env-default:"wss://api.deepgram.com/v1/listen" yaml:"listenUrl"`
		// TTSSampleRate is the sample rate of the linear16 audio sent to players
		TTSSampleRate int `env:"TTS_SAMPLE_RATE" env-default:"24000" yaml:"ttsSampleRate"`
		// STTSampleRate is the sample rate of the linear16 audio players send
		STTSampleRate int           `env:"STT_SAMPLE_RATE" env-default:"16000" yaml:"sttSampleRate"`
		Timeout       time.Duration `env:"DEEPGRAM_TIMEOUT" env-default:"1m" yaml:"timeout"`
	} `yaml:"deepgram"`

	// Auth configures bearer token authentication
	Auth struct {
		// Secret is the HS256 key used to sign and verify tokens
		Secret string `env:"API_SECRET" yaml:"secret"`
		// Required rejects requests without a valid token when true
		Required bool `env:"AUTH_REQUIRED" env-default:"false" yaml:"required"`
	} `yaml:"auth"`

	// Worker configures background mission generation
	Worker struct {
		Concurrency int `env:"WORKER_CONCURRENCY" env-default:"4" yaml:"concurrency"`
		MaxAttempts int `env:"WORKER_MAX_ATTEMPTS" env-default:"5" yaml:"maxAttempts"`
		QueueSize   int `env:"WORKER_QUEUE_SIZE" env-default:"100" yaml:"queueSize"`
		// InitialBackoff is the delay before the first retry, doubled on every attempt
		InitialBackoff time.Duration `env:"WORKER_INITIAL_BACKOFF" env-default:"2s" yaml:"initialBackoff"`
		MaxBackoff     time.Duration `env:"WORKER_MAX_BACKOFF" env-default:"1m" yaml:"maxBackoff"`
	} `yaml:"worker"`

	// Game configures live game sessions
	Game struct {
		// MinQueuedLines triggers a new dialogue round when fewer lines are queued
		MinQueuedLines int `env:"GAME_MIN_QUEUED_LINES" env-default:"2" yaml:"minQueuedLines"`
		// RetryDelay is the pause after a failed dialogue round
		RetryDelay time.Duration `env:"GAME_RETRY_DELAY" env-default:"5s" yaml:"retryDelay"`
		// MaxHistoryLines bounds the transcript sent to the language model
		MaxHistoryLines int `env:"GAME_MAX_HISTORY_LINES" env-default:"60" yaml:"maxHistoryLines"`
		// StatementBuffer bounds player statements waiting for the next round
		StatementBuffer int `env:"GAME_STATEMENT_BUFFER" env-default:"8" yaml:"statementBuffer"`
	} `yaml:"game"`

	// RateLimit throttles mission creation per client
	RateLimit struct {
		RPS   float64 `env:"RATE_LIMIT_RPS" env-default:"0.2" yaml:"rps"`
		Burst int     `env:"RATE_LIMIT_BURST" env-default:"5" yaml:"burst"`
	} `yaml:"rateLimit"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load loads variables from envFile (when it exists) into the process
// environment and then reads the yaml config file at configPath. A missing
// config file is not an error; the configuration then comes from the
// environment alone.
func Load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load env file: %w", err)
		}
	}

	var cfg Config
	if _, err := os.Stat(configPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not stat config file: %w", err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from environment: %w", err)
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the serve command cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("GOOGLE_API_KEY is required"))
	}
	if c.Deepgram.APIKey == "" {
		errs = append(errs, errors.New("DEEPGRAM_API_KEY is required"))
	}
	if c.Auth.Required && c.Auth.Secret == "" {
		errs = append(errs, errors.New("API_SECRET is required when AUTH_REQUIRED is set"))
	}
	if c.Worker.Concurrency < 1 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be positive"))
	}
	if c.Worker.MaxAttempts < 1 {
		errs = append(errs, errors.New("WORKER_MAX_ATTEMPTS must be positive"))
	}
	if c.Game.MinQueuedLines < 1 {
		errs = append(errs, errors.New("GAME_MIN_QUEUED_LINES must be positive"))
	}

	return errors.Join(errs...)
}
