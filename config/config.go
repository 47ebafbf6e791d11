package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Port          string `envconfig:"PORT" default:"3000"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"memory"` // memory, sqlite, postgres, mysql
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBUser      string `envconfig:"DB_USER"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"certvault.db"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`

	// Artificial per-operation delays of the in-memory store
	SimulatedLatency bool `envconfig:"SIMULATED_LATENCY" default:"true"`

	JWTKey   string        `envconfig:"JWT_SECRET_KEY" default:"defaultSecret"`
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	// Generate fresh keypairs on wallet connect instead of the demo addresses
	WalletGenerate bool `envconfig:"WALLET_GENERATE" default:"false"`

	PollInterval  time.Duration `envconfig:"POLL_INTERVAL" default:"10s"`
	SweepSchedule string        `envconfig:"SWEEP_SCHEDULE" default:"@every 1m"`

	VerifyMode           string        `envconfig:"VERIFY_MODE" default:"simulated"` // simulated, worker
	VerifyResolveAfter   time.Duration `envconfig:"VERIFY_RESOLVE_AFTER" default:"30s"`
	VerifyWorkerURL      string        `envconfig:"VERIFY_WORKER_URL"`
	VerifyWorkerToken    string        `envconfig:"VERIFY_WORKER_TOKEN"`
	VerifyCallbackSecret string        `envconfig:"VERIFY_CALLBACK_SECRET" default:"defaultSecret"`

	TelegramAPIURL   string `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `envconfig:"TELEGRAM_CHAT_ID"`

	SendgridAPIKey string `envconfig:"SENDGRID_API_KEY"`
	EmailSender    string `envconfig:"EMAIL_SENDER" default:"no-reply@certvault.local"`

	UploadDir string `envconfig:"UPLOAD_DIR" default:"./uploads"`

	// Timeout of outbound calls to the verification worker and Telegram
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // json, console
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	AppConfig = cfg

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.VerifyMode == "worker" && AppConfig.VerifyCallbackSecret == "defaultSecret" {
		log.Println("Warning: Using default VERIFY_CALLBACK_SECRET. Update it in your environment.")
	}
	if AppConfig.TelegramBotToken == "" || AppConfig.TelegramChatID == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set. Feedback relay will fail.")
	}
}

// Parse reads the environment into a fresh Config and checks enum values.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.StoreDriver {
	case "memory", "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.VerifyMode {
	case "simulated":
	case "worker":
		if cfg.VerifyWorkerURL == "" {
			return nil, fmt.Errorf("VERIFY_WORKER_URL is required when VERIFY_MODE=worker")
		}
	default:
		return nil, fmt.Errorf("unsupported VERIFY_MODE %q", cfg.VerifyMode)
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive")
	}
	return cfg, nil
}
