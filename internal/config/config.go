package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// insecureDevSecret is accepted outside production when JWT_SECRET is unset
const insecureDevSecret = "dev-secret"

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Email    EmailConfig
	Redis    RedisConfig
	Storage  StorageConfig
	OAuth    OAuthConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port         string
	Env          string
	LogLevel     string
	ClientOrigin string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// Requests per minute per IP on credential endpoints. Zero disables the limiter.
	AuthRateLimit int
}

type AuthConfig struct {
	JWTSecret        string
	InsecureSecret   bool // true when the development fallback secret is in use
	UserTokenExpiry  time.Duration
	AdminTokenExpiry time.Duration
	OTPExpiry        time.Duration

	// Main Administrator identity, compared by exact email match
	MainAdminEmail    string
	MainAdminPassword string
	// Recipient of admin access requests and contact enquiries
	OperatorEmail string

	TimingDelayBaseMs   int
	TimingDelayRandomMs int
}

type EmailConfig struct {
	Provider    string // "ses" or "log"
	AWSRegion   string
	FromAddress string
	QueueSize   int
	SendTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Region        string
	UseSSL        bool
	Bucket        string
	PublicBaseURL string
	MaxUploadSize int64
}

// Enabled reports whether object storage credentials are configured
func (c StorageConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	StateTTL           time.Duration
}

// GoogleEnabled reports whether federated Google login is configured
func (c OAuthConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	jwtSecret := getEnv("JWT_SECRET", "")
	insecure := false
	if jwtSecret == "" {
		if env == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		jwtSecret = insecureDevSecret
		insecure = true
	}

	mainAdminEmail := strings.TrimSpace(getEnv("MAIN_ADMIN_EMAIL", ""))

	defaultMailer := "log"
	if env == "production" {
		defaultMailer = "ses"
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "kalindhi"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:          getEnv("PORT", "3000"),
			Env:           env,
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
			ReadTimeout:   getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:  getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:   getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			AuthRateLimit: getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
		},
		Auth: AuthConfig{
			JWTSecret:           jwtSecret,
			InsecureSecret:      insecure,
			UserTokenExpiry:     getEnvAsDuration("USER_TOKEN_EXPIRY", 7*24*time.Hour),
			AdminTokenExpiry:    getEnvAsDuration("ADMIN_TOKEN_EXPIRY", 24*time.Hour),
			OTPExpiry:           getEnvAsDuration("OTP_EXPIRY", 10*time.Minute),
			MainAdminEmail:      mainAdminEmail,
			MainAdminPassword:   getEnv("MAIN_ADMIN_PASSWORD", ""),
			OperatorEmail:       getEnv("OPERATOR_EMAIL", mainAdminEmail),
			TimingDelayBaseMs:   getEnvAsInt("TIMING_DELAY_BASE_MS", 100),
			TimingDelayRandomMs: getEnvAsInt("TIMING_DELAY_RANDOM_MS", 50),
		},
		Email: EmailConfig{
			Provider:    strings.ToLower(getEnv("EMAIL_PROVIDER", defaultMailer)),
			AWSRegion:   getEnv("AWS_REGION", "ap-south-1"),
			FromAddress: getEnv("MAIL_FROM", "no-reply@kalindhi.in"),
			QueueSize:   getEnvAsInt("MAIL_QUEUE_SIZE", 256),
			SendTimeout: getEnvAsDuration("MAIL_SEND_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKey:     getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:     getEnv("STORAGE_SECRET_KEY", ""),
			Region:        getEnv("STORAGE_REGION", "us-east-1"),
			UseSSL:        getEnvAsBool("STORAGE_USE_SSL", false),
			Bucket:        getEnv("STORAGE_BUCKET", "kalindhi-images"),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", ""),
			MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 5<<20)),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleCallbackURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:3000/api/auth/google/callback"),
			StateTTL:           getEnvAsDuration("OAUTH_STATE_TTL", 10*time.Minute),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	switch cfg.Email.Provider {
	case "ses", "log":
	default:
		return nil, fmt.Errorf("EMAIL_PROVIDER must be one of ses, log (got %q)", cfg.Email.Provider)
	}
	// The log mailer prints verification codes
	if env == "production" && cfg.Email.Provider == "log" {
		return nil, fmt.Errorf("EMAIL_PROVIDER=log is not allowed in production")
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for JWT secret in production
func validateJWTSecret(secret, env string) error {
	if env != "production" {
		return nil
	}

	if len(secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production (got %d)", len(secret))
	}
	if secret == insecureDevSecret {
		return fmt.Errorf("JWT_SECRET cannot be the development fallback in production")
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
