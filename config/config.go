package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"

	minJWTSecretLength = 10
	minBcryptCost      = 10
	maxBcryptCost      = 20

	// bcrypt only accepts inputs up to this many bytes.
	MaxPasswordBytes = 72
)

type Config struct {
	HTTP     ServerConfig
	GRPC     ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Password PasswordConfig
	Signup   SignupConfig
	Registry RegistryConfig
	Log      LogConfig

	ShutdownTimeout time.Duration
}

type ServerConfig struct {
	Host string
	Port string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type PasswordConfig struct {
	BcryptCost int
	Policy     PasswordPolicy
}

type SignupConfig struct {
	IssueToken bool
}

type RegistryConfig struct {
	ServiceName string
	ConsulHost  string
	ConsulPort  int
}

// Enabled reports whether the service should register itself with Consul.
func (c RegistryConfig) Enabled() bool {
	return strings.TrimSpace(c.ConsulHost) != ""
}

type LogConfig struct {
	Level  string
	Format string
}

type PasswordPolicy struct {
	MinLength        int
	MaxLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

func (p PasswordPolicy) Validate(password string) error {
	length := len([]rune(password))
	if length < p.MinLength {
		return fmt.Errorf("password must be at least %d characters", p.MinLength)
	}
	if p.MaxLength > 0 && length > p.MaxLength {
		return fmt.Errorf("password must not exceed %d characters", p.MaxLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordBytes)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasNumber = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}

	var missing []string
	if p.RequireUppercase && !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if p.RequireNumber && !hasNumber {
		missing = append(missing, "number")
	}
	if p.RequireSpecial && !hasSpecial {
		missing = append(missing, "special character")
	}

	if len(missing) > 0 {
		return fmt.Errorf("password must contain at least one: %s", strings.Join(missing, ", "))
	}

	return nil
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}
	if len(jwtSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters long", minJWTSecretLength)
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	bcryptCost := getIntEnv("BCRYPT_SALT_ROUNDS", 12)
	if bcryptCost < minBcryptCost || bcryptCost > maxBcryptCost {
		return nil, fmt.Errorf("BCRYPT_SALT_ROUNDS must be between %d and %d", minBcryptCost, maxBcryptCost)
	}

	policy := loadPasswordPolicy()
	if policy.MaxLength > MaxPasswordBytes {
		return nil, fmt.Errorf("PASSWORD_MAX_LENGTH must not exceed %d", MaxPasswordBytes)
	}

	return &Config{
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", ""),
			Port: getEnv("HTTP_PORT", "3001"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", ""),
			Port: getEnv("GRPC_PORT", "9091"),
		},
		Database: DatabaseConfig{
			URL: databaseURL,
		},
		JWT: JWTConfig{
			Secret:         jwtSecret,
			AccessTokenTTL: getDurationEnv("JWT_ACCESS_TOKEN_TTL", 2*time.Hour),
		},
		Password: PasswordConfig{
			BcryptCost: bcryptCost,
			Policy:     policy,
		},
		Signup: SignupConfig{
			IssueToken: getBoolEnv("SIGNUP_ISSUES_TOKEN", true),
		},
		Registry: RegistryConfig{
			ServiceName: getEnv("SERVICE_NAME", "user-service"),
			ConsulHost:  getEnv("CONSUL_HOST", ""),
			ConsulPort:  getIntEnv("CONSUL_PORT", 8500),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		ShutdownTimeout: time.Duration(getIntEnv("SHUTDOWN_TIMEOUT", 10)) * time.Second,
	}, nil
}

// DriverName picks the database/sql driver from the DATABASE_URL scheme.
func (c *Config) DriverName() string {
	return DriverNameForURL(c.Database.URL)
}

func (c *Config) DSN() string {
	return c.Database.URL
}

func DriverNameForURL(url string) string {
	lower := strings.ToLower(strings.TrimSpace(url))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DriverPostgres
	}
	return DriverMySQL
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func loadPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        getIntEnv("PASSWORD_MIN_LENGTH", 8),
		MaxLength:        getIntEnv("PASSWORD_MAX_LENGTH", 15),
		RequireUppercase: getBoolEnv("PASSWORD_REQUIRE_UPPERCASE", false),
		RequireLowercase: getBoolEnv("PASSWORD_REQUIRE_LOWERCASE", false),
		RequireNumber:    getBoolEnv("PASSWORD_REQUIRE_NUMBER", false),
		RequireSpecial:   getBoolEnv("PASSWORD_REQUIRE_SPECIAL", false),
	}
}
