package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabasePath       string
	AuditDatabasePath  string
	Port               string
	GoEnv              string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	Users              string // "username:password:role" entries separated by commas
	BackupProvider     string // "github", "s3" or "" (backups disabled)
	GitHubToken        string
	GitHubRepo         string
	GitHubBranch       string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	GeocodeBaseURL     string
	GeocodeUserAgent   string
	GeocodeDelay       time.Duration
	LogLevel           string
}

// User is a single operator account parsed from the Users setting
type User struct {
	Username string
	Password string
	Role     string
}

var configInstance *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In deployed environments variables are set directly,
			// so it's okay if .env files don't exist
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabasePath:       getEnv("DATABASE_PATH", "maintenance.db"),
		AuditDatabasePath:  getEnv("AUDIT_DATABASE_PATH", "audit.db"),
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "maintenance-api"),
		JWTAudience:        getEnv("JWT_AUDIENCE", "maintenance-api"),
		Users:              getEnv("USERS", ""),
		BackupProvider:     getEnv("BACKUP_PROVIDER", ""),
		GitHubToken:        getEnv("GITHUB_TOKEN", ""),
		GitHubRepo:         getEnv("GITHUB_REPO", ""),
		GitHubBranch:       getEnv("GITHUB_BRANCH", "main"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		GeocodeBaseURL:     getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeUserAgent:   getEnv("GEOCODE_USER_AGENT", "maintenance-api"),
		GeocodeDelay:       getMillisEnv("GEOCODE_DELAY_MS", 1000),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	configInstance = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.BackupProvider {
	case "", "github", "s3":
	default:
		return fmt.Errorf("BACKUP_PROVIDER must be \"github\", \"s3\" or empty, got %q", c.BackupProvider)
	}
	if c.BackupProvider == "github" && (c.GitHubToken == "" || c.GitHubRepo == "") {
		return fmt.Errorf("GITHUB_TOKEN and GITHUB_REPO are required when BACKUP_PROVIDER=github")
	}
	if c.BackupProvider == "s3" && c.AWSS3Bucket == "" {
		return fmt.Errorf("AWS_S3_BUCKET is required when BACKUP_PROVIDER=s3")
	}
	return nil
}

// ParseUsers parses the Users setting into operator accounts.
// Malformed entries are skipped with a warning so a single bad entry
// doesn't lock everyone out.
func (c *Config) ParseUsers() []User {
	var users []User
	for _, entry := range strings.Split(c.Users, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			log.Printf("Skipping malformed USERS entry %q", entry)
			continue
		}
		role := "user"
		if len(parts) >= 3 && parts[2] != "" {
			role = parts[2]
		}
		users = append(users, User{Username: parts[0], Password: parts[1], Role: role})
	}
	return users
}

// FindUser looks up an operator account by username
func (c *Config) FindUser(username string) (User, bool) {
	for _, u := range c.ParseUsers() {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetConfig returns the loaded configuration instance
func GetConfig() *Config {
	return configInstance
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(c *Config) {
	configInstance = c
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getMillisEnv retrieves a millisecond duration from an integer environment variable
func getMillisEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
		log.Printf("Invalid %s value %q, using default %dms", key, value, defaultValue)
	}
	return time.Duration(defaultValue) * time.Millisecond
}
