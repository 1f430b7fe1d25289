// Package config provides configuration management for the jobbee application.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting.
// This allows the application to be configured for different environments
// (dev, staging, prod) without code changes.
// In the Express implementation this port follows, the same role was played by
// `dotenv` plus ad-hoc `process.env` reads scattered through the code; here every
// ambient read happens exactly once, at startup, into an explicit struct that is
// passed by reference to whoever needs it.
package config

import (
	"fmt"
	// `os` package provides operating system functionalities, like reading environment variables.
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names recognised in APP_ENV. Anything that is not "production"
// is treated as a development deployment for error-reporting purposes.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// PoolConfig represents configuration for the database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds authentication-related configuration.
// The JWT secret and the expiry windows are read once here and never again
// from ambient state; the gatekeeper and token issuance receive this struct.
type AuthConfig struct {
	JWTSecret        string        // Secret key for signing JWTs
	TokenDuration    time.Duration // Validity window of issued bearer tokens
	CookieExpireDays int           // Lifetime of the token cookie, in days
	ResetTokenTTL    time.Duration // Validity window of password reset tokens
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port string // Port for the HTTP server
	Env  string // "development" or "production"
}

// IsProduction reports whether the server runs in production mode.
// Error responses suppress internal detail when this is true.
func (s *ServerConfig) IsProduction() bool {
	return s.Env == EnvProduction
}

// GeocoderConfig holds settings for the geocoding collaborator.
type GeocoderConfig struct {
	Provider string // "openstreetmap" or "mapquest"
	APIKey   string // Required by some providers (MapQuest); unused by OSM
}

// MailConfig holds SMTP settings for the email collaborator.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// UploadConfig holds settings for résumé file storage.
type UploadConfig struct {
	Dir         string // Directory résumé files are written to
	MaxFileSize int64  // Upper bound on an uploaded file, in bytes
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DB       *PoolConfig
	Auth     *AuthConfig
	Server   *ServerConfig
	Geocoder *GeocoderConfig
	Mail     *MailConfig
	Uploads  *UploadConfig
}

// Helper function to get a required environment variable.
// Appends an error to the errors slice if the variable is not set.
// This promotes a "fail fast" approach for critical missing configurations.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return "" // Return empty string, error is collected
	}
	return value
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as an int.
// Uses defaultValue if not set. Appends an error if parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue // Return default, error is collected
	}
	return valueInt
}

// Helper function to get an optional environment variable parsed as int64.
// The original implementation compared the uploaded byte count against the raw
// environment string without parsing it; here the numeric semantics are made
// explicit and a malformed value is a configuration error.
func getOptionalEnvInt64(key string, defaultValue int64, errors *[]string) int64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer byte count, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// Helper function to get an optional environment variable parsed as time.Duration.
// `time.ParseDuration` expects a string like "15m", "1h30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// parseAndValidatePoolSize converts a string value to an integer, validates and clamps it.
// Appends an error to the errors slice if parsing or validation fails.
func parseAndValidatePoolSize(valueStr string, varName string, errors *[]string) int {
	if valueStr == "" {
		*errors = append(*errors, fmt.Sprintf("missing value for pool size: %s", varName))
		return 5
	}
	size, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid pool size for %s: expected integer, got '%s': %v", varName, valueStr, err))
		return 5
	}

	// Clamp the pool size between 5 and 100
	if size < 5 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is less than minimum 5, clamping to 5", varName, size))
		size = 5
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100, clamping to 100", varName, size))
		size = 100
	}
	return size
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist,
// so a misconfigured deployment reports every problem at once instead of one per restart.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	// Database Configuration
	dbUser := getRequiredEnv("DB_USER", &errors)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errors)
	dbName := getRequiredEnv("DB_NAME", &errors)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errors)

	dbPoolSizeStr := getOptionalEnv("DB_POOL_SIZE", "10")
	poolSize := parseAndValidatePoolSize(dbPoolSizeStr, "DB_POOL_SIZE", &errors)

	dbConfig := &PoolConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		MaxSize:  poolSize,
	}

	// Auth Configuration
	// TOKEN_EXPIRES_TIME keeps the original semantics: a day count applied to
	// the cookie that carries the bearer token.
	jwtSecret := getRequiredEnv("JWT_SECRET", &errors)
	tokenDuration := getOptionalEnvDuration("JWT_EXPIRES_TIME", 168*time.Hour, &errors) // 7 days
	cookieDays := getOptionalEnvInt("TOKEN_EXPIRES_TIME", 7, &errors)
	resetTokenTTL := getOptionalEnvDuration("RESET_TOKEN_EXPIRES_TIME", 30*time.Minute, &errors)

	authConfig := &AuthConfig{
		JWTSecret:        jwtSecret,
		TokenDuration:    tokenDuration,
		CookieExpireDays: cookieDays,
		ResetTokenTTL:    resetTokenTTL,
	}

	// Server Configuration
	serverConfig := &ServerConfig{
		Port: getOptionalEnv("PORT", "8080"),
		Env:  getOptionalEnv("APP_ENV", EnvDevelopment),
	}

	// Geocoder Configuration
	geocoderConfig := &GeocoderConfig{
		Provider: getOptionalEnv("GEOCODER_PROVIDER", "openstreetmap"),
		APIKey:   getOptionalEnv("GEOCODER_API_KEY", ""),
	}
	if geocoderConfig.Provider == "mapquest" && geocoderConfig.APIKey == "" {
		errors = append(errors, "GEOCODER_API_KEY is required when GEOCODER_PROVIDER=mapquest")
	}

	// SMTP Configuration
	mailConfig := &MailConfig{
		Host:     getRequiredEnv("SMTP_HOST", &errors),
		Port:     getOptionalEnvInt("SMTP_PORT", 587, &errors),
		Username: getOptionalEnv("SMTP_USER", ""),
		Password: getOptionalEnv("SMTP_PASSWORD", ""),
		From:     getOptionalEnv("SMTP_FROM", "noreply@jobbee.local"),
	}

	// Upload Configuration
	uploadConfig := &UploadConfig{
		Dir:         getOptionalEnv("UPLOAD_PATH", "./public/uploads"),
		MaxFileSize: getOptionalEnvInt64("MAX_FILE_SIZE", 2*1024*1024, &errors),
	}

	// If any errors were collected during loading, return a single aggregated error message.
	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		DB:       dbConfig,
		Auth:     authConfig,
		Server:   serverConfig,
		Geocoder: geocoderConfig,
		Mail:     mailConfig,
		Uploads:  uploadConfig,
	}, nil
}
