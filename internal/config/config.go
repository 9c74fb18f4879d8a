package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Host        string
	Port        string
	MongoDBURL  string
	SecretKey   string
	FrontendURL string
	UseTLS      bool
	TLSCert     string
	TLSKey      string
}

var AppConfig *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Host:        getEnvOrDefault("HOST", "0.0.0.0"),
		Port:        getEnvOrDefault("PORT", "3000"),
		MongoDBURL:  getEnvOrDefault("MONGODB_URL", ""),
		SecretKey:   getEnvOrDefault("SECRET_KEY", ""),
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "*"),
		UseTLS:      os.Getenv("USE_TLS") == "true",
		TLSCert:     getEnvOrDefault("TLS_CERT", ""),
		TLSKey:      getEnvOrDefault("TLS_KEY", ""),
	}

	if config.MongoDBURL == "" {
		log.Println("MONGODB_URL not set, leaderboard disabled")
	}
	if config.SecretKey == "" {
		log.Println("SECRET_KEY not set, websocket connections are anonymous")
	}

	AppConfig = config
	return config
}

// AuthEnabled reports whether websocket clients must present a token.
func (c *Config) AuthEnabled() bool {
	return c != nil && c.SecretKey != ""
}

// LeaderboardEnabled reports whether kill statistics are stored in MongoDB.
func (c *Config) LeaderboardEnabled() bool {
	return c != nil && c.MongoDBURL != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
