package config

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"
)

type Config struct {
	Port         string
	DBPath       string
	CSRFKey      []byte
	SessionKey   []byte
	CookieDomain string
	CookieSecure bool

	SiteName   string
	SiteURL    string
	AdminEmail string

	// Empty SMTPHost means mail is logged instead of sent.
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	MigrationsDir string
	UploadsDir    string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./essence.db"),
		CookieDomain:  getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:  getEnv("COOKIE_SECURE", "false") == "true",
		SiteName:      getEnv("SITE_NAME", "Essence Luxe"),
		SiteURL:       getEnv("SITE_URL", "http://localhost:8080"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@essenceluxe.com"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		UploadsDir:    getEnv("UPLOADS_DIR", "static/uploads"),
	}
	cfg.MailFrom = getEnv("MAIL_FROM", cfg.AdminEmail)

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8080"
	}

	return cfg, nil
}

// loadKey reads a base64 32-byte key from the environment, generating a
// throwaway one with a loud warning when it is missing or malformed. Sessions
// and CSRF tokens will not survive a restart on a generated key.
func loadKey(envVar string) []byte {
	raw := os.Getenv(envVar)
	if raw == "" {
		slog.Warn(envVar + " environment variable not set. Generating a random key for development. This key will change on each restart. PLEASE SET " + envVar + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) < 32 {
		slog.Warn(envVar + " is invalid or too short (min 32 bytes recommended). Generating a random key for development. PLEASE SET A SECURE " + envVar + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	return decoded
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the host is broken; refuse to limp along
		// with a predictable key.
		slog.Error("Failed to read random bytes", "error", err)
		os.Exit(1)
	}
	return b
}
