package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"whatsapp-cloud-go/pkg/whatsapp"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

type Config struct {
	Port        string
	VerifyToken string

	AccessToken   string
	PhoneNumberID string
	APIVersion    string
	BaseURL       string
	Verbose       bool

	DBDriver string
	DBDSN    string

	LogLevel   string
	LogConsole bool

	// AutoMarkRead marks every inbound message as read once received.
	AutoMarkRead bool
}

// LoadConfig reads an optional .env file and then the environment.
// Variables already present in the environment win over the file.
func LoadConfig(files ...string) *Config {
	// a missing .env is normal outside development
	_ = godotenv.Load(files...)

	return &Config{
		Port:          getEnv("PORT", "8080"),
		VerifyToken:   getEnv("VERIFY_TOKEN", ""),
		AccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		PhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		APIVersion:    getEnv("WHATSAPP_API_VERSION", whatsapp.DefaultVersion),
		BaseURL:       getEnv("WHATSAPP_BASE_URL", whatsapp.DefaultBaseURL),
		Verbose:       getBool("WHATSAPP_VERBOSE", true),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBDSN:         getEnv("DB_DSN", "./whatsapp.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogConsole:    getBool("LOG_CONSOLE", true),
		AutoMarkRead:  getBool("AUTO_MARK_READ", false),
	}
}

// Validate checks the settings needed to talk to the Graph API.
func (c *Config) Validate() error {
	if c.AccessToken == "" {
		return errors.New("config: WHATSAPP_ACCESS_TOKEN is required")
	}
	if c.PhoneNumberID == "" {
		return errors.New("config: WHATSAPP_PHONE_NUMBER_ID is required")
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres, DriverNone, "":
	default:
		return errors.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "config: LOG_LEVEL %q", c.LogLevel)
	}
	return nil
}

// ClientOptions maps the configuration onto whatsapp.Options.
func (c *Config) ClientOptions(logger *zerolog.Logger) whatsapp.Options {
	return whatsapp.Options{
		AccessToken:   c.AccessToken,
		PhoneNumberID: c.PhoneNumberID,
		Version:       c.APIVersion,
		BaseURL:       c.BaseURL,
		Verbose:       c.Verbose,
		Logger:        logger,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
