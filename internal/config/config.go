package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// ErrMissingSecret is returned when neither a secret nor a readable secret file is configured
var ErrMissingSecret = errors.New("a non-empty signing secret is required (JWT_SECRET or JWT_SECRET_FILE)")

// Stage is the deployment stage the process runs in
type Stage string

const (
	StageLocal Stage = "local"
	StageTest  Stage = "test"
	StageProd  Stage = "prod"
)

// ParseStage parses a stage name case-insensitively
func ParseStage(s string) (Stage, error) {
	switch Stage(strings.ToLower(strings.TrimSpace(s))) {
	case StageLocal:
		return StageLocal, nil
	case StageTest:
		return StageTest, nil
	case StageProd:
		return StageProd, nil
	}
	return "", fmt.Errorf("unknown stage %q, must be one of local, test, prod", s)
}

// Config is the process configuration
type Config struct {
	Listen         string
	Secret         string
	SecretFile     string
	Stage          string
	IdentitiesFile string
	StaticDir      string
	AllowedOrigins []string
	RedisURL       string
	EventTopic     string
	LogLevel       string
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Listen:         "127.0.0.1:3000",
		Stage:          string(StageLocal),
		StaticDir:      "static",
		AllowedOrigins: []string{"http://localhost:5173"},
		LogLevel:       "info",
	}
}

// ApplyEnv overrides fields from environment variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	str("WARDEN_LISTEN", &c.Listen)
	str("JWT_SECRET", &c.Secret)
	str("JWT_SECRET_FILE", &c.SecretFile)
	str("STAGE", &c.Stage)
	str("IDENTITIES_FILE", &c.IdentitiesFile)
	str("STATIC_DIR", &c.StaticDir)
	str("REDIS_URL", &c.RedisURL)
	str("EVENT_TOPIC", &c.EventTopic)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = splitList(v)
	}
}

// AddFlags registers flags whose defaults are the current field values
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Listen, "listen", c.Listen, "A host:port to listen on.")
	fs.StringVar(&c.SecretFile, "secret-file", c.SecretFile, "Path to a file holding the token signing secret. Prefer this or JWT_SECRET over passing the secret on the command line.")
	fs.StringVar(&c.Stage, "stage", c.Stage, "Deployment stage: local, test or prod.")
	fs.StringVar(&c.IdentitiesFile, "identities-file", c.IdentitiesFile, "YAML file with the client identities allowed to log in.")
	fs.StringVar(&c.StaticDir, "static-dir", c.StaticDir, "Directory served for unknown routes, with index.html fallback. Empty disables static serving.")
	fs.StringSliceVar(&c.AllowedOrigins, "allowed-origin", c.AllowedOrigins, "CORS origins allowed to call the API.")
	fs.StringVar(&c.RedisURL, "redis-url", c.RedisURL, "Redis URL for publishing login events. Empty disables publishing.")
	fs.StringVar(&c.EventTopic, "event-topic", c.EventTopic, "Stream that login events are published to. Empty selects the publisher default.")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log filtering level. e.g info, debug, warn, error")
}

// Validate checks the configuration without touching the secret
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address must not be empty")
	}
	if _, err := ParseStage(c.Stage); err != nil {
		return err
	}
	return nil
}

// ParsedStage returns the validated stage
func (c *Config) ParsedStage() Stage {
	s, err := ParseStage(c.Stage)
	if err != nil {
		return StageLocal
	}
	return s
}

// LoadSecret returns the signing secret. The inline secret wins over the file.
// There is no fallback: an empty secret is ErrMissingSecret.
func (c *Config) LoadSecret() ([]byte, error) {
	if c.Secret != "" {
		return []byte(c.Secret), nil
	}
	if c.SecretFile == "" {
		return nil, ErrMissingSecret
	}

	data, err := os.ReadFile(c.SecretFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret file: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrMissingSecret
	}
	return data, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
