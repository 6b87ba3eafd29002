package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "REGIONVOTE"
	defaultHTTPAddress  = "0.0.0.0:8080"
	defaultLogLevel     = "info"
	defaultCookieName   = "access_token"
	defaultRedisAddr    = "localhost:6379"
	defaultDirectoryURL = "https://www.career.go.kr/cnet/openapi/getOpenApi"
)

// AppConfig captures runtime configuration for the voting backend.
type AppConfig struct {
	HTTPAddress     string
	DatabaseURL     string
	RedisAddr       string
	JWTSecret       string
	CookieName      string
	LogLevel        string
	DirectoryURL    string
	DirectoryAPIKey string
	// UnlimitedEmails is the allow-list of verified emails exempt from the
	// one-vote-per-topic rule.
	UnlimitedEmails []string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.address", defaultHTTPAddress)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("auth.cookie_name", defaultCookieName)
	v.SetDefault("redis.addr", defaultRedisAddr)
	v.SetDefault("directory.url", defaultDirectoryURL)
	v.SetDefault("vote.unlimited_emails", "")
}

// Load parses runtime configuration from viper.
func Load(v *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:     v.GetString("http.address"),
		DatabaseURL:     v.GetString("database.url"),
		RedisAddr:       v.GetString("redis.addr"),
		JWTSecret:       v.GetString("auth.jwt_secret"),
		CookieName:      v.GetString("auth.cookie_name"),
		LogLevel:        v.GetString("log.level"),
		DirectoryURL:    v.GetString("directory.url"),
		DirectoryAPIKey: v.GetString("directory.api_key"),
		UnlimitedEmails: splitList(v.GetString("vote.unlimited_emails")),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("database.url is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if strings.TrimSpace(c.CookieName) == "" {
		return fmt.Errorf("auth.cookie_name is required")
	}
	return nil
}
