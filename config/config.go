// Package config loads client settings from the environment and an optional file
// with Viper.
//
// # Environment Variables
//
//   - HAWCX_PROJECT_API_KEY: project API key. Required by Initialize.
//   - HAWCX_BASE_URL: engine base URL. Required on iOS unless HAWCX_AUTH_BASE_URL is set.
//   - HAWCX_AUTH_BASE_URL: fallback base URL.
//   - HAWCX_OAUTH_CLIENT_ID, HAWCX_OAUTH_PUBLIC_KEY_PEM, HAWCX_OAUTH_TOKEN_ENDPOINT:
//     enable authorization-code exchange when any is set.
//   - HAWCX_PLATFORM: ios or android. Default: android
//   - HAWCX_LOG_LEVEL: debug, info, warn, error. Default: info
//   - HAWCX_REDIS_ADDR: Redis address for the event relay. Empty disables it.
//   - HAWCX_CHANNEL_PREFIX: prefix for relay channel names.
//   - HAWCX_AUDIT_ENABLED: enable the audit dispatcher. Default: false
//
// A file passed to Load uses the same keys in lower case (project_api_key, ...).
// Environment variables win over the file.
package config

import (
	"strings"

	goHawcx "github.com/MrEthical07/goHawcx"
	"github.com/spf13/viper"
)

const envPrefix = "HAWCX"

// Settings is the flat file and environment view of the client configuration.
// Environment variables use the HAWCX_ prefix, e.g. HAWCX_PROJECT_API_KEY.
type Settings struct {
	ProjectAPIKey      string `mapstructure:"project_api_key"`
	BaseURL            string `mapstructure:"base_url"`
	AuthBaseURL        string `mapstructure:"auth_base_url"`
	OAuthClientID      string `mapstructure:"oauth_client_id"`
	OAuthPublicKeyPEM  string `mapstructure:"oauth_public_key_pem"`
	OAuthTokenEndpoint string `mapstructure:"oauth_token_endpoint"`
	Platform           string `mapstructure:"platform"`
	LogLevel           string `mapstructure:"log_level"`
	RedisAddr          string `mapstructure:"redis_addr"`
	ChannelPrefix      string `mapstructure:"channel_prefix"`
	AuditEnabled       bool   `mapstructure:"audit_enabled"`
}

// Load reads settings from the environment and, when path is not empty, from the
// config file at path.
func Load(path string) (*Settings, error) {
	v := viper.New()

	// every key needs a default so AutomaticEnv can see it during Unmarshal
	v.SetDefault("project_api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("auth_base_url", "")
	v.SetDefault("oauth_client_id", "")
	v.SetDefault("oauth_public_key_pem", "")
	v.SetDefault("oauth_token_endpoint", "")
	v.SetDefault("platform", string(goHawcx.PlatformAndroid))
	v.SetDefault("log_level", "info")
	v.SetDefault("redis_addr", "")
	v.SetDefault("channel_prefix", "")
	v.SetDefault("audit_enabled", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// InitializeConfig maps the settings onto the engine configuration. OAuth is
// included when any OAuth field is set so that Initialize can report the missing
// ones.
func (s *Settings) InitializeConfig() goHawcx.InitializeConfig {
	cfg := goHawcx.InitializeConfig{
		ProjectAPIKey: s.ProjectAPIKey,
		BaseURL:       s.BaseURL,
	}
	if s.AuthBaseURL != "" {
		cfg.Endpoints = &goHawcx.Endpoints{AuthBaseURL: s.AuthBaseURL}
	}
	if s.OAuthClientID != "" || s.OAuthPublicKeyPEM != "" || s.OAuthTokenEndpoint != "" {
		cfg.OAuthConfig = &goHawcx.OAuthConfig{
			ClientID:      s.OAuthClientID,
			PublicKeyPEM:  s.OAuthPublicKeyPEM,
			TokenEndpoint: s.OAuthTokenEndpoint,
		}
	}
	return cfg
}

// ClientConfig returns goHawcx.DefaultConfig adjusted by the settings.
func (s *Settings) ClientConfig() goHawcx.Config {
	cfg := goHawcx.DefaultConfig()
	cfg.Platform = goHawcx.ParsePlatform(s.Platform)
	cfg.Audit.Enabled = s.AuditEnabled
	return cfg
}
