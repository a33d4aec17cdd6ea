package goHawcx

import (
	"errors"
	"net/url"
	"strings"

	"github.com/MrEthical07/goHawcx/jwt"
)

// Config defines client-side behaviour of a Client. It is applied via
// [Builder.WithConfig] and treated as immutable after Build.
type Config struct {
	Platform Platform
	Audit    AuditConfig
	Metrics  MetricsConfig
	Redact   RedactConfig
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// RedactConfig controls how user identifiers are fingerprinted in logs and audit
// records. An empty key uses an unkeyed digest.
type RedactConfig struct {
	FingerprintKey []byte
}

/*
====================================
INITIALIZE CONFIG
====================================
*/

// InitializeConfig is handed to the engine by [Client.Initialize].
type InitializeConfig struct {
	ProjectAPIKey string       `json:"projectApiKey" mapstructure:"project_api_key"`
	OAuthConfig   *OAuthConfig `json:"oauthConfig,omitempty" mapstructure:"oauth"`
	BaseURL       string       `json:"baseUrl,omitempty" mapstructure:"base_url"`
	Endpoints     *Endpoints   `json:"endpoints,omitempty" mapstructure:"endpoints"`
}

// OAuthConfig enables authorization-code exchange in the engine. When present,
// every field is required.
type OAuthConfig struct {
	ClientID      string `json:"clientId" mapstructure:"client_id"`
	PublicKeyPEM  string `json:"publicKeyPem" mapstructure:"public_key_pem"`
	TokenEndpoint string `json:"tokenEndpoint" mapstructure:"token_endpoint"`
}

// Endpoints overrides engine endpoints.
type Endpoints struct {
	AuthBaseURL string `json:"authBaseUrl,omitempty" mapstructure:"auth_base_url"`
}

const oauthIncompleteMessage = "oauthConfig must include tokenEndpoint, clientId, and publicKeyPem"

// ResolveBaseURL returns the trimmed BaseURL, falling back to Endpoints.AuthBaseURL.
func (c InitializeConfig) ResolveBaseURL() string {
	if base := strings.TrimSpace(c.BaseURL); base != "" {
		return base
	}
	if c.Endpoints != nil {
		return strings.TrimSpace(c.Endpoints.AuthBaseURL)
	}
	return ""
}

// Normalize trims every field and validates the configuration for platform. The
// returned copy is what the engine receives.
func (c InitializeConfig) Normalize(platform Platform) (InitializeConfig, error) {
	out := InitializeConfig{
		ProjectAPIKey: strings.TrimSpace(c.ProjectAPIKey),
		BaseURL:       c.ResolveBaseURL(),
	}
	if out.ProjectAPIKey == "" {
		return InitializeConfig{}, &ConfigError{Message: "projectApiKey is required"}
	}

	if c.Endpoints != nil {
		out.Endpoints = &Endpoints{AuthBaseURL: strings.TrimSpace(c.Endpoints.AuthBaseURL)}
	}

	if out.BaseURL != "" {
		if err := requireAbsoluteURL(out.BaseURL); err != nil {
			return InitializeConfig{}, &ConfigError{Message: "baseUrl must be an absolute URL", Err: err}
		}
	} else if platform == PlatformIOS {
		return InitializeConfig{}, &ConfigError{Message: "baseUrl is required"}
	}

	if c.OAuthConfig != nil {
		oauth := OAuthConfig{
			ClientID:      strings.TrimSpace(c.OAuthConfig.ClientID),
			PublicKeyPEM:  strings.TrimSpace(c.OAuthConfig.PublicKeyPEM),
			TokenEndpoint: strings.TrimSpace(c.OAuthConfig.TokenEndpoint),
		}
		if oauth.ClientID == "" || oauth.PublicKeyPEM == "" || oauth.TokenEndpoint == "" {
			return InitializeConfig{}, &ConfigError{Message: oauthIncompleteMessage}
		}
		if err := requireAbsoluteURL(oauth.TokenEndpoint); err != nil {
			return InitializeConfig{}, &ConfigError{Message: "oauthConfig tokenEndpoint must be an absolute URL", Err: err}
		}
		if _, _, err := jwt.ParsePublicKeyPEM(oauth.PublicKeyPEM); err != nil {
			return InitializeConfig{}, &ConfigError{Message: "oauthConfig publicKeyPem is invalid", Err: err}
		}
		out.OAuthConfig = &oauth
	}

	return out, nil
}

func requireAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New("missing scheme or host")
	}
	return nil
}

/*
====================================
CLIENT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Platform: PlatformAndroid,
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Redact.FingerprintKey = cloneBytes(cfg.Redact.FingerprintKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks the client configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(string(c.Platform)) == "" {
		return errors.New("Platform must be set")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	if len(c.Redact.FingerprintKey) > 64 {
		return errors.New("Redact FingerprintKey must be <= 64 bytes")
	}
	return nil
}
