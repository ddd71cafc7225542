package config

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	OAuth2ProviderGoogle = "google"
)

// Duration wraps time.Duration so it can be written as "45m" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LogLevel wraps slog.Level for TOML ("DEBUG", "INFO", "WARN", "ERROR").
type LogLevel struct {
	slog.Level
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	return l.Level.UnmarshalText(text)
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return l.Level.MarshalText()
}

type Server struct {
	Addr                    string   `toml:"addr"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
}

type Jwt struct {
	// AuthSecret signs the facade tokens handed to the browser UI.
	AuthSecret        string   `toml:"auth_secret" envconfig:"DAYBOOK_JWT_AUTH_SECRET"`
	AuthTokenDuration Duration `toml:"auth_token_duration"`
}

// Backend points at the hosted service database. Only stored procedures
// and per-user tables are touched, the schema itself is not ours.
type Backend struct {
	URL            string   `toml:"url" envconfig:"DAYBOOK_BACKEND_URL"`
	UpsertMaxRetry uint64   `toml:"upsert_max_retry"`
	UpsertInterval Duration `toml:"upsert_interval"`
}

type Session struct {
	// DbPath is the sqlite file holding the persisted identity and
	// provider tokens.
	DbPath string `toml:"db_path"`
	// CallTimeout bounds every remote call a session operation makes.
	CallTimeout Duration `toml:"call_timeout"`
}

type OAuth2Provider struct {
	Name         string   `toml:"name"`
	DisplayName  string   `toml:"display_name"`
	ClientID     string   `toml:"client_id" envconfig:"DAYBOOK_OAUTH2_GOOGLE_CLIENT_ID"`
	ClientSecret string   `toml:"client_secret" envconfig:"DAYBOOK_OAUTH2_GOOGLE_CLIENT_SECRET"`
	RedirectURL  string   `toml:"redirect_url"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	UserInfoURL  string   `toml:"user_info_url"`
	Scopes       []string `toml:"scopes"`
	PKCE         bool     `toml:"pkce"`
}

type LogRequest struct {
	Activated       bool `toml:"activated"`
	URILength       int  `toml:"uri_length"`
	UserAgentLength int  `toml:"user_agent_length"`
	RefererLength   int  `toml:"referer_length"`
	RemoteIPLength  int  `toml:"remote_ip_length"`
}

type Log struct {
	Level   LogLevel   `toml:"level"`
	Request LogRequest `toml:"request"`
}

type Metrics struct {
	Activated bool `toml:"activated"`
}

type BlockIp struct {
	Activated bool `toml:"activated"`
	// TickSize is the number of requests between sketch ticks.
	TickSize uint64 `toml:"tick_size"`
}

type BackupLocal struct {
	Activated bool     `toml:"activated"`
	BackupDir string   `toml:"backup_dir"`
	Interval  Duration `toml:"interval"`
}

type Notifier struct {
	// Discord webhook URL, empty disables audit notifications.
	WebhookURL string `toml:"webhook_url" envconfig:"DAYBOOK_NOTIFIER_WEBHOOK_URL"`
}

type QuickCode struct {
	// CacheTTL bounds the facade-level response cache. The session
	// manager itself still performs one remote read per lookup.
	CacheTTL Duration `toml:"cache_ttl"`
}

type Config struct {
	Server          Server                    `toml:"server"`
	Jwt             Jwt                       `toml:"jwt"`
	Backend         Backend                   `toml:"backend"`
	Session         Session                   `toml:"session"`
	OAuth2Providers map[string]OAuth2Provider `toml:"oauth2_providers"`
	Log             Log                       `toml:"log"`
	Metrics         Metrics                   `toml:"metrics"`
	BlockIp         BlockIp                   `toml:"block_ip"`
	BackupLocal     BackupLocal               `toml:"backup_local"`
	Notifier        Notifier                  `toml:"notifier"`
	QuickCode       QuickCode                 `toml:"quick_code"`
}
