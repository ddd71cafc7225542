package config

import (
	"log/slog"
	"time"

	"github.com/caasmo/daybook/crypto"
)

// NewDefaultConfig creates a Config with sensible defaults.
// Secret values are randomly generated.
func NewDefaultConfig() *Config {
	return &Config{
		Server: Server{
			Addr:                    ":8090",
			ReadTimeout:             Duration{Duration: 2 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 2 * time.Second},
			WriteTimeout:            Duration{Duration: 3 * time.Second},
			IdleTimeout:             Duration{Duration: 1 * time.Minute},
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
		},
		Jwt: Jwt{
			AuthSecret:        crypto.RandomString(32, crypto.AlphanumericAlphabet),
			AuthTokenDuration: Duration{Duration: 45 * time.Minute},
		},
		Backend: Backend{
			UpsertMaxRetry: 3,
			UpsertInterval: Duration{Duration: 500 * time.Millisecond},
		},
		Session: Session{
			DbPath:      "daybook.db",
			CallTimeout: Duration{Duration: 10 * time.Second},
		},
		OAuth2Providers: map[string]OAuth2Provider{
			OAuth2ProviderGoogle: {
				Name:        OAuth2ProviderGoogle,
				DisplayName: "Google",
				RedirectURL: "http://localhost:8090/api/oauth2-callback",
				AuthURL:     "https://accounts.google.com/o/oauth2/auth",
				TokenURL:    "https://oauth2.googleapis.com/token",
				UserInfoURL: "https://www.googleapis.com/oauth2/v3/userinfo",
				Scopes:      []string{"openid", "profile", "email"},
				PKCE:        true,
			},
		},
		Log: Log{
			Level: LogLevel{Level: slog.LevelInfo},
			Request: LogRequest{
				Activated:       true,
				URILength:       512, // Minimum: 64
				UserAgentLength: 256, // Minimum: 32
				RefererLength:   256,
				RemoteIPLength:  64, // Minimum: 15
			},
		},
		Metrics: Metrics{
			Activated: true,
		},
		BlockIp: BlockIp{
			Activated: false,
			TickSize:  1000,
		},
		BackupLocal: BackupLocal{
			Activated: false,
			BackupDir: "backups",
			Interval:  Duration{Duration: 6 * time.Hour},
		},
		QuickCode: QuickCode{
			CacheTTL: Duration{Duration: 5 * time.Minute},
		},
	}
}
