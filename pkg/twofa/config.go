package twofa

import (
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

var (
	cfg  Config
	once sync.Once
)

// Config holds the lifecycle settings. All fields have working defaults;
// EncryptionKey is optional and, when set, must be a base64-encoded 32-byte
// AES-256 key used to encrypt secrets before they reach the credential store.
type Config struct {
	Issuer            string        `env:"TWOFA_ISSUER" envDefault:"guardkit"`                // Service name shown in authenticator apps
	PendingSetupTTL   time.Duration `env:"TWOFA_PENDING_SETUP_TTL" envDefault:"10m"`          // How long an unconfirmed secret stays valid
	RecoveryCodeCount int           `env:"TWOFA_RECOVERY_CODE_COUNT" envDefault:"8"`          // Recovery codes issued per enable
	QRCodeSize        int           `env:"TWOFA_QR_CODE_SIZE" envDefault:"256"`               // Provisioning QR size in pixels
	SetupLimit        int           `env:"TWOFA_SETUP_RATE_LIMIT" envDefault:"5"`             // Setup requests per identity per window
	ConfirmLimit      int           `env:"TWOFA_CONFIRM_RATE_LIMIT" envDefault:"5"`           // Confirm attempts per identity per window
	DisableLimit      int           `env:"TWOFA_DISABLE_RATE_LIMIT" envDefault:"5"`           // Disable/rotate attempts per identity per window
	RateLimitWindow   time.Duration `env:"TWOFA_RATE_LIMIT_WINDOW" envDefault:"1m"`           // Fixed rate-limit window size
	EncryptionKey     string        `env:"TWOFA_ENCRYPTION_KEY"`                              // Optional base64 AES-256 key for secrets at rest
}

// LoadConfig parses the configuration from environment variables once per
// process and returns the cached result on subsequent calls.
func LoadConfig() (Config, error) {
	var err error
	once.Do(func() {
		err = env.Parse(&cfg)
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// withDefaults fills zero-valued fields for configs built in code rather
// than parsed from the environment.
func (c Config) withDefaults() Config {
	if c.PendingSetupTTL <= 0 {
		c.PendingSetupTTL = 10 * time.Minute
	}
	if c.RecoveryCodeCount <= 0 {
		c.RecoveryCodeCount = 8
	}
	if c.QRCodeSize <= 0 {
		c.QRCodeSize = 256
	}
	if c.SetupLimit <= 0 {
		c.SetupLimit = 5
	}
	if c.ConfirmLimit <= 0 {
		c.ConfirmLimit = 5
	}
	if c.DisableLimit <= 0 {
		c.DisableLimit = 5
	}
	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = time.Minute
	}
	return c
}
