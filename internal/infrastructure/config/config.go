package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string `env:"PORT,        default=8080"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	BodyLimit  string `env:"BODY_LIMIT,  default=10M"`
	CORSOrigin string `env:"CORS_ORIGIN, default=http://localhost:3000"`
	// TrustedProxies lists the CIDRs allowed to set X-Forwarded-For. Empty
	// means the peer address is the client address.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Pinata    PinataConfig
	Ledger    LedgerConfig
	RateLimit RateLimitConfig
	Relink    RelinkConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET, required"`
	JWTTTL     time.Duration `env:"JWT_EXPIRES_IN, default=1h"`
	JWTIssuer  string        `env:"JWT_ISSUER,     default=registrar"`
	BcryptCost int           `env:"BCRYPT_COST,    default=12"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=registrar"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type PinataConfig struct {
	BaseURL   string        `env:"PINATA_API_URL, default=https://api.pinata.cloud"`
	APIKey    string        `env:"PINATA_API_KEY"`
	SecretKey string        `env:"PINATA_SECRET_API_KEY"`
	Timeout   time.Duration `env:"PINATA_TIMEOUT, default=15s"`
}

type LedgerConfig struct {
	RPCURL          string        `env:"BLOCKCHAIN_RPC_URL,     default=http://127.0.0.1:8545"`
	ChainID         int64         `env:"CHAIN_ID,               default=31337"`
	PrivateKey      string        `env:"PRIVATE_KEY"`
	ContractAddress string        `env:"CONTRACT_ADDRESS"`
	GasLimit        uint64        `env:"LEDGER_GAS_LIMIT,       default=500000"`
	SubmitTimeout   time.Duration `env:"LEDGER_SUBMIT_TIMEOUT,  default=30s"`
	ConfirmTimeout  time.Duration `env:"LEDGER_CONFIRM_TIMEOUT, default=2m"`
}

type RateLimitConfig struct {
	Max    int           `env:"RATE_LIMIT_MAX,    default=100"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW, default=15m"`
}

type RelinkConfig struct {
	Workers   int `env:"RELINK_WORKERS,    default=4"`
	QueueSize int `env:"RELINK_QUEUE_SIZE, default=256"`
}

// Development reports whether error details may be exposed to callers.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// TrustedProxyNets returns TrustedProxies parsed. Entries are checked by
// validate, so none are dropped on a loaded Config.
func (c *Config) TrustedProxyNets() []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, cidr := range c.TrustedProxies {
		if _, n, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from an explicit set of variables.
func LoadFrom(ctx context.Context, vars map[string]string) (*Config, error) {
	return load(ctx, envconfig.MapLookuper(vars))
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Auth.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST %d out of range 4..31", c.Auth.BcryptCost))
	}
	if c.Ledger.GasLimit == 0 {
		errs = append(errs, errors.New("LEDGER_GAS_LIMIT must be positive"))
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive"))
	}
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
		}
	}
	if c.Relink.Workers <= 0 {
		errs = append(errs, errors.New("RELINK_WORKERS must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
