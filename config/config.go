package config

import (
	"errors"
	"fmt"
	"offline-reconciler-go/keys"
	"offline-reconciler-go/transactions"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ENV_PREFIX = "RECONCILER"

	LEDGER_MEMORY  = "memory"
	LEDGER_HORIZON = "horizon"
)

type Config struct {
	Node      NodeConfig      `mapstructure:"node"`
	Mining    MiningConfig    `mapstructure:"mining"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
}

type NodeConfig struct {
	Id      string `mapstructure:"id"`
	Port    string `mapstructure:"port"`
	DataDir string `mapstructure:"data_dir"`
	// verify transaction signatures on ingestion
	VerifySignatures bool `mapstructure:"verify_signatures"`
}

type MiningConfig struct {
	Difficulty int `mapstructure:"difficulty"`
	Workers    int `mapstructure:"workers"`
}

type ReconcileConfig struct {
	Workers       int           `mapstructure:"workers"`
	SubmitTimeout time.Duration `mapstructure:"submit_timeout"`
	SubmitRate    float64       `mapstructure:"submit_rate"` // submissions per second, 0 disables
	SubmitBurst   int           `mapstructure:"submit_burst"`
	HaltOnFailure bool          `mapstructure:"halt_on_failure"`
	SyncInterval  time.Duration `mapstructure:"sync_interval"`
}

type ResolverConfig struct {
	IdTieBreak bool `mapstructure:"id_tie_break"`
}

type LedgerConfig struct {
	Kind       string        `mapstructure:"kind"` // memory | horizon
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
	// opening balances of the memory ledger
	Fund []FundingConfig `mapstructure:"fund"`
}

type FundingConfig struct {
	Address string `mapstructure:"address"`
	Amount  string `mapstructure:"amount"` // decimal, up to 7 places
}

// Funding parses the opening balances, summing repeated addresses.
func (l *LedgerConfig) Funding() (map[string]uint64, error) {
	funding := map[string]uint64{}
	for i, f := range l.Fund {
		_, err := keys.ParseAddress(f.Address)
		if err != nil {
			return nil, fmt.Errorf("ledger.fund[%d]: %w", i, err)
		}
		amount, err := transactions.ParseAmount(f.Amount)
		if err != nil {
			return nil, fmt.Errorf("ledger.fund[%d]: %w", i, err)
		}
		if funding[f.Address]+amount < amount {
			return nil, fmt.Errorf("ledger.fund[%d]: balance overflows", i)
		}
		funding[f.Address] += amount
	}
	return funding, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("node.id", "reconciler")
	v.SetDefault("node.port", "3000")
	v.SetDefault("node.data_dir", ".")
	v.SetDefault("node.verify_signatures", true)
	v.SetDefault("mining.difficulty", 3)
	v.SetDefault("mining.workers", 4)
	v.SetDefault("reconcile.workers", 4)
	v.SetDefault("reconcile.submit_timeout", "30s")
	v.SetDefault("reconcile.submit_rate", 10.0)
	v.SetDefault("reconcile.submit_burst", 1)
	v.SetDefault("reconcile.halt_on_failure", false)
	v.SetDefault("reconcile.sync_interval", "30s")
	v.SetDefault("resolver.id_tie_break", true)
	v.SetDefault("ledger.kind", LEDGER_MEMORY)
	v.SetDefault("ledger.base_url", "")
	v.SetDefault("ledger.timeout", "30s")
	v.SetDefault("ledger.retry_count", 2)
}

// Load reads the optional config file at path; RECONCILER_* env vars override it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(path) != 0 {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Validate() error {
	if len(c.Node.Id) == 0 {
		return errors.New("node.id is empty")
	}
	if c.Mining.Difficulty < 0 || c.Mining.Difficulty > 63 {
		return fmt.Errorf("mining.difficulty %d out of range 0..63", c.Mining.Difficulty)
	}
	if c.Reconcile.Workers <= 0 {
		return errors.New("reconcile.workers must be positive")
	}
	if c.Reconcile.SubmitTimeout <= 0 {
		return errors.New("reconcile.submit_timeout must be positive")
	}
	if c.Reconcile.SubmitRate < 0 {
		return errors.New("reconcile.submit_rate must not be negative")
	}
	switch c.Ledger.Kind {
	case LEDGER_MEMORY:
		if _, err := c.Ledger.Funding(); err != nil {
			return err
		}
	case LEDGER_HORIZON:
		if len(c.Ledger.BaseURL) == 0 {
			return errors.New("ledger.base_url is required for the horizon ledger")
		}
	default:
		return fmt.Errorf("unknown ledger.kind %q", c.Ledger.Kind)
	}
	return nil
}
