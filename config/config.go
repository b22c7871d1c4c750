// Package config loads protocol parameters from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultMinAtRest is the smallest native-coin quantity every record
	// produced by the protocol carries.
	DefaultMinAtRest = 5_000_000
	// DefaultMinChange is the smallest native-coin change worth returning as
	// a separate output; anything below is absorbed into the seller payment.
	DefaultMinChange = 1_000_000
	// DefaultEscrowDeposit is the fixed buyer deposit locked with every
	// escrow-routed swap.
	DefaultEscrowDeposit = 5_000_000
	// DefaultRefundDelay is how long an escrow deposit stays locked before
	// the buyer may reclaim it, in seconds.
	DefaultRefundDelay = 24 * 60 * 60
	// DefaultNetworkName names the local development network.
	DefaultNetworkName = "openswap-local"
)

type Config struct {
	MinAtRest     int64  `toml:"MinAtRest"`
	MinChange     int64  `toml:"MinChange"`
	EscrowDeposit int64  `toml:"EscrowDeposit"`
	RefundDelay   int64  `toml:"RefundDelay"`
	NetworkName   string `toml:"NetworkName"`
	DataDir       string `toml:"DataDir"`
}

// Load loads the configuration from the given path. A missing file is
// created with defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if cfg.MinAtRest == 0 {
		cfg.MinAtRest = DefaultMinAtRest
	}
	if cfg.MinChange == 0 {
		cfg.MinChange = DefaultMinChange
	}
	if cfg.EscrowDeposit == 0 {
		cfg.EscrowDeposit = DefaultEscrowDeposit
	}
	if cfg.RefundDelay == 0 {
		cfg.RefundDelay = DefaultRefundDelay
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = DefaultNetworkName
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./openswap-data"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects parameter sets that cannot produce valid records.
func (c *Config) Validate() error {
	if c.MinAtRest <= 0 {
		return fmt.Errorf("config: MinAtRest must be positive, got %d", c.MinAtRest)
	}
	if c.MinChange <= 0 {
		return fmt.Errorf("config: MinChange must be positive, got %d", c.MinChange)
	}
	if c.EscrowDeposit < c.MinAtRest {
		return fmt.Errorf("config: EscrowDeposit %d below MinAtRest %d", c.EscrowDeposit, c.MinAtRest)
	}
	if c.RefundDelay <= 0 {
		return fmt.Errorf("config: RefundDelay must be positive, got %d", c.RefundDelay)
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		MinAtRest:     DefaultMinAtRest,
		MinChange:     DefaultMinChange,
		EscrowDeposit: DefaultEscrowDeposit,
		RefundDelay:   DefaultRefundDelay,
		NetworkName:   DefaultNetworkName,
		DataDir:       "./openswap-data",
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}
