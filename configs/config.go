package configs

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/tonsurance/vault"
)

// Config represents the entire configuration structure from config.yml.
type Config struct {
	Tranches     map[string]TrancheYAMLData `yaml:"tranches"`
	Capabilities CapabilitiesYAMLData       `yaml:"capabilities"`
	VaultYAML    VaultYAMLData              `yaml:"vault"`
	DSN          string                     `yaml:"dsn"`
}

// TrancheYAMLData represents one tranche's configuration from YAML, keyed
// by tranche name ("BTC", "SNR", "MEZZ", "JNR", "JNR_PLUS", "EQT").
type TrancheYAMLData struct {
	ApyMinBps      uint16  `yaml:"apy_min_bps"`
	ApyMaxBps      uint16  `yaml:"apy_max_bps"`
	CurveID        uint8   `yaml:"curve_id"`
	AllocationBps  uint32  `yaml:"allocation_bps"`
	CapMultiplier  float64 `yaml:"cap_multiplier"`
	LPTokenAddress string  `yaml:"lp_token_address"`
}

// trancheNameToID maps config.yml's tranche section keys to their
// vault.TrancheID, mirroring vault.TrancheID.String()'s inverse.
var trancheNameToID = map[string]vault.TrancheID{
	"BTC":      vault.BTC,
	"SNR":      vault.SNR,
	"MEZZ":     vault.MEZZ,
	"JNR":      vault.JNR,
	"JNR_PLUS": vault.JNRPlus,
	"EQT":      vault.EQT,
}

// CapabilitiesYAMLData holds the capability addresses authorized against
// the vault's admin-gated entry points.
type CapabilitiesYAMLData struct {
	Admin           string   `yaml:"admin"`
	ClaimsProcessor string   `yaml:"claims_processor"`
	Factories       []string `yaml:"factories"`
}

// VaultYAMLData holds the vault's tuning parameters.
type VaultYAMLData struct {
	MinDepositGas               uint64 `yaml:"min_deposit_gas"`
	TrancheLockSeconds          int    `yaml:"tranche_lock_seconds"`
	MaxBounceRetries            int    `yaml:"max_bounce_retries"`
	CircuitBreakerWindowSeconds int    `yaml:"circuit_breaker_window_seconds"`
	CircuitBreakerBps           int    `yaml:"circuit_breaker_bps"`
	EventBuffer                 int    `yaml:"event_buffer"`
}

// LoadConfig reads and parses config.yml into a Config struct.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &config, nil
}

// ToVaultConfig converts the loaded YAML into a vault.Config. epoch is the
// protocol epoch NAV curves are measured from; it is not itself persisted
// in config.yml since it is set once at genesis.
func (c *Config) ToVaultConfig(epoch time.Time) vault.Config {
	factories := make([]vault.Address, 0, len(c.Capabilities.Factories))
	for _, addr := range c.Capabilities.Factories {
		factories = append(factories, common.HexToAddress(addr))
	}

	eventBuffer := c.VaultYAML.EventBuffer
	if eventBuffer == 0 {
		eventBuffer = 256
	}

	trancheOverrides := make(map[vault.TrancheID]vault.TrancheSpec, len(c.Tranches))
	for name, data := range c.Tranches {
		id, ok := trancheNameToID[name]
		if !ok {
			continue
		}
		spec := vault.TrancheSpec{
			CurveID:       vault.CurveID(data.CurveID),
			ApyMinBps:     data.ApyMinBps,
			ApyMaxBps:     data.ApyMaxBps,
			AllocationBps: data.AllocationBps,
			CapMultiplier: data.CapMultiplier,
		}
		if data.LPTokenAddress != "" {
			spec.LPTokenRef = common.HexToAddress(data.LPTokenAddress)
		}
		trancheOverrides[id] = spec
	}

	return vault.Config{
		Admin:                common.HexToAddress(c.Capabilities.Admin),
		ClaimsProcessor:      common.HexToAddress(c.Capabilities.ClaimsProcessor),
		Factories:            factories,
		MinDepositGas:        c.VaultYAML.MinDepositGas,
		Epoch:                epoch,
		EventBuffer:          eventBuffer,
		TrancheOverrides:     trancheOverrides,
		TrancheLockDuration:  time.Duration(c.VaultYAML.TrancheLockSeconds) * time.Second,
		MaxBounceRetries:     c.VaultYAML.MaxBounceRetries,
		CircuitBreakerWindow: time.Duration(c.VaultYAML.CircuitBreakerWindowSeconds) * time.Second,
		CircuitBreakerBps:    uint32(c.VaultYAML.CircuitBreakerBps),
	}
}
