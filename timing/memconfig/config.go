// Package memconfig holds the JSON-backed configuration for a run: the
// register-file size and the data cache's geometry and miss latency.
// Unlike the teacher's timing/latency package, this configures memory
// wait behavior rather than per-opcode execution latency — the core's
// own stage latency is always one cycle per stage (spec §9); the only
// variable timing in the system is the data memory's hit/miss behavior.
package memconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/p5core/memsys"
	"github.com/sarchlab/p5core/timing/cache"
)

// Config is the complete configuration for one simulator run.
type Config struct {
	// RegCount is the register file's size. Default: 32.
	RegCount int `json:"reg_count"`

	// CacheSize is the data cache's total capacity in bytes. Default: 1024.
	CacheSize int `json:"cache_size"`

	// CacheAssociativity is the data cache's set associativity. Default: 2.
	CacheAssociativity int `json:"cache_associativity"`

	// CacheBlockSize is the data cache's line size in bytes. Default: 16.
	CacheBlockSize int `json:"cache_block_size"`

	// CacheHitLatency is the number of cycles a resident access takes.
	// Default: 1.
	CacheHitLatency uint64 `json:"cache_hit_latency"`

	// CacheMissLatency is the number of additional cycles a data memory
	// access reports mem_wait before resolving. Default: 4.
	CacheMissLatency uint64 `json:"cache_miss_latency"`
}

// Default returns the simulator's default configuration.
func Default() *Config {
	return &Config{
		RegCount:           memsys.DefaultRegCount,
		CacheSize:          1024,
		CacheAssociativity: 2,
		CacheBlockSize:     16,
		CacheHitLatency:    1,
		CacheMissLatency:   4,
	}
}

// CacheConfig projects the relevant fields into a timing/cache.Config.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Size:          c.CacheSize,
		Associativity: c.CacheAssociativity,
		BlockSize:     c.CacheBlockSize,
		HitLatency:    c.CacheHitLatency,
		MissLatency:   c.CacheMissLatency,
	}
}

// Load reads a Config from a JSON file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read memory config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse memory config: %w", err)
	}

	return cfg, nil
}

// Save writes a Config to a JSON file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize memory config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write memory config file: %w", err)
	}

	return nil
}

// Validate checks that every field is within a usable range.
func (c *Config) Validate() error {
	if c.RegCount <= 0 {
		return fmt.Errorf("reg_count must be > 0")
	}
	if c.CacheSize == 0 {
		return fmt.Errorf("cache_size must be > 0")
	}
	if c.CacheAssociativity == 0 {
		return fmt.Errorf("cache_associativity must be > 0")
	}
	if c.CacheBlockSize == 0 {
		return fmt.Errorf("cache_block_size must be > 0")
	}
	if c.CacheHitLatency == 0 {
		return fmt.Errorf("cache_hit_latency must be > 0")
	}
	if c.CacheMissLatency == 0 {
		return fmt.Errorf("cache_miss_latency must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
