package main

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from BBCOPY_* environment variables, flags override it.
type Config struct {
	BlockSize  string `envconfig:"BLOCK_SIZE" default:"64KiB"`
	StripeSize string `envconfig:"STRIPE_SIZE" default:"8MiB"`
	PoolLimit  string `envconfig:"POOL_LIMIT" default:"512MiB"`
	// RateLimit is in bytes per second, 0 disables throttling
	RateLimit string `envconfig:"RATE_LIMIT" default:"0"`
	OutputDir string `envconfig:"OUTPUT_DIR" default:"."`
	Delimiter string `envconfig:"DELIMITER" default:","`
	Debug     bool   `envconfig:"DEBUG" default:"false"`
}

// sizes is Config with every size parsed
type sizes struct {
	blockSize  uint64
	stripeSize uint64
	poolLimit  uint64
	rateLimit  uint64
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("bbcopy", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) parseSizes() (sizes, error) {
	var (
		s   sizes
		err error
	)
	fields := []struct {
		name  string
		value string
		dst   *uint64
	}{
		{"block size", c.BlockSize, &s.blockSize},
		{"stripe size", c.StripeSize, &s.stripeSize},
		{"pool limit", c.PoolLimit, &s.poolLimit},
		{"rate limit", c.RateLimit, &s.rateLimit},
	}
	for _, f := range fields {
		if *f.dst, err = humanize.ParseBytes(f.value); err != nil {
			return sizes{}, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		if *f.dst > math.MaxInt {
			return sizes{}, fmt.Errorf("invalid %s %q: exceeds %d bytes", f.name, f.value, math.MaxInt)
		}
	}
	if s.blockSize == 0 {
		return sizes{}, fmt.Errorf("block size cannot be zero")
	}
	return s, nil
}
