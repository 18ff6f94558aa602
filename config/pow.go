package config

import (
	"errors"
	"fmt"

	"powsearch/pkg/pow/difficulty"
	"powsearch/pkg/pow/digest"
	"powsearch/pkg/pow/search"
)

// MaxWidth bounds the block width a server hands out or a client accepts.
const MaxWidth = 4096

var (
	ErrInvalidWidth = errors.New("invalid block width")
	ErrNoDigests    = errors.New("no digests configured")
)

type Pow struct {
	Difficulty int      `yaml:"difficulty" env:"POW_DIFFICULTY" env-default:"16" env-description:"required leading zero bits"`
	Width      int      `yaml:"width" env:"POW_WIDTH" env-default:"32" env-description:"data and nonce width in bytes"`
	Digests    []string `yaml:"digests" env:"POW_DIGESTS" env-default:"sha1" env-separator:"," env-description:"digests to choose from"`
	Combine    string   `yaml:"combine" env:"POW_COMBINE" env-default:"add" env-description:"add or xor"`
	Workers    int      `yaml:"workers" env:"POW_WORKERS" env-default:"1"`
	Strategy   string   `yaml:"strategy" env:"POW_STRATEGY" env-description:"sequential, partitioned or ordered"`
	ChunkBits  int      `yaml:"chunk_bits" env:"POW_CHUNK_BITS" env-default:"16"`

	// Argon2 costs apply to the argon2id digest only. Server and client
	// must agree on them.
	Argon2Time    uint32 `yaml:"argon2_time" env:"POW_ARGON2_TIME" env-default:"1" env-description:"argon2id passes"`
	Argon2Memory  uint32 `yaml:"argon2_memory" env:"POW_ARGON2_MEMORY" env-default:"64" env-description:"argon2id memory in KiB"`
	Argon2Threads uint8  `yaml:"argon2_threads" env:"POW_ARGON2_THREADS" env-default:"1"`
}

// DigestOptions returns the provider parameters carried by p.
func (p Pow) DigestOptions() []digest.Option {
	return []digest.Option{
		digest.WithArgon2(digest.Argon2Params{
			Time:    p.Argon2Time,
			Memory:  p.Argon2Memory,
			Threads: p.Argon2Threads,
		}),
	}
}

// Validate checks the settings against each other. The difficulty has to
// be reachable with every configured digest.
func (p Pow) Validate() error {
	if p.Width < 1 || p.Width > MaxWidth {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidWidth, p.Width, MaxWidth)
	}
	if len(p.Digests) == 0 {
		return ErrNoDigests
	}
	for _, name := range p.Digests {
		d, err := digest.New(name, p.DigestOptions()...)
		if err != nil {
			return err
		}
		if err := difficulty.Validate(p.Difficulty, d.Size()); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if _, err := search.CombinerByName(p.Combine); err != nil {
		return err
	}
	switch search.Strategy(p.Strategy) {
	case "", search.Sequential, search.Partitioned, search.Ordered:
	default:
		return fmt.Errorf("%w: strategy %q", search.ErrInvalidConfig, p.Strategy)
	}
	return nil
}
