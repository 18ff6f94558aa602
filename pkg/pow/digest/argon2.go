package digest

/*
	Argon2id as a digest:

	Argon2 is a memory-hard key derivation function. Used as the digest of
	a proof-of-work it makes every nonce attempt cost memory as well as CPU,
	which takes away most of the advantage of GPUs and ASICs.

	The nonce search needs a pure function of the combined block, so the
	salt is fixed per configuration instead of random per call, and the key
	length is pinned to 20 bytes so difficulties mean the same thing as for
	sha1. Memory and time cost are tunable; the defaults are small enough
	that a low difficulty still solves in well under a second.
*/

import (
	"golang.org/x/crypto/argon2"
)

const (
	argon2KeyLength = 20 // Same width as sha1
	argon2Time      = 1  // Number of passes (time cost)
	argon2Memory    = 64 // KiB per attempt
	argon2Threads   = 1
)

var defaultArgon2Salt = []byte("powsearch/argon2")

// Argon2Params configures the memory-bound digest.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	Salt    []byte
}

func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    argon2Time,
		Memory:  argon2Memory,
		Threads: argon2Threads,
		Salt:    defaultArgon2Salt,
	}
}

// Argon2 is a Provider backed by argon2.IDKey.
type Argon2 struct {
	params Argon2Params
}

// NewArgon2 returns an Argon2 provider. Zero fields fall back to defaults.
func NewArgon2(p Argon2Params) *Argon2 {
	def := DefaultArgon2Params()
	if p.Time == 0 {
		p.Time = def.Time
	}
	if p.Threads == 0 {
		p.Threads = def.Threads
	}
	// argon2 needs at least 8 KiB per lane.
	if p.Memory < 8*uint32(p.Threads) {
		p.Memory = max(def.Memory, 8*uint32(p.Threads))
	}
	if len(p.Salt) == 0 {
		p.Salt = def.Salt
	}
	return &Argon2{params: p}
}

func (a *Argon2) Name() string { return Argon2ID }

func (a *Argon2) Size() int { return argon2KeyLength }

func (a *Argon2) Sum(data []byte) []byte {
	return argon2.IDKey(data, a.params.Salt, a.params.Time, a.params.Memory, a.params.Threads, argon2KeyLength)
}
