package digest

import (
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is kept for its 20-byte output
	"golang.org/x/crypto/sha3"
)

const (
	SHA1       = "sha1"
	SHA256     = "sha256"
	SHA3_256   = "sha3-256"
	BLAKE2b160 = "blake2b-160"
	RIPEMD160  = "ripemd160"
	BLAKE3160  = "blake3-160"
	Argon2ID   = "argon2id"

	// Default is the digest used when none is configured.
	Default = SHA1
)

var (
	ErrUnknownDigest = errors.New("unknown digest")
)

// Provider maps an arbitrary byte sequence to a fixed-size digest.
// Implementations are pure and safe for concurrent use.
type Provider interface {
	Name() string
	Size() int
	Sum(data []byte) []byte
}

type funcProvider struct {
	name string
	size int
	sum  func([]byte) []byte
}

func (p *funcProvider) Name() string           { return p.name }
func (p *funcProvider) Size() int              { return p.size }
func (p *funcProvider) Sum(data []byte) []byte { return p.sum(data) }

type options struct {
	argon2 Argon2Params
}

// Option tunes providers that take parameters. Providers without
// parameters ignore it.
type Option func(*options)

// WithArgon2 sets the argon2id cost parameters.
func WithArgon2(p Argon2Params) Option {
	return func(o *options) { o.argon2 = p }
}

var registry = map[string]struct {
	code byte
	new  func(options) Provider
}{
	SHA1: {0x00, func(options) Provider {
		return &funcProvider{SHA1, sha1.Size, func(b []byte) []byte { h := sha1.Sum(b); return h[:] }}
	}},
	SHA256: {0x01, func(options) Provider {
		return &funcProvider{SHA256, sha256.Size, func(b []byte) []byte { h := sha256.Sum256(b); return h[:] }}
	}},
	SHA3_256: {0x02, func(options) Provider {
		return &funcProvider{SHA3_256, 32, func(b []byte) []byte { h := sha3.Sum256(b); return h[:] }}
	}},
	BLAKE2b160: {0x03, func(options) Provider {
		return &funcProvider{BLAKE2b160, 20, blake2b160}
	}},
	RIPEMD160: {0x04, func(options) Provider {
		return &funcProvider{RIPEMD160, ripemd160.Size, func(b []byte) []byte {
			h := ripemd160.New()
			h.Write(b)
			return h.Sum(nil)
		}}
	}},
	BLAKE3160: {0x05, func(options) Provider {
		return &funcProvider{BLAKE3160, 20, blake3160}
	}},
	Argon2ID: {0x06, func(o options) Provider {
		return NewArgon2(o.argon2)
	}},
}

func blake2b160(b []byte) []byte {
	// New only fails for sizes outside 1..64 or keys longer than 64 bytes.
	h, err := blake2b.New(20, nil)
	if err != nil {
		panic(err)
	}
	h.Write(b)
	return h.Sum(nil)
}

func blake3160(b []byte) []byte {
	h := blake3.New()
	h.Write(b)
	out := make([]byte, 20)
	if _, err := h.Digest().Read(out); err != nil {
		panic(err)
	}
	return out
}

// New returns the provider registered under name.
func New(name string, opts ...Option) (Provider, error) {
	entry, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, name)
	}
	o := options{argon2: DefaultArgon2Params()}
	for _, opt := range opts {
		opt(&o)
	}
	return entry.new(o), nil
}

// Names lists the registered digest names in wire-code order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return registry[names[i]].code < registry[names[j]].code
	})
	return names
}

// Code returns the one-byte wire code of a digest name.
func Code(name string) (byte, error) {
	entry, ok := registry[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDigest, name)
	}
	return entry.code, nil
}

// ByCode resolves a wire code back to its digest name.
func ByCode(code byte) (string, error) {
	for name, entry := range registry {
		if entry.code == code {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: code 0x%02x", ErrUnknownDigest, code)
}
