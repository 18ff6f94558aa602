package digest

import (
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA1KnownAnswer(t *testing.T) {
	t.Parallel()

	p, err := New(SHA1)
	require.NoError(t, err)

	want := []byte{
		0x2e, 0xf7, 0xbd, 0xe6, 0x08, 0xce, 0x54, 0x04, 0xe9, 0x7d,
		0x5f, 0x04, 0x2f, 0x95, 0xf8, 0x9f, 0x1c, 0x23, 0x28, 0x71,
	}
	assert.Equal(t, want, p.Sum([]byte("Hello World!")))
}

func TestDefaultDigestBitsFitInAByte(t *testing.T) {
	p, err := New(Default)
	require.NoError(t, err)
	assert.Less(t, p.Size()*8, 256)
}

func TestProviders(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := New(name)
			require.NoError(t, err)
			assert.Equal(t, name, p.Name())

			a := p.Sum([]byte("Hello World!"))
			b := p.Sum([]byte("Hello World!"))
			c := p.Sum([]byte("Hello World?"))

			assert.Len(t, a, p.Size())
			assert.Equal(t, a, b, "digest must be deterministic")
			assert.NotEqual(t, a, c)
		})
	}
}

func TestKnownDigests(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		SHA256:     "7f83b1657ff1fc53b92dc18148a1d65dfc2d4b1fa3d677284addd200126d9069",
		SHA3_256:   "d0e47486bbf4c16acac26f8b653592973c1362909f90262877089f9c8a4536af",
		BLAKE2b160: "e7338d05e5aa2b5e4943389f9475fce2525b92f2",
		RIPEMD160:  "8476ee4631b9b30ac2754b0ee0c47e161d3f724c",
	}
	for name, want := range cases {
		p, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, want, hex.EncodeToString(p.Sum([]byte("Hello World!"))), name)
	}
}

func TestConcurrentSum(t *testing.T) {
	t.Parallel()

	p, err := New(BLAKE3160)
	require.NoError(t, err)
	want := p.Sum([]byte("block"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, want, p.Sum([]byte("block")))
			}
		}()
	}
	wg.Wait()
}

func TestCodes(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		code, err := Code(name)
		require.NoError(t, err)
		back, err := ByCode(code)
		require.NoError(t, err)
		assert.Equal(t, name, back)
	}

	code, err := Code(SHA1)
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), code)

	_, err = New("md5")
	assert.ErrorIs(t, err, ErrUnknownDigest)
	_, err = Code("md5")
	assert.ErrorIs(t, err, ErrUnknownDigest)
	_, err = ByCode(0xEE)
	assert.ErrorIs(t, err, ErrUnknownDigest)
}

func TestArgon2Params(t *testing.T) {
	t.Parallel()

	a := NewArgon2(Argon2Params{Threads: 4})
	assert.Equal(t, uint32(64), a.params.Memory)
	assert.Equal(t, uint32(1), a.params.Time)
	assert.Equal(t, defaultArgon2Salt, a.params.Salt)

	salted := NewArgon2(Argon2Params{Salt: []byte("other salt")})
	assert.NotEqual(t, a.Sum([]byte("x")), salted.Sum([]byte("x")))
}

func TestNewWithArgon2Option(t *testing.T) {
	t.Parallel()

	p, err := New(Argon2ID, WithArgon2(Argon2Params{Time: 2, Memory: 128, Threads: 2}))
	require.NoError(t, err)
	a, ok := p.(*Argon2)
	require.True(t, ok)
	assert.Equal(t, uint32(2), a.params.Time)
	assert.Equal(t, uint32(128), a.params.Memory)
	assert.Equal(t, uint8(2), a.params.Threads)

	def, err := New(Argon2ID)
	require.NoError(t, err)
	assert.NotEqual(t, def.Sum([]byte("x")), p.Sum([]byte("x")))

	// Providers without parameters ignore the option.
	sha, err := New(SHA1, WithArgon2(Argon2Params{Time: 2}))
	require.NoError(t, err)
	assert.Equal(t, SHA1, sha.Name())
}
