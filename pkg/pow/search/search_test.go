package search

import (
	"bytes"
	"context"
	"encoding/hex"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"powsearch/pkg/pow/digest"
	"powsearch/pkg/pow/fixedwidth"
)

func filled(width int, v byte) []byte {
	return bytes.Repeat([]byte{v}, width)
}

func newSearcher(t *testing.T, cfg Config) *Searcher {
	t.Helper()
	s, err := New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func TestFindNonce(t *testing.T) {
	t.Parallel()

	t.Run("difficulty zero accepts the initial nonce", func(t *testing.T) {
		s := newSearcher(t, Config{Width: 128})

		res, err := s.FindNonce(context.Background(), filled(128, 0x7B), 0)
		require.NoError(t, err)
		assert.Equal(t, fixedwidth.Zero(128), res.Nonce)
		assert.Equal(t, uint64(1), res.Attempts)
	})

	t.Run("smallest nonce is found for a 1024-bit block", func(t *testing.T) {
		s := newSearcher(t, Config{Width: 128})

		res, err := s.FindNonce(context.Background(), filled(128, 0x7B), 8)
		require.NoError(t, err)

		want := fixedwidth.Zero(128)
		want[127] = 42
		assert.Equal(t, want, res.Nonce)
		assert.Equal(t, "00efba277e3434cb64296ddcbf91760d1ca41119", hex.EncodeToString(res.Digest))
		assert.Equal(t, 8, res.LeadingZeros)
		assert.Equal(t, uint64(43), res.Attempts)
	})

	t.Run("short data is zero padded on the left", func(t *testing.T) {
		s := newSearcher(t, Config{Width: 3})

		res, err := s.FindNonce(context.Background(), nil, 16)
		require.NoError(t, err)
		assert.Equal(t, fixedwidth.Block{0x02, 0x56, 0x35}, res.Nonce) // 153141
	})

	t.Run("data wider than the block is rejected", func(t *testing.T) {
		s := newSearcher(t, Config{Width: 2})

		_, err := s.FindNonce(context.Background(), filled(3, 1), 1)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("fully enumerated space ends in exhaustion", func(t *testing.T) {
		s := newSearcher(t, Config{Width: 1})

		res, err := s.FindNonce(context.Background(), filled(1, 0x7B), 10)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrSearchExhausted)
		assert.NotErrorIs(t, err, ErrInvalidDifficulty)
	})

	t.Run("difficulty above the digest width is exhausted without searching", func(t *testing.T) {
		var calls int
		s := newSearcher(t, Config{
			Width:            128,
			ProgressInterval: 1,
			Progress:         func(Progress) { calls++ },
		})

		res, err := s.FindNonce(context.Background(), filled(128, 0x7B), 161)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrSearchExhausted)
		assert.ErrorIs(t, err, ErrInvalidDifficulty)
		assert.Zero(t, calls)
	})

	t.Run("negative difficulty is invalid", func(t *testing.T) {
		s := newSearcher(t, Config{Width: 1})

		_, err := s.FindNonce(context.Background(), nil, -1)
		assert.ErrorIs(t, err, ErrInvalidDifficulty)
		assert.NotErrorIs(t, err, ErrSearchExhausted)
	})

	t.Run("xor combination is a different search", func(t *testing.T) {
		xor, err := CombinerByName("xor")
		require.NoError(t, err)
		s := newSearcher(t, Config{Width: 2, Combine: xor})

		res, err := s.FindNonce(context.Background(), filled(2, 0x7B), 8)
		require.NoError(t, err)
		assert.Equal(t, fixedwidth.Block{0x00, 23}, res.Nonce)

		add := newSearcher(t, Config{Width: 2})
		res, err = add.FindNonce(context.Background(), filled(2, 0x7B), 8)
		require.NoError(t, err)
		assert.Equal(t, fixedwidth.Block{0x00, 131}, res.Nonce)
	})
}

func TestFindNonceCancellation(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{
		{Width: 32},
		{Width: 32, Workers: 4, Strategy: Partitioned},
		{Width: 32, Workers: 4, Strategy: Ordered},
	} {
		cfg := cfg
		t.Run(string(newSearcher(t, cfg).cfg.Strategy), func(t *testing.T) {
			t.Parallel()
			s := newSearcher(t, cfg)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			start := time.Now()
			_, err := s.FindNonce(ctx, filled(32, 0x7B), 150)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Less(t, time.Since(start), 2*time.Second)
		})
	}
}

func TestStrategies(t *testing.T) {
	t.Parallel()

	data := filled(2, 0x7B)

	t.Run("ordered workers report the smallest nonce", func(t *testing.T) {
		s := newSearcher(t, Config{Width: 2, Workers: 4, Strategy: Ordered, ChunkBits: 8})

		res, err := s.FindNonce(context.Background(), data, 12)
		require.NoError(t, err)
		assert.Equal(t, fixedwidth.Block{0x19, 0x6D}, res.Nonce) // 6509
		assert.Equal(t, "000ac7af83377b2e48a784edfe1a55792eb75fe3", hex.EncodeToString(res.Digest))
	})

	t.Run("partitioned workers report a valid nonce", func(t *testing.T) {
		s := newSearcher(t, Config{Width: 2, Workers: 4})
		assert.Equal(t, Partitioned, s.cfg.Strategy)

		res, err := s.FindNonce(context.Background(), data, 12)
		require.NoError(t, err)

		ok, err := s.Verify(data, res.Nonce, 12)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("all strategies exhaust the same empty space", func(t *testing.T) {
		for _, strategy := range []Strategy{Sequential, Partitioned, Ordered} {
			s := newSearcher(t, Config{Width: 1, Workers: 3, Strategy: strategy, ChunkBits: 4})

			_, err := s.FindNonce(context.Background(), filled(1, 0x7B), 10)
			assert.ErrorIs(t, err, ErrSearchExhausted, strategy)
		}
	})

	t.Run("chunks wider than the space fall back to one chunk", func(t *testing.T) {
		s := newSearcher(t, Config{Width: 1, Workers: 2, Strategy: Ordered, ChunkBits: 32})

		res, err := s.FindNonce(context.Background(), filled(1, 0x7B), 0)
		require.NoError(t, err)
		assert.Equal(t, fixedwidth.Block{0x00}, res.Nonce)
	})
}

func TestProgress(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		calls []Progress
	)
	s := newSearcher(t, Config{
		Width:            1,
		ProgressInterval: 64,
		Progress: func(p Progress) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, p)
		},
	})

	_, err := s.FindNonce(context.Background(), filled(1, 0x7B), 10)
	require.ErrorIs(t, err, ErrSearchExhausted)

	require.Len(t, calls, 4)
	assert.Equal(t, uint64(64), calls[0].Attempts)
	assert.Equal(t, fixedwidth.Block{63}, calls[0].Nonce)
	assert.Equal(t, uint64(256), calls[3].Attempts)
}

func TestOrderedProgressSpansChunks(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		calls = map[int][]uint64{}
	)
	s := newSearcher(t, Config{
		Width:            2,
		Workers:          2,
		Strategy:         Ordered,
		ChunkBits:        4,
		ProgressInterval: 32,
		Progress: func(p Progress) {
			mu.Lock()
			defer mu.Unlock()
			calls[p.Worker] = append(calls[p.Worker], p.Attempts)
		},
	})

	_, err := s.FindNonce(context.Background(), filled(2, 0x7B), 160)
	require.ErrorIs(t, err, ErrSearchExhausted)

	total := 0
	for worker, attempts := range calls {
		for i, a := range attempts {
			assert.Equal(t, uint64(32*(i+1)), a, "worker %d", worker)
		}
		total += len(attempts)
	}
	// Each worker's count is a multiple of the chunk size, so at most one
	// interval is lost across both workers.
	assert.GreaterOrEqual(t, total, 1<<16/32-1)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	s := newSearcher(t, Config{Width: 2})
	data := filled(2, 0x7B)

	ok, err := s.Verify(data, []byte{0x00, 131}, 8)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Verify(data, []byte{0x00, 130}, 8)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Verify(data, []byte{131}, 8)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = s.Verify(data, []byte{0x00, 131}, 161)
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Width: -1}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{Width: 1, Strategy: "random"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = CombinerByName("sub")
	assert.ErrorIs(t, err, ErrUnknownCombiner)

	s, err := New(Config{Width: 4}, nil)
	require.NoError(t, err)
	assert.Equal(t, digest.Default, s.Digest().Name())
	assert.Equal(t, 4, s.Width())
	assert.Equal(t, Sequential, s.cfg.Strategy)
}

func TestFindNonceWithOtherDigests(t *testing.T) {
	t.Parallel()

	for _, name := range []string{digest.SHA256, digest.BLAKE3160, digest.Argon2ID} {
		p, err := digest.New(name)
		require.NoError(t, err)
		s := newSearcher(t, Config{Width: 4, Digest: p})

		res, err := s.FindNonce(context.Background(), []byte("pow"), 4)
		require.NoError(t, err, name)

		ok, err := s.Verify([]byte("pow"), res.Nonce, 4)
		require.NoError(t, err)
		assert.True(t, ok, name)
	}
}
