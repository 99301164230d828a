package saga

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func TestChunkCount(t *testing.T) {
	cases := map[uint64]uint32{
		0:               0,
		1:               1,
		ChunkSize:       1,
		ChunkSize + 1:   2,
		2 * ChunkSize:   2,
		5*ChunkSize - 7: 5,
	}
	for size, want := range cases {
		assert.Equal(t, want, ChunkCount(size), "size %d", size)
	}
}

func pairHash(a, b models.Digest) models.Digest {
	return sha256.Sum256(append(a[:], b[:]...))
}

func TestIntegrityRoot(t *testing.T) {
	one := bytes.Repeat([]byte{1}, ChunkSize)
	two := bytes.Repeat([]byte{2}, ChunkSize)
	three := []byte("tail")

	h1, h2, h3 := sha256.Sum256(one), sha256.Sum256(two), sha256.Sum256(three)

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, models.Digest(sha256.Sum256(nil)), IntegrityRoot(nil))
	})

	t.Run("single chunk is its own digest", func(t *testing.T) {
		assert.Equal(t, HashContent(three), IntegrityRoot(three))
	})

	t.Run("two chunks", func(t *testing.T) {
		data := append(append([]byte{}, one...), two...)
		assert.Equal(t, pairHash(h1, h2), IntegrityRoot(data))
	})

	t.Run("odd chunk is promoted", func(t *testing.T) {
		data := append(append(append([]byte{}, one...), two...), three...)
		assert.Equal(t, pairHash(pairHash(h1, h2), h3), IntegrityRoot(data))
	})
}

func TestHashContent_Deterministic(t *testing.T) {
	assert.Equal(t, HashContent([]byte("abc")), HashContent([]byte("abc")))
	assert.NotEqual(t, HashContent([]byte("abc")), HashContent([]byte("abd")))
}
