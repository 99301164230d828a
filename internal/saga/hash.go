package saga

import (
	"crypto/sha256"
	"math"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
)

// ChunkSize is the unit the ledger counts file chunks in.
const ChunkSize = 1 << 20

// HashContent returns the SHA-256 digest of data.
func HashContent(data []byte) models.Digest {
	return sha256.Sum256(data)
}

// ChunkCount returns ceil(size / ChunkSize). An empty file has zero chunks,
// which the ledger rejects.
func ChunkCount(size uint64) uint32 {
	n := (size + ChunkSize - 1) / ChunkSize
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

// IntegrityRoot returns the binary SHA-256 Merkle root over the digests of
// the ChunkSize chunks of data. An odd node at any level is promoted
// unchanged. Empty data yields the digest of no bytes.
func IntegrityRoot(data []byte) models.Digest {
	if len(data) == 0 {
		return HashContent(nil)
	}

	level := make([]models.Digest, 0, ChunkCount(uint64(len(data))))
	for off := 0; off < len(data); off += ChunkSize {
		end := min(off+ChunkSize, len(data))
		level = append(level, sha256.Sum256(data[off:end]))
	}

	for len(level) > 1 {
		next := level[:0:0]
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			var pair [2 * sha256.Size]byte
			copy(pair[:sha256.Size], level[i][:])
			copy(pair[sha256.Size:], level[i+1][:])
			next = append(next, sha256.Sum256(pair[:]))
		}
		level = next
	}
	return level[0]
}
