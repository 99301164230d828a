package storage

import (
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// ComputeCID returns the CIDv1 (raw codec, sha2-256) of data, the identifier
// an IPFS node assigns to a single-block payload.
func ComputeCID(data []byte) (string, error) {
	h, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, h).String(), nil
}

// ValidCID reports whether s parses as a CID.
func ValidCID(s string) bool {
	_, err := cid.Decode(s)
	return err == nil
}
