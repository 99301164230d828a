package ledger

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"
)

// DefaultProgramID is the ledger program the client talks to unless
// configured otherwise.
const DefaultProgramID = "CxDoRt3Nt5z747KNW6vkVxvQQ7c2dHMmGmoWNmxejA3f"

// Seed namespaces of the program's accounts.
const (
	seedConfig  = "config"
	seedProfile = "user_profile"
	seedFile    = "file"
)

// Address is a base58-encoded ledger account address.
type Address string

// Program derives the addresses of one ledger program's accounts.
type Program struct {
	ID string
}

func NewProgram(id string) Program {
	if id == "" {
		id = DefaultProgramID
	}
	return Program{ID: id}
}

func (p Program) derive(seeds ...string) Address {
	h := sha256.New()
	for _, s := range seeds {
		h.Write([]byte(s))
		// separator keeps ("ab","c") and ("a","bc") apart
		h.Write([]byte{0})
	}
	h.Write([]byte(p.ID))
	h.Write([]byte("ProgramDerivedAddress"))
	return Address(base58.Encode(h.Sum(nil)))
}

func (p Program) ConfigAddress() Address {
	return p.derive(seedConfig)
}

func (p Program) ProfileAddress(owner string) Address {
	return p.derive(seedProfile, owner)
}

func (p Program) FileAddress(owner, name string) Address {
	return p.derive(seedFile, owner, name)
}

// OwnerKeyLen is the decoded length of an owner public key.
const OwnerKeyLen = 32

// ValidateOwner checks that owner is a base58 public key.
func ValidateOwner(owner string) error {
	if owner == "" {
		return Errorf("validate-owner", ErrValidation, "owner is empty")
	}
	raw, err := base58.Decode(owner)
	if err != nil {
		return NewError("validate-owner", ErrValidation, err)
	}
	if len(raw) != OwnerKeyLen {
		return Errorf("validate-owner", ErrValidation, "owner key is %d bytes, want %d", len(raw), OwnerKeyLen)
	}
	return nil
}
