package ledger

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgram_AddressesAreDeterministic(t *testing.T) {
	t.Parallel()

	p := NewProgram("")
	assert.Equal(t, DefaultProgramID, p.ID)

	assert.Equal(t, p.ConfigAddress(), p.ConfigAddress())
	assert.Equal(t, p.ProfileAddress("alice"), NewProgram(DefaultProgramID).ProfileAddress("alice"))
	assert.Equal(t, p.FileAddress("alice", "a.txt"), p.FileAddress("alice", "a.txt"))
}

func TestProgram_AddressesAreDistinct(t *testing.T) {
	t.Parallel()

	p := NewProgram("")
	seen := map[Address]string{}
	for name, a := range map[string]Address{
		"config":        p.ConfigAddress(),
		"profile alice": p.ProfileAddress("alice"),
		"profile bob":   p.ProfileAddress("bob"),
		"file alice a":  p.FileAddress("alice", "a"),
		"file bob a":    p.FileAddress("bob", "a"),
		"file ab c":     p.FileAddress("ab", "c"),
		"file a bc":     p.FileAddress("a", "bc"),
		"other program": NewProgram("other").ConfigAddress(),
	} {
		if prev, dup := seen[a]; dup {
			t.Fatalf("%s and %s derive the same address %s", prev, name, a)
		}
		seen[a] = name
	}
}

func TestProgram_AddressIsBase58Digest(t *testing.T) {
	t.Parallel()

	raw, err := base58.Decode(string(NewProgram("").FileAddress("alice", "a.txt")))
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestValidateOwner(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateOwner("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"))

	for _, bad := range []string{"", "alice", "0OIl", base58.Encode([]byte("short"))} {
		err := ValidateOwner(bad)
		assert.ErrorIs(t, err, ErrValidation, "owner %q", bad)
	}
}
