package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDAGAddressDerivation(t *testing.T) {
	address, privateKey, err := generateDAG()
	require.NoError(t, err)
	assert.Len(t, address, 40)
	assert.Equal(t, "DAG", address[:3])
	assert.True(t, ValidateDAGAddress(address))
	assert.Len(t, privateKey, 64)
}

func TestDAGAddressAcceptsUnprefixedPublicKey(t *testing.T) {
	// derivation must not depend on whether the caller kept the 04
	// uncompressed-point marker
	const pub = "04a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"

	withPrefix, err := DAGAddressFromPublicKey(pub)
	require.NoError(t, err)
	withoutPrefix, err := DAGAddressFromPublicKey(pub[2:])
	require.NoError(t, err)

	assert.Equal(t, withPrefix, withoutPrefix)
	assert.True(t, ValidateDAGAddress(withPrefix))
}

func TestValidateDAGAddress(t *testing.T) {
	address, _, err := generateDAG()
	require.NoError(t, err)

	cases := map[string]struct {
		address string
		valid   bool
	}{
		"generated":         {address, true},
		"empty":             {"", false},
		"too short":         {"DAG5JL23TzANyohk1enp6VgdBoEBeYFNPpGQ", false},
		"wrong prefix":      {"ETH" + address[3:], false},
		"non-digit parity":  {address[:3] + "x" + address[4:], false},
		"non-base58 tail":   {address[:4] + "0" + address[5:], false},
		"eth style address": {"0x8ba1f109551bD432803012645Ac136ddd64DBA72", false},
	}
	for name, tc := range cases {
		assert.Equal(t, tc.valid, ValidateDAGAddress(tc.address), name)
	}
}
