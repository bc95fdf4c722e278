package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	kp, err := GenerateKey()
	require.NoError(t, err)

	pub, err := ParseAddress(kp.Address())
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, pub)
}

func TestParseAddressRejectsGarbage(t *testing.T) {
	_, err := ParseAddress("0OIl")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ParseAddress(ToAddress([]byte("too short")))
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
