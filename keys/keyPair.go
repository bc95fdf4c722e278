package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"

	"github.com/btcsuite/btcutil/base58"
)

var ErrInvalidAddress = errors.New("invalid account address")

type KeyPair struct {
	ed25519.PrivateKey
	ed25519.PublicKey
}

func GenerateKey() (*KeyPair, error) {
	pk, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	return &KeyPair{
		sk, pk,
	}, nil
}

// Address is the account identifier used for sender and recipient.
func (kp *KeyPair) Address() string {
	return ToAddress(kp.PublicKey)
}

func ToAddress(pubKey ed25519.PublicKey) string {
	return base58.Encode(pubKey)
}

func ParseAddress(address string) (ed25519.PublicKey, error) {
	raw := base58.Decode(address)
	if len(raw) != ed25519.PublicKeySize {
		return nil, ErrInvalidAddress
	}
	return ed25519.PublicKey(raw), nil
}
