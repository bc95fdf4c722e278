package common

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"os"
)

func Encode(data interface{}) ([]byte, error) {
	buff := new(bytes.Buffer)
	encoder := json.NewEncoder(buff)
	err := encoder.Encode(data)
	if err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

func Decode[T interface{}](bs []byte) (*T, error) {
	buff := new(bytes.Buffer)
	var data T
	buff.Write(bs)
	decoder := json.NewDecoder(buff)
	err := decoder.Decode(&data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Canonical is the compact json form used for hashing and signing.
// Field order follows struct declaration order.
func Canonical(data interface{}) ([]byte, error) {
	return json.Marshal(data)
}

func FindAll[T interface{}](
	s []T, f func(e T) bool,
) []T {
	found := []T{}
	for _, elem := range s {
		if f(elem) {
			found = append(found, elem)
		}
	}
	return found
}

func ExistFile(name string) bool {
	_, err := os.Stat(name)
	return !os.IsNotExist(err)
}

func QuickVerify(sig []byte, pubKey []byte, content []byte) bool {
	if len(pubKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pubKey, content, sig)
}
