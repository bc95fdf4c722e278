package wallets

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"offline-reconciler-go/common"
	"offline-reconciler-go/keys"
	"offline-reconciler-go/transactions"
	"os"
	"path/filepath"
)

const (
	KEYPAIR_FILE = "%s_keypair.key"
)

type Wallet struct {
	keyPair *keys.KeyPair
}

// NewWallet loads the keypair stored under dir, creating one on first use.
func NewWallet(dir string, name string) (*Wallet, error) {
	keyFile := filepath.Join(dir, fmt.Sprintf(KEYPAIR_FILE, name))
	if common.ExistFile(keyFile) {
		f, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, err
		}
		key, err := common.Decode[keys.KeyPair](f)
		if err != nil {
			return nil, err
		}
		return FromKeyPair(key), nil
	}

	key, err := keys.GenerateKey()
	if err != nil {
		return nil, err
	}
	enc, err := common.Encode(key)
	if err != nil {
		return nil, err
	}
	err = os.WriteFile(keyFile, enc, 0600)
	if err != nil {
		return nil, err
	}
	return FromKeyPair(key), nil
}

func FromKeyPair(kp *keys.KeyPair) *Wallet {
	return &Wallet{keyPair: kp}
}

func (w *Wallet) PublicKey() ed25519.PublicKey {
	return w.keyPair.PublicKey
}

func (w *Wallet) Address() string {
	return w.keyPair.Address()
}

func (w *Wallet) SignTransaction(tx *transactions.Transaction) error {
	if tx.Sender != w.Address() {
		return fmt.Errorf("wallet %s cannot sign for %s", w.Address(), tx.Sender)
	}
	err := tx.ContentsCheck()
	if err != nil {
		return err
	}

	payload, err := tx.SigningPayload()
	if err != nil {
		return err
	}
	sig := w.QuickSign(payload)
	tx.Signature = base64.StdEncoding.EncodeToString(sig)
	return nil
}

// NewPayment builds and signs a payment from this wallet.
func (w *Wallet) NewPayment(
	recipient string, amount uint64, memo string,
) (*transactions.Transaction, error) {
	tx := transactions.NewTransaction(w.Address(), recipient, amount, memo)
	err := w.SignTransaction(tx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (w *Wallet) QuickSign(content []byte) []byte {
	return ed25519.Sign(w.keyPair.PrivateKey, content)
}
