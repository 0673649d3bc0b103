package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
)

var ErrCipherTextTooShort = errors.New("cipher text too short")

// New builds a vault around an AES-128, AES-192 or AES-256 key.
func New(key []byte) (Vault, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return Vault{}, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return Vault{}, err
	}

	return Vault{
		aead: aead,
	}, nil
}

// Vault seals values with AES-GCM. Sealed values are URL safe base64 with the
// nonce in front of the cipher text.
type Vault struct {
	aead cipher.AEAD
}

func (v Vault) Encrypt(text []byte) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	sealed := v.aead.Seal(nonce, nonce, text, nil)

	return []byte(base64.URLEncoding.EncodeToString(sealed)), nil
}

func (v Vault) Decrypt(raw []byte) ([]byte, error) {
	sealed, err := base64.URLEncoding.DecodeString(string(raw))
	if err != nil {
		return nil, err
	}

	nonceSize := v.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, ErrCipherTextTooShort
	}

	return v.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
}
