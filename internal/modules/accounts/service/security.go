package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

// HashAPIKey возвращает sha256-хэш ключа. Сырые ключи в БД не попадают.
func HashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

// Cipher encrypts broker API keys at rest with nacl/secretbox.
// The secret key is derived from the configured passphrase.
type Cipher struct {
	key [32]byte
}

var ErrBadCiphertext = errors.New("could not decrypt broker API key")

func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, errors.New("encryption key is not configured")
	}
	return &Cipher{key: sha256.Sum256([]byte(passphrase))}, nil
}

// Encrypt seals plain with a random nonce; output is base64(nonce||box).
func (c *Cipher) Encrypt(plain string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &c.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	box, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(box) < 24 {
		return "", ErrBadCiphertext
	}
	var nonce [24]byte
	copy(nonce[:], box[:24])
	plain, ok := secretbox.Open(nil, box[24:], &nonce, &c.key)
	if !ok {
		return "", ErrBadCiphertext
	}
	return string(plain), nil
}
