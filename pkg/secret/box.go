package secret

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

// SealedPrefix marca payloads cifrados. Payloads sem o prefixo são texto puro
// gravado antes da cifragem e passam direto.
const SealedPrefix = "enc:v1:"

const nonceSize = 24

var (
	ErrNoKey        = errors.New("secret: sealed payload but no key configured")
	ErrInvalidToken = errors.New("secret: sealed payload could not be opened")
)

type Box struct {
	key *[32]byte
}

// NewBox aceita uma chave de 32 bytes em base64 ou qualquer frase, que é
// derivada com sha256. Chave vazia devolve uma Box que só lê texto puro.
func NewBox(key string) *Box {
	if key == "" {
		return &Box{}
	}

	var k [32]byte
	if raw, err := base64.StdEncoding.DecodeString(key); err == nil && len(raw) == 32 {
		copy(k[:], raw)
	} else {
		k = sha256.Sum256([]byte(key))
	}

	return &Box{key: &k}
}

func (b *Box) Seal(plaintext []byte) ([]byte, error) {
	if b.key == nil {
		return nil, ErrNoKey
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("secret: generating nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, b.key)

	out := make([]byte, 0, len(SealedPrefix)+base64.StdEncoding.EncodedLen(len(sealed)))
	out = append(out, SealedPrefix...)
	out = base64.StdEncoding.AppendEncode(out, sealed)
	return out, nil
}

func (b *Box) Open(stored []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(stored)
	if !bytes.HasPrefix(trimmed, []byte(SealedPrefix)) {
		return stored, nil
	}
	if b.key == nil {
		return nil, ErrNoKey
	}

	raw, err := base64.StdEncoding.DecodeString(string(trimmed[len(SealedPrefix):]))
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return nil, ErrInvalidToken
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	opened, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, b.key)
	if !ok {
		return nil, ErrInvalidToken
	}

	return opened, nil
}

func IsSealed(stored []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(stored), []byte(SealedPrefix))
}
