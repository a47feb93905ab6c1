package cipher

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// envelopeVersion is the current version of the sealed document format.
const envelopeVersion = 1

var (
	// ErrWrongPassphrase is returned when the passphrase is incorrect or the
	// ciphertext has been modified.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted document")
	ErrEmptyPassphrase = errors.New("empty passphrase")
)

// envelope is the on-disk JSON structure holding the ciphertext and the KDF
// parameters needed to open it.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	Nonce  []byte `json:"nonce"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// Passphrase seals documents with ChaCha20-Poly1305 under a key derived
// from a passphrase with scrypt. Every Encrypt uses a fresh salt and nonce.
type Passphrase struct {
	passphrase []byte
	n, r, p    int
}

// NewPassphrase returns a Passphrase cipher with the default scrypt cost.
func NewPassphrase(passphrase string) (*Passphrase, error) {
	return NewPassphraseCost(passphrase, 1<<15, 8, 1)
}

// NewPassphraseCost is NewPassphrase with explicit scrypt parameters.
// Decrypt always uses the parameters recorded in the envelope.
func NewPassphraseCost(passphrase string, n, r, p int) (*Passphrase, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	return &Passphrase{passphrase: []byte(passphrase), n: n, r: r, p: p}, nil
}

func (c *Passphrase) Encrypt(plain []byte) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key, err := scrypt.Key(c.passphrase, salt, c.n, c.r, c.p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, plain, salt)

	return json.Marshal(envelope{
		V:      envelopeVersion,
		Salt:   salt,
		Nonce:  nonce,
		N:      c.n,
		R:      c.r,
		P:      c.p,
		Cipher: ct,
	})
}

func (c *Passphrase) Decrypt(sealed []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		return nil, fmt.Errorf("parsing envelope: %w", err)
	}
	if env.V > envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", env.V)
	}

	key, err := scrypt.Key(c.passphrase, env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, ErrWrongPassphrase
	}
	pt, err := aead.Open(nil, env.Nonce, env.Cipher, env.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
