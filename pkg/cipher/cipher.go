// Package cipher provides the transforms applied to an encoded document
// between the codec and the backend.
package cipher

// Cipher encrypts encoded bytes before they are saved and decrypts them
// after they are loaded.
type Cipher interface {
	Encrypt(plain []byte) ([]byte, error)
	Decrypt(sealed []byte) ([]byte, error)
}

// None passes data through unchanged.
type None struct{}

func (None) Encrypt(plain []byte) ([]byte, error)  { return plain, nil }
func (None) Decrypt(sealed []byte) ([]byte, error) { return sealed, nil }

// DefaultShift is the offset used by a zero Shift.
const DefaultShift = 7

// Shift adds Offset to every byte on encrypt and subtracts it on decrypt,
// wrapping modulo 256. It only obfuscates; it offers no secrecy.
type Shift struct {
	Offset byte
}

func (s Shift) offset() byte {
	if s.Offset == 0 {
		return DefaultShift
	}
	return s.Offset
}

func (s Shift) Encrypt(plain []byte) ([]byte, error) {
	n := s.offset()
	out := make([]byte, len(plain))
	for i, b := range plain {
		out[i] = b + n
	}
	return out, nil
}

func (s Shift) Decrypt(sealed []byte) ([]byte, error) {
	n := s.offset()
	out := make([]byte, len(sealed))
	for i, b := range sealed {
		out[i] = b - n
	}
	return out, nil
}

// Funcs adapts a caller-supplied encrypt/decrypt pair. A nil function
// passes bytes through unchanged, like None.
type Funcs struct {
	EncryptFunc func([]byte) ([]byte, error)
	DecryptFunc func([]byte) ([]byte, error)
}

func (f Funcs) Encrypt(plain []byte) ([]byte, error) {
	if f.EncryptFunc == nil {
		return None{}.Encrypt(plain)
	}
	return f.EncryptFunc(plain)
}

func (f Funcs) Decrypt(sealed []byte) ([]byte, error) {
	if f.DecryptFunc == nil {
		return None{}.Decrypt(sealed)
	}
	return f.DecryptFunc(sealed)
}
