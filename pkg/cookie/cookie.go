package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

const minSecretLength = 32

var encoding = base64.RawURLEncoding

// keyPair holds the keys derived from one configured secret.
type keyPair struct {
	sign []byte
	aead cipher.AEAD
}

// Manager writes and reads plain, signed and encrypted cookies.
type Manager struct {
	keys     []keyPair // keys[0] writes, all of them read
	defaults Options
}

// New creates a Manager. Each secret must be at least 32 characters; the
// first one is used for writing.
func New(secrets []string, opts ...Option) (*Manager, error) {
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	keys := make([]keyPair, 0, len(secrets))
	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
		kp, err := deriveKeys(s)
		if err != nil {
			return nil, err
		}
		keys = append(keys, kp)
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}.apply(opts)

	return &Manager{keys: keys, defaults: defaults}, nil
}

// deriveKeys expands one secret into independent signing and encryption keys.
func deriveKeys(secret string) (keyPair, error) {
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("webauth cookie keys v1"))

	signKey := make([]byte, 32)
	encKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, signKey); err != nil {
		return keyPair{}, err
	}
	if _, err := io.ReadFull(kdf, encKey); err != nil {
		return keyPair{}, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return keyPair{}, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return keyPair{}, err
	}
	return keyPair{sign: signKey, aead: aead}, nil
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	o := m.defaults.apply(opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	})
}

// Get reads a plain cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrCookieNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Delete expires a cookie in the browser.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.defaults.Secure,
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
	})
}

// SetSigned writes value with an HMAC bound to the cookie name.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) {
	m.Set(w, name, m.Sign(name, value), opts...)
}

// GetSigned reads and verifies a signed cookie.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.Verify(name, raw)
}

// SetEncrypted writes value sealed with AES-GCM. The cookie name is
// authenticated as additional data.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, opts ...Option) error {
	sealed, err := m.Encrypt(name, value)
	if err != nil {
		return err
	}
	m.Set(w, name, sealed, opts...)
	return nil
}

// GetEncrypted reads and opens an encrypted cookie.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.Decrypt(name, raw)
}

func mac(key []byte, name, value string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(value))
	return h.Sum(nil)
}

// Sign returns value with an HMAC bound to name, in "value.mac" form.
func (m *Manager) Sign(name, value string) string {
	sig := mac(m.keys[0].sign, name, value)
	return encoding.EncodeToString([]byte(value)) + "." + encoding.EncodeToString(sig)
}

// Verify checks a Sign result against every configured secret.
func (m *Manager) Verify(name, signed string) (string, error) {
	encValue, encSig, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrInvalidFormat
	}
	value, err := encoding.DecodeString(encValue)
	if err != nil {
		return "", ErrInvalidFormat
	}
	sig, err := encoding.DecodeString(encSig)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, k := range m.keys {
		if hmac.Equal(sig, mac(k.sign, name, string(value))) {
			return string(value), nil
		}
	}
	return "", ErrInvalidSignature
}

// Encrypt seals value with AES-GCM using name as additional data.
func (m *Manager) Encrypt(name, value string) (string, error) {
	aead := m.keys[0].aead
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(value), []byte(name))
	return encoding.EncodeToString(sealed), nil
}

// Decrypt opens an Encrypt result with every configured secret.
func (m *Manager) Decrypt(name, encoded string) (string, error) {
	data, err := encoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, k := range m.keys {
		ns := k.aead.NonceSize()
		if len(data) < ns+k.aead.Overhead() {
			return "", ErrInvalidFormat
		}
		plain, err := k.aead.Open(nil, data[:ns], data[ns:], []byte(name))
		if err == nil {
			return string(plain), nil
		}
	}
	return "", ErrDecryptionFailed
}
