// Package cookie reads and writes HTTP cookies in three flavours: plain,
// signed (HMAC-SHA256) and encrypted (AES-GCM).
//
// Signing and encryption keys are derived from each configured secret with
// HKDF, and the cookie name is bound into both the MAC and the AEAD, so a
// value cannot be replayed under another cookie name. The first secret
// writes; every secret is tried when reading, which allows rotation:
//
//	m, err := cookie.New([]string{newSecret, oldSecret}, cookie.WithSecure(true))
//	m.SetSigned(w, "WEBAUTH_SESSION", token)
//	token, err := m.GetSigned(r, "WEBAUTH_SESSION")
package cookie
