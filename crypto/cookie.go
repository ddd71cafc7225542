package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
)

// NewCookieKeys derives the securecookie hash and block keys from the
// server secret. Both keys are 32-byte HMAC-SHA256 outputs under
// distinct purpose labels; with a block key present the cookie payload
// is encrypted as well as authenticated. Returns
// ErrJwtInvalidSecretLength when the secret is shorter than
// MinKeyLength.
func NewCookieKeys(secret string) (hashKey, blockKey []byte, err error) {
	if len(secret) < MinKeyLength {
		return nil, nil, ErrJwtInvalidSecretLength
	}
	hashKey = deriveKey([]byte(secret), "cookie-hash")
	blockKey = deriveKey([]byte(secret), "cookie-block")
	return hashKey, blockKey, nil
}

func deriveKey(secret []byte, label string) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(label))
	return h.Sum(nil)
}
