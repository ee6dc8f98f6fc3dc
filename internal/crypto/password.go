package crypto

import "golang.org/x/crypto/bcrypt"

// DummyHash is a valid bcrypt digest of a throwaway string. Login burns a
// comparison against it when the email is unknown so that the unknown-email
// and wrong-password paths cost the same.
var DummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// HashPassword hashes plaintext using bcrypt with a per-call random salt.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// VerifyPassword reports whether plaintext matches the stored digest.
// Malformed digests fail closed.
func VerifyPassword(hash []byte, plain string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
