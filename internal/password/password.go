package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql/driver"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// AlgorithmBcrypt tags plain bcrypt digests. Those are still verified, but
	// a Hasher configured with "bcrypt" produces AlgorithmBcryptSHA256 hashes.
	AlgorithmBcrypt = "bcrypt"
	// AlgorithmBcryptSHA256 runs bcrypt over the base64 SHA-256 of the
	// password, lifting bcrypt's 72 byte input limit.
	AlgorithmBcryptSHA256 = "bcrypt-sha256"
	// AlgorithmPBKDF2 hashes with PBKDF2-HMAC-SHA256 and a random 16 byte salt.
	AlgorithmPBKDF2 = "pbkdf2-sha256"

	bcryptCost       = 10
	pbkdf2Iterations = 600000
	pbkdf2KeyLen     = 32
	saltLen          = 16
	separator        = "$"
)

var (
	// ErrUnknownAlgorithm is returned when a hash names an algorithm this package cannot produce.
	ErrUnknownAlgorithm = errors.New("unknown password hash algorithm")
	// ErrMalformedHash is returned when a stored hash cannot be parsed.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Hash is a one-way password hash tagged with the algorithm that produced it,
// so stored credentials can be migrated to a new algorithm later.
type Hash struct {
	Algorithm string
	Salt      string
	Digest    string
}

// String encodes the hash as "algorithm$salt$digest".
func (h Hash) String() string {
	return h.Algorithm + separator + h.Salt + separator + h.Digest
}

// IsZero reports whether no hash has been set.
func (h Hash) IsZero() bool {
	return h.Algorithm == "" && h.Digest == ""
}

// Parse decodes a value produced by Hash.String. Bare bcrypt strings ("$2a$...")
// are accepted as bcrypt hashes.
func Parse(s string) (Hash, error) {
	if strings.HasPrefix(s, "$2") {
		return Hash{Algorithm: AlgorithmBcrypt, Digest: s}, nil
	}
	parts := strings.SplitN(s, separator, 3)
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return Hash{}, ErrMalformedHash
	}
	return Hash{Algorithm: parts[0], Salt: parts[1], Digest: parts[2]}, nil
}

// Value implements driver.Valuer.
func (h Hash) Value() (driver.Value, error) {
	return h.String(), nil
}

// Scan implements sql.Scanner.
func (h *Hash) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*h = Hash{}
		return nil
	default:
		return fmt.Errorf("scan password hash: unsupported type %T", src)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Hasher produces and verifies password hashes with a configured algorithm.
type Hasher struct {
	algorithm string
}

// NewHasher returns a Hasher producing hashes with the given algorithm.
// "bcrypt" selects AlgorithmBcryptSHA256.
func NewHasher(algorithm string) (*Hasher, error) {
	switch algorithm {
	case AlgorithmBcrypt, AlgorithmBcryptSHA256:
		return &Hasher{algorithm: AlgorithmBcryptSHA256}, nil
	case AlgorithmPBKDF2:
		return &Hasher{algorithm: algorithm}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// Algorithm returns the algorithm new hashes are produced with.
func (h *Hasher) Algorithm() string {
	return h.algorithm
}

// Hash hashes a plaintext password with a fresh salt.
func (h *Hasher) Hash(plain string) (Hash, error) {
	switch h.algorithm {
	case AlgorithmBcryptSHA256:
		digest, err := bcrypt.GenerateFromPassword(prehash(plain), bcryptCost)
		if err != nil {
			return Hash{}, fmt.Errorf("bcrypt: %w", err)
		}
		return Hash{Algorithm: AlgorithmBcryptSHA256, Digest: string(digest)}, nil
	case AlgorithmPBKDF2:
		salt := make([]byte, saltLen)
		if _, err := rand.Read(salt); err != nil {
			return Hash{}, fmt.Errorf("generate salt: %w", err)
		}
		key := pbkdf2.Key([]byte(plain), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
		return Hash{
			Algorithm: AlgorithmPBKDF2,
			Salt:      base64.RawStdEncoding.EncodeToString(salt),
			Digest:    base64.RawStdEncoding.EncodeToString(key),
		}, nil
	default:
		return Hash{}, ErrUnknownAlgorithm
	}
}

// Verify reports whether plain matches the stored hash. Any algorithm known to
// this package is accepted, not only the configured one.
func (h *Hasher) Verify(stored Hash, plain string) bool {
	switch stored.Algorithm {
	case AlgorithmBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(stored.Digest), []byte(plain)) == nil
	case AlgorithmBcryptSHA256:
		return bcrypt.CompareHashAndPassword([]byte(stored.Digest), prehash(plain)) == nil
	case AlgorithmPBKDF2:
		salt, err := base64.RawStdEncoding.DecodeString(stored.Salt)
		if err != nil {
			return false
		}
		want, err := base64.RawStdEncoding.DecodeString(stored.Digest)
		if err != nil {
			return false
		}
		got := pbkdf2.Key([]byte(plain), salt, pbkdf2Iterations, len(want), sha256.New)
		return subtle.ConstantTimeCompare(got, want) == 1
	default:
		return false
	}
}

// NeedsRehash reports whether stored was produced with different settings than
// the ones this Hasher uses for new hashes.
func (h *Hasher) NeedsRehash(stored Hash) bool {
	if stored.Algorithm != h.algorithm {
		return true
	}
	if stored.Algorithm == AlgorithmBcryptSHA256 {
		cost, err := bcrypt.Cost([]byte(stored.Digest))
		return err != nil || cost != bcryptCost
	}
	return false
}

// prehash reduces plain to 44 bytes so any length fits bcrypt's input.
func prehash(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
