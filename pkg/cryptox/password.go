package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Argon2id parameters. Changing these only affects new hashes, old ones carry
// their own parameters in the PHC string.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

// Upper bounds accepted from stored digests. A corrupt row must not make
// Verify allocate gigabytes or spin for minutes.
const (
	maxMemory      = 1 << 20 // KiB, 1 GiB
	maxIterations  = 10
	maxParallelism = 16
)

var (
	// ErrPasswordMismatch is the normal "wrong password" outcome.
	ErrPasswordMismatch = errors.New("cryptox: password does not match")

	// ErrMalformedHash means the stored digest itself is unusable.
	ErrMalformedHash = errors.New("cryptox: malformed password hash")
)

// PasswordHasher hashes and verifies passwords with Argon2id, mixing in a
// process wide pepper that never lives in the database.
type PasswordHasher struct {
	pepper string
}

func NewPasswordHasher(pepper string) *PasswordHasher {
	return &PasswordHasher{pepper: pepper}
}

// Hash returns a PHC encoded Argon2id digest:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: read salt: %w", err)
	}

	sum := argon2.IDKey([]byte(password+h.pepper), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify checks password against digest. It returns nil on a match,
// ErrPasswordMismatch on a mismatch and an error wrapping ErrMalformedHash
// when digest cannot be parsed.
//
// bcrypt digests are accepted so accounts carried over from the old system
// keep working. They are verified without the pepper since they were never
// created with one.
func (h *PasswordHasher) Verify(password, digest string) error {
	if isBcrypt(digest) {
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
		switch {
		case err == nil:
			return nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return ErrPasswordMismatch
		default:
			return fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
	}

	p, err := parsePHC(digest)
	if err != nil {
		return err
	}

	computed := argon2.IDKey(
		[]byte(password+h.pepper),
		p.salt,
		p.iterations,
		p.memory,
		p.parallelism,
		uint32(len(p.hash)), // #nosec G115 - bounded by the decoded digest
	)

	if subtle.ConstantTimeCompare(computed, p.hash) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

// DeriveToken runs parts through the slow Argon2id primitive with a random
// salt and the pepper, producing an opaque 43 character base64url token.
// Session tokens are minted this way so that guessing them offline costs as
// much as guessing a password.
func (h *PasswordHasher) DeriveToken(parts ...string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: read salt: %w", err)
	}

	material := strings.Join(parts, ":") + ":" + h.pepper
	sum := argon2.IDKey([]byte(material), salt, iterations, memory, parallelism, keyLength)

	return base64.RawURLEncoding.EncodeToString(sum), nil
}

type phc struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

func parsePHC(digest string) (phc, error) {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" {
		return phc{}, fmt.Errorf("%w: expected 6 parts", ErrMalformedHash)
	}
	if parts[1] != "argon2id" {
		return phc{}, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, parts[1])
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return phc{}, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, parts[2])
	}

	var p phc
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return phc{}, fmt.Errorf("%w: parameters: %v", ErrMalformedHash, err)
	}
	if p.memory == 0 || p.iterations == 0 || p.parallelism == 0 {
		return phc{}, fmt.Errorf("%w: zero parameter", ErrMalformedHash)
	}
	if p.memory > maxMemory || p.iterations > maxIterations || p.parallelism > maxParallelism {
		return phc{}, fmt.Errorf("%w: parameters out of range", ErrMalformedHash)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return phc{}, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if p.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return phc{}, fmt.Errorf("%w: hash: %v", ErrMalformedHash, err)
	}
	if len(p.hash) == 0 {
		return phc{}, fmt.Errorf("%w: empty hash", ErrMalformedHash)
	}

	return p, nil
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}

// GeneratePassword returns a random 16 character alphanumeric password, used
// when the seeded admin account has no configured password.
func GeneratePassword() (string, error) {
	return randomString("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", 16)
}

// GenerateAccessCode returns an 8 character code from an alphabet without
// look-alike characters (no 0/O, 1/I/L). Deal access codes are read out over
// the phone.
func GenerateAccessCode() (string, error) {
	return randomString("23456789ABCDEFGHJKMNPQRSTUVWXYZ", 8)
}

func randomString(charset string, length int) (string, error) {
	out := make([]byte, length)
	limit := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("cryptox: random: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
