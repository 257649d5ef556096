package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *PasswordHasher {
	return NewPasswordHasher("test-pepper")
}

func TestHash_PHCFormat(t *testing.T) {
	h := newTestHasher()

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := h.Hash(tt.password)
			require.NoError(t, err)

			parts := strings.Split(digest, "$")
			require.Len(t, parts, 6)
			require.Equal(t, "argon2id", parts[1])
			require.Equal(t, "v=19", parts[2])
			require.Equal(t, "m=19456,t=2,p=1", parts[3])
			require.NotEmpty(t, parts[4])
			require.NotEmpty(t, parts[5])
		})
	}
}

func TestHash_UniqueSalts(t *testing.T) {
	h := newTestHasher()

	a, err := h.Hash("samepassword")
	require.NoError(t, err)
	b, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NoError(t, h.Verify("samepassword", a))
	require.NoError(t, h.Verify("samepassword", b))
}

func TestVerify_RoundTrip(t *testing.T) {
	h := newTestHasher()

	// Every length the registration form accepts, 6 through 30.
	for n := 6; n <= 30; n++ {
		pw := strings.Repeat("x", n-1) + "!"
		digest, err := h.Hash(pw)
		require.NoError(t, err)
		require.NoError(t, h.Verify(pw, digest), "length %d", n)
		require.ErrorIs(t, h.Verify(pw+"?", digest), ErrPasswordMismatch, "length %d", n)
	}
}

func TestVerify_WrongPasswordIsMismatch(t *testing.T) {
	h := newTestHasher()
	digest, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{"wrong-password", "Correct-Password", "correct-password ", "", strings.Repeat("x", 10000)} {
		err := h.Verify(wrong, digest)
		require.ErrorIs(t, err, ErrPasswordMismatch)
		require.NotErrorIs(t, err, ErrMalformedHash)
	}
}

func TestVerify_PepperMatters(t *testing.T) {
	digest, err := NewPasswordHasher("pepper-a").Hash("secret1")
	require.NoError(t, err)

	require.ErrorIs(t, NewPasswordHasher("pepper-b").Verify("secret1", digest), ErrPasswordMismatch)
}

func TestVerify_MalformedDigest(t *testing.T) {
	h := newTestHasher()

	tests := []struct {
		name   string
		digest string
	}{
		{"empty", ""},
		{"wrong algorithm", "$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"zero parameters", "$argon2id$v=19$m=0,t=2,p=1$c2FsdA$aGFzaA"},
		{"memory too large", "$argon2id$v=19$m=4294967295,t=2,p=1$c2FsdA$aGFzaA"},
		{"iterations too large", "$argon2id$v=19$m=19456,t=4294967295,p=1$c2FsdA$aGFzaA"},
		{"parallelism too large", "$argon2id$v=19$m=19456,t=2,p=255$c2FsdA$aGFzaA"},
		{"invalid salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA"},
		{"invalid hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"plaintext", "hunter2"},
		{"truncated bcrypt", "$2a$10$short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Verify("test-password", tt.digest)
			require.ErrorIs(t, err, ErrMalformedHash)
		})
	}
}

func TestVerify_LegacyBcrypt(t *testing.T) {
	h := newTestHasher()

	legacy, err := bcrypt.GenerateFromPassword([]byte("Ix3aNGjUlv71xI4"), bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, h.Verify("Ix3aNGjUlv71xI4", string(legacy)))
	require.ErrorIs(t, h.Verify("nope", string(legacy)), ErrPasswordMismatch)
}

func TestDeriveToken(t *testing.T) {
	h := newTestHasher()

	a, err := h.DeriveToken("1700000000", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV")
	require.NoError(t, err)
	b, err := h.DeriveToken("1700000000", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV")
	require.NoError(t, err)

	// Same inputs still differ because of the salt.
	require.NotEqual(t, a, b)
	require.Len(t, a, 43)
	require.NotContains(t, a, "=")
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]struct{})
	for range 50 {
		pw, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, pw, 16)
		for _, c := range pw {
			ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
			require.True(t, ok, "unexpected char %q", c)
		}
		require.NotContains(t, seen, pw)
		seen[pw] = struct{}{}
	}
}

func TestGenerateAccessCode(t *testing.T) {
	for range 50 {
		code, err := GenerateAccessCode()
		require.NoError(t, err)
		require.Len(t, code, 8)
		require.False(t, strings.ContainsAny(code, "01OIL"), "ambiguous char in %q", code)
	}
}
