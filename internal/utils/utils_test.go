package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(testSecret, bcrypt.MinCost)

	hash, err := h.Hash("Passw0rd")
	require.NoError(t, err)
	assert.NotContains(t, hash, "Passw0rd")

	ok, err := h.Verify("Passw0rd", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordHasher_SingleCharacterMutationsFail(t *testing.T) {
	h := NewPasswordHasher(testSecret, bcrypt.MinCost)
	password := "Passw0rd"

	hash, err := h.Hash(password)
	require.NoError(t, err)

	for i := range password {
		mutated := []byte(password)
		mutated[i]++
		ok, err := h.Verify(string(mutated), hash)
		require.NoError(t, err)
		assert.False(t, ok, "mutation at %d must not verify", i)
	}

	for _, candidate := range []string{password[:len(password)-1], password + "x", "", strings.ToLower(password)} {
		ok, err := h.Verify(candidate, hash)
		require.NoError(t, err)
		assert.False(t, ok, "%q must not verify", candidate)
	}
}

func TestPasswordHasher_SaltedAndPeppered(t *testing.T) {
	h := NewPasswordHasher(testSecret, bcrypt.MinCost)

	first, err := h.Hash("Passw0rd")
	require.NoError(t, err)
	second, err := h.Hash("Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	other := NewPasswordHasher("another-secret-that-is-at-least-32-chars", bcrypt.MinCost)
	ok, err := other.Verify("Passw0rd", first)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_LongPasswords(t *testing.T) {
	h := NewPasswordHasher(testSecret, bcrypt.MinCost)
	long := strings.Repeat("Ab1", 40)

	hash, err := h.Hash(long)
	require.NoError(t, err)

	ok, err := h.Verify(long[:len(long)-1]+"x", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	h := NewPasswordHasher(testSecret, bcrypt.MinCost)

	ok, err := h.Verify("Passw0rd", "not-a-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewPasswordHasher_InvalidCost(t *testing.T) {
	h := NewPasswordHasher(testSecret, 100)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

func TestSessionTokenIssuer(t *testing.T) {
	issuer := NewSessionTokenIssuer(testSecret)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	token, claims, err := issuer.Issue("account-1", now, now.Add(12*time.Hour))
	require.NoError(t, err)
	assert.NotEmpty(t, claims.SessionID)

	parsed, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID, parsed.SessionID)
	assert.Equal(t, "account-1", parsed.AccountID)
	assert.True(t, parsed.IssuedAt.Equal(now))
	assert.True(t, parsed.ExpiresAt.Equal(now.Add(12*time.Hour)))
}

func TestSessionTokenIssuer_UniqueTokens(t *testing.T) {
	issuer := NewSessionTokenIssuer(testSecret)
	now := time.Now()

	first, _, err := issuer.Issue("account-1", now, now.Add(time.Hour))
	require.NoError(t, err)
	second, _, err := issuer.Issue("account-1", now, now.Add(time.Hour))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, HashToken(first), HashToken(second))
}

func TestSessionTokenIssuer_ExpiredTokenStillParses(t *testing.T) {
	issuer := NewSessionTokenIssuer(testSecret)
	past := time.Now().Add(-48 * time.Hour)

	token, _, err := issuer.Issue("account-1", past, past.Add(time.Hour))
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.NoError(t, err)
}

func TestSessionTokenIssuer_RejectsForeignTokens(t *testing.T) {
	issuer := NewSessionTokenIssuer(testSecret)
	now := time.Now()

	foreign, _, err := NewSessionTokenIssuer("another-secret-that-is-at-least-32-chars").
		Issue("account-1", now, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = issuer.Parse(foreign)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sid": "x", "sub": "y"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(unsigned)
	assert.Error(t, err)

	_, err = issuer.Parse("garbage")
	assert.Error(t, err)
}

func TestHashToken(t *testing.T) {
	assert.Len(t, HashToken("abc"), 64)
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"a@x.com", true},
		{"first.last+tag@sub.example.org", true},
		{"invalid-email", false},
		{"a@x", false},
		{"@x.com", false},
		{"a b@x.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidEmail)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"valid", "Passw0rd", nil},
		{"too short", "Pa0rd", ErrPasswordTooShort},
		{"no lowercase", "PASSW0RD", ErrPasswordNoLower},
		{"no uppercase", "passw0rd", ErrPasswordNoUpper},
		{"no digit", "Password", ErrPasswordNoDigit},
		{"unicode letters", "Ünïcöde1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestValidateNames(t *testing.T) {
	assert.ErrorIs(t, ValidateUsername("  ab  "), ErrUsernameTooShort)
	assert.NoError(t, ValidateUsername("abc"))
	assert.ErrorIs(t, ValidateFirstName(" A "), ErrFirstNameTooShort)
	assert.NoError(t, ValidateFirstName("Al"))
	assert.ErrorIs(t, ValidateLastName(""), ErrLastNameTooShort)
	assert.NoError(t, ValidateLastName("Lee"))
}

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", SanitizeEmail("  A@X.com \n"))
}

func TestNormalizeName(t *testing.T) {
	decomposed := "José"
	assert.Equal(t, "José", NormalizeName("  "+decomposed+" "))
}
