package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenThenEmail(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("super-secret", 0)

	tok, err := issuer.NewToken("a@x.com")
	require.NoError(t, err)

	email, err := issuer.Email(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestNewToken_NoExpiryByDefault(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer("k", 0).NewToken("a@x.com")
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestEmail_TamperedSignature(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("super-secret", 0)

	tok, err := issuer.NewToken("a@x.com")
	require.NoError(t, err)

	dot := strings.LastIndex(tok, ".")
	sig := []byte(tok[dot+1:])
	// flip the first signature character, which carries full 6 bits
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := tok[:dot+1] + string(sig)

	_, err = issuer.Email(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmail_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer("right", 0).NewToken("a@x.com")
	require.NoError(t, err)

	_, err = NewIssuer("wrong", 0).Email(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmail_MalformedAndEmpty(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("k", 0)

	_, err := issuer.Email("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Email("")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmail_Expired(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer("k", -time.Second).NewToken("a@x.com")
	require.NoError(t, err)

	// a negative ttl puts exp in the past
	_, err = NewIssuer("k", time.Hour).Email(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmail_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "a@x.com"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("k", 0).Email(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}
