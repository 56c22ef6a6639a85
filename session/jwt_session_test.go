package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTSession_RoundTrip(t *testing.T) {
	st := NewJWTSessionStore([]byte("test-secret"), time.Hour)
	ctx := context.Background()

	tok, err := st.Create(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	as, err := st.Get(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", as.UserID)
	assert.Greater(t, as.ExpiresAt, as.IssuedAt)
}

func TestJWTSession_Expired(t *testing.T) {
	st := NewJWTSessionStore([]byte("test-secret"), -time.Minute)

	tok, err := st.Create(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = st.Get(context.Background(), tok)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestJWTSession_BadToken(t *testing.T) {
	st := NewJWTSessionStore([]byte("test-secret"), time.Hour)

	for _, tok := range []string{"", "garbage", "aaa.bbb.ccc"} {
		_, err := st.Get(context.Background(), tok)
		assert.ErrorIs(t, err, ErrSessionInvalid)
	}
}

func TestJWTSession_WrongSecretRejected(t *testing.T) {
	issuer := NewJWTSessionStore([]byte("secret-a"), time.Hour)
	verifier := NewJWTSessionStore([]byte("secret-b"), time.Hour)

	tok, err := issuer.Create(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = verifier.Get(context.Background(), tok)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}
