package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alugaai-backend/internal/domain"
)

type mockIDTokenVerifier struct {
	mock.Mock
}

func (m *mockIDTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

func TestLocalVerifier(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, time.Hour)
	v := NewLocalVerifier(tm)
	ctx := context.Background()

	access, err := tm.GenerateAccessToken("u-1", "Ana", "ana@example.com")
	require.NoError(t, err)

	id, err := v.Verify(ctx, access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, &domain.Identity{UserID: "u-1", Name: "Ana", Email: "ana@example.com", Provider: ProviderLocal}, id)

	_, err = v.Verify(ctx, access, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestFirebaseVerifier(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid ID token", func(t *testing.T) {
		m := new(mockIDTokenVerifier)
		m.On("VerifyIDToken", ctx, "fb-token").Return(&auth.Token{
			UID:    "fb-uid",
			Claims: map[string]interface{}{"email": "bia@example.com", "name": "Bia"},
		}, nil)

		v := &FirebaseVerifier{client: m}
		id, err := v.Verify(ctx, "fb-token", TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, "fb-uid", id.UserID)
		assert.Equal(t, "Bia", id.Name)
		assert.Equal(t, ProviderFirebase, id.Provider)
		m.AssertExpectations(t)
	})

	t.Run("Name falls back to email", func(t *testing.T) {
		m := new(mockIDTokenVerifier)
		m.On("VerifyIDToken", ctx, "fb-token").Return(&auth.Token{
			UID:    "fb-uid",
			Claims: map[string]interface{}{"email": "bia@example.com"},
		}, nil)

		id, err := (&FirebaseVerifier{client: m}).Verify(ctx, "fb-token", TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, "bia@example.com", id.Name)
	})

	t.Run("Rejected token", func(t *testing.T) {
		m := new(mockIDTokenVerifier)
		m.On("VerifyIDToken", ctx, "bad").Return(nil, errors.New("signature mismatch"))

		_, err := (&FirebaseVerifier{client: m}).Verify(ctx, "bad", TokenTypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Refresh level is not supported", func(t *testing.T) {
		m := new(mockIDTokenVerifier)
		_, err := (&FirebaseVerifier{client: m}).Verify(ctx, "fb-token", TokenTypeRefresh)
		assert.ErrorIs(t, err, ErrWrongTokenType)
		m.AssertNotCalled(t, "VerifyIDToken", mock.Anything, mock.Anything)
	})
}

func TestChainVerifier(t *testing.T) {
	ctx := context.Background()
	tm := NewTokenManager(testSecret, time.Hour, time.Hour)

	fb := new(mockIDTokenVerifier)
	fb.On("VerifyIDToken", ctx, "fb-token").Return(&auth.Token{UID: "fb-uid"}, nil)
	fb.On("VerifyIDToken", ctx, mock.Anything).Return(nil, errors.New("bad"))

	chain := ChainVerifier{NewLocalVerifier(tm), &FirebaseVerifier{client: fb}}

	local, err := tm.GenerateAccessToken("u-1", "Ana", "")
	require.NoError(t, err)
	id, err := chain.Verify(ctx, local, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, id.Provider)

	id, err = chain.Verify(ctx, "fb-token", TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "fb-uid", id.UserID)

	_, err = chain.Verify(ctx, "garbage", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// the local verifier's type mismatch wins over the generic failure
	_, err = chain.Verify(ctx, local, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, IdentityFromContext(ctx))

	id := &domain.Identity{UserID: "u-1"}
	assert.Same(t, id, IdentityFromContext(WithIdentity(ctx, id)))
}
