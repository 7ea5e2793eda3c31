package interceptor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/security"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string, want security.TokenType) (*domain.Identity, error) {
	args := m.Called(ctx, token, want)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func incoming(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
}

func TestAuthInterceptor_Unary(t *testing.T) {
	identity := &domain.Identity{UserID: "u-1", Name: "Ana", Provider: security.ProviderLocal}

	echo := func(ctx context.Context, req any) (any, error) {
		return security.IdentityFromContext(ctx), nil
	}

	t.Run("Public skips verification", func(t *testing.T) {
		v := new(MockVerifier)
		i := NewAuthInterceptor(v)
		resp, err := i.Unary()(context.Background(), nil,
			&grpc.UnaryServerInfo{FullMethod: "/alugaai.v1.CatalogService/SearchItems"}, echo)
		require.NoError(t, err)
		assert.Nil(t, resp)
		v.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Access endpoint attaches identity", func(t *testing.T) {
		v := new(MockVerifier)
		v.On("Verify", mock.Anything, "tok", security.TokenTypeAccess).Return(identity, nil)
		i := NewAuthInterceptor(v)

		resp, err := i.Unary()(incoming("tok"), nil,
			&grpc.UnaryServerInfo{FullMethod: "/alugaai.v1.RentalService/CreateRental"}, echo)
		require.NoError(t, err)
		assert.Equal(t, identity, resp)
	})

	t.Run("Refresh endpoint asks for a refresh token", func(t *testing.T) {
		v := new(MockVerifier)
		v.On("Verify", mock.Anything, "tok", security.TokenTypeRefresh).Return(identity, nil)
		i := NewAuthInterceptor(v)

		_, err := i.Unary()(incoming("tok"), nil,
			&grpc.UnaryServerInfo{FullMethod: "/alugaai.v1.AuthService/RefreshToken"}, echo)
		require.NoError(t, err)
		v.AssertExpectations(t)
	})

	t.Run("Wrong token type", func(t *testing.T) {
		v := new(MockVerifier)
		v.On("Verify", mock.Anything, "tok", security.TokenTypeAccess).Return(nil, security.ErrWrongTokenType)
		i := NewAuthInterceptor(v)

		_, err := i.Unary()(incoming("tok"), nil,
			&grpc.UnaryServerInfo{FullMethod: "/alugaai.v1.CatalogService/AddItem"}, echo)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("Invalid token", func(t *testing.T) {
		v := new(MockVerifier)
		v.On("Verify", mock.Anything, "tok", security.TokenTypeAccess).Return(nil, security.ErrExpiredToken)
		i := NewAuthInterceptor(v)

		_, err := i.Unary()(incoming("tok"), nil,
			&grpc.UnaryServerInfo{FullMethod: "/alugaai.v1.CatalogService/AddItem"}, echo)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Unknown methods require access", func(t *testing.T) {
		i := NewAuthInterceptor(new(MockVerifier))
		_, err := i.Unary()(context.Background(), nil,
			&grpc.UnaryServerInfo{FullMethod: "/alugaai.v1.Secret/Do"}, echo)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (f *fakeStream) Context() context.Context { return f.ctx }

func TestAuthInterceptor_Stream(t *testing.T) {
	identity := &domain.Identity{UserID: "u-1", Name: "Ana"}
	v := new(MockVerifier)
	v.On("Verify", mock.Anything, "tok", security.TokenTypeAccess).Return(identity, nil)
	i := NewAuthInterceptor(v)

	var seen *domain.Identity
	err := i.Stream()(nil, &fakeStream{ctx: incoming("tok")},
		&grpc.StreamServerInfo{FullMethod: "/alugaai.v1.RentalService/WatchRentals", IsServerStream: true},
		func(srv any, ss grpc.ServerStream) error {
			seen = security.IdentityFromContext(ss.Context())
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, identity, seen)
}

func TestBearerToken(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "bearer  abc.def "))
	token, ok := BearerToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	_, ok = BearerToken(context.Background())
	assert.False(t, ok)
}
