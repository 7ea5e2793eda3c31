package interceptor

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"alugaai-backend/internal/config"
	"alugaai-backend/internal/security"
)

type AuthInterceptor struct {
	verifier security.Verifier
}

func NewAuthInterceptor(v security.Verifier) *AuthInterceptor {
	return &AuthInterceptor{verifier: v}
}

// Unary returns a server interceptor function to authenticate and authorize unary RPCs
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		newCtx, err := i.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(newCtx, req)
	}
}

// Stream is Unary for server streams; the identity reaches the handler
// through the wrapped stream context.
func (i *AuthInterceptor) Stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		newCtx, err := i.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedStream{ServerStream: ss, ctx: newCtx})
	}
}

func (i *AuthInterceptor) authenticate(ctx context.Context, method string) (context.Context, error) {
	level := config.GetSecurityLevel(method)

	// Public endpoint - skip auth
	if level == config.SecurityPublic {
		return ctx, nil
	}

	token, err := extractToken(ctx)
	if err != nil {
		return nil, err
	}

	want := security.TokenTypeAccess
	if level == config.SecurityRefresh {
		want = security.TokenTypeRefresh
	}

	id, err := i.verifier.Verify(ctx, token, want)
	if err != nil {
		if errors.Is(err, security.ErrWrongTokenType) {
			return nil, status.Errorf(codes.PermissionDenied, "%s token required", want)
		}
		return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}

	return security.WithIdentity(ctx, id), nil
}

// BearerToken returns the token of the authorization metadata entry, without
// its "Bearer " prefix.
func BearerToken(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	authHeader := md.Get("authorization")
	if len(authHeader) == 0 {
		return "", false
	}
	token := strings.TrimSpace(authHeader[0])
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token, token != ""
}

func extractToken(ctx context.Context) (string, error) {
	if _, ok := metadata.FromIncomingContext(ctx); !ok {
		return "", status.Error(codes.Unauthenticated, "metadata is not provided")
	}
	token, ok := BearerToken(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}
	return token, nil
}

type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context { return w.ctx }
