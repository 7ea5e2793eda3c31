package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"alugaai-backend/internal/api/grpc/interceptor"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/security"
)

// callerFromContext returns the identity the auth interceptor attached.
func callerFromContext(ctx context.Context) (domain.Identity, error) {
	id := security.IdentityFromContext(ctx)
	if id == nil {
		return domain.Identity{}, status.Error(codes.Unauthenticated, "authentication required")
	}
	return *id, nil
}

func bearerToken(ctx context.Context) (string, error) {
	token, ok := interceptor.BearerToken(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}
	return token, nil
}
