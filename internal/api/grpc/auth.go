package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"alugaai-backend/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (h *AuthHandler) SignUp(ctx context.Context, req *SignUpRequest) (*AuthResponse, error) {
	user, tokens, err := h.authSvc.SignUp(ctx, service.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}
	t := MapTokenPair(tokens)
	return &AuthResponse{
		User:         MapDomainUserToMessage(user),
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
	}, nil
}

func (h *AuthHandler) SignIn(ctx context.Context, req *SignInRequest) (*AuthResponse, error) {
	user, tokens, err := h.authSvc.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	t := MapTokenPair(tokens)
	return &AuthResponse{
		User:         MapDomainUserToMessage(user),
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
	}, nil
}

func (h *AuthHandler) RefreshToken(ctx context.Context, req *RefreshTokenRequest) (*TokenResponse, error) {
	refresh, err := bearerToken(ctx)
	if err != nil {
		return nil, err
	}
	tokens, err := h.authSvc.RefreshToken(ctx, refresh)
	if err != nil {
		return nil, err
	}
	resp := MapTokenPair(tokens)
	return &resp, nil
}

func (h *AuthHandler) SignOut(ctx context.Context, req *SignOutRequest) (*SignOutResponse, error) {
	refresh, err := bearerToken(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.authSvc.SignOut(ctx, refresh); err != nil {
		return nil, err
	}
	return &SignOutResponse{Success: true}, nil
}

func (h *AuthHandler) GetCurrentUser(ctx context.Context, req *GetCurrentUserRequest) (*GetCurrentUserResponse, error) {
	id := h.authSvc.CurrentUser(ctx)
	if id == nil {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	return &GetCurrentUserResponse{User: MapIdentityToMessage(id)}, nil
}
