package security

import (
	"context"
	"errors"

	"firebase.google.com/go/v4/auth"

	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/logger"
)

const (
	ProviderLocal    = "local"
	ProviderFirebase = "firebase"
)

// Verifier turns a bearer token into the caller identity. want is the token
// type the endpoint requires.
type Verifier interface {
	Verify(ctx context.Context, token string, want TokenType) (*domain.Identity, error)
}

// LocalVerifier accepts tokens minted by TokenManager.
type LocalVerifier struct {
	tokens TokenManager
}

func NewLocalVerifier(tm TokenManager) *LocalVerifier {
	return &LocalVerifier{tokens: tm}
}

func (v *LocalVerifier) Verify(ctx context.Context, token string, want TokenType) (*domain.Identity, error) {
	claims, err := v.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, ErrWrongTokenType
	}
	return &domain.Identity{
		UserID:   claims.UserID,
		Name:     claims.Name,
		Email:    claims.Email,
		Provider: ProviderLocal,
	}, nil
}

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier accepts Firebase Authentication ID tokens. They are
// access tokens only; clients refresh them with the Firebase SDK.
type FirebaseVerifier struct {
	client idTokenVerifier
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string, want TokenType) (*domain.Identity, error) {
	if want != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	logger.ExternalServiceCall("firebase-auth", "verify_id_token")
	tok, err := v.client.VerifyIDToken(ctx, token)
	logger.ExternalServiceResult("firebase-auth", "verify_id_token", err)
	if err != nil {
		if auth.IsIDTokenExpired(err) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	id := &domain.Identity{UserID: tok.UID, Provider: ProviderFirebase}
	id.Email, _ = tok.Claims["email"].(string)
	id.Name, _ = tok.Claims["name"].(string)
	if id.Name == "" {
		id.Name = id.Email
	}
	return id, nil
}

// ChainVerifier tries each verifier in order and returns the first success.
type ChainVerifier []Verifier

func (c ChainVerifier) Verify(ctx context.Context, token string, want TokenType) (*domain.Identity, error) {
	err := ErrInvalidToken
	for _, v := range c {
		id, verr := v.Verify(ctx, token, want)
		if verr == nil {
			return id, nil
		}
		// keep the most specific failure
		if !errors.Is(verr, ErrInvalidToken) {
			err = verr
		}
	}
	return nil, err
}
