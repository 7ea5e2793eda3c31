package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/repository"
	"alugaai-backend/internal/security"
	"alugaai-backend/internal/validation"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	userRepo   repository.UserRepository
	tokens     security.TokenManager
	bcryptCost int
	now        func() time.Time
	compare    func(hash, password []byte) error

	decoyOnce sync.Once
	decoy     []byte
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		now:        func() time.Time { return time.Now().UTC() },
		compare:    bcrypt.CompareHashAndPassword,
	}
}

// decoyHash is compared against when the e-mail is unknown, so that path
// costs as much as a wrong password.
func (s *authService) decoyHash() []byte {
	s.decoyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.bcryptCost)
		if err != nil {
			logger.Warn("Failed to generate decoy password hash", "error", err)
		}
		s.decoy = hash
	})
	return s.decoy
}

func (s *authService) SignUp(ctx context.Context, in SignUpInput) (*domain.User, *TokenPair, error) {
	logger.EnterMethod("authService.SignUp", "email", in.Email)

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		logger.ExitMethodWithError("authService.SignUp", err)
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeInternal, err, "could not hash password")
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if apperr.IsCode(err, apperr.CodeConflict) {
			err = apperr.New(apperr.CodeConflict, "email already registered").
				WithDetails(map[string]string{"email": "already registered"})
		}
		logger.ExitMethodWithError("authService.SignUp", err)
		return nil, nil, err
	}

	tokens, err := s.issue(user.ID, user.Name, user.Email)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("User signed up", "userID", user.ID)
	logger.ExitMethod("authService.SignUp", "userID", user.ID)
	return user, tokens, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	logger.EnterMethod("authService.SignIn", "email", email)

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			_ = s.compare(s.decoyHash(), []byte(password))
			err = apperr.Wrap(apperr.CodeUnauthorized, ErrInvalidCredentials, ErrInvalidCredentials.Error())
		}
		logger.ExitMethodWithError("authService.SignIn", err)
		return nil, nil, err
	}
	if err := s.compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.ExitMethodWithError("authService.SignIn", ErrInvalidCredentials)
		return nil, nil, apperr.Wrap(apperr.CodeUnauthorized, ErrInvalidCredentials, ErrInvalidCredentials.Error())
	}

	tokens, err := s.issue(user.ID, user.Name, user.Email)
	if err != nil {
		return nil, nil, err
	}
	logger.ExitMethod("authService.SignIn", "userID", user.ID)
	return user, tokens, nil
}

func (s *authService) RefreshToken(ctx context.Context, refresh string) (*TokenPair, error) {
	claims, err := s.refreshClaims(refresh)
	if err != nil {
		return nil, err
	}
	return s.issue(claims.UserID, claims.Name, claims.Email)
}

// SignOut only checks the token; sessions are stateless and clients drop
// their tokens.
func (s *authService) SignOut(ctx context.Context, refresh string) error {
	claims, err := s.refreshClaims(refresh)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "User signed out", "userID", claims.UserID)
	return nil
}

func (s *authService) CurrentUser(ctx context.Context) *domain.Identity {
	return security.IdentityFromContext(ctx)
}

func (s *authService) refreshClaims(refresh string) (*security.UserClaims, error) {
	claims, err := s.tokens.ValidateToken(refresh)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnauthorized, err, err.Error())
	}
	if claims.Type != security.TokenTypeRefresh {
		return nil, apperr.Wrap(apperr.CodeUnauthorized, security.ErrWrongTokenType, security.ErrWrongTokenType.Error())
	}
	return claims, nil
}

func (s *authService) issue(userID, name, email string) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(userID, name, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "could not sign access token")
	}
	refresh, err := s.tokens.GenerateRefreshToken(userID, name, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "could not sign refresh token")
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}
