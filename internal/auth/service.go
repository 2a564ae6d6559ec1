package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nirvachan/server/internal/domain/users"
)

var (
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrUserMissing is returned when a valid token points at a user record
	// that no longer exists.
	ErrUserMissing = errors.New("token user missing")
)

// Service orchestrates the OTP login flow and token lifecycle.
type Service struct {
	otp    *OTPStore
	tokens *TokenStore
	users  *users.Service
}

func NewService(otp *OTPStore, tokens *TokenStore, userService *users.Service) *Service {
	return &Service{otp: otp, tokens: tokens, users: userService}
}

type Challenge struct {
	Message   string
	ExpiresIn int
	DevOTP    string
}

type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         *users.User
}

// RequestOTP stores a passcode for the phone, superseding any pending one.
// No SMS is sent; the code comes back in the challenge for testing.
func (s *Service) RequestOTP(phone string) Challenge {
	code, ttl := s.otp.Request(phone)
	return Challenge{
		Message:   fmt.Sprintf("OTP sent to %s", maskPhone(phone)),
		ExpiresIn: int(ttl.Seconds()),
		DevOTP:    code,
	}
}

// VerifyOTP checks the passcode, resolves or lazily creates the user, and
// issues a fresh access/refresh token pair.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (*Session, error) {
	if !s.otp.Verify(phone, code) {
		return nil, ErrInvalidOTP
	}

	user, err := s.users.GetOrCreate(ctx, phone)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.Issue(user.ID, TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(user.ID, TokenRefresh)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

// Refresh issues a new access token against a refresh token. The refresh
// token itself is not rotated and stays valid for its full window.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	token, err := s.tokens.Resolve(refreshToken)
	if err != nil {
		return nil, err
	}
	if token.Kind != TokenRefresh {
		return nil, ErrTokenNotFound
	}

	user, err := s.users.Get(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserMissing
		}
		return nil, err
	}

	access, err := s.tokens.Issue(user.ID, TokenAccess)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

// ResolveAccess maps a bearer credential to its user. The error reports
// which guard failed: unknown token, expired token, wrong kind, or a user
// record that no longer exists.
func (s *Service) ResolveAccess(ctx context.Context, accessToken string) (*users.User, error) {
	token, err := s.tokens.Resolve(accessToken)
	if err != nil {
		return nil, err
	}
	if token.Kind != TokenAccess {
		return nil, ErrTokenNotFound
	}

	user, err := s.users.Get(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserMissing
		}
		return nil, err
	}
	return user, nil
}

func maskPhone(phone string) string {
	if len(phone) <= 7 {
		return phone
	}
	return phone[:4] + "****" + phone[len(phone)-3:]
}
