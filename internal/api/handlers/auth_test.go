package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nirvachan/server/internal/auth"
	"github.com/nirvachan/server/internal/domain/users"
)

type fakeUserRepo struct {
	users map[string]*users.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*users.User)}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) Create(_ context.Context, id, phone string) (*users.User, error) {
	user := &users.User{ID: id, Phone: phone, Role: users.DefaultRole, CreatedAt: time.Now()}
	f.users[id] = user
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) Update(_ context.Context, id string, params users.UpdateParams) (*users.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	if params.Name != nil {
		user.Name = params.Name
	}
	if params.ConstituencyID != nil {
		user.ConstituencyID = params.ConstituencyID
	}
	copied := *user
	return &copied, nil
}

func newTestAuthHandler() (*AuthHandler, *fakeUserRepo) {
	repo := newFakeUserRepo()
	otpStore := auth.NewOTPStore(auth.NewMemoryTable[auth.OTPEntry](), "123456", 5*time.Minute)
	tokenStore := auth.NewTokenStore(auth.NewMemoryTable[auth.Token](), 24*time.Hour, 720*time.Hour)
	service := auth.NewService(otpStore, tokenStore, users.NewService(repo))
	return NewAuthHandler(service, "test"), repo
}

func TestRequestOTPReturnsDevCode(t *testing.T) {
	handler, _ := newTestAuthHandler()

	req := httptest.NewRequest("POST", "/v1/auth/request-otp", strings.NewReader(`{"phone":"9801234567"}`))
	rec := httptest.NewRecorder()
	handler.RequestOTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message   string `json:"message"`
		ExpiresIn int    `json:"expires_in"`
		DevOTP    string `json:"dev_otp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "OTP sent to 9801****567", body.Message)
	require.Equal(t, 300, body.ExpiresIn)
	require.Len(t, body.DevOTP, 6)
}

func TestRequestOTPRejectsMissingPhone(t *testing.T) {
	handler, _ := newTestAuthHandler()

	req := httptest.NewRequest("POST", "/v1/auth/request-otp", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.RequestOTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestVerifyOTPIssuesSession(t *testing.T) {
	handler, _ := newTestAuthHandler()

	req := httptest.NewRequest("POST", "/v1/auth/verify-otp", strings.NewReader(`{"phone":"9801234567","otp":"123456"}`))
	rec := httptest.NewRecorder()
	handler.VerifyOTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
		User         struct {
			ID    string  `json:"id"`
			Phone string  `json:"phone"`
			Name  *string `json:"name"`
			Role  string  `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.AccessToken)
	require.NotEmpty(t, body.RefreshToken)
	require.NotEqual(t, body.AccessToken, body.RefreshToken)
	require.Equal(t, 86400, body.ExpiresIn)
	require.Equal(t, users.IDFromPhone("9801234567"), body.User.ID)
	require.Equal(t, "9801234567", body.User.Phone)
	require.Nil(t, body.User.Name)
	require.Equal(t, "citizen", body.User.Role)
}

func TestVerifyOTPRejectsWrongCode(t *testing.T) {
	handler, _ := newTestAuthHandler()

	req := httptest.NewRequest("POST", "/v1/auth/verify-otp", strings.NewReader(`{"phone":"9801234567","otp":"000000"}`))
	rec := httptest.NewRecorder()
	handler.VerifyOTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyOTPIsStableAcrossLogins(t *testing.T) {
	handler, repo := newTestAuthHandler()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/v1/auth/verify-otp", strings.NewReader(`{"phone":"9801234567","otp":"123456"}`))
		rec := httptest.NewRecorder()
		handler.VerifyOTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Len(t, repo.users, 1)
}

func TestRefreshRequiresQueryParam(t *testing.T) {
	handler, _ := newTestAuthHandler()

	req := httptest.NewRequest("POST", "/v1/auth/refresh", nil)
	rec := httptest.NewRecorder()
	handler.Refresh(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	handler, _ := newTestAuthHandler()

	verify := httptest.NewRequest("POST", "/v1/auth/verify-otp", strings.NewReader(`{"phone":"9801234567","otp":"123456"}`))
	verifyRec := httptest.NewRecorder()
	handler.VerifyOTP(verifyRec, verify)
	require.Equal(t, http.StatusOK, verifyRec.Code)

	var session struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(verifyRec.Body.Bytes(), &session))

	req := httptest.NewRequest("POST", "/v1/auth/refresh?refresh_token="+session.RefreshToken, nil)
	rec := httptest.NewRecorder()
	handler.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["access_token"])
	require.NotEqual(t, session.AccessToken, body["access_token"])
	// the refresh token is returned unrotated
	require.Equal(t, session.RefreshToken, body["refresh_token"])
	_, hasUser := body["user"]
	require.False(t, hasUser)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	handler, _ := newTestAuthHandler()

	verify := httptest.NewRequest("POST", "/v1/auth/verify-otp", strings.NewReader(`{"phone":"9801234567","otp":"123456"}`))
	verifyRec := httptest.NewRecorder()
	handler.VerifyOTP(verifyRec, verify)

	var session struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(verifyRec.Body.Bytes(), &session))

	req := httptest.NewRequest("POST", "/v1/auth/refresh?refresh_token="+session.AccessToken, nil)
	rec := httptest.NewRecorder()
	handler.Refresh(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
