package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nirvachan/server/internal/api/problem"
	"github.com/nirvachan/server/internal/auth"
	"github.com/nirvachan/server/internal/domain/users"
	"github.com/nirvachan/server/internal/metrics"
)

type AuthHandler struct {
	Service  *auth.Service
	Env      string
	validate *validator.Validate
}

func NewAuthHandler(service *auth.Service, env string) *AuthHandler {
	return &AuthHandler{Service: service, Env: env, validate: validator.New()}
}

type otpRequest struct {
	Phone string `json:"phone" validate:"required,min=4,max=20"`
}

type otpVerifyRequest struct {
	Phone string `json:"phone" validate:"required,min=4,max=20"`
	OTP   string `json:"otp" validate:"required"`
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var body otpRequest
	if !h.decode(w, r, &body) {
		return
	}

	challenge := h.Service.RequestOTP(body.Phone)
	metrics.OTPRequestsTotal.WithLabelValues("issued").Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    challenge.Message,
		"expires_in": challenge.ExpiresIn,
		"dev_otp":    challenge.DevOTP,
	})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body otpVerifyRequest
	if !h.decode(w, r, &body) {
		return
	}

	session, err := h.Service.VerifyOTP(r.Context(), body.Phone, body.OTP)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidOTP) {
			metrics.OTPVerificationsTotal.WithLabelValues("invalid").Inc()
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid OTP", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	metrics.OTPVerificationsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"expires_in":    session.ExpiresIn,
		"user":          sessionUserPayload(session.User),
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.URL.Query().Get("refresh_token")
	if refreshToken == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			errors.New("refresh_token is required"), h.Env)
		return
	}

	session, err := h.Service.Refresh(r.Context(), refreshToken)
	if err != nil {
		title := "Invalid refresh token"
		if errors.Is(err, auth.ErrTokenExpired) {
			title = "Refresh token expired"
		}
		switch {
		case errors.Is(err, auth.ErrTokenNotFound),
			errors.Is(err, auth.ErrTokenExpired),
			errors.Is(err, auth.ErrUserMissing):
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, title, err, h.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		}
		return
	}

	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"expires_in":    session.ExpiresIn,
	})
}

func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, body any) bool {
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return false
	}
	if err := h.validate.Struct(body); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return false
	}
	return true
}

func sessionUserPayload(user *users.User) map[string]any {
	if user == nil {
		return nil
	}
	return map[string]any{
		"id":    user.ID,
		"phone": user.Phone,
		"name":  user.Name,
		"role":  user.Role,
	}
}
