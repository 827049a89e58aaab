package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"evalboard/internal/domains"
	"evalboard/internal/httpx"
	"evalboard/internal/service"
	"evalboard/internal/storage"
)

type AuthHandlers struct {
	service AuthServices
}

type AuthServices interface {
	Register(ctx context.Context, account domains.Account) error
	Login(ctx context.Context, email string, password string) (string, string, error)
	Refresh(ctx context.Context, token string) (string, string, error)
	Me(ctx context.Context, token string) (domains.Account, error)
}

func NewAuthHandlers(service AuthServices) *AuthHandlers {
	return &AuthHandlers{
		service: service,
	}
}

func (srv AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	data, err := httpx.ReadBody[RegisterData](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(data); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	account := domains.Account{
		FullName: data.FullName,
		Email:    data.Email,
		Password: data.Password,
	}
	if err := srv.service.Register(r.Context(), account); err != nil {
		if errors.Is(err, storage.ErrAccountExists) {
			httpx.Error(w, http.StatusConflict, "Account already exists")
			return
		}
		slog.Error("Register failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (srv AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	loginData, err := httpx.ReadBody[LoginData](*r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(loginData); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := srv.service.Login(r.Context(), loginData.Email, loginData.Password)
	if err != nil {
		if errors.Is(err, service.PasswordIncorrect) || errors.Is(err, storage.ErrNotFound) {
			httpx.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		slog.Error("Login failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	httpx.JSON(w, http.StatusOK, struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (srv AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	tokenByCookie, err := r.Cookie("refreshToken")
	if err != nil || tokenByCookie.Value == "" {
		httpx.Error(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	accessToken, refreshToken, err := srv.service.Refresh(r.Context(), tokenByCookie.Value)
	if err != nil {
		if errors.Is(err, service.TokenIncorrect) {
			httpx.Error(w, http.StatusUnauthorized, "Token is incorrect")
			return
		}
		slog.Error("Refresh failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Failed to refresh tokens")
		return
	}

	httpx.JSON(w, http.StatusOK, struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (srv AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	account, err := srv.service.Me(r.Context(), tokenString)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}
