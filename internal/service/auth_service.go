package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"evalboard/internal/domains"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	provider AuthProvider
	secret   string
}

type AuthProvider interface {
	SaveAccount(ctx context.Context, passHash string, account domains.Account) error
	GetAccountByEmail(ctx context.Context, email string) (domains.Account, error)
	GetAccountByID(ctx context.Context, id int) (domains.Account, error)
}

func NewAuthService(provider AuthProvider, secret string) *AuthService {
	return &AuthService{
		provider: provider,
		secret:   secret,
	}
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (string, string, error) {
	account, err := s.provider.GetAccountByEmail(ctx, email)
	if err != nil {
		slog.Error("fetch account failed", "err", err)
		return "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", "", PasswordIncorrect
	}

	accessToken, refreshToken, err := s.GenerateTokens(account)
	if err != nil {
		slog.Error("generate tokens failed", "err", err)
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *AuthService) GenerateTokens(account domains.Account) (accessToken string, refreshToken string, err error) {
	accessExpiration := time.Now().Add(15 * time.Minute)
	refreshExpiration := time.Now().Add(7 * 24 * time.Hour)

	accessClaims := jwt.MapClaims{
		"sub":  strconv.Itoa(account.Id),
		"exp":  accessExpiration.Unix(),
		"type": "access",
	}
	accessJWT := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessToken, err = accessJWT.SignedString([]byte(s.secret))
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"sub":  strconv.Itoa(account.Id),
		"exp":  refreshExpiration.Unix(),
		"type": "refresh",
	}
	refreshJWT := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshToken, err = refreshJWT.SignedString([]byte(s.secret))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *AuthService) Register(ctx context.Context, account domains.Account) error {
	passHash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("hash password failed", "err", err)
		return err
	}

	if err := s.provider.SaveAccount(ctx, string(passHash), account); err != nil {
		slog.Error("save account failed", "err", err)
		return err
	}

	return nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sub, claims, err := s.validateAndGetSubByToken(refreshToken)
	if err != nil || claims["type"] != "refresh" {
		return "", "", TokenIncorrect
	}

	account, err := s.provider.GetAccountByID(ctx, sub)
	if err != nil {
		return "", "", err
	}

	return s.GenerateTokens(account)
}

func (s *AuthService) Me(ctx context.Context, token string) (domains.Account, error) {
	sub, _, err := s.validateAndGetSubByToken(token)
	if err != nil {
		return domains.Account{}, err
	}
	account, err := s.provider.GetAccountByID(ctx, sub)
	if err != nil {
		return domains.Account{}, err
	}
	return account, nil
}

func (s *AuthService) validateAndGetSubByToken(initToken string) (int, jwt.MapClaims, error) {
	token, err := jwt.Parse(initToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return 0, nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, nil, errors.New("invalid claims")
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, nil, errors.New("subject missing")
	}

	uid, err := strconv.ParseInt(subStr, 10, 64)
	if err != nil {
		return 0, nil, errors.New("subject malformed")
	}

	return int(uid), claims, nil
}
