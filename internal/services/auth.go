package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/productforge-backend/internal/data/repos"
	types "github.com/yungbote/productforge-backend/internal/domain"
	domainerrs "github.com/yungbote/productforge-backend/internal/pkg/errors"
	"github.com/yungbote/productforge-backend/internal/platform/apierr"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*types.User, error)
	// Login accepts an email or a username and returns a signed access token.
	Login(ctx context.Context, login, password string) (string, *types.User, error)
	ParseToken(tokenString string) (uuid.UUID, error)
	AccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

func unauthorized(msg string) error {
	return apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("%w: %s", domainerrs.ErrUnauthorized, msg))
}

func (as *authService) Register(ctx context.Context, username, email, password string) (*types.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, apierr.Validation("", "username, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, apierr.Validation("", "invalid email")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	var out *types.User
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.ExistsByEmailOrUsername(dbc, email, username)
		if err != nil {
			return err
		}
		if exists {
			return apierr.New(http.StatusConflict, "conflict", fmt.Errorf("%w: username or email already registered", domainerrs.ErrConflict))
		}
		rows, err := as.userRepo.Create(dbc, []*types.User{{
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
		}})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		out = rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("user registered", "user_id", out.ID)
	return out, nil
}

func (as *authService) Login(ctx context.Context, login, password string) (string, *types.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return "", nil, apierr.Validation("", "login and password are required")
	}
	dbc := dbctx.Of(ctx)
	var (
		user *types.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = as.userRepo.GetByEmail(dbc, login)
	} else {
		user, err = as.userRepo.GetByUsername(dbc, login)
	}
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, unauthorized("invalid credentials")
	}
	tok, err := as.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return tok, user, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) ParseToken(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, unauthorized("missing token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, unauthorized("token expired")
		}
		return uuid.Nil, unauthorized("invalid token")
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, unauthorized("invalid token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, unauthorized("invalid subject")
	}
	return id, nil
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }
