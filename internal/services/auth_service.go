package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
	"ridebooking/internal/utils"
)

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	Create(ctx context.Context, u *models.User) error
}

type SessionStore interface {
	Save(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
}

type AuthConfig struct {
	Secret          []byte
	TTL             time.Duration
	DefaultUsername string
	DefaultPassword string
	DefaultEmail    string
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      models.PublicUser `json:"user"`
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	UserID    int64  `json:"uid"`
	jwt.RegisteredClaims
}

// AuthService is the admin session gate. A token is accepted only while its
// session is present in the store, so logout revokes it immediately.
type AuthService struct {
	Users     UserStore
	Sessions  SessionStore
	Config    AuthConfig
	RequestID string

	Now func() time.Time
}

func (s AuthService) WithRequestID(id string) AuthService {
	s.RequestID = id
	return s
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// SessionTTL is how long an issued token stays valid.
func (s AuthService) SessionTTL() time.Duration {
	if s.Config.TTL > 0 {
		return s.Config.TTL
	}
	return 24 * time.Hour
}

func (s AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return LoginResult{}, domain.ValidationError{Field: "username", Msg: "Username and password required"}
	}
	if password == "" {
		return LoginResult{}, domain.ValidationError{Field: "password", Msg: "Username and password required"}
	}

	if err := s.ensureDefaultAdmin(ctx); err != nil {
		return LoginResult{}, err
	}

	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsNotFound(err) {
			utils.LogEvent(s.RequestID, "auth", "login", "unknown username", zap.String("username", username))
			return LoginResult{}, domain.AuthError{Msg: "Invalid credentials"}
		}
		return LoginResult{}, err
	}
	if !user.IsAdmin {
		utils.LogEvent(s.RequestID, "auth", "login", "non-admin login refused", zap.String("username", username))
		return LoginResult{}, domain.AuthError{Msg: "Invalid credentials"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		utils.LogEvent(s.RequestID, "auth", "login", "password mismatch", zap.String("username", username))
		return LoginResult{}, domain.AuthError{Msg: "Invalid credentials", Err: err}
	}

	now := s.now()
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.SessionTTL()),
	}
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return LoginResult{}, err
	}

	token, err := s.signToken(sess, now)
	if err != nil {
		_ = s.Sessions.Delete(ctx, sess.ID)
		return LoginResult{}, domain.PersistenceError{Op: "sign session token", Err: err}
	}

	utils.LogEvent(s.RequestID, "auth", "login", "admin logged in", zap.Int64("user_id", user.ID))
	return LoginResult{Token: token, ExpiresAt: sess.ExpiresAt, User: user.ToPublic()}, nil
}

// Logout drops the session behind token. Unparseable tokens are ignored.
func (s AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil
	}
	if err := s.Sessions.Delete(ctx, claims.SessionID); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "auth", "logout", "session closed", zap.Int64("user_id", claims.UserID))
	return nil
}

// Authenticate resolves token to the admin it was issued for.
func (s AuthService) Authenticate(ctx context.Context, token string) (domain.RequestContext, models.User, error) {
	if strings.TrimSpace(token) == "" {
		return domain.RequestContext{}, models.User{}, domain.AuthError{}
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return domain.RequestContext{}, models.User{}, domain.AuthError{Err: err}
	}

	sess, err := s.Sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.RequestContext{}, models.User{}, domain.AuthError{Msg: "Session expired", Err: err}
		}
		return domain.RequestContext{}, models.User{}, err
	}
	if sess.Expired(s.now()) || sess.UserID != claims.UserID {
		return domain.RequestContext{}, models.User{}, domain.AuthError{Msg: "Session expired"}
	}

	user, err := s.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.RequestContext{}, models.User{}, domain.AuthError{Err: err}
		}
		return domain.RequestContext{}, models.User{}, err
	}
	if !user.IsAdmin {
		return domain.RequestContext{}, user, domain.AuthError{Forbidden: true}
	}
	return domain.RequestContext{UserID: user.ID, Username: user.Username, SessionID: sess.ID}, user, nil
}

func (s AuthService) ensureDefaultAdmin(ctx context.Context) error {
	username := s.Config.DefaultUsername
	if username == "" || s.Config.DefaultPassword == "" {
		return nil
	}
	_, err := s.Users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !domain.IsNotFound(err) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.Config.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.PersistenceError{Op: "hash default admin password", Err: err}
	}
	admin := models.User{
		Username:     username,
		Email:        s.Config.DefaultEmail,
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    s.now(),
	}
	if err := s.Users.Create(ctx, &admin); err != nil {
		// lost a race with a concurrent login
		if domain.IsConflict(err) {
			return nil
		}
		return err
	}
	utils.LogEvent(s.RequestID, "auth", "bootstrap", "default admin created", zap.String("username", username))
	return nil
}

func (s AuthService) signToken(sess models.Session, now time.Time) (string, error) {
	claims := sessionClaims{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Config.Secret)
}

func (s AuthService) parseToken(raw string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (interface{}, error) {
		return s.Config.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, errors.New("token carries no session")
	}
	return claims, nil
}
