package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/supplesafe-backend/internal/data/repos"
	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/pkg/dbctx"
	svcerr "github.com/yungbote/supplesafe-backend/internal/pkg/errors"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
	"github.com/yungbote/supplesafe-backend/internal/realtime/bus"
)

// EmailDomain turns a bare username into the account email.
const EmailDomain = "supplesafe.local"

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (LoginResult, error)
	SessionFromToken(ctx context.Context, tokenString string) (*domain.Session, error)
	Logout(ctx context.Context, sess *domain.Session) error
	PurgeExpiredTokens(ctx context.Context) (int64, error)
	AccessTTL() time.Duration
}

type LoginResult struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Session     *domain.Session `json:"session"`
}

type JWTClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	medRepo       repos.MedicationRepo
	sessions      bus.Bus
	jwtSecretKey  string
	accessTTL     time.Duration
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	medRepo repos.MedicationRepo,
	sessions bus.Bus,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		medRepo:       medRepo,
		sessions:      sessions,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		now:           time.Now,
	}
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }

func (as *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if err := validateInput(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Username: in.Username,
		Email:    in.Username + "@" + EmailDomain,
		Password: string(hash),
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.UsernameExists(dbc, user.Username)
		if err != nil {
			return fmt.Errorf("%w: check username: %v", svcerr.ErrPersistence, err)
		}
		if exists {
			return fmt.Errorf("%w: username is already taken", svcerr.ErrValidation)
		}
		if _, err := as.userRepo.Create(dbc, []*domain.User{user}); err != nil {
			return fmt.Errorf("%w: create user: %v", svcerr.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// New accounts start with the demo list; a failure here does not undo the account.
	seedSess := &domain.Session{UserID: user.ID, Username: user.Username}
	if _, err := NewMedicationRegistry(as.log, as.medRepo).SeedDefaults(ctx, seedSess); err != nil {
		as.log.Warn("seeding default medications failed", "error", err, "user_id", user.ID)
	}
	as.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (as *authService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if err := validateInput(in); err != nil {
		return LoginResult{}, err
	}

	users, err := as.userRepo.GetByUsernames(dbctx.From(ctx), []string{in.Username})
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: load user: %v", svcerr.ErrPersistence, err)
	}
	if len(users) == 0 || users[0] == nil {
		return LoginResult{}, fmt.Errorf("%w: invalid username or password", svcerr.ErrUnauthorized)
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return LoginResult{}, fmt.Errorf("%w: invalid username or password", svcerr.ErrUnauthorized)
	}

	now := as.now()
	tokenID := uuid.New()
	expiresAt := now.Add(as.accessTTL)
	accessToken, err := as.generateAccessToken(user, tokenID, now, expiresAt)
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate access token: %w", err)
	}
	if _, err := as.userTokenRepo.Create(dbctx.From(ctx), []*domain.UserToken{{
		ID:          tokenID,
		UserID:      user.ID,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}}); err != nil {
		return LoginResult{}, fmt.Errorf("%w: store token: %v", svcerr.ErrPersistence, err)
	}

	sess := &domain.Session{UserID: user.ID, Username: user.Username, TokenID: tokenID, ExpiresAt: expiresAt}
	as.publish(ctx, domain.SessionSignedIn, user.ID, tokenID)
	as.log.Info("user logged in", "user_id", user.ID)
	return LoginResult{AccessToken: accessToken, ExpiresAt: expiresAt, Session: sess}, nil
}

func (as *authService) generateAccessToken(user *domain.User, tokenID uuid.UUID, now, expiresAt time.Time) (string, error) {
	claims := JWTClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SessionFromToken validates signature, expiry and revocation. An empty token is the
// anonymous session (nil, nil).
func (as *authService) SessionFromToken(ctx context.Context, tokenString string) (*domain.Session, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, nil
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithTimeFunc(as.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", svcerr.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid or expired token", svcerr.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id in token", svcerr.ErrUnauthorized)
	}

	found, err := as.userTokenRepo.GetByAccessTokens(dbctx.From(ctx), []string{tokenString})
	if err != nil {
		return nil, fmt.Errorf("%w: load token: %v", svcerr.ErrPersistence, err)
	}
	if len(found) == 0 || found[0] == nil || !found[0].Active(as.now()) || found[0].UserID != userID {
		return nil, fmt.Errorf("%w: token revoked or unknown", svcerr.ErrUnauthorized)
	}

	return &domain.Session{
		UserID:    userID,
		Username:  claims.Username,
		TokenID:   found[0].ID,
		ExpiresAt: found[0].ExpiresAt,
	}, nil
}

func (as *authService) Logout(ctx context.Context, sess *domain.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := as.userTokenRepo.RevokeByIDs(dbctx.From(ctx), []uuid.UUID{sess.TokenID}, as.now().UTC()); err != nil {
		return fmt.Errorf("%w: revoke token: %v", svcerr.ErrPersistence, err)
	}
	as.publish(ctx, domain.SessionSignedOut, sess.UserID, sess.TokenID)
	as.log.Info("user logged out", "user_id", sess.UserID)
	return nil
}

func (as *authService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := as.userTokenRepo.DeleteExpired(dbctx.From(ctx), as.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: purge tokens: %v", svcerr.ErrPersistence, err)
	}
	return n, nil
}

func (as *authService) publish(ctx context.Context, kind domain.SessionEventKind, userID, tokenID uuid.UUID) {
	if as.sessions == nil {
		return
	}
	evt := domain.SessionEvent{Kind: kind, UserID: userID, TokenID: tokenID, At: as.now().UTC()}
	if err := as.sessions.Publish(ctx, evt); err != nil && !errors.Is(err, context.Canceled) {
		as.log.Warn("session event publish failed", "error", err, "kind", string(kind))
	}
}
