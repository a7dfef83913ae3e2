package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/jooksuklubid/runclubs/internal/domain/common/errorz"
	"github.com/jooksuklubid/runclubs/internal/domain/dto"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/clock"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

const (
	// MaxCodeAttempts is the number of wrong guesses after which a pending code is discarded.
	MaxCodeAttempts = 5
	// CodeResendInterval is the minimum time between two codes sent to the same address.
	CodeResendInterval = time.Minute
)

type codeStorage interface {
	Get(ctx context.Context, email string) (string, error)
	Set(ctx context.Context, email, code string, expiration time.Duration) error
	Fail(ctx context.Context, email string, expiration time.Duration) (int64, error)
	Throttle(ctx context.Context, email string, interval time.Duration) (bool, error)
	Clear(ctx context.Context, email string) error
}

type revokedTokenStorage interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type UserStorage interface {
	Login(ctx context.Context, email string, at time.Time) (*entity.User, error)
}

type codeSender interface {
	SendLoginCode(to string, code string) error
}

type AuthConfig struct {
	Secret      []byte
	TokenTTL    time.Duration
	CodeTTL     time.Duration
	AdminEmails []string
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

// AuthService signs users in with one-time email codes and issues bearer tokens.
type AuthService struct {
	codes     codeStorage
	revoked   revokedTokenStorage
	users     UserStorage
	sender    codeSender
	validator Validator
	clock     clock.Clock
	cfg       AuthConfig
	admins    map[string]struct{}
	logger    *types.Logger
}

func NewAuthService(
	codes codeStorage,
	revoked revokedTokenStorage,
	users UserStorage,
	sender codeSender,
	validator Validator,
	clk clock.Clock,
	cfg AuthConfig,
	logger *types.Logger,
) *AuthService {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		admins[normalizeEmail(email)] = struct{}{}
	}
	return &AuthService{
		codes:     codes,
		revoked:   revoked,
		users:     users,
		sender:    sender,
		validator: validator,
		clock:     clk,
		cfg:       cfg,
		admins:    admins,
		logger:    logger,
	}
}

// RequestCode generates a fresh sign-in code for the email and sends it.
func (s *AuthService) RequestCode(ctx context.Context, req dto.CodeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	email := normalizeEmail(req.Email)

	allowed, err := s.codes.Throttle(ctx, email, CodeResendInterval)
	if err != nil {
		return fmt.Errorf("throttle code: %w", err)
	}
	if !allowed {
		return errorz.ErrTooManyRequests
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err = s.codes.Set(ctx, email, code, s.cfg.CodeTTL); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	if err = s.sender.SendLoginCode(email, code); err != nil {
		return err
	}
	return nil
}

// Exchange trades a valid sign-in code for a bearer token. The code can be used once.
func (s *AuthService) Exchange(ctx context.Context, req dto.TokenRequest) (*dto.Token, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	stored, err := s.codes.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(req.Code)) != 1 {
		return nil, s.fail(ctx, email)
	}
	if err = s.codes.Clear(ctx, email); err != nil {
		return nil, fmt.Errorf("clear code: %w", err)
	}

	now := s.clock.Now()
	user, err := s.users.Login(ctx, email, now)
	if err != nil {
		return nil, fmt.Errorf("login user: %w", err)
	}

	token, err := s.issue(user, now)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("User signed in (user_id=%s)", user.ID)
	return token, nil
}

// fail counts a wrong guess and drops the pending code once MaxCodeAttempts is reached.
func (s *AuthService) fail(ctx context.Context, email string) error {
	attempts, err := s.codes.Fail(ctx, email, s.cfg.CodeTTL)
	if err != nil {
		return fmt.Errorf("count failed code: %w", err)
	}
	if attempts >= MaxCodeAttempts {
		if err = s.codes.Clear(ctx, email); err != nil {
			return fmt.Errorf("clear code: %w", err)
		}
		s.logger.Warnf("Login code discarded after %d failed attempts", attempts)
	}
	return errorz.ErrInvalidCode
}

func (s *AuthService) issue(user *entity.User, now time.Time) (*dto.Token, error) {
	expiresAt := now.Add(s.cfg.TokenTTL)
	claims := tokenClaims{
		Email: user.Email,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Subject:   user.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &dto.Token{Token: signed, ExpiresAt: time.Unix(expiresAt.Unix(), 0).In(now.Location())}, nil
}

// Verify checks the signature, expiry and revocation of a bearer token.
func (s *AuthService) Verify(ctx context.Context, raw string) (*dto.Identity, error) {
	var claims tokenClaims
	parser := jwt.Parser{SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorz.ErrInvalidToken, err)
	}

	if !claims.VerifyExpiresAt(s.clock.Now().Unix(), true) {
		return nil, fmt.Errorf("%w: expired", errorz.ErrInvalidToken)
	}
	if claims.Subject == "" || claims.Id == "" {
		return nil, fmt.Errorf("%w: missing subject", errorz.ErrInvalidToken)
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.Id)
	if err != nil {
		return nil, fmt.Errorf("check revoked token: %w", err)
	}
	if revoked {
		return nil, errorz.ErrRevokedToken
	}

	return &dto.Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		TokenID:   claims.Id,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}, nil
}

// Logout revokes the token of identity until it would expire.
func (s *AuthService) Logout(ctx context.Context, identity *dto.Identity) error {
	if identity == nil {
		return errorz.ErrUnauthorized
	}
	ttl := identity.ExpiresAt.Sub(s.clock.Now())
	if err := s.revoked.Revoke(ctx, identity.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) IsAdmin(identity *dto.Identity) bool {
	if identity == nil {
		return false
	}
	_, ok := s.admins[normalizeEmail(identity.Email)]
	return ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
