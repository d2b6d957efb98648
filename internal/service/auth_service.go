package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ktsuchiya/blockmarket-backend/internal/auth"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"github.com/ktsuchiya/blockmarket-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrPlayerOffline = errors.New("player is not online")
	ErrBadCode       = errors.New("invalid or expired code")
	ErrNoConsole     = errors.New("game console unavailable")
)

// Console is the slice of the RCON client the login flow needs.
type Console interface {
	Tell(playerName, message string) error
	OnlinePlayers() ([]string, error)
}

type AuthService interface {
	// RequestCode whispers a fresh one-time code to the named player
	// in-game; possession of the code proves control of the account.
	RequestCode(ctx context.Context, playerName string) error
	// VerifyCode consumes the code and returns a session token plus the
	// (possibly just created) account.
	VerifyCode(ctx context.Context, playerName, code string) (string, *model.User, error)
}

type authService struct {
	codes      *auth.CodeStore
	console    Console
	userRepo   repository.UserRepository
	jwtSecret  []byte
	sessionTTL time.Duration
}

func NewAuthService(codes *auth.CodeStore, console Console, userRepo repository.UserRepository, jwtSecret string, sessionTTL time.Duration) AuthService {
	return &authService{
		codes:      codes,
		console:    console,
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
	}
}

func (s *authService) RequestCode(ctx context.Context, playerName string) error {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return errors.New("player name is required")
	}
	if s.console == nil {
		return ErrNoConsole
	}

	online, err := s.console.OnlinePlayers()
	if err != nil {
		return fmt.Errorf("query player list: %w", err)
	}
	found := false
	for _, p := range online {
		if strings.EqualFold(p, playerName) {
			playerName = p // use the server's casing for the redis key
			found = true
			break
		}
	}
	if !found {
		return ErrPlayerOffline
	}

	code, err := sixDigitCode()
	if err != nil {
		return err
	}
	if err := s.codes.Put(ctx, playerName, code); err != nil {
		return err
	}
	return s.console.Tell(playerName, fmt.Sprintf("Your marketplace login code is %s. It expires in a few minutes.", code))
}

func (s *authService) VerifyCode(ctx context.Context, playerName, code string) (string, *model.User, error) {
	playerName = strings.TrimSpace(playerName)
	code = strings.TrimSpace(code)
	if playerName == "" || code == "" {
		return "", nil, ErrBadCode
	}

	stored, err := s.codes.Consume(ctx, playerName)
	if err != nil {
		if errors.Is(err, auth.ErrCodeNotFound) {
			return "", nil, ErrBadCode
		}
		return "", nil, err
	}
	if stored != code {
		return "", nil, ErrBadCode
	}

	user, err := s.userRepo.FindByPlayerName(ctx, playerName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &model.User{
			UID:        uuid.NewString(),
			PlayerName: playerName,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return "", nil, err
		}
	} else if err != nil {
		return "", nil, err
	}
	_ = s.userRepo.TouchLogin(ctx, user.UID)

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.UID,
		"name": user.PlayerName,
		"iat":  now.Unix(),
		"exp":  now.Add(s.sessionTTL).Unix(),
		"jti":  uuid.NewString(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
