package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const defaultHashCost = 12

type service struct {
	accounts  Repository
	tokens    *TokenService
	events    Events
	policy    PasswordPolicy
	hashCost  int
	dummyHash string
}

type Option func(*service)

// WithPasswordPolicy replaces the default password policy.
func WithPasswordPolicy(p PasswordPolicy) Option {
	return func(s *service) { s.policy = p }
}

// WithHashCost sets the bcrypt cost used for new password hashes.
func WithHashCost(cost int) Option {
	return func(s *service) { s.hashCost = cost }
}

func NewService(accounts Repository, tokens *TokenService, events Events, opts ...Option) Service {
	svc := &service{
		accounts: accounts,
		tokens:   tokens,
		events:   events,
		policy:   DefaultPasswordPolicy(8),
		hashCost: defaultHashCost,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.events == nil {
		svc.events = noopEvents{}
	}
	if svc.hashCost < bcrypt.MinCost || svc.hashCost > bcrypt.MaxCost {
		svc.hashCost = defaultHashCost
	}

	// compared against on unknown usernames so login takes the same time
	svc.dummyHash, _ = hashPassword("dummy-password-for-timing", svc.hashCost)

	return svc
}

func (svc *service) RegisterAccount(ctx context.Context, r registerAccountRequest) (Profile, error) {
	username := normalizeIdentifier(r.Username)
	nickname := normalizeIdentifier(r.Nickname)

	if err := validateUsername(username); err != nil {
		return Profile{}, err
	}

	password := r.Password
	if password == "" {
		return Profile{}, fieldError("password", errFieldRequired)
	}
	if err := svc.policy.Check(password, username); err != nil {
		return Profile{}, err
	}

	acc, err := NewAccount(username, nickname)
	if err != nil {
		return Profile{}, err
	}

	if err := svc.verifyNotInUse(ctx, username, nickname); err != nil {
		return Profile{}, err
	}

	acc.ID = NewID()
	hash, err := hashPassword(password, svc.hashCost)
	if err != nil {
		return Profile{}, err
	}
	acc.Credentials.Password = hash

	acc.CreatedAt = time.Now().UTC()
	if err = svc.accounts.Store(ctx, acc); err != nil {
		// lost a race with a concurrent signup
		if errors.Is(err, ErrDuplicate) {
			return Profile{}, ErrAlreadyExists
		}
		return Profile{}, fmt.Errorf("error saving account: %w", err)
	}

	svc.events.AccountCreated(ctx, string(acc.ID), username, nickname)

	return acc.Profile(), nil
}

// verifyNotInUse reports ErrAlreadyExists for either collision so callers
// cannot tell which identifier is taken.
func (svc *service) verifyNotInUse(ctx context.Context, username string, nickname string) error {
	if _, err := svc.accounts.FindByName(ctx, username); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("error looking up username: %w", err)
	}

	if _, err := svc.accounts.FindByNickname(ctx, nickname); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("error looking up nickname: %w", err)
	}

	return nil
}

func (svc *service) Login(ctx context.Context, r loginRequest) (string, error) {
	username := normalizeIdentifier(r.Username)
	if username == "" {
		return "", fieldError("username", errFieldRequired)
	}
	if r.Password == "" {
		return "", fieldError("password", errFieldRequired)
	}

	acc, err := svc.accounts.FindByName(ctx, username)
	if errors.Is(err, ErrNotFound) {
		hashMatchesPassword(svc.dummyHash, r.Password)
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("error looking up account: %w", err)
	}

	if !hashMatchesPassword(acc.Credentials.Password, r.Password) {
		return "", ErrInvalidCredentials
	}

	return svc.tokens.Issue(acc.ID)
}

func (svc *service) WhoAmI(ctx context.Context, token string) (Profile, error) {
	if token == "" {
		return Profile{}, ErrTokenMissing
	}

	id, err := svc.tokens.Verify(token)
	if err != nil {
		return Profile{}, err
	}

	acc, err := svc.accounts.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Profile{}, ErrTokenInvalid
	}
	if err != nil {
		return Profile{}, fmt.Errorf("error looking up account: %w", err)
	}

	return acc.Profile(), nil
}

type noopEvents struct{}

func (noopEvents) AccountCreated(context.Context, string, string, string) {}
