package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

type Auther struct {
	provider     IdentityProvider
	signingKey   []byte
	issuer       string
	audience     []string
	logger       Logger
	tokenService TokenService
	activitySink ActivitySink
	decorators   []ClaimsDecorator
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		jwt.ClaimStrings(opts.GetAudience()),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		signingKey:   []byte(opts.GetSigningKey()),
		audience:     opts.GetAudience(),
		issuer:       opts.GetIssuer(),
		logger:       defLogger{},
		tokenService: tokenService,
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenService overrides the token issuer, mostly useful for tests.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithClaimsDecorator appends decorators that may enrich claim extension
// fields before tokens are signed. Registered and identity claims stay
// immutable.
func (s *Auther) WithClaimsDecorator(decorators ...ClaimsDecorator) *Auther {
	for _, d := range decorators {
		if d != nil {
			s.decorators = append(s.decorators, d)
		}
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Authenticate verifies the email/password pair and returns the wire-safe
// user projection. Unknown emails and wrong passwords surface as the same
// ErrInvalidCredentials; inactive accounts are only disclosed after the
// credentials checked out.
func (s *Auther) Authenticate(ctx context.Context, email, password string) (*SafeUser, error) {
	user, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Error("Authenticate verify identity error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": email,
			"error":      err.Error(),
		})
		return nil, err
	}

	if user == nil {
		s.logger.Error("Authenticate identity is nil")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": email,
			"error":      ErrInvalidCredentials.Error(),
		})
		return nil, ErrInvalidCredentials
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromUser(user), user.ID.String(), map[string]any{
		"identifier": email,
	})

	return user, nil
}

// Login builds claims for an already authenticated user and signs them. Pure
// composition: no store access, no side effects beyond token minting.
func (s *Auther) Login(ctx context.Context, user *SafeUser) (*LoginResult, error) {
	if user == nil {
		return nil, errors.New("user is required", errors.CategoryBadInput)
	}

	identity := NewIdentityFromUser(user)
	claims := s.tokenService.Claims(identity)

	if len(s.decorators) > 0 {
		snapshot := captureImmutableClaims(claims)
		for _, decorator := range s.decorators {
			if err := decorator.Decorate(ctx, identity, claims); err != nil {
				s.logger.Error("Login claims decorator error", "error", err)
				return nil, err
			}
		}
		if err := snapshot.validate(claims); err != nil {
			s.logger.Error("Login claims decorator mutated protected claim", "error", err)
			return nil, err
		}
	}

	token, err := s.tokenService.SignClaims(claims)
	if err != nil {
		s.logger.Error("Login token generation error", "error", err)
		return nil, err
	}

	return &LoginResult{User: user, Token: token}, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func (s *Auther) actorFromUser(user *SafeUser) ActorRef {
	if user == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   user.ID.String(),
		Type: "user",
	}
}
