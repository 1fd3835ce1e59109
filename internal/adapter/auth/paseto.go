package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/MikeRez0/tutorpay/internal/adapter/config"
	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
)

const defaultTokenDuration = 24 * time.Hour

type PasetoToken struct {
	parser   *paseto.Parser
	key      *paseto.V4SymmetricKey
	duration time.Duration
}

var _ port.TokenService = (*PasetoToken)(nil)

func New(conf *config.Auth) (*PasetoToken, error) {
	var key paseto.V4SymmetricKey
	if conf.SymmetricKey == "" {
		key = paseto.NewV4SymmetricKey()
	} else {
		var err error
		key, err = paseto.V4SymmetricKeyFromHex(conf.SymmetricKey)
		if err != nil {
			return nil, fmt.Errorf("invalid auth symmetric key: %w", err)
		}
	}

	duration := conf.TokenDuration
	if duration <= 0 {
		duration = defaultTokenDuration
	}

	parser := paseto.NewParserWithoutExpiryCheck()

	return &PasetoToken{
		parser:   &parser,
		key:      &key,
		duration: duration,
	}, nil
}

func (p *PasetoToken) CreateToken(actor *domain.Actor) (string, error) {
	issued := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(issued)
	token.SetExpiration(issued.Add(p.duration))

	payload := port.TokenPayload{UserID: actor.ID, Role: actor.Role}
	err := token.Set("payload", payload)
	if err != nil {
		return "", domain.ErrTokenCreation
	}

	return token.V4Encrypt(*p.key, nil), nil
}

func (p *PasetoToken) VerifyToken(token string) (*port.TokenPayload, error) {
	parsedToken, err := p.parser.ParseV4Local(*p.key, token, nil)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	expiration, err := parsedToken.GetExpiration()
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if time.Now().After(expiration) {
		return nil, domain.ErrExpiredToken
	}

	payload := port.TokenPayload{}
	err = parsedToken.Get("payload", &payload)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return &payload, nil
}
