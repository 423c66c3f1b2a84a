package common

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/khalidaziz/dukkan/internal/config"
	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	"github.com/khalidaziz/dukkan/internal/log"
)

type jwtClaimsKey struct{}

type rawTokenKey struct{}

func AttachJwtClaimsToContext(c context.Context, claims jwt.RegisteredClaims) context.Context {
	return context.WithValue(c, jwtClaimsKey{}, claims)
}

// AttachRawTokenToContext keeps the verified bearer token available for
// forwarding on service-to-service calls.
func AttachRawTokenToContext(c context.Context, token string) context.Context {
	return context.WithValue(c, rawTokenKey{}, token)
}

func RawTokenFromContext(c context.Context) string {
	token, ok := c.Value(rawTokenKey{}).(string)
	if !ok {
		return ""
	}
	return token
}

func UserIdFromJwtToken(c context.Context) (uuid.UUID, error) {
	claims, ok := c.Value(jwtClaimsKey{}).(jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, inErrors.ErrEmptySubject
	}
	userId, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed parsing subject=%s with error=%w", claims.Subject, err)
	}
	return userId, nil
}

func CreateToken(userId uuid.UUID, cfg config.Application) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{AudienceUser},
			Issuer:    AppStorefront,
			Subject:   userId.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	)
	signed, err := token.SignedString([]byte(cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed signing token with error=%w", err)
	}
	return signed, nil
}

func VerifyToken(
	c context.Context,
	token string,
	cfg config.Application,
) (jwt.RegisteredClaims, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "VerifyToken").
		Logger()

	claims := jwt.RegisteredClaims{}

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	jwtToken, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.SecretKey), nil
		},
		jwt.WithAudience(AudienceUser),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(AppStorefront),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing with claims with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return jwt.RegisteredClaims{}, err
	}

	if !jwtToken.Valid {
		logger.Error().Err(inErrors.ErrTokenInvalid).Msg(inErrors.ErrTokenInvalid.Error())
		return jwt.RegisteredClaims{}, inErrors.ErrTokenInvalid
	}

	return claims, nil
}
