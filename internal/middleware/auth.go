package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/khalidaziz/dukkan/internal/common"
	"github.com/khalidaziz/dukkan/internal/config"
	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	inHttp "github.com/khalidaziz/dukkan/internal/http"
	"github.com/khalidaziz/dukkan/internal/log"
)

func Auth(cfg config.Application) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KeyTag, "middleware auth").
				Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				logger.Error().Err(inErrors.ErrEmptyAuth).Msg(inErrors.ErrEmptyAuth.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrEmptyAuth.Error(),
				})
				return
			}

			token := strings.TrimPrefix(authorization, "Bearer ")
			token = strings.TrimPrefix(token, "bearer ")
			claims, err := common.VerifyToken(c, token, cfg)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrTokenInvalid.Error(),
				})
				return
			}

			c = common.AttachJwtClaimsToContext(c, claims)
			c = common.AttachRawTokenToContext(c, token)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
