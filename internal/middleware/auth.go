package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/physiocare-api/internal/apperr"
	"github.com/harentsoaR/physiocare-api/internal/policy"
	"github.com/harentsoaR/physiocare-api/internal/revocation"
	"github.com/harentsoaR/physiocare-api/internal/utils"
)

const (
	principalKey = "principal"
	claimsKey    = "claims"
	bearerPrefix = "Bearer "
)

// AuthMiddleware turns the bearer token into a policy.Principal. A missing or
// malformed Authorization header is answered with 403, a token that fails
// validation or was revoked with 401.
func AuthMiddleware(tokens *utils.TokenService, revoker revocation.Revoker) gin.HandlerFunc {
	if revoker == nil {
		revoker = revocation.Noop{}
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if !strings.HasPrefix(authHeader, bearerPrefix) || tokenStr == "" {
			utils.RespondMessage(c, http.StatusForbidden, "Access denied: no token provided.")
			return
		}

		claims, ok := tokens.Validate(tokenStr)
		if !ok {
			utils.RespondMessage(c, http.StatusUnauthorized, "Invalid token.")
			return
		}

		revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			utils.RespondError(c, apperr.Internal("checking token revocation", err))
			return
		}
		if revoked {
			utils.RespondMessage(c, http.StatusUnauthorized, "Invalid token.")
			return
		}

		who := policy.Principal{Role: policy.ParseRole(claims.Role), Login: claims.Login}
		if claims.SubjectID != "" {
			id, err := primitive.ObjectIDFromHex(claims.SubjectID)
			if err != nil {
				utils.RespondMessage(c, http.StatusUnauthorized, "Invalid token.")
				return
			}
			who.ID = id
		}

		ctx := c.Request.Context()
		logger := zerolog.Ctx(ctx).With().Str("login", who.Login).Str("role", who.Role.String()).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx))

		c.Set(principalKey, who)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole lets only the given roles through. It must run after AuthMiddleware.
func RequireRole(roles ...policy.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		who := PrincipalFrom(c)
		for _, r := range roles {
			if who.Role == r {
				c.Next()
				return
			}
		}
		utils.RespondMessage(c, http.StatusForbidden, "Access denied.")
	}
}

// PrincipalFrom returns the authenticated caller, or the zero Principal
// (which the policy denies everything) when there is none.
func PrincipalFrom(c *gin.Context) policy.Principal {
	if v, ok := c.Get(principalKey); ok {
		if who, ok := v.(policy.Principal); ok {
			return who
		}
	}
	return policy.Principal{}
}

// ClaimsFrom returns the validated token claims set by AuthMiddleware.
func ClaimsFrom(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
