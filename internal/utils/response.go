package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/physiocare-api/internal/apperr"
)

const internalMessage = "Internal server error."

// RespondOK writes the success envelope {ok: true, result: ...}.
func RespondOK(c *gin.Context, status int, result interface{}) {
	c.JSON(status, gin.H{"ok": true, "result": result})
}

// RespondField writes a success envelope with a named scalar, e.g. {ok: true, count: 3}.
func RespondField(c *gin.Context, status int, field string, value interface{}) {
	c.JSON(status, gin.H{"ok": true, field: value})
}

// RespondMessage writes the failure envelope {message: ...} and aborts the chain.
func RespondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// RespondError maps err onto the failure envelope. Internal causes are logged,
// never sent to the client.
func RespondError(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal(internalMessage, err)
	}

	logger := zerolog.Ctx(c.Request.Context())
	msg := ae.Message
	if ae.Kind == apperr.KindInternal {
		logger.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
		msg = internalMessage
	} else {
		logger.Debug().Err(err).Str("kind", ae.Kind.String()).Msg("request rejected")
	}

	RespondMessage(c, ae.Kind.Status(), msg)
}
