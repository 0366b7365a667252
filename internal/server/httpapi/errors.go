package httpapi

import (
	"errors"
	"net/http"

	"github.com/carechain/carechain/internal/common"
	"github.com/carechain/carechain/internal/server/services"
	"github.com/gin-gonic/gin"
)

// abortDetail writes an error body in the backend's canonical shape:
// {"detail": <string or list>}.
func abortDetail(c *gin.Context, status int, detail any) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// fieldDetail renders a single-field validation failure as the list shape
// clients expect for 422 responses.
func fieldDetail(field, msg string) []gin.H {
	return []gin.H{{"loc": []string{"body", field}, "msg": msg}}
}

// abortError maps service errors onto HTTP statuses. Unmatched errors become
// opaque 500s so internals never leak into responses.
func abortError(c *gin.Context, err error) {
	var fieldErr *services.FieldError

	switch {
	case errors.As(err, &fieldErr):
		abortDetail(c, http.StatusUnprocessableEntity, fieldDetail(fieldErr.Field, fieldErr.Msg))
	case errors.Is(err, common.ErrorNotFound):
		abortDetail(c, http.StatusNotFound, "Patient not found")
	case errors.Is(err, common.ErrorEmailAlreadyExists):
		abortDetail(c, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, common.ErrorWeakPassword):
		abortDetail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		abortDetail(c, http.StatusUnauthorized, "Incorrect email or password")
	case errors.Is(err, common.ErrorUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		abortDetail(c, http.StatusUnauthorized, "Could not validate credentials")
	default:
		abortDetail(c, http.StatusInternalServerError, "Internal server error")
	}
}
