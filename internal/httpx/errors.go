package httpx

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by repos when a row does not exist.
var ErrNotFound = errors.New("not found")

// BusinessError is a rule violation the client can act on. Details carries
// structured context, e.g. the product ids that failed minimum-quantity checks.
type BusinessError struct {
	Msg     string
	Details any
}

func (e *BusinessError) Error() string { return e.Msg }

// ValidationError is bad client input detected past request binding.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Fail maps an error to the JSON error contract: 404 for missing rows,
// 422 for validation, 400 for business-rule violations, 500 otherwise.
// Internal errors are logged server-side and never echoed to the client.
func Fail(c *gin.Context, err error) {
	var be *BusinessError
	var ve *ValidationError

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Msg})
	case errors.As(err, &be):
		body := gin.H{"error": be.Msg}
		if be.Details != nil {
			body["details"] = be.Details
		}
		c.JSON(http.StatusBadRequest, body)
	default:
		log.Printf("internal error: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
