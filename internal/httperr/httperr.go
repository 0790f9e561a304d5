package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// Respond writes err with the status its kind maps to.
func Respond(c *gin.Context, err error) {
	status, body := Classify(err)
	c.JSON(status, body)
}

// Classify maps err to a status and body. Business errors are conflicts
// with the current state; anything unclassified is a 500.
func Classify(err error) (int, HTTPError) {
	var (
		ve *ValidationError
		ie *IntegrityError
		ue *UpstreamError
		be BusinessError
	)

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, HTTPError{Code: ve.Code, Message: ve.Message}
	case errors.As(err, &ie):
		return http.StatusConflict, HTTPError{Code: ie.Code, Message: ie.Message}
	case errors.As(err, &ue):
		return upstreamStatus(ue.Status), HTTPError{Code: ue.Code, Message: ue.Message}
	case errors.As(err, &be):
		return http.StatusConflict, HTTPError{Code: be.Code, Message: be.Code}
	default:
		return http.StatusInternalServerError, HTTPError{Code: "internal_error", Message: "Something went wrong."}
	}
}

// upstreamStatus passes client errors from the remote API through and
// reports everything else as a bad gateway.
func upstreamStatus(status int) int {
	if status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}
