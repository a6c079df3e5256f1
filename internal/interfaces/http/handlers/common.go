// Package handlers implements the OpinionGraph HTTP endpoints on gin.
package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// ErrorBody describes one failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// writeJSON writes data with the given status code.
func writeJSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// writeAppError maps err to its HTTP status.  Server-side failures are
// reported with the default message of their code only.
func writeAppError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeJSON(c, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorBody{
			Code:    string(errors.CodeInvalidParam),
			Message: "request body too large",
		}})
		return
	}

	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	body := ErrorBody{Code: string(code), Message: errors.DefaultMessageForCode(code)}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && status < http.StatusInternalServerError {
		body.Message = appErr.Message
		body.Detail = appErr.Detail
	}
	if code == errors.CodeUnknown {
		body.Code = string(errors.ErrCodeInternal)
		body.Message = errors.DefaultMessageForCode(errors.ErrCodeInternal)
	}

	_ = c.Error(err)
	writeJSON(c, status, ErrorResponse{Error: body})
}

// bindJSON decodes the request body into dest.
func bindJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return err
		}
		return errors.Wrap(err, errors.CodeInvalidParam, "malformed request body")
	}
	return nil
}

//Personal.AI order the ending
