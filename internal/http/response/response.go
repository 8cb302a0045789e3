package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rtb-12/StorySentinel-sub000/internal/platform/apierr"
	"github.com/rtb-12/StorySentinel-sub000/internal/validation"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type ViolationEnvelope struct {
	Error      APIError               `json:"error"`
	Violations []validation.Violation `json:"violations"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps an error from the service layer to its status and
// code. Unclassified errors are reported as 500 without their message.
func RespondServiceError(c *gin.Context, err error) {
	status, code := apierr.StatusAndCode(err)
	if status >= http.StatusInternalServerError && code == "internal_error" {
		_ = c.Error(err)
		c.JSON(status, ErrorEnvelope{Error: APIError{Message: "internal error", Code: code}})
		return
	}
	RespondError(c, status, code, err)
}

func RespondViolations(c *gin.Context, violations []validation.Violation) {
	c.JSON(http.StatusBadRequest, ViolationEnvelope{
		Error: APIError{
			Message: "payload failed validation",
			Code:    "validation_failed",
		},
		Violations: violations,
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
