package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/campusplan/solver-api/pkg/errors"
)

// ErrorEnvelope is the error response contract. Successful solver
// responses are written verbatim (the consuming backend depends on their
// exact top-level shape), so only errors are wrapped.
type ErrorEnvelope struct {
	Error *appErrors.Error `json:"error"`
}

// JSON writes a success payload without wrapping.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, data)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, ErrorEnvelope{Error: appErr})
}
