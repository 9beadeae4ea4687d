package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/modelgate/errors"
)

// DataResponse is the success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError renders err with its code, status and details. Errors
// outside the taxonomy become 500 INTERNAL_ERROR.
func RespondWithError(c *gin.Context, err error) {
	status, body := errors.ResponseFor(err)
	c.AbortWithStatusJSON(status, body)
}

// RespondOK sends 200 with data wrapped in the envelope.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}
