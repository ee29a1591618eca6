package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valter-silva-au/taskdesk/internal/core"
)

// Bodies returned for the generic failure outcomes.
const (
	msgTaskNotFound  = "Task Not Found"
	msgInternalError = "Internal Server Error"
	msgTaskDeleted   = "Task Deleted Successfully"
)

func success(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

func created(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}

func validationFailure(c *gin.Context, ve *core.ValidationError) {
	c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": msgTaskNotFound})
}

// internalError logs the cause and answers with the generic 500 body.
func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"err", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
}

// fail maps a service error to its response variant.
func (s *Server) fail(c *gin.Context, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		validationFailure(c, ve)
	case errors.Is(err, core.ErrTaskNotFound):
		notFound(c)
	default:
		s.internalError(c, err)
	}
}
