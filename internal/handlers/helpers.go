// Package handlers exposes the storage layer over REST. Handlers are
// closures over an injected storage.Storage so tests can run against
// isolated in-memory instances.
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// parseID parses a numeric path parameter. Non-numeric ids are a 400, not a
// 404: the resource space is integer-keyed.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + name + ": must be an integer"})
		return 0, false
	}
	return uint(id), true
}

// bindingErrors turns a ShouldBindJSON failure into an itemized 400 body.
func bindingErrors(err error) gin.H {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		fields := make([]gin.H, 0, len(verr))
		for _, fe := range verr {
			fields = append(fields, gin.H{
				"field": fe.Field(),
				"rule":  fe.Tag(),
			})
		}
		return gin.H{"error": "Validation failed", "fields": fields}
	}
	return gin.H{"error": err.Error()}
}

// internalError logs the real failure server-side and sends the client a
// redacted 500.
func internalError(c *gin.Context, action string, err error) {
	logrus.WithError(err).WithField("path", c.FullPath()).Error(action)
	c.JSON(500, gin.H{"error": "Internal server error"})
}
