// Package common — response.go: единый формат ошибок HTTP API.
package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// JSONError прерывает обработку и отвечает {"error": message}.
func JSONError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// InternalError логирует настоящую причину и отдаёт клиенту общий 500.
func InternalError(c *gin.Context, err error, what string) {
	log.WithError(err).WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error(what)
	JSONError(c, http.StatusInternalServerError, "Internal server error")
}
