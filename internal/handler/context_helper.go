package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/strack-api/internal/middleware"
	"github.com/noah-isme/strack-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

func sessionFromContext(c *gin.Context) models.Session {
	return middleware.Session(c)
}

func permissionsFromContext(c *gin.Context) models.Permissions {
	return models.PermissionsFor(sessionFromContext(c))
}
