package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ticketa/ticketa/internal/domain"
	"github.com/ticketa/ticketa/internal/dto"
)

// principalFromContext reads the authenticated principal placed in the
// gin context by the auth middleware. It writes the 401 response itself
// when the principal is missing or malformed.
func principalFromContext(c *gin.Context) (domain.Principal, bool) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		unauthorized(c)
		return domain.Principal{}, false
	}

	role, err := domain.ParseRole(c.GetString("role"))
	if err != nil {
		unauthorized(c)
		return domain.Principal{}, false
	}

	return domain.Principal{UserID: userID, Role: role}, true
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: "unauthorized",
		Code:  "UNAUTHORIZED",
	})
}
