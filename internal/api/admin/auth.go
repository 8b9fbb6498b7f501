// Package admin implements the operator-facing HTTP handlers. These endpoints
// are the one real surface of the deployment: everything they manage — decoy
// users, bait file links, the synthetic audit trail, the simulation engine —
// exists to be discovered by someone who should not be there.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/decoydrop/decoydrop/internal/auth"
	"github.com/decoydrop/decoydrop/internal/config"
)

// AuthHandlers handles operator login and session introspection
type AuthHandlers struct {
	cfg *config.Config
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(cfg *config.Config) *AuthHandlers {
	return &AuthHandlers{cfg: cfg}
}

// LoginRequest is the operator login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary      Operator login
// @Description  Authenticate with the admin credential and receive a session token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body  LoginRequest  true  "Login request"
// @Success      200  {object}  map[string]interface{}  "token, expires_in"
// @Failure      401  {object}  map[string]interface{}  "Invalid credentials"
// @Router       /api/v1/auth/login [post]
// LoginHandler authenticates the operator and issues a JWT
// POST /api/v1/auth/login
func (h *AuthHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		err := auth.CheckAdminCredentials(
			req.Username, req.Password,
			h.cfg.Auth.AdminUsername, h.cfg.Auth.AdminPasswordHash,
		)
		if err != nil {
			// Same response for wrong username and wrong password
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid credentials",
			})
			return
		}

		token, err := auth.GenerateJWT(req.Username, h.cfg.Auth.SessionDuration)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to issue session token",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_in": int(h.cfg.Auth.SessionDuration.Seconds()),
		})
	}
}

// @Summary      Current session
// @Description  Returns the identity bound to the presented session token.
// @Tags         Auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "username"
// @Router       /api/v1/auth/me [get]
// MeHandler returns the authenticated operator identity
// GET /api/v1/auth/me
func (h *AuthHandlers) MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		operator, _ := c.Get("operator")
		c.JSON(http.StatusOK, gin.H{
			"username": operator,
		})
	}
}
