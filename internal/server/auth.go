package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/neoledsrlbolivia/neopos/internal/audit"
	"github.com/neoledsrlbolivia/neopos/internal/auditcontext"
	authdomain "github.com/neoledsrlbolivia/neopos/internal/auth/domain"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// @Summary      Login
// @Description  Verify credentials and issue a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body loginRequest true "Login Request"
// @Success      200  {object}  loginResponse
// @Router       /auth/login [post]
func (s *Server) Login(c *gin.Context) {
	if !s.loginLimiter.Allow(c.ClientIP()) {
		AbortWithError(c, ErrTooMany)
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	session, user, err := s.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "auth.login",
		TargetType: "user",
		TargetID:   user.ID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": loginResponse{
		Token:       session.Token,
		UserID:      user.ID.String(),
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
	}})
}

// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]string
// @Router       /auth/logout [post]
func (s *Server) Logout(c *gin.Context) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.Fields(header)
	if len(parts) != 2 {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if err := s.authSvc.Logout(c.Request.Context(), parts[1]); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]string
// @Router       /auth/me [get]
func (s *Server) Me(c *gin.Context) {
	_, actorID := auditcontext.ActorFromContext(c.Request.Context())
	role := auditcontext.ActorRoleFromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"user_id": actorID,
		"role":    role,
	}})
}

type createUserRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password" binding:"required,min=4"`
	Role        string `json:"role" binding:"required,oneof=admin asistente"`
}

// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createUserRequest true "Create User Request"
// @Success      200  {object}  authdomain.User
// @Router       /users [post]
func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	user, err := s.authSvc.CreateUser(c.Request.Context(), authdomain.CreateUserRequest{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        authdomain.Role(req.Role),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "user.create",
		TargetType: "user",
		TargetID:   user.ID.String(),
		Metadata:   map[string]any{"username": user.Username, "role": string(user.Role)},
	})

	c.JSON(http.StatusOK, gin.H{"data": user})
}

// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  []authdomain.User
// @Router       /users [get]
func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.authSvc.ListUsers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// @Summary      Deactivate user
// @Tags         users
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  map[string]string
// @Router       /users/{id} [delete]
func (s *Server) DeactivateUser(c *gin.Context) {
	id := c.Param("id")
	if err := s.authSvc.DeactivateUser(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "user.deactivate",
		TargetType: "user",
		TargetID:   id,
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
