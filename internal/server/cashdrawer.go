package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neoledsrlbolivia/neopos/internal/audit"
	cashdomain "github.com/neoledsrlbolivia/neopos/internal/cashdrawer/domain"
	"github.com/shopspring/decimal"
)

type openDrawerRequest struct {
	OpeningAmount float64 `json:"opening_amount" binding:"gte=0"`
}

// @Summary      Open drawer session
// @Tags         cash-drawer
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body openDrawerRequest true "Open Drawer Request"
// @Success      200  {object}  cashdomain.Session
// @Router       /cash-drawer/open [post]
func (s *Server) OpenDrawer(c *gin.Context) {
	var req openDrawerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	session, err := s.drawerSvc.Open(c.Request.Context(), decimal.NewFromFloat(req.OpeningAmount))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "drawer.open",
		TargetType: "drawer_session",
		TargetID:   session.ID.String(),
		Metadata:   map[string]any{"opening_amount": session.OpeningAmount.String()},
	})

	c.JSON(http.StatusOK, gin.H{"data": session})
}

// @Summary      Close drawer session
// @Tags         cash-drawer
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  cashdomain.Session
// @Router       /cash-drawer/{id}/close [post]
func (s *Server) CloseDrawer(c *gin.Context) {
	session, err := s.drawerSvc.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "drawer.close",
		TargetType: "drawer_session",
		TargetID:   session.ID.String(),
		Metadata:   map[string]any{"closing_amount": session.ClosingAmount.String()},
	})

	c.JSON(http.StatusOK, gin.H{"data": session})
}

// @Summary      Current drawer session
// @Tags         cash-drawer
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  cashdomain.Session
// @Router       /cash-drawer/current [get]
func (s *Server) CurrentDrawer(c *gin.Context) {
	session, err := s.drawerSvc.CurrentSession(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": session})
}

// @Summary      Drawer balance
// @Tags         cash-drawer
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  map[string]string
// @Router       /cash-drawer/{id}/balance [get]
func (s *Server) DrawerBalance(c *gin.Context) {
	balance, err := s.drawerSvc.Balance(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"balance": balance.StringFixed(2)}})
}

type movementRequest struct {
	SessionID   string  `json:"session_id" binding:"required"`
	Type        string  `json:"type" binding:"required,oneof=ingreso egreso"`
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"gt=0"`
}

// @Summary      Register drawer movement
// @Tags         cash-drawer
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body movementRequest true "Movement Request"
// @Success      200  {object}  cashdomain.Movement
// @Router       /cash-drawer/movements [post]
func (s *Server) RegisterMovement(c *gin.Context) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	movement, err := s.drawerSvc.RegisterMovement(c.Request.Context(), cashdomain.MovementRequest{
		SessionID:   req.SessionID,
		Type:        cashdomain.MovementType(req.Type),
		Description: req.Description,
		Amount:      decimal.NewFromFloat(req.Amount),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "drawer.movement",
		TargetType: "drawer_movement",
		TargetID:   movement.ID.String(),
		Metadata:   map[string]any{"type": string(movement.Type), "amount": movement.Amount.String()},
	})

	c.JSON(http.StatusOK, gin.H{"data": movement})
}

// @Summary      List drawer movements
// @Tags         cash-drawer
// @Produce      json
// @Security     ApiKeyAuth
// @Param        session_id  query  string  false  "Session ID"
// @Param        user_id     query  string  false  "User ID"
// @Success      200  {object}  []cashdomain.Movement
// @Router       /cash-drawer/movements [get]
func (s *Server) ListMovements(c *gin.Context) {
	movements, err := s.drawerSvc.ListMovements(c.Request.Context(), cashdomain.ListMovementsRequest{
		SessionID: c.Query("session_id"),
		UserID:    c.Query("user_id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": movements})
}
