package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neoledsrlbolivia/neopos/internal/audit"
	carouseldomain "github.com/neoledsrlbolivia/neopos/internal/carousel/domain"
)

// @Summary      List carousel slots
// @Tags         carousel
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  []carouseldomain.Slot
// @Router       /carousel [get]
func (s *Server) ListCarousel(c *gin.Context) {
	slots, err := s.carouselSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": slots})
}

type upsertSlotRequest struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	ImageURL  string `json:"image_url"`
}

// @Summary      Upsert carousel slot
// @Tags         carousel
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body upsertSlotRequest true "Upsert Slot Request"
// @Success      200  {object}  carouseldomain.Slot
// @Router       /carousel [post]
func (s *Server) UpsertCarouselSlot(c *gin.Context) {
	var req upsertSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	slot, err := s.carouselSvc.Upsert(c.Request.Context(), carouseldomain.UpsertRequest{
		ID:        req.ID,
		ProductID: req.ProductID,
		Title:     req.Title,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "carousel.upsert",
		TargetType: "carousel_slot",
		TargetID:   slot.ID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": slot})
}

type reorderRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// @Summary      Reorder carousel
// @Tags         carousel
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body reorderRequest true "Reorder Request"
// @Success      200  {object}  map[string]string
// @Router       /carousel/reorder [post]
func (s *Server) ReorderCarousel(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	if err := s.carouselSvc.Reorder(c.Request.Context(), req.IDs); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Deactivate carousel slot
// @Tags         carousel
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Slot ID"
// @Success      200  {object}  map[string]string
// @Router       /carousel/{id} [delete]
func (s *Server) DeactivateCarouselSlot(c *gin.Context) {
	id := c.Param("id")
	if err := s.carouselSvc.Deactivate(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "carousel.deactivate",
		TargetType: "carousel_slot",
		TargetID:   id,
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
