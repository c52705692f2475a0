package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/neoledsrlbolivia/neopos/internal/audit"
	quotationdomain "github.com/neoledsrlbolivia/neopos/internal/quotation/domain"
	"github.com/shopspring/decimal"
)

type quotationItemRequest struct {
	VariantID   string  `json:"variant_id" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Color       string  `json:"color"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	Stock       *int    `json:"stock"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
}

type createQuotationRequest struct {
	CustomerName    string                 `json:"customer_name" binding:"required"`
	CustomerPhone   string                 `json:"customer_phone" binding:"required"`
	CustomerAddress string                 `json:"customer_address"`
	PaymentTerm     string                 `json:"payment_term" binding:"required,paymentterm"`
	ValidityDays    int                    `json:"validity_days" binding:"gte=0"`
	Discount        float64                `json:"discount" binding:"gte=0"`
	Items           []quotationItemRequest `json:"items" binding:"required,min=1,dive"`
}

// @Summary      Create quotation
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createQuotationRequest true "Create Quotation Request"
// @Success      200  {object}  quotationdomain.Quotation
// @Router       /quotations [post]
func (s *Server) CreateQuotation(c *gin.Context) {
	var req createQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	items := make([]quotationdomain.CreateItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, quotationdomain.CreateItem{
			VariantID:   item.VariantID,
			Description: item.Description,
			Color:       item.Color,
			Category:    item.Category,
			Type:        item.Type,
			Stock:       item.Stock,
			Quantity:    item.Quantity,
			UnitPrice:   decimal.NewFromFloat(item.UnitPrice),
		})
	}

	quotation, err := s.quotationSvc.Create(c.Request.Context(), quotationdomain.CreateRequest{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		PaymentTerm:     req.PaymentTerm,
		ValidityDays:    req.ValidityDays,
		Discount:        decimal.NewFromFloat(req.Discount),
		Items:           items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "quotation.create",
		TargetType: "quotation",
		TargetID:   quotation.ID.String(),
		Metadata:   map[string]any{"total": quotation.Total.String()},
	})

	c.JSON(http.StatusOK, gin.H{"data": quotation})
}

// @Summary      List quotations
// @Tags         quotations
// @Produce      json
// @Security     ApiKeyAuth
// @Param        status  query  string  false  "Status"
// @Success      200  {object}  []quotationdomain.Quotation
// @Router       /quotations [get]
func (s *Server) ListQuotations(c *gin.Context) {
	quotations, err := s.quotationSvc.List(c.Request.Context(), quotationdomain.ListRequest{
		Status: strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": quotations})
}

// @Summary      Get quotation
// @Tags         quotations
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Quotation ID"
// @Success      200  {object}  quotationdomain.Quotation
// @Router       /quotations/{id} [get]
func (s *Server) GetQuotation(c *gin.Context) {
	quotation, items, err := s.quotationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"quotation": quotation,
		"items":     items,
	}})
}

// @Summary      Mark quotation sold
// @Tags         quotations
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Quotation ID"
// @Success      200  {object}  quotationdomain.Quotation
// @Router       /quotations/{id}/sold [post]
func (s *Server) MarkQuotationSold(c *gin.Context) {
	quotation, err := s.quotationSvc.MarkSold(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "quotation.sold",
		TargetType: "quotation",
		TargetID:   quotation.ID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": quotation})
}

// @Summary      Void quotation
// @Tags         quotations
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Quotation ID"
// @Success      200  {object}  quotationdomain.Quotation
// @Router       /quotations/{id}/void [post]
func (s *Server) VoidQuotation(c *gin.Context) {
	quotation, err := s.quotationSvc.Void(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "quotation.void",
		TargetType: "quotation",
		TargetID:   quotation.ID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": quotation})
}

// @Summary      Download quotation PDF
// @Description  Render the quotation document and return it as a PDF attachment
// @Tags         quotations
// @Produce      application/pdf
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Quotation ID"
// @Success      200  {file}    binary
// @Router       /quotations/{id}/pdf [get]
func (s *Server) DownloadQuotationPDF(c *gin.Context) {
	document, err := s.quotationSvc.DownloadPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+document.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", document.PDF)
}
