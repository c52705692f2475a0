package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neoledsrlbolivia/neopos/internal/audit"
	saledomain "github.com/neoledsrlbolivia/neopos/internal/sale/domain"
	"github.com/shopspring/decimal"
)

type saleItemRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type createSaleRequest struct {
	PaymentMethod string            `json:"payment_method" binding:"required,paymentmethod"`
	Discount      float64           `json:"discount" binding:"gte=0"`
	Items         []saleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// @Summary      Create sale
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createSaleRequest true "Create Sale Request"
// @Success      200  {object}  saledomain.Sale
// @Router       /sales [post]
func (s *Server) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	items := make([]saledomain.CreateItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, saledomain.CreateItem{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	sale, saleItems, err := s.saleSvc.Create(c.Request.Context(), saledomain.CreateRequest{
		PaymentMethod: saledomain.PaymentMethod(req.PaymentMethod),
		Discount:      decimal.NewFromFloat(req.Discount),
		Items:         items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "sale.create",
		TargetType: "sale",
		TargetID:   sale.ID.String(),
		Metadata:   map[string]any{"total": sale.Total.String(), "payment_method": string(sale.PaymentMethod)},
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"sale":  sale,
		"items": saleItems,
	}})
}

// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Security     ApiKeyAuth
// @Param        from  query  string  false  "From date (RFC 3339)"
// @Param        to    query  string  false  "To date (RFC 3339)"
// @Success      200  {object}  []saledomain.Sale
// @Router       /sales [get]
func (s *Server) ListSales(c *gin.Context) {
	listReq, err := saleRangeFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sales, err := s.saleSvc.List(c.Request.Context(), listReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sales})
}

// @Summary      Get sale
// @Tags         sales
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  saledomain.Sale
// @Router       /sales/{id} [get]
func (s *Server) GetSale(c *gin.Context) {
	sale, items, err := s.saleSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"sale":  sale,
		"items": items,
	}})
}

// @Summary      Export sales
// @Description  Export the sales of a date range as an xlsx workbook
// @Tags         sales
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     ApiKeyAuth
// @Param        from  query  string  false  "From date (RFC 3339)"
// @Param        to    query  string  false  "To date (RFC 3339)"
// @Success      200  {file}  binary
// @Router       /sales/export [get]
func (s *Server) ExportSales(c *gin.Context) {
	listReq, err := saleRangeFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	export, err := s.saleSvc.ExportExcel(c.Request.Context(), listReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "sale.export",
		TargetType: "sale",
	})

	c.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.Content)
}

func saleRangeFromQuery(c *gin.Context) (saledomain.ListRequest, error) {
	var req saledomain.ListRequest
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return req, newValidationError("from", "invalid_date", "from must be RFC 3339")
		}
		req.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return req, newValidationError("to", "invalid_date", "to must be RFC 3339")
		}
		req.To = to
	}
	return req, nil
}
