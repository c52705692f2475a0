package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/neoledsrlbolivia/neopos/internal/audit"
	catalogdomain "github.com/neoledsrlbolivia/neopos/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

type variantRequest struct {
	Name          string   `json:"name" binding:"required"`
	SalePrice     float64  `json:"sale_price" binding:"gte=0"`
	PurchasePrice float64  `json:"purchase_price" binding:"gte=0"`
	DesignColor   string   `json:"design_color"`
	LightColor    string   `json:"light_color"`
	Wattage       string   `json:"wattage"`
	Size          string   `json:"size"`
	Stock         int      `json:"stock" binding:"gte=0"`
	MinimumStock  int      `json:"minimum_stock" binding:"gte=0"`
	ImageURLs     []string `json:"image_urls"`
}

type createProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Location    string           `json:"location"`
	Category    string           `json:"category"`
	Type        string           `json:"type"`
	Variants    []variantRequest `json:"variants" binding:"required,min=1,dive"`
}

type updateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Category    *string `json:"category,omitempty"`
	Type        *string `json:"type,omitempty"`
}

// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createProductRequest true "Create Product Request"
// @Success      200  {object}  catalogdomain.Product
// @Router       /products [post]
func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	variants := make([]catalogdomain.VariantInput, 0, len(req.Variants))
	for _, variant := range req.Variants {
		variants = append(variants, catalogdomain.VariantInput{
			Name:          variant.Name,
			SalePrice:     decimal.NewFromFloat(variant.SalePrice),
			PurchasePrice: decimal.NewFromFloat(variant.PurchasePrice),
			DesignColor:   variant.DesignColor,
			LightColor:    variant.LightColor,
			Wattage:       variant.Wattage,
			Size:          variant.Size,
			Stock:         variant.Stock,
			MinimumStock:  variant.MinimumStock,
			ImageURLs:     variant.ImageURLs,
		})
	}

	product, productVariants, err := s.catalogSvc.CreateProduct(c.Request.Context(), catalogdomain.CreateProductRequest{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		Type:        req.Type,
		Variants:    variants,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "product.create",
		TargetType: "product",
		TargetID:   product.ID.String(),
		Metadata:   map[string]any{"name": product.Name, "variants": len(productVariants)},
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"product":  product,
		"variants": productVariants,
	}})
}

// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     ApiKeyAuth
// @Param        name              query  string  false  "Name filter"
// @Param        include_archived  query  bool    false  "Include archived"
// @Success      200  {object}  []catalogdomain.Product
// @Router       /products [get]
func (s *Server) ListProducts(c *gin.Context) {
	includeArchived, _ := strconv.ParseBool(c.Query("include_archived"))
	products, err := s.catalogSvc.ListProducts(c.Request.Context(), catalogdomain.ListProductsRequest{
		Name:            strings.TrimSpace(c.Query("name")),
		IncludeArchived: includeArchived,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

// @Summary      Get product
// @Tags         products
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  catalogdomain.Product
// @Router       /products/{id} [get]
func (s *Server) GetProduct(c *gin.Context) {
	product, variants, err := s.catalogSvc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"product":  product,
		"variants": variants,
	}})
}

// @Summary      Update product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Product ID"
// @Param        request body updateProductRequest true "Update Product Request"
// @Success      200  {object}  catalogdomain.Product
// @Router       /products/{id} [patch]
func (s *Server) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	product, err := s.catalogSvc.UpdateProduct(c.Request.Context(), c.Param("id"), catalogdomain.UpdateProductRequest{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		Type:        req.Type,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "product.update",
		TargetType: "product",
		TargetID:   product.ID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// @Summary      Archive product
// @Tags         products
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  map[string]string
// @Router       /products/{id} [delete]
func (s *Server) ArchiveProduct(c *gin.Context) {
	id := c.Param("id")
	if err := s.catalogSvc.ArchiveProduct(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "product.archive",
		TargetType: "product",
		TargetID:   id,
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type adjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// @Summary      Adjust variant stock
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Variant ID"
// @Param        request body adjustStockRequest true "Adjust Stock Request"
// @Success      200  {object}  catalogdomain.Variant
// @Router       /variants/{id}/stock [post]
func (s *Server) AdjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	variant, err := s.catalogSvc.AdjustStock(c.Request.Context(), c.Param("id"), req.Delta)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditRec.Record(c.Request.Context(), audit.Entry{
		Action:     "variant.adjust_stock",
		TargetType: "variant",
		TargetID:   variant.ID.String(),
		Metadata:   map[string]any{"delta": req.Delta, "stock": variant.Stock},
	})

	c.JSON(http.StatusOK, gin.H{"data": variant})
}

// @Summary      List attribute values
// @Tags         attributes
// @Produce      json
// @Security     ApiKeyAuth
// @Param        kind   path      string  true  "Attribute kind"
// @Success      200  {object}  []string
// @Router       /attributes/{kind} [get]
func (s *Server) ListAttributes(c *gin.Context) {
	names, err := s.catalogSvc.AttributeNames(c.Request.Context(), catalogdomain.AttributeKind(c.Param("kind")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": names})
}

type addAttributeRequest struct {
	Name string `json:"name" binding:"required"`
}

// @Summary      Add attribute value
// @Tags         attributes
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        kind   path      string  true  "Attribute kind"
// @Param        request body addAttributeRequest true "Add Attribute Request"
// @Success      200  {object}  catalogdomain.Attribute
// @Router       /attributes/{kind} [post]
func (s *Server) AddAttribute(c *gin.Context) {
	var req addAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	attribute, err := s.catalogSvc.AddAttribute(c.Request.Context(), catalogdomain.AttributeKind(c.Param("kind")), req.Name)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": attribute})
}
