package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/neoledsrlbolivia/neopos/internal/catalog/domain"
	"github.com/neoledsrlbolivia/neopos/internal/cache"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const attributeCacheTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type ServiceImpl struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	attrLookup cache.Cache[catalogdomain.AttributeKind, []string]
}

func NewService(p Params) catalogdomain.Service {
	return &ServiceImpl{
		db:         p.DB,
		log:        p.Log.Named("catalog"),
		genID:      p.GenID,
		clock:      p.Clock,
		attrLookup: cache.NewTTLCache[catalogdomain.AttributeKind, []string](32),
	}
}

func (s *ServiceImpl) CreateProduct(ctx context.Context, req catalogdomain.CreateProductRequest) (catalogdomain.Product, []catalogdomain.Variant, error) {
	if strings.TrimSpace(req.Name) == "" {
		return catalogdomain.Product{}, nil, catalogdomain.ErrInvalidProduct
	}
	if len(req.Variants) == 0 {
		return catalogdomain.Product{}, nil, catalogdomain.ErrInvalidVariant
	}

	now := s.clock.Now()
	product := catalogdomain.Product{
		ID:          s.genID.Generate(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Category:    strings.TrimSpace(req.Category),
		Type:        strings.TrimSpace(req.Type),
		Status:      catalogdomain.ProductActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	variants := make([]catalogdomain.Variant, 0, len(req.Variants))
	for _, input := range req.Variants {
		if strings.TrimSpace(input.Name) == "" || input.SalePrice.IsNegative() || input.Stock < 0 {
			return catalogdomain.Product{}, nil, catalogdomain.ErrInvalidVariant
		}
		variants = append(variants, catalogdomain.Variant{
			ID:            s.genID.Generate(),
			ProductID:     product.ID,
			Name:          strings.TrimSpace(input.Name),
			SalePrice:     input.SalePrice,
			PurchasePrice: input.PurchasePrice,
			DesignColor:   strings.TrimSpace(input.DesignColor),
			LightColor:    strings.TrimSpace(input.LightColor),
			Wattage:       strings.TrimSpace(input.Wattage),
			Size:          strings.TrimSpace(input.Size),
			Stock:         input.Stock,
			MinimumStock:  input.MinimumStock,
			Status:        catalogdomain.ProductActive,
			ImageURLs:     datatypes.NewJSONSlice(input.ImageURLs),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		return tx.Create(&variants).Error
	})
	if err != nil {
		return catalogdomain.Product{}, nil, err
	}

	s.log.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.Int("variants", len(variants)),
	)
	return product, variants, nil
}

func (s *ServiceImpl) UpdateProduct(ctx context.Context, id string, req catalogdomain.UpdateProductRequest) (catalogdomain.Product, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return catalogdomain.Product{}, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return catalogdomain.Product{}, catalogdomain.ErrInvalidProduct
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Location != nil {
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Type != nil {
		updates["type"] = strings.TrimSpace(*req.Type)
	}
	if len(updates) == 0 {
		return product, nil
	}
	updates["updated_at"] = s.clock.Now()

	if err := s.db.WithContext(ctx).Model(&catalogdomain.Product{}).
		Where("id = ?", product.ID).
		Updates(updates).Error; err != nil {
		return catalogdomain.Product{}, err
	}
	return s.loadProduct(ctx, id)
}

func (s *ServiceImpl) ArchiveProduct(ctx context.Context, id string) error {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&catalogdomain.Product{}).
			Where("id = ?", product.ID).
			Updates(map[string]any{"status": catalogdomain.ProductArchived, "updated_at": now}).Error; err != nil {
			return err
		}
		return tx.Model(&catalogdomain.Variant{}).
			Where("product_id = ?", product.ID).
			Updates(map[string]any{"status": catalogdomain.ProductArchived, "updated_at": now}).Error
	})
}

func (s *ServiceImpl) ListProducts(ctx context.Context, req catalogdomain.ListProductsRequest) ([]catalogdomain.Product, error) {
	query := s.db.WithContext(ctx).Model(&catalogdomain.Product{})
	if name := strings.TrimSpace(req.Name); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if !req.IncludeArchived {
		query = query.Where("status = ?", catalogdomain.ProductActive)
	}

	var products []catalogdomain.Product
	if err := query.Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ServiceImpl) GetProduct(ctx context.Context, id string) (catalogdomain.Product, []catalogdomain.Variant, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return catalogdomain.Product{}, nil, err
	}

	var variants []catalogdomain.Variant
	if err := s.db.WithContext(ctx).
		Where("product_id = ?", product.ID).
		Order("name").
		Find(&variants).Error; err != nil {
		return catalogdomain.Product{}, nil, err
	}
	return product, variants, nil
}

func (s *ServiceImpl) GetVariant(ctx context.Context, id string) (catalogdomain.Variant, error) {
	variantID, err := parseID(id)
	if err != nil {
		return catalogdomain.Variant{}, catalogdomain.ErrInvalidID
	}

	var variant catalogdomain.Variant
	if err := s.db.WithContext(ctx).First(&variant, "id = ?", variantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return catalogdomain.Variant{}, catalogdomain.ErrVariantNotFound
		}
		return catalogdomain.Variant{}, err
	}
	return variant, nil
}

func (s *ServiceImpl) AdjustStock(ctx context.Context, variantID string, delta int) (catalogdomain.Variant, error) {
	id, err := parseID(variantID)
	if err != nil {
		return catalogdomain.Variant{}, catalogdomain.ErrInvalidID
	}

	var variant catalogdomain.Variant
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&variant, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return catalogdomain.ErrVariantNotFound
			}
			return err
		}
		next := variant.Stock + delta
		if next < 0 {
			return catalogdomain.ErrInsufficientStock
		}
		now := s.clock.Now()
		if err := tx.Model(&catalogdomain.Variant{}).
			Where("id = ?", id).
			Updates(map[string]any{"stock": next, "updated_at": now}).Error; err != nil {
			return err
		}
		variant.Stock = next
		variant.UpdatedAt = now
		return nil
	})
	if err != nil {
		return catalogdomain.Variant{}, err
	}
	return variant, nil
}

func (s *ServiceImpl) AttributeNames(ctx context.Context, kind catalogdomain.AttributeKind) ([]string, error) {
	if kind == "" {
		return nil, catalogdomain.ErrInvalidAttribute
	}
	if names, ok := s.attrLookup.Get(kind); ok {
		return names, nil
	}

	var names []string
	if err := s.db.WithContext(ctx).Model(&catalogdomain.Attribute{}).
		Where("kind = ?", kind).
		Order("name").
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	s.attrLookup.Set(kind, names, attributeCacheTTL)
	return names, nil
}

func (s *ServiceImpl) AddAttribute(ctx context.Context, kind catalogdomain.AttributeKind, name string) (catalogdomain.Attribute, error) {
	name = strings.TrimSpace(name)
	if kind == "" || name == "" {
		return catalogdomain.Attribute{}, catalogdomain.ErrInvalidAttribute
	}

	attribute := catalogdomain.Attribute{
		ID:        s.genID.Generate(),
		Kind:      kind,
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&attribute).Error; err != nil {
		return catalogdomain.Attribute{}, err
	}

	s.attrLookup.Delete(kind)
	return attribute, nil
}

func (s *ServiceImpl) loadProduct(ctx context.Context, id string) (catalogdomain.Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return catalogdomain.Product{}, catalogdomain.ErrInvalidID
	}

	var product catalogdomain.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return catalogdomain.Product{}, catalogdomain.ErrProductNotFound
		}
		return catalogdomain.Product{}, err
	}
	return product, nil
}

func parseID(value string) (snowflake.ID, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(parsed), nil
}
