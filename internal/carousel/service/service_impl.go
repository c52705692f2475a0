package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	carouseldomain "github.com/neoledsrlbolivia/neopos/internal/carousel/domain"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type ServiceImpl struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) carouseldomain.Service {
	return &ServiceImpl{
		db:    p.DB,
		log:   p.Log.Named("carousel"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *ServiceImpl) List(ctx context.Context) ([]carouseldomain.Slot, error) {
	var slots []carouseldomain.Slot
	if err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *ServiceImpl) Upsert(ctx context.Context, req carouseldomain.UpsertRequest) (carouseldomain.Slot, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return carouseldomain.Slot{}, carouseldomain.ErrInvalidSlot
	}
	productID, err := parseID(req.ProductID)
	if err != nil {
		return carouseldomain.Slot{}, carouseldomain.ErrInvalidSlot
	}

	now := s.clock.Now()
	if strings.TrimSpace(req.ID) == "" {
		var slot carouseldomain.Slot
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var maxPosition int
			if err := tx.Model(&carouseldomain.Slot{}).
				Select("COALESCE(MAX(position), 0)").
				Scan(&maxPosition).Error; err != nil {
				return err
			}
			slot = carouseldomain.Slot{
				ID:        s.genID.Generate(),
				ProductID: productID,
				Position:  maxPosition + 1,
				Title:     title,
				ImageURL:  strings.TrimSpace(req.ImageURL),
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			return tx.Create(&slot).Error
		})
		if err != nil {
			return carouseldomain.Slot{}, err
		}
		return slot, nil
	}

	slotID, err := parseID(req.ID)
	if err != nil {
		return carouseldomain.Slot{}, carouseldomain.ErrInvalidID
	}
	var slot carouseldomain.Slot
	if err := s.db.WithContext(ctx).First(&slot, "id = ?", slotID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return carouseldomain.Slot{}, carouseldomain.ErrNotFound
		}
		return carouseldomain.Slot{}, err
	}

	updates := map[string]any{
		"product_id": productID,
		"title":      title,
		"image_url":  strings.TrimSpace(req.ImageURL),
		"updated_at": now,
	}
	if err := s.db.WithContext(ctx).Model(&carouseldomain.Slot{}).
		Where("id = ?", slot.ID).
		Updates(updates).Error; err != nil {
		return carouseldomain.Slot{}, err
	}

	slot.ProductID = productID
	slot.Title = title
	slot.ImageURL = strings.TrimSpace(req.ImageURL)
	slot.UpdatedAt = now
	return slot, nil
}

func (s *ServiceImpl) Reorder(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return carouseldomain.ErrInvalidOrder
	}

	slotIDs := make([]snowflake.ID, 0, len(ids))
	seen := make(map[snowflake.ID]struct{}, len(ids))
	for _, id := range ids {
		slotID, err := parseID(id)
		if err != nil {
			return carouseldomain.ErrInvalidOrder
		}
		if _, dup := seen[slotID]; dup {
			return carouseldomain.ErrInvalidOrder
		}
		seen[slotID] = struct{}{}
		slotIDs = append(slotIDs, slotID)
	}

	now := s.clock.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&carouseldomain.Slot{}).
			Where("id IN ?", slotIDs).
			Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(slotIDs)) {
			return carouseldomain.ErrInvalidOrder
		}
		for position, slotID := range slotIDs {
			if err := tx.Model(&carouseldomain.Slot{}).
				Where("id = ?", slotID).
				Updates(map[string]any{"position": position + 1, "updated_at": now}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *ServiceImpl) Deactivate(ctx context.Context, id string) error {
	slotID, err := parseID(id)
	if err != nil {
		return carouseldomain.ErrInvalidID
	}

	result := s.db.WithContext(ctx).Model(&carouseldomain.Slot{}).
		Where("id = ?", slotID).
		Updates(map[string]any{"active": false, "updated_at": s.clock.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return carouseldomain.ErrNotFound
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(parsed), nil
}
