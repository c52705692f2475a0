package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/neoledsrlbolivia/neopos/internal/auditcontext"
	catalogdomain "github.com/neoledsrlbolivia/neopos/internal/catalog/domain"
	cashdomain "github.com/neoledsrlbolivia/neopos/internal/cashdrawer/domain"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"github.com/neoledsrlbolivia/neopos/internal/events"
	saledomain "github.com/neoledsrlbolivia/neopos/internal/sale/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Outbox *events.Outbox
	Clock  clock.Clock
}

type ServiceImpl struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	outbox *events.Outbox
	clock  clock.Clock
}

func NewService(p Params) saledomain.Service {
	return &ServiceImpl{
		db:     p.DB,
		log:    p.Log.Named("sale"),
		genID:  p.GenID,
		outbox: p.Outbox,
		clock:  p.Clock,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, req saledomain.CreateRequest) (saledomain.Sale, []saledomain.SaleItem, error) {
	switch req.PaymentMethod {
	case saledomain.PaymentCash, saledomain.PaymentQR, saledomain.PaymentCard:
	default:
		return saledomain.Sale{}, nil, saledomain.ErrInvalidPayment
	}
	if len(req.Items) == 0 || req.Discount.IsNegative() {
		return saledomain.Sale{}, nil, saledomain.ErrInvalidItems
	}

	now := s.clock.Now()
	sale := saledomain.Sale{
		ID:            s.genID.Generate(),
		SellerID:      actorID(ctx),
		PaymentMethod: req.PaymentMethod,
		Discount:      req.Discount,
		CreatedAt:     now,
	}

	var items []saledomain.SaleItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subtotal := decimal.Zero
		items = make([]saledomain.SaleItem, 0, len(req.Items))
		for _, item := range req.Items {
			if item.Quantity <= 0 {
				return saledomain.ErrInvalidItems
			}
			variantID, err := parseID(item.VariantID)
			if err != nil {
				return saledomain.ErrInvalidItems
			}

			var variant catalogdomain.Variant
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&variant, "id = ?", variantID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return saledomain.ErrInvalidItems
				}
				return err
			}
			if variant.Stock < item.Quantity {
				return saledomain.ErrInsufficientStock
			}
			if err := tx.Model(&catalogdomain.Variant{}).
				Where("id = ?", variant.ID).
				Updates(map[string]any{"stock": variant.Stock - item.Quantity, "updated_at": now}).Error; err != nil {
				return err
			}

			lineSubtotal := variant.SalePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(lineSubtotal)
			items = append(items, saledomain.SaleItem{
				ID:           s.genID.Generate(),
				SaleID:       sale.ID,
				VariantID:    variant.ID,
				Description:  variant.Name,
				Quantity:     item.Quantity,
				UnitPrice:    variant.SalePrice,
				LineSubtotal: lineSubtotal,
			})
		}

		sale.Subtotal = subtotal
		sale.Total = subtotal.Sub(sale.Discount)

		if req.PaymentMethod == saledomain.PaymentCash {
			var session cashdomain.Session
			err := tx.First(&session, "status = ?", cashdomain.SessionOpen).Error
			switch {
			case err == gorm.ErrRecordNotFound:
				// Cash sale outside a drawer shift; nothing to record.
			case err != nil:
				return err
			default:
				sale.DrawerSessionID = &session.ID
				saleRef := sale.ID
				movement := cashdomain.Movement{
					ID:          s.genID.Generate(),
					SessionID:   session.ID,
					Type:        cashdomain.MovementIn,
					Description: "Venta " + sale.ID.String(),
					Amount:      sale.Total,
					UserID:      sale.SellerID,
					SaleID:      &saleRef,
					CreatedAt:   now,
				}
				if err := tx.Create(&movement).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.TypeSaleCreated,
			Payload: map[string]any{
				"sale_id":        sale.ID.String(),
				"total":          sale.Total.String(),
				"payment_method": string(sale.PaymentMethod),
			},
			DedupeKey: "sale.created:" + sale.ID.String(),
		})
	})
	if err != nil {
		return saledomain.Sale{}, nil, err
	}

	s.log.Info("sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("total", sale.Total.String()),
		zap.String("payment_method", string(sale.PaymentMethod)),
	)
	return sale, items, nil
}

func (s *ServiceImpl) List(ctx context.Context, req saledomain.ListRequest) ([]saledomain.Sale, error) {
	query := s.db.WithContext(ctx).Model(&saledomain.Sale{})
	if !req.From.IsZero() {
		query = query.Where("created_at >= ?", req.From)
	}
	if !req.To.IsZero() {
		query = query.Where("created_at < ?", req.To)
	}

	var sales []saledomain.Sale
	if err := query.Order("created_at DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (saledomain.Sale, []saledomain.SaleItem, error) {
	saleID, err := parseID(id)
	if err != nil {
		return saledomain.Sale{}, nil, saledomain.ErrInvalidID
	}

	var sale saledomain.Sale
	if err := s.db.WithContext(ctx).First(&sale, "id = ?", saleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return saledomain.Sale{}, nil, saledomain.ErrNotFound
		}
		return saledomain.Sale{}, nil, err
	}

	var items []saledomain.SaleItem
	if err := s.db.WithContext(ctx).
		Where("sale_id = ?", sale.ID).
		Order("id").
		Find(&items).Error; err != nil {
		return saledomain.Sale{}, nil, err
	}
	return sale, items, nil
}

const exportSheet = "Ventas"

func (s *ServiceImpl) ExportExcel(ctx context.Context, req saledomain.ListRequest) (saledomain.Export, error) {
	sales, err := s.List(ctx, req)
	if err != nil {
		return saledomain.Export{}, err
	}

	workbook := excelize.NewFile()
	defer workbook.Close()

	workbook.SetSheetName(workbook.GetSheetName(0), exportSheet)
	headers := []string{"Fecha", "Venta", "Método de Pago", "Subtotal", "Descuento", "Total"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := workbook.SetCellValue(exportSheet, cell, header); err != nil {
			return saledomain.Export{}, err
		}
	}

	for row, sale := range sales {
		values := []any{
			sale.CreatedAt.Format("02/01/2006 15:04"),
			sale.ID.String(),
			string(sale.PaymentMethod),
			sale.Subtotal.InexactFloat64(),
			sale.Discount.InexactFloat64(),
			sale.Total.InexactFloat64(),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := workbook.SetCellValue(exportSheet, cell, value); err != nil {
				return saledomain.Export{}, err
			}
		}
	}

	buffer, err := workbook.WriteToBuffer()
	if err != nil {
		return saledomain.Export{}, err
	}

	name := fmt.Sprintf("ventas_%s.xlsx", s.clock.Now().Format("2006-01-02"))
	return saledomain.Export{FileName: name, Content: buffer.Bytes()}, nil
}

func parseID(value string) (snowflake.ID, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(parsed), nil
}

func actorID(ctx context.Context) snowflake.ID {
	_, actor := auditcontext.ActorFromContext(ctx)
	if actor == "" {
		return 0
	}
	parsed, err := strconv.ParseInt(actor, 10, 64)
	if err != nil {
		return 0
	}
	return snowflake.ID(parsed)
}
