package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/neoledsrlbolivia/neopos/internal/auditcontext"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"github.com/neoledsrlbolivia/neopos/internal/config"
	"github.com/neoledsrlbolivia/neopos/internal/document"
	"github.com/neoledsrlbolivia/neopos/internal/events"
	quotationdomain "github.com/neoledsrlbolivia/neopos/internal/quotation/domain"
	"github.com/neoledsrlbolivia/neopos/internal/quotation/render"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultFileName = "cotizacion.pdf"

var two = decimal.NewFromInt(2)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Renderer  render.Renderer
	Generator *document.Generator
	Outbox    *events.Outbox
	Clock     clock.Clock
	Cfg       config.Config
}

type ServiceImpl struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	renderer  render.Renderer
	generator *document.Generator
	outbox    *events.Outbox
	clock     clock.Clock
	policy    render.BalancePolicy
	logoURL   string
}

func NewService(p Params) quotationdomain.Service {
	return &ServiceImpl{
		db:        p.DB,
		log:       p.Log.Named("quotation"),
		genID:     p.GenID,
		renderer:  p.Renderer,
		generator: p.Generator,
		outbox:    p.Outbox,
		clock:     p.Clock,
		policy:    render.BalancePolicy(p.Cfg.Render.BalancePolicy),
		logoURL:   p.Cfg.Render.LogoURL,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, req quotationdomain.CreateRequest) (quotationdomain.Quotation, error) {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerPhone) == "" {
		return quotationdomain.Quotation{}, quotationdomain.ErrInvalidCustomer
	}
	term := render.PaymentTerm(strings.TrimSpace(req.PaymentTerm))
	switch term {
	case render.PaymentCashOnDelivery, render.PaymentFullAdvance, render.PaymentHalfAdvance:
	default:
		return quotationdomain.Quotation{}, quotationdomain.ErrInvalidPaymentTerm
	}
	if len(req.Items) == 0 {
		return quotationdomain.Quotation{}, quotationdomain.ErrInvalidItems
	}

	subtotal := decimal.Zero
	items := make([]quotationdomain.QuotationItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.UnitPrice.IsNegative() || strings.TrimSpace(item.Description) == "" {
			return quotationdomain.Quotation{}, quotationdomain.ErrInvalidItems
		}
		variantID, err := parseID(item.VariantID)
		if err != nil {
			return quotationdomain.Quotation{}, quotationdomain.ErrInvalidItems
		}
		lineSubtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		items = append(items, quotationdomain.QuotationItem{
			ID:           s.genID.Generate(),
			VariantID:    variantID,
			Description:  strings.TrimSpace(item.Description),
			Color:        strings.TrimSpace(item.Color),
			Category:     strings.TrimSpace(item.Category),
			Type:         strings.TrimSpace(item.Type),
			Stock:        item.Stock,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			LineSubtotal: lineSubtotal,
		})
	}

	discount := req.Discount
	if discount.IsNegative() || discount.GreaterThan(subtotal) {
		return quotationdomain.Quotation{}, quotationdomain.ErrInvalidDiscount
	}
	total := subtotal.Sub(discount)
	advance, balance := advanceBalance(term, total)

	now := s.clock.Now()
	validity := req.ValidityDays
	if validity < 0 {
		validity = 0
	}
	quotation := quotationdomain.Quotation{
		ID:              s.genID.Generate(),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		PaymentTerm:     string(term),
		ValidityDays:    validity,
		ExpiresAt:       now.Add(time.Duration(validity) * 24 * time.Hour),
		Subtotal:        subtotal,
		Discount:        discount,
		Total:           total,
		Advance:         advance,
		Balance:         balance,
		Status:          quotationdomain.StatusPending,
		CreatedBy:       actorID(ctx),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quotation).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].QuotationID = quotation.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return quotationdomain.Quotation{}, err
	}

	s.log.Info("quotation created",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("status", string(quotation.Status)),
		zap.Int("items", len(items)),
	)
	return quotation, nil
}

func (s *ServiceImpl) List(ctx context.Context, req quotationdomain.ListRequest) ([]quotationdomain.Quotation, error) {
	query := s.db.WithContext(ctx).Model(&quotationdomain.Quotation{})
	if status := strings.TrimSpace(req.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var quotations []quotationdomain.Quotation
	if err := query.Order("created_at DESC").Find(&quotations).Error; err != nil {
		return nil, err
	}
	return quotations, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (quotationdomain.Quotation, []quotationdomain.QuotationItem, error) {
	quotation, err := s.load(ctx, id)
	if err != nil {
		return quotationdomain.Quotation{}, nil, err
	}

	var items []quotationdomain.QuotationItem
	if err := s.db.WithContext(ctx).
		Where("quotation_id = ?", quotation.ID).
		Order("id").
		Find(&items).Error; err != nil {
		return quotationdomain.Quotation{}, nil, err
	}
	return quotation, items, nil
}

func (s *ServiceImpl) MarkSold(ctx context.Context, id string) (quotationdomain.Quotation, error) {
	return s.transition(ctx, id, quotationdomain.StatusSold, func(quotation quotationdomain.Quotation) events.Event {
		return events.Event{
			Type:      events.TypeQuotationSold,
			Payload:   map[string]any{"quotation_id": quotation.ID.String(), "total": quotation.Total.String()},
			DedupeKey: "quotation.sold:" + quotation.ID.String(),
		}
	})
}

func (s *ServiceImpl) Void(ctx context.Context, id string) (quotationdomain.Quotation, error) {
	return s.transition(ctx, id, quotationdomain.StatusVoid, func(quotation quotationdomain.Quotation) events.Event {
		return events.Event{
			Type:      events.TypeQuotationVoided,
			Payload:   map[string]any{"quotation_id": quotation.ID.String()},
			DedupeKey: "quotation.voided:" + quotation.ID.String(),
		}
	})
}

func (s *ServiceImpl) DownloadPDF(ctx context.Context, id string) (quotationdomain.Document, error) {
	quotation, items, err := s.Get(ctx, id)
	if err != nil {
		return quotationdomain.Document{}, err
	}

	html, err := s.renderer.RenderHTML(s.renderInput(quotation, items))
	if err != nil {
		return quotationdomain.Document{}, err
	}

	pdf, err := s.generator.Generate(ctx, html)
	if err != nil {
		return quotationdomain.Document{}, err
	}

	s.log.Info("quotation pdf generated",
		zap.String("quotation_id", quotation.ID.String()),
		zap.Int("bytes", len(pdf)),
	)
	return quotationdomain.Document{FileName: defaultFileName, PDF: pdf}, nil
}

func (s *ServiceImpl) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Exec(
		`UPDATE quotations
		 SET status = ?, updated_at = ?
		 WHERE status = ? AND expires_at <= ?`,
		quotationdomain.StatusExpired,
		now,
		quotationdomain.StatusPending,
		now,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// renderInput maps the stored quotation to the renderer's view structs,
// converting exact decimals to floats at the boundary.
func (s *ServiceImpl) renderInput(quotation quotationdomain.Quotation, items []quotationdomain.QuotationItem) render.RenderInput {
	views := make([]render.LineItemView, 0, len(items))
	for _, item := range items {
		views = append(views, render.LineItemView{
			Name:      item.Description,
			Color:     item.Color,
			Category:  item.Category,
			Type:      item.Type,
			Stock:     item.Stock,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.InexactFloat64(),
		})
	}

	return render.RenderInput{
		Customer: render.CustomerView{
			Name:         quotation.CustomerName,
			Phone:        quotation.CustomerPhone,
			Address:      quotation.CustomerAddress,
			PaymentTerm:  render.PaymentTerm(quotation.PaymentTerm),
			ValidityDays: quotation.ValidityDays,
		},
		Items:         views,
		Subtotal:      quotation.Subtotal.InexactFloat64(),
		DiscountTotal: quotation.Discount.InexactFloat64(),
		FinalTotal:    quotation.Total.InexactFloat64(),
		Date:          quotation.CreatedAt.Format("02/01/2006"),
		LogoURL:       s.logoURL,
		Policy:        s.policy,
	}
}

func (s *ServiceImpl) load(ctx context.Context, id string) (quotationdomain.Quotation, error) {
	quotationID, err := parseID(id)
	if err != nil {
		return quotationdomain.Quotation{}, quotationdomain.ErrInvalidID
	}

	var quotation quotationdomain.Quotation
	if err := s.db.WithContext(ctx).First(&quotation, "id = ?", quotationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return quotationdomain.Quotation{}, quotationdomain.ErrNotFound
		}
		return quotationdomain.Quotation{}, err
	}
	return quotation, nil
}

// transition flips a pending quotation to its next status and records the
// matching outbox event in the same transaction, so a committed transition
// always has its event row.
func (s *ServiceImpl) transition(ctx context.Context, id string, next quotationdomain.Status, eventFor func(quotationdomain.Quotation) events.Event) (quotationdomain.Quotation, error) {
	quotation, err := s.load(ctx, id)
	if err != nil {
		return quotationdomain.Quotation{}, err
	}
	if quotation.Status != quotationdomain.StatusPending {
		return quotationdomain.Quotation{}, quotationdomain.ErrNotPending
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&quotationdomain.Quotation{}).
			Where("id = ? AND status = ?", quotation.ID, quotationdomain.StatusPending).
			Updates(map[string]any{"status": next, "updated_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return quotationdomain.ErrNotPending
		}
		quotation.Status = next
		quotation.UpdatedAt = now
		return s.outbox.PublishTx(ctx, tx, eventFor(quotation))
	})
	if err != nil {
		return quotationdomain.Quotation{}, err
	}
	return quotation, nil
}

func advanceBalance(term render.PaymentTerm, total decimal.Decimal) (advance, balance decimal.Decimal) {
	switch term {
	case render.PaymentFullAdvance:
		return total, decimal.Zero
	case render.PaymentHalfAdvance:
		half := total.Div(two).Round(2)
		return half, total.Sub(half)
	default:
		return decimal.Zero, total
	}
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
