package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/neoledsrlbolivia/neopos/internal/auditcontext"
	cashdomain "github.com/neoledsrlbolivia/neopos/internal/cashdrawer/domain"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"github.com/neoledsrlbolivia/neopos/internal/events"
	"github.com/shopspring/decimal"
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

func NewService(p Params) cashdomain.Service {
	return &ServiceImpl{
		db:     p.DB,
		log:    p.Log.Named("cashdrawer"),
		genID:  p.GenID,
		outbox: p.Outbox,
		clock:  p.Clock,
	}
}

func (s *ServiceImpl) Open(ctx context.Context, openingAmount decimal.Decimal) (cashdomain.Session, error) {
	if openingAmount.IsNegative() {
		return cashdomain.Session{}, cashdomain.ErrInvalidAmount
	}

	session := cashdomain.Session{
		ID:            s.genID.Generate(),
		OpenedBy:      actorID(ctx),
		OpeningAmount: openingAmount,
		ClosingAmount: decimal.Zero,
		Status:        cashdomain.SessionOpen,
		OpenedAt:      s.clock.Now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&cashdomain.Session{}).
			Where("status = ?", cashdomain.SessionOpen).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return cashdomain.ErrSessionAlreadyOpen
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return cashdomain.Session{}, err
	}

	s.log.Info("drawer session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("opening_amount", openingAmount.String()),
	)
	return session, nil
}

func (s *ServiceImpl) Close(ctx context.Context, id string) (cashdomain.Session, error) {
	sessionID, err := parseID(id)
	if err != nil {
		return cashdomain.Session{}, cashdomain.ErrInvalidID
	}

	var session cashdomain.Session
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&session, "id = ?", sessionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return cashdomain.ErrSessionNotFound
			}
			return err
		}
		if session.Status != cashdomain.SessionOpen {
			return cashdomain.ErrSessionClosed
		}

		closing, err := balanceTx(tx, session)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if err := tx.Model(&cashdomain.Session{}).
			Where("id = ?", session.ID).
			Updates(map[string]any{
				"status":         cashdomain.SessionClosed,
				"closing_amount": closing,
				"closed_at":      now,
			}).Error; err != nil {
			return err
		}
		session.Status = cashdomain.SessionClosed
		session.ClosingAmount = closing
		session.ClosedAt = &now
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.TypeDrawerClosed,
			Payload: map[string]any{
				"session_id":     session.ID.String(),
				"closing_amount": closing.String(),
			},
			DedupeKey: "cash_drawer.closed:" + session.ID.String(),
		})
	})
	if err != nil {
		return cashdomain.Session{}, err
	}
	return session, nil
}

func (s *ServiceImpl) CurrentSession(ctx context.Context) (cashdomain.Session, error) {
	var session cashdomain.Session
	if err := s.db.WithContext(ctx).
		First(&session, "status = ?", cashdomain.SessionOpen).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return cashdomain.Session{}, cashdomain.ErrNoOpenSession
		}
		return cashdomain.Session{}, err
	}
	return session, nil
}

func (s *ServiceImpl) Balance(ctx context.Context, id string) (decimal.Decimal, error) {
	sessionID, err := parseID(id)
	if err != nil {
		return decimal.Zero, cashdomain.ErrInvalidID
	}

	var session cashdomain.Session
	if err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, cashdomain.ErrSessionNotFound
		}
		return decimal.Zero, err
	}
	return balanceTx(s.db.WithContext(ctx), session)
}

func (s *ServiceImpl) RegisterMovement(ctx context.Context, req cashdomain.MovementRequest) (cashdomain.Movement, error) {
	sessionID, err := parseID(req.SessionID)
	if err != nil {
		return cashdomain.Movement{}, cashdomain.ErrInvalidID
	}
	switch req.Type {
	case cashdomain.MovementIn, cashdomain.MovementOut:
	default:
		return cashdomain.Movement{}, cashdomain.ErrInvalidMovement
	}
	if strings.TrimSpace(req.Description) == "" || !req.Amount.IsPositive() {
		return cashdomain.Movement{}, cashdomain.ErrInvalidMovement
	}

	movement := cashdomain.Movement{
		ID:          s.genID.Generate(),
		SessionID:   sessionID,
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		UserID:      actorID(ctx),
		CreatedAt:   s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session cashdomain.Session
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return cashdomain.ErrSessionNotFound
			}
			return err
		}
		if session.Status != cashdomain.SessionOpen {
			return cashdomain.ErrSessionClosed
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return cashdomain.Movement{}, err
	}
	return movement, nil
}

func (s *ServiceImpl) ListMovements(ctx context.Context, req cashdomain.ListMovementsRequest) ([]cashdomain.Movement, error) {
	query := s.db.WithContext(ctx).Model(&cashdomain.Movement{})
	if req.SessionID != "" {
		sessionID, err := parseID(req.SessionID)
		if err != nil {
			return nil, cashdomain.ErrInvalidID
		}
		query = query.Where("session_id = ?", sessionID)
	}
	if req.UserID != "" {
		userID, err := parseID(req.UserID)
		if err != nil {
			return nil, cashdomain.ErrInvalidID
		}
		query = query.Where("user_id = ?", userID)
	}

	var movements []cashdomain.Movement
	if err := query.Order("created_at DESC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// balanceTx computes opening + inflows - outflows using the provided
// handle so Close can run it under the session row lock.
func balanceTx(tx *gorm.DB, session cashdomain.Session) (decimal.Decimal, error) {
	var movements []cashdomain.Movement
	if err := tx.Where("session_id = ?", session.ID).Find(&movements).Error; err != nil {
		return decimal.Zero, err
	}

	balance := session.OpeningAmount
	for _, movement := range movements {
		switch movement.Type {
		case cashdomain.MovementIn:
			balance = balance.Add(movement.Amount)
		case cashdomain.MovementOut:
			balance = balance.Sub(movement.Amount)
		}
	}
	return balance, nil
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
