package scheduler

import (
	"context"

	"github.com/neoledsrlbolivia/neopos/internal/clock"
	quotationdomain "github.com/neoledsrlbolivia/neopos/internal/quotation/domain"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// expirySchedule runs the sweep every 15 minutes.
const expirySchedule = "*/15 * * * *"

type Params struct {
	fx.In

	Log       *zap.Logger
	Quotation quotationdomain.Service
	Clock     clock.Clock
}

// Sweeper expires pending quotations past their validity window on a
// cron schedule.
type Sweeper struct {
	log       *zap.Logger
	quotation quotationdomain.Service
	clock     clock.Clock
	cron      *cron.Cron
}

func NewSweeper(p Params) *Sweeper {
	return &Sweeper{
		log:       p.Log.Named("scheduler"),
		quotation: p.Quotation,
		clock:     p.Clock,
		cron:      cron.New(),
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(expirySchedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("quotation expiry sweeper started", zap.String("schedule", expirySchedule))
	return nil
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	ctx := context.Background()
	expired, err := s.quotation.ExpireDue(ctx, s.clock.Now())
	if err != nil {
		s.log.Error("expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.log.Info("quotations expired", zap.Int64("count", expired))
	}
}

var Module = fx.Module("scheduler",
	fx.Provide(NewSweeper),
	fx.Invoke(func(lc fx.Lifecycle, sweeper *Sweeper) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return sweeper.Start()
			},
			OnStop: func(ctx context.Context) error {
				sweeper.Stop()
				return nil
			},
		})
	}),
)
