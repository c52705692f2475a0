package audit

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/neoledsrlbolivia/neopos/internal/audit/domain"
	"github.com/neoledsrlbolivia/neopos/internal/auditcontext"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is one action to record.
type Entry struct {
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

// Recorder writes audit_logs rows. Record is best-effort: failures are
// logged, never returned, so auditing cannot break the write path.
type Recorder struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewRecorder(p Params) *Recorder {
	return &Recorder{
		db:    p.DB,
		log:   p.Log.Named("audit"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil || r.db == nil || entry.Action == "" {
		return
	}

	actorType, actorID := auditcontext.ActorFromContext(ctx)
	if actorType == "" {
		actorType = string(auditdomain.ActorTypeSystem)
	}

	metadata := datatypes.JSONMap{}
	for key, value := range entry.Metadata {
		metadata[key] = value
	}

	row := auditdomain.AuditLog{
		ID:         r.genID.Generate(),
		ActorType:  actorType,
		ActorID:    optional(actorID),
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   optional(entry.TargetID),
		Metadata:   metadata,
		IPAddress:  optional(auditcontext.IPAddressFromContext(ctx)),
		UserAgent:  optional(auditcontext.UserAgentFromContext(ctx)),
		CreatedAt:  r.clock.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.log.Warn("audit write failed",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
