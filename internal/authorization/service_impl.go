package authorization

import (
	"context"
	"strings"

	authdomain "github.com/neoledsrlbolivia/neopos/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// assistantActions is the allow-list for the asistente role. Admins pass
// every check.
var assistantActions = map[Action]struct{}{
	ActionQuotationVoid:   {},
	ActionMovementHistory: {},
}

type Params struct {
	fx.In

	Log *zap.Logger
}

type ServiceImpl struct {
	log *zap.Logger
}

func NewService(p Params) Service {
	return &ServiceImpl{log: p.Log.Named("authorization")}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role string, action Action) error {
	if action == "" {
		return ErrInvalidAction
	}

	switch authdomain.Role(strings.TrimSpace(role)) {
	case authdomain.RoleAdmin:
		return nil
	case authdomain.RoleAssistant:
		if _, ok := assistantActions[action]; ok {
			return nil
		}
		s.log.Debug("action denied",
			zap.String("role", role),
			zap.String("action", string(action)),
		)
		return ErrForbidden
	default:
		return ErrInvalidRole
	}
}
