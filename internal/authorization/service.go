package authorization

import "context"

// Action names a permission-gated operation.
type Action string

const (
	ActionProductArchive  Action = "product.archive"
	ActionSalesExport     Action = "sales.export"
	ActionDrawerClose     Action = "drawer.close"
	ActionCarouselManage  Action = "carousel.manage"
	ActionUserManage      Action = "user.manage"
	ActionQuotationVoid   Action = "quotation.void"
	ActionMovementHistory Action = "movement.history"
)

type Service interface {
	Authorize(ctx context.Context, role string, action Action) error
}
