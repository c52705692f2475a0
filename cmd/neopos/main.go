package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/neoledsrlbolivia/neopos/internal/audit"
	"github.com/neoledsrlbolivia/neopos/internal/auth"
	"github.com/neoledsrlbolivia/neopos/internal/authorization"
	"github.com/neoledsrlbolivia/neopos/internal/carousel"
	"github.com/neoledsrlbolivia/neopos/internal/cashdrawer"
	"github.com/neoledsrlbolivia/neopos/internal/catalog"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"github.com/neoledsrlbolivia/neopos/internal/config"
	"github.com/neoledsrlbolivia/neopos/internal/document"
	"github.com/neoledsrlbolivia/neopos/internal/events"
	"github.com/neoledsrlbolivia/neopos/internal/migration"
	"github.com/neoledsrlbolivia/neopos/internal/observability/logger"
	"github.com/neoledsrlbolivia/neopos/internal/observability/tracing"
	"github.com/neoledsrlbolivia/neopos/internal/quotation"
	"github.com/neoledsrlbolivia/neopos/internal/sale"
	"github.com/neoledsrlbolivia/neopos/internal/scheduler"
	"github.com/neoledsrlbolivia/neopos/internal/seed"
	"github.com/neoledsrlbolivia/neopos/internal/server"
	"github.com/neoledsrlbolivia/neopos/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		clock.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if err := seed.EnsureDefaultAdmin(conn, cfg); err != nil {
				return err
			}
			return seed.EnsureDefaultAttributes(conn)
		}),
		events.Module,
		document.Module,
		quotation.Module,
		catalog.Module,
		sale.Module,
		cashdrawer.Module,
		carousel.Module,
		auth.Module,
		authorization.Module,
		audit.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}
