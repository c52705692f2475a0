package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/neoledsrlbolivia/neopos/internal/auth/domain"
	"github.com/neoledsrlbolivia/neopos/internal/auth/password"
	catalogdomain "github.com/neoledsrlbolivia/neopos/internal/catalog/domain"
	"github.com/neoledsrlbolivia/neopos/internal/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// defaultAttributes are the master lookup values a fresh store starts
// with.
var defaultAttributes = map[catalogdomain.AttributeKind][]string{
	catalogdomain.AttributeColor:    {"Blanco", "Negro", "Dorado", "Plateado"},
	catalogdomain.AttributeWattage:  {"5W", "9W", "12W", "18W", "24W"},
	catalogdomain.AttributeCategory: {"Focos", "Cintas LED", "Reflectores", "Decorativos"},
	catalogdomain.AttributeType:     {"Luz Fría", "Luz Cálida", "Luz Neutra"},
}

// EnsureDefaultAdmin seeds the bootstrap admin user when the users table
// is empty, so a fresh install can log in.
func EnsureDefaultAdmin(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if !cfg.Bootstrap.EnsureDefaultAdmin {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		username := strings.ToLower(strings.TrimSpace(cfg.Bootstrap.AdminUsername))
		if username == "" {
			return errors.New("bootstrap admin username is required")
		}

		var user authdomain.User
		err := tx.Where("username = ?", username).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(cfg.Bootstrap.AdminPassword)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		user = authdomain.User{
			ID:           node.Generate(),
			Username:     username,
			DisplayName:  "Administrador",
			PasswordHash: hashed,
			Role:         authdomain.RoleAdmin,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(&user).Error
	})
}

// EnsureDefaultAttributes inserts the default master lookup values,
// skipping ones that already exist.
func EnsureDefaultAttributes(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for kind, names := range defaultAttributes {
			for _, name := range names {
				attribute := catalogdomain.Attribute{
					ID:        node.Generate(),
					Kind:      kind,
					Name:      name,
					CreatedAt: now,
				}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
					Create(&attribute).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
