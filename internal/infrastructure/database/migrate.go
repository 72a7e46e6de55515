package database

import (
	"fmt"

	"github.com/sangkips/posadmin-api/internal/config"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	zap.L().Info("running database migrations")

	err := db.AutoMigrate(
		// Access control
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},

		// Catalog
		&entity.Category{},
		&entity.Supplier{},
		&entity.Product{},

		// CRM
		&entity.Customer{},

		// Transactions
		&entity.Sale{},
		&entity.SaleItem{},
		&entity.Payment{},

		// System
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	zap.L().Info("database migrations completed")
	return nil
}

// SeedDefaultData creates the permissions, the admin and cashier roles and,
// when credentials are configured, the first admin user. It is idempotent.
func SeedDefaultData(db *gorm.DB, admin *config.AdminConfig) error {
	log := zap.L()

	permissions := make(map[string]entity.Permission, len(entity.AllPermissions))
	for _, name := range entity.AllPermissions {
		perm := entity.Permission{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", name, err)
		}
		permissions[name] = perm
	}

	for roleName, permNames := range entity.DefaultRolePermissions {
		role := entity.Role{Name: roleName}
		if err := db.Where("name = ?", roleName).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", roleName, err)
		}

		perms := make([]entity.Permission, 0, len(permNames))
		for _, name := range permNames {
			perms = append(perms, permissions[name])
		}
		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("failed to attach permissions to role %s: %w", roleName, err)
		}
	}

	if admin == nil || admin.Username == "" || admin.Password == "" {
		log.Info("default data seeded, no admin credentials configured")
		return nil
	}

	var count int64
	if err := db.Model(&entity.User{}).Where("username = ?", admin.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("admin user already exists", zap.String("username", admin.Username))
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	user := entity.User{
		FullName: "Administrator",
		Username: admin.Username,
		Password: string(hashed),
		IsActive: true,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Roles").Create(&user).Error; err != nil {
			return err
		}
		return tx.Model(&user).Association("Roles").Append(&adminRole)
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Info("admin user created", zap.String("username", admin.Username))
	return nil
}
