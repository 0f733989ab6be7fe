package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/faktur/internal/auth/domain"
	"github.com/smallbiznis/faktur/internal/auth/password"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@faktur.local"
	defaultAdminPassword = "admin"
	defaultAdminName     = "Faktur Admin"
)

// EnsureAdminUser seeds the default admin account for startup bootstrap. It
// is idempotent: an existing account with the default email is left alone,
// including any changed password.
func EnsureAdminUser(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user authdomain.User
		err := tx.WithContext(ctx).
			Where("email = ?", defaultAdminEmail).
			First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(defaultAdminPassword)
		if err != nil {
			return err
		}
		user = authdomain.User{
			ID:           node.Generate(),
			Email:        strings.ToLower(defaultAdminEmail),
			PasswordHash: hashed,
			Name:         defaultAdminName,
			Role:         authdomain.RoleAdmin,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}
