package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/servana-inc/servana/internal/infrastructure/persistence/models"
	"github.com/servana-inc/servana/internal/shared/biztime"
	"github.com/servana-inc/servana/internal/shared/db"
	"github.com/servana-inc/servana/internal/shared/id"
)

// RefreshTokenRepository persists refresh tokens by SHA-256 hash. The raw
// token only ever lives in the client.
type RefreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository.
func NewRefreshTokenRepository(gdb *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: gdb}
}

func (r *RefreshTokenRepository) conn(ctx context.Context) *gorm.DB {
	return db.GetTxFromContext(ctx, r.db)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (r *RefreshTokenRepository) Persist(ctx context.Context, accountID uint, token string, expiresAt time.Time) error {
	model := &models.RefreshTokenModel{
		SID:       id.MustGenerateWithPrefix(id.PrefixRefreshToken, id.DefaultLength),
		AccountID: accountID,
		TokenHash: hashToken(token),
		ExpiresAt: expiresAt,
	}
	if err := r.conn(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) IsActive(ctx context.Context, accountID uint, token string) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&models.RefreshTokenModel{}).
		Where("account_id = ? AND token_hash = ? AND revoked_at IS NULL AND expires_at > ?",
			accountID, hashToken(token), biztime.NowUTC()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check refresh token: %w", err)
	}
	return count > 0, nil
}

// Rotate revokes the presented token and persists its replacement in one
// transaction.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, accountID uint, oldToken, newToken string, expiresAt time.Time) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		now := biztime.NowUTC()
		result := tx.Model(&models.RefreshTokenModel{}).
			Where("account_id = ? AND token_hash = ? AND revoked_at IS NULL", accountID, hashToken(oldToken)).
			Update("revoked_at", now)
		if result.Error != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		replacement := &models.RefreshTokenModel{
			SID:       id.MustGenerateWithPrefix(id.PrefixRefreshToken, id.DefaultLength),
			AccountID: accountID,
			TokenHash: hashToken(newToken),
			ExpiresAt: expiresAt,
		}
		if err := tx.Create(replacement).Error; err != nil {
			return fmt.Errorf("failed to persist rotated refresh token: %w", err)
		}
		return nil
	})
}

// RevokeAll revokes every live refresh token for an account, used on
// logout-everywhere and password change.
func (r *RefreshTokenRepository) RevokeAll(ctx context.Context, accountID uint) error {
	err := r.conn(ctx).Model(&models.RefreshTokenModel{}).
		Where("account_id = ? AND revoked_at IS NULL", accountID).
		Update("revoked_at", biztime.NowUTC()).Error
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}
