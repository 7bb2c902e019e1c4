package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/infrastructure/persistence/mappers"
	"github.com/servana-inc/servana/internal/infrastructure/persistence/models"
	"github.com/servana-inc/servana/internal/shared/db"
)

// AccountRepository implements account.Repository using GORM with
// Model/Mapper separation. Uniqueness races surface as driver duplicate
// errors; callers detect them with errors.IsDuplicateError and re-read.
type AccountRepository struct {
	db         *gorm.DB
	mapper     mappers.AccountMapper
	linkMapper mappers.LinkedAccountMapper
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(gdb *gorm.DB) account.Repository {
	return &AccountRepository{
		db:         gdb,
		mapper:     mappers.NewAccountMapper(),
		linkMapper: mappers.NewLinkedAccountMapper(),
	}
}

func (r *AccountRepository) conn(ctx context.Context) *gorm.DB {
	return db.GetTxFromContext(ctx, r.db)
}

func (r *AccountRepository) GetByID(ctx context.Context, id uint) (*account.Account, error) {
	var model models.AccountModel
	err := r.conn(ctx).First(&model, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *AccountRepository) GetBySID(ctx context.Context, sid string) (*account.Account, error) {
	var model models.AccountModel
	err := r.conn(ctx).Where("sid = ?", sid).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by SID: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	var model models.AccountModel
	err := r.conn(ctx).Where("email = ?", email).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *AccountRepository) GetByExternalIdentity(ctx context.Context, provider, subjectID string) (*account.Account, *account.LinkedAccount, error) {
	link, err := r.GetLink(ctx, provider, subjectID)
	if err != nil || link == nil {
		return nil, nil, err
	}
	acct, err := r.GetByID(ctx, link.AccountID)
	if err != nil {
		return nil, nil, err
	}
	if acct == nil {
		// Orphaned link; treat the identity as unknown.
		return nil, nil, nil
	}
	return acct, link, nil
}

func (r *AccountRepository) GetLink(ctx context.Context, provider, subjectID string) (*account.LinkedAccount, error) {
	var model models.LinkedAccountModel
	err := r.conn(ctx).Where("provider = ? AND subject_id = ?", provider, subjectID).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get linked account: %w", err)
	}
	return r.linkMapper.ToDomain(&model), nil
}

func (r *AccountRepository) GetLinkByAccount(ctx context.Context, accountID uint, provider string) (*account.LinkedAccount, error) {
	var model models.LinkedAccountModel
	err := r.conn(ctx).Where("account_id = ? AND provider = ?", accountID, provider).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get linked account by account: %w", err)
	}
	return r.linkMapper.ToDomain(&model), nil
}

// CreateAccountWithLink inserts the account and its link in one
// transaction. Either insert can lose a uniqueness race; the duplicate
// error is returned unwrapped enough for IsDuplicateError to see it.
func (r *AccountRepository) CreateAccountWithLink(ctx context.Context, acct *account.Account, link *account.LinkedAccount) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		model := r.mapper.ToModel(acct)
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		if err := acct.SetID(model.ID); err != nil {
			return err
		}

		link.AccountID = model.ID
		linkModel := r.linkMapper.ToModel(link)
		if err := tx.Create(linkModel).Error; err != nil {
			return fmt.Errorf("failed to create linked account: %w", err)
		}
		link.ID = linkModel.ID
		return nil
	})
}

// UpgradeToLinked persists account mutations and inserts the link
// atomically, used when an existing local account gains external auth.
func (r *AccountRepository) UpgradeToLinked(ctx context.Context, acct *account.Account, link *account.LinkedAccount) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		linkModel := r.linkMapper.ToModel(link)
		if err := tx.Create(linkModel).Error; err != nil {
			return fmt.Errorf("failed to create linked account: %w", err)
		}
		link.ID = linkModel.ID

		if err := tx.Save(r.mapper.ToModel(acct)).Error; err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		return nil
	})
}

func (r *AccountRepository) CreateLink(ctx context.Context, link *account.LinkedAccount) error {
	model := r.linkMapper.ToModel(link)
	if err := r.conn(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create linked account: %w", err)
	}
	link.ID = model.ID
	return nil
}

func (r *AccountRepository) UpdateLink(ctx context.Context, link *account.LinkedAccount) error {
	result := r.conn(ctx).Save(r.linkMapper.ToModel(link))
	if result.Error != nil {
		return fmt.Errorf("failed to update linked account: %w", result.Error)
	}
	return nil
}

// UnlinkExternal removes the link and persists the account's downgraded
// auth method in one transaction.
func (r *AccountRepository) UnlinkExternal(ctx context.Context, acct *account.Account, linkID uint) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.LinkedAccountModel{}, linkID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete linked account: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Save(r.mapper.ToModel(acct)).Error; err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		return nil
	})
}

func (r *AccountRepository) Update(ctx context.Context, acct *account.Account) error {
	result := r.conn(ctx).Save(r.mapper.ToModel(acct))
	if result.Error != nil {
		return fmt.Errorf("failed to update account: %w", result.Error)
	}
	return nil
}

func (r *AccountRepository) UpdateAuthMethod(ctx context.Context, acct *account.Account) error {
	err := r.conn(ctx).Model(&models.AccountModel{}).
		Where("id = ?", acct.ID()).
		Update("auth_method", acct.AuthMethod().String()).Error
	if err != nil {
		return fmt.Errorf("failed to update auth method: %w", err)
	}
	return nil
}
