package mappers

import (
	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/infrastructure/persistence/models"
	"github.com/servana-inc/servana/internal/shared/authorization"
)

// AccountMapper handles the conversion between the account aggregate and
// its persistence model.
type AccountMapper interface {
	ToModel(entity *account.Account) *models.AccountModel
	ToDomain(model *models.AccountModel) (*account.Account, error)
}

type AccountMapperImpl struct{}

// NewAccountMapper creates a new AccountMapper.
func NewAccountMapper() AccountMapper {
	return &AccountMapperImpl{}
}

func (m *AccountMapperImpl) ToModel(entity *account.Account) *models.AccountModel {
	if entity == nil {
		return nil
	}
	var avatarURL *string
	if entity.AvatarURL() != "" {
		url := entity.AvatarURL()
		avatarURL = &url
	}
	return &models.AccountModel{
		ID:           entity.ID(),
		SID:          entity.SID(),
		Email:        entity.Email(),
		Name:         entity.Name(),
		AvatarURL:    avatarURL,
		Role:         entity.Role().String(),
		Verified:     entity.Verified(),
		AuthMethod:   entity.AuthMethod().String(),
		PasswordHash: entity.PasswordHash(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}
}

func (m *AccountMapperImpl) ToDomain(model *models.AccountModel) (*account.Account, error) {
	if model == nil {
		return nil, nil
	}
	authMethod, err := account.ParseAuthMethod(model.AuthMethod)
	if err != nil {
		return nil, err
	}
	avatarURL := ""
	if model.AvatarURL != nil {
		avatarURL = *model.AvatarURL
	}
	return account.Reconstruct(
		model.ID,
		model.SID,
		model.Email,
		model.Name,
		avatarURL,
		authorization.Role(model.Role),
		model.Verified,
		authMethod,
		model.PasswordHash,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
