package mappers

import (
	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/infrastructure/persistence/models"
)

// LinkedAccountMapper handles the conversion between link entities and
// persistence models.
type LinkedAccountMapper interface {
	ToModel(entity *account.LinkedAccount) *models.LinkedAccountModel
	ToDomain(model *models.LinkedAccountModel) *account.LinkedAccount
}

type LinkedAccountMapperImpl struct{}

// NewLinkedAccountMapper creates a new LinkedAccountMapper.
func NewLinkedAccountMapper() LinkedAccountMapper {
	return &LinkedAccountMapperImpl{}
}

func (m *LinkedAccountMapperImpl) ToModel(entity *account.LinkedAccount) *models.LinkedAccountModel {
	if entity == nil {
		return nil
	}
	return &models.LinkedAccountModel{
		ID:            entity.ID,
		SID:           entity.SID,
		AccountID:     entity.AccountID,
		Provider:      entity.Provider,
		SubjectID:     entity.SubjectID,
		Email:         entity.Email,
		DisplayName:   entity.DisplayName,
		AvatarURL:     entity.AvatarURL,
		EmailVerified: entity.EmailVerified,
		LastLoginAt:   entity.LastLoginAt,
		LoginCount:    entity.LoginCount,
		CreatedAt:     entity.CreatedAt,
		UpdatedAt:     entity.UpdatedAt,
	}
}

func (m *LinkedAccountMapperImpl) ToDomain(model *models.LinkedAccountModel) *account.LinkedAccount {
	if model == nil {
		return nil
	}
	return &account.LinkedAccount{
		ID:            model.ID,
		SID:           model.SID,
		AccountID:     model.AccountID,
		Provider:      model.Provider,
		SubjectID:     model.SubjectID,
		Email:         model.Email,
		DisplayName:   model.DisplayName,
		AvatarURL:     model.AvatarURL,
		EmailVerified: model.EmailVerified,
		LastLoginAt:   model.LastLoginAt,
		LoginCount:    model.LoginCount,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
