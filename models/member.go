package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
)

// Member is an individual participant. Members are created by an
// administrator and never deleted; removal from a group soft-deactivates
// the GroupMember record instead.
type Member struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email       string    `gorm:"size:100" json:"email"`
	Phone       string    `gorm:"size:20" json:"phone"`
	BankAccount string    `gorm:"size:100" json:"bank_account"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMember struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	BankAccount string `json:"bank_account"`
}

func (input NewMember) validate() error {
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return utils.NewValidationError("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("invalid phone number")
		}
	}
	return nil
}

func CreateMember(ctx context.Context, input *NewMember) (*Member, error) {

	if err := input.validate(); err != nil {
		return nil, err
	}

	member := Member{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		BankAccount: input.BankAccount,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func GetMember(ctx context.Context, id int) (*Member, error) {
	return utils.FetchSingleModel[Member](ctx, id)
}
