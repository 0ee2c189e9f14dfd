package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"github.com/shopspring/decimal"
)

type Group struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	IsActive  *bool     `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GroupMember is a Member's participation record within a Group. Removal
// flips IsActive instead of deleting, so contribution history survives.
// At most one active row may exist per (group, member) pair.
type GroupMember struct {
	ID                   int             `gorm:"primary_key" json:"id"`
	GroupId              int             `gorm:"index;not null" json:"group_id"`
	MemberId             int             `gorm:"index;not null" json:"member_id"`
	JoiningWeek          int             `gorm:"not null;default:1" json:"joining_week"`
	JoiningDate          time.Time       `gorm:"not null" json:"joining_date"`
	WeeklyAmount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"weekly_amount"`
	TotalContributed     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_contributed"`
	TotalBenefitReceived decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_benefit_received"`
	// BenefitEstimate caches the latest mid-cycle projection; it is a display
	// value, never ledger state.
	BenefitEstimate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"benefit_estimate"`
	IsActive        *bool           `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewGroupMember struct {
	MemberId     int              `json:"member_id" binding:"required"`
	JoiningWeek  int              `json:"joining_week" binding:"required,min=1"`
	JoiningDate  time.Time        `json:"joining_date" binding:"required"`
	WeeklyAmount *decimal.Decimal `json:"weekly_amount"`
}

type NewGroup struct {
	Name string `json:"name" binding:"required"`
}

func CreateGroup(ctx context.Context, input *NewGroup) (*Group, error) {
	if err := utils.ValidateUnique[Group](ctx, "name", input.Name, 0); err != nil {
		return nil, err
	}

	group := Group{
		Name:     input.Name,
		IsActive: utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func GetGroup(ctx context.Context, id int) (*Group, error) {
	return utils.FetchSingleModel[Group](ctx, id)
}

func GetGroupMember(ctx context.Context, groupId int, memberId int) (*GroupMember, error) {
	db := config.GetDB()
	var gm GroupMember
	err := db.WithContext(ctx).
		Where("group_id = ? AND member_id = ? AND is_active = ?", groupId, memberId, true).
		Take(&gm).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &gm, nil
}

// GetActiveGroupMembers returns the active membership of a group ordered by
// joining week, which is also the rotation order used for distributions.
func GetActiveGroupMembers(ctx context.Context, groupId int) ([]*GroupMember, error) {
	db := config.GetDB()
	var members []*GroupMember
	err := db.WithContext(ctx).
		Where("group_id = ? AND is_active = ?", groupId, true).
		Order("joining_week ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
