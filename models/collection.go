package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rosca_backend/config"
	"github.com/shopspring/decimal"
)

// Collection is one week's pooled contribution total within a cycle.
type Collection struct {
	ID             int             `gorm:"primary_key" json:"id"`
	LoanCycleId    int             `gorm:"index:idx_collection_cycle_week,unique;not null" json:"loan_cycle_id"`
	Week           int             `gorm:"index:idx_collection_cycle_week,unique;not null" json:"week"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	CollectionDate time.Time       `json:"collection_date"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// CollectionPayment is one member's contribution for one week. The PAID
// rows drive contribution-proportional savings redistribution.
type CollectionPayment struct {
	ID          int                     `gorm:"primary_key" json:"id"`
	LoanCycleId int                     `gorm:"index;not null" json:"loan_cycle_id"`
	Week        int                     `gorm:"not null" json:"week"`
	MemberId    int                     `gorm:"index;not null" json:"member_id"`
	Amount      decimal.Decimal         `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Status      CollectionPaymentStatus `gorm:"type:enum('PAID', 'PENDING');default:PENDING" json:"status"`
	PaymentDate time.Time               `json:"payment_date"`
	CreatedAt   time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

// PaidTotalsByMember sums PAID collection payments per member. A zero cycle
// id sums across the whole membership.
func PaidTotalsByMember(ctx context.Context, cycleId int) (map[int]decimal.Decimal, error) {
	type row struct {
		MemberId int
		Total    decimal.Decimal
	}
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&CollectionPayment{}).
		Select("member_id, SUM(amount) AS total").
		Where("status = ?", CollectionPaymentStatusPaid)
	if cycleId > 0 {
		dbCtx = dbCtx.Where("loan_cycle_id = ?", cycleId)
	}
	var rows []row
	if err := dbCtx.Group("member_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	totals := make(map[int]decimal.Decimal, len(rows))
	for _, r := range rows {
		totals[r.MemberId] = r.Total
	}
	return totals, nil
}
