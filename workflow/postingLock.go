package workflow

import (
	"fmt"

	"gorm.io/gorm"
)

// AcquireCyclePostingLock serializes ledger posting per cycle across
// instances using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB that will do the posting transaction.
func AcquireCyclePostingLock(tx *gorm.DB, cycleId int) error {
	lockName := fmt.Sprintf("rosca:posting:%d", cycleId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire posting lock for cycle_id=%d", cycleId)
	}
	return nil
}

func ReleaseCyclePostingLock(tx *gorm.DB, cycleId int) {
	lockName := fmt.Sprintf("rosca:posting:%d", cycleId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}
