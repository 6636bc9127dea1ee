package storage

import (
	"errors"
	"reelsmith/internal/types"

	"gorm.io/gorm/clause"
)

// RecordUsage inserts one ledger row. Re-inserting the same
// (user, account, fingerprint) is a no-op, so concurrent batch items and
// retries cannot double-count.
func RecordUsage(record *types.UsageRecord) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Clauses(clause.OnConflict{DoNothing: true}).Create(record).Error
}

// UsedFingerprints returns every fingerprint the (user, account) pair has
// already consumed.
func UsedFingerprints(userId, accountId string) ([]string, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var fingerprints []string
	err := DB.Model(&types.UsageRecord{}).
		Where("user_id = ? AND account_id = ?", userId, accountId).
		Pluck("fingerprint", &fingerprints).Error
	if err != nil {
		return nil, err
	}
	return fingerprints, nil
}

// UsageCount reports how many bank assets the pair has consumed.
func UsageCount(userId, accountId string) (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	var count int64
	err := DB.Model(&types.UsageRecord{}).
		Where("user_id = ? AND account_id = ?", userId, accountId).
		Count(&count).Error
	return count, err
}
