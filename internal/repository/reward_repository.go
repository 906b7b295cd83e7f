package repository

import (
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RewardRepository interface {
	// Credit atomically increments the user's balance and appends the ledger
	// row with the post-credit snapshot.
	Credit(userID uint, points int, source string, orderID *uint) (*models.RewardTransaction, error)
	// Redeem performs an atomic conditional decrement. ok is false when the
	// balance is insufficient; nothing is mutated in that case.
	Redeem(userID uint, points int, source string, orderID *uint) (*models.RewardTransaction, bool, error)
	Latest(userID uint) (*models.RewardTransaction, error)
	ListByUser(userID uint, page, limit int) ([]models.RewardTransaction, int64, error)
}

type rewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) Credit(userID uint, points int, source string, orderID *uint) (*models.RewardTransaction, error) {
	var txn *models.RewardTransaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("reward_points", gorm.Expr("reward_points + ?", points))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var user models.User
		if err := tx.Select("reward_points").First(&user, userID).Error; err != nil {
			return err
		}

		txn = &models.RewardTransaction{
			TxnNumber:    uuid.NewString(),
			UserID:       userID,
			Type:         string(models.RewardEarned),
			Points:       points,
			BalanceAfter: user.RewardPoints,
			Source:       source,
			OrderID:      orderID,
			CreatedAt:    time.Now(),
		}
		return tx.Create(txn).Error
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *rewardRepository) Redeem(userID uint, points int, source string, orderID *uint) (*models.RewardTransaction, bool, error) {
	var txn *models.RewardTransaction
	insufficient := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Conditional decrement: the WHERE clause guarantees two concurrent
		// redeems can never both pass the sufficiency check on a stale read.
		result := tx.Model(&models.User{}).
			Where("id = ? AND reward_points >= ?", userID, points).
			UpdateColumn("reward_points", gorm.Expr("reward_points - ?", points))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Distinguish a missing user from an insufficient balance.
			var user models.User
			if err := tx.Select("id").First(&user, userID).Error; err != nil {
				return err
			}
			insufficient = true
			return nil
		}

		var user models.User
		if err := tx.Select("reward_points").First(&user, userID).Error; err != nil {
			return err
		}

		txn = &models.RewardTransaction{
			TxnNumber:    uuid.NewString(),
			UserID:       userID,
			Type:         string(models.RewardRedeemed),
			Points:       points,
			BalanceAfter: user.RewardPoints,
			Source:       source,
			OrderID:      orderID,
			CreatedAt:    time.Now(),
		}
		return tx.Create(txn).Error
	})
	if err != nil {
		return nil, false, err
	}
	if insufficient {
		return nil, false, nil
	}
	return txn, true, nil
}

func (r *rewardRepository) Latest(userID uint) (*models.RewardTransaction, error) {
	var txn models.RewardTransaction
	err := r.db.Where("user_id = ?", userID).Order("id DESC").First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *rewardRepository) ListByUser(userID uint, page, limit int) ([]models.RewardTransaction, int64, error) {
	query := r.db.Model(&models.RewardTransaction{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.RewardTransaction
	err := query.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&txns).Error
	return txns, total, err
}
