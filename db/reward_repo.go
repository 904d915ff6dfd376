package db

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	errs "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/models"
	"gorm.io/gorm"
)

type RewardRepository interface {
	GetOrCreateReward(userID uint) (*models.Reward, error)
	GetRewardByID(id uint) (*models.Reward, error)
	GetCatalogRewards() ([]models.Reward, error)
	RedeemAllPoints(userID uint) (int, error)
	RedeemCatalogReward(userID uint, reward *models.Reward) error
	GetAllRewards() ([]models.RewardRow, error)
}

type rewardRepo struct {
	DB *gorm.DB
}

func NewRewardRepo(db *GormDB) RewardRepository {
	return &rewardRepo{db.DB}
}

// GetOrCreateReward fetches the user's accumulator row, creating a zeroed
// one on first touch.
func (r *rewardRepo) GetOrCreateReward(userID uint) (*models.Reward, error) {
	var reward models.Reward
	err := r.DB.Where("user_id = ?", userID).First(&reward).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			reward = models.Reward{
				UserID:      userID,
				Points:      0,
				Name:        "Temperature Report Reward",
				VerifyInfo:  "Points earned from reporting temperature",
				IsAvailable: true,
			}
			if err := r.DB.Create(&reward).Error; err != nil {
				return nil, err
			}
			return &reward, nil
		}
		return nil, fmt.Errorf("error fetching reward for user %d: %w", userID, err)
	}
	return &reward, nil
}

func (r *rewardRepo) GetRewardByID(id uint) (*models.Reward, error) {
	var reward models.Reward
	err := r.DB.First(&reward, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrInvalidReward
		}
		return nil, err
	}
	return &reward, nil
}

func (r *rewardRepo) GetCatalogRewards() ([]models.Reward, error) {
	var rewards []models.Reward
	err := r.DB.Where("user_id = 0 AND is_available = ?", true).Find(&rewards).Error
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

// RedeemAllPoints zeroes the user's accumulator and appends the matching
// redeemed ledger row in one database transaction. Returns the redeemed
// total.
func (r *rewardRepo) RedeemAllPoints(userID uint) (int, error) {
	var prior int
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var reward models.Reward
		if err := tx.Where("user_id = ?", userID).First(&reward).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrInsufficientPoints
			}
			return err
		}
		if reward.Points <= 0 {
			return errs.ErrInsufficientPoints
		}
		prior = reward.Points

		if err := tx.Model(&reward).Update("points", 0).Error; err != nil {
			return err
		}
		return tx.Create(&models.Transaction{
			UserID:      userID,
			Type:        models.TransactionRedeemed,
			Amount:      prior,
			Description: fmt.Sprintf("Redeemed all points: %d", prior),
			Date:        time.Now(),
		}).Error
	})
	if err != nil {
		return 0, err
	}
	return prior, nil
}

// RedeemCatalogReward debits the accumulator by the catalog reward's cost
// and appends the redeemed ledger row in one database transaction.
func (r *rewardRepo) RedeemCatalogReward(userID uint, reward *models.Reward) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var accumulator models.Reward
		if err := tx.Where("user_id = ?", userID).First(&accumulator).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrInsufficientPoints
			}
			return err
		}
		if accumulator.Points < reward.Points {
			return errs.ErrInsufficientPoints
		}

		if err := tx.Model(&accumulator).Update("points", gorm.Expr("points - ?", reward.Points)).Error; err != nil {
			return err
		}
		return tx.Create(&models.Transaction{
			UserID:      userID,
			Type:        models.TransactionRedeemed,
			Amount:      reward.Points,
			Description: fmt.Sprintf("Redeemed: %s", reward.Name),
			Date:        time.Now(),
		}).Error
	})
}

// GetAllRewards returns the leaderboard: total accumulated points per
// user and a level derived as floor(points/100).
func (r *rewardRepo) GetAllRewards() ([]models.RewardRow, error) {
	var rows []models.RewardRow
	err := r.DB.Model(&models.Reward{}).
		Select("rewards.user_id AS user_id, users.fullname AS user_name, SUM(rewards.points) AS points").
		Joins("LEFT JOIN users ON users.id = rewards.user_id").
		Where("rewards.user_id > 0").
		Group("rewards.user_id, users.fullname").
		Order("points DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Level = rows[i].Points / 100
		if rows[i].UserName == "" {
			rows[i].UserName = "Unknown User"
		}
	}
	return rows, nil
}
