package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/models"
)

func TestRedeemAllPoints(t *testing.T) {
	gdb := newTestDB(t)
	rewardRepo := NewRewardRepo(gdb)
	reportRepo := NewReportRepo(gdb)

	// Two submissions give the user 20 points.
	require.NoError(t, reportRepo.CreateWithSubmitCredit(newTestReport(1)))
	require.NoError(t, reportRepo.CreateWithSubmitCredit(newTestReport(1)))

	t.Run("zeroes the accumulator and logs the prior total", func(t *testing.T) {
		redeemed, err := rewardRepo.RedeemAllPoints(1)
		require.NoError(t, err)
		assert.Equal(t, 2*SubmitPoints, redeemed)

		var reward models.Reward
		require.NoError(t, gdb.DB.Where("user_id = ?", 1).First(&reward).Error)
		assert.Zero(t, reward.Points)

		var tx models.Transaction
		require.NoError(t, gdb.DB.Where("user_id = ? AND type = ?", 1, models.TransactionRedeemed).First(&tx).Error)
		assert.Equal(t, 2*SubmitPoints, tx.Amount)
	})

	t.Run("empty accumulator cannot redeem", func(t *testing.T) {
		_, err := rewardRepo.RedeemAllPoints(1)
		assert.ErrorIs(t, err, errs.ErrInsufficientPoints)
	})

	t.Run("user with no history cannot redeem", func(t *testing.T) {
		_, err := rewardRepo.RedeemAllPoints(99)
		assert.ErrorIs(t, err, errs.ErrInsufficientPoints)
	})
}

func TestRedeemCatalogReward(t *testing.T) {
	gdb := newTestDB(t)
	rewardRepo := NewRewardRepo(gdb)
	reportRepo := NewReportRepo(gdb)

	catalog, err := rewardRepo.GetCatalogRewards()
	require.NoError(t, err)
	require.NotEmpty(t, catalog)
	cheapest := catalog[0]
	for _, r := range catalog {
		if r.Points < cheapest.Points {
			cheapest = r
		}
	}

	for i := 0; i < cheapest.Points/SubmitPoints; i++ {
		require.NoError(t, reportRepo.CreateWithSubmitCredit(newTestReport(1)))
	}

	t.Run("debits the cost and appends a redeemed row", func(t *testing.T) {
		require.NoError(t, rewardRepo.RedeemCatalogReward(1, &cheapest))

		var reward models.Reward
		require.NoError(t, gdb.DB.Where("user_id = ?", 1).First(&reward).Error)
		assert.Zero(t, reward.Points)

		var tx models.Transaction
		require.NoError(t, gdb.DB.Where("user_id = ? AND type = ?", 1, models.TransactionRedeemed).First(&tx).Error)
		assert.Equal(t, cheapest.Points, tx.Amount)
		assert.Contains(t, tx.Description, cheapest.Name)
	})

	t.Run("insufficient balance is rejected", func(t *testing.T) {
		err := rewardRepo.RedeemCatalogReward(1, &cheapest)
		assert.ErrorIs(t, err, errs.ErrInsufficientPoints)
	})
}

func TestGetAllRewards(t *testing.T) {
	gdb := newTestDB(t)
	rewardRepo := NewRewardRepo(gdb)
	reportRepo := NewReportRepo(gdb)

	user := &models.User{Fullname: "Asha Odeke", Email: "asha@example.com"}
	require.NoError(t, gdb.DB.Create(user).Error)

	for i := 0; i < 12; i++ {
		require.NoError(t, reportRepo.CreateWithSubmitCredit(newTestReport(user.ID)))
	}

	rows, err := rewardRepo.GetAllRewards()
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	top := rows[0]
	assert.Equal(t, user.ID, top.UserID)
	assert.Equal(t, "Asha Odeke", top.UserName)
	assert.Equal(t, 120, top.Points)
	assert.Equal(t, 1, top.Level)
}
