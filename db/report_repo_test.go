package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *GormDB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))
	return &GormDB{DB: gdb}
}

func newTestReport(userID uint) *models.Report {
	return &models.Report{
		UserID:      userID,
		Location:    "Kampala",
		ObjectType:  "Leaves",
		Temperature: 21.5,
		Weather:     22.0,
	}
}

func TestCreateWithSubmitCredit(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewReportRepo(gdb)

	report := newTestReport(1)
	require.NoError(t, repo.CreateWithSubmitCredit(report))

	t.Run("report opens pending with no collector", func(t *testing.T) {
		saved, err := repo.GetReportByID(report.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusPending, saved.Status)
		assert.Nil(t, saved.CollectorID)
	})

	t.Run("exactly one submission credit is written", func(t *testing.T) {
		var transactions []models.Transaction
		require.NoError(t, gdb.DB.Where("user_id = ?", 1).Find(&transactions).Error)
		require.Len(t, transactions, 1)
		assert.Equal(t, models.TransactionEarnedReport, transactions[0].Type)
		assert.Equal(t, SubmitPoints, transactions[0].Amount)
	})

	t.Run("accumulator matches the credit", func(t *testing.T) {
		var reward models.Reward
		require.NoError(t, gdb.DB.Where("user_id = ?", 1).First(&reward).Error)
		assert.Equal(t, SubmitPoints, reward.Points)
	})

	t.Run("submitter is notified", func(t *testing.T) {
		var notifications []models.Notification
		require.NoError(t, gdb.DB.Where("user_id = ?", 1).Find(&notifications).Error)
		require.Len(t, notifications, 1)
		assert.Equal(t, models.NotificationTypeReward, notifications[0].Type)
	})
}

func TestClaimReport(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewReportRepo(gdb)

	report := newTestReport(1)
	require.NoError(t, repo.CreateWithSubmitCredit(report))

	t.Run("claim moves pending to in_progress", func(t *testing.T) {
		claimed, err := repo.ClaimReport(report.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusInProgress, claimed.Status)
		require.NotNil(t, claimed.CollectorID)
		assert.Equal(t, uint(2), *claimed.CollectorID)
	})

	t.Run("second claim loses the race", func(t *testing.T) {
		_, err := repo.ClaimReport(report.ID, 3)
		assert.ErrorIs(t, err, errs.ErrReportClaimed)

		saved, err := repo.GetReportByID(report.ID)
		require.NoError(t, err)
		assert.Equal(t, uint(2), *saved.CollectorID)
	})

	t.Run("claiming an unknown report", func(t *testing.T) {
		_, err := repo.ClaimReport(uuid.New(), 2)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestVerifyWithCollectCredit(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewReportRepo(gdb)

	report := newTestReport(1)
	require.NoError(t, repo.CreateWithSubmitCredit(report))
	_, err := repo.ClaimReport(report.ID, 2)
	require.NoError(t, err)

	require.NoError(t, repo.VerifyWithCollectCredit(report.ID, 2, 35, `{"materialTypeMatch":true}`))

	t.Run("report is verified with the judgment attached", func(t *testing.T) {
		saved, err := repo.GetReportByID(report.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusVerified, saved.Status)
		assert.Contains(t, saved.VerificationResult, "materialTypeMatch")
	})

	t.Run("audit row exists", func(t *testing.T) {
		ok, err := repo.HasVerifiedReport(report.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("collector credited once", func(t *testing.T) {
		var transactions []models.Transaction
		require.NoError(t, gdb.DB.Where("user_id = ? AND type = ?", 2, models.TransactionEarnedCollect).Find(&transactions).Error)
		require.Len(t, transactions, 1)
		assert.Equal(t, 35, transactions[0].Amount)
	})

	t.Run("second verification is rejected", func(t *testing.T) {
		err := repo.VerifyWithCollectCredit(report.ID, 3, 40, "{}")
		assert.ErrorIs(t, err, errs.ErrAlreadyVerified)

		var count int64
		require.NoError(t, gdb.DB.Model(&models.Transaction{}).
			Where("type = ?", models.TransactionEarnedCollect).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}
