package services

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/thermotrack/db"
	errs "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/models"
)

func newVerificationFixture(t *testing.T, gateway VisionGateway) (VerificationService, db.ReportRepository, *db.GormDB, *recordingNotifier) {
	t.Helper()
	gdb := newServiceTestDB(t)
	reportRepo := db.NewReportRepo(gdb)
	notifier := &recordingNotifier{}
	rng := rand.New(rand.NewSource(42))
	svc := NewVerificationService(reportRepo, gateway, stubWeather{temp: 22}, notifier, rng)
	return svc, reportRepo, gdb, notifier
}

func submitAndClaim(t *testing.T, repo db.ReportRepository, collectorID uint) *models.Report {
	t.Helper()
	report := &models.Report{
		UserID:      1,
		Location:    "Kampala",
		ObjectType:  "Leaves",
		Temperature: 21.5,
		Weather:     22,
	}
	require.NoError(t, repo.CreateWithSubmitCredit(report))
	claimed, err := repo.ClaimReport(report.ID, collectorID)
	require.NoError(t, err)
	return claimed
}

func TestVerifyReport(t *testing.T) {
	image := []byte("jpeg-bytes")
	passing := stubGateway{judgment: &MaterialJudgment{
		MaterialTypeMatch:      true,
		TemperatureWithinRange: true,
		Confidence:             0.92,
	}}

	t.Run("successful verification credits the collector once", func(t *testing.T) {
		svc, repo, gdb, _ := newVerificationFixture(t, passing)
		report := submitAndClaim(t, repo, 2)

		outcome, err := svc.VerifyReport(context.Background(), report.ID, 2, image, "image/jpeg")
		require.NoError(t, err)
		assert.True(t, outcome.Verified)
		assert.GreaterOrEqual(t, outcome.PointsEarned, 10)
		assert.LessOrEqual(t, outcome.PointsEarned, 59)
		assert.Equal(t, models.ReportStatusVerified, outcome.Report.Status)

		var transactions []models.Transaction
		require.NoError(t, gdb.DB.Where("user_id = ? AND type = ?", 2, models.TransactionEarnedCollect).Find(&transactions).Error)
		require.Len(t, transactions, 1)
		assert.Equal(t, outcome.PointsEarned, transactions[0].Amount)

		ok, err := repo.HasVerifiedReport(report.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("second verification is rejected", func(t *testing.T) {
		svc, repo, gdb, _ := newVerificationFixture(t, passing)
		report := submitAndClaim(t, repo, 2)

		_, err := svc.VerifyReport(context.Background(), report.ID, 2, image, "image/jpeg")
		require.NoError(t, err)
		_, err = svc.VerifyReport(context.Background(), report.ID, 2, image, "image/jpeg")
		assert.ErrorIs(t, err, errs.ErrAlreadyVerified)

		var count int64
		require.NoError(t, gdb.DB.Model(&models.Transaction{}).
			Where("user_id = ? AND type = ?", 2, models.TransactionEarnedCollect).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("failed judgment leaves the report in progress", func(t *testing.T) {
		failing := stubGateway{judgment: &MaterialJudgment{
			MaterialTypeMatch:      true,
			TemperatureWithinRange: false,
			Confidence:             0.95,
		}}
		svc, repo, gdb, notifier := newVerificationFixture(t, failing)
		report := submitAndClaim(t, repo, 2)

		outcome, err := svc.VerifyReport(context.Background(), report.ID, 2, image, "image/jpeg")
		require.NoError(t, err)
		assert.False(t, outcome.Verified)
		assert.Zero(t, outcome.PointsEarned)

		saved, err := repo.GetReportByID(report.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusInProgress, saved.Status)

		var count int64
		require.NoError(t, gdb.DB.Model(&models.Transaction{}).
			Where("user_id = ? AND type = ?", 2, models.TransactionEarnedCollect).Count(&count).Error)
		assert.Zero(t, count)
		assert.NotEmpty(t, notifier.messages)
	})

	t.Run("low confidence fails even with both matches", func(t *testing.T) {
		borderline := stubGateway{judgment: &MaterialJudgment{
			MaterialTypeMatch:      true,
			TemperatureWithinRange: true,
			Confidence:             0.7,
		}}
		svc, repo, _, _ := newVerificationFixture(t, borderline)
		report := submitAndClaim(t, repo, 2)

		outcome, err := svc.VerifyReport(context.Background(), report.ID, 2, image, "image/jpeg")
		require.NoError(t, err)
		assert.False(t, outcome.Verified)
	})

	t.Run("gateway failure is surfaced, not a failed verification", func(t *testing.T) {
		broken := stubGateway{err: errs.ErrGatewayUnavailable}
		svc, repo, _, notifier := newVerificationFixture(t, broken)
		report := submitAndClaim(t, repo, 2)

		_, err := svc.VerifyReport(context.Background(), report.ID, 2, image, "image/jpeg")
		assert.ErrorIs(t, err, errs.ErrGatewayUnavailable)
		assert.NotEmpty(t, notifier.messages)

		saved, err := repo.GetReportByID(report.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusInProgress, saved.Status)
	})

	t.Run("missing image is rejected", func(t *testing.T) {
		svc, repo, _, _ := newVerificationFixture(t, passing)
		report := submitAndClaim(t, repo, 2)
		_, err := svc.VerifyReport(context.Background(), report.ID, 2, nil, "image/jpeg")
		assert.Error(t, err)
	})

	t.Run("unclaimed report cannot be verified", func(t *testing.T) {
		svc, repo, _, _ := newVerificationFixture(t, passing)
		report := &models.Report{UserID: 1, Location: "Kampala", ObjectType: "Leaves", Temperature: 21.5}
		require.NoError(t, repo.CreateWithSubmitCredit(report))

		_, err := svc.VerifyReport(context.Background(), report.ID, 2, image, "image/jpeg")
		assert.Error(t, err)
	})

	t.Run("only the claiming collector can verify", func(t *testing.T) {
		svc, repo, _, _ := newVerificationFixture(t, passing)
		report := submitAndClaim(t, repo, 2)

		_, err := svc.VerifyReport(context.Background(), report.ID, 3, image, "image/jpeg")
		require.Error(t, err)
		e, ok := err.(*errs.Error)
		require.True(t, ok)
		assert.Equal(t, 403, e.Status)
	})
}

func TestGetVerifyTasks(t *testing.T) {
	svc, repo, _, _ := newVerificationFixture(t, stubGateway{})
	submitAndClaim(t, repo, 2)
	require.NoError(t, repo.CreateWithSubmitCredit(&models.Report{
		UserID: 1, Location: "Entebbe", ObjectType: "Soil", Temperature: 24,
	}))

	tasks, err := svc.GetVerifyTasks(10)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.NotEmpty(t, task.Location)
		assert.NotEmpty(t, task.Date)
	}
}

func TestDrawRewardRange(t *testing.T) {
	svc := &verificationService{rng: rand.New(rand.NewSource(7))}
	for i := 0; i < 1000; i++ {
		amount := svc.drawReward()
		require.GreaterOrEqual(t, amount, 10)
		require.LessOrEqual(t, amount, 59)
	}
}
