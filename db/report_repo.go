package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	errs "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/models"
	"gorm.io/gorm"
)

// SubmitPoints is the fixed credit for submitting a report.
const SubmitPoints = 10

type ReportRepository interface {
	CreateWithSubmitCredit(report *models.Report) error
	GetReportByID(id uuid.UUID) (*models.Report, error)
	GetRecentReports(limit int) ([]models.Report, error)
	GetVerifyTasks(limit int) ([]models.Report, error)
	ClaimReport(reportID uuid.UUID, collectorID uint) (*models.Report, error)
	VerifyWithCollectCredit(reportID uuid.UUID, collectorID uint, amount int, resultPayload string) error
	HasVerifiedReport(reportID uuid.UUID) (bool, error)
}

type reportRepo struct {
	DB *gorm.DB
}

func NewReportRepo(db *GormDB) ReportRepository {
	return &reportRepo{db.DB}
}

// CreateWithSubmitCredit opens the report in pending status and credits
// the submitter in a single database transaction: report row, accumulator
// projection, earned_report ledger row and the reward notification either
// all land or none do.
func (r *reportRepo) CreateWithSubmitCredit(report *models.Report) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	report.Status = models.ReportStatusPending
	report.CollectorID = nil

	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return errors.Wrap(err, "error saving report")
		}

		if err := creditPointsInTx(tx, report.UserID, SubmitPoints); err != nil {
			return err
		}
		if err := tx.Create(&models.Transaction{
			UserID:      report.UserID,
			Type:        models.TransactionEarnedReport,
			Amount:      SubmitPoints,
			Description: "Earned points for creating a report",
			Date:        time.Now(),
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Notification{
			UserID:  report.UserID,
			Message: fmt.Sprintf("You have earned %d points for creating a new report", SubmitPoints),
			Type:    models.NotificationTypeReward,
		}).Error
	})
}

func (r *reportRepo) GetReportByID(id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.DB.Where("id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) GetRecentReports(limit int) ([]models.Report, error) {
	var reports []models.Report
	err := r.DB.Order("created_at DESC").Limit(limit).Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepo) GetVerifyTasks(limit int) ([]models.Report, error) {
	var reports []models.Report
	err := r.DB.Limit(limit).Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// ClaimReport moves a report pending -> in_progress with a conditional
// update. A lost race (the report is no longer pending) affects zero rows
// and surfaces as ErrReportClaimed instead of last-writer-wins.
func (r *reportRepo) ClaimReport(reportID uuid.UUID, collectorID uint) (*models.Report, error) {
	result := r.DB.Model(&models.Report{}).
		Where("id = ? AND status = ?", reportID, models.ReportStatusPending).
		Updates(map[string]interface{}{
			"status":       models.ReportStatusInProgress,
			"collector_id": collectorID,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var report models.Report
		if err := r.DB.Where("id = ?", reportID).First(&report).Error; err != nil {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, errs.ErrReportClaimed
	}
	return r.GetReportByID(reportID)
}

// VerifyWithCollectCredit finalizes a successful collector verification:
// status CAS in_progress -> verified, the immutable audit row, the
// collector's credit and its notification, all in one transaction. The
// CAS plus the unique index on verified_reports.report_id make the credit
// single-shot even when two verifiers race.
func (r *reportRepo) VerifyWithCollectCredit(reportID uuid.UUID, collectorID uint, amount int, resultPayload string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", reportID, models.ReportStatusInProgress).
			Updates(map[string]interface{}{
				"status":              models.ReportStatusVerified,
				"verification_result": resultPayload,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.ErrAlreadyVerified
		}

		if err := tx.Create(&models.VerifiedReport{
			ReportID:         reportID,
			VerifierID:       collectorID,
			VerificationDate: time.Now(),
			Status:           models.ReportStatusVerified,
		}).Error; err != nil {
			return errors.Wrap(err, "error saving verified report")
		}

		if err := creditPointsInTx(tx, collectorID, amount); err != nil {
			return err
		}
		if err := tx.Create(&models.Transaction{
			UserID:      collectorID,
			Type:        models.TransactionEarnedCollect,
			Amount:      amount,
			Description: "Earned points for collecting a report",
			Date:        time.Now(),
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Notification{
			UserID:  collectorID,
			Message: fmt.Sprintf("Verification successful! You earned %d points", amount),
			Type:    models.NotificationTypeReward,
		}).Error
	})
}

func (r *reportRepo) HasVerifiedReport(reportID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB.Model(&models.VerifiedReport{}).Where("report_id = ?", reportID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// creditPointsInTx bumps the accumulator projection inside an open
// transaction, creating the row on first credit.
func creditPointsInTx(tx *gorm.DB, userID uint, points int) error {
	var reward models.Reward
	err := tx.Where("user_id = ?", userID).First(&reward).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			reward = models.Reward{
				UserID:      userID,
				Points:      points,
				Name:        "Temperature Report Reward",
				VerifyInfo:  "Points earned from reporting temperature",
				IsAvailable: true,
			}
			return tx.Create(&reward).Error
		}
		return err
	}
	return tx.Model(&reward).Update("points", gorm.Expr("points + ?", points)).Error
}
