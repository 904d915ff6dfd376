package services

import (
	"github.com/techagentng/thermotrack/db"
	errs "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/models"
)

// ReportService handles submission and listing of temperature reports.
type ReportService interface {
	SubmitReport(userID uint, req *models.SubmitReportRequest) (*models.Report, error)
	GetRecentReports(limit int) ([]models.Report, error)
}

type reportService struct {
	reportRepo   db.ReportRepository
	notification NotificationService
}

func NewReportService(reportRepo db.ReportRepository, notification NotificationService) ReportService {
	return &reportService{
		reportRepo:   reportRepo,
		notification: notification,
	}
}

func (s *reportService) SubmitReport(userID uint, req *models.SubmitReportRequest) (*models.Report, error) {
	if req.Location == "" || req.ObjectType == "" {
		return nil, errs.New("location and object type are required", 400)
	}

	report := &models.Report{
		UserID:             userID,
		Location:           req.Location,
		ObjectType:         req.ObjectType,
		Temperature:        req.Temperature,
		Weather:            req.Weather,
		ImageURL:           req.ImageURL,
		Notes:              req.Notes,
		VerificationResult: req.VerificationResult,
	}
	if err := s.reportRepo.CreateWithSubmitCredit(report); err != nil {
		return nil, err
	}

	s.notification.Push(userID, "Report submitted", "Your temperature report is awaiting verification")
	return report, nil
}

func (s *reportService) GetRecentReports(limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.reportRepo.GetRecentReports(limit)
}
