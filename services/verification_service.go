package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/techagentng/thermotrack/db"
	errs "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/models"
)

// VerifyOutcome is what a collector sees after submitting a verification
// image.
type VerifyOutcome struct {
	Verified     bool              `json:"verified"`
	PointsEarned int               `json:"points_earned"`
	Judgment     *MaterialJudgment `json:"judgment,omitempty"`
	Report       *models.Report    `json:"report,omitempty"`
}

// VerificationService runs the collector side of the report lifecycle:
// listing tasks, claiming them and judging verification images.
type VerificationService interface {
	GetVerifyTasks(limit int) ([]models.VerifyTask, error)
	ClaimReport(reportID uuid.UUID, collectorID uint) (*models.Report, error)
	VerifyReport(ctx context.Context, reportID uuid.UUID, collectorID uint, image []byte, mimeType string) (*VerifyOutcome, error)
}

type verificationService struct {
	reportRepo   db.ReportRepository
	gateway      VisionGateway
	weather      WeatherService
	notification NotificationService

	mu  sync.Mutex
	rng *rand.Rand
}

// NewVerificationService wires the collector workflow. The random source
// drawing the verification reward is injected so tests can pin it.
func NewVerificationService(reportRepo db.ReportRepository, gateway VisionGateway, weather WeatherService, notification NotificationService, rng *rand.Rand) VerificationService {
	return &verificationService{
		reportRepo:   reportRepo,
		gateway:      gateway,
		weather:      weather,
		notification: notification,
		rng:          rng,
	}
}

func (s *verificationService) GetVerifyTasks(limit int) ([]models.VerifyTask, error) {
	if limit <= 0 {
		limit = 50
	}
	reports, err := s.reportRepo.GetVerifyTasks(limit)
	if err != nil {
		return nil, err
	}
	tasks := make([]models.VerifyTask, 0, len(reports))
	for _, r := range reports {
		tasks = append(tasks, models.VerifyTask{
			ID:          r.ID,
			Location:    r.Location,
			ObjectType:  r.ObjectType,
			Temperature: r.Temperature,
			Weather:     r.Weather,
			Status:      r.Status,
			Date:        r.CreatedAt.Format("2006-01-02"),
			CollectorID: r.CollectorID,
		})
	}
	return tasks, nil
}

func (s *verificationService) ClaimReport(reportID uuid.UUID, collectorID uint) (*models.Report, error) {
	return s.reportRepo.ClaimReport(reportID, collectorID)
}

// VerifyReport judges a collector's verification image against the
// report. A successful judgment moves the report to verified and credits
// the collector exactly once; a failed judgment leaves the report
// in_progress so it can be retried.
func (s *verificationService) VerifyReport(ctx context.Context, reportID uuid.UUID, collectorID uint, image []byte, mimeType string) (*VerifyOutcome, error) {
	if len(image) == 0 {
		return nil, errs.New("verification image is required", 400)
	}
	if collectorID == 0 {
		return nil, errs.New("collector is required", 400)
	}

	report, err := s.reportRepo.GetReportByID(reportID)
	if err != nil {
		return nil, err
	}
	if report.Status == models.ReportStatusVerified {
		return nil, errs.ErrAlreadyVerified
	}
	already, err := s.reportRepo.HasVerifiedReport(reportID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, errs.ErrAlreadyVerified
	}
	if report.Status != models.ReportStatusInProgress {
		return nil, errs.New("report must be claimed before verification", 400)
	}
	if report.CollectorID == nil || *report.CollectorID != collectorID {
		return nil, errs.New("report is claimed by another collector", 403)
	}

	weather := report.Weather
	if current, werr := s.weather.CurrentTemperature(ctx, report.Location); werr == nil {
		weather = current
	} else {
		log.Printf("weather lookup failed for %q, using reported value: %v", report.Location, werr)
	}

	judgment, err := s.gateway.VerifyMaterial(ctx, image, mimeType, report.ObjectType, weather)
	if err != nil {
		s.notification.Notify(collectorID, "Verification could not be completed, please try again", models.NotificationTypeVerification)
		return nil, err
	}

	verified := judgment.MaterialTypeMatch && judgment.TemperatureWithinRange && judgment.Confidence > 0.7
	if !verified {
		s.notification.Notify(collectorID, "Verification failed: the image did not match the report", models.NotificationTypeVerification)
		return &VerifyOutcome{Verified: false, Judgment: judgment, Report: report}, nil
	}

	amount := s.drawReward()
	payload, err := json.Marshal(judgment)
	if err != nil {
		return nil, err
	}
	if err := s.reportRepo.VerifyWithCollectCredit(reportID, collectorID, amount, string(payload)); err != nil {
		return nil, err
	}

	s.notification.Push(collectorID, "Verification successful", fmt.Sprintf("You earned %d points", amount))

	updated, err := s.reportRepo.GetReportByID(reportID)
	if err != nil {
		return nil, err
	}
	return &VerifyOutcome{Verified: true, PointsEarned: amount, Judgment: judgment, Report: updated}, nil
}

// drawReward picks a reward between 10 and 59 points inclusive.
func (s *verificationService) drawReward() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(50) + 10
}
