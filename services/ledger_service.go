package services

import (
	"fmt"
	"log"

	"github.com/techagentng/thermotrack/db"
	errs "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/models"
)

// LedgerService owns the points ledger: recording transactions,
// deriving balances and serving the redemption catalog.
type LedgerService interface {
	RecordTransaction(userID uint, txType string, amount int, description string) error
	GetBalance(userID uint) (int, error)
	GetRewardTransactions(userID uint) ([]models.TransactionResponse, error)
	GetAvailableRewards(userID uint) ([]models.AvailableReward, error)
	Redeem(userID uint, rewardID uint) error
	GetLeaderboard() ([]models.RewardRow, error)
}

type ledgerService struct {
	ledgerRepo   db.LedgerRepository
	rewardRepo   db.RewardRepository
	notification NotificationService
}

func NewLedgerService(ledgerRepo db.LedgerRepository, rewardRepo db.RewardRepository, notification NotificationService) LedgerService {
	return &ledgerService{
		ledgerRepo:   ledgerRepo,
		rewardRepo:   rewardRepo,
		notification: notification,
	}
}

func (s *ledgerService) RecordTransaction(userID uint, txType string, amount int, description string) error {
	if amount <= 0 {
		return errs.New("transaction amount must be positive", 400)
	}
	tx := &models.Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
	}
	if err := s.ledgerRepo.RecordTransaction(tx); err != nil {
		return err
	}
	if tx.IsCredit() {
		s.notification.Notify(userID, fmt.Sprintf("You've earned %d points! %s", amount, description), models.NotificationTypeReward)
	}
	return nil
}

// GetBalance derives the balance from the full transaction history and
// clamps it at zero.
func (s *ledgerService) GetBalance(userID uint) (int, error) {
	transactions, err := s.ledgerRepo.GetAllTransactionsByUserID(userID)
	if err != nil {
		return 0, err
	}
	balance := 0
	for _, tx := range transactions {
		if tx.IsCredit() {
			balance += tx.Amount
		} else {
			balance -= tx.Amount
		}
	}
	if balance < 0 {
		balance = 0
	}
	return balance, nil
}

func (s *ledgerService) GetRewardTransactions(userID uint) ([]models.TransactionResponse, error) {
	transactions, err := s.ledgerRepo.GetTransactionsByUserID(userID, 10)
	if err != nil {
		return nil, err
	}
	responses := make([]models.TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		responses = append(responses, models.TransactionResponse{
			ID:          tx.ID,
			Type:        tx.Type,
			Amount:      tx.Amount,
			Description: tx.Description,
			Date:        tx.Date.Format("2006-01-02"),
		})
	}
	return responses, nil
}

// GetAvailableRewards lists the catalog plus a synthetic entry whose
// cost equals the user's current balance, so the client can offer a
// redeem-everything option.
func (s *ledgerService) GetAvailableRewards(userID uint) ([]models.AvailableReward, error) {
	balance, err := s.GetBalance(userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.rewardRepo.GetCatalogRewards()
	if err != nil {
		return nil, err
	}

	available := []models.AvailableReward{
		{
			ID:          models.AllPointsRewardID,
			Name:        "Your Points",
			Cost:        balance,
			Description: "Redeem your earned points",
			VerifyInfo:  "Points earned from reporting and collecting temperature readings",
		},
	}
	for _, r := range catalog {
		available = append(available, models.AvailableReward{
			ID:          r.ID,
			Name:        r.Name,
			Cost:        r.Points,
			Description: r.Description,
			VerifyInfo:  r.VerifyInfo,
		})
	}
	return available, nil
}

func (s *ledgerService) Redeem(userID uint, rewardID uint) error {
	if rewardID == models.AllPointsRewardID {
		redeemed, err := s.rewardRepo.RedeemAllPoints(userID)
		if err != nil {
			return err
		}
		s.notification.Notify(userID, fmt.Sprintf("You have redeemed %d points!", redeemed), models.NotificationTypeRedemption)
		if err := s.notification.SendRedemptionReceipt(userID, "Your Points", redeemed); err != nil {
			log.Printf("failed to send redemption receipt to user %d: %v", userID, err)
		}
		return nil
	}

	reward, err := s.rewardRepo.GetRewardByID(rewardID)
	if err != nil {
		return err
	}
	if reward.UserID != 0 || !reward.IsAvailable {
		return errs.ErrInvalidReward
	}

	balance, err := s.GetBalance(userID)
	if err != nil {
		return err
	}
	if balance < reward.Points {
		return errs.ErrInsufficientPoints
	}

	if err := s.rewardRepo.RedeemCatalogReward(userID, reward); err != nil {
		return err
	}
	s.notification.Notify(userID, fmt.Sprintf("You have redeemed: %s (%d points)", reward.Name, reward.Points), models.NotificationTypeRedemption)
	if err := s.notification.SendRedemptionReceipt(userID, reward.Name, reward.Points); err != nil {
		log.Printf("failed to send redemption receipt to user %d: %v", userID, err)
	}
	return nil
}

func (s *ledgerService) GetLeaderboard() ([]models.RewardRow, error) {
	return s.rewardRepo.GetAllRewards()
}
