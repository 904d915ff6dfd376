package db

import (
	"time"

	"github.com/pkg/errors"
	"github.com/techagentng/thermotrack/models"
	"gorm.io/gorm"
)

type LedgerRepository interface {
	RecordTransaction(tx *models.Transaction) error
	GetTransactionsByUserID(userID uint, limit int) ([]models.Transaction, error)
	GetAllTransactionsByUserID(userID uint) ([]models.Transaction, error)
}

type ledgerRepo struct {
	DB *gorm.DB
}

func NewLedgerRepo(db *GormDB) LedgerRepository {
	return &ledgerRepo{db.DB}
}

// RecordTransaction appends one row to the ledger. Rows are immutable;
// there is deliberately no update or delete method on this repository.
func (l *ledgerRepo) RecordTransaction(tx *models.Transaction) error {
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}
	if err := l.DB.Create(tx).Error; err != nil {
		return errors.Wrap(err, "error recording transaction")
	}
	return nil
}

func (l *ledgerRepo) GetTransactionsByUserID(userID uint, limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := l.DB.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, errors.Wrap(err, "error fetching transactions")
	}
	return transactions, nil
}

func (l *ledgerRepo) GetAllTransactionsByUserID(userID uint) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := l.DB.Where("user_id = ?", userID).Find(&transactions).Error
	if err != nil {
		return nil, errors.Wrap(err, "error fetching transactions")
	}
	return transactions, nil
}
