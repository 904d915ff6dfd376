package db

import (
	"github.com/techagentng/thermotrack/models"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(notification *models.Notification) error
	GetUnreadByUserID(userID uint) ([]models.Notification, error)
	MarkAsRead(notificationID uint) error
}

type notificationRepo struct {
	DB *gorm.DB
}

func NewNotificationRepo(db *GormDB) NotificationRepository {
	return &notificationRepo{db.DB}
}

func (n *notificationRepo) Create(notification *models.Notification) error {
	return n.DB.Create(notification).Error
}

func (n *notificationRepo) GetUnreadByUserID(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := n.DB.Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkAsRead flips the only mutable field on a notification.
func (n *notificationRepo) MarkAsRead(notificationID uint) error {
	return n.DB.Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Update("is_read", true).Error
}
