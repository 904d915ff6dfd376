package services

import (
	"context"
	"log"

	"firebase.google.com/go/messaging"
	"github.com/techagentng/thermotrack/db"
	"github.com/techagentng/thermotrack/mailingservices"
	"github.com/techagentng/thermotrack/models"
)

// NotificationService persists in-app notifications and fans them out to
// push and email sinks. Sink failures are logged and swallowed; they
// never fail the operation that triggered them.
type NotificationService interface {
	Notify(userID uint, message string, notificationType string)
	Push(userID uint, title string, body string)
	SendRedemptionReceipt(userID uint, rewardName string, points int) error
	GetUnread(userID uint) ([]models.Notification, error)
	MarkRead(notificationID uint) error
	RegisterDeviceToken(userID uint, token string) error
}

type notificationService struct {
	notificationRepo db.NotificationRepository
	authRepo         db.AuthRepository
	fcm              *messaging.Client
	mail             *mailingservices.Mailgun
}

func NewNotificationService(notificationRepo db.NotificationRepository, authRepo db.AuthRepository, fcm *messaging.Client, mail *mailingservices.Mailgun) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		authRepo:         authRepo,
		fcm:              fcm,
		mail:             mail,
	}
}

func (s *notificationService) Notify(userID uint, message string, notificationType string) {
	err := s.notificationRepo.Create(&models.Notification{
		UserID:  userID,
		Message: message,
		Type:    notificationType,
	})
	if err != nil {
		log.Printf("failed to save notification for user %d: %v", userID, err)
	}
}

// Push sends a device push to every registered token the user has.
func (s *notificationService) Push(userID uint, title string, body string) {
	if s.fcm == nil {
		return
	}
	tokens, err := s.authRepo.GetDeviceTokens(userID)
	if err != nil {
		log.Printf("failed to load device tokens for user %d: %v", userID, err)
		return
	}
	for _, t := range tokens {
		_, err := s.fcm.Send(context.Background(), &messaging.Message{
			Token: t.Token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
		})
		if err != nil {
			log.Printf("failed to push to user %d: %v", userID, err)
		}
	}
}

func (s *notificationService) SendRedemptionReceipt(userID uint, rewardName string, points int) error {
	if s.mail == nil || s.mail.Client == nil {
		return nil
	}
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		return err
	}
	return s.mail.SendRedemptionReceipt(user.Email, rewardName, points)
}

func (s *notificationService) GetUnread(userID uint) ([]models.Notification, error) {
	return s.notificationRepo.GetUnreadByUserID(userID)
}

func (s *notificationService) MarkRead(notificationID uint) error {
	return s.notificationRepo.MarkAsRead(notificationID)
}

func (s *notificationService) RegisterDeviceToken(userID uint, token string) error {
	return s.authRepo.SaveDeviceToken(&models.DeviceToken{UserID: userID, Token: token})
}
