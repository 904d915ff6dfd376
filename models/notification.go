package models

// Notification types.
const (
	NotificationTypeReward       = "reward"
	NotificationTypeReport       = "report"
	NotificationTypeVerification = "verification"
	NotificationTypeRedemption   = "redemption"
)

// Notification represents notifications sent to users. Only the IsRead
// flag is ever mutated.
type Notification struct {
	Model
	UserID  uint   `json:"user_id" gorm:"not null;index"`
	Message string `json:"message" gorm:"not null"`
	Type    string `json:"type"`
	IsRead  bool   `json:"is_read" gorm:"default:false"`
}
