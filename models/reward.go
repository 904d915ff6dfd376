package models

// Reward is a per-user points accumulator plus the redeemable catalog.
// Rows with a zero UserID are catalog entries any user can redeem; the
// Points column on a catalog row is the redemption cost. The accumulator
// row is a cached projection of the transaction ledger and is only ever
// written in the same database transaction as a ledger row.
type Reward struct {
	Model
	UserID      uint   `json:"user_id" gorm:"index"`
	Points      int    `json:"points" gorm:"default:0"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	VerifyInfo  string `json:"verify_info"`
	IsAvailable bool   `json:"is_available" gorm:"default:true"`
}

// AllPointsRewardID is the sentinel reward id that redeems a user's
// entire accumulated balance.
const AllPointsRewardID uint = 0

// AvailableReward is the catalog view returned to clients, with the
// synthetic "Your Points" entry at id 0.
type AvailableReward struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Cost        int    `json:"cost"`
	Description string `json:"description"`
	VerifyInfo  string `json:"verify_info"`
}

// RewardRow is one leaderboard entry: total points and a level derived
// from them.
type RewardRow struct {
	UserID   uint   `json:"user_id"`
	UserName string `json:"user_name"`
	Points   int    `json:"points"`
	Level    int    `json:"level"`
}
