package pushsubscription

import "time"

// Subscription is one browser push endpoint registered by the frontend
// service worker.
type Subscription struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Endpoint  string    `gorm:"uniqueIndex" json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	CreatedAt time.Time `json:"created_at"`
}
