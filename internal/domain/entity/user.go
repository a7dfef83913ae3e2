package entity

import "time"

type User struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}
