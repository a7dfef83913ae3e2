package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Socials holds the optional social links of a club.
type Socials struct {
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Strava    string `json:"strava,omitempty"`
	Website   string `json:"website,omitempty"`
}

type Club struct {
	ID                     string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CreatedAt              time.Time      `json:"createdAt"`
	UpdatedAt              time.Time      `json:"updatedAt"`
	Name                   string         `gorm:"not null" json:"name"`
	Slug                   string         `gorm:"index" json:"slug"`
	City                   string         `gorm:"index" json:"city"`
	Area                   string         `json:"area"`
	Address                string         `json:"address,omitempty"`
	Distance               string         `json:"distance"`
	Pace                   string         `json:"pace,omitempty"`
	RunDays                pq.StringArray `gorm:"type:text[]" json:"runDays"`
	StartTime              string         `json:"startTime,omitempty"`
	Description            string         `json:"description"`
	Email                  string         `json:"email"`
	LogoURL                string         `json:"logoUrl,omitempty"`
	Socials                Socials        `gorm:"embedded;embeddedPrefix:social_" json:"socials"`
	OwnerID                string         `gorm:"type:uuid;index;not null" json:"ownerId"`
	ApprovedForPublication bool           `gorm:"not null;default:false" json:"approvedForPublication"`
}

func (Club) TableName() string {
	return "runclubs"
}

// IsOwnedBy reports whether userID owns the club.
func (c *Club) IsOwnedBy(userID string) bool {
	return userID != "" && c.OwnerID == userID
}

// Link generates the public page link of the club.
//
// The link is in the format <baseURL>/clubs/<slug>
func (c *Club) Link(baseURL string) string {
	return fmt.Sprintf("%s/clubs/%s", strings.TrimRight(baseURL, "/"), c.Slug)
}
