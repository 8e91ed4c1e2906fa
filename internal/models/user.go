package models

import "time"

// Role constants
const (
	RoleViewer = 1
	RoleAdmin  = 10
)

// Status constants
const (
	UserStatusEnabled  = 1
	UserStatusDisabled = 2
)

// User represents an administrative account.
// Password holds a bcrypt hash and is never serialized.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"type:varchar(150);not null;uniqueIndex" json:"username"`
	Password string `gorm:"type:varchar(100);not null" json:"-"`
	Email    string `gorm:"type:varchar(255);index" json:"email,omitempty"`
	Role     int    `gorm:"type:int;not null;default:1" json:"role"`
	Status   int    `gorm:"type:int;not null;default:1" json:"status"`

	// Failed-login lockout state. Kept on the row so clearing cookies
	// cannot reset the counter.
	FailedAttempts     int        `gorm:"type:int;not null;default:0" json:"-"`
	BlockedUntil       *time.Time `json:"-"`
	PermanentlyBlocked bool       `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
