package models

import "time"

type Property struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Description string  `gorm:"type:text;not null" json:"description"`
	Location    string  `gorm:"type:varchar(200);not null" json:"location"`
	Price       float64 `gorm:"type:decimal(12,2);not null" json:"price"`

	// Stored reference of the cover image. Non-empty for every persisted row.
	MainImage string `gorm:"type:varchar(255);not null" json:"main_image"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_properties_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	// Gallery holds the stored references of the property_images rows.
	// Populated by the repository, never mapped as a column.
	Gallery []string `gorm:"-" json:"gallery"`
}

// TableName specifies the table name for Property
func (Property) TableName() string {
	return "properties"
}
