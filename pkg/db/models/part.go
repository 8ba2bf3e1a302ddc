package models

import "time"

// Part is a catalog entry holding the authoritative on-hand quantity.
// Quantity is the only field the stock coordinator mutates; the remaining
// columns come from the externally managed catalog.
type Part struct {
	PartCode    string    `gorm:"column:part_code;primaryKey" json:"part_code"`
	Description string    `gorm:"column:description;not null" json:"description"`
	Base        string    `gorm:"column:base" json:"base"`
	Type        string    `gorm:"column:type" json:"type"`
	Quantity    int       `gorm:"column:quantity;not null;default:0" json:"quantity"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName pins the table name used by migrations.
func (Part) TableName() string {
	return "parts"
}
