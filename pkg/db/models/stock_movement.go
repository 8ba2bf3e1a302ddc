package models

import (
	"time"

	"github.com/angelmondragon/bufferstock-backend/pkg/enums"
	"github.com/google/uuid"
)

// StockMovement is an immutable ledger row. Rows are only ever inserted;
// exactly one of InQty/OutQty is non-zero and Balance always equals
// PreviousQty + InQty - OutQty.
type StockMovement struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RecordedAt  time.Time          `gorm:"column:recorded_at;not null;index" json:"recorded_at"`
	PartCode    string             `gorm:"column:part_code;not null;index" json:"part_code"`
	Type        enums.MovementType `gorm:"column:type;not null" json:"type"`
	PreviousQty int                `gorm:"column:previous_qty;not null" json:"previous_qty"`
	InQty       int                `gorm:"column:in_qty;not null;default:0" json:"in_qty"`
	OutQty      int                `gorm:"column:out_qty;not null;default:0" json:"out_qty"`
	Balance     int                `gorm:"column:balance;not null" json:"balance"`

	Applicant      string `gorm:"column:applicant" json:"applicant,omitempty"`
	HandoverPerson string `gorm:"column:handover_person" json:"handover_person,omitempty"`
	Operator       string `gorm:"column:operator" json:"operator,omitempty"`
	Floor          string `gorm:"column:floor" json:"floor,omitempty"`
	DeliveryTAT    string `gorm:"column:delivery_tat" json:"delivery_tat,omitempty"`
	Remark         string `gorm:"column:remark" json:"remark,omitempty"`
	EnteredBy      string `gorm:"column:entered_by;not null" json:"entered_by"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName pins the table name used by migrations.
func (StockMovement) TableName() string {
	return "stock_movements"
}

// Delta returns the signed quantity change this movement represents.
func (m StockMovement) Delta() int {
	return m.InQty - m.OutQty
}
