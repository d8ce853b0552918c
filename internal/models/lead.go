package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LeadStatus is a step in the sales pipeline.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusQuoted    LeadStatus = "quoted"
	LeadStatusApproved  LeadStatus = "approved"
	LeadStatusOrdered   LeadStatus = "ordered"
	LeadStatusDelivered LeadStatus = "delivered"
)

// LeadStatuses lists the pipeline in order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusQualified,
	LeadStatusQuoted,
	LeadStatusApproved,
	LeadStatusOrdered,
	LeadStatusDelivered,
}

// LeadSource names the public form that produced a lead.
type LeadSource string

const (
	LeadSourceContact       LeadSource = "contact"
	LeadSourceSourcing      LeadSource = "sourcing"
	LeadSourceVehicleDetail LeadSource = "vehicle_detail"
)

var LeadSources = []LeadSource{LeadSourceContact, LeadSourceSourcing, LeadSourceVehicleDetail}

// Lead is a customer inquiry.
type Lead struct {
	ID              string            `json:"id" gorm:"primaryKey;size:36"`
	VehicleInterest string            `json:"vehicle_interest"`
	Budget          string            `json:"budget"`
	Contact         string            `json:"contact"`
	Source          LeadSource        `json:"source" gorm:"index"`
	ListingID       *string           `json:"listing_id,omitempty" gorm:"size:36"` // weak reference, no FK
	Extra           datatypes.JSONMap `json:"extra,omitempty"`
	Status          LeadStatus        `json:"status" gorm:"index;default:'new'"`
	CreatedAt       time.Time         `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time         `json:"updated_at"`

	VehicleInterestFold string `json:"-"`
	ContactFold         string `json:"-"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = LeadStatusNew
	}
	return
}

func (l *Lead) BeforeSave(tx *gorm.DB) (err error) {
	l.VehicleInterestFold = FoldText(l.VehicleInterest)
	l.ContactFold = FoldText(l.Contact)
	return
}

// IsValidLeadStatus reports whether s is one of the pipeline statuses.
func IsValidLeadStatus(s LeadStatus) bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal is informational only; delivered leads stay editable.
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusDelivered
}

func IsValidLeadSource(s LeadSource) bool {
	for _, v := range LeadSources {
		if s == v {
			return true
		}
	}
	return false
}
