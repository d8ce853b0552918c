package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditAction names a state-changing operation recorded in the audit trail.
type AuditAction string

const (
	AuditLogin            AuditAction = "LOGIN"
	AuditLogout           AuditAction = "LOGOUT"
	AuditCreateListing    AuditAction = "CREATE_LISTING"
	AuditUpdateListing    AuditAction = "UPDATE_LISTING"
	AuditDeleteListing    AuditAction = "DELETE_LISTING"
	AuditBulkUpdateStatus AuditAction = "BULK_UPDATE_STATUS"
	AuditImportListings   AuditAction = "IMPORT_LISTINGS"
	AuditUpdateLeadStatus AuditAction = "UPDATE_LEAD_STATUS"
	AuditDeleteLead       AuditAction = "DELETE_LEAD"
)

var AuditActions = []AuditAction{
	AuditLogin,
	AuditLogout,
	AuditCreateListing,
	AuditUpdateListing,
	AuditDeleteListing,
	AuditBulkUpdateStatus,
	AuditImportListings,
	AuditUpdateLeadStatus,
	AuditDeleteLead,
}

// AuditLog is an append-only record of who did what to which subject.
// SubjectID is a weak reference to a listing or lead and is never joined.
type AuditLog struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	Actor     string         `json:"actor" gorm:"index"`
	Action    AuditAction    `json:"action" gorm:"index"`
	SubjectID *string        `json:"subject_id,omitempty" gorm:"index;size:36"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return
}

// BeforeUpdate blocks in-place edits of audit rows.
func (a *AuditLog) BeforeUpdate(tx *gorm.DB) (err error) {
	return ErrAuditImmutable
}

// BeforeDelete blocks removal of audit rows.
func (a *AuditLog) BeforeDelete(tx *gorm.DB) (err error) {
	return ErrAuditImmutable
}

func IsValidAuditAction(a AuditAction) bool {
	for _, v := range AuditActions {
		if a == v {
			return true
		}
	}
	return false
}
