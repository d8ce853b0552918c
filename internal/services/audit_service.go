package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Wikid82/autosource/backend/internal/catalog"
	"github.com/Wikid82/autosource/backend/internal/metrics"
	"github.com/Wikid82/autosource/backend/internal/models"
)

// AuditService appends entries to the audit trail. It exposes no update or
// delete path.
type AuditService struct {
	db     *gorm.DB
	limits catalog.Limits
}

// NewAuditService returns an AuditService using the provided DB
func NewAuditService(db *gorm.DB, limits catalog.Limits) *AuditService {
	return &AuditService{db: db, limits: limits}
}

// Record writes one entry using tx, which is normally the transaction that
// performed the mutation so both commit or roll back together.
func (s *AuditService) Record(tx *gorm.DB, actor string, action models.AuditAction, subjectID string, payload interface{}) (*models.AuditLog, error) {
	if actor == "" {
		return nil, &UnauthorizedError{}
	}
	if !models.IsValidAuditAction(action) {
		return nil, fmt.Errorf("unknown audit action %q", action)
	}

	raw := []byte("{}")
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal audit payload: %w", err)
		}
		raw = b
	}

	entry := &models.AuditLog{
		Actor:   actor,
		Action:  action,
		Payload: datatypes.JSON(raw),
	}
	if subjectID != "" {
		entry.SubjectID = &subjectID
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("write audit entry: %w", err)
	}
	return entry, nil
}

// Committed counts entries once the transaction that wrote them has
// committed. nil entries are skipped.
func (s *AuditService) Committed(entries ...*models.AuditLog) {
	for _, e := range entries {
		if e != nil {
			metrics.IncAuditEntry(string(e.Action))
		}
	}
}

// Log records an entry that has no accompanying data mutation (login, logout).
func (s *AuditService) Log(ctx context.Context, actor string, action models.AuditAction, subjectID string, payload interface{}) error {
	entry, err := s.Record(s.db.WithContext(ctx), actor, action, subjectID, payload)
	if err != nil {
		return operationFailed("write audit entry", err)
	}
	s.Committed(entry)
	return nil
}

// List returns the trail newest first, optionally filtered by actor, action
// or subject. Unknown filter values are ignored like every other list screen.
func (s *AuditService) List(ctx context.Context, raw map[string]string, actor string) (*catalog.Result[models.AuditLog], error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	filterActor := strings.TrimSpace(raw["actor"])
	filterSubject := strings.TrimSpace(raw["subject"])
	filterAction := models.AuditAction(strings.ToUpper(strings.TrimSpace(raw["action"])))
	if !models.IsValidAuditAction(filterAction) {
		filterAction = ""
	}

	where := func(db *gorm.DB) *gorm.DB {
		if filterActor != "" {
			db = db.Where("actor = ?", filterActor)
		}
		if filterAction != "" {
			db = db.Where("action = ?", filterAction)
		}
		if filterSubject != "" {
			db = db.Where("subject_id = ?", filterSubject)
		}
		return db
	}
	sort := catalog.Sort{Field: "created_at", Column: "created_at", Desc: true}
	win := catalog.ResolveWindow(raw, catalog.ScopeAdmin, s.limits)

	res, err := catalog.Run[models.AuditLog](ctx, s.db, where, sort, win)
	if err != nil {
		return nil, operationFailed("list audit entries", err)
	}
	return res, nil
}
