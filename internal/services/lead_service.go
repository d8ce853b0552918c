package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Wikid82/autosource/backend/internal/catalog"
	"github.com/Wikid82/autosource/backend/internal/logger"
	"github.com/Wikid82/autosource/backend/internal/metrics"
	"github.com/Wikid82/autosource/backend/internal/models"
)

// LeadNotifier is told about every newly captured lead.
type LeadNotifier interface {
	NotifyNewLead(ctx context.Context, lead *models.Lead) error
}

// LeadInput is what the public contact, sourcing and vehicle detail forms submit.
type LeadInput struct {
	VehicleInterest string                 `json:"vehicle_interest"`
	Budget          string                 `json:"budget"`
	Contact         string                 `json:"contact"`
	Source          string                 `json:"source"`
	ListingID       string                 `json:"listing_id"`
	Extra           map[string]interface{} `json:"extra"`
}

// DeletedLead describes a lead that was removed so callers can confirm what
// went away.
type DeletedLead struct {
	ID              string            `json:"id"`
	VehicleInterest string            `json:"vehicle_interest"`
	Contact         string            `json:"contact"`
	Status          models.LeadStatus `json:"status"`
}

// LeadStats counts leads per pipeline status. Every status is present.
type LeadStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

type LeadService struct {
	db       *gorm.DB
	audit    *AuditService
	limits   catalog.Limits
	notifier LeadNotifier
}

func NewLeadService(db *gorm.DB, audit *AuditService, limits catalog.Limits) *LeadService {
	return &LeadService{db: db, audit: audit, limits: limits}
}

// SetNotifier installs the new lead notifier. nil disables notifications.
func (s *LeadService) SetNotifier(n LeadNotifier) {
	s.notifier = n
}

// Create captures a lead from a public form. The status is always new.
func (s *LeadService) Create(ctx context.Context, in LeadInput) (*models.Lead, error) {
	lead := &models.Lead{
		VehicleInterest: strings.TrimSpace(in.VehicleInterest),
		Budget:          strings.TrimSpace(in.Budget),
		Contact:         strings.TrimSpace(in.Contact),
		Status:          models.LeadStatusNew,
		Source:          models.LeadSourceContact,
	}
	if lead.Contact == "" {
		return nil, newValidationError("contact", "is required")
	}
	if src := strings.ToLower(strings.TrimSpace(in.Source)); src != "" {
		lead.Source = models.LeadSource(src)
		if !models.IsValidLeadSource(lead.Source) {
			return nil, newValidationError("source", "invalid source value")
		}
	}
	if len(in.Extra) > 0 {
		lead.Extra = datatypes.JSONMap(in.Extra)
	}

	if id := strings.TrimSpace(in.ListingID); id != "" {
		lead.ListingID = &id
		if lead.VehicleInterest == "" {
			var l models.Listing
			err := s.db.WithContext(ctx).Select("id", "title", "brand", "model").First(&l, "id = ?", id).Error
			switch {
			case err == nil:
				lead.VehicleInterest = l.DisplayTitle()
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return nil, operationFailed("create lead", err)
			}
		}
	}
	if lead.VehicleInterest == "" {
		return nil, newValidationError("vehicle_interest", "is required")
	}

	if err := s.db.WithContext(ctx).Create(lead).Error; err != nil {
		return nil, operationFailed("create lead", err)
	}
	metrics.IncLeadCreated()

	if s.notifier != nil {
		if err := s.notifier.NotifyNewLead(ctx, lead); err != nil {
			logger.Log().WithError(err).WithField("lead_id", lead.ID).Warn("new lead notification failed")
		}
	}
	return lead, nil
}

// Get returns one lead for the admin detail view.
func (s *LeadService) Get(ctx context.Context, id string, actor string) (*models.Lead, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFound("lead", id)
		}
		return nil, operationFailed("get lead", err)
	}
	return &lead, nil
}

// Query lists leads for the admin pipeline screen.
func (s *LeadService) Query(ctx context.Context, raw map[string]string, actor string) (*catalog.Result[models.Lead], error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	q := catalog.ComposeLeadQuery(raw, s.limits)
	res, err := catalog.Run[models.Lead](ctx, s.db, q.Where, q.Sort, q.Window)
	if err != nil {
		return nil, operationFailed("query leads", err)
	}
	metrics.IncCatalogQuery("leads")
	return res, nil
}

// Transition moves a lead to any pipeline status. The change and its audit
// entry commit together. Moving a lead to its current status is accepted
// and still audited.
func (s *LeadService) Transition(ctx context.Context, id string, target string, actor string) (*models.Lead, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	to := models.LeadStatus(strings.ToLower(strings.TrimSpace(target)))
	if !models.IsValidLeadStatus(to) {
		return nil, newValidationError("status", "invalid status value")
	}

	var lead models.Lead
	var entry *models.AuditLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lead, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newNotFound("lead", id)
			}
			return fmt.Errorf("load lead: %w", err)
		}
		from := lead.Status

		now := time.Now()
		if err := tx.Model(&models.Lead{}).Where("id = ?", id).
			Updates(map[string]interface{}{"status": to, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("update lead status: %w", err)
		}
		lead.Status = to
		lead.UpdatedAt = now

		var err error
		entry, err = s.audit.Record(tx, actor, models.AuditUpdateLeadStatus, id, map[string]interface{}{
			"from": from,
			"to":   to,
		})
		return err
	})
	if err != nil {
		return nil, operationFailed("update lead status", err)
	}
	s.audit.Committed(entry)

	metrics.IncLeadTransition(string(to))
	logger.WithFields(logrus.Fields{"lead_id": id, "status": to, "actor": actor}).Debug("lead status updated")
	return &lead, nil
}

// Delete removes a lead and records what was removed.
func (s *LeadService) Delete(ctx context.Context, id string, actor string) (*DeletedLead, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var removed DeletedLead
	var entry *models.AuditLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.First(&lead, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newNotFound("lead", id)
			}
			return fmt.Errorf("load lead: %w", err)
		}
		if err := tx.Delete(&models.Lead{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete lead: %w", err)
		}
		removed = DeletedLead{
			ID:              lead.ID,
			VehicleInterest: lead.VehicleInterest,
			Contact:         lead.Contact,
			Status:          lead.Status,
		}
		var err error
		entry, err = s.audit.Record(tx, actor, models.AuditDeleteLead, id, map[string]interface{}{
			"vehicle_interest": lead.VehicleInterest,
			"contact":          lead.Contact,
			"status":           lead.Status,
			"source":           lead.Source,
		})
		return err
	})
	if err != nil {
		return nil, operationFailed("delete lead", err)
	}
	s.audit.Committed(entry)
	return &removed, nil
}

// Stats counts leads per status for the pipeline header and the gauge job.
func (s *LeadService) Stats(ctx context.Context, actor string) (*LeadStats, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, operationFailed("count leads", err)
	}

	stats := &LeadStats{ByStatus: make(map[string]int64, len(models.LeadStatuses))}
	for _, st := range models.LeadStatuses {
		stats.ByStatus[string(st)] = 0
	}
	for _, r := range rows {
		stats.ByStatus[r.Status] += r.Count
		stats.Total += r.Count
	}
	return stats, nil
}
