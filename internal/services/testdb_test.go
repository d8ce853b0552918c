package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Wikid82/autosource/backend/internal/catalog"
	"github.com/Wikid82/autosource/backend/internal/metrics"
	"github.com/Wikid82/autosource/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Listing{},
		&models.ListingImage{},
		&models.Lead{},
		&models.AuditLog{},
		&models.User{},
	))
	return db
}

type fixture struct {
	db       *gorm.DB
	audit    *AuditService
	listings *ListingService
	leads    *LeadService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	limits := catalog.DefaultLimits()
	audit := NewAuditService(db, limits)
	return &fixture{
		db:       db,
		audit:    audit,
		listings: NewListingService(db, audit, limits),
		leads:    NewLeadService(db, audit, limits),
	}
}

func (f *fixture) auditCount(t *testing.T, action models.AuditAction) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}

func seedListing(t *testing.T, db *gorm.DB, l models.Listing) models.Listing {
	t.Helper()
	if l.Model == "" {
		l.Model = "Series 3"
	}
	if l.Year == 0 {
		l.Year = 2020
	}
	require.NoError(t, db.Create(&l).Error)
	return l
}

func seedLead(t *testing.T, db *gorm.DB, status models.LeadStatus) models.Lead {
	t.Helper()
	lead := models.Lead{VehicleInterest: "Audi A4", Contact: "buyer@example.com", Source: models.LeadSourceContact, Status: status}
	require.NoError(t, db.Create(&lead).Error)
	return lead
}

// auditMetric reads autosource_audit_entries_total for one action.
func auditMetric(t *testing.T, action models.AuditAction) float64 {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics.Register(reg)
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != "autosource_audit_entries_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "action" && l.GetValue() == string(action) {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
