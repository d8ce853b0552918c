package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Wikid82/autosource/backend/internal/catalog"
	"github.com/Wikid82/autosource/backend/internal/metrics"
	"github.com/Wikid82/autosource/backend/internal/models"
)

// MaxImportBatch bounds a single bulk import request.
const MaxImportBatch = 500

// MaxBulkIDs bounds the ids accepted by one bulk status update.
const MaxBulkIDs = 500

// ListingInput carries the editable fields of a listing. Images are CDN URLs
// in display order; a nil slice on update keeps the current images.
type ListingInput struct {
	Title   string               `json:"title"`
	Brand   string               `json:"brand"`
	Model   string               `json:"model"`
	Year    int                  `json:"year"`
	Price   float64              `json:"price"`
	Mileage int                  `json:"mileage"`
	Fuel    string               `json:"fuel"`
	Gearbox string               `json:"gearbox"`
	Body    string               `json:"body"`
	Country string               `json:"country"`
	Status  models.ListingStatus `json:"status"`
	Kind    models.ListingKind   `json:"kind"`
	Images  []string             `json:"images"`
}

// ListingQueryRequest is the single read contract shared by the stock page
// and the admin listings screen.
type ListingQueryRequest struct {
	Params map[string]string
	Scope  catalog.Scope
	Actor  string
}

// BulkResult reports which ids received the new status.
type BulkResult struct {
	Success bool     `json:"success"`
	Status  string   `json:"status"`
	Updated []string `json:"updated"`
	Missing []string `json:"missing"`
}

type ListingService struct {
	db     *gorm.DB
	audit  *AuditService
	limits catalog.Limits
}

func NewListingService(db *gorm.DB, audit *AuditService, limits catalog.Limits) *ListingService {
	return &ListingService{db: db, audit: audit, limits: limits}
}

// Query runs a filtered, sorted, paginated read. Admin scope requires an actor.
func (s *ListingService) Query(ctx context.Context, req ListingQueryRequest) (*catalog.Result[models.Listing], error) {
	if req.Scope == catalog.ScopeAdmin {
		if err := requireActor(req.Actor); err != nil {
			return nil, err
		}
	}

	q := catalog.ComposeListingQuery(req.Params, req.Scope, s.limits)
	res, err := catalog.Run[models.Listing](ctx, s.db, q.Where, q.Sort, q.Window, preloadImages)
	if err != nil {
		return nil, operationFailed("query listings", err)
	}
	metrics.IncCatalogQuery(string(q.Scope))
	return res, nil
}

// Get returns one listing with its images. Public callers only see
// published listings.
func (s *ListingService) Get(ctx context.Context, id string, scope catalog.Scope, actor string) (*models.Listing, error) {
	if scope == catalog.ScopeAdmin {
		if err := requireActor(actor); err != nil {
			return nil, err
		}
	}

	q := s.db.WithContext(ctx).Scopes(preloadImages).Where("id = ?", id)
	if scope != catalog.ScopeAdmin {
		q = q.Where("status = ?", models.ListingStatusPublished)
	}

	var l models.Listing
	if err := q.First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFound("listing", id)
		}
		return nil, operationFailed("get listing", err)
	}
	return &l, nil
}

// Create stores a new listing. Status defaults to DRAFT and kind to BUY_NOW.
func (s *ListingService) Create(ctx context.Context, in ListingInput, actor string) (*models.Listing, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := normalizeListingInput(&in, ""); err != nil {
		return nil, err
	}

	l := listingFromInput(in)
	var entry *models.AuditLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(l).Error; err != nil {
			return fmt.Errorf("insert listing: %w", err)
		}
		var err error
		entry, err = s.audit.Record(tx, actor, models.AuditCreateListing, l.ID, map[string]interface{}{
			"title":  l.DisplayTitle(),
			"status": l.Status,
			"kind":   l.Kind,
			"price":  l.Price,
			"images": len(l.Images),
		})
		return err
	})
	if err != nil {
		return nil, operationFailed("create listing", err)
	}
	s.audit.Committed(entry)
	return s.Get(ctx, l.ID, catalog.ScopeAdmin, actor)
}

// Update replaces the editable fields of a listing. An empty status or kind
// keeps the current value.
func (s *ListingService) Update(ctx context.Context, id string, in ListingInput, actor string) (*models.Listing, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := normalizeListingInput(&in, ""); err != nil {
		return nil, err
	}

	var entry *models.AuditLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Listing
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newNotFound("listing", id)
			}
			return fmt.Errorf("load listing: %w", err)
		}

		before := existing
		applyListingInput(&existing, in)
		if err := tx.Omit(clause.Associations).Save(&existing).Error; err != nil {
			return fmt.Errorf("save listing: %w", err)
		}

		changes := listingChanges(before, existing)
		if in.Images != nil {
			if err := tx.Where("listing_id = ?", id).Delete(&models.ListingImage{}).Error; err != nil {
				return fmt.Errorf("clear images: %w", err)
			}
			images := buildImages(id, in.Images)
			if len(images) > 0 {
				if err := tx.Create(&images).Error; err != nil {
					return fmt.Errorf("insert images: %w", err)
				}
			}
			changes["images"] = len(images)
		}

		var err error
		entry, err = s.audit.Record(tx, actor, models.AuditUpdateListing, id, map[string]interface{}{"changes": changes})
		return err
	})
	if err != nil {
		return nil, operationFailed("update listing", err)
	}
	s.audit.Committed(entry)
	return s.Get(ctx, id, catalog.ScopeAdmin, actor)
}

// Delete removes a listing together with its images.
func (s *ListingService) Delete(ctx context.Context, id string, actor string) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	var entry *models.AuditLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Listing
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newNotFound("listing", id)
			}
			return fmt.Errorf("load listing: %w", err)
		}
		if err := tx.Where("listing_id = ?", id).Delete(&models.ListingImage{}).Error; err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		if err := tx.Delete(&models.Listing{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete listing: %w", err)
		}
		var err error
		entry, err = s.audit.Record(tx, actor, models.AuditDeleteListing, id, map[string]interface{}{
			"title":  existing.DisplayTitle(),
			"brand":  existing.Brand,
			"model":  existing.Model,
			"year":   existing.Year,
			"status": existing.Status,
		})
		return err
	})
	if err != nil {
		return operationFailed("delete listing", err)
	}
	s.audit.Committed(entry)
	return nil
}

// BulkUpdateStatus applies one status to every known id in a single
// transaction and reports ids that do not exist instead of failing.
func (s *ListingService) BulkUpdateStatus(ctx context.Context, ids []string, status models.ListingStatus, actor string) (*BulkResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	status = models.ListingStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if !models.IsValidListingStatus(status) {
		return nil, newValidationError("status", "invalid status value")
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, newValidationError("ids", "at least one listing id is required")
	}
	if len(ids) > MaxBulkIDs {
		return nil, newValidationError("ids", fmt.Sprintf("at most %d listings per bulk update", MaxBulkIDs))
	}

	res := &BulkResult{Status: string(status), Updated: []string{}, Missing: []string{}}
	var entry *models.AuditLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found []string
		if err := tx.Model(&models.Listing{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return fmt.Errorf("load listings: %w", err)
		}
		known := make(map[string]bool, len(found))
		for _, id := range found {
			known[id] = true
		}
		for _, id := range ids {
			if known[id] {
				res.Updated = append(res.Updated, id)
			} else {
				res.Missing = append(res.Missing, id)
			}
		}
		if len(res.Updated) == 0 {
			return nil
		}

		upd := tx.Model(&models.Listing{}).Where("id IN ?", res.Updated).
			Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
		if upd.Error != nil {
			return fmt.Errorf("update listings: %w", upd.Error)
		}
		if upd.RowsAffected != int64(len(res.Updated)) {
			return fmt.Errorf("bulk status update touched %d of %d rows", upd.RowsAffected, len(res.Updated))
		}

		var err error
		entry, err = s.audit.Record(tx, actor, models.AuditBulkUpdateStatus, "", map[string]interface{}{
			"status":  status,
			"ids":     res.Updated,
			"missing": res.Missing,
		})
		return err
	})
	if err != nil {
		return nil, operationFailed("bulk update listing status", err)
	}
	s.audit.Committed(entry)
	res.Success = len(res.Missing) == 0
	return res, nil
}

// Import creates every draft as a DRAFT listing in one transaction. Any
// invalid row rejects the whole batch.
func (s *ListingService) Import(ctx context.Context, drafts []ListingInput, actor string) ([]models.Listing, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, newValidationError("listings", "nothing to import")
	}
	if len(drafts) > MaxImportBatch {
		return nil, newValidationError("listings", fmt.Sprintf("at most %d listings per import", MaxImportBatch))
	}

	created := make([]models.Listing, 0, len(drafts))
	for i := range drafts {
		drafts[i].Status = models.ListingStatusDraft
		if err := normalizeListingInput(&drafts[i], fmt.Sprintf("listings[%d].", i)); err != nil {
			return nil, err
		}
		created = append(created, *listingFromInput(drafts[i]))
	}

	var entry *models.AuditLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range created {
			if err := tx.Create(&created[i]).Error; err != nil {
				return fmt.Errorf("insert listing %d: %w", i, err)
			}
		}
		ids := make([]string, 0, len(created))
		for _, l := range created {
			ids = append(ids, l.ID)
		}
		var err error
		entry, err = s.audit.Record(tx, actor, models.AuditImportListings, "", map[string]interface{}{
			"count": len(created),
			"ids":   ids,
		})
		return err
	})
	if err != nil {
		return nil, operationFailed("import listings", err)
	}
	s.audit.Committed(entry)
	return created, nil
}

func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// normalizeListingInput trims and canonicalizes enums in place. prefix is
// prepended to field names so import errors point at the offending row.
func normalizeListingInput(in *ListingInput, prefix string) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
	in.Country = strings.ToUpper(strings.TrimSpace(in.Country))

	if in.Brand == "" {
		return newValidationError(prefix+"brand", "is required")
	}
	if in.Model == "" {
		return newValidationError(prefix+"model", "is required")
	}
	if in.Year < models.MinListingYear || in.Year > models.MaxListingYear() {
		return newValidationError(prefix+"year", fmt.Sprintf("must be between %d and %d", models.MinListingYear, models.MaxListingYear()))
	}
	if in.Price < 0 {
		return newValidationError(prefix+"price", "must not be negative")
	}
	if in.Mileage < 0 {
		return newValidationError(prefix+"mileage", "must not be negative")
	}

	enums := []struct {
		field  string
		value  *string
		values []string
	}{
		{"fuel", &in.Fuel, models.FuelTypes},
		{"gearbox", &in.Gearbox, models.GearboxTypes},
		{"body", &in.Body, models.BodyTypes},
	}
	for _, e := range enums {
		if strings.TrimSpace(*e.value) == "" {
			*e.value = ""
			continue
		}
		canonical, ok := models.MatchEnum(e.values, *e.value)
		if !ok {
			return newValidationError(prefix+e.field, "invalid value")
		}
		*e.value = canonical
	}

	if in.Status != "" {
		in.Status = models.ListingStatus(strings.ToUpper(strings.TrimSpace(string(in.Status))))
		if !models.IsValidListingStatus(in.Status) {
			return newValidationError(prefix+"status", "invalid status value")
		}
	}
	if in.Kind != "" {
		in.Kind = models.ListingKind(strings.ToUpper(strings.TrimSpace(string(in.Kind))))
		if !models.IsValidListingKind(in.Kind) {
			return newValidationError(prefix+"kind", "invalid kind value")
		}
	}
	return nil
}

func listingFromInput(in ListingInput) *models.Listing {
	l := &models.Listing{}
	applyListingInput(l, in)
	if l.Status == "" {
		l.Status = models.ListingStatusDraft
	}
	if l.Kind == "" {
		l.Kind = models.ListingKindBuyNow
	}
	l.Images = buildImages("", in.Images)
	return l
}

func applyListingInput(l *models.Listing, in ListingInput) {
	l.Title = in.Title
	l.Brand = in.Brand
	l.Model = in.Model
	l.Year = in.Year
	l.Price = in.Price
	l.Mileage = in.Mileage
	l.Fuel = in.Fuel
	l.Gearbox = in.Gearbox
	l.Body = in.Body
	l.Country = in.Country
	if in.Status != "" {
		l.Status = in.Status
	}
	if in.Kind != "" {
		l.Kind = in.Kind
	}
}

func buildImages(listingID string, urls []string) []models.ListingImage {
	images := make([]models.ListingImage, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		images = append(images, models.ListingImage{ListingID: listingID, URL: u, Position: len(images)})
	}
	return images
}

// listingChanges returns the before/after pairs of fields that differ.
func listingChanges(before, after models.Listing) map[string]interface{} {
	changes := map[string]interface{}{}
	diff := func(field string, from, to interface{}) {
		if from != to {
			changes[field] = map[string]interface{}{"from": from, "to": to}
		}
	}
	diff("title", before.Title, after.Title)
	diff("brand", before.Brand, after.Brand)
	diff("model", before.Model, after.Model)
	diff("year", before.Year, after.Year)
	diff("price", before.Price, after.Price)
	diff("mileage", before.Mileage, after.Mileage)
	diff("fuel", before.Fuel, after.Fuel)
	diff("gearbox", before.Gearbox, after.Gearbox)
	diff("body", before.Body, after.Body)
	diff("country", before.Country, after.Country)
	diff("status", before.Status, after.Status)
	diff("kind", before.Kind, after.Kind)
	return changes
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
