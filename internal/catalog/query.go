package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Wikid82/autosource/backend/internal/models"
)

// Limits bounds the page sizes callers may ask for.
type Limits struct {
	PublicPageSize       int
	AdminDefaultPageSize int
	AdminMaxPageSize     int
}

// DefaultLimits matches the stock page grid and the admin tables.
func DefaultLimits() Limits {
	return Limits{
		PublicPageSize:       12,
		AdminDefaultPageSize: 20,
		AdminMaxPageSize:     100,
	}
}

// Sort is a resolved ORDER BY. Column is always taken from an allow-list.
type Sort struct {
	Field  string `json:"field"`
	Column string `json:"-"`
	Desc   bool   `json:"desc"`
}

// Clause renders the ORDER BY with the id tie-breaker that keeps pages stable.
func (s Sort) Clause() string {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, id ASC", s.Column, dir)
}

// Window is the requested page and its size.
type Window struct {
	Page     int
	PageSize int
}

func (w Window) Offset() int {
	return (w.Page - 1) * w.PageSize
}

var listingSortColumns = map[string]string{
	"price":   "price",
	"year":    "year",
	"km":      "mileage",
	"mileage": "mileage",
}

var (
	publicListingSort = Sort{Field: "price", Column: "price"}
	adminListingSort  = Sort{Field: "created_at", Column: "created_at", Desc: true}
	defaultLeadSort   = Sort{Field: "created_at", Column: "created_at", Desc: true}
)

// ResolveListingSort maps the requested sort onto the scope's allow-list.
// Unknown fields fall back to price ascending (public) or newest first (admin).
func ResolveListingSort(field, dir string, scope Scope) Sort {
	def := publicListingSort
	if scope == ScopeAdmin {
		def = adminListingSort
	}

	key := strings.ToLower(strings.TrimSpace(field))
	column, ok := listingSortColumns[key]
	if !ok && scope == ScopeAdmin && key == "created_at" {
		column, ok = "created_at", true
	}
	if !ok {
		return def
	}
	return Sort{Field: key, Column: column, Desc: resolveDirection(dir, def.Desc)}
}

// ResolveLeadSort allows created_at and status; status orders by pipeline
// position rather than alphabetically.
func ResolveLeadSort(field, dir string) Sort {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "created_at":
		return Sort{Field: "created_at", Column: "created_at", Desc: resolveDirection(dir, true)}
	case "status":
		return Sort{Field: "status", Column: leadStatusRank(), Desc: resolveDirection(dir, false)}
	default:
		return defaultLeadSort
	}
}

func resolveDirection(dir string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "asc":
		return false
	case "desc":
		return true
	default:
		return fallback
	}
}

func leadStatusRank() string {
	var b strings.Builder
	b.WriteString("CASE status")
	for i, s := range models.LeadStatuses {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, i)
	}
	b.WriteString(" END")
	return b.String()
}

// ResolveWindow clamps the page to >= 1 and fixes the page size for the
// scope. Public callers cannot choose their page size.
func ResolveWindow(raw map[string]string, scope Scope, limits Limits) Window {
	page, err := strconv.Atoi(strings.TrimSpace(raw["page"]))
	if err != nil || page < 1 {
		page = 1
	}

	if scope != ScopeAdmin {
		return Window{Page: page, PageSize: positiveOr(limits.PublicPageSize, 12)}
	}

	size := positiveOr(limits.AdminDefaultPageSize, 20)
	if v, err := strconv.Atoi(strings.TrimSpace(raw["pageSize"])); err == nil && v > 0 {
		size = v
	}
	if limit := positiveOr(limits.AdminMaxPageSize, 100); size > limit {
		size = limit
	}
	return Window{Page: page, PageSize: size}
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// ListingQuery is a fully composed, deterministic listing read.
type ListingQuery struct {
	Scope  Scope         `json:"scope"`
	Filter ListingFilter `json:"filter"`
	Sort   Sort          `json:"sort"`
	Window Window        `json:"window"`
}

// ComposeListingQuery is shared by the stock page and the admin listings
// screen. The public scope always restricts to published listings.
func ComposeListingQuery(raw map[string]string, scope Scope, limits Limits) ListingQuery {
	if scope != ScopeAdmin {
		scope = ScopePublic
	}
	return ListingQuery{
		Scope:  scope,
		Filter: NormalizeListingFilter(raw, scope),
		Sort:   ResolveListingSort(sortParam(raw), raw["dir"], scope),
		Window: ResolveWindow(raw, scope, limits),
	}
}

// Where applies the predicate only. Count and page reads both go through it.
func (q ListingQuery) Where(db *gorm.DB) *gorm.DB {
	f := q.Filter
	if q.Scope != ScopeAdmin {
		db = db.Where("status = ?", models.ListingStatusPublished)
	}
	if f.Brand != "" {
		db = db.Where("brand_fold LIKE ? ESCAPE '\\'", likePattern(f.Brand))
	}
	if f.Model != "" {
		db = db.Where("model_fold LIKE ? ESCAPE '\\'", likePattern(f.Model))
	}
	if f.Body != "" {
		db = db.Where("body = ?", f.Body)
	}
	if f.Fuel != "" {
		db = db.Where("fuel = ?", f.Fuel)
	}
	if f.Gearbox != "" {
		db = db.Where("gearbox = ?", f.Gearbox)
	}
	if f.Country != "" {
		db = db.Where("UPPER(country) = ?", f.Country)
	}
	if f.YearMin != nil {
		db = db.Where("year >= ?", *f.YearMin)
	}
	if f.YearMax != nil {
		db = db.Where("year <= ?", *f.YearMax)
	}
	if f.KmMax != nil {
		db = db.Where("mileage <= ?", *f.KmMax)
	}
	if f.PriceMin != nil {
		db = db.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		db = db.Where("price <= ?", *f.PriceMax)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.Kind != nil {
		db = db.Where("kind = ?", *f.Kind)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		db = db.Where("(title_fold LIKE ? ESCAPE '\\' OR brand_fold LIKE ? ESCAPE '\\' OR model_fold LIKE ? ESCAPE '\\')", p, p, p)
	}
	return db
}

// LeadQuery is a fully composed lead read. Leads are admin-only.
type LeadQuery struct {
	Filter LeadFilter `json:"filter"`
	Sort   Sort       `json:"sort"`
	Window Window     `json:"window"`
}

func ComposeLeadQuery(raw map[string]string, limits Limits) LeadQuery {
	return LeadQuery{
		Filter: NormalizeLeadFilter(raw),
		Sort:   ResolveLeadSort(sortParam(raw), raw["dir"]),
		Window: ResolveWindow(raw, ScopeAdmin, limits),
	}
}

func (q LeadQuery) Where(db *gorm.DB) *gorm.DB {
	f := q.Filter
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.Source != nil {
		db = db.Where("source = ?", *f.Source)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		db = db.Where("(vehicle_interest_fold LIKE ? ESCAPE '\\' OR contact_fold LIKE ? ESCAPE '\\')", p, p)
	}
	return db
}

func sortParam(raw map[string]string) string {
	if v := raw["sort"]; v != "" {
		return v
	}
	return raw["sortBy"]
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(models.FoldText(s)) + "%"
}

// Result is the pagination envelope returned by every list query.
type Result[T any] struct {
	Rows     []T   `json:"rows"`
	Total    int64 `json:"total"`
	PageSize int   `json:"page_size"`
	PageInfo
}

// Run counts and reads one page against the same predicate inside a single
// read transaction. The page is clamped against the count before rows are
// fetched, so an out-of-range page returns the last page's rows. extra
// scopes (preloads) apply to the row read only.
func Run[T any](ctx context.Context, db *gorm.DB, where func(*gorm.DB) *gorm.DB, sort Sort, win Window, extra ...func(*gorm.DB) *gorm.DB) (*Result[T], error) {
	res := &Result[T]{PageSize: win.PageSize}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.Model(new(T)).Scopes(where).Count(&total).Error; err != nil {
			return fmt.Errorf("count rows: %w", err)
		}
		res.Total = total
		res.PageInfo = Paginate(total, win.PageSize, win.Page)

		page := Window{Page: res.CurrentPage, PageSize: win.PageSize}
		q := tx.Model(new(T)).Scopes(where).Scopes(extra...).
			Order(sort.Clause()).Limit(page.PageSize).Offset(page.Offset())
		var rows []T
		if err := q.Find(&rows).Error; err != nil {
			return fmt.Errorf("read rows: %w", err)
		}
		res.Rows = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Rows == nil {
		res.Rows = []T{}
	}
	return res, nil
}
