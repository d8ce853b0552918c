// Package catalog turns loosely typed query parameters into deterministic,
// paginated reads over listings and leads. The same composition path serves
// the public stock page and the admin screens; only the scope differs.
package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/Wikid82/autosource/backend/internal/models"
)

// Scope selects which caller a query is composed for.
type Scope string

const (
	ScopePublic Scope = "public"
	ScopeAdmin  Scope = "admin"
)

// sentinel value used by the UI selects to mean "no filter".
const anyValue = "all"

// ListingFilter is the normalized predicate set for listing queries. Zero
// values and nil pointers mean "not filtered".
type ListingFilter struct {
	Brand    string                `json:"brand,omitempty"`
	Model    string                `json:"model,omitempty"`
	Body     string                `json:"body,omitempty"`
	Fuel     string                `json:"fuel,omitempty"`
	Gearbox  string                `json:"gearbox,omitempty"`
	Country  string                `json:"country,omitempty"`
	YearMin  *int                  `json:"year_min,omitempty"`
	YearMax  *int                  `json:"year_max,omitempty"`
	KmMax    *int                  `json:"km_max,omitempty"`
	PriceMin *float64              `json:"price_min,omitempty"`
	PriceMax *float64              `json:"price_max,omitempty"`
	Status   *models.ListingStatus `json:"status,omitempty"`
	Kind     *models.ListingKind   `json:"kind,omitempty"`
	Search   string                `json:"search,omitempty"`
}

// LeadFilter is the normalized predicate set for lead queries.
type LeadFilter struct {
	Status *models.LeadStatus `json:"status,omitempty"`
	Source *models.LeadSource `json:"source,omitempty"`
	Search string             `json:"search,omitempty"`
}

// NormalizeListingFilter never fails: a value that cannot be interpreted is
// dropped and the query runs without it. status and type are honoured only
// in the admin scope.
func NormalizeListingFilter(raw map[string]string, scope Scope) ListingFilter {
	var f ListingFilter

	f.Brand = text(raw, "brand")
	f.Model = text(raw, "model")
	f.Search = text(raw, "search")

	f.Body = enumValue(raw, "body", models.BodyTypes)
	f.Fuel = enumValue(raw, "fuel", models.FuelTypes)
	f.Gearbox = enumValue(raw, "gearbox", models.GearboxTypes)
	if c := text(raw, "country"); c != "" && !strings.EqualFold(c, anyValue) {
		f.Country = strings.ToUpper(c)
	}

	f.YearMin = yearParam(raw, "yearMin")
	f.YearMax = yearParam(raw, "yearMax")
	if f.YearMin != nil && f.YearMax != nil && *f.YearMin > *f.YearMax {
		f.YearMin, f.YearMax = f.YearMax, f.YearMin
	}

	f.KmMax = nonNegativeInt(raw, "kmMax")

	f.PriceMin = nonNegativeFloat(raw, "priceMin")
	f.PriceMax = nonNegativeFloat(raw, "priceMax")
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		f.PriceMin, f.PriceMax = f.PriceMax, f.PriceMin
	}

	if scope == ScopeAdmin {
		if v := enumValue(raw, "status", listingStatusNames()); v != "" {
			s := models.ListingStatus(v)
			f.Status = &s
		}
		if v := enumValue(raw, "type", listingKindNames()); v != "" {
			k := models.ListingKind(v)
			f.Kind = &k
		}
	}

	return f
}

// NormalizeLeadFilter applies the same drop-on-invalid policy to lead screens.
func NormalizeLeadFilter(raw map[string]string) LeadFilter {
	var f LeadFilter
	f.Search = text(raw, "search")

	if v := strings.ToLower(text(raw, "status")); v != "" && models.IsValidLeadStatus(models.LeadStatus(v)) {
		s := models.LeadStatus(v)
		f.Status = &s
	}
	if v := strings.ToLower(text(raw, "source")); v != "" && models.IsValidLeadSource(models.LeadSource(v)) {
		s := models.LeadSource(v)
		f.Source = &s
	}
	return f
}

// IsEmpty reports whether no predicate survived normalization.
func (f ListingFilter) IsEmpty() bool {
	return f == ListingFilter{}
}

func text(raw map[string]string, key string) string {
	return strings.TrimSpace(raw[key])
}

func enumValue(raw map[string]string, key string, values []string) string {
	v := text(raw, key)
	if v == "" || strings.EqualFold(v, anyValue) {
		return ""
	}
	canonical, ok := models.MatchEnum(values, v)
	if !ok {
		return ""
	}
	return canonical
}

func yearParam(raw map[string]string, key string) *int {
	v, ok := parseInt(raw, key)
	if !ok || v < models.MinListingYear || v > models.MaxListingYear() {
		return nil
	}
	return &v
}

func nonNegativeInt(raw map[string]string, key string) *int {
	v, ok := parseInt(raw, key)
	if !ok || v < 0 {
		return nil
	}
	return &v
}

func nonNegativeFloat(raw map[string]string, key string) *float64 {
	s := text(raw, key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	return &v
}

func parseInt(raw map[string]string, key string) (int, bool) {
	s := text(raw, key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func listingStatusNames() []string {
	out := make([]string, 0, len(models.ListingStatuses))
	for _, s := range models.ListingStatuses {
		out = append(out, string(s))
	}
	return out
}

func listingKindNames() []string {
	out := make([]string, 0, len(models.ListingKinds))
	for _, k := range models.ListingKinds {
		out = append(out, string(k))
	}
	return out
}
