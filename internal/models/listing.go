package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListingStatus is the lifecycle state of a catalog listing.
type ListingStatus string

const (
	ListingStatusDraft     ListingStatus = "DRAFT"
	ListingStatusPublished ListingStatus = "PUBLISHED"
	ListingStatusArchived  ListingStatus = "ARCHIVED"
	ListingStatusSold      ListingStatus = "SOLD"
)

// ListingKind distinguishes fixed-price stock from auction lots.
type ListingKind string

const (
	ListingKindBuyNow  ListingKind = "BUY_NOW"
	ListingKindAuction ListingKind = "AUCTION"
)

var (
	ListingStatuses = []ListingStatus{ListingStatusDraft, ListingStatusPublished, ListingStatusArchived, ListingStatusSold}
	ListingKinds    = []ListingKind{ListingKindBuyNow, ListingKindAuction}

	FuelTypes    = []string{"PETROL", "DIESEL", "HYBRID", "PLUGIN_HYBRID", "ELECTRIC", "LPG"}
	GearboxTypes = []string{"MANUAL", "AUTOMATIC"}
	BodyTypes    = []string{"SEDAN", "HATCHBACK", "ESTATE", "SUV", "COUPE", "CONVERTIBLE", "VAN", "PICKUP"}
)

// MinListingYear is the oldest model year accepted anywhere in the catalog.
const MinListingYear = 1900

// MaxListingYear allows next year's models to be listed ahead of release.
func MaxListingYear() int {
	return time.Now().Year() + 1
}

// Listing is an admin-managed vehicle in the catalog.
type Listing struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	Title     string         `json:"title"`
	Brand     string         `json:"brand" gorm:"index"`
	Model     string         `json:"model"`
	Year      int            `json:"year" gorm:"index"`
	Price     float64        `json:"price" gorm:"index"`
	Mileage   int            `json:"mileage"`
	Fuel      string         `json:"fuel"`
	Gearbox   string         `json:"gearbox"`
	Body      string         `json:"body"`
	Country   string         `json:"country"`
	Status    ListingStatus  `json:"status" gorm:"index;default:'DRAFT'"`
	Kind      ListingKind    `json:"kind" gorm:"default:'BUY_NOW'"`
	Images    []ListingImage `json:"images,omitempty" gorm:"foreignKey:ListingID"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Lowercased copies for case-insensitive search. SQLite's LOWER only
	// folds ASCII.
	TitleFold string `json:"-"`
	BrandFold string `json:"-" gorm:"index"`
	ModelFold string `json:"-"`
}

// ListingImage is an ordered picture owned by a listing. The binary lives on
// the CDN; only its URL is stored.
type ListingImage struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ListingID string `json:"listing_id" gorm:"index;size:36"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = ListingStatusDraft
	}
	if l.Kind == "" {
		l.Kind = ListingKindBuyNow
	}
	return
}

func (l *Listing) BeforeSave(tx *gorm.DB) (err error) {
	l.TitleFold = FoldText(l.Title)
	l.BrandFold = FoldText(l.Brand)
	l.ModelFold = FoldText(l.Model)
	return
}

// FoldText is the form stored in the *_fold search columns and used for
// search terms.
func FoldText(s string) string {
	return strings.ToLower(s)
}

// DisplayTitle falls back to "Brand Model" when no explicit title was set.
func (l *Listing) DisplayTitle() string {
	if t := strings.TrimSpace(l.Title); t != "" {
		return t
	}
	return strings.TrimSpace(l.Brand + " " + l.Model)
}

// IsValidListingStatus reports whether s is a defined listing status.
func IsValidListingStatus(s ListingStatus) bool {
	for _, v := range ListingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsValidListingKind reports whether k is a defined listing kind.
func IsValidListingKind(k ListingKind) bool {
	for _, v := range ListingKinds {
		if k == v {
			return true
		}
	}
	return false
}

// MatchEnum returns the canonical member of values equal to v ignoring case.
func MatchEnum(values []string, v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return candidate, true
		}
	}
	return "", false
}
