package listings

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilters holds the optional filters for listing queries. Zero values
// and nil pointers mean "not filtered".
type ListFilters struct {
	ListingType  string
	PropertyType string
	City         string
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *int
	Status       string
	OwnerID      *uuid.UUID
}

func (f ListFilters) Validate() error {
	if f.ListingType != "" && f.ListingType != models.ListingSale && f.ListingType != models.ListingRent {
		return apperr.Validation("listing_type must be sale or rent")
	}
	if f.PropertyType != "" && !models.ValidPropertyType(f.PropertyType) {
		return apperr.Validation("property_type must be one of: " + strings.Join(models.PropertyTypes, ", "))
	}
	if f.Status != "" && f.Status != models.StatusActive && f.Status != models.StatusInactive {
		return apperr.Validation("status must be active or inactive")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return apperr.Validation("min_price cannot be greater than max_price")
	}
	if f.MinBedrooms != nil && *f.MinBedrooms < 0 {
		return apperr.Validation("bedrooms cannot be negative")
	}
	return nil
}

type condition struct {
	fragment string
	args     []interface{}
}

// Predicate is an ordered conjunction of parameterized conditions. The same
// value is applied to the count query and the page query.
type Predicate struct {
	conds []condition
}

func (p *Predicate) and(fragment string, args ...interface{}) {
	p.conds = append(p.conds, condition{fragment: fragment, args: args})
}

// BuildPredicate turns the set filters into conditions. Unset filters are
// omitted.
func BuildPredicate(f ListFilters) Predicate {
	var p Predicate
	if f.ListingType != "" {
		p.and("listing_type = ?", f.ListingType)
	}
	if f.PropertyType != "" {
		p.and("property_type = ?", f.PropertyType)
	}
	if city := strings.TrimSpace(f.City); city != "" {
		p.and("LOWER(city) = LOWER(?)", city)
	}
	if f.MinPrice != nil {
		p.and("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		p.and("price <= ?", *f.MaxPrice)
	}
	if f.MinBedrooms != nil {
		p.and("bedrooms >= ?", *f.MinBedrooms)
	}
	if f.Status != "" {
		p.and("status = ?", f.Status)
	}
	if f.OwnerID != nil {
		p.and("owner_id = ?", *f.OwnerID)
	}
	return p
}

// Apply adds every condition to db as a WHERE clause.
func (p Predicate) Apply(db *gorm.DB) *gorm.DB {
	for _, c := range p.conds {
		db = db.Where(c.fragment, c.args...)
	}
	return db
}

// SQL renders the conjunction and its arguments in order.
func (p Predicate) SQL() (string, []interface{}) {
	fragments := make([]string, len(p.conds))
	var args []interface{}
	for i, c := range p.conds {
		fragments[i] = c.fragment
		args = append(args, c.args...)
	}
	return strings.Join(fragments, " AND "), args
}

func (p Predicate) Len() int {
	return len(p.conds)
}
