package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ListingSale = "sale"
	ListingRent = "rent"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	PropertyTypes = []string{"house", "apartment", "condo", "land", "commercial"}
	RentPeriods   = []string{"day", "week", "month", "year"}
)

// Property is a listing. RentPeriod is set iff ListingType is rent.
type Property struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title        string          `gorm:"size:255;not null" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	PropertyType string          `gorm:"size:20;not null;index" json:"property_type"`
	ListingType  string          `gorm:"size:10;not null;index" json:"listing_type"`
	Price        float64         `gorm:"not null;index" json:"price"`
	RentPeriod   *string         `gorm:"size:10" json:"rent_period"`
	Bedrooms     int             `gorm:"not null;default:0;index" json:"bedrooms"`
	Bathrooms    int             `gorm:"not null;default:0" json:"bathrooms"`
	Area         float64         `gorm:"not null;default:0" json:"area"`
	Address      string          `gorm:"size:255" json:"address"`
	City         string          `gorm:"size:100;index" json:"city"`
	State        string          `gorm:"size:100" json:"state"`
	ZipCode      string          `gorm:"size:20" json:"zip_code"`
	Country      string          `gorm:"size:100" json:"country"`
	Latitude     *float64        `json:"latitude"`
	Longitude    *float64        `json:"longitude"`
	Status       string          `gorm:"size:10;not null;default:'active';index" json:"status"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Owner        *User           `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	Images       []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images"`
}

func (p *Property) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	return nil
}

// PropertyImage is one gallery entry. ImageOrder is 1-based and unique per
// property; the image with order 1 is the primary one.
type PropertyImage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_property_images_order" json:"property_id"`
	PublicID   string    `gorm:"size:255;not null" json:"public_id"`
	ImageURL   string    `gorm:"type:text;not null" json:"image_url"`
	ImageOrder int       `gorm:"not null;uniqueIndex:idx_property_images_order" json:"image_order"`
	IsPrimary  bool      `gorm:"-" json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}

func (i *PropertyImage) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.IsPrimary = i.ImageOrder == 1
	return nil
}

func (i *PropertyImage) AfterFind(*gorm.DB) error {
	i.IsPrimary = i.ImageOrder == 1
	return nil
}

// ValidPropertyType reports whether t is one of PropertyTypes.
func ValidPropertyType(t string) bool {
	return contains(PropertyTypes, t)
}

// ValidRentPeriod reports whether p is one of RentPeriods.
func ValidRentPeriod(p string) bool {
	return contains(RentPeriods, p)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
