package listings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/imagestore"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxImagesPerListing caps both a single upload batch and a listing's gallery.
const MaxImagesPerListing = 10

const cleanupTimeout = 30 * time.Second

// ListingFields are the caller-supplied attributes of a new listing.
type ListingFields struct {
	Title        string
	Description  string
	PropertyType string
	ListingType  string
	Price        float64
	RentPeriod   *string
	Bedrooms     int
	Bathrooms    int
	Area         float64
	Address      string
	City         string
	State        string
	ZipCode      string
	Country      string
	Latitude     *float64
	Longitude    *float64
}

// ListingPatch is a partial update. Nil fields are left unchanged.
type ListingPatch struct {
	Title        *string
	Description  *string
	PropertyType *string
	ListingType  *string
	Price        *float64
	RentPeriod   *string
	Bedrooms     *int
	Bathrooms    *int
	Area         *float64
	Address      *string
	City         *string
	State        *string
	ZipCode      *string
	Country      *string
	Latitude     *float64
	Longitude    *float64
	Status       *string
}

// DeleteResult reports how the remote image deletes went.
type DeleteResult struct {
	ImagesDeleted  int      `json:"images_deleted"`
	FailedImageIDs []string `json:"failed_image_ids,omitempty"`
}

type ListingService struct {
	db     *gorm.DB
	images imagestore.Store
	cache  cache.ListingCache
	events events.Publisher
}

func NewListingService(db *gorm.DB, images imagestore.Store, listingCache cache.ListingCache, publisher events.Publisher) *ListingService {
	if listingCache == nil {
		listingCache = cache.Noop{}
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &ListingService{db: db, images: images, cache: listingCache, events: publisher}
}

// CreateListing inserts the listing and its images atomically. The listing
// row, the uploads and the image rows share one transaction; if any step
// fails the transaction rolls back and every uploaded asset is deleted.
func (s *ListingService) CreateListing(ctx context.Context, ownerID uuid.UUID, in ListingFields, images [][]byte) (*models.Property, error) {
	if len(images) > MaxImagesPerListing {
		return nil, apperr.Limit(fmt.Sprintf("Too many files. Maximum is %d images", MaxImagesPerListing))
	}
	if err := validateRentPeriod(in.ListingType, in.RentPeriod); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	listing := in.toModel(ownerID)
	var uploaded []imagestore.Asset

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&listing).Error; err != nil {
			return apperr.Storage("Failed to create property", err)
		}

		var err error
		uploaded, err = s.attachImages(ctx, tx, listing.ID, images, 1)
		return err
	})
	if err != nil {
		s.discardAssets(ctx, uploaded)
		return nil, err
	}

	s.publish(ctx, events.SubjectListingCreated, events.ListingCreated{
		ListingID:  listing.ID.String(),
		OwnerID:    ownerID.String(),
		Title:      listing.Title,
		ImageCount: len(images),
	})

	return s.loadListing(ctx, listing.ID)
}

// attachImages uploads every image concurrently, then inserts one row per
// image in input order starting at firstOrder. It returns the assets that
// were uploaded, also on failure, so the caller can delete them.
func (s *ListingService) attachImages(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, images [][]byte, firstOrder int) ([]imagestore.Asset, error) {
	if len(images) == 0 {
		return nil, nil
	}

	assets := make([]imagestore.Asset, len(images))
	done := make([]bool, len(images))

	g, gctx := errgroup.WithContext(ctx)
	for i, data := range images {
		g.Go(func() error {
			asset, err := s.images.Upload(gctx, data, imagestore.FolderProperties)
			if errors.Is(err, imagestore.ErrNotImage) {
				return &apperr.Error{Kind: apperr.ErrValidation, Msg: "Only image files are allowed!", Cause: err}
			}
			if err != nil {
				return apperr.Upstream("Failed to upload images", err)
			}
			assets[i] = asset
			done[i] = true
			return nil
		})
	}
	err := g.Wait()

	uploaded := make([]imagestore.Asset, 0, len(images))
	for i, ok := range done {
		if ok {
			uploaded = append(uploaded, assets[i])
		}
	}
	if err != nil {
		return uploaded, err
	}

	for i, asset := range assets {
		row := models.PropertyImage{
			PropertyID: listingID,
			PublicID:   asset.ID,
			ImageURL:   asset.URL,
			ImageOrder: firstOrder + i,
		}
		if err := tx.Create(&row).Error; err != nil {
			return uploaded, apperr.Storage("Failed to save property images", err)
		}
	}
	return uploaded, nil
}

// discardAssets deletes uploads whose rows never committed. Failures only
// leave orphaned objects, so they are logged and not returned.
func (s *ListingService) discardAssets(ctx context.Context, assets []imagestore.Asset) {
	if len(assets) == 0 {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	for _, a := range assets {
		if err := s.images.Delete(cleanupCtx, a.ID); err != nil {
			slog.Error("failed to delete orphaned image", "asset_id", a.ID, "error", err, "action", "image_cleanup")
		}
	}
}

func (s *ListingService) GetListing(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	if cached, err := s.cache.Get(ctx, id); err != nil {
		slog.Warn("listing cache read failed", "listing_id", id, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	listing, err := s.loadListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, listing); err != nil {
		slog.Warn("listing cache write failed", "listing_id", id, "error", err)
	}
	return listing, nil
}

// ListListings is the public search. Status defaults to active.
func (s *ListingService) ListListings(ctx context.Context, f ListFilters, page database.Page) ([]models.Property, database.Pagination, error) {
	if f.Status == "" {
		f.Status = models.StatusActive
	}
	return s.list(ctx, f, page)
}

// MyListings returns every listing of ownerID regardless of status.
func (s *ListingService) MyListings(ctx context.Context, ownerID uuid.UUID, page database.Page) ([]models.Property, database.Pagination, error) {
	return s.list(ctx, ListFilters{OwnerID: &ownerID}, page)
}

func (s *ListingService) list(ctx context.Context, f ListFilters, page database.Page) ([]models.Property, database.Pagination, error) {
	if err := f.Validate(); err != nil {
		return nil, database.Pagination{}, err
	}
	pred := BuildPredicate(f)

	var total int64
	if err := pred.Apply(s.db.WithContext(ctx).Model(&models.Property{})).Count(&total).Error; err != nil {
		return nil, database.Pagination{}, apperr.Storage("Failed to count properties", err)
	}

	var rows []models.Property
	err := pred.Apply(s.db.WithContext(ctx).Model(&models.Property{})).
		Preload("Images", orderedImages).
		Order("created_at DESC").
		Order("id").
		Scopes(database.Paginate(page)).
		Find(&rows).Error
	if err != nil {
		return nil, database.Pagination{}, apperr.Storage("Failed to list properties", err)
	}

	return rows, page.Result(total), nil
}

func (s *ListingService) UpdateListing(ctx context.Context, id, requesterID uuid.UUID, patch ListingPatch) (*models.Property, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := ownedListing(tx, id, requesterID, "update")
		if err != nil {
			return err
		}

		patch.apply(listing)
		if err := validateRentPeriod(listing.ListingType, listing.RentPeriod); err != nil {
			return err
		}
		if err := fieldsOf(listing).validate(); err != nil {
			return err
		}
		if listing.Status != models.StatusActive && listing.Status != models.StatusInactive {
			return apperr.Validation("status must be active or inactive")
		}

		if err := tx.Omit(clause.Associations).Save(listing).Error; err != nil {
			return apperr.Storage("Failed to update property", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return s.loadListing(ctx, id)
}

// DeleteListing deletes every remote image and then the listing row. Image
// rows and favorites go with the row through ON DELETE CASCADE.
func (s *ListingService) DeleteListing(ctx context.Context, id, requesterID uuid.UUID) (*DeleteResult, error) {
	var listing models.Property
	if err := s.db.WithContext(ctx).Preload("Images", orderedImages).First(&listing, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "Property")
	}
	if listing.OwnerID != requesterID {
		return nil, apperr.Forbidden("Not authorized to delete this property")
	}

	result := &DeleteResult{}
	for _, img := range listing.Images {
		if err := s.images.Delete(ctx, img.PublicID); err != nil {
			slog.Error("failed to delete listing image", "listing_id", id, "asset_id", img.PublicID, "error", err)
			result.FailedImageIDs = append(result.FailedImageIDs, img.PublicID)
			continue
		}
		result.ImagesDeleted++
	}

	if err := s.db.WithContext(ctx).Delete(&models.Property{}, "id = ?", id).Error; err != nil {
		return nil, apperr.Storage("Failed to delete property", err)
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.SubjectListingDeleted, events.ListingDeleted{
		ListingID: id.String(),
		OwnerID:   requesterID.String(),
	})
	return result, nil
}

// AddImages appends images to an existing listing. Orders continue after
// the current maximum and the gallery stays within MaxImagesPerListing.
func (s *ListingService) AddImages(ctx context.Context, id, requesterID uuid.UUID, images [][]byte) (*models.Property, error) {
	if len(images) == 0 {
		return nil, apperr.Validation("No images provided")
	}
	if len(images) > MaxImagesPerListing {
		return nil, apperr.Limit(fmt.Sprintf("Too many files. Maximum is %d images", MaxImagesPerListing))
	}

	var uploaded []imagestore.Asset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedListing(tx, id, requesterID, "modify"); err != nil {
			return err
		}

		var stats struct {
			Count    int64
			MaxOrder int
		}
		err := tx.Model(&models.PropertyImage{}).
			Select("COUNT(*) AS count, COALESCE(MAX(image_order), 0) AS max_order").
			Where("property_id = ?", id).
			Scan(&stats).Error
		if err != nil {
			return apperr.Storage("Failed to read property images", err)
		}
		if int(stats.Count)+len(images) > MaxImagesPerListing {
			return apperr.Limit(fmt.Sprintf("A property can have at most %d images", MaxImagesPerListing))
		}

		uploaded, err = s.attachImages(ctx, tx, id, images, stats.MaxOrder+1)
		return err
	})
	if err != nil {
		s.discardAssets(ctx, uploaded)
		return nil, err
	}

	s.invalidate(ctx, id)
	return s.loadListing(ctx, id)
}

// DeleteImage removes one image. Remaining images keep their order.
func (s *ListingService) DeleteImage(ctx context.Context, id, imageID, requesterID uuid.UUID) error {
	if _, err := ownedListing(s.db.WithContext(ctx), id, requesterID, "modify"); err != nil {
		return err
	}

	var img models.PropertyImage
	if err := s.db.WithContext(ctx).First(&img, "id = ? AND property_id = ?", imageID, id).Error; err != nil {
		return apperr.FromDB(err, "Image")
	}

	if err := s.images.Delete(ctx, img.PublicID); err != nil {
		slog.Error("failed to delete listing image", "listing_id", id, "asset_id", img.PublicID, "error", err)
	}

	if err := s.db.WithContext(ctx).Delete(&img).Error; err != nil {
		return apperr.Storage("Failed to delete image", err)
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *ListingService) loadListing(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var listing models.Property
	err := s.db.WithContext(ctx).
		Preload("Images", orderedImages).
		Preload("Owner").
		First(&listing, "id = ?", id).Error
	if err != nil {
		return nil, apperr.FromDB(err, "Property")
	}
	return &listing, nil
}

func (s *ListingService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), id); err != nil {
		slog.Warn("listing cache invalidation failed", "listing_id", id, "error", err)
	}
}

func (s *ListingService) publish(ctx context.Context, subject string, data any) {
	if err := s.events.Publish(ctx, subject, data); err != nil {
		slog.Warn("event publish failed", "subject", subject, "error", err)
	}
}

func ownedListing(db *gorm.DB, id, requesterID uuid.UUID, verb string) (*models.Property, error) {
	var listing models.Property
	if err := db.First(&listing, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "Property")
	}
	if listing.OwnerID != requesterID {
		return nil, apperr.Forbidden("Not authorized to " + verb + " this property")
	}
	return &listing, nil
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("image_order ASC")
}

// validateRentPeriod enforces that a rent period is present and valid for
// rentals and absent for sales.
func validateRentPeriod(listingType string, rentPeriod *string) error {
	hasPeriod := rentPeriod != nil && *rentPeriod != ""
	switch listingType {
	case models.ListingRent:
		if !hasPeriod {
			return apperr.Validation("Rent period is required for rental properties")
		}
		if !models.ValidRentPeriod(*rentPeriod) {
			return apperr.Validation("Rent period must be one of: " + strings.Join(models.RentPeriods, ", "))
		}
	case models.ListingSale:
		if hasPeriod {
			return apperr.Validation("Rent period should not be provided for sale properties")
		}
	default:
		return apperr.Validation("listing_type must be sale or rent")
	}
	return nil
}

func (in ListingFields) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return apperr.Validation("Title is required")
	case !models.ValidPropertyType(in.PropertyType):
		return apperr.Validation("property_type must be one of: " + strings.Join(models.PropertyTypes, ", "))
	case in.Price < 0:
		return apperr.Validation("Price cannot be negative")
	case in.Bedrooms < 0 || in.Bathrooms < 0 || in.Area < 0:
		return apperr.Validation("Bedrooms, bathrooms and area cannot be negative")
	case in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90):
		return apperr.Validation("Latitude must be between -90 and 90")
	case in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180):
		return apperr.Validation("Longitude must be between -180 and 180")
	}
	return nil
}

func (in ListingFields) toModel(ownerID uuid.UUID) models.Property {
	var rentPeriod *string
	if in.ListingType == models.ListingRent {
		rentPeriod = in.RentPeriod
	}
	return models.Property{
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		PropertyType: in.PropertyType,
		ListingType:  in.ListingType,
		Price:        in.Price,
		RentPeriod:   rentPeriod,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		Area:         in.Area,
		Address:      in.Address,
		City:         strings.TrimSpace(in.City),
		State:        in.State,
		ZipCode:      in.ZipCode,
		Country:      in.Country,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Status:       models.StatusActive,
	}
}

func fieldsOf(p *models.Property) ListingFields {
	return ListingFields{
		Title:        p.Title,
		Description:  p.Description,
		PropertyType: p.PropertyType,
		ListingType:  p.ListingType,
		Price:        p.Price,
		RentPeriod:   p.RentPeriod,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Area:         p.Area,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
	}
}

func (p ListingPatch) apply(l *models.Property) {
	setString(&l.Title, p.Title)
	setString(&l.Description, p.Description)
	setString(&l.PropertyType, p.PropertyType)
	setString(&l.ListingType, p.ListingType)
	setString(&l.Address, p.Address)
	setString(&l.City, p.City)
	setString(&l.State, p.State)
	setString(&l.ZipCode, p.ZipCode)
	setString(&l.Country, p.Country)
	setString(&l.Status, p.Status)
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Bedrooms != nil {
		l.Bedrooms = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		l.Bathrooms = *p.Bathrooms
	}
	if p.Area != nil {
		l.Area = *p.Area
	}
	if p.Latitude != nil {
		l.Latitude = p.Latitude
	}
	if p.Longitude != nil {
		l.Longitude = p.Longitude
	}

	switch {
	case p.RentPeriod != nil && *p.RentPeriod != "":
		rp := *p.RentPeriod
		l.RentPeriod = &rp
	case p.RentPeriod != nil, l.ListingType == models.ListingSale:
		l.RentPeriod = nil
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
