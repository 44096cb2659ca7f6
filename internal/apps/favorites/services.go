package favorites

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// Toggle flips the favorite state of a listing for userID and returns the
// new state. The unique (user_id, property_id) index guarantees at most one
// row even when toggles race.
func (s *FavoriteService) Toggle(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	var favorited bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Property{}).Where("id = ?", listingID).Count(&exists).Error; err != nil {
			return apperr.Storage("Failed to toggle favorite", err)
		}
		if exists == 0 {
			return apperr.NotFound("Property not found")
		}

		res := tx.Where("user_id = ? AND property_id = ?", userID, listingID).Delete(&models.Favorite{})
		if res.Error != nil {
			return apperr.Storage("Failed to toggle favorite", res.Error)
		}
		if res.RowsAffected > 0 {
			favorited = false
			return nil
		}

		fav := models.Favorite{UserID: userID, PropertyID: listingID}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "property_id"}},
			DoNothing: true,
		}).Create(&fav).Error
		if err != nil {
			return apperr.FromDB(err, "Failed to toggle favorite")
		}
		favorited = true
		return nil
	})
	return favorited, err
}

// List returns the user's favorited listings with their images, most
// recently favorited first.
func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID, page database.Page) ([]models.Property, database.Pagination, error) {
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Favorite{}).Where("user_id = ?", userID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, database.Pagination{}, apperr.Storage("Failed to count favorites", err)
	}

	var favs []models.Favorite
	err := base().
		Preload("Property").
		Preload("Property.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("image_order ASC")
		}).
		Order("created_at DESC").
		Order("id").
		Scopes(database.Paginate(page)).
		Find(&favs).Error
	if err != nil {
		return nil, database.Pagination{}, apperr.Storage("Failed to list favorites", err)
	}

	listings := make([]models.Property, 0, len(favs))
	for _, fav := range favs {
		if fav.Property != nil {
			listings = append(listings, *fav.Property)
		}
	}
	return listings, page.Result(total), nil
}

// Check reports whether userID has favorited listingID.
func (s *FavoriteService) Check(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND property_id = ?", userID, listingID).
		Count(&n).Error
	if err != nil {
		return false, apperr.Storage("Failed to check favorite", err)
	}
	return n > 0, nil
}
