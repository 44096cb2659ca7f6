package listings

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const imagesField = "images"

type ListingHandler struct {
	service *ListingService
}

func NewListingHandler(service *ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

func (h *ListingHandler) List(c *fiber.Ctx) error {
	filters, err := parseFilters(c)
	if err != nil {
		return err
	}

	listings, pagination, err := h.service.ListListings(c.UserContext(), filters, parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"properties": listings, "pagination": pagination})
}

func (h *ListingHandler) MyListings(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	listings, pagination, err := h.service.MyListings(c.UserContext(), userID, parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"properties": listings, "pagination": pagination})
}

func (h *ListingHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid property ID")
	}

	listing, err := h.service.GetListing(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"property": listing})
}

// Create accepts multipart form data with up to ten files under "images".
func (h *ListingHandler) Create(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	var req CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	images, err := formImages(c)
	if err != nil {
		return err
	}

	listing, err := h.service.CreateListing(c.UserContext(), userID, req.fields(), images)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"property": listing,
		"message":  "Property created successfully",
	})
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid property ID")
	}

	var req UpdateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	listing, err := h.service.UpdateListing(c.UserContext(), id, userID, req.patch())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"property": listing,
		"message":  "Property updated successfully",
	})
}

func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid property ID")
	}

	result, err := h.service.DeleteListing(c.UserContext(), id, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":          "Property deleted successfully",
		"images_deleted":   result.ImagesDeleted,
		"failed_image_ids": result.FailedImageIDs,
	})
}

func (h *ListingHandler) AddImages(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid property ID")
	}

	images, err := formImages(c)
	if err != nil {
		return err
	}

	listing, err := h.service.AddImages(c.UserContext(), id, userID, images)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"property": listing,
		"message":  "Images added successfully",
	})
}

func (h *ListingHandler) DeleteImage(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid property ID")
	}
	imageID, err := uuid.Parse(c.Params("imageId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid image ID")
	}

	if err := h.service.DeleteImage(c.UserContext(), id, imageID, userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Image deleted successfully"})
}

// formImages reads the uploaded files of a multipart request. Other content
// types carry no images.
func formImages(c *fiber.Ctx) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	return handlers.ReadImages(form, imagesField)
}

func parsePage(c *fiber.Ctx) database.Page {
	return database.NewPage(c.QueryInt("page", 1), c.QueryInt("limit", database.DefaultPageSize))
}

func parseFilters(c *fiber.Ctx) (ListFilters, error) {
	f := ListFilters{
		ListingType:  c.Query("listing_type"),
		PropertyType: c.Query("property_type"),
		City:         c.Query("city"),
		Status:       c.Query("status"),
	}

	var err error
	if f.MinPrice, err = queryFloat(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryFloat(c, "max_price"); err != nil {
		return f, err
	}
	if raw := c.Query("bedrooms"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "bedrooms must be a whole number")
		}
		f.MinBedrooms = &n
	}
	return f, nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" must be a number")
	}
	return &v, nil
}
