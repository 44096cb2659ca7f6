package listings

// CreateListingRequest is decoded from multipart form fields or JSON.
type CreateListingRequest struct {
	Title        string   `json:"title" form:"title"`
	Description  string   `json:"description" form:"description"`
	PropertyType string   `json:"property_type" form:"property_type"`
	ListingType  string   `json:"listing_type" form:"listing_type"`
	Price        float64  `json:"price" form:"price"`
	RentPeriod   *string  `json:"rent_period" form:"rent_period"`
	Bedrooms     int      `json:"bedrooms" form:"bedrooms"`
	Bathrooms    int      `json:"bathrooms" form:"bathrooms"`
	Area         float64  `json:"area" form:"area"`
	Address      string   `json:"address" form:"address"`
	City         string   `json:"city" form:"city"`
	State        string   `json:"state" form:"state"`
	ZipCode      string   `json:"zip_code" form:"zip_code"`
	Country      string   `json:"country" form:"country"`
	Latitude     *float64 `json:"latitude" form:"latitude"`
	Longitude    *float64 `json:"longitude" form:"longitude"`
}

func (r *CreateListingRequest) fields() ListingFields {
	return ListingFields{
		Title:        r.Title,
		Description:  r.Description,
		PropertyType: r.PropertyType,
		ListingType:  r.ListingType,
		Price:        r.Price,
		RentPeriod:   r.RentPeriod,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		Area:         r.Area,
		Address:      r.Address,
		City:         r.City,
		State:        r.State,
		ZipCode:      r.ZipCode,
		Country:      r.Country,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
	}
}

// UpdateListingRequest carries a partial update. Absent fields keep their
// current value; an empty rent_period clears it.
type UpdateListingRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	PropertyType *string  `json:"property_type"`
	ListingType  *string  `json:"listing_type"`
	Price        *float64 `json:"price"`
	RentPeriod   *string  `json:"rent_period"`
	Bedrooms     *int     `json:"bedrooms"`
	Bathrooms    *int     `json:"bathrooms"`
	Area         *float64 `json:"area"`
	Address      *string  `json:"address"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	ZipCode      *string  `json:"zip_code"`
	Country      *string  `json:"country"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Status       *string  `json:"status"`
}

func (r *UpdateListingRequest) patch() ListingPatch {
	return ListingPatch{
		Title:        r.Title,
		Description:  r.Description,
		PropertyType: r.PropertyType,
		ListingType:  r.ListingType,
		Price:        r.Price,
		RentPeriod:   r.RentPeriod,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		Area:         r.Area,
		Address:      r.Address,
		City:         r.City,
		State:        r.State,
		ZipCode:      r.ZipCode,
		Country:      r.Country,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Status:       r.Status,
	}
}
