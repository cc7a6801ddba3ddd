package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"estatelist/backend/internal/models"
)

// ErrValidation marks a rejected request payload. Handlers map it to a
// 400 response.
var ErrValidation = errors.New("validation error")

// Form is the typed shape of a create/update request. All loose form
// coercion happens in ParseForm, in one pass, so the workflow and the
// model never see string-typed numbers or booleans.
type Form struct {
	Name               string
	Price              float64
	Location           string
	Type               string
	Status             models.PropertyStatus
	Description        string
	ContactInfo        string
	ConstructionStatus models.ConstructionStatus
	Ownership          models.OwnershipType
	Bedrooms           int
	Bathrooms          int
	Floors             int
	Parking            int
	BuildingArea       *float64
	LandArea           *float64
	SwimmingPool       bool
	Furnished          bool
	IsFeatured         bool

	// RemovedImages only applies to updates: URLs to drop from the
	// previously stored image list.
	RemovedImages []string
}

// ParseForm decodes and coerces a multipart/urlencoded form into a Form.
//
// Coercion rules: absent or unparseable integer fields default to 0, area
// fields default to null, and any boolean string other than "true" is
// false. name, price, location and contact_info are required; price must
// be a non-negative number.
func ParseForm(values url.Values) (Form, error) {
	var missing []string
	for _, field := range []string{"name", "price", "location", "contact_info"} {
		if strings.TrimSpace(values.Get(field)) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return Form{}, fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}

	price, err := strconv.ParseFloat(values.Get("price"), 64)
	if err != nil {
		return Form{}, fmt.Errorf("%w: price must be a number", ErrValidation)
	}
	if price < 0 {
		return Form{}, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	f := Form{
		Name:               values.Get("name"),
		Price:              price,
		Location:           values.Get("location"),
		Type:               values.Get("type"),
		Status:             models.PropertyStatus(values.Get("status")),
		Description:        values.Get("description"),
		ContactInfo:        values.Get("contact_info"),
		ConstructionStatus: models.ConstructionStatus(values.Get("construction_status")),
		Ownership:          models.OwnershipType(values.Get("ownership")),
		Bedrooms:           formInt(values.Get("bedrooms")),
		Bathrooms:          formInt(values.Get("bathrooms")),
		Floors:             formInt(values.Get("floors")),
		Parking:            formInt(values.Get("parking")),
		BuildingArea:       formNullableFloat(values.Get("building_area")),
		LandArea:           formNullableFloat(values.Get("land_area")),
		SwimmingPool:       formBool(values.Get("swimming_pool")),
		Furnished:          formBool(values.Get("furnished")),
		IsFeatured:         formBool(values.Get("is_featured")),
		RemovedImages:      parseRemovedImages(values),
	}

	if f.Status == "" {
		f.Status = models.StatusBuy
	}

	return f, nil
}

func formInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func formNullableFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func formBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// parseRemovedImages accepts either a repeated removed_images field or a
// single JSON-array value, which is how the frontend submits it alongside
// multipart files.
func parseRemovedImages(values url.Values) []string {
	raw := values["removed_images"]
	if len(raw) == 1 && strings.HasPrefix(strings.TrimSpace(raw[0]), "[") {
		var urls []string
		if err := json.Unmarshal([]byte(raw[0]), &urls); err == nil {
			return urls
		}
	}
	var out []string
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
