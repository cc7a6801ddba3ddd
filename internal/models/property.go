package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Custom types for the enumerated listing fields.
type PropertyStatus string
type OwnershipType string
type ConstructionStatus string

const (
	StatusBuy  PropertyStatus = "Buy"
	StatusRent PropertyStatus = "Rent"

	OwnershipFreehold  OwnershipType = "Freehold"
	OwnershipLeasehold OwnershipType = "Leasehold"

	ConstructionReady        ConstructionStatus = "Ready"
	ConstructionUnderProject ConstructionStatus = "Under Construction"
)

// Property is one real-estate listing. Images holds the ordered, public
// retrieval URLs of the listing photos; order is display order and
// duplicates are allowed.
type Property struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primary_key;column:property_id" json:"property_id"`
	Name               string             `gorm:"size:255;not null" json:"name"`
	Price              float64            `gorm:"not null" json:"price"`
	Location           string             `gorm:"size:255;not null" json:"location"`
	Type               string             `gorm:"size:100" json:"type"`
	Status             PropertyStatus     `gorm:"type:varchar(20);default:'Buy'" json:"status"`
	Description        string             `gorm:"type:text" json:"description"`
	ContactInfo        string             `gorm:"size:255;not null" json:"contact_info"`
	ConstructionStatus ConstructionStatus `gorm:"type:varchar(50)" json:"construction_status"`
	Ownership          OwnershipType      `gorm:"type:varchar(50)" json:"ownership"`
	Bedrooms           int                `gorm:"not null;default:0" json:"bedrooms"`
	Bathrooms          int                `gorm:"not null;default:0" json:"bathrooms"`
	Floors             int                `gorm:"not null;default:0" json:"floors"`
	Parking            int                `gorm:"not null;default:0" json:"parking"`
	BuildingArea       *float64           `json:"building_area"`
	LandArea           *float64           `json:"land_area"`
	SwimmingPool       bool               `gorm:"not null;default:false" json:"swimming_pool"`
	Furnished          bool               `gorm:"not null;default:false" json:"furnished"`
	IsFeatured         bool               `gorm:"not null;default:false" json:"is_featured"`
	Images             pq.StringArray     `gorm:"type:text[]" json:"images"`
	UserID             uuid.UUID          `gorm:"type:uuid" json:"user_id"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
