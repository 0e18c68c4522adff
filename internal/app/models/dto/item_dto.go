package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
)

// DateLayout is the wire format of lost_date and found_date
const DateLayout = "2006-01-02"

// ItemRequest is the body of a lost or found report. It is accepted as JSON or as a
// multipart form when an image is attached. The kind comes from the route.
type ItemRequest struct {
	ObjectName  string `json:"objectName" form:"objectName" example:"Black umbrella"`
	Description string `json:"description" form:"description" example:"Folding umbrella with a wooden handle"`
	Location    string `json:"location" form:"location" example:"Library, 2nd floor"`

	// Lost items
	Campus      string `json:"campus,omitempty" form:"campus" example:"North"`
	LostDate    string `json:"lostDate,omitempty" form:"lostDate" example:"2026-03-01"`
	ContactInfo string `json:"contactInfo,omitempty" form:"contactInfo" example:"ada@uni.edu"`

	// Found items
	FoundDate string  `json:"foundDate,omitempty" form:"foundDate" example:"2026-03-02"`
	Email     string  `json:"email,omitempty" form:"email" example:"finder@uni.edu"`
	Phone     *string `json:"phone,omitempty" form:"phone" example:"+90 555 123 4567"`
}

// Details builds the kind-specific part of the item. Malformed dates are reported per field.
func (r ItemRequest) Details(kind models.ItemKind) (models.ItemDetails, map[string]interface{}) {
	problems := map[string]interface{}{}
	parse := func(field, value string) time.Time {
		if value == "" {
			return time.Time{}
		}
		t, err := time.Parse(DateLayout, value)
		if err != nil {
			problems[field] = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
		}
		return t
	}

	switch kind {
	case models.ItemKindLost:
		return models.LostDetails{
			Campus:      r.Campus,
			LostDate:    parse("lostDate", r.LostDate),
			ContactInfo: r.ContactInfo,
		}, problems
	case models.ItemKindFound:
		return models.FoundDetails{
			FoundDate: parse("foundDate", r.FoundDate),
			Email:     r.Email,
			Phone:     r.Phone,
		}, problems
	}
	problems["type"] = "type must be one of: lost found"
	return nil, problems
}

// ItemFilterRequest narrows a public listing
type ItemFilterRequest struct {
	Query    string `form:"q"`
	Location string `form:"location"`
	Campus   string `form:"campus"`
}

// ModerationRequest carries an optional admin note
type ModerationRequest struct {
	Note *string `json:"note" binding:"omitempty,max=1000" example:"Matches the description on file"`
}

// ItemResponse is an item as the caller may see it. Contact, owner and moderation
// fields are omitted from public projections.
type ItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type" example:"found" enums:"lost,found"`
	OwnerID     *uuid.UUID `json:"ownerId,omitempty"`
	ObjectName  string     `json:"objectName"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	Status      string     `json:"status" example:"approved" enums:"pending,approved,rejected,claimed,resolved"`
	AdminNote   *string    `json:"adminNote,omitempty"`
	ApprovedBy  *uuid.UUID `json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Campus      string `json:"campus,omitempty"`
	LostDate    string `json:"lostDate,omitempty"`
	ContactInfo string `json:"contactInfo,omitempty"`

	FoundDate string  `json:"foundDate,omitempty"`
	Email     string  `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// FromItem converts an item projection to an ItemResponse
func FromItem(item *models.Item) ItemResponse {
	resp := ItemResponse{
		ID:          item.ID,
		Type:        string(item.Kind()),
		ObjectName:  item.ObjectName,
		Description: item.Description,
		Location:    item.Location,
		ImageURL:    item.ImageURL,
		Status:      string(item.Status),
		AdminNote:   item.AdminNote,
		ApprovedBy:  item.ApprovedBy,
		ApprovedAt:  item.ApprovedAt,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if item.OwnerID != uuid.Nil {
		owner := item.OwnerID
		resp.OwnerID = &owner
	}
	switch d := item.Details.(type) {
	case models.LostDetails:
		resp.Campus = d.Campus
		resp.LostDate = d.LostDate.Format(DateLayout)
		resp.ContactInfo = d.ContactInfo
	case models.FoundDetails:
		resp.FoundDate = d.FoundDate.Format(DateLayout)
		resp.Email = d.Email
		resp.Phone = d.Phone
	}
	return resp
}

// FromItems converts a list of items
func FromItems(items []*models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}
