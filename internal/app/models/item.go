package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemKind discriminates the two item variants
type ItemKind string

const (
	ItemKindLost  ItemKind = "lost"
	ItemKindFound ItemKind = "found"
)

// ParseItemKind validates a kind coming from a path or form value
func ParseItemKind(s string) (ItemKind, error) {
	switch ItemKind(s) {
	case ItemKindLost:
		return ItemKindLost, nil
	case ItemKindFound:
		return ItemKindFound, nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// ItemDetails holds the kind-specific part of an item. It is implemented only by
// LostDetails and FoundDetails; consumers switch on the concrete type.
type ItemDetails interface {
	Kind() ItemKind
	isItemDetails()
}

// LostDetails are the fields a lost item report carries
type LostDetails struct {
	Campus      string    `db:"campus"`
	LostDate    time.Time `db:"lost_date"`
	ContactInfo string    `db:"contact_info"`
}

func (LostDetails) Kind() ItemKind { return ItemKindLost }
func (LostDetails) isItemDetails() {}

// FoundDetails are the fields a found item report carries
type FoundDetails struct {
	FoundDate time.Time `db:"found_date"`
	Email     string    `db:"email"`
	Phone     *string   `db:"phone"`
}

func (FoundDetails) Kind() ItemKind { return ItemKindFound }
func (FoundDetails) isItemDetails() {}

// Item is a lost or found object report
type Item struct {
	ID          uuid.UUID  `db:"id"`
	OwnerID     uuid.UUID  `db:"user_id"`
	ObjectName  string     `db:"object_name"`
	Description string     `db:"description"`
	Location    string     `db:"location"`
	ImageURL    *string    `db:"image_url"`
	Status      ItemStatus `db:"status"`
	AdminNote   *string    `db:"admin_note"`
	ApprovedBy  *uuid.UUID `db:"approved_by"`
	ApprovedAt  *time.Time `db:"approved_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	Details     ItemDetails
}

// Kind returns the variant of the item
func (i *Item) Kind() ItemKind {
	if i.Details == nil {
		return ""
	}
	return i.Details.Kind()
}

// EventDate is the lost date or found date depending on the variant
func (i *Item) EventDate() time.Time {
	switch d := i.Details.(type) {
	case LostDetails:
		return d.LostDate
	case FoundDetails:
		return d.FoundDate
	default:
		return time.Time{}
	}
}

// Clone returns a deep copy, so projections never alias the stored record
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	c.ImageURL = cloneString(i.ImageURL)
	c.AdminNote = cloneString(i.AdminNote)
	if i.ApprovedBy != nil {
		id := *i.ApprovedBy
		c.ApprovedBy = &id
	}
	if i.ApprovedAt != nil {
		at := *i.ApprovedAt
		c.ApprovedAt = &at
	}
	if d, ok := i.Details.(FoundDetails); ok {
		d.Phone = cloneString(d.Phone)
		c.Details = d
	}
	return &c
}

// WithoutContact returns a copy with every contact field removed
func (i *Item) WithoutContact() *Item {
	c := i.Clone()
	switch d := c.Details.(type) {
	case LostDetails:
		d.ContactInfo = ""
		c.Details = d
	case FoundDetails:
		d.Email = ""
		d.Phone = nil
		c.Details = d
	}
	return c
}

// Public returns the copy any visitor may see: no contact fields, no owner and no
// moderation fields
func (i *Item) Public() *Item {
	c := i.WithoutContact()
	c.OwnerID = uuid.Nil
	c.AdminNote = nil
	c.ApprovedBy = nil
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
