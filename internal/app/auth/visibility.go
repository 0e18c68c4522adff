package auth

import "github.com/yigit/campusfound/internal/app/models"

// Scope tells the policy whether the caller asked for one record or a listing
type Scope int

const (
	ScopeListing Scope = iota
	ScopeDetail
)

// VisibleProjection applies the visibility policy. It returns nil when the item is
// excluded for the principal, otherwise a copy that is safe to hand to the caller.
func VisibleProjection(p Principal, item *models.Item, scope Scope) *models.Item {
	if item == nil {
		return nil
	}
	privileged := p.Owns(item.OwnerID) || p.IsAdmin()

	if item.Status != models.ItemStatusApproved {
		if !privileged {
			return nil
		}
		return item.Clone()
	}

	if privileged && scope == ScopeDetail {
		return item.Clone()
	}
	return item.Public()
}

// FilterVisible projects every item of a listing and drops the excluded ones
func FilterVisible(p Principal, items []*models.Item) []*models.Item {
	out := make([]*models.Item, 0, len(items))
	for _, item := range items {
		if projected := VisibleProjection(p, item, ScopeListing); projected != nil {
			out = append(out, projected)
		}
	}
	return out
}
