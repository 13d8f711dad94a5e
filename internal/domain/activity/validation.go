package activity

import "strings"

// ValidateCreateInput validates fields required to create a record.
func ValidateCreateInput(req CreateRequest) error {
	if !req.Category.Valid() {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(req.ChildID) == "" {
		return ErrInvalidInput
	}
	if req.OccurredAt.IsZero() {
		return ErrInvalidInput
	}
	return req.Payload.Validate(req.Category)
}

// ValidateUpdateInput validates the shape of an update before the current
// record is read. Payload/category agreement is checked afterwards.
func ValidateUpdateInput(req UpdateRequest) error {
	if strings.TrimSpace(req.ID) == "" {
		return ErrInvalidInput
	}
	if req.Payload == nil && req.Notes == nil && req.OccurredAt == nil {
		return ErrInvalidInput
	}
	if req.OccurredAt != nil && req.OccurredAt.IsZero() {
		return ErrInvalidInput
	}
	return nil
}
