package apperr

import "errors"

var (
	// ErrTenantRequired is returned when no company id can be resolved for a request.
	ErrTenantRequired = errors.New("company id is required")
	// ErrNotFound is returned when a referenced entity does not exist or is
	// owned by another company. Cross-tenant lookups answer with this rather
	// than a dedicated error so ownership of foreign ids is not leaked.
	ErrNotFound = errors.New("entity not found")
	// ErrMissingField is returned when a required request field is absent.
	ErrMissingField = errors.New("missing required field")
)
