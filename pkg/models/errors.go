package models

import "errors"

var (
	// ErrConfigurationMissing indicates a required configuration key is absent
	// from the store. Fatal; points at a broken deployment or seed.
	ErrConfigurationMissing = errors.New("required configuration key is missing")

	// ErrInvalidMode indicates an operational mode outside the three
	// recognized values. On a read path this means the configuration store
	// has been corrupted, since the mode switch validates its input.
	ErrInvalidMode = errors.New("unrecognized operational mode")

	// ErrDuplicateRule indicates a write would violate the one-active-rule-
	// per-zone-and-subcategory invariant.
	ErrDuplicateRule = errors.New("an active allocation rule already exists for this zone and subcategory")

	// ErrDuplicateAssignment indicates a write would violate the one-active-
	// assignment-per-zone-and-subcategory invariant.
	ErrDuplicateAssignment = errors.New("an active subcategory assignment already exists for this zone and subcategory")

	// ErrInvalidVendorKind indicates an unrecognized vendor kind value.
	ErrInvalidVendorKind = errors.New("unrecognized vendor kind")

	// ErrInvalidStockLevels indicates a write where reserved exceeds stock or
	// either quantity is negative.
	ErrInvalidStockLevels = errors.New("stock quantity must cover the reserved quantity and both must be non-negative")
)
