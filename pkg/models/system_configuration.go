package models

import (
	"encoding/json"
	"time"
)

// Configuration keys owned by the allocation core.
const (
	ConfigKeyOperationalMode     = "operational_mode"
	ConfigKeyMultiVendorEnabled  = "multi_vendor_enabled"
	ConfigKeyDarkStoreEnabled    = "dark_store_enabled"
	ConfigKeySelectionStrategy   = "vendor_selection_strategy"
	ConfigKeyAutoVendorSelection = "auto_vendor_selection"
)

// SystemConfiguration is a global key/value row. Values are stored as jsonb
// so booleans and structured settings share one table.
type SystemConfiguration struct {
	ID          string          `json:"id" db:"id"`
	Key         string          `json:"key" db:"key"`
	Value       json.RawMessage `json:"value" db:"value"`
	Description *string         `json:"description,omitempty" db:"description"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// UpsertConfigurationRequest sets a configuration key.
type UpsertConfigurationRequest struct {
	Key         string          `json:"key" validate:"required"`
	Value       json.RawMessage `json:"value" validate:"required"`
	Description *string         `json:"description,omitempty"`
}

// SwitchModeRequest is the request body for the mode-switch action.
type SwitchModeRequest struct {
	Mode string `json:"mode" validate:"required"`
}

// ModeStatus is the read model returned by the config endpoint.
type ModeStatus struct {
	OperationalMode    OperationalMode `json:"operational_mode"`
	MultiVendorEnabled bool            `json:"multi_vendor_enabled"`
	DarkStoreEnabled   bool            `json:"dark_store_enabled"`
}
