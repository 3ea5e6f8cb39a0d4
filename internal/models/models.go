package models

import (
	"time"
)

// Device type names derived from the asset type code.
const (
	DeviceTypeGps      = "gps_tracker"
	DeviceTypeMarine   = "marine_tracker"
	DeviceTypeVehicle  = "vehicle_tracker"
	DeviceTypePersonal = "personal_tracker"
	DeviceTypeAsset    = "asset_tracker"
	DeviceTypeGeneric  = "generic_tracker"
)

// Device is the flat per-asset record produced by the normalizer. A new
// value is built in full on every poll cycle; published maps are never
// mutated in place. Latitude and Longitude are both set or both nil.
type Device struct {
	Id             int        `gorm:"primaryKey" json:"id"`
	Name           string     `json:"name"`
	DeviceType     string     `json:"device_type"`
	Serial         string     `json:"serial"`
	Brand          string     `json:"brand"`
	Model          string     `json:"model"`
	Group          int        `json:"group"`
	AssetTypeId    int        `json:"asset_type_id"`
	DeviceId       int        `json:"device_id"`
	DeviceTypeId   int        `json:"device_type_id"`
	DeviceVersion  int        `json:"device_version"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	Address        string     `json:"address"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Country        string     `json:"country"`
	Zipcode        string     `json:"zipcode"`
	LocationTime   *time.Time `json:"location_time"`
	BatteryLevel   *int       `json:"battery_level"`
	LastSeen       *time.Time `json:"last_seen"`
	Speed          *float64   `json:"speed"`
	Motion         *int       `json:"motion"`
	SignalStrength *int       `json:"signal_strength"`
	GpsAccuracy    *float64   `json:"gps_accuracy"`
	Satellites     *int       `json:"satellites"`
	CreatedAt      time.Time  `json:"-"`
	UpdatedAt      time.Time  `json:"-"`
}

// HasLocation reports whether the device carries a usable coordinate pair.
func (d *Device) HasLocation() bool {
	return d.Latitude != nil && d.Longitude != nil
}
