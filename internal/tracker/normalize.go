package tracker

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"loca2-asset-tracker/internal/locadatafmt"
	"loca2-asset-tracker/internal/models"
)

// Timestamps above this value are unix milliseconds, everything below is
// seconds. Must be preserved exactly; the upstream service emits both.
const millisThreshold = 1e10

// Normalize turns the raw asset status array into the per-asset device map.
// Pure and deterministic: no I/O, no clock reads. Entries that cannot be
// decoded or that carry no Asset id are skipped, never fatal; the second
// return value counts them. Duplicate asset ids resolve last-wins.
func Normalize(raw []json.RawMessage) (map[int]models.Device, int) {
	devices := make(map[int]models.Device, len(raw))
	skipped := 0

	for _, msg := range raw {
		var entry locadatafmt.AssetStatusEntry
		if err := json.Unmarshal(msg, &entry); err != nil {
			skipped++
			continue
		}

		if entry.Asset == nil || entry.Asset.Id == 0 {
			skipped++
			continue
		}

		devices[entry.Asset.Id] = normalizeEntry(&entry)
	}

	return devices, skipped
}

func normalizeEntry(entry *locadatafmt.AssetStatusEntry) models.Device {
	asset := entry.Asset

	name := asset.Label
	if name == "" {
		name = fmt.Sprintf("Asset %d", asset.Id)
	}

	d := models.Device{
		Id:          asset.Id,
		Name:        name,
		DeviceType:  deviceTypeFromId(asset.Type),
		Serial:      asset.Serial,
		Brand:       asset.Brand,
		Model:       asset.Model,
		Group:       asset.Group,
		AssetTypeId: asset.Type,
	}

	if entry.Device != nil {
		d.DeviceId = entry.Device.Id
		d.DeviceTypeId = entry.Device.Type
		d.DeviceVersion = entry.Device.Version
	}

	d.Latitude, d.Longitude = coordinates(entry)

	if spot := entry.Spot; spot != nil {
		d.Address = composeAddress(spot)
		d.City = spot.City
		d.State = spot.State
		d.Country = spot.Country
		d.Zipcode = spot.Zipcode
		d.LocationTime = unixTime(spot.Time)
	}

	if hist := entry.History; hist != nil {
		d.BatteryLevel = batteryLevel(hist.Charge)
		d.Speed = hist.Speed
		d.Motion = hist.Motion
		d.SignalStrength = hist.Strength
		d.GpsAccuracy = hist.HDOP
		d.Satellites = hist.SATU
		d.LastSeen = unixTime(hist.Time)
	}

	// History is the freshest telemetry; fall back to the geocoded spot.
	if d.LastSeen == nil {
		d.LastSeen = d.LocationTime
	}

	return d
}

// coordinates prefers the History fix over the geocoded Spot. A pair is
// only usable when both members are present; a lone latitude or longitude
// counts as no fix at all.
func coordinates(entry *locadatafmt.AssetStatusEntry) (*float64, *float64) {
	if hist := entry.History; hist != nil && hist.Latitude != nil && hist.Longitude != nil {
		return hist.Latitude, hist.Longitude
	}
	if spot := entry.Spot; spot != nil && spot.Latitude != nil && spot.Longitude != nil {
		return spot.Latitude, spot.Longitude
	}
	return nil, nil
}

// composeAddress builds a single line: "number street, city, state,
// country, zipcode", with empty parts omitted.
func composeAddress(spot *locadatafmt.SpotData) string {
	street := strings.TrimSpace(spot.Number + " " + spot.Street)

	parts := make([]string, 0, 5)
	for _, p := range []string{street, spot.City, spot.State, spot.Country, spot.Zipcode} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, ", ")
}

// unixTime converts a unix timestamp to UTC, auto-detecting milliseconds.
func unixTime(ts *float64) *time.Time {
	if ts == nil {
		return nil
	}

	v := *ts
	if v > millisThreshold {
		v = v / 1000
	}

	sec := int64(v)
	nsec := int64((v - float64(sec)) * float64(time.Second))
	t := time.Unix(sec, nsec).UTC()

	return &t
}

// batteryLevel clamps the charge percentage into 0-100.
func batteryLevel(charge *float64) *int {
	if charge == nil {
		return nil
	}

	level := int(*charge)
	if level < 0 {
		level = 0
	} else if level > 100 {
		level = 100
	}

	return &level
}

func deviceTypeFromId(typeId int) string {
	switch typeId {
	case 1:
		return models.DeviceTypeGps
	case 2:
		return models.DeviceTypeMarine
	case 3:
		return models.DeviceTypeVehicle
	case 4:
		return models.DeviceTypePersonal
	case 5:
		return models.DeviceTypeAsset
	default:
		return models.DeviceTypeGeneric
	}
}
