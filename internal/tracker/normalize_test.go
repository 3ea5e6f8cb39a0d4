package tracker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loca2-asset-tracker/internal/models"
)

func rawEntries(t *testing.T, entries ...string) []json.RawMessage {
	t.Helper()

	raw := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		raw = append(raw, json.RawMessage(e))
	}
	return raw
}

func TestNormalizeKeySet(t *testing.T) {
	raw := rawEntries(t,
		`{"Asset": {"id": 1, "label": "Boat", "type": 2}}`,
		`{"Asset": {"id": 2, "label": "Car", "type": 3}}`,
		`{"Spot": {"latitude": 52.0, "longitude": 5.0}}`,
		`{"Asset": {"id": 3}}`,
	)

	devices, skipped := Normalize(raw)

	assert.Equal(t, 1, skipped)
	require.Len(t, devices, 3)
	assert.Contains(t, devices, 1)
	assert.Contains(t, devices, 2)
	assert.Contains(t, devices, 3)
}

func TestNormalizeSkipsMalformedRecord(t *testing.T) {
	raw := rawEntries(t,
		`{"Asset": {"id": "not-a-number"}}`,
		`{"Asset": {"id": 7, "label": "OK"}}`,
	)

	devices, skipped := Normalize(raw)

	assert.Equal(t, 1, skipped)
	require.Len(t, devices, 1)
	assert.Equal(t, "OK", devices[7].Name)
}

func TestNormalizeDuplicateIdLastWins(t *testing.T) {
	raw := rawEntries(t,
		`{"Asset": {"id": 5, "label": "first"}}`,
		`{"Asset": {"id": 5, "label": "second"}}`,
	)

	devices, skipped := Normalize(raw)

	assert.Equal(t, 0, skipped)
	require.Len(t, devices, 1)
	assert.Equal(t, "second", devices[5].Name)
}

func TestNormalizeDefaultName(t *testing.T) {
	raw := rawEntries(t, `{"Asset": {"id": 42}}`)

	devices, _ := Normalize(raw)

	require.Contains(t, devices, 42)
	assert.Equal(t, "Asset 42", devices[42].Name)
}

func TestTimestampHeuristic(t *testing.T) {
	// 1752840052 seconds and 1752840052000 milliseconds are the same
	// instant; values above 1e10 are treated as milliseconds.
	seconds := float64(1752840052)
	millis := float64(1752840052000)

	fromSeconds := unixTime(&seconds)
	fromMillis := unixTime(&millis)

	require.NotNil(t, fromSeconds)
	require.NotNil(t, fromMillis)
	assert.True(t, fromSeconds.Equal(*fromMillis))
	assert.Equal(t, int64(1752840052), fromSeconds.Unix())

	assert.Nil(t, unixTime(nil))
}

func TestCoordinateFallback(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		wantLat *float64
		wantLon *float64
	}{
		{
			name:    "spot only",
			entry:   `{"Asset": {"id": 1}, "Spot": {"latitude": 52.228127, "longitude": 5.074509}}`,
			wantLat: f64(52.228127),
			wantLon: f64(5.074509),
		},
		{
			name: "history preferred over spot",
			entry: `{"Asset": {"id": 1},
				"Spot": {"latitude": 52.0, "longitude": 5.0},
				"History": {"latitude": 51.5, "longitude": 4.5}}`,
			wantLat: f64(51.5),
			wantLon: f64(4.5),
		},
		{
			name:  "neither present",
			entry: `{"Asset": {"id": 1}}`,
		},
		{
			name:  "lone latitude is no fix",
			entry: `{"Asset": {"id": 1}, "Spot": {"latitude": 52.0}}`,
		},
		{
			name: "incomplete history falls back to spot",
			entry: `{"Asset": {"id": 1},
				"Spot": {"latitude": 52.0, "longitude": 5.0},
				"History": {"latitude": 51.5}}`,
			wantLat: f64(52.0),
			wantLon: f64(5.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			devices, _ := Normalize(rawEntries(t, tt.entry))
			require.Contains(t, devices, 1)
			d := devices[1]

			if tt.wantLat == nil {
				assert.Nil(t, d.Latitude)
				assert.Nil(t, d.Longitude)
				assert.False(t, d.HasLocation())
			} else {
				require.True(t, d.HasLocation())
				assert.InDelta(t, *tt.wantLat, *d.Latitude, 1e-9)
				assert.InDelta(t, *tt.wantLon, *d.Longitude, 1e-9)
			}
		})
	}
}

func TestDeviceTypeMapping(t *testing.T) {
	tests := []struct {
		typeId int
		want   string
	}{
		{1, models.DeviceTypeGps},
		{2, models.DeviceTypeMarine},
		{3, models.DeviceTypeVehicle},
		{4, models.DeviceTypePersonal},
		{5, models.DeviceTypeAsset},
		{0, models.DeviceTypeGeneric},
		{99, models.DeviceTypeGeneric},
		{-1, models.DeviceTypeGeneric},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, deviceTypeFromId(tt.typeId), "type id %d", tt.typeId)
	}
}

func TestComposeAddress(t *testing.T) {
	devices, _ := Normalize(rawEntries(t,
		`{"Asset": {"id": 1},
		  "Spot": {"number": "12", "street": "Kerkstraat", "city": "Amsterdam",
		           "state": "NH", "country": "NL", "zipcode": "1012AB"}}`))

	require.Contains(t, devices, 1)
	assert.Equal(t, "12 Kerkstraat, Amsterdam, NH, NL, 1012AB", devices[1].Address)
}

func TestComposeAddressOmitsEmptyParts(t *testing.T) {
	devices, _ := Normalize(rawEntries(t,
		`{"Asset": {"id": 1}, "Spot": {"city": "Utrecht", "country": "NL"}}`))

	require.Contains(t, devices, 1)
	assert.Equal(t, "Utrecht, NL", devices[1].Address)
}

func TestBatteryLevelClamped(t *testing.T) {
	devices, _ := Normalize(rawEntries(t,
		`{"Asset": {"id": 1}, "History": {"charge": 130}}`,
		`{"Asset": {"id": 2}, "History": {"charge": -5}}`,
	))

	require.NotNil(t, devices[1].BatteryLevel)
	assert.Equal(t, 100, *devices[1].BatteryLevel)
	require.NotNil(t, devices[2].BatteryLevel)
	assert.Equal(t, 0, *devices[2].BatteryLevel)
}

func TestNormalizeEndToEnd(t *testing.T) {
	devices, skipped := Normalize(rawEntries(t,
		`{"Asset": {"id": 16250, "label": "Van 3", "type": 3, "serial": "SN-16250"},
		  "Device": {"id": 900, "type": 4, "version": 12},
		  "Spot": {"latitude": 52.228127, "longitude": 5.074509, "city": "Hilversum",
		           "country": "NL", "time": 1752830000},
		  "History": {"charge": 73, "time": 1752840052, "speed": 12.5, "motion": 1,
		              "strength": 21, "HDOP": 0.9, "SATU": 11}}`))

	assert.Equal(t, 0, skipped)
	require.Contains(t, devices, 16250)
	d := devices[16250]

	assert.Equal(t, "Van 3", d.Name)
	assert.Equal(t, models.DeviceTypeVehicle, d.DeviceType)
	assert.Equal(t, "SN-16250", d.Serial)
	assert.Equal(t, 900, d.DeviceId)
	assert.Equal(t, 12, d.DeviceVersion)

	require.NotNil(t, d.BatteryLevel)
	assert.Equal(t, 73, *d.BatteryLevel)

	// History carries no coordinates, so the spot fix is used.
	require.True(t, d.HasLocation())
	assert.InDelta(t, 52.228127, *d.Latitude, 1e-9)
	assert.InDelta(t, 5.074509, *d.Longitude, 1e-9)

	require.NotNil(t, d.LastSeen)
	assert.Equal(t, int64(1752840052), d.LastSeen.Unix())
	require.NotNil(t, d.LocationTime)
	assert.Equal(t, int64(1752830000), d.LocationTime.Unix())

	require.NotNil(t, d.Motion)
	assert.Equal(t, 1, *d.Motion)
	require.NotNil(t, d.GpsAccuracy)
	assert.InDelta(t, 0.9, *d.GpsAccuracy, 1e-9)
	require.NotNil(t, d.Satellites)
	assert.Equal(t, 11, *d.Satellites)
	require.NotNil(t, d.SignalStrength)
	assert.Equal(t, 21, *d.SignalStrength)
}

func f64(v float64) *float64 {
	return &v
}
