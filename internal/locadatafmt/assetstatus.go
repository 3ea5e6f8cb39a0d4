// Package locadatafmt holds the wire structures of the Loca asset status API.
package locadatafmt

import (
	"encoding/json"
)

// AssetStatusEntry is one element of the /assetstatuslist response array.
// All sub-objects are optional; absent ones decode to nil.
type AssetStatusEntry struct {
	Asset   *AssetData   `json:"Asset"`
	Device  *DeviceData  `json:"Device"`
	Spot    *SpotData    `json:"Spot"`
	History *HistoryData `json:"History"`
}

// AssetData identifies the tracked asset. Id is the identity key of the
// whole pipeline. Schedule is the asset's location-update schedule, kept
// raw: the service manages it and nothing here interprets it.
type AssetData struct {
	Id       int             `json:"id"`
	Label    string          `json:"label"`
	Serial   string          `json:"serial"`
	Brand    string          `json:"brand"`
	Model    string          `json:"model"`
	Group    int             `json:"group"`
	Type     int             `json:"type"`
	Schedule json.RawMessage `json:"schedule"`
}

// DeviceData describes the tracker hardware attached to the asset.
type DeviceData struct {
	Id      int `json:"id"`
	Type    int `json:"type"`
	Version int `json:"version"`
}

// SpotData is the last geocoded location resolved by the service.
type SpotData struct {
	Id        int      `json:"id"`
	Device    int      `json:"device"`
	Asset     int      `json:"asset"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Number    string   `json:"number"`
	Street    string   `json:"street"`
	City      string   `json:"city"`
	District  string   `json:"district"`
	Region    string   `json:"region"`
	State     string   `json:"state"`
	Zipcode   string   `json:"zipcode"`
	Country   string   `json:"country"`
	Time      *float64 `json:"time"`
}

// HistoryData is the most recent raw telemetry sample. Time values are unix
// timestamps in seconds, or milliseconds when larger than 1e10.
type HistoryData struct {
	Time      *float64 `json:"time"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Speed     *float64 `json:"speed"`
	Motion    *int     `json:"motion"`
	Charge    *float64 `json:"charge"`
	HDOP      *float64 `json:"HDOP"`
	SATU      *int     `json:"SATU"`
	Strength  *int     `json:"strength"`
	Quality   *int     `json:"quality"`
}
