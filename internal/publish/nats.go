// Package publish pushes position messages to NATS after every successful
// poll cycle.
package publish

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"loca2-asset-tracker/internal/models"
)

// Position is the per-device message published on the subject. Devices
// without a coordinate fix are not published.
type Position struct {
	AssetId      int      `json:"asset_id"`
	Name         string   `json:"name"`
	DeviceType   string   `json:"device_type"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Speed        *float64 `json:"speed,omitempty"`
	BatteryLevel *int     `json:"battery_level,omitempty"`
	LastSeen     *string  `json:"last_seen,omitempty"`
}

type Publisher struct {
	nc      *nats.Conn
	subject string
	log     zerolog.Logger
}

func New(url string, subject string, log zerolog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		nc:      nc,
		subject: subject,
		log:     log.With().Str("component", "publish").Logger(),
	}, nil
}

// Publish sends one message per located device. Publish errors are logged
// and never fail the poll cycle.
func (p *Publisher) Publish(devices map[int]models.Device) {
	published := 0
	for _, d := range devices {
		if !d.HasLocation() {
			continue
		}

		pos := Position{
			AssetId:      d.Id,
			Name:         d.Name,
			DeviceType:   d.DeviceType,
			Latitude:     *d.Latitude,
			Longitude:    *d.Longitude,
			Speed:        d.Speed,
			BatteryLevel: d.BatteryLevel,
		}
		if d.LastSeen != nil {
			seen := d.LastSeen.UTC().Format(time.RFC3339)
			pos.LastSeen = &seen
		}

		data, err := json.Marshal(&pos)
		if err != nil {
			p.log.Error().Err(err).Int("asset_id", d.Id).Msg("failed to marshal position")
			continue
		}

		if err := p.nc.Publish(p.subject, data); err != nil {
			p.log.Error().Err(err).Int("asset_id", d.Id).Msg("failed to publish position")
			continue
		}
		published++
	}

	p.log.Debug().Int("published", published).Str("subject", p.subject).Msg("snapshot published")
}

func (p *Publisher) Close() {
	p.nc.Close()
}
