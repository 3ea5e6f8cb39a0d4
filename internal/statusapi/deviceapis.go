package statusapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"loca2-asset-tracker/internal/models"
)

// DeviceExtView is the external view of a normalized device.
type DeviceExtView struct {
	models.Device
}

func (e *DeviceExtView) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// StatusExtView reports source health alongside snapshot metadata.
type StatusExtView struct {
	Available       bool   `json:"available"`
	Failures        int    `json:"consecutive_failures"`
	Devices         int    `json:"devices"`
	LastUpdate      string `json:"last_update"`
	IntervalSeconds int    `json:"interval_seconds"`
}

func (e *StatusExtView) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (s *Server) apiDeviceRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.apiDeviceGetAll)
	r.Get("/{assetid}", s.apiDeviceGet)

	return r
}

func (s *Server) apiDeviceGetAll(w http.ResponseWriter, r *http.Request) {
	devices, _ := s.source.Snapshot()

	ids := make([]int, 0, len(devices))
	for id := range devices {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	outs := []render.Renderer{}
	for _, id := range ids {
		d := devices[id]
		outs = append(outs, &DeviceExtView{Device: d})
	}

	render.RenderList(w, r, outs)
}

func (s *Server) apiDeviceGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "assetid")
	id, err := strconv.Atoi(key)
	if err != nil {
		render.Render(w, r, s.httpErrInvalidRequest(fmt.Errorf("bad asset id %q", key)))
		return
	}

	device, ok := s.source.Device(id)
	if !ok {
		render.Render(w, r, s.httpErrNotFound(fmt.Errorf("unknown asset id %d", id)))
		return
	}

	render.Render(w, r, &DeviceExtView{Device: device})
}

func (s *Server) apiStatusGet(w http.ResponseWriter, r *http.Request) {
	devices, lastUpdate := s.source.Snapshot()

	updated := ""
	if !lastUpdate.IsZero() {
		updated = lastUpdate.UTC().Format(time.RFC3339)
	}

	render.Render(w, r, &StatusExtView{
		Available:       s.source.Available(),
		Failures:        s.source.Failures(),
		Devices:         len(devices),
		LastUpdate:      updated,
		IntervalSeconds: int(s.source.Interval() / time.Second),
	})
}
