// Package artifact persists query results as a JSON data file and an HTML map
// sharing one timestamped name under the output directory.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bluele/gcache"
	"github.com/rs/zerolog/log"

	"github.com/theoremus-urban-solutions/bus-tracker/internal/metrics"
	"github.com/theoremus-urban-solutions/bus-tracker/mapview"
	"github.com/theoremus-urban-solutions/bus-tracker/query"
)

// TimestampLayout is the second-resolution token embedded in artifact names
const TimestampLayout = "20060102_150405"

const maxSuffix = 1000

// ArtifactWriteError reports a file that could not be written
type ArtifactWriteError struct {
	Path string
	Err  error
}

func (e *ArtifactWriteError) Error() string {
	return fmt.Sprintf("write artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactWriteError) Unwrap() error { return e.Err }

// Locators points at a written artifact pair
type Locators struct {
	DataURL  string
	MapURL   string
	DataPath string
	MapPath  string
}

// Config controls where artifacts go and how maps are framed
type Config struct {
	OutputDir    string
	PublicPrefix string
	Center       mapview.LatLon
	Zoom         int
}

// Writer writes artifact pairs
type Writer struct {
	cfg      Config
	renderer mapview.Renderer
	clock    gcache.Clock
}

// NewWriter creates a writer. A nil clock uses wall time.
func NewWriter(cfg Config, renderer mapview.Renderer, clock gcache.Clock) *Writer {
	if clock == nil {
		clock = gcache.NewRealClock()
	}
	return &Writer{cfg: cfg, renderer: renderer, clock: clock}
}

// Write stores result as <label>_<token>.json and <label>_<token>.html. The two
// files are written independently; a failure in one leaves the other in place.
func (w *Writer) Write(ctx context.Context, result query.Result, label string) (Locators, error) {
	if err := ctx.Err(); err != nil {
		return Locators{}, err
	}
	if err := os.MkdirAll(w.cfg.OutputDir, 0o755); err != nil {
		return Locators{}, &ArtifactWriteError{Path: w.cfg.OutputDir, Err: err}
	}

	base, dataFile, mapFile, err := w.reserve(label + "_" + w.clock.Now().Format(TimestampLayout))
	if err != nil {
		return Locators{}, err
	}

	loc := Locators{
		DataPath: dataFile.Name(),
		MapPath:  mapFile.Name(),
		DataURL:  w.publicURL(base + ".json"),
		MapURL:   w.publicURL(base + ".html"),
	}

	dataErr := finish(dataFile, "data", func(out io.Writer) error { return writeData(out, result) })
	mapErr := finish(mapFile, "map", func(out io.Writer) error { return w.renderer.Render(out, w.document(result, label)) })

	if err := firstWriteError(dataErr, mapErr); err != nil {
		return loc, err
	}
	log.Debug().Str("data", loc.DataPath).Str("map", loc.MapPath).Int("count", result.Len()).Msg("Artifacts written")
	return loc, nil
}

// reserve creates both files exclusively, adding a -N suffix to the token
// when another writer already claimed it.
func (w *Writer) reserve(name string) (string, *os.File, *os.File, error) {
	for n := 0; n < maxSuffix; n++ {
		base := name
		if n > 0 {
			base = name + "-" + strconv.Itoa(n)
		}
		dataPath := filepath.Join(w.cfg.OutputDir, base+".json")
		dataFile, err := createExclusive(dataPath)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", nil, nil, &ArtifactWriteError{Path: dataPath, Err: err}
		}

		mapPath := filepath.Join(w.cfg.OutputDir, base+".html")
		mapFile, err := createExclusive(mapPath)
		if err != nil {
			_ = dataFile.Close()
			_ = os.Remove(dataPath)
			if errors.Is(err, os.ErrExist) {
				continue
			}
			return "", nil, nil, &ArtifactWriteError{Path: mapPath, Err: err}
		}
		return base, dataFile, mapFile, nil
	}
	return "", nil, nil, &ArtifactWriteError{
		Path: filepath.Join(w.cfg.OutputDir, name),
		Err:  fmt.Errorf("no free name after %d attempts", maxSuffix),
	}
}

func createExclusive(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

func finish(f *os.File, kind string, write func(io.Writer) error) error {
	err := write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		metrics.ArtifactsWritten.WithLabelValues(kind, "error").Inc()
		log.Error().Err(err).Str("path", f.Name()).Msg("Failed to write artifact")
		return &ArtifactWriteError{Path: f.Name(), Err: err}
	}
	metrics.ArtifactsWritten.WithLabelValues(kind, "ok").Inc()
	return nil
}

func firstWriteError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) publicURL(name string) string {
	return strings.TrimSuffix(w.cfg.PublicPrefix, "/") + "/" + name
}

func (w *Writer) document(result query.Result, label string) mapview.Document {
	doc := mapview.Document{
		Title:   label,
		Center:  w.cfg.Center,
		Zoom:    w.cfg.Zoom,
		Markers: make([]mapview.Marker, 0, result.Len()),
	}
	if r, ok := result.Criteria.(query.ByRadius); ok {
		doc.Center = mapview.LatLon{Lat: r.Lat, Lon: r.Lon}
	}
	for _, m := range result.Matches {
		if !m.Record.HasPosition() {
			continue
		}
		doc.Markers = append(doc.Markers, mapview.Marker{
			Lat:   m.Record.Latitude,
			Lon:   m.Record.Longitude,
			Label: popupText(m),
		})
	}
	return doc
}

func popupText(m query.Match) string {
	name := m.Record.VehicleID
	if m.Record.Label != nil && *m.Record.Label != "" {
		name = *m.Record.Label
	}
	if m.DistanceKm != nil {
		return fmt.Sprintf("Bus ID: %s\nDistance: %s km", name, strconv.FormatFloat(*m.DistanceKm, 'f', -1, 64))
	}
	route := "unknown"
	if m.Record.RouteID != nil {
		route = *m.Record.RouteID
	}
	return fmt.Sprintf("Bus ID: %s\nRoute ID: %s", name, route)
}

// row is the persisted form of one match
type row struct {
	BusID              string   `json:"bus_id"`
	Label              *string  `json:"label"`
	TripID             *string  `json:"trip_id"`
	RouteID            *string  `json:"route_id"`
	StartDate          *string  `json:"start_date"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	Timestamp          *int64   `json:"timestamp"`
	Speed              *float64 `json:"speed"`
	DistanceFromUserKm *float64 `json:"distance_from_user_km,omitempty"`
}

func writeData(out io.Writer, result query.Result) error {
	rows := make([]row, 0, result.Len())
	for _, m := range result.Matches {
		r := m.Record
		item := row{
			BusID:              r.VehicleID,
			Label:              r.Label,
			TripID:             r.TripID,
			RouteID:            r.RouteID,
			StartDate:          r.StartDate,
			Timestamp:          r.Timestamp,
			Speed:              r.Speed,
			DistanceFromUserKm: m.DistanceKm,
		}
		if r.HasPosition() {
			lat, lon := r.Latitude, r.Longitude
			item.Latitude, item.Longitude = &lat, &lon
		}
		rows = append(rows, item)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "    ")
	return enc.Encode(rows)
}
