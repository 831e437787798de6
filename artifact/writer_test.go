package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bluele/gcache"

	"github.com/theoremus-urban-solutions/bus-tracker/gtfsrt"
	"github.com/theoremus-urban-solutions/bus-tracker/mapview"
	"github.com/theoremus-urban-solutions/bus-tracker/query"
)

type recordingRenderer struct {
	docs []mapview.Document
	err  error
}

func (r *recordingRenderer) Render(w io.Writer, doc mapview.Document) error {
	r.docs = append(r.docs, doc)
	if r.err != nil {
		return r.err
	}
	_, err := io.WriteString(w, "<html></html>")
	return err
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var writeTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func newWriter(t *testing.T, r mapview.Renderer) (*Writer, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "static", "locationdata")
	cfg := Config{
		OutputDir:    dir,
		PublicPrefix: "/static/locationdata/",
		Center:       mapview.LatLon{Lat: 44.6488, Lon: -63.5752},
		Zoom:         12,
	}
	return NewWriter(cfg, r, fixedClock{writeTime}), dir
}

func str(s string) *string { return &s }

func routeResult() query.Result {
	rec := gtfsrt.VehicleRecord{VehicleID: "1001", Label: str("Bus 1001"), RouteID: str("1"), TripID: str("T1")}
	return query.Result{
		Criteria: query.ByRoute{RouteID: "1"},
		Matches:  []query.Match{{Record: rec.WithPosition(44.65, -63.58)}},
	}
}

// TestWrite_NamesAndLocators tests deterministic file names and public URLs
func TestWrite_NamesAndLocators(t *testing.T) {
	w, dir := newWriter(t, &recordingRenderer{})

	loc, err := w.Write(context.Background(), routeResult(), "route")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if want := filepath.Join(dir, "route_20240309_140507.json"); loc.DataPath != want {
		t.Errorf("DataPath = %q, want %q", loc.DataPath, want)
	}
	if want := filepath.Join(dir, "route_20240309_140507.html"); loc.MapPath != want {
		t.Errorf("MapPath = %q, want %q", loc.MapPath, want)
	}
	if loc.DataURL != "/static/locationdata/route_20240309_140507.json" {
		t.Errorf("DataURL = %q", loc.DataURL)
	}
	if loc.MapURL != "/static/locationdata/route_20240309_140507.html" {
		t.Errorf("MapURL = %q", loc.MapURL)
	}
	for _, p := range []string{loc.DataPath, loc.MapPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("artifact %s missing: %v", p, err)
		}
	}
}

// TestWrite_DataContents tests the JSON layout of persisted records
func TestWrite_DataContents(t *testing.T) {
	w, _ := newWriter(t, &recordingRenderer{})
	d := 1.23
	rec := gtfsrt.VehicleRecord{VehicleID: "7"}
	radius := query.Result{
		Criteria: query.ByRadius{Lat: 44.6, Lon: -63.5, RadiusKm: 5},
		Matches:  []query.Match{{Record: rec.WithPosition(44.61, -63.51), DistanceKm: &d}},
	}

	tests := []struct {
		name         string
		result       query.Result
		label        string
		wantDistance bool
	}{
		{"route result has no distance", routeResult(), "route", false},
		{"radius result carries distance", radius, "buses_within_5.0km", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := w.Write(context.Background(), tt.result, tt.label)
			if err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			raw, err := os.ReadFile(loc.DataPath)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(raw), "\n    {") {
				t.Error("expected 4-space indentation")
			}
			var rows []map[string]interface{}
			if err := json.Unmarshal(raw, &rows); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("len(rows) = %d, want 1", len(rows))
			}
			for _, key := range []string{"bus_id", "trip_id", "route_id", "start_date", "latitude", "longitude", "timestamp", "speed"} {
				if _, ok := rows[0][key]; !ok {
					t.Errorf("row missing %q", key)
				}
			}
			_, hasDistance := rows[0]["distance_from_user_km"]
			if hasDistance != tt.wantDistance {
				t.Errorf("distance_from_user_km present = %v, want %v", hasDistance, tt.wantDistance)
			}
		})
	}
}

// TestWrite_EmptyResult tests that an empty result writes an empty array
func TestWrite_EmptyResult(t *testing.T) {
	w, _ := newWriter(t, &recordingRenderer{})
	loc, err := w.Write(context.Background(), query.Result{Criteria: query.All{}}, "all")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	raw, _ := os.ReadFile(loc.DataPath)
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("data = %q, want []", raw)
	}
}

// TestWrite_SameSecondDoesNotCollide tests suffixing when the token is already taken
func TestWrite_SameSecondDoesNotCollide(t *testing.T) {
	w, _ := newWriter(t, &recordingRenderer{})

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		loc, err := w.Write(context.Background(), routeResult(), "route")
		if err != nil {
			t.Fatalf("Write() #%d error = %v", i, err)
		}
		if seen[loc.DataPath] {
			t.Fatalf("Write() #%d reused %s", i, loc.DataPath)
		}
		seen[loc.DataPath] = true
		if strings.TrimSuffix(loc.DataPath, ".json") != strings.TrimSuffix(loc.MapPath, ".html") {
			t.Errorf("pair mismatch: %s / %s", loc.DataPath, loc.MapPath)
		}
	}
	if !seen[filepath.Join(filepath.Dir(firstKey(seen)), "route_20240309_140507-2.json")] {
		t.Errorf("expected a -2 suffixed artifact, got %v", seen)
	}
}

func firstKey(m map[string]bool) string {
	for k := range m {
		return k
	}
	return ""
}

// TestWrite_MapDocument tests marker and centre selection for the renderer
func TestWrite_MapDocument(t *testing.T) {
	r := &recordingRenderer{}
	w, _ := newWriter(t, r)
	d := 0.5
	noPos := gtfsrt.VehicleRecord{VehicleID: "ghost"}
	rec := gtfsrt.VehicleRecord{VehicleID: "9", Label: str("Bus 9")}
	radius := query.Result{
		Criteria: query.ByRadius{Lat: 45, Lon: -63, RadiusKm: 1},
		Matches: []query.Match{
			{Record: rec.WithPosition(45.001, -63), DistanceKm: &d},
		},
	}

	if _, err := w.Write(context.Background(), radius, "buses_within_1.0km"); err != nil {
		t.Fatal(err)
	}
	all := query.Result{Criteria: query.All{}, Matches: []query.Match{{Record: noPos}}}
	if _, err := w.Write(context.Background(), all, "all"); err != nil {
		t.Fatal(err)
	}

	if got := r.docs[0].Center; got != (mapview.LatLon{Lat: 45, Lon: -63}) {
		t.Errorf("radius centre = %+v, want query point", got)
	}
	if got := r.docs[0].Markers[0].Label; got != "Bus ID: Bus 9\nDistance: 0.5 km" {
		t.Errorf("popup = %q", got)
	}
	if got := r.docs[1].Center; got != (mapview.LatLon{Lat: 44.6488, Lon: -63.5752}) {
		t.Errorf("default centre = %+v", got)
	}
	if len(r.docs[1].Markers) != 0 {
		t.Errorf("unpositioned record produced a marker")
	}
}

// TestWrite_RenderFailureKeepsData tests that a map failure does not undo the data file
func TestWrite_RenderFailureKeepsData(t *testing.T) {
	w, _ := newWriter(t, &recordingRenderer{err: errors.New("renderer down")})

	loc, err := w.Write(context.Background(), routeResult(), "route")
	var awe *ArtifactWriteError
	if !errors.As(err, &awe) {
		t.Fatalf("Write() error = %v, want *ArtifactWriteError", err)
	}
	if awe.Path != loc.MapPath {
		t.Errorf("error path = %q, want %q", awe.Path, loc.MapPath)
	}
	raw, readErr := os.ReadFile(loc.DataPath)
	if readErr != nil || len(raw) == 0 {
		t.Errorf("data file not kept: %v", readErr)
	}
}

// TestWrite_UnwritableDir tests that directory creation failures are typed
func TestWrite_UnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := NewWriter(Config{OutputDir: filepath.Join(blocker, "sub")}, &recordingRenderer{}, gcache.NewRealClock())

	_, err := w.Write(context.Background(), routeResult(), "route")
	var awe *ArtifactWriteError
	if !errors.As(err, &awe) {
		t.Fatalf("Write() error = %v, want *ArtifactWriteError", err)
	}
}
