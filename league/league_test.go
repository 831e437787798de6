package league

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bluele/gcache"

	"github.com/theoremus-urban-solutions/bus-tracker/cache"
	"github.com/theoremus-urban-solutions/bus-tracker/upstream"
)

const bootstrapJSON = `{
  "elements": [
    {"id": 1, "web_name": "Keeper", "team": 1, "element_type": 1, "now_cost": 45, "total_points": 90, "minutes": 900, "form": "3.0"},
    {"id": 2, "web_name": "Striker", "team": 2, "element_type": 4, "now_cost": 120, "total_points": 150, "minutes": 1200, "goals_scored": 12, "form": "8.1"},
    {"id": 3, "web_name": "Bargain", "team": 1, "element_type": 3, "now_cost": 50, "total_points": 100, "minutes": 60, "form": "4.0"},
    {"id": 4, "web_name": "Unpriced", "team": 2, "element_type": 3, "now_cost": 0, "total_points": 10, "minutes": 400, "form": "0.0"},
    {"id": 5, "web_name": "Tied", "team": 2, "element_type": 4, "now_cost": 80, "total_points": 150, "minutes": 1000, "form": "6.0"}
  ],
  "teams": [
    {"id": 1, "name": "Arsenal", "short_name": "ARS"},
    {"id": 2, "name": "Liverpool", "short_name": "LIV"}
  ],
  "element_types": [
    {"id": 1, "singular_name_short": "GKP"},
    {"id": 3, "singular_name_short": "MID"},
    {"id": 4, "singular_name_short": "FWD"}
  ]
}`

const standingsJSON = `{
  "league": {"id": 247541, "name": "Office"},
  "standings": {"results": [
    {"entry": 11, "entry_name": "Alpha", "player_name": "Ana", "rank": 1, "total": 300},
    {"entry": 22, "entry_name": "Bravo", "player_name": "Ben", "rank": 2, "total": 280},
    {"entry": 33, "entry_name": "Charlie", "player_name": "Cal", "rank": 3, "total": 250}
  ]}
}`

func loadBootstrap(t *testing.T) *Bootstrap {
	t.Helper()
	srv, _ := newAPI(t, nil)
	b, err := newTestClient(srv.URL, nil).Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	return b
}

// newAPI stubs the game API. Entries listed in failing answer 500 on history.
func newAPI(t *testing.T, failing map[int]bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var standingsHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/bootstrap-static/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(bootstrapJSON))
	})
	mux.HandleFunc("/leagues-classic/247541/standings/", func(w http.ResponseWriter, r *http.Request) {
		standingsHits.Add(1)
		_, _ = w.Write([]byte(standingsJSON))
	})
	mux.HandleFunc("/entry/", func(w http.ResponseWriter, r *http.Request) {
		var entry int
		if _, err := fmt.Sscanf(r.URL.Path, "/entry/%d/history/", &entry); err != nil {
			http.NotFound(w, r)
			return
		}
		if failing[entry] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"current": [{"event": 1, "points": %d, "total_points": %d}, {"event": 2, "points": 50, "total_points": %d}]}`,
			entry, entry, entry+50)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &standingsHits
}

func newTestClient(baseURL string, clock gcache.Clock) *Client {
	if clock == nil {
		clock = gcache.NewFakeClock()
	}
	c := cache.New(8, cache.WithClock(clock))
	return NewClient(c, upstream.NewClient(time.Second), Config{
		BaseURL:     baseURL + "/",
		LeagueID:    247541,
		Concurrency: 2,
		TTL:         15 * time.Minute,
	})
}

func names(players []Player) string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.WebName)
	}
	return strings.Join(out, ",")
}

// TestPlayers tests the join and its filters
func TestPlayers(t *testing.T) {
	data := loadBootstrap(t)

	tests := []struct {
		name       string
		minMinutes int
		position   string
		want       string
	}{
		{"no filters", 0, "", "Keeper,Striker,Bargain,Unpriced,Tied"},
		{"minutes threshold", 500, "", "Keeper,Striker,Tied"},
		{"position is case-insensitive", 0, "fwd", "Striker,Tied"},
		{"both filters", 1100, "FWD", "Striker"},
		{"unknown position", 0, "XYZ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := names(Players(data, tt.minMinutes, tt.position)); got != tt.want {
				t.Errorf("Players() = %s, want %s", got, tt.want)
			}
		})
	}

	p := Players(data, 0, "GKP")[0]
	if p.TeamName != "Arsenal" || p.TeamShortName != "ARS" || p.Position != "GKP" {
		t.Errorf("joined player = %+v", p)
	}
}

// TestTopPerformers tests ranking by total points with stable ties
func TestTopPerformers(t *testing.T) {
	data := loadBootstrap(t)

	if got := names(TopPerformers(data, "", 3)); got != "Striker,Tied,Bargain" {
		t.Errorf("TopPerformers() = %s", got)
	}
	if got := names(TopPerformers(data, "mid", 10)); got != "Bargain,Unpriced" {
		t.Errorf("TopPerformers(mid) = %s", got)
	}
	if got := TopPerformers(data, "", 0); len(got) != 0 {
		t.Errorf("TopPerformers(limit 0) returned %d players", len(got))
	}
}

// TestValuePicks tests points-per-cost ranking
func TestValuePicks(t *testing.T) {
	data := loadBootstrap(t)

	picks := ValuePicks(data, 90, 10)
	if got := names(picks); got != "Keeper,Tied,Striker" {
		t.Errorf("ValuePicks() = %s", got)
	}
	if picks[0].ValueScore == nil || *picks[0].ValueScore != 2.0 {
		t.Errorf("Keeper value score = %v, want 2", picks[0].ValueScore)
	}
	if got := names(ValuePicks(data, 0, 1)); got != "Keeper" {
		t.Errorf("ValuePicks(limit 1) = %s", got)
	}
}

// TestLeagueHistory tests concurrent history fetching in standings order
func TestLeagueHistory(t *testing.T) {
	srv, _ := newAPI(t, map[int]bool{22: true})
	client := newTestClient(srv.URL, nil)

	gws, err := client.LeagueHistory(context.Background(), 10)
	if err != nil {
		t.Fatalf("LeagueHistory() error = %v", err)
	}
	if len(gws) != 4 {
		t.Fatalf("len(gameweeks) = %d, want 4 (failing manager skipped)", len(gws))
	}
	wantManagers := []int{11, 11, 33, 33}
	for i, gw := range gws {
		if gw.ManagerID != wantManagers[i] {
			t.Errorf("gameweeks[%d].ManagerID = %d, want %d", i, gw.ManagerID, wantManagers[i])
		}
	}
	if gws[0].ManagerName != "Ana" || gws[2].ManagerName != "Cal" {
		t.Errorf("manager names = %q, %q", gws[0].ManagerName, gws[2].ManagerName)
	}

	limited, _ := client.LeagueHistory(context.Background(), 1)
	if len(limited) != 2 {
		t.Errorf("LeagueHistory(limit 1) = %d gameweeks, want 2", len(limited))
	}
}

// TestStandingsWithHistory tests that failures leave an empty history
func TestStandingsWithHistory(t *testing.T) {
	srv, _ := newAPI(t, map[int]bool{33: true})
	managers, err := newTestClient(srv.URL, nil).StandingsWithHistory(context.Background(), 10)
	if err != nil {
		t.Fatalf("StandingsWithHistory() error = %v", err)
	}
	if len(managers) != 3 {
		t.Fatalf("len(managers) = %d, want 3", len(managers))
	}
	if len(managers[0].History) != 2 {
		t.Errorf("Ana history = %d gameweeks, want 2", len(managers[0].History))
	}
	if managers[2].History == nil || len(managers[2].History) != 0 {
		t.Errorf("failing manager history = %v, want empty", managers[2].History)
	}
}

// TestStandings_Cached tests that the league table is fetched once per TTL window
func TestStandings_Cached(t *testing.T) {
	srv, hits := newAPI(t, nil)
	clock := gcache.NewFakeClock()
	client := newTestClient(srv.URL, clock)

	for i := 0; i < 3; i++ {
		if _, err := client.Standings(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	clock.Advance(16 * time.Minute)
	if _, err := client.Standings(context.Background()); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("standings hits = %d, want 2", hits.Load())
	}
}

// TestBootstrap_UpstreamFailure tests that API errors surface as FetchError
func TestBootstrap_UpstreamFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }},
		{"not json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html>maintenance</html>")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(srv.URL, nil).Bootstrap(context.Background())
			var fe *upstream.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("Bootstrap() error = %v, want *upstream.FetchError", err)
			}
			if fe.SourceKey != BootstrapSource {
				t.Errorf("SourceKey = %q, want %q", fe.SourceKey, BootstrapSource)
			}
		})
	}
}
