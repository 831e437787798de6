package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/theoremus-urban-solutions/bus-tracker/gtfsrt"
	"github.com/theoremus-urban-solutions/bus-tracker/league"
)

type sourceStatus struct {
	FetchedAt *time.Time `json:"fetched_at"`
	Bytes     int        `json:"bytes"`
}

type healthResponse struct {
	Status  string                  `json:"status"`
	Sources map[string]sourceStatus `json:"sources"`
}

func (s *Server) health(c *fiber.Ctx) error {
	resp := healthResponse{Status: "ok", Sources: map[string]sourceStatus{}}
	for _, key := range []string{gtfsrt.VehiclePositionsSource, league.BootstrapSource, league.LeagueSource} {
		st := sourceStatus{}
		if e, ok := s.cache.Peek(key); ok {
			fetchedAt := e.FetchedAt.UTC()
			st.FetchedAt = &fetchedAt
			st.Bytes = len(e.Payload)
		}
		resp.Sources[key] = st
	}
	return c.JSON(resp)
}
