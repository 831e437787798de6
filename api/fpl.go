package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theoremus-urban-solutions/bus-tracker/league"
)

func (s *Server) players(c *fiber.Ctx) error {
	data, err := s.bootstrap(c)
	if err != nil {
		return err
	}
	return c.JSON(league.Players(data, c.QueryInt("min_minutes", 0), c.Query("position")))
}

func (s *Server) topPerformers(c *fiber.Ctx) error {
	data, err := s.bootstrap(c)
	if err != nil {
		return err
	}
	return c.JSON(league.TopPerformers(data, c.Query("position"), c.QueryInt("limit", 10)))
}

func (s *Server) valuePicks(c *fiber.Ctx) error {
	data, err := s.bootstrap(c)
	if err != nil {
		return err
	}
	return c.JSON(league.ValuePicks(data, c.QueryInt("min_minutes", 90), c.QueryInt("limit", 10)))
}

func (s *Server) leagueStandings(c *fiber.Ctx) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	managers, err := s.league.StandingsWithHistory(ctx, c.QueryInt("limit", s.opts.HistoryLimit))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"standings": managers})
}

func (s *Server) leagueHistory(c *fiber.Ctx) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	history, err := s.league.LeagueHistory(ctx, c.QueryInt("limit", s.opts.HistoryLimit))
	if err != nil {
		return err
	}
	return c.JSON(history)
}

func (s *Server) bootstrap(c *fiber.Ctx) (*league.Bootstrap, error) {
	ctx, cancel := s.requestContext(c)
	defer cancel()
	return s.league.Bootstrap(ctx)
}
