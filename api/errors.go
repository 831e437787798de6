package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/theoremus-urban-solutions/bus-tracker/artifact"
	"github.com/theoremus-urban-solutions/bus-tracker/gtfsrt"
	"github.com/theoremus-urban-solutions/bus-tracker/query"
	"github.com/theoremus-urban-solutions/bus-tracker/upstream"
)

// statusFor maps pipeline errors onto HTTP statuses
func statusFor(err error) int {
	var (
		invalid  *query.InvalidCriteriaError
		fetchErr *upstream.FetchError
		decode   *gtfsrt.DecodeError
		write    *artifact.ArtifactWriteError
		fiberErr *fiber.Error
	)
	switch {
	case errors.As(err, &invalid):
		return fiber.StatusBadRequest
	case errors.As(err, &fetchErr):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &decode):
		return fiber.StatusBadGateway
	case errors.As(err, &write):
		return fiber.StatusInternalServerError
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

// errorHandler renders every error as {"error": "..."}
func errorHandler(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
