package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/biomatrix/internal/api/http/middleware"
	"github.com/Alijeyrad/biomatrix/internal/model"
	"github.com/Alijeyrad/biomatrix/internal/query"
	"github.com/Alijeyrad/biomatrix/pkg/database"
)

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func notFound(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

func unavailable(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": msg})
}

func internalError(c fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// mapError turns query and model errors into responses.
func mapError(c fiber.Ctx, log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, query.ErrQuerySyntax),
		errors.Is(err, model.ErrUnknownEntity),
		errors.Is(err, model.ErrUnknownField),
		errors.Is(err, model.ErrInvalidComparison):
		return badRequest(c, err.Error())
	case errors.Is(err, model.ErrUnknownRelation),
		errors.Is(err, model.ErrRecordNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, database.ErrConnection):
		return unavailable(c, "store unavailable")
	default:
		rid, _ := middleware.RequestIDFromFiber(c)
		log.Error("request failed", "path", c.Path(), "request_id", rid, "error", err)
		return internalError(c)
	}
}
