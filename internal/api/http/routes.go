package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/controller"
	"github.com/i474232898/weather-lookup/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the presentation intents (search, tab switch, export,
// delete) and the read endpoints into the Fiber app.
func RegisterRoutes(app *fiber.App, ctrl *controller.Controller) {
	v1 := app.Group("/api/v1")

	v1.Get("/view", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.Snapshot())
	})

	v1.Put("/view", func(c *fiber.Ctx) error {
		var req tabRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		if err := ctrl.SelectTab(controller.View(req.View)); err != nil {
			return toHTTPError(err)
		}
		return c.JSON(ctrl.Snapshot())
	})

	v1.Post("/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		snap, err := ctrl.SubmitSearch(c.UserContext(), req.City)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(snap)
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		rows, err := ctrl.History(c.UserContext())
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{"entries": rows})
	})

	v1.Get("/statistics", func(c *fiber.Ctx) error {
		st, err := ctrl.Statistics(c.UserContext())
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(st)
	})

	v1.Post("/export", func(c *fiber.Ctx) error {
		var req exportRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		res, err := ctrl.RequestExport(c.UserContext(), req.Dir)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(res)
	})

	v1.Delete("/history", deleteHandler(ctrl, func(*fiber.Ctx) (controller.DeleteRequest, error) {
		return controller.DeleteRequest{Target: controller.DeleteAllHistory}, nil
	}))
	v1.Delete("/history/:id", deleteHandler(ctrl, func(c *fiber.Ctx) (controller.DeleteRequest, error) {
		id, err := parseID(c)
		return controller.DeleteRequest{Target: controller.DeleteHistoryEntry, ID: id}, err
	}))
	v1.Delete("/forecast", deleteHandler(ctrl, func(c *fiber.Ctx) (controller.DeleteRequest, error) {
		if city := c.Query("city"); city != "" {
			return controller.DeleteRequest{Target: controller.DeleteCityForecasts, City: city}, nil
		}
		return controller.DeleteRequest{Target: controller.DeleteAllForecasts}, nil
	}))
	v1.Delete("/forecast/:id", deleteHandler(ctrl, func(c *fiber.Ctx) (controller.DeleteRequest, error) {
		id, err := parseID(c)
		return controller.DeleteRequest{Target: controller.DeleteForecastEntry, ID: id}, err
	}))
}

type searchRequest struct {
	City string `json:"city" validate:"required"`
}

type tabRequest struct {
	View string `json:"view" validate:"required,oneof=home search history"`
}

type exportRequest struct {
	Dir string `json:"dir" validate:"required,dir"`
}

func bindAndValidate(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func deleteHandler(ctrl *controller.Controller, build func(*fiber.Ctx) (controller.DeleteRequest, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := build(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		n, err := ctrl.RequestDelete(c.UserContext(), req)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{"deleted": n})
	}
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

// toHTTPError maps controller and store errors onto status codes.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, controller.ErrValidation),
		errors.Is(err, controller.ErrUnknownView),
		errors.Is(err, store.ErrConstraint):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
