package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-consensus/internal/narration"
	"github.com/i474232898/weather-consensus/internal/store"
	"github.com/i474232898/weather-consensus/internal/weather"
	"github.com/i474232898/weather-consensus/internal/workflow"
)

var validate = validator.New()

// Runner executes one analysis request.
type Runner interface {
	Run(ctx context.Context, location, question string) workflow.Result
}

// Results gives read access to finished analyses.
type Results interface {
	Latest(location string) (workflow.Result, error)
	ByID(id string) (workflow.Result, error)
	Range(location string, from, to time.Time) ([]workflow.Result, error)
	Locations() []string
}

// NarrationStatus reports narration providers and their call statistics.
type NarrationStatus interface {
	Providers() []string
	Stats() map[string]narration.ProviderStats
}

// Deps are the collaborators the routes need.
type Deps struct {
	Runner    Runner
	Results   Results
	Providers []weather.Provider
	Narration NarrationStatus
	Service   string
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": d.Service,
		})
	})

	v1 := app.Group("/api/v1")

	v1.Post("/weather/analyze", func(c *fiber.Ctx) error {
		var req analyzeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		req.Location = strings.TrimSpace(req.Location)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res := d.Runner.Run(c.UserContext(), req.Location, req.Question)
		return c.Status(statusFor(res)).JSON(res)
	})

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		loc, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := d.Results.Latest(loc.Location)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather analysis for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather analysis")
		}
		return c.JSON(res)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		results, err := d.Results.Range(req.Location.Location, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"location": req.Location.Location,
			"from":     req.From,
			"to":       req.To,
			"results":  results,
		})
	})

	v1.Get("/weather/locations", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"locations": d.Results.Locations()})
	})

	v1.Get("/requests/:id", func(c *fiber.Ctx) error {
		res, err := d.Results.ByID(c.Params("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "unknown request id")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch request")
		}
		return c.JSON(res)
	})

	v1.Get("/providers", func(c *fiber.Ctx) error {
		weatherProviders := make([]fiber.Map, 0, len(d.Providers))
		for _, p := range d.Providers {
			weatherProviders = append(weatherProviders, fiber.Map{
				"name":      p.Name(),
				"available": p.Available(),
			})
		}
		narrators := []string{}
		stats := map[string]narration.ProviderStats{}
		if d.Narration != nil {
			narrators = append(narrators, d.Narration.Providers()...)
			stats = d.Narration.Stats()
		}
		return c.JSON(fiber.Map{
			"weather":         weatherProviders,
			"narration":       narrators,
			"narration_stats": stats,
		})
	})
}

// statusFor maps a result to an HTTP status. The body is the full result either way.
func statusFor(res workflow.Result) int {
	if res.Success {
		return fiber.StatusOK
	}
	stage, _ := res.FailedStage()
	if stage == workflow.StageCollection {
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

type analyzeRequest struct {
	Location string `json:"location" validate:"required,max=200"`
	Question string `json:"question" validate:"max=1000"`
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	Location string `validate:"required,max=200"`
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.Location = strings.TrimSpace(c.Query("location"))

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
