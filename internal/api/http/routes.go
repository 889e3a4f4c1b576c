package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/resort-conditions-aggregation/internal/conditions"
)

var validate = validator.New()

// ConditionsService is the aggregation core as seen by the HTTP layer.
type ConditionsService interface {
	GetResortWeather(ctx context.Context, resort conditions.Resort) (conditions.WeatherSnapshot, error)
	GetResortWeatherPrimary(ctx context.Context, resort conditions.Resort) (conditions.WeatherSnapshot, error)
	GetAvalancheDanger(ctx context.Context) conditions.AvalancheAdvisory
	GetChainControls(ctx context.Context) []conditions.ChainControlStatus
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service ConditionsService) {
	v1 := app.Group("/api/v1")

	v1.Get("/resorts/:id/weather", func(c *fiber.Ctx) error {
		var q weatherQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		fetch := service.GetResortWeather
		if q.Source == sourcePrimary {
			fetch = service.GetResortWeatherPrimary
		}

		snapshot, err := fetch(c.UserContext(), q.toResort())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(snapshot)
	})

	// Avalanche and chain-control results are always available, possibly synthetic.
	v1.Get("/avalanche", func(c *fiber.Ctx) error {
		return c.JSON(service.GetAvalancheDanger(c.UserContext()))
	})

	v1.Get("/chain-controls", func(c *fiber.Ctx) error {
		return c.JSON(service.GetChainControls(c.UserContext()))
	})
}

const (
	sourcePrimary = "primary"
	sourceChain   = "chain"
)

// weatherQuery holds path and query parameters for the weather endpoint.
type weatherQuery struct {
	ResortID  int     `validate:"gte=0"`
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
	Source    string  `validate:"oneof=primary chain"`
}

func (q *weatherQuery) bind(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return errors.New("resort id must be an integer")
	}
	q.ResortID = id

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return errors.New("lat and lon query parameters are required")
	}
	if q.Latitude, err = strconv.ParseFloat(latStr, 64); err != nil {
		return errors.New("lat must be a number")
	}
	if q.Longitude, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return errors.New("lon must be a number")
	}

	q.Source = c.Query("source", sourceChain)
	return nil
}

func (q weatherQuery) toResort() conditions.Resort {
	return conditions.Resort{
		ID:        q.ResortID,
		Latitude:  q.Latitude,
		Longitude: q.Longitude,
	}
}
