package route

import (
	"errors"
	"net/url"

	"github.com/eldavido7/taxi-tracker/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

const directionsEndpoint = "https://maps.googleapis.com/maps/api/directions/json"

var ErrMissingPoints = errors.New("origin and destination are required")

// fetchFn is swapped out in tests so no request leaves the process.
var fetchFn = func(u string) (int, []byte, error) {
	code, body, errs := fiber.Get(u).Bytes()
	if len(errs) > 0 {
		return 0, nil, errs[0]
	}
	return code, body, nil
}

type Service struct {
	apiKey string
}

func NewService(apiKey string) *Service {
	return &Service{apiKey: apiKey}
}

// Directions proxies the Google Directions API verbatim, keeping the API key
// out of the client.
func (s *Service) Directions(origin, destination string) (int, []byte, error) {
	if origin == "" || destination == "" {
		return 0, nil, ErrMissingPoints
	}

	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("key", s.apiKey)
	return fetchFn(directionsEndpoint + "?" + q.Encode())
}

// Estimate is the offline fallback: straight-line distance between two
// "lat,lng" points.
func (s *Service) Estimate(origin, destination string) (float64, error) {
	if origin == "" || destination == "" {
		return 0, ErrMissingPoints
	}

	lat1, lng1, err := geo.ParseLatLng(origin)
	if err != nil {
		return 0, err
	}
	lat2, lng2, err := geo.ParseLatLng(destination)
	if err != nil {
		return 0, err
	}
	return geo.HaversineKm(lat1, lng1, lat2, lng2), nil
}
