package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const earthRadiusKm = 6371.0

var ErrBadLatLng = errors.New("malformed lat,lng pair")

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Finite reports whether both coordinates are real numbers (no NaN/Inf).
func Finite(lat, lng float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) &&
		!math.IsNaN(lng) && !math.IsInf(lng, 0)
}

// ParseLatLng parses a "lat,lng" string as used for session origins and
// destinations.
func ParseLatLng(s string) (lat, lng float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, ErrBadLatLng
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, ErrBadLatLng
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, ErrBadLatLng
	}
	if !Finite(lat, lng) {
		return 0, 0, ErrBadLatLng
	}
	return lat, lng, nil
}
