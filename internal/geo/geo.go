// Package geo holds the distance helpers used to keep an itinerary
// geographically coherent.
package geo

import (
	"math"

	"github.com/raiigauravv/WanderWhiz/internal/types"
)

const (
	// EarthRadiusKm is the mean Earth radius used by HaversineKm.
	EarthRadiusKm = 6371.0

	// CitySearchRadiusDegrees bounds search results around a geocoded city
	// center. It is a planar distance in degrees, not kilometers.
	CitySearchRadiusDegrees = 0.3

	// ClusterRadiusKm bounds selected places around their centroid.
	ClusterRadiusKm = 15.0
)

// Centroid returns the arithmetic mean of the place coordinates. The mean is
// planar; it is only used for city-scale clusters. An empty slice yields the
// zero value.
func Centroid(places []types.Place) types.LatLng {
	if len(places) == 0 {
		return types.LatLng{}
	}
	var lat, lng float64
	for _, p := range places {
		lat += p.Location.Latitude
		lng += p.Location.Longitude
	}
	n := float64(len(places))
	return types.LatLng{Latitude: lat / n, Longitude: lng / n}
}

// HaversineKm returns the great-circle distance between a and b in kilometers.
func HaversineKm(a, b types.LatLng) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dlat := (b.Latitude - a.Latitude) * math.Pi / 180
	dlng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// PlanarDistanceDegrees is the Euclidean distance between a and b measured
// directly in degrees.
func PlanarDistanceDegrees(a, b types.LatLng) float64 {
	dlat := a.Latitude - b.Latitude
	dlng := a.Longitude - b.Longitude
	return math.Sqrt(dlat*dlat + dlng*dlng)
}

// FilterNear keeps places whose planar distance to ref is at most
// radiusDegrees. Order is preserved.
func FilterNear(places []types.Place, ref types.LatLng, radiusDegrees float64) []types.Place {
	out := make([]types.Place, 0, len(places))
	for _, p := range places {
		if PlanarDistanceDegrees(p.Location, ref) <= radiusDegrees {
			out = append(out, p)
		}
	}
	return out
}

// FilterWithinKm keeps places whose haversine distance to ref is at most
// radiusKm. Order is preserved.
func FilterWithinKm(places []types.Place, ref types.LatLng, radiusKm float64) []types.Place {
	out := make([]types.Place, 0, len(places))
	for _, p := range places {
		if HaversineKm(p.Location, ref) <= radiusKm {
			out = append(out, p)
		}
	}
	return out
}
