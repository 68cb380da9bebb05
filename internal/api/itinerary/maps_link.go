package itinerary

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/raiigauravv/WanderWhiz/internal/types"
)

const (
	mapsSearchURL     = "https://www.google.com/maps/search/"
	mapsDirectionsURL = "https://www.google.com/maps/dir/"
)

func coord(l types.LatLng) string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// MapsLink builds a shareable maps URL. A single place becomes a search link;
// several become driving directions with the interior places as waypoints.
func MapsLink(ordered []types.Place) (string, error) {
	switch len(ordered) {
	case 0:
		return "", fmt.Errorf("%w: no places to link", types.ErrBadRequest)
	case 1:
		q := url.Values{}
		q.Set("api", "1")
		q.Set("query", coord(ordered[0].Location))
		return mapsSearchURL + "?" + q.Encode(), nil
	}

	q := url.Values{}
	q.Set("api", "1")
	q.Set("origin", coord(ordered[0].Location))
	q.Set("destination", coord(ordered[len(ordered)-1].Location))
	if len(ordered) > 2 {
		waypoints := make([]string, 0, len(ordered)-2)
		for _, p := range ordered[1 : len(ordered)-1] {
			waypoints = append(waypoints, coord(p.Location))
		}
		q.Set("waypoints", strings.Join(waypoints, "|"))
	}
	q.Set("travelmode", "driving")
	return mapsDirectionsURL + "?" + q.Encode(), nil
}
