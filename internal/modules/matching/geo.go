// README: Great-circle distance and distance ranking helpers.
package matching

import (
	"math"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

const earthRadiusKm = 6371.0

// distanceKm returns the haversine distance between two points in decimal degrees.
func distanceKm(a, b types.Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// rankByDistance is a stable insertion sort, nearest first. Provider lists are small.
func rankByDistance(providers []Provider) {
	for i := 1; i < len(providers); i++ {
		key := providers[i]
		j := i - 1
		for j >= 0 && providers[j].DistanceKm > key.DistanceKm {
			providers[j+1] = providers[j]
			j--
		}
		providers[j+1] = key
	}
}
