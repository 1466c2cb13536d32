package locations

// Geographic filtering uses flat degree approximations, not geodesic
// distance. A radius in km is converted with radius/6371 and applied as a
// symmetric degree delta on both axes, which is acceptable at the small
// radii this application serves. Known approximation, kept deliberately.

const (
	// duplicateTolerance is the per-axis degree tolerance (~100m) inside
	// which two listings count as duplicates.
	duplicateTolerance = 0.001

	earthRadiusKm = 6371.0

	defaultRadiusKm = 50.0
	minRadiusKm     = 1.0
	maxRadiusKm     = 1000.0

	defaultLimit = 50
	minLimit     = 1
	maxLimit     = 100
)

// BoundingBox is a degree-space rectangle around a center point.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoxAround returns the bounding box for a radius (km) around a point.
func BoxAround(lat, lng, radiusKm float64) BoundingBox {
	delta := radiusKm / earthRadiusKm
	return BoundingBox{
		MinLat: lat - delta,
		MaxLat: lat + delta,
		MinLng: lng - delta,
		MaxLng: lng + delta,
	}
}

// Contains reports whether a point lies inside the box.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// duplicateBox returns the square inside which a new listing is rejected
// as a near-duplicate of the given coordinates.
func duplicateBox(lat, lng float64) BoundingBox {
	return BoundingBox{
		MinLat: lat - duplicateTolerance,
		MaxLat: lat + duplicateTolerance,
		MinLng: lng - duplicateTolerance,
		MaxLng: lng + duplicateTolerance,
	}
}

// clampRadius keeps a requested radius within [1, 1000] km, defaulting
// when unset or non-positive.
func clampRadius(radiusKm float64) float64 {
	if radiusKm <= 0 {
		return defaultRadiusKm
	}
	if radiusKm < minRadiusKm {
		return minRadiusKm
	}
	if radiusKm > maxRadiusKm {
		return maxRadiusKm
	}
	return radiusKm
}

// clampLimit keeps a requested result cap within [1, 100], defaulting
// when unset or non-positive.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit < minLimit {
		return minLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
