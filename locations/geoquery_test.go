package locations

import (
	"math"
	"testing"
)

func TestBoxAround(t *testing.T) {
	box := BoxAround(55.75, 37.62, 50)

	delta := 50.0 / earthRadiusKm
	if !almost(box.MinLat, 55.75-delta) || !almost(box.MaxLat, 55.75+delta) {
		t.Errorf("latitude bounds = [%f, %f]", box.MinLat, box.MaxLat)
	}
	if !almost(box.MinLng, 37.62-delta) || !almost(box.MaxLng, 37.62+delta) {
		t.Errorf("longitude bounds = [%f, %f]", box.MinLng, box.MaxLng)
	}
}

func TestBoundingBoxContains(t *testing.T) {
	box := BoxAround(55.75, 37.62, 50)

	cases := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"center", 55.75, 37.62, true},
		{"on min lat edge", box.MinLat, 37.62, true},
		{"on max lng edge", 55.75, box.MaxLng, true},
		{"just below min lat", box.MinLat - 1e-9, 37.62, false},
		{"far away", 40.0, -74.0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := box.Contains(tc.lat, tc.lng); got != tc.want {
				t.Errorf("Contains(%f, %f) = %v, want %v", tc.lat, tc.lng, got, tc.want)
			}
		})
	}
}

func TestDuplicateBox(t *testing.T) {
	box := duplicateBox(55.75, 37.62)

	// Inside the +-0.001 degree square on both axes: a duplicate.
	if !box.Contains(55.7505, 37.6195) {
		t.Error("point within tolerance should be a duplicate")
	}
	// Exactly on the tolerance boundary still counts.
	if !box.Contains(box.MaxLat, box.MaxLng) {
		t.Error("point on tolerance edge should be a duplicate")
	}
	// One axis out of tolerance: not a duplicate.
	if box.Contains(55.7525, 37.62) {
		t.Error("point past latitude tolerance should not be a duplicate")
	}
	if box.Contains(55.75, 37.6235) {
		t.Error("point past longitude tolerance should not be a duplicate")
	}
}

func TestClampRadius(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, defaultRadiusKm},
		{-10, defaultRadiusKm},
		{0.5, minRadiusKm},
		{25, 25},
		{1000, 1000},
		{5000, maxRadiusKm},
	}
	for _, tc := range cases {
		if got := clampRadius(tc.in); got != tc.want {
			t.Errorf("clampRadius(%f) = %f, want %f", tc.in, got, tc.want)
		}
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, defaultLimit},
		{-1, defaultLimit},
		{1, 1},
		{42, 42},
		{100, 100},
		{500, maxLimit},
	}
	for _, tc := range cases {
		if got := clampLimit(tc.in); got != tc.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
