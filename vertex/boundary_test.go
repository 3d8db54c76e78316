package vertex

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"colonyopt/rng"
)

func TestEnforce(t *testing.T) {
	b := Bounds{Lower: []float64{0, 0}, Upper: []float64{1, 1}}

	Convey("Given Sticky boundary policy", t, func() {
		Convey("out-of-range coordinates clamp to the violated bound", func() {
			p := []float64{-0.5, 1.5}
			Enforce(Sticky, b, p, nil)
			So(p[0], ShouldEqual, 0)
			So(p[1], ShouldEqual, 1)
		})
	})

	Convey("Given Random boundary policy", t, func() {
		Convey("out-of-range coordinates resample within bounds", func() {
			src := rng.New(1)
			p := []float64{-0.5, 2}
			Enforce(Random, b, p, src)
			So(p[0], ShouldBeBetween, 0, 1)
			So(p[1], ShouldBeBetween, 0, 1)
		})
	})

	Convey("Given Periodic boundary policy", t, func() {
		Convey("coordinates wrap by successive box widths", func() {
			p := []float64{1.3, -0.4}
			Enforce(Periodic, b, p, nil)
			So(p[0], ShouldAlmostEqual, 0.3, 1e-9)
			So(p[1], ShouldAlmostEqual, 0.6, 1e-9)
		})

		Convey("a degenerate zero-width box returns x unchanged", func() {
			zero := Bounds{Lower: []float64{0}, Upper: []float64{0}}
			p := []float64{5}
			Enforce(Periodic, zero, p, nil)
			So(p[0], ShouldEqual, 5)
		})
	})

	Convey("Given Reflective boundary policy", t, func() {
		Convey("coordinates fold back by reflection about the violated bound", func() {
			p := []float64{1.2, -0.2}
			Enforce(Reflective, b, p, nil)
			So(p[0], ShouldAlmostEqual, 0.8, 1e-9)
			So(p[1], ShouldAlmostEqual, 0.2, 1e-9)
		})
	})

	Convey("Given an in-bounds coordinate", t, func() {
		Convey("Enforce leaves it untouched regardless of policy", func() {
			p := []float64{0.5, 0.5}
			Enforce(Sticky, b, p, nil)
			So(p[0], ShouldEqual, 0.5)
			So(p[1], ShouldEqual, 0.5)
		})
	})
}

func TestBoundaryPolicyYAML(t *testing.T) {
	Convey("Given a BoundaryPolicy", t, func() {
		Convey("UnmarshalYAML accepts every named value case-insensitively", func() {
			cases := map[string]BoundaryPolicy{
				"sticky":     Sticky,
				"Random":     Random,
				"periodic":   Periodic,
				"Reflective": Reflective,
			}
			for name, want := range cases {
				var p BoundaryPolicy
				err := p.UnmarshalYAML(func(v interface{}) error {
					*(v.(*string)) = name
					return nil
				})
				So(err, ShouldBeNil)
				So(p, ShouldEqual, want)
			}
		})

		Convey("an unrecognized name is rejected", func() {
			var p BoundaryPolicy
			err := p.UnmarshalYAML(func(v interface{}) error {
				*(v.(*string)) = "bogus"
				return nil
			})
			So(err, ShouldNotBeNil)
		})
	})
}
