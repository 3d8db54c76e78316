package vertex

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestVertex(t *testing.T) {
	Convey("Given a Vertex", t, func() {
		Convey("IsEvaluated reflects the unevaluated sentinel", func() {
			v := Vertex{Value: Unevaluated, Params: []float64{1, 2}}
			So(v.IsEvaluated(), ShouldBeFalse)
			v.Value = 3.14
			So(v.IsEvaluated(), ShouldBeTrue)
		})

		Convey("Clone deep-copies Params", func() {
			v := Vertex{Value: 1, Params: []float64{1, 2, 3}}
			c := v.Clone()
			c.Params[0] = 99
			So(v.Params[0], ShouldEqual, 1)
			So(c.Value, ShouldEqual, v.Value)
		})
	})

	Convey("Given Less ordering", t, func() {
		Convey("values sort ascending", func() {
			a := Vertex{Value: 1}
			b := Vertex{Value: 2}
			So(Less(a, b), ShouldBeTrue)
			So(Less(b, a), ShouldBeFalse)
		})

		Convey("NaN always sorts last", func() {
			nan := Vertex{Value: math.NaN()}
			finite := Vertex{Value: 5}
			So(Less(nan, finite), ShouldBeFalse)
			So(Less(finite, nan), ShouldBeTrue)
			So(Less(nan, nan), ShouldBeFalse)
		})
	})
}

func TestBounds(t *testing.T) {
	Convey("Given a Bounds box", t, func() {
		b := Bounds{Lower: []float64{0, -1}, Upper: []float64{1, 1}}

		Convey("Dim reports the dimension", func() {
			So(b.Dim(), ShouldEqual, 2)
		})

		Convey("Contains is inclusive of both edges", func() {
			So(b.Contains([]float64{0, -1}), ShouldBeTrue)
			So(b.Contains([]float64{1, 1}), ShouldBeTrue)
			So(b.Contains([]float64{1.0001, 0}), ShouldBeFalse)
		})

		Convey("Range returns upper-lower", func() {
			So(b.Range(0), ShouldEqual, 1)
			So(b.Range(1), ShouldEqual, 2)
		})

		Convey("Clone never aliases the source slices", func() {
			c := b.Clone()
			c.Lower[0] = 99
			So(b.Lower[0], ShouldEqual, 0)
		})
	})
}
