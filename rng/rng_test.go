package rng

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSourceDeterminism(t *testing.T) {
	Convey("Given two sources built from the same seed", t, func() {
		a := New(1234)
		b := New(1234)

		Convey("they produce identical sequences", func() {
			for i := 0; i < 100; i++ {
				So(a.Uint64(), ShouldEqual, b.Uint64())
			}
		})
	})

	Convey("Given two sources built from different seeds", t, func() {
		a := New(1)
		b := New(2)

		Convey("they diverge", func() {
			same := true
			for i := 0; i < 10; i++ {
				if a.Uint64() != b.Uint64() {
					same = false
				}
			}
			So(same, ShouldBeFalse)
		})
	})
}

func TestFloat64Range(t *testing.T) {
	Convey("Given many draws from Float64", t, func() {
		s := New(7)

		Convey("every value lies in [0, 1)", func() {
			for i := 0; i < 10000; i++ {
				v := s.Float64()
				So(v, ShouldBeGreaterThanOrEqualTo, 0.0)
				So(v, ShouldBeLessThan, 1.0)
			}
		})
	})
}

func TestIntnRange(t *testing.T) {
	Convey("Given Intn(5) drawn many times", t, func() {
		s := New(3)

		Convey("every value lies in [0, 5)", func() {
			for i := 0; i < 1000; i++ {
				v := s.Intn(5)
				So(v, ShouldBeGreaterThanOrEqualTo, 0)
				So(v, ShouldBeLessThan, 5)
			}
		})
	})

	Convey("Given Intn called with n <= 0", t, func() {
		s := New(3)

		Convey("it panics", func() {
			So(func() { s.Intn(0) }, ShouldPanic)
		})
	})
}

func TestUniformRange(t *testing.T) {
	Convey("Given Uniform(-2, 2) drawn many times", t, func() {
		s := New(9)

		Convey("every value lies in [-2, 2)", func() {
			for i := 0; i < 1000; i++ {
				v := s.Uniform(-2, 2)
				So(v, ShouldBeGreaterThanOrEqualTo, -2.0)
				So(v, ShouldBeLessThan, 2.0)
			}
		})
	})
}

func TestPerm(t *testing.T) {
	Convey("Given Perm(6)", t, func() {
		s := New(11)
		p := s.Perm(6)

		Convey("it contains every index exactly once", func() {
			seen := make(map[int]bool)
			for _, v := range p {
				So(v, ShouldBeGreaterThanOrEqualTo, 0)
				So(v, ShouldBeLessThan, 6)
				seen[v] = true
			}
			So(len(seen), ShouldEqual, 6)
		})
	})

	Convey("Given two Perm(6) calls from the same seed", t, func() {
		a := New(11).Perm(6)
		b := New(11).Perm(6)

		Convey("they are identical", func() {
			So(a, ShouldResemble, b)
		})
	})
}
