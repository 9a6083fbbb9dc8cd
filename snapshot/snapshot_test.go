package snapshot

import (
	"bytes"
	"image/png"
	"io"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"highwaysim/roadsim"
)

type fakeRNG struct{}

func (fakeRNG) Bernoulli(p float32) bool { return false }

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

type memFS struct {
	buf *bytes.Buffer
}

func (m *memFS) Create(path string) (io.WriteCloser, error) {
	m.buf = &bytes.Buffer{}
	return nopWriteCloser{m.buf}, nil
}

func TestNoop(t *testing.T) {
	Convey("Noop discards every snapshot", t, func() {
		var sink SnapshotSink = Noop{}
		r, err := roadsim.NewRoad(roadsim.RoadConfig{Lanes: 1, Length: 4, RNG: fakeRNG{}})
		So(err, ShouldBeNil)
		So(sink.AddSnapshot(r), ShouldBeNil)
		So(sink.Close(), ShouldBeNil)
	})
}

func TestTextDump(t *testing.T) {
	Convey("Given a road with a blocked cell", t, func() {
		r, err := roadsim.NewRoad(roadsim.RoadConfig{
			Lanes:     1,
			Length:    4,
			Blockages: []roadsim.Blockage{{Lane: 0, Start: 2, End: 3}},
			RNG:       fakeRNG{},
		})
		So(err, ShouldBeNil)

		var buf bytes.Buffer
		sink := NewTextDump(&buf)

		Convey("AddSnapshot renders one character per cell plus a trailing blank line", func() {
			So(sink.AddSnapshot(r), ShouldBeNil)
			lines := strings.Split(buf.String(), "\n")
			So(lines[0], ShouldEqual, "  # ")
		})
	})
}

func TestRaster(t *testing.T) {
	Convey("Given a two-lane road run for a few rounds", t, func() {
		r, err := roadsim.NewRoad(roadsim.RoadConfig{
			Lanes:  2,
			Length: 5,
			Vehicles: []roadsim.VehicleBlueprint{
				{MaxSpeed: 3, AccelerationTime: 1, TrafficDensity: 0.4},
			},
			RNG: roadsim.NewRNG(3),
		})
		So(err, ShouldBeNil)

		fs := &memFS{}
		sink := NewRaster(r, 3, "out.png", fs)

		Convey("Three AddSnapshot calls then Close produce a decodable PNG", func() {
			for i := 0; i < 3; i++ {
				r.Round()
				So(sink.AddSnapshot(r), ShouldBeNil)
			}
			So(sink.Close(), ShouldBeNil)

			img, err := png.Decode(bytes.NewReader(fs.buf.Bytes()))
			So(err, ShouldBeNil)
			So(img.Bounds().Dx(), ShouldEqual, 5)
			So(img.Bounds().Dy(), ShouldEqual, (2+1)*3)
		})

		Convey("A fourth AddSnapshot call fails once the image is full", func() {
			for i := 0; i < 3; i++ {
				r.Round()
				So(sink.AddSnapshot(r), ShouldBeNil)
			}
			r.Round()
			So(sink.AddSnapshot(r), ShouldNotBeNil)
		})
	})
}
