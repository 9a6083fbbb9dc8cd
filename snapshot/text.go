package snapshot

import (
	"fmt"
	"io"

	"highwaysim/roadsim"
)

// TextDump renders each round as a character grid, one lane per printed
// row, cars shown as 'o', blocked cells as '#', red lights as 'x', green
// lights as '.', and free cells as ' '. It writes to an injected
// io.Writer so the host can redirect it like any other sink.
type TextDump struct {
	w io.Writer
}

// NewTextDump returns a TextDump writing to w.
func NewTextDump(w io.Writer) *TextDump {
	return &TextDump{w: w}
}

func (t *TextDump) AddSnapshot(road *roadsim.Road) error {
	for l := 0; l < road.Lanes(); l++ {
		for c := 0; c < road.Length(); c++ {
			cell := road.Cell(l, c)
			ch := ' '
			switch {
			case cell.Blocked():
				ch = '#'
			case cell.Car() != nil:
				ch = 'o'
			case cell.IsRedLight(road.TrafficLightsRed()):
				ch = 'x'
			case cell.IsTrafficLight():
				ch = '.'
			}
			if _, err := fmt.Fprintf(t.w, "%c", ch); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(t.w); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(t.w); err != nil {
		return err
	}
	return nil
}

func (t *TextDump) Close() error { return nil }
