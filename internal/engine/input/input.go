// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventPointerDown
	EventPointerMove
	EventPointerUp
)

// touchMouseID marks mouse events SDL synthesizes from touches.
const touchMouseID = ^uint32(0)

// Event represents a processed input event. Pointer coordinates are in
// window units; touch input is mapped onto the same space.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	X      float64
	Y      float64
}

// Input handles all input processing.
type Input struct {
	events []Event

	// window size, for mapping normalized touch coordinates
	width, height int
	finger        sdl.FingerID
	touching      bool
}

// New creates a new input handler for a window of the given size.
func New(width, height int) *Input {
	return &Input{
		events: make([]Event, 0, 16),
		width:  width,
		height: height,
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.width, i.height = int(e.Data1), int(e.Data2)
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  i.width,
					Height: i.height,
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
			}

		case *sdl.MouseMotionEvent:
			if e.Which == touchMouseID {
				continue // handled as a finger event
			}
			i.pointer(EventPointerMove, float64(e.X), float64(e.Y))

		case *sdl.MouseButtonEvent:
			if e.Which == touchMouseID || e.Button != sdl.BUTTON_LEFT {
				continue
			}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				i.pointer(EventPointerDown, float64(e.X), float64(e.Y))
			} else {
				i.pointer(EventPointerUp, float64(e.X), float64(e.Y))
			}

		case *sdl.TouchFingerEvent:
			i.touch(e)
		}
	}

	return false
}

func (i *Input) pointer(t EventType, x, y float64) {
	i.events = append(i.events, Event{Type: t, X: x, Y: y})
}

// touch follows the first finger down and ignores the rest.
func (i *Input) touch(e *sdl.TouchFingerEvent) {
	x := float64(e.X) * float64(i.width)
	y := float64(e.Y) * float64(i.height)

	switch e.Type {
	case sdl.FINGERDOWN:
		if i.touching {
			return
		}
		i.touching = true
		i.finger = e.FingerID
		i.pointer(EventPointerDown, x, y)
	case sdl.FINGERMOTION:
		if i.touching && e.FingerID == i.finger {
			i.pointer(EventPointerMove, x, y)
		}
	case sdl.FINGERUP:
		if i.touching && e.FingerID == i.finger {
			i.touching = false
			i.pointer(EventPointerUp, x, y)
		}
	}
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
