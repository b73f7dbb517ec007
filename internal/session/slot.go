// internal/session/slot.go
package session

import (
	"fmt"
)

// Tab is one of the six detail views.
type Tab string

const (
	TabBlueprint  Tab = "blueprint"
	TabStressTest Tab = "stress_test"
	TabROI        Tab = "roi"
	TabRoadmap    Tab = "roadmap"
	TabPitchDeck  Tab = "pitch_deck"
	TabSupplier   Tab = "supplier"
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabBlueprint, TabStressTest, TabROI, TabRoadmap, TabPitchDeck, TabSupplier}

func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// SlotState is the lifecycle of one tab's content.
type SlotState int

const (
	Empty SlotState = iota
	Loading
	Loaded
	// NoData means the generator answered with nothing. It is not refetched
	// on activation; Retry regenerates it.
	NoData
	// Failed slots are refetched on the next activation.
	Failed
)

func (s SlotState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case NoData:
		return "no_data"
	case Failed:
		return "failed"
	}
	return "unknown"
}

func (s SlotState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SlotState) UnmarshalText(b []byte) error {
	for st := Empty; st <= Failed; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown slot state %q", b)
}

// Slot holds one tab's content and its state.
type Slot[T any] struct {
	State SlotState
	Value T
	Err   error
}

// activatable reports whether an activation should start a fetch.
func (s *Slot[T]) activatable(force bool) bool {
	if s.State == Loading {
		return false
	}
	if force {
		return true
	}
	return s.State == Empty || s.State == Failed
}

func (s *Slot[T]) reset() {
	var zero T
	s.State = Empty
	s.Value = zero
	s.Err = nil
}

// SlotView is the JSON shape of a slot.
type SlotView struct {
	State SlotState   `json:"state"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

func (s *Slot[T]) view() SlotView {
	v := SlotView{State: s.State}
	if s.State == Loaded {
		v.Data = s.Value
	}
	if s.Err != nil {
		v.Error = s.Err.Error()
	}
	return v
}
