package marker

import "github.com/GRTran/backtester/internal/types"

// Marker records diagnostic annotations on periods of a run.
type Marker interface {
	// Mark records a diagnostic for a period, optionally tied to an instrument.
	Mark(mark types.Mark) error
	// GetMarks returns all the marks in the order they were recorded.
	GetMarks() ([]types.Mark, error)
}
