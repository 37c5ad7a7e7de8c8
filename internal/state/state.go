// Package state holds the explorer's UI state as an immutable value that
// moves forward one event at a time.
package state

import (
	"errors"
	"fmt"

	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/ingest"
)

// View names one of the interactive visualizations.
type View string

const (
	ViewNetwork  View = "network"
	ViewChord    View = "chord"
	ViewTopChord View = "chord-top"
	ViewTreemap  View = "treemap"
	ViewBundle   View = "bundle"
	ViewHeatmap  View = "heatmap"
)

// Views lists every selectable view in menu order.
var Views = []View{ViewNetwork, ViewChord, ViewTopChord, ViewTreemap, ViewBundle, ViewHeatmap}

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	for _, known := range Views {
		if v == known {
			return true
		}
	}
	return false
}

// User-facing banner texts.
const (
	MsgEnterPath         = "Please enter a path"
	MsgSelectBlacklist   = "Please select a blacklist file"
	MsgBlacklistUploaded = "Blacklist uploaded successfully"
)

// State is one frame of the explorer. Values are never mutated in place;
// Apply returns a new State.
type State struct {
	Graph     *graph.Graph
	Degrees   *graph.DegreeMap
	Source    string
	Delimiter string
	View      View
	Filter    string
	Selected  string
	Threshold int
	Banner    string
	Loading   bool
}

// New returns the initial empty state.
func New() State {
	return State{
		View:      ViewNetwork,
		Threshold: graph.DefaultChordThreshold,
	}
}

// Event is an input to Apply.
type Event interface {
	isEvent()
}

// LoadStarted marks an analysis or file read as in flight.
type LoadStarted struct{}

// GraphLoaded replaces the current graph. Delimiter separates namespace
// segments in its ids; empty means graph.DefaultDelimiter.
type GraphLoaded struct {
	Graph     *graph.Graph
	Source    string
	Delimiter string
}

// LoadFailed reports a failed analysis, upload, or file read. Context
// prefixes the banner, e.g. "Error analyzing path".
type LoadFailed struct {
	Context string
	Err     error
}

// ValidationFailed reports a problem caught before any request was made.
type ValidationFailed struct {
	Message string
}

// FilterChanged updates the node filter text.
type FilterChanged struct{ Text string }

// ThresholdChanged selects the ranked relationship view size.
type ThresholdChanged struct{ K int }

// NodeClicked toggles selection of a node.
type NodeClicked struct{ ID string }

// ViewChanged switches the active view.
type ViewChanged struct{ View View }

// BlacklistUploaded reports a successful blacklist upload.
type BlacklistUploaded struct{ Count int }

// BannerDismissed clears the banner.
type BannerDismissed struct{}

func (LoadStarted) isEvent()       {}
func (GraphLoaded) isEvent()       {}
func (LoadFailed) isEvent()        {}
func (ValidationFailed) isEvent()  {}
func (FilterChanged) isEvent()     {}
func (ThresholdChanged) isEvent()  {}
func (NodeClicked) isEvent()       {}
func (ViewChanged) isEvent()       {}
func (BlacklistUploaded) isEvent() {}
func (BannerDismissed) isEvent()   {}

// Apply returns the state that follows s after ev. Unknown or invalid events
// leave the state unchanged.
func Apply(s State, ev Event) State {
	next := s
	switch e := ev.(type) {
	case LoadStarted:
		next.Loading = true
		next.Banner = ""
	case GraphLoaded:
		if e.Graph == nil {
			return s
		}
		next.Graph = e.Graph
		next.Degrees = e.Graph.Degrees()
		next.Source = e.Source
		next.Delimiter = e.Delimiter
		if next.Delimiter == "" {
			next.Delimiter = graph.DefaultDelimiter
		}
		next.Loading = false
		next.Banner = ""
		if _, ok := e.Graph.Index()[s.Selected]; !ok {
			next.Selected = ""
		}
	case LoadFailed:
		next.Loading = false
		next.Banner = FailureMessage(e.Context, e.Err)
	case ValidationFailed:
		next.Banner = e.Message
	case FilterChanged:
		next.Filter = e.Text
	case ThresholdChanged:
		if !graph.ValidThreshold(e.K) {
			return s
		}
		next.Threshold = e.K
	case NodeClicked:
		if s.Selected == e.ID {
			next.Selected = ""
		} else {
			next.Selected = e.ID
		}
	case ViewChanged:
		if !e.View.Valid() {
			return s
		}
		next.View = e.View
	case BlacklistUploaded:
		next.Loading = false
		next.Banner = MsgBlacklistUploaded
	case BannerDismissed:
		next.Banner = ""
	}
	return next
}

// Replay applies events in order.
func Replay(s State, events ...Event) State {
	for _, ev := range events {
		s = Apply(s, ev)
	}
	return s
}

// FailureMessage renders err for the banner. Structure errors always read
// "Invalid JSON structure".
func FailureMessage(context string, err error) string {
	if err == nil {
		return context
	}
	if errors.Is(err, ingest.ErrInvalidStructure) {
		return ingest.InvalidStructureMessage
	}
	if context == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s: %s", context, err.Error())
}

// CanSubmit reports whether a new request may start.
func (s State) CanSubmit() bool { return !s.Loading }

// HasGraph reports whether a graph is loaded.
func (s State) HasGraph() bool { return s.Graph != nil }

// VisibleNodes applies the filter to the loaded graph.
func (s State) VisibleNodes() []graph.Node {
	if s.Graph == nil {
		return nil
	}
	return graph.Filter(s.Graph, s.Filter)
}

// SelectedDetails returns the details panel for the selected node.
func (s State) SelectedDetails(depth int) (graph.NodeDetails, bool) {
	if s.Graph == nil || s.Selected == "" {
		return graph.NodeDetails{}, false
	}
	d, err := graph.Details(s.Graph, s.Selected, depth)
	if err != nil {
		return graph.NodeDetails{}, false
	}
	return d, true
}

// TotalCalls is the status-line edge count.
func (s State) TotalCalls() int {
	if s.Degrees == nil {
		return 0
	}
	return s.Degrees.TotalCalls()
}
