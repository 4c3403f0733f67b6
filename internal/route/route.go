// Package route checks that a submitted route can be traced on the network:
// every consecutive pair of stations must be joined by a direct link.
package route

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cxd309/tms-timetable/internal/graph"
)

// Reason says why a hop is broken.
type Reason string

const (
	ReasonTooShort       Reason = "route has fewer than two stations"
	ReasonUnknownStation Reason = "unknown station"
	ReasonNoNeighbours   Reason = "station has no adjacent stations"
	ReasonNoLink         Reason = "no direct link"
)

// InvalidError describes the first broken hop of a route.
type InvalidError struct {
	Hop    int // index of the hop's first station in the route
	From   string
	To     string
	Reason Reason
	// Via is the shortest connection between From and To when one exists.
	Via []string
}

func (e *InvalidError) Error() string {
	if e.Reason == ReasonTooShort {
		return string(e.Reason)
	}
	msg := fmt.Sprintf("hop %d %q->%q: %s", e.Hop, e.From, e.To, e.Reason)
	if len(e.Via) > 0 {
		msg += fmt.Sprintf(" (connected via %s)", strings.Join(e.Via, "-"))
	}
	return msg
}

// Validator checks routes against one network.
type Validator struct {
	graph *graph.Graph
	log   *zap.SugaredLogger
}

// NewValidator returns a Validator for g; a nil log uses zap.S().
func NewValidator(g *graph.Graph, log *zap.SugaredLogger) *Validator {
	if log == nil {
		log = zap.S()
	}
	return &Validator{graph: g, log: log}
}

// Validate returns nil if every hop of r is a direct link, or an
// *InvalidError for the first hop that is not. The broken hop is logged.
func (v *Validator) Validate(r []string) error {
	err := v.check(r)
	if err != nil {
		v.log.Infow("route is not valid", "route", r, "reason", err.Error())
	}
	return err
}

// Valid is Validate reduced to a verdict.
func (v *Validator) Valid(r []string) bool {
	return v.Validate(r) == nil
}

func (v *Validator) check(r []string) error {
	if len(r) < 2 {
		return &InvalidError{Reason: ReasonTooShort}
	}
	for i := 0; i < len(r)-1; i++ {
		from, to := r[i], r[i+1]
		if _, ok := v.graph.Distance(from, to); ok {
			continue
		}
		e := &InvalidError{Hop: i, From: from, To: to}
		switch {
		case !v.graph.HasStation(from):
			e.Reason = ReasonUnknownStation
		case len(v.graph.Neighbours(from)) == 0:
			e.Reason = ReasonNoNeighbours
		case !v.graph.HasStation(to):
			e.Reason = ReasonUnknownStation
		default:
			e.Reason = ReasonNoLink
			if from != to {
				if p, err := v.graph.ShortestPath(from, to); err == nil {
					e.Via = p.Stations
				}
			}
		}
		return e
	}
	return nil
}
