// Package graph provides the rail network: stations, the direct links between
// them, and the declared platform capacity of each station.
//
// A network is loaded once from NetworkData and never mutated afterwards.
// Lookups for unknown stations or missing links report "not found" through a
// boolean rather than an error; callers decide whether that is a failure.
package graph

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

// StationID is the name of a station; names are the station identity.
type StationID = string

// CapacityKey is the reserved key inside a station's neighbour map that
// carries the station's declared capacity instead of a link distance.
const CapacityKey = "capacity"

// ErrMalformed is wrapped by every error New returns for structurally
// invalid network data.
var ErrMalformed = errors.New("malformed network")

// NetworkData is the serialisable network description:
// station → neighbour → distance, plus CapacityKey → capacity per station.
type NetworkData map[StationID]map[string]float64

// Link is an undirected connection between two adjacent stations.
type Link struct {
	A, B     StationID
	Distance float64
}

// Graph is an immutable, symmetric, weighted station graph.
type Graph struct {
	stations   []StationID
	links      map[StationID]map[StationID]float64
	capacities map[StationID]int
	// Floyd-Warshall tables; nil until first needed.
	dist     map[StationID]map[StationID]float64
	nextNode map[StationID]map[StationID]StationID
	// Path cache keyed by pathKey.
	pathCache map[string]Path
}

// New builds a Graph from NetworkData, returning an error wrapping
// ErrMalformed if any station, link or capacity is invalid.
func New(data NetworkData) (*Graph, error) {
	g := &Graph{
		links:      make(map[StationID]map[StationID]float64, len(data)),
		capacities: make(map[StationID]int),
		pathCache:  make(map[string]Path),
	}
	for station := range data {
		if station == "" {
			return nil, fmt.Errorf("%w: empty station name", ErrMalformed)
		}
		g.stations = append(g.stations, station)
		g.links[station] = make(map[StationID]float64)
	}
	slices.Sort(g.stations)

	for _, station := range g.stations {
		for key, value := range data[station] {
			if key == CapacityKey {
				if err := g.setCapacity(station, value); err != nil {
					return nil, err
				}
				continue
			}
			if err := g.addLink(station, key, value); err != nil {
				return nil, err
			}
		}
	}

	// Every link must be declared from both ends with the same distance.
	for _, a := range g.stations {
		for b, d := range g.links[a] {
			back, ok := g.links[b][a]
			if !ok {
				return nil, fmt.Errorf("%w: link %q->%q has no reverse link", ErrMalformed, a, b)
			}
			if back != d {
				return nil, fmt.Errorf("%w: link %q-%q is %v one way and %v the other", ErrMalformed, a, b, d, back)
			}
		}
	}
	return g, nil
}

func (g *Graph) setCapacity(station StationID, value float64) error {
	if value < 0 || value != math.Trunc(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: station %q capacity %v is not a non-negative integer", ErrMalformed, station, value)
	}
	g.capacities[station] = int(value)
	return nil
}

func (g *Graph) addLink(a, b StationID, distance float64) error {
	if a == b {
		return fmt.Errorf("%w: station %q links to itself", ErrMalformed, a)
	}
	if _, ok := g.links[b]; !ok {
		return fmt.Errorf("%w: station %q links to undeclared station %q", ErrMalformed, a, b)
	}
	if !(distance > 0) || math.IsInf(distance, 1) {
		return fmt.Errorf("%w: link %q->%q has non-positive distance %v", ErrMalformed, a, b, distance)
	}
	g.links[a][b] = distance
	return nil
}

// Distance returns the direct-link distance between a and b. The boolean is
// false when there is no such link, including when either station is unknown.
func (g *Graph) Distance(a, b StationID) (float64, bool) {
	d, ok := g.links[a][b]
	return d, ok
}

// Capacity returns the declared maximum number of trains simultaneously at
// the station. The boolean is false when no capacity is declared or the
// station is unknown.
func (g *Graph) Capacity(station StationID) (int, bool) {
	c, ok := g.capacities[station]
	return c, ok
}

// HasStation reports whether the station is part of the network.
func (g *Graph) HasStation(station StationID) bool {
	_, ok := g.links[station]
	return ok
}

// Stations returns all station names in lexicographic order.
func (g *Graph) Stations() []StationID {
	out := make([]StationID, len(g.stations))
	copy(out, g.stations)
	return out
}

// Neighbours returns the stations directly linked to station, sorted.
func (g *Graph) Neighbours(station StationID) []StationID {
	m := g.links[station]
	out := make([]StationID, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Links returns every undirected link once, with A < B, sorted by (A, B).
func (g *Graph) Links() []Link {
	var out []Link
	for _, a := range g.stations {
		for _, b := range g.Neighbours(a) {
			if a < b {
				out = append(out, Link{A: a, B: b, Distance: g.links[a][b]})
			}
		}
	}
	return out
}
