package graph

import (
	"fmt"
	"math"
)

// Path is the result of a shortest-path computation.
type Path struct {
	Stations []StationID // ordered from start to end
	Length   float64
}

// pathKey returns a canonical string key for a start→end pair.
func pathKey(start, end StationID) string { return start + "->" + end }

// computeShortestPaths runs Floyd-Warshall over all stations and links.
func (g *Graph) computeShortestPaths() {
	dist := make(map[StationID]map[StationID]float64, len(g.stations))
	next := make(map[StationID]map[StationID]StationID, len(g.stations))
	for _, i := range g.stations {
		dist[i] = make(map[StationID]float64, len(g.stations))
		next[i] = make(map[StationID]StationID, len(g.stations))
		for _, j := range g.stations {
			dist[i][j] = math.Inf(1)
		}
		dist[i][i] = 0
		for j, d := range g.links[i] {
			dist[i][j] = d
			next[i][j] = j
		}
	}
	for _, k := range g.stations {
		for _, i := range g.stations {
			for _, j := range g.stations {
				if d := dist[i][k] + dist[k][j]; d < dist[i][j] {
					dist[i][j] = d
					next[i][j] = next[i][k]
				}
			}
		}
	}
	g.dist = dist
	g.nextNode = next
}

func (g *Graph) reconstructPath(u, v StationID) []StationID {
	route := []StationID{u}
	for u != v {
		n, ok := g.nextNode[u][v]
		if !ok || n == "" {
			return nil
		}
		u = n
		route = append(route, u)
	}
	return route
}

// ShortestPath returns the shortest connection between start and end. It is
// only used to describe how two non-adjacent stations are connected; routes
// are never rewritten with it.
func (g *Graph) ShortestPath(start, end StationID) (Path, error) {
	if !g.HasStation(start) {
		return Path{}, fmt.Errorf("unknown station %q", start)
	}
	if !g.HasStation(end) {
		return Path{}, fmt.Errorf("unknown station %q", end)
	}
	if start == end {
		return Path{Stations: []StationID{start}}, nil
	}
	key := pathKey(start, end)
	if p, ok := g.pathCache[key]; ok {
		return p, nil
	}
	if g.dist == nil {
		g.computeShortestPaths()
	}
	d := g.dist[start][end]
	if math.IsInf(d, 1) {
		return Path{}, fmt.Errorf("no path from %q to %q", start, end)
	}
	p := Path{Stations: g.reconstructPath(start, end), Length: d}
	g.pathCache[key] = p
	return p, nil
}
