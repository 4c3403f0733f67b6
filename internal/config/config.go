// Package config loads the two inputs of a run from disk: the network
// description and the route submissions.
//
// Network files are a JSON (or YAML) object of station → neighbour →
// distance, with the reserved "capacity" key per station. Route files are
// JSON lines, one submission per line, as produced by the booking side; a
// JSON array or a YAML list is accepted too.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cxd309/tms-timetable/internal/graph"
	"github.com/cxd309/tms-timetable/internal/train"
)

const (
	DefaultNetworkPath = "railway_config.conf"
	DefaultRoutesPath  = "routes.conf"

	// EnvDB names the SQLite database reports are saved to when -db is not given.
	EnvDB = "RAILWAY_DB"
)

// EnvOr returns the environment variable key, or def when it is unset or empty.
func EnvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadNetwork reads a network description. It does not build the graph;
// structural checks happen in graph.New.
func LoadNetwork(path string) (graph.NetworkData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network: %w", err)
	}
	var net graph.NetworkData
	if isYAML(path) {
		err = yaml.Unmarshal(data, &net)
	} else {
		err = json.Unmarshal(data, &net)
	}
	if err != nil {
		return nil, fmt.Errorf("parse network %s: %w", path, err)
	}
	if len(net) == 0 {
		return nil, fmt.Errorf("parse network %s: no stations", path)
	}
	return net, nil
}

// LoadRoutes reads every submission from path, in file order.
func LoadRoutes(path string) ([]train.Train, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes: %w", err)
	}
	if isYAML(path) {
		var trains []train.Train
		if err := yaml.Unmarshal(data, &trains); err != nil {
			return nil, fmt.Errorf("parse routes %s: %w", path, err)
		}
		return trains, nil
	}
	trains, err := DecodeRoutes(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse routes %s: %w", path, err)
	}
	return trains, nil
}

// DecodeRoutes reads submissions from a stream of JSON objects (one per
// line or otherwise whitespace-separated) or from a single JSON array.
func DecodeRoutes(r io.Reader) ([]train.Train, error) {
	dec := json.NewDecoder(r)
	var trains []train.Train
	for i := 0; ; i++ {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return trains, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			var batch []train.Train
			if err := json.Unmarshal(raw, &batch); err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			trains = append(trains, batch...)
			continue
		}
		var t train.Train
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		trains = append(trains, t)
	}
}
