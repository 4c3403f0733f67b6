// Package train defines a submitted train: an identifier, the ordered list
// of stations it visits, and the constant speed it travels at.
package train

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ID is the train number used for reporting. It is not required to be unique
// across a batch but is treated as the train's identity.
type ID = string

// ErrInvalid is wrapped by Validate for structurally invalid submissions.
var ErrInvalid = errors.New("invalid train")

// Train is one route submission. It is not modified after construction.
type Train struct {
	ID    ID       `json:"train_number" yaml:"train_number"`
	Route []string `json:"route" yaml:"route"`
	Speed float64  `json:"speed" yaml:"speed"` // distance units per time unit
}

// trainJSON is the raw JSON shape of a Train, before the train number is resolved.
type trainJSON struct {
	Number json.RawMessage `json:"train_number"`
	Route  []string        `json:"route"`
	Speed  float64         `json:"speed"`
}

// UnmarshalJSON implements json.Unmarshaler for Train.
// Submissions in the wild carry the train number either as a string ("734")
// or as a bare number (734); both resolve to the same ID.
func (t *Train) UnmarshalJSON(data []byte) error {
	var aux trainJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := parseNumber(aux.Number)
	if err != nil {
		return fmt.Errorf("train_number: %w", err)
	}
	t.ID = id
	t.Route = aux.Route
	t.Speed = aux.Speed
	return nil
}

func parseNumber(raw json.RawMessage) (ID, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("want string or number, got %s", raw)
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

// Validate checks the fields every submission needs before it can be
// scheduled at all. Route connectivity is not checked here; that is the
// route validator's job and an unconnected route is not a malformed one.
func (t Train) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing train_number", ErrInvalid)
	}
	if !(t.Speed > 0) || math.IsInf(t.Speed, 1) {
		return fmt.Errorf("%w: train %q: speed %v must be positive", ErrInvalid, t.ID, t.Speed)
	}
	return nil
}

// Hop is one leg of a route, from Left to Right.
type Hop struct {
	Index int
	Left  string
	Right string
}

// Hops returns the consecutive station pairs of the route, in order.
func (t Train) Hops() []Hop {
	if len(t.Route) < 2 {
		return nil
	}
	hops := make([]Hop, 0, len(t.Route)-1)
	for i := 0; i < len(t.Route)-1; i++ {
		hops = append(hops, Hop{Index: i, Left: t.Route[i], Right: t.Route[i+1]})
	}
	return hops
}

func (t Train) String() string {
	return fmt.Sprintf("train %s %v @ %g", t.ID, t.Route, t.Speed)
}
