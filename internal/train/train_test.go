package train

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUnmarshalTrainNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Train
	}{
		{"string number", `{"train_number": "734", "speed": 20, "route": ["a", "b"]}`,
			Train{ID: "734", Route: []string{"a", "b"}, Speed: 20}},
		{"numeric number", `{"train_number": 256, "speed": 12.5, "route": ["d", "e", "f"]}`,
			Train{ID: "256", Route: []string{"d", "e", "f"}, Speed: 12.5}},
		{"missing number", `{"speed": 1, "route": []}`,
			Train{Route: []string{}, Speed: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Train
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshalRejectsObjectNumber(t *testing.T) {
	var got Train
	if err := json.Unmarshal([]byte(`{"train_number": {"x": 1}, "speed": 1}`), &got); err == nil {
		t.Fatal("expected error for object train_number")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		train   Train
		wantErr bool
	}{
		{"ok", Train{ID: "1", Route: []string{"a", "b"}, Speed: 10}, false},
		{"single station is still well formed", Train{ID: "1", Route: []string{"a"}, Speed: 10}, false},
		{"missing id", Train{Route: []string{"a", "b"}, Speed: 10}, true},
		{"zero speed", Train{ID: "1", Route: []string{"a", "b"}}, true},
		{"negative speed", Train{ID: "1", Route: []string{"a", "b"}, Speed: -4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.train.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestHops(t *testing.T) {
	tr := Train{ID: "1", Route: []string{"d", "e", "f"}, Speed: 20}
	want := []Hop{{Index: 0, Left: "d", Right: "e"}, {Index: 1, Left: "e", Right: "f"}}
	if diff := cmp.Diff(want, tr.Hops()); diff != "" {
		t.Errorf("Hops mismatch (-want +got):\n%s", diff)
	}
	if hops := (Train{ID: "1", Route: []string{"d"}}).Hops(); hops != nil {
		t.Errorf("single-station Hops = %v, want nil", hops)
	}
}
