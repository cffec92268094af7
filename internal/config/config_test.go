package config

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/contactlqr/internal/contact"
	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != DefaultModel {
		t.Errorf("expected model %s, got %s", DefaultModel, cfg.Model)
	}
	if cfg.Sweep.Steps <= 0 {
		t.Error("sweep steps should be positive")
	}
	if cfg.MinCoefficient <= 0 {
		t.Error("min coefficient should be positive")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("planar_body", "floor")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Posture.Configuration[1] != 0.1 {
		t.Errorf("expected height 0.1, got %f", cfg.Posture.Configuration[1])
	}
	if cfg.Sweep.Steps != DefaultSweepSteps {
		t.Errorf("expected default sweep, got %+v", cfg.Sweep)
	}

	cfg.Posture.Configuration[1] = 5
	if Presets["planar_body"]["floor"].Posture.Configuration[1] != 0.1 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("pendulum", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "small")
	if cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("planar_body")
	want := []string{"floor", "stuck", "two_feet"}
	if len(presets) != len(want) {
		t.Fatalf("expected %v, got %v", want, presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("expected %v, got %v", want, presets)
		}
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestPresetsResolve(t *testing.T) {
	reg := models.NewRegistry()
	for model, presets := range Presets {
		m, err := reg.GetMechanism(model)
		if err != nil {
			t.Fatalf("preset model %s: %v", model, err)
		}
		for name := range presets {
			cfg := GetPreset(model, name)
			if _, err := cfg.State(m); err != nil {
				t.Errorf("%s/%s: state: %v", model, name, err)
			}
			if _, err := cfg.ContactSet(m); err != nil {
				t.Errorf("%s/%s: contacts: %v", model, name, err)
			}
			if _, _, err := cfg.CostMatrices(m); err != nil {
				t.Errorf("%s/%s: weights: %v", model, name, err)
			}
		}
	}
}

func TestCostMatrices(t *testing.T) {
	m := models.NewCartPole().Mechanism()

	tests := []struct {
		name    string
		q, r    []float64
		wantQ00 float64
		wantR11 float64
		wantErr bool
	}{
		{"defaults", nil, nil, DefaultStateWeight, DefaultInputWeight, false},
		{"broadcast", []float64{3}, []float64{0.5}, 3, 0.5, false},
		{"full", []float64{2, 1, 1, 1}, []float64{1, 4}, 2, 4, false},
		{"wrong length", []float64{1, 2}, nil, 0, 0, true},
		{"negative", nil, []float64{-1}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Weights = WeightsConfig{Q: tt.q, R: tt.r}
			q, r, err := cfg.CostMatrices(m)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if rows, _ := q.Dims(); rows != 4 {
				t.Errorf("expected 4×4 Q, got %d rows", rows)
			}
			if q.At(0, 0) != tt.wantQ00 || r.At(1, 1) != tt.wantR11 {
				t.Errorf("unexpected weights Q00=%f R11=%f", q.At(0, 0), r.At(1, 1))
			}
		})
	}
}

func TestContactSet(t *testing.T) {
	m := models.NewPlanarBody().Mechanism()
	cfg := GetPreset("planar_body", "floor")

	cs, err := cfg.ContactSet(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 1 || cs[0].Mode != contact.Frictionless || cs[0].Normal[2] != 1 {
		t.Errorf("unexpected contacts %+v", cs)
	}

	cfg.Contacts[0].Body = "wheel"
	if _, err := cfg.ContactSet(m); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	cfg.Contacts[0].Body = "body"
	cfg.Contacts[0].Mode = "sticky"
	if _, err := cfg.ContactSet(m); err == nil {
		t.Error("expected unknown mode error")
	}
}

func TestStateAndInput(t *testing.T) {
	m := models.NewPlanarBody().Mechanism()
	cfg := DefaultConfig()

	s, err := cfg.State(m)
	if err != nil {
		t.Fatal(err)
	}
	if !s.IsStatic() {
		t.Error("posture state must be static")
	}
	if in, err := cfg.Input(m); err != nil || in != nil {
		t.Errorf("expected gravity compensation, got %v (%v)", in, err)
	}

	cfg.Posture.Configuration = []float64{1}
	if _, err := cfg.State(m); !errors.Is(err, dynamo.ErrDimension) {
		t.Errorf("expected ErrDimension, got %v", err)
	}
	cfg.Posture.Input = []float64{1, 2}
	if _, err := cfg.Input(m); !errors.Is(err, dynamo.ErrDimension) {
		t.Errorf("expected ErrDimension, got %v", err)
	}

	cfg.Posture.Configuration = []float64{0, math.Inf(1), 0}
	if _, err := cfg.State(m); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	cfg := GetPreset("planar_body", "two_feet")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Model != "planar_body" || len(got.Contacts) != 2 {
		t.Errorf("round trip lost data: %+v", got)
	}
	if got.Contacts[1].Offset[0] != 0.2 || got.Contacts[1].Mode != "frictionless" {
		t.Errorf("unexpected contact %+v", got.Contacts[1])
	}
}

func TestResolve(t *testing.T) {
	reg := models.NewRegistry()

	sc, err := GetPreset("planar_body", "floor").Resolve(reg)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Mechanism.Name != "planar_body" || len(sc.Contacts) != 1 || sc.Input != nil {
		t.Errorf("unexpected scenario %+v", sc)
	}
	if r, _ := sc.Q.Dims(); r != 6 {
		t.Errorf("expected 6×6 Q, got %d rows", r)
	}

	cfg := DefaultConfig()
	cfg.Model = "hexapod"
	if _, err := cfg.Resolve(reg); !errors.Is(err, dynamo.ErrUnknownMechanism) {
		t.Errorf("expected ErrUnknownMechanism, got %v", err)
	}
}
