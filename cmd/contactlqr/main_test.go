package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/contactlqr/internal/config"
	"github.com/san-kum/contactlqr/internal/models"
)

func scenarioCmd(t *testing.T) *cobra.Command {
	t.Helper()
	configFile, preset = "", ""
	posture, stateQ, inputR = nil, nil, nil
	cmd := &cobra.Command{Use: "test"}
	scenarioFlags(cmd)
	return cmd
}

func TestLoadScenarioDefaults(t *testing.T) {
	cmd := scenarioCmd(t)
	cfg, err := loadScenario(cmd, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != config.DefaultModel {
		t.Errorf("expected %s, got %s", config.DefaultModel, cfg.Model)
	}

	cfg, err = loadScenario(cmd, []string{"pendulum"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "pendulum" {
		t.Errorf("expected pendulum, got %s", cfg.Model)
	}
}

func TestLoadScenarioFlagsOverridePreset(t *testing.T) {
	cmd := scenarioCmd(t)
	if err := cmd.Flags().Set("preset", "inverted"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("weights-r", "3"); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadScenario(cmd, []string{"pendulum"})
	if err != nil {
		t.Fatal(err)
	}
	want := config.GetPreset("pendulum", "inverted")
	if cfg.Posture.Configuration[0] != want.Posture.Configuration[0] {
		t.Errorf("preset posture lost: %v", cfg.Posture.Configuration)
	}
	if len(cfg.Weights.R) != 1 || cfg.Weights.R[0] != 3 {
		t.Errorf("expected R override [3], got %v", cfg.Weights.R)
	}
	if _, err := cfg.Resolve(models.NewRegistry()); err != nil {
		t.Errorf("scenario should resolve: %v", err)
	}
}

func TestLoadScenarioUnknownPreset(t *testing.T) {
	cmd := scenarioCmd(t)
	if err := cmd.Flags().Set("preset", "nope"); err != nil {
		t.Fatal(err)
	}
	if _, err := loadScenario(cmd, []string{"pendulum"}); err == nil {
		t.Error("expected unknown preset error")
	}
}

func TestLoadScenarioConfigModelMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	cfg := config.GetPreset("cartpole", "balance")
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}

	cmd := scenarioCmd(t)
	if err := cmd.Flags().Set("config", path); err != nil {
		t.Fatal(err)
	}
	if _, err := loadScenario(cmd, []string{"pendulum"}); err == nil {
		t.Error("expected model mismatch error")
	}
	loaded, err := loadScenario(cmd, nil)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Model != "cartpole" {
		t.Errorf("expected cartpole, got %s", loaded.Model)
	}
}

func TestInputLabels(t *testing.T) {
	m := models.NewCartPole().Mechanism()
	labels := inputLabels(m)
	if len(labels) != m.Dims.NV {
		t.Fatalf("expected %d labels, got %d", m.Dims.NV, len(labels))
	}
	for _, j := range m.Joints {
		if labels[j.Index] != j.Name {
			t.Errorf("joint %s labelled %q", j.Name, labels[j.Index])
		}
	}
	if got := len(stateLabels(m)); got != 2*m.Dims.NV {
		t.Errorf("expected %d state labels, got %d", 2*m.Dims.NV, got)
	}
}
