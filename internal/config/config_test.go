package config

import "testing"

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Model != "pendulum" {
		t.Errorf("expected model pendulum, got %s", opts.Model)
	}
	if opts.N <= 0 || opts.T <= 0 {
		t.Error("N and T should be positive")
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("DefaultOptions() should validate, got %v", err)
	}
}

func TestValidateRejectsBadHorizon(t *testing.T) {
	opts := DefaultOptions()
	opts.N = 0
	if err := opts.Validate(); err == nil {
		t.Error("expected an error for N=0")
	}
}

func TestValidateRejectsZeroThreads(t *testing.T) {
	opts := DefaultOptions()
	opts.NThreads = 0
	if err := opts.Validate(); err == nil {
		t.Error("expected an error for NThreads=0")
	}
}

func TestValidateRejectsBadFractionToBoundary(t *testing.T) {
	opts := DefaultOptions()
	opts.FractionToBoundary = 1.0
	if err := opts.Validate(); err == nil {
		t.Error("expected an error for fraction_to_boundary=1.0")
	}
}

func TestGetPreset(t *testing.T) {
	opts := GetPreset("pendulum", "s1")
	if opts == nil {
		t.Fatal("expected a preset, got nil")
	}
	if opts.N != 20 {
		t.Errorf("expected N=20, got %d", opts.N)
	}
}

func TestGetPresetNotFound(t *testing.T) {
	if GetPreset("pendulum", "nonexistent") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
	if GetPreset("nonexistent", "s1") != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets("pendulum")
	if len(names) == 0 {
		t.Error("expected at least one pendulum preset")
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent model")
	}
}
