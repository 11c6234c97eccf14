package model

import (
	"testing"
)

func TestNewPreset(t *testing.T) {
	req := NewRequest("hem", 12, 20, 20, MillerIndex{0, 1, 2})
	settings := DefaultSettings()

	p := NewPreset("r-plane", "hematite r-plane slab", req, settings)

	if p.Name != "r-plane" {
		t.Errorf("expected name 'r-plane', got %q", p.Name)
	}
	if p.ID == "" {
		t.Error("expected non-empty ID")
	}
	if p.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if p.Request.Miller != (MillerIndex{0, 1, 2}) {
		t.Errorf("unexpected index %v", p.Request.Miller)
	}

	settings.Formats[0] = "xyz"
	if p.Settings.Formats[0] != "cif" {
		t.Error("preset formats should not alias the caller's slice")
	}
}

func TestPresetToRequest(t *testing.T) {
	req := NewRequest("hem", 12, 20, 25, MillerIndex{0, 0, 1})
	req.Padding = 15
	p := NewPreset("basal", "", req, DefaultSettings())

	got := p.ToRequest("")
	if got.ID == req.ID {
		t.Error("expected a fresh request ID")
	}
	if got.Label != "hem" {
		t.Errorf("expected preset label, got %q", got.Label)
	}
	if got.Padding != 15 || got.Depth != 25 {
		t.Errorf("unexpected request %+v", got)
	}

	if got := p.ToRequest("custom"); got.Label != "custom" {
		t.Errorf("expected label 'custom', got %q", got.Label)
	}
}

func TestPresetStore(t *testing.T) {
	store := NewPresetStore()
	a := NewPreset("A", "", NewRequest("", 10, 20, 20, MillerIndex{0, 0, 1}), DefaultSettings())
	b := NewPreset("B", "", NewRequest("", 10, 20, 20, MillerIndex{1, 0, 0}), DefaultSettings())
	store.Add(a)
	store.Add(b)

	if names := store.Names(); len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("unexpected names %v", names)
	}
	if store.FindByID(b.ID) == nil {
		t.Error("expected to find B by ID")
	}
	if store.FindByName("missing") != nil {
		t.Error("expected nil for missing name")
	}

	if !store.Remove(a.ID) {
		t.Error("expected Remove to succeed")
	}
	if store.Remove(a.ID) {
		t.Error("expected second Remove to fail")
	}
	if len(store.Presets) != 1 {
		t.Errorf("expected 1 preset, got %d", len(store.Presets))
	}
}

func TestPresetStorePut(t *testing.T) {
	store := NewPresetStore()
	first := NewPreset("basal", "", NewRequest("", 10, 20, 20, MillerIndex{0, 0, 1}), DefaultSettings())
	store.Put(first)

	second := NewPreset("basal", "thicker", NewRequest("", 18, 20, 20, MillerIndex{0, 0, 1}), DefaultSettings())
	store.Put(second)

	if len(store.Presets) != 1 {
		t.Fatalf("expected 1 preset, got %d", len(store.Presets))
	}
	got := store.Presets[0]
	if got.ID != first.ID {
		t.Error("Put should keep the existing ID")
	}
	if got.Request.Thickness != 18 || got.Description != "thicker" {
		t.Errorf("Put did not replace content: %+v", got)
	}
}
