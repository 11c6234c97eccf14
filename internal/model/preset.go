package model

import (
	"time"

	"github.com/google/uuid"
)

// Preset is a named, reusable request and settings combination.
type Preset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	Request     Request  `json:"request"`
	Settings    Settings `json:"settings"`
}

// NewPreset captures a request and settings under a name.
func NewPreset(name, description string, req Request, settings Settings) Preset {
	now := time.Now().UTC().Format(time.RFC3339)
	settings.Formats = append([]string(nil), settings.Formats...)
	return Preset{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Request:     req,
		Settings:    settings,
	}
}

// ToRequest creates a new request from this preset with a fresh ID.
func (p Preset) ToRequest(label string) Request {
	r := p.Request
	req := NewRequest(label, r.Thickness, r.Width, r.Depth, r.Miller)
	if r.Padding > 0 {
		req.Padding = r.Padding
	}
	if label == "" {
		req.Label = r.Label
	}
	return req
}

// PresetStore holds a collection of presets.
type PresetStore struct {
	Presets []Preset `json:"presets"`
}

// NewPresetStore creates an empty preset store.
func NewPresetStore() PresetStore {
	return PresetStore{
		Presets: []Preset{},
	}
}

// Add adds a preset to the store.
func (ps *PresetStore) Add(p Preset) {
	ps.Presets = append(ps.Presets, p)
}

// Put replaces the preset with the same name, keeping its ID and creation
// time, or adds p when the name is new.
func (ps *PresetStore) Put(p Preset) {
	if existing := ps.FindByName(p.Name); existing != nil {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		*existing = p
		return
	}
	ps.Add(p)
}

// Remove removes a preset by ID. Returns true if found and removed.
func (ps *PresetStore) Remove(id string) bool {
	for i, p := range ps.Presets {
		if p.ID == id {
			ps.Presets = append(ps.Presets[:i], ps.Presets[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the preset with the given ID, or nil.
func (ps *PresetStore) FindByID(id string) *Preset {
	for i := range ps.Presets {
		if ps.Presets[i].ID == id {
			return &ps.Presets[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first preset with the given name, or nil.
func (ps *PresetStore) FindByName(name string) *Preset {
	for i := range ps.Presets {
		if ps.Presets[i].Name == name {
			return &ps.Presets[i]
		}
	}
	return nil
}

// Names returns the preset names in store order.
func (ps *PresetStore) Names() []string {
	names := make([]string, len(ps.Presets))
	for i, p := range ps.Presets {
		names[i] = p.Name
	}
	return names
}
