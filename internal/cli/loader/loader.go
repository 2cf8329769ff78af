package loader

import (
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/lvyanru/venue-chat/internal/domain"
)

// KindProfile is the only kind a profile file may declare
const KindProfile = "Profile"

// ProfileFile is a profile definition loaded from a YAML file
type ProfileFile struct {
	// Kind must be "Profile"
	Kind string      `json:"kind"`
	Spec ProfileSpec `json:"spec"`
}

// ProfileSpec mirrors domain.Profile in a hand-editable shape
type ProfileSpec struct {
	Name      string      `json:"name,omitempty"`
	Surname   string      `json:"surname,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	Address   string      `json:"address,omitempty"`
	Location  *Location   `json:"location,omitempty"`
	Genres    []string    `json:"genres,omitempty"`
	Budget    *BudgetSpec `json:"budget,omitempty"`
	PartySize *int        `json:"partySize,omitempty"`
}

// Location is a coordinate pair
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BudgetSpec is a per-person spending range in euro
type BudgetSpec struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// LoadFromFile loads a profile definition from a YAML file
func LoadFromFile(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file ProfileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if file.Kind == "" {
		return nil, fmt.Errorf("'kind' field is required")
	}
	if file.Kind != KindProfile {
		return nil, fmt.Errorf("invalid kind '%s', must be '%s'", file.Kind, KindProfile)
	}

	return &file, nil
}

// ToProfile validates the spec and converts it to a domain profile.
// Completeness is not required here; the chat gate reports what is missing.
func (f *ProfileFile) ToProfile() (*domain.Profile, error) {
	s := f.Spec
	p := &domain.Profile{
		Name:      strings.TrimSpace(s.Name),
		Surname:   strings.TrimSpace(s.Surname),
		Phone:     strings.TrimSpace(s.Phone),
		Address:   strings.TrimSpace(s.Address),
		PartySize: s.PartySize,
	}

	for _, g := range s.Genres {
		if g = strings.TrimSpace(g); g != "" {
			p.Genres = append(p.Genres, g)
		}
	}

	if s.Location != nil {
		if s.Location.Lat < -90 || s.Location.Lat > 90 {
			return nil, fmt.Errorf("spec.location.lat out of range: %v", s.Location.Lat)
		}
		if s.Location.Lng < -180 || s.Location.Lng > 180 {
			return nil, fmt.Errorf("spec.location.lng out of range: %v", s.Location.Lng)
		}
		lat, lng := s.Location.Lat, s.Location.Lng
		p.Lat, p.Lng = &lat, &lng
	}

	if s.Budget != nil {
		if s.Budget.Min != nil && *s.Budget.Min < 0 {
			return nil, fmt.Errorf("spec.budget.min must not be negative")
		}
		if s.Budget.Min != nil && s.Budget.Max != nil && *s.Budget.Max < *s.Budget.Min {
			return nil, fmt.Errorf("spec.budget.max must not be lower than spec.budget.min")
		}
		p.BudgetMin, p.BudgetMax = s.Budget.Min, s.Budget.Max
	}

	if s.PartySize != nil && *s.PartySize <= 0 {
		return nil, fmt.Errorf("spec.partySize must be positive")
	}

	return p, nil
}
