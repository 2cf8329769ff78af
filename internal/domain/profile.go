package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Profile is what the user tells the assistant about themselves. It is sent
// once, as a prefix of the first outbound message of a conversation.
type Profile struct {
	Name      string   `json:"name,omitempty"`
	Surname   string   `json:"surname,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Address   string   `json:"address,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	BudgetMin *float64 `json:"budget_min,omitempty"`
	BudgetMax *float64 `json:"budget_max,omitempty"`
	PartySize *int     `json:"party_size,omitempty"`
}

// HasCoordinates reports whether both coordinates are set
func (p *Profile) HasCoordinates() bool {
	return p.Lat != nil && p.Lng != nil
}

// IsComplete reports whether the profile has a location (address or
// coordinates) and at least one genre
func (p *Profile) IsComplete() bool {
	if p == nil {
		return false
	}
	hasLocation := strings.TrimSpace(p.Address) != "" || p.HasCoordinates()
	return hasLocation && len(p.Genres) > 0
}

// Missing lists the fields blocking completeness
func (p *Profile) Missing() []string {
	var missing []string
	if p == nil || (strings.TrimSpace(p.Address) == "" && !p.HasCoordinates()) {
		missing = append(missing, "location")
	}
	if p == nil || len(p.Genres) == 0 {
		missing = append(missing, "genres")
	}
	return missing
}

// Summary is a one-line description of the profile state
func (p *Profile) Summary() string {
	location := "Location missing"
	switch {
	case p.Address != "":
		location = p.Address
	case p.HasCoordinates():
		location = fmt.Sprintf("Lat %s · Lng %s", formatCoord(p.Lat), formatCoord(p.Lng))
	}
	genres := "Genres missing"
	if len(p.Genres) > 0 {
		genres = strings.Join(p.Genres, ", ")
	}
	if p.IsComplete() {
		return fmt.Sprintf("Profile ready · %s · %s", location, genres)
	}
	return fmt.Sprintf("Complete the required fields · %s · %s", location, genres)
}

// InfoPrefix renders the user-context line prepended to the first message.
// The wording is part of the agent's prompt contract.
func (p *Profile) InfoPrefix() string {
	address := "posizione manuale"
	if p.Address != "" {
		address = "via " + p.Address
	}
	coords := "n/d"
	if p.HasCoordinates() {
		coords = formatCoord(p.Lat) + ", " + formatCoord(p.Lng)
	}
	genres := "n/d"
	if len(p.Genres) > 0 {
		genres = strings.Join(p.Genres, ", ")
	}

	var personal []string
	if person := strings.TrimSpace(strings.Join(nonEmpty(p.Name, p.Surname), " ")); person != "" {
		personal = append(personal, person)
	}
	if p.Phone != "" {
		personal = append(personal, "tel: "+p.Phone)
	}

	var extra []string
	if positive(p.BudgetMin) || positive(p.BudgetMax) {
		extra = append(extra, fmt.Sprintf("budget: %s-%s€", formatAmount(p.BudgetMin), formatAmount(p.BudgetMax)))
	}
	if p.PartySize != nil && *p.PartySize > 0 {
		extra = append(extra, fmt.Sprintf("gruppo: %d persone", *p.PartySize))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INFO UTENTE: posizione %s (coordinate: %s), preferenze generi musicali: %s", address, coords, genres)
	if len(personal) > 0 {
		b.WriteString(", contatto: " + strings.Join(personal, ", "))
	}
	if len(extra) > 0 {
		b.WriteString(", " + strings.Join(extra, ", "))
	}
	b.WriteString(".\n\n")
	return b.String()
}

func formatCoord(v *float64) string {
	if v == nil {
		return "—"
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func formatAmount(v *float64) string {
	if !positive(v) {
		return "—"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func positive(v *float64) bool {
	return v != nil && *v != 0
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
