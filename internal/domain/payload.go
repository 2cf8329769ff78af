package domain

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// PayloadKind is the type tag of a resolved tool payload
type PayloadKind string

const (
	KindResultSet    PayloadKind = "venue_grid"
	KindBookingEmbed PayloadKind = "uber_embed"
	KindReservation  PayloadKind = "reservation_card"
	KindTicket       PayloadKind = "prevendita_card"
)

// Valid reports whether k is one of the known payload kinds
func (k PayloadKind) Valid() bool {
	switch k {
	case KindResultSet, KindBookingEmbed, KindReservation, KindTicket:
		return true
	}
	return false
}

// IsConfirmation reports whether payloads of this kind become overlays
func (k PayloadKind) IsConfirmation() bool {
	return k == KindReservation || k == KindTicket
}

// SplicesInline reports whether payloads of this kind are rendered into the
// transcript as soon as they arrive
func (k PayloadKind) SplicesInline() bool {
	return k == KindResultSet || k == KindBookingEmbed
}

// Payload is a tool result normalized into exactly one known kind.
// Exactly one of the variant pointers is set, matching Kind.
type Payload struct {
	Kind         PayloadKind
	ResultSet    *ResultSet
	Booking      *BookingEmbed
	Confirmation *Confirmation
}

// DecodePayload decodes data as the variant selected by kind and stamps the
// type tag on it.
func DecodePayload(kind PayloadKind, data []byte) (*Payload, error) {
	p := &Payload{Kind: kind}
	switch kind {
	case KindResultSet:
		var rs ResultSet
		if err := sonic.Unmarshal(data, &rs); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
		}
		rs.Type = kind
		p.ResultSet = &rs
	case KindBookingEmbed:
		var be BookingEmbed
		if err := sonic.Unmarshal(data, &be); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
		}
		be.Type = kind
		p.Booking = &be
	case KindReservation, KindTicket:
		var c Confirmation
		if err := sonic.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
		}
		c.Type = kind
		p.Confirmation = &c
	default:
		return nil, NewInvalidInputError(fmt.Sprintf("unknown payload kind %q", kind))
	}
	return p, nil
}

// MarshalJSON writes the canonical tagged form of the payload
func (p *Payload) MarshalJSON() ([]byte, error) {
	switch {
	case p.ResultSet != nil:
		return sonic.Marshal(p.ResultSet)
	case p.Booking != nil:
		return sonic.Marshal(p.Booking)
	case p.Confirmation != nil:
		return sonic.Marshal(p.Confirmation)
	}
	return nil, NewInvalidInputError(fmt.Sprintf("payload %q has no variant", p.Kind))
}

// UnmarshalJSON reads the canonical tagged form written by MarshalJSON
func (p *Payload) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type PayloadKind `json:"type"`
	}
	if err := sonic.Unmarshal(data, &tag); err != nil {
		return err
	}
	decoded, err := DecodePayload(tag.Type, data)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}

// FlexString accepts either a JSON string or a JSON number
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*f = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		*f = FlexString(raw)
	}
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// FlexFloat is an optional number that also accepts numeric strings.
// A value of any other shape leaves it unset instead of failing the decode.
type FlexFloat struct {
	Value float64
	Valid bool
}

// Float returns a set FlexFloat
func Float(v float64) FlexFloat {
	return FlexFloat{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat{}
	v, ok := parseNumber(data)
	if ok {
		*f = Float(v)
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f.Value, 'f', -1, 64), nil
}

// Ptr returns the value as a pointer, nil when unset
func (f FlexFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// FlexInt is a count that also accepts numeric strings and fractional
// numbers. Anything else decodes as zero.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	*n = 0
	if v, ok := parseNumber(data); ok && math.Abs(v) <= math.MaxInt32 {
		*n = FlexInt(v)
	}
	return nil
}

func parseNumber(data []byte) (float64, bool) {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return 0, false
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ============ result-set ============

// ResultSet is a ranked list of venues with a visible window (Venues) and,
// when the server kept it, the full candidate list (AllVenues).
type ResultSet struct {
	Type      PayloadKind     `json:"type"`
	Title     string          `json:"title,omitempty"`
	Venues    []Venue         `json:"venues"`
	AllVenues []Venue         `json:"all_venues,omitempty"`
	Total     FlexInt         `json:"total,omitempty"`
	Limit     FlexInt         `json:"limit,omitempty"`
	Offset    FlexInt         `json:"offset,omitempty"`
	Criteria  *SearchCriteria `json:"criteria,omitempty"`
}

// SearchCriteria echoes the filters the server ranked with
type SearchCriteria struct {
	PreferredGenres []string  `json:"preferred_genres,omitempty"`
	BudgetMin       FlexFloat `json:"budget_min,omitzero"`
	BudgetMax       FlexFloat `json:"budget_max,omitzero"`
	MaxDistanceKm   FlexFloat `json:"max_distance_km,omitzero"`
}

// Venue is one ranked recommendation
type Venue struct {
	ID             FlexString      `json:"id"`
	Name           string          `json:"name"`
	Address        string          `json:"address,omitempty"`
	City           string          `json:"city,omitempty"`
	MusicGenres    []string        `json:"music_genres,omitempty"`
	Rating         FlexFloat       `json:"rating,omitzero"`
	DistanceKm     FlexFloat       `json:"distance_km,omitzero"`
	Score          FlexFloat       `json:"score,omitzero"`
	Popularity     FlexFloat       `json:"popularity,omitzero"`
	ImageURL       string          `json:"image_url,omitempty"`
	ScoreBreakdown *ScoreBreakdown `json:"score_breakdown,omitempty"`
}

// ScoreBreakdown holds the per-criterion components of a venue score
type ScoreBreakdown struct {
	Budget FlexFloat `json:"budget,omitzero"`
}

// Badge is a short highlight shown on a venue card
type Badge struct {
	Label string
	Class string
}

const maxBadges = 3

// Badges derives the highlights of a venue, at most three
func (v Venue) Badges() []Badge {
	var badges []Badge
	if v.Score.Value >= 0.85 {
		badges = append(badges, Badge{Label: "Top match"})
	}
	if v.Popularity.Value >= 90 {
		badges = append(badges, Badge{Label: "Trending", Class: "trending"})
	}
	if v.ScoreBreakdown != nil && v.ScoreBreakdown.Budget.Value >= 0.9 {
		badges = append(badges, Badge{Label: "Best value", Class: "value"})
	}
	if v.DistanceKm.Valid && v.DistanceKm.Value <= 3 {
		badges = append(badges, Badge{Label: "Nearby", Class: "nearby"})
	}
	if len(badges) > maxBadges {
		badges = badges[:maxBadges]
	}
	return badges
}

// TotalCount is the number of results the server reported
func (rs *ResultSet) TotalCount() int {
	switch {
	case rs.Total > 0:
		return int(rs.Total)
	case len(rs.AllVenues) > 0:
		return len(rs.AllVenues)
	}
	return len(rs.Venues)
}

// HasMore reports whether more results exist than are visible, whether or
// not they are held locally
func (rs *ResultSet) HasMore() bool {
	return rs.TotalCount() > len(rs.Venues)
}

// CanExpand reports whether the visible window can grow from client-held data
func (rs *ResultSet) CanExpand() bool {
	return len(rs.AllVenues) > rs.visible()
}

func (rs *ResultSet) visible() int {
	if len(rs.Venues) > 0 {
		return len(rs.Venues)
	}
	return int(rs.Limit)
}

// Expand grows the visible window by increment, capped at the full list.
// It returns the receiver and false when nothing can be added.
func (rs *ResultSet) Expand(increment int) (*ResultSet, bool) {
	if increment <= 0 || !rs.CanExpand() {
		return rs, false
	}
	next := rs.visible() + increment
	if next > len(rs.AllVenues) {
		next = len(rs.AllVenues)
	}

	out := *rs
	out.Offset = 0
	out.Limit = FlexInt(next)
	out.Venues = append([]Venue(nil), rs.AllVenues[:next]...)
	return &out, true
}

// ============ external booking embed ============

// BookingEmbed is a ride-booking widget pointing at the chosen venue
type BookingEmbed struct {
	Type           PayloadKind `json:"type"`
	PickupAddress  string      `json:"pickup_address,omitempty"`
	DropoffAddress string      `json:"dropoff_address,omitempty"`
	Ride           *Ride       `json:"ride,omitempty"`
}

// Ride is the quote attached to a booking embed
type Ride struct {
	ID         FlexString `json:"id,omitempty"`
	EtaMinutes FlexFloat  `json:"eta_minutes,omitzero"`
	PriceLow   FlexFloat  `json:"price_low,omitzero"`
	PriceHigh  FlexFloat  `json:"price_high,omitzero"`
}

// ============ reservation / ticket confirmation ============

// Confirmation is a booking outcome. Reservations carry Reservation,
// tickets carry Prevendita.
type Confirmation struct {
	Type           PayloadKind     `json:"type"`
	Status         FlexString      `json:"status,omitempty"`
	Reservation    *BookingDetails `json:"reservation,omitempty"`
	Prevendita     *BookingDetails `json:"prevendita,omitempty"`
	ReservationURL string          `json:"reservation_url,omitempty"`
	GuestURL       string          `json:"guest_url,omitempty"`
	QRCodeURL      string          `json:"qrcode_url,omitempty"`
	HostPasscode   string          `json:"host_passcode,omitempty"`
}

// BookingDetails is the record behind a confirmation
type BookingDetails struct {
	VenueID             FlexString `json:"venue_id,omitempty"`
	Status              FlexString `json:"status,omitempty"`
	UserName            string     `json:"user_name,omitempty"`
	UserPhone           string     `json:"user_phone,omitempty"`
	PartySize           FlexString `json:"party_size,omitempty"`
	TableNumber         FlexString `json:"table_number,omitempty"`
	ReservationDatetime string     `json:"reservation_datetime,omitempty"`
	EventDatetime       string     `json:"event_datetime,omitempty"`
	TicketType          string     `json:"ticket_type,omitempty"`
}

// Details returns the booking record matching the confirmation kind
func (c *Confirmation) Details() *BookingDetails {
	var d *BookingDetails
	if c.Type == KindTicket {
		d = c.Prevendita
	} else {
		d = c.Reservation
	}
	if d == nil {
		return &BookingDetails{}
	}
	return d
}

// EffectiveStatus resolves the status from the payload, then the record,
// then the kind default
func (c *Confirmation) EffectiveStatus() string {
	if c.Status != "" {
		return c.Status.String()
	}
	if s := c.Details().Status; s != "" {
		return s.String()
	}
	if c.Type == KindTicket {
		return "active"
	}
	return "pending"
}

// TicketType returns the ticket type, defaulting to standard
func (c *Confirmation) TicketType() string {
	if t := c.Details().TicketType; t != "" {
		return t
	}
	return "standard"
}

// TriggerLabel is the short link text that reveals the overlay
func (c *Confirmation) TriggerLabel() string {
	if c.Type == KindTicket {
		return "Presale " + c.TicketType()
	}
	table := c.Details().TableNumber.String()
	if table == "" {
		table = "—"
	}
	return "Table " + table
}

// TriggerURL is where the trigger link points. The host URL of a
// reservation carries the passcode so the creator can open it directly.
func (c *Confirmation) TriggerURL() string {
	if c.Type == KindTicket {
		return c.GuestURL
	}
	if c.ReservationURL == "" {
		return "#"
	}
	if c.HostPasscode == "" {
		return c.ReservationURL
	}
	sep := "?"
	if strings.Contains(c.ReservationURL, "?") {
		sep = "&"
	}
	return c.ReservationURL + sep + "passcode=" + url.QueryEscape(c.HostPasscode)
}
