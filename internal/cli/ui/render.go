package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/mattn/go-runewidth"

	"github.com/lvyanru/venue-chat/internal/domain"
)

// Renderer turns history entries into terminal text
type Renderer struct {
	width    int
	markdown *glamour.TermRenderer
}

// NewRenderer creates a renderer wrapping at width. style is a glamour
// standard style name ("dark", "light", "notty", ...) or "auto".
func NewRenderer(width int, style string) *Renderer {
	if width < 20 {
		width = 20
	}
	opt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		opt = glamour.WithStandardStyle(style)
	}
	md, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(width), glamour.WithPreservedNewLines())
	if err != nil {
		md = nil
	}
	return &Renderer{width: width, markdown: md}
}

// Width returns the wrap width
func (r *Renderer) Width() int {
	return r.width
}

// Markdown renders assistant markdown, falling back to wrapped plain text
func (r *Renderer) Markdown(text string) string {
	if r.markdown != nil {
		if out, err := r.markdown.Render(text); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return WrapText(text, r.width)
}

// Transcript renders every message, separated by blank lines
func (r *Renderer) Transcript(messages []domain.Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, r.Message(m))
	}
	return strings.Join(parts, "\n\n")
}

// Message renders one history entry
func (r *Renderer) Message(m domain.Message) string {
	if m.Role == domain.RoleUser {
		return Styles.UserLabel.Render("You") + "\n" + WrapText(m.Content, r.width)
	}
	if m.Kind == domain.ContentBlock {
		return r.Block(m.Block)
	}

	out := Styles.BotLabel.Render("Assistant") + "\n" + r.Markdown(m.Content)
	if m.Overlay != nil && m.Overlay.Confirmation != nil {
		out += "\n" + r.Confirmation(m.Overlay.Confirmation)
	}
	return out
}

// Progress renders the in-progress assistant bubble
func (r *Renderer) Progress(text string) string {
	return Styles.BotLabel.Render("Assistant") + Styles.Muted.Render(" (typing)") + "\n" + WrapText(text, r.width)
}

// Block renders a payload as a standalone block
func (r *Renderer) Block(p *domain.Payload) string {
	switch {
	case p == nil:
		return ""
	case p.ResultSet != nil:
		return r.ResultSet(p.ResultSet)
	case p.Booking != nil:
		return r.Booking(p.Booking)
	case p.Confirmation != nil:
		return r.Confirmation(p.Confirmation)
	}
	return Styles.Muted.Render(fmt.Sprintf("[%s]", p.Kind))
}

// ResultSet renders ranked venues as a tree, one node per visible venue
func (r *Renderer) ResultSet(rs *domain.ResultSet) string {
	title := rs.Title
	if title == "" {
		title = "Venues"
	}
	root := tree.Root(Styles.Title.Render("🎶 " + title))

	if len(rs.Venues) == 0 {
		root.Child(Styles.Muted.Render("(no venues found)"))
	}
	for i, v := range rs.Venues {
		root.Child(venueNode(i+1, v))
	}

	footer := fmt.Sprintf("Showing %d of %d", len(rs.Venues), rs.TotalCount())
	switch {
	case rs.CanExpand():
		footer += " · /more to see more"
	case rs.HasMore():
		footer += " · /more to ask for more"
	}
	return root.String() + "\n" + Styles.Muted.Render(footer)
}

func venueNode(n int, v domain.Venue) *tree.Tree {
	label := Styles.VenueName.Render(fmt.Sprintf("%d. %s", n, v.Name))
	if badges := v.Badges(); len(badges) > 0 {
		names := make([]string, len(badges))
		for i, b := range badges {
			names[i] = b.Label
		}
		label += " " + Styles.Badge.Render("["+strings.Join(names, " · ")+"]")
	}

	node := tree.New().Root(label)
	if addr := joinNonEmpty(", ", v.Address, v.City); addr != "" {
		node.Child(keyValue("Address:", addr))
	}
	if len(v.MusicGenres) > 0 {
		node.Child(keyValue("Genres:", strings.Join(v.MusicGenres, ", ")))
	}
	var stats []string
	if v.Rating.Valid {
		stats = append(stats, "★ "+formatFloat(v.Rating.Value, 1))
	}
	if v.DistanceKm.Valid {
		stats = append(stats, formatFloat(v.DistanceKm.Value, 1)+" km")
	}
	if v.Score.Value > 0 {
		stats = append(stats, fmt.Sprintf("match %d%%", int(v.Score.Value*100+0.5)))
	}
	if len(stats) > 0 {
		node.Child(Styles.Muted.Render(strings.Join(stats, " · ")))
	}
	return node
}

// Booking renders a ride booking embed
func (r *Renderer) Booking(b *domain.BookingEmbed) string {
	lines := []string{Styles.Title.Render("🚕 Ride")}
	if b.PickupAddress != "" {
		lines = append(lines, keyValue("From:", b.PickupAddress))
	}
	if b.DropoffAddress != "" {
		lines = append(lines, keyValue("To:", b.DropoffAddress))
	}
	if ride := b.Ride; ride != nil {
		if ride.EtaMinutes.Valid {
			lines = append(lines, keyValue("Pickup in:", formatFloat(ride.EtaMinutes.Value, -1)+" min"))
		}
		if price := priceRange(ride.PriceLow.Ptr(), ride.PriceHigh.Ptr()); price != "" {
			lines = append(lines, keyValue("Estimate:", price))
		}
	}
	return Styles.Card.Width(r.cardWidth()).Render(strings.Join(lines, "\n"))
}

// Confirmation renders a reservation or ticket overlay
func (r *Renderer) Confirmation(c *domain.Confirmation) string {
	d := c.Details()

	title := "🍸 Reservation"
	if c.Type == domain.KindTicket {
		title = "🎟 Presale ticket · " + c.TicketType()
	}
	lines := []string{
		Styles.Title.Render(title),
		keyValue("Status:", c.EffectiveStatus()),
	}
	add := func(key, value string) {
		if value != "" {
			lines = append(lines, keyValue(key, value))
		}
	}
	add("Venue:", d.VenueID.String())
	add("Name:", d.UserName)
	add("Phone:", d.UserPhone)
	add("Guests:", d.PartySize.String())
	if c.Type == domain.KindReservation {
		add("Table:", d.TableNumber.String())
		add("When:", d.ReservationDatetime)
	} else {
		add("When:", d.EventDatetime)
	}
	add("Link:", c.TriggerURL())
	add("QR code:", c.QRCodeURL)
	add("Host passcode:", c.HostPasscode)

	return Styles.Overlay.Width(r.cardWidth()).Render(strings.Join(lines, "\n"))
}

// Profile renders the profile as a tree
func Profile(p *domain.Profile) string {
	status := Styles.BotLabel.Render("✓ ready")
	if !p.IsComplete() {
		status = lipgloss.NewStyle().Foreground(colorWarn).Render("missing " + strings.Join(p.Missing(), ", "))
	}
	root := tree.Root(Styles.Title.Render("Profile") + " " + status)

	location := p.Address
	if p.HasCoordinates() {
		coords := formatFloat(*p.Lat, 4) + ", " + formatFloat(*p.Lng, 4)
		location = joinNonEmpty(" · ", location, coords)
	}
	root.Child(
		keyValue("Name:", orDash(joinNonEmpty(" ", p.Name, p.Surname))),
		keyValue("Phone:", orDash(p.Phone)),
		keyValue("Location:", orDash(location)),
		keyValue("Genres:", orDash(strings.Join(p.Genres, ", "))),
		keyValue("Budget:", orDash(priceRange(p.BudgetMin, p.BudgetMax))),
	)
	if p.PartySize != nil {
		root.Child(keyValue("Party:", strconv.Itoa(*p.PartySize)))
	}
	return root.String()
}

func (r *Renderer) cardWidth() int {
	if r.width > 64 {
		return 64
	}
	return r.width
}

// WrapText wraps text at word boundaries to width display cells, keeping
// existing line breaks. Words wider than width are broken.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, width int) string {
	if runewidth.StringWidth(line) <= width {
		return line
	}

	var out strings.Builder
	lineWidth := 0
	for _, word := range strings.Fields(line) {
		w := runewidth.StringWidth(word)
		switch {
		case lineWidth == 0:
		case lineWidth+1+w > width:
			out.WriteByte('\n')
			lineWidth = 0
		default:
			out.WriteByte(' ')
			lineWidth++
		}

		for _, r := range word {
			rw := runewidth.RuneWidth(r)
			if lineWidth+rw > width && lineWidth > 0 {
				out.WriteByte('\n')
				lineWidth = 0
			}
			out.WriteRune(r)
			lineWidth += rw
		}
	}
	return out.String()
}

func keyValue(key, value string) string {
	return Styles.Key.Render(key) + " " + Styles.Value.Render(value)
}

func priceRange(low, high *float64) string {
	switch {
	case low != nil && high != nil:
		return "€" + formatFloat(*low, 0) + "–" + formatFloat(*high, 0)
	case low != nil:
		return "from €" + formatFloat(*low, 0)
	case high != nil:
		return "up to €" + formatFloat(*high, 0)
	}
	return ""
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func joinNonEmpty(sep string, values ...string) string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
