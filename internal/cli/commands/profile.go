package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/lvyanru/venue-chat/internal/cli/loader"
	"github.com/lvyanru/venue-chat/internal/cli/ui"
	"github.com/lvyanru/venue-chat/internal/domain"
)

// commonGenres are offered in the genre picker; anything else can be typed
var commonGenres = []string{
	"jazz", "rock", "blues", "techno", "house", "indie",
	"pop", "hip hop", "latin", "reggae", "classical", "folk",
}

var profileFile string

// profileCmd is the parent profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "show or edit your profile",
	Long: `Show or edit what the assistant knows about you.

The profile is sent once, at the start of every new conversation. A location
(address or coordinates) and at least one music genre are required before
you can chat.`,
	Example: `  # Show the profile
  $ venuectl profile

  # Edit it interactively
  $ venuectl profile edit

  # Import it from a YAML file
  $ venuectl profile import -f profile.yaml

  # Set coordinates and look up the address
  $ venuectl profile locate 45.4642 9.19`,
	Args: cobra.NoArgs,
	RunE: runProfileShow,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "edit the profile interactively",
	Args:  cobra.NoArgs,
	RunE:  runProfileEdit,
}

var profileImportCmd = &cobra.Command{
	Use:   "import",
	Short: "import the profile from a YAML file",
	Args:  cobra.NoArgs,
	RunE:  runProfileImport,
}

var profileLocateCmd = &cobra.Command{
	Use:   "locate <lat> <lng>",
	Short: "set coordinates and resolve the address",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfileLocate,
}

func init() {
	profileImportCmd.Flags().StringVarP(&profileFile, "file", "f", "", "YAML file containing the profile (required)")
	_ = profileImportCmd.MarkFlagRequired("file")

	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profileImportCmd)
	profileCmd.AddCommand(profileLocateCmd)

	for _, c := range []*cobra.Command{profileCmd, profileEditCmd, profileImportCmd, profileLocateCmd} {
		c.SilenceUsage = true
	}
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return startupFailed(err)
	}

	p, err := a.profiles.Load()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("profile load failed")
	}

	fmt.Println(ui.Profile(p))
	if !p.IsComplete() {
		fmt.Println("\nRun 'venuectl profile edit' to complete it.")
	}
	return nil
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return startupFailed(err)
	}

	p, err := a.profiles.Load()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("profile load failed")
	}

	ui.PrintWelcomeBanner()
	oldAddress := p.Address
	if err := promptProfile(p); err != nil {
		ui.PrintError("failed to read input: %v", err)
		return fmt.Errorf("input failed")
	}

	if p.Address != "" && (p.Address != oldAddress || !p.HasCoordinates()) {
		ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Geocoder.Timeout)
		defer cancel()

		ui.PrintInfo("Looking up %s...", p.Address)
		found, err := geocodeAddress(ctx, a.client, p)
		if err != nil {
			// the address alone is enough for the assistant
			ui.PrintWarning("could not locate the address: %s", domain.UserMessage(err))
		} else {
			ui.PrintSuccess("Found %s", found)
		}
	}

	return saveProfile(a.profiles.Save, a.profiles.Path(), p)
}

func runProfileImport(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return startupFailed(err)
	}

	file, err := loader.LoadFromFile(profileFile)
	if err != nil {
		ui.PrintError("failed to load %s: %v", profileFile, err)
		return fmt.Errorf("profile import failed")
	}
	p, err := file.ToProfile()
	if err != nil {
		ui.PrintError("invalid profile: %v", err)
		return fmt.Errorf("profile import failed")
	}

	return saveProfile(a.profiles.Save, a.profiles.Path(), p)
}

func runProfileLocate(cmd *cobra.Command, args []string) error {
	lat, lng, err := parseCoordinates(args[0], args[1])
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("invalid arguments")
	}

	a, err := loadApp()
	if err != nil {
		return startupFailed(err)
	}

	p, err := a.profiles.Load()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("profile load failed")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Geocoder.Timeout)
	defer cancel()

	if err := locate(ctx, a.client, p, lat, lng); err != nil {
		ui.PrintWarning("could not resolve an address: %s", domain.UserMessage(err))
	}

	return saveProfile(a.profiles.Save, a.profiles.Path(), p)
}

// geocodeAddress sets the coordinates of the profile address. On failure
// the stale coordinates are dropped and the address is kept.
func geocodeAddress(ctx context.Context, g domain.Geocoder, p *domain.Profile) (string, error) {
	geo, err := g.Geocode(ctx, p.Address)
	if err != nil {
		p.Lat, p.Lng = nil, nil
		return "", err
	}
	p.Lat, p.Lng = &geo.Lat, &geo.Lng
	return geo.DisplayName, nil
}

// locate sets the coordinates and replaces the address with the one found
// there. The coordinates are kept when no address is found.
func locate(ctx context.Context, g domain.Geocoder, p *domain.Profile, lat, lng float64) error {
	p.Lat, p.Lng = &lat, &lng
	address, err := g.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return err
	}
	p.Address = address
	return nil
}

func saveProfile(save func(*domain.Profile) error, path string, p *domain.Profile) error {
	if err := save(p); err != nil {
		ui.PrintError("failed to save profile: %v", err)
		return fmt.Errorf("profile save failed")
	}

	fmt.Println()
	fmt.Println(ui.Profile(p))
	fmt.Println()
	ui.PrintSuccessBox("✓ Profile Saved", fmt.Sprintf("Saved to %s\nIt is sent at the start of your next conversation.", path))
	if !p.IsComplete() {
		ui.PrintWarning("still missing: %s", strings.Join(p.Missing(), ", "))
	}
	return nil
}

// promptProfile asks for every field, using the current values as defaults
func promptProfile(p *domain.Profile) error {
	qs := []*survey.Question{
		{Name: "name", Prompt: &survey.Input{Message: "Name:", Default: p.Name}},
		{Name: "surname", Prompt: &survey.Input{Message: "Surname:", Default: p.Surname}},
		{Name: "phone", Prompt: &survey.Input{Message: "Phone:", Default: p.Phone}},
		{
			Name: "address",
			Prompt: &survey.Input{
				Message: "Address:",
				Default: p.Address,
				Help:    "Where you are starting from, e.g. 'Piazza del Duomo, Milano'",
			},
		},
	}
	answers := struct {
		Name    string
		Surname string
		Phone   string
		Address string
	}{}
	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(answers.Name)
	p.Surname = strings.TrimSpace(answers.Surname)
	p.Phone = strings.TrimSpace(answers.Phone)
	p.Address = strings.TrimSpace(answers.Address)

	options, picked, other := genreChoices(p.Genres)
	var selected []string
	genrePrompt := &survey.MultiSelect{
		Message: "Music genres:",
		Options: options,
		Default: picked,
	}
	if err := survey.AskOne(genrePrompt, &selected); err != nil {
		return err
	}
	var extra string
	if err := survey.AskOne(&survey.Input{
		Message: "Other genres (comma separated):",
		Default: strings.Join(other, ", "),
	}, &extra); err != nil {
		return err
	}
	p.Genres = mergeGenres(selected, extra)

	var budget string
	if err := survey.AskOne(&survey.Input{
		Message: "Budget per person in € (e.g. 20-40, empty for none):",
		Default: formatBudget(p.BudgetMin, p.BudgetMax),
	}, &budget, survey.WithValidator(func(ans interface{}) error {
		_, _, err := parseBudget(ans.(string))
		return err
	})); err != nil {
		return err
	}
	p.BudgetMin, p.BudgetMax, _ = parseBudget(budget)

	var party string
	partyDefault := ""
	if p.PartySize != nil {
		partyDefault = strconv.Itoa(*p.PartySize)
	}
	if err := survey.AskOne(&survey.Input{
		Message: "Usual party size (empty for none):",
		Default: partyDefault,
	}, &party, survey.WithValidator(func(ans interface{}) error {
		_, err := parsePartySize(ans.(string))
		return err
	})); err != nil {
		return err
	}
	p.PartySize, _ = parsePartySize(party)

	return nil
}

// genreChoices returns the picker options, the preselected ones and the
// current genres the picker does not offer
func genreChoices(current []string) (options, picked, other []string) {
	options = append(options, commonGenres...)
	known := make(map[string]bool, len(commonGenres))
	for _, g := range commonGenres {
		known[g] = true
	}
	for _, g := range current {
		if known[strings.ToLower(g)] {
			picked = append(picked, strings.ToLower(g))
		} else {
			other = append(other, g)
		}
	}
	return options, picked, other
}

// mergeGenres combines picked genres with a comma separated list, dropping
// blanks and case-insensitive duplicates
func mergeGenres(selected []string, extra string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(g string) {
		g = strings.TrimSpace(g)
		key := strings.ToLower(g)
		if g == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, g)
	}
	for _, g := range selected {
		add(g)
	}
	for _, g := range strings.Split(extra, ",") {
		add(g)
	}
	return out
}

// parseBudget accepts "", "30" (a maximum), "20-" (a minimum), "20-40" or
// "20–40"
func parseBudget(s string) (low, high *float64, err error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "€", ""))
	if s == "" {
		return nil, nil, nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '–' })
	if len(parts) == 0 || len(parts) > 2 {
		return nil, nil, fmt.Errorf("use a single amount or a range like 20-40")
	}
	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || v < 0 {
			return nil, nil, fmt.Errorf("invalid amount %q", strings.TrimSpace(part))
		}
		values[i] = v
	}

	if len(values) == 1 {
		if strings.HasSuffix(s, "-") || strings.HasSuffix(s, "–") {
			return &values[0], nil, nil
		}
		return nil, &values[0], nil
	}
	if values[1] < values[0] {
		return nil, nil, fmt.Errorf("the maximum must not be lower than the minimum")
	}
	return &values[0], &values[1], nil
}

func formatBudget(low, high *float64) string {
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch {
	case low != nil && high != nil:
		return format(*low) + "-" + format(*high)
	case high != nil:
		return format(*high)
	case low != nil:
		return format(*low) + "-"
	}
	return ""
}

func parsePartySize(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("party size must be a positive number")
	}
	return &n, nil
}

func parseCoordinates(latArg, lngArg string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latArg, 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid latitude: %s", latArg)
	}
	lng, err := strconv.ParseFloat(lngArg, 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("invalid longitude: %s", lngArg)
	}
	return lat, lng, nil
}
