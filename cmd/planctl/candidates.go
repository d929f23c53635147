package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/planner"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List catalog entities matching the planner filters",
	Long: `Select candidates from the catalog the way the planner does.

Examples:
  # Temples and festivals in Vrindavan
  planctl candidates --city vrindavan --place-type temple --event-type festival

  # Every route, plus events in March with an online stream
  planctl candidates --routes --event-type festival --from 2025-03-01 --to 2025-03-31 --online`,
	RunE: runCandidates,
}

func init() {
	candidatesCmd.Flags().StringSlice("city", nil, "Restrict to city id (repeatable)")
	candidatesCmd.Flags().StringSlice("place-type", nil, "Include places of this type (repeatable)")
	candidatesCmd.Flags().StringSlice("event-type", nil, "Include events of this type (repeatable)")
	candidatesCmd.Flags().Bool("routes", false, "Include routes")
	candidatesCmd.Flags().String("from", "", "Range start (YYYY-MM-DD) for dated events")
	candidatesCmd.Flags().String("to", "", "Range end (YYYY-MM-DD) for dated events")
	candidatesCmd.Flags().Bool("online", false, "Only events with an online stream")
	candidatesCmd.Flags().Bool("translated", false, "Only events with translation")
}

func runCandidates(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := filtersFromFlags(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	cands, err := planner.NewSession(cat, zap.NewNop()).ApplyFilters(ctx, f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		type entry struct {
			Kind string `json:"kind"`
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		entries := make([]entry, 0, len(cands))
		for _, e := range cands {
			entries = append(entries, entry{Kind: string(e.Kind()), ID: string(e.EntityID()), Name: domain.Localize(e.LocalizedName(), lang)})
		}
		return printJSON(out, entries)
	}

	if len(cands) == 0 {
		fmt.Fprintln(out, yellow("No candidates"))
		return nil
	}
	for _, e := range cands {
		name := domain.Localize(e.LocalizedName(), lang)
		if e.Kind() == domain.KindCity {
			fmt.Fprintf(out, "%s %s\n", cyan(name), gray("("+string(e.EntityID())+")"))
			continue
		}
		fmt.Fprintf(out, "  - %s %s\n", name, gray("("+string(e.Kind())+":"+string(e.EntityID())+")"))
	}
	return nil
}

func filtersFromFlags(cmd *cobra.Command) (planner.Filters, error) {
	cities, _ := cmd.Flags().GetStringSlice("city")
	placeTypes, _ := cmd.Flags().GetStringSlice("place-type")
	eventTypes, _ := cmd.Flags().GetStringSlice("event-type")
	routes, _ := cmd.Flags().GetBool("routes")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	f := planner.Filters{IncludeRoutes: routes}
	for _, c := range cities {
		f.CityIDs = append(f.CityIDs, domain.EntityID(c))
	}
	for _, t := range placeTypes {
		pt := domain.PlaceType(t)
		if !pt.Valid() {
			return planner.Filters{}, fmt.Errorf("unknown place type %q", t)
		}
		f.PlaceTypes = append(f.PlaceTypes, pt)
	}
	for _, t := range eventTypes {
		f.EventTypes = append(f.EventTypes, domain.EventType(t))
	}

	if from != "" || to != "" {
		r, err := parseRange(from, to)
		if err != nil {
			return planner.Filters{}, err
		}
		f.Range = &r
	}
	if cmd.Flags().Changed("online") {
		v, _ := cmd.Flags().GetBool("online")
		f.HasOnlineStream = &v
	}
	if cmd.Flags().Changed("translated") {
		v, _ := cmd.Flags().GetBool("translated")
		f.HasTranslation = &v
	}
	return f, nil
}

func parseRange(from, to string) (planner.DateRange, error) {
	if from == "" || to == "" {
		return planner.DateRange{}, fmt.Errorf("--from and --to must be given together")
	}
	f, err := domain.ParseDate(from)
	if err != nil {
		return planner.DateRange{}, fmt.Errorf("invalid --from %q: %w", from, err)
	}
	t, err := domain.ParseDate(to)
	if err != nil {
		return planner.DateRange{}, fmt.Errorf("invalid --to %q: %w", to, err)
	}
	r := planner.DateRange{From: f, To: t}
	if !r.Valid() {
		return planner.DateRange{}, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return r, nil
}
