package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/planner"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Spread plan items over a date range",
	Long: `Assign dates to the items of a plan file across an inclusive range.

Pinned items keep their dates. Dates follow the group order of --by; with
--per-group every group shares one day.

Examples:
  planctl distribute --plan plan.yaml --from 2025-03-01 --to 2025-03-05
  planctl distribute --plan plan.yaml --from 2025-03-01 --to 2025-03-02 --per-group --write
  planctl distribute --plan plan.yaml --by event_type --per-group`,
	RunE: runDistribute,
}

func init() {
	distributeCmd.Flags().String("plan", "plan.yaml", "Path to the plan file")
	distributeCmd.Flags().String("from", "", "Range start (YYYY-MM-DD); defaults to the plan's startDate")
	distributeCmd.Flags().String("to", "", "Range end (YYYY-MM-DD); defaults to the plan's endDate")
	distributeCmd.Flags().Bool("per-group", false, "Assign one day per group")
	distributeCmd.Flags().String("by", string(domain.GroupByCity), "Grouping: city or event_type")
	distributeCmd.Flags().Bool("write", false, "Write the new dates back to the plan file")
}

func runDistribute(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	path, _ := cmd.Flags().GetString("plan")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	perGroup, _ := cmd.Flags().GetBool("per-group")
	write, _ := cmd.Flags().GetBool("write")
	byFlag, _ := cmd.Flags().GetString("by")
	by := domain.GroupBy(byFlag)
	if !by.Valid() {
		return fmt.Errorf("unknown grouping %q (expected city or event_type)", byFlag)
	}

	pf, items, err := loadPlanItems(ctx, path)
	if err != nil {
		return err
	}
	if from == "" {
		from = pf.StartDate
	}
	if to == "" {
		to = pf.EndDate
	}
	r, err := parseRange(from, to)
	if err != nil {
		return fmt.Errorf("%w (set --from/--to or the plan's startDate/endDate)", planner.ErrRangeRequired)
	}

	mode := planner.ModePerItem
	if perGroup {
		mode = planner.ModePerGroup
	}
	out, changed, err := planner.AutoDistribute(items, r, mode, by)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		if err := printJSON(w, struct {
			Items   []itemJSON `json:"items"`
			Changed bool       `json:"changed"`
		}{Items: itemsJSON(out), Changed: changed}); err != nil {
			return err
		}
	} else {
		groups := planner.Group(out, by)
		printGroups(w, groups, planner.Orphans(out, groups))
		if !changed {
			fmt.Fprintln(w, gray("No dates changed"))
		}
	}

	if write && changed {
		if err := writePlanFile(path, pf.withItems(out)); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Fprintf(w, "%s %s\n", green("Wrote"), path)
		}
	}
	return nil
}
