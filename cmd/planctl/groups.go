package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/planner"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Show a plan grouped by city or event type",
	Long: `Print the grouped view of a plan file.

Examples:
  planctl groups --plan plan.yaml
  planctl groups --plan plan.yaml --by event_type --lang ru`,
	RunE: runGroups,
}

func init() {
	groupsCmd.Flags().String("plan", "plan.yaml", "Path to the plan file")
	groupsCmd.Flags().String("by", string(domain.GroupByCity), "Grouping: city or event_type")
}

func runGroups(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	path, _ := cmd.Flags().GetString("plan")
	byFlag, _ := cmd.Flags().GetString("by")
	by := domain.GroupBy(byFlag)
	if !by.Valid() {
		return fmt.Errorf("unknown grouping %q (expected city or event_type)", byFlag)
	}

	_, items, err := loadPlanItems(ctx, path)
	if err != nil {
		return err
	}
	groups := planner.Group(items, by)
	orphans := planner.Orphans(items, groups)

	out := cmd.OutOrStdout()
	if jsonOutput {
		type groupJSON struct {
			ID     string     `json:"id"`
			Header *itemJSON  `json:"header,omitempty"`
			Items  []itemJSON `json:"items"`
		}
		resp := struct {
			Groups  []groupJSON `json:"groups"`
			Orphans []itemJSON  `json:"orphans"`
		}{Groups: make([]groupJSON, 0, len(groups)), Orphans: itemsJSON(orphans)}
		for _, g := range groups {
			gj := groupJSON{ID: g.ID, Items: itemsJSON(g.Items)}
			if g.Header != nil {
				h := itemsJSON([]domain.PlannedItem{*g.Header})[0]
				gj.Header = &h
			}
			resp.Groups = append(resp.Groups, gj)
		}
		return printJSON(out, resp)
	}

	printGroups(out, groups, orphans)
	return nil
}
