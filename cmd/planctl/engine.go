package main

import (
	"context"
	"fmt"
	"strings"

	memcatalog "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/catalog"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/plans"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

func loadCatalog() (*memcatalog.Catalog, error) {
	seed, err := memcatalog.LoadSeedFile(catalogPath)
	if err != nil {
		return nil, err
	}
	cat, err := memcatalog.NewFromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", catalogPath, err)
	}
	return cat, nil
}

// loadPlanItems reads a plan file and resolves its items against the catalog.
// Unknown references are an error so typos do not silently shrink the plan.
func loadPlanItems(ctx context.Context, path string) (planFile, []domain.PlannedItem, error) {
	pf, err := loadPlanFile(path)
	if err != nil {
		return planFile{}, nil, err
	}
	inputs, err := pf.inputs()
	if err != nil {
		return planFile{}, nil, err
	}
	cat, err := loadCatalog()
	if err != nil {
		return planFile{}, nil, err
	}
	items, dropped, err := plans.ResolveItems(ctx, cat, inputs)
	if err != nil {
		return planFile{}, nil, err
	}
	if len(dropped) > 0 {
		refs := make([]string, 0, len(dropped))
		for _, r := range dropped {
			refs = append(refs, r.String())
		}
		return planFile{}, nil, fmt.Errorf("unknown catalog entities: %s", strings.Join(refs, ", "))
	}
	return pf, items, nil
}
