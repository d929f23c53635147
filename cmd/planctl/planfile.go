package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/plans"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

// planFile is the YAML shape read by groups and distribute.
//
//	title: Braj Yatra
//	startDate: 2025-03-01
//	endDate: 2025-03-05
//	items:
//	  - {type: city, id: mathura}
//	  - {type: place, id: janmabhoomi, date: 2025-03-01, pinned: true}
type planFile struct {
	Title     string         `yaml:"title"`
	StartDate string         `yaml:"startDate,omitempty"`
	EndDate   string         `yaml:"endDate,omitempty"`
	Items     []planFileItem `yaml:"items"`
}

type planFileItem struct {
	Type              string `yaml:"type"`
	ID                string `yaml:"id"`
	CityIDForGrouping string `yaml:"cityIdForGrouping,omitempty"`
	Date              string `yaml:"date,omitempty"`
	Time              string `yaml:"time,omitempty"`
	Pinned            bool   `yaml:"pinned,omitempty"`
}

func loadPlanFile(path string) (planFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return planFile{}, fmt.Errorf("open plan file: %w", err)
	}
	defer f.Close()
	return decodePlanFile(f)
}

func decodePlanFile(r io.Reader) (planFile, error) {
	var pf planFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil && err != io.EOF {
		return planFile{}, fmt.Errorf("decode plan file: %w", err)
	}
	return pf, nil
}

// inputs converts the file items to engine inputs; file order is the initial order.
func (pf planFile) inputs() ([]plans.ItemInput, error) {
	out := make([]plans.ItemInput, 0, len(pf.Items))
	for i, it := range pf.Items {
		in := plans.ItemInput{
			Type:              domain.EntityKind(strings.TrimSpace(it.Type)),
			ID:                domain.EntityID(strings.TrimSpace(it.ID)),
			CityIDForGrouping: domain.EntityID(strings.TrimSpace(it.CityIDForGrouping)),
			Pinned:            it.Pinned,
		}
		if it.Date != "" {
			d, err := domain.ParseDate(it.Date)
			if err != nil {
				return nil, fmt.Errorf("item %d (%s): invalid date %q", i, it.ID, it.Date)
			}
			in.Date = &d
		}
		if it.Time != "" {
			t := it.Time
			in.Time = &t
		}
		out = append(out, in)
	}
	return out, nil
}

// withItems returns a copy of pf whose items reflect items, in their order.
func (pf planFile) withItems(items []domain.PlannedItem) planFile {
	out := pf
	out.Items = make([]planFileItem, 0, len(items))
	for _, it := range items {
		fi := planFileItem{
			Type:   string(it.Type),
			ID:     string(it.ID()),
			Pinned: it.Pinned,
		}
		if it.Type != domain.KindCity && it.CityIDForGrouping != it.Data.ParentCityID() {
			fi.CityIDForGrouping = string(it.CityIDForGrouping)
		}
		if it.Date != nil {
			fi.Date = domain.FormatDate(*it.Date)
		}
		if it.Time != nil {
			fi.Time = *it.Time
		}
		out.Items = append(out.Items, fi)
	}
	return out
}

func writePlanFile(path string, pf planFile) error {
	b, err := yaml.Marshal(pf)
	if err != nil {
		return fmt.Errorf("encode plan file: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}
