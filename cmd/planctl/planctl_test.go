package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
cities:
  - id: mathura
    name: {en: Mathura}
  - id: vrindavan
    name: {en: Vrindavan, ru: Вриндаван}
places:
  - id: janmabhoomi
    name: {en: Krishna Janmabhoomi}
    cityId: mathura
    type: temple
    rating: 4.8
  - id: vishram-ghat
    name: {en: Vishram Ghat}
    cityId: mathura
    type: sacred_site
    rating: 4.0
  - id: banke-bihari
    name: {en: Banke Bihari}
    cityId: vrindavan
    type: temple
    rating: 4.7
events:
  - id: holi
    name: {en: Holi}
    cityId: mathura
    eventType: festival
    date: "2025-03-14"
`

const testPlan = `
title: Braj
startDate: "2025-03-01"
endDate: "2025-03-02"
items:
  - {type: city, id: mathura}
  - {type: place, id: janmabhoomi}
  - {type: place, id: vishram-ghat}
  - {type: city, id: vrindavan}
  - {type: place, id: banke-bihari, date: "2025-04-01", pinned: true}
`

func writeFiles(t *testing.T) (catalogFile, planPath string) {
	t.Helper()
	dir := t.TempDir()
	catalogFile = filepath.Join(dir, "catalog.yaml")
	planPath = filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(catalogFile, []byte(testCatalog), 0o644))
	require.NoError(t, os.WriteFile(planPath, []byte(testPlan), 0o644))
	return catalogFile, planPath
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestCandidates_JSON(t *testing.T) {
	cat, _ := writeFiles(t)

	out := execute(t, "candidates", "--catalog", cat, "--json", "--city", "mathura", "--place-type", "temple")

	var got []struct {
		Kind string `json:"kind"`
		ID   string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	require.NotEmpty(t, got)
	assert.Equal(t, "mathura", got[0].ID)
	var ids []string
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Contains(t, ids, "janmabhoomi")
	assert.NotContains(t, ids, "banke-bihari")
}

func TestGroups_JSON(t *testing.T) {
	cat, plan := writeFiles(t)

	out := execute(t, "groups", "--catalog", cat, "--plan", plan, "--json", "--by", "city")

	var got struct {
		Groups []struct {
			ID    string `json:"id"`
			Items []struct {
				ID string `json:"id"`
			} `json:"items"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	require.Len(t, got.Groups, 2)
	assert.Equal(t, "mathura", got.Groups[0].ID)
	require.Len(t, got.Groups[0].Items, 2)
	assert.Equal(t, "janmabhoomi", got.Groups[0].Items[0].ID)
	assert.Equal(t, "vrindavan", got.Groups[1].ID)
}

func TestDistribute_WritesPlanFile(t *testing.T) {
	cat, plan := writeFiles(t)

	out := execute(t, "distribute", "--catalog", cat, "--plan", plan, "--json", "--write", "--per-group=false", "--from", "", "--to", "")

	var got struct {
		Items []struct {
			ID     string  `json:"id"`
			Date   *string `json:"date"`
			Pinned bool    `json:"pinned"`
		} `json:"items"`
		Changed bool `json:"changed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	require.True(t, got.Changed)
	dates := map[string]string{}
	for _, it := range got.Items {
		if it.Date != nil {
			dates[it.ID] = *it.Date
		}
	}
	assert.Equal(t, "2025-03-01", dates["janmabhoomi"])
	assert.Equal(t, "2025-03-02", dates["vishram-ghat"])
	assert.Equal(t, "2025-04-01", dates["banke-bihari"])

	written, err := loadPlanFile(plan)
	require.NoError(t, err)
	assert.Equal(t, "Braj", written.Title)
	require.Len(t, written.Items, 5)
	assert.Equal(t, "2025-03-01", written.Items[1].Date)
	assert.True(t, written.Items[4].Pinned)
}

func TestDistribute_NoRange(t *testing.T) {
	cat, _ := writeFiles(t)
	plan := filepath.Join(t.TempDir(), "undated.yaml")
	require.NoError(t, os.WriteFile(plan, []byte("title: x\nitems:\n  - {type: city, id: mathura}\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"distribute", "--catalog", cat, "--plan", plan, "--write=false", "--from", "", "--to", ""})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date range required")
}

func TestPlanFile_UnknownEntity(t *testing.T) {
	cat, _ := writeFiles(t)
	plan := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(plan, []byte("title: x\nitems:\n  - {type: place, id: nowhere}\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"groups", "--catalog", cat, "--plan", plan, "--by", "city"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "place:nowhere")
}

func TestDecodePlanFile_RejectsUnknownFields(t *testing.T) {
	_, err := decodePlanFile(strings.NewReader("title: x\ncolour: red\n"))
	require.Error(t, err)

	pf, err := decodePlanFile(strings.NewReader("title: x\nitems:\n  - {type: event, id: holi, date: \"2025-03-14\", time: \"6:30\"}\n"))
	require.NoError(t, err)
	inputs, err := pf.inputs()
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	require.NotNil(t, inputs[0].Date)
	require.NotNil(t, inputs[0].Time)

	bad := planFile{Items: []planFileItem{{Type: "event", ID: "holi", Date: "14/03/2025"}}}
	_, err = bad.inputs()
	require.Error(t, err)
}
