package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemIDs(items []PlannedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Id)
	}
	return out
}

func TestPlanner_Candidates_CityAndTypeFilter(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, call{
		method: http.MethodPost,
		path:   "/planner/candidates",
		body:   `{"cityIds":["mathura"],"placeTypes":["temple"]}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := ids(decode[CandidatesResponse](t, rec).Candidates)
	require.NotEmpty(t, got)
	assert.Equal(t, "mathura", got[0])
	assert.Contains(t, got, "janmabhoomi")
	assert.NotContains(t, got, "vishram-ghat")
	assert.NotContains(t, got, "banke-bihari")
	assert.NotContains(t, got, "holi")
}

func TestPlanner_Candidates_Validation(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "bad json", body: `{`},
		{name: "unknown place type", body: `{"placeTypes":["mosque"]}`},
		{name: "half range", body: `{"eventTypes":["festival"],"from":"2025-03-01"}`},
		{name: "inverted range", body: `{"eventTypes":["festival"],"from":"2025-03-10","to":"2025-03-01"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.do(t, call{method: http.MethodPost, path: "/planner/candidates", body: tc.body})
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
		})
	}
}

func TestPlanner_Groups_ByCityWithOrphans(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, call{
		method: http.MethodPost,
		path:   "/planner/groups",
		body: `{"items":[
			{"type":"city","id":"mathura"},
			{"type":"place","id":"janmabhoomi"},
			{"type":"city","id":"vrindavan"},
			{"type":"place","id":"banke-bihari"},
			{"type":"event","id":"holi","cityIdForGrouping":"kolkata"}
		]}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[GroupsResponse](t, rec)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "mathura", resp.Groups[0].Id)
	require.NotNil(t, resp.Groups[0].Header)
	assert.Equal(t, "Mathura", resp.Groups[0].Header.Name)
	assert.Equal(t, []string{"janmabhoomi"}, itemIDs(resp.Groups[0].Items))
	assert.Equal(t, "vrindavan", resp.Groups[1].Id)
	assert.Equal(t, []string{"banke-bihari"}, itemIDs(resp.Groups[1].Items))
	assert.Equal(t, []string{"holi"}, itemIDs(resp.Orphans))
}

func TestPlanner_Groups_ByEventType(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, call{
		method: http.MethodPost,
		path:   "/planner/groups",
		body:   `{"groupBy":"event_type","items":[{"type":"city","id":"mathura"},{"type":"event","id":"holi"}]}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[GroupsResponse](t, rec)
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, "festival", resp.Groups[0].Id)
	assert.Equal(t, []string{"holi"}, itemIDs(resp.Groups[0].Items))
	assert.Equal(t, []string{"mathura"}, itemIDs(resp.Orphans))

	rec = api.do(t, call{method: http.MethodPost, path: "/planner/groups", body: `{"groupBy":"weekday","items":[]}`})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPlanner_UnknownItemsRejected(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, call{
		method: http.MethodPost,
		path:   "/planner/groups",
		body:   `{"items":[{"type":"city","id":"mathura"},{"type":"place","id":"nowhere"}]}`,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	er := decode[ErrorResponse](t, rec)
	assert.Equal(t, "UNKNOWN_ITEMS", er.Error.Code)
	details, err := er.Error.Details.Get()
	require.NoError(t, err)
	assert.Equal(t, []any{"place:nowhere"}, details["items"])

	rec = api.do(t, call{
		method: http.MethodPost,
		path:   "/planner/groups",
		body:   `{"items":[{"type":"hotel","id":"x"}]}`,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestPlanner_Distribute_PerItem(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, call{
		method: http.MethodPost,
		path:   "/planner/distribute",
		body: `{"from":"2025-03-01","to":"2025-03-02","items":[
			{"type":"city","id":"mathura"},
			{"type":"place","id":"janmabhoomi"},
			{"type":"place","id":"vishram-ghat"}
		]}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[DistributeResponse](t, rec)
	require.True(t, resp.Changed)
	require.Equal(t, []string{"mathura", "janmabhoomi", "vishram-ghat"}, itemIDs(resp.Items))
	assert.Nil(t, resp.Items[0].Date)
	require.NotNil(t, resp.Items[1].Date)
	require.NotNil(t, resp.Items[2].Date)
	assert.Equal(t, "2025-03-01", resp.Items[1].Date.Format("2006-01-02"))
	assert.Equal(t, "2025-03-02", resp.Items[2].Date.Format("2006-01-02"))
}

func TestPlanner_Distribute_PinnedKeepsDate(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, call{
		method: http.MethodPost,
		path:   "/planner/distribute",
		body: `{"from":"2025-03-01","to":"2025-03-03","items":[
			{"type":"city","id":"mathura"},
			{"type":"place","id":"janmabhoomi","date":"2025-04-01","pinned":true}
		]}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[DistributeResponse](t, rec)
	assert.False(t, resp.Changed)
	require.NotNil(t, resp.Items[1].Date)
	assert.Equal(t, "2025-04-01", resp.Items[1].Date.Format("2006-01-02"))
}

func TestPlanner_Distribute_FollowsEventTypeView(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, call{
		method: http.MethodPost,
		path:   "/planner/distribute",
		body: `{"from":"2025-03-01","to":"2025-03-02","mode":"per_group","groupBy":"event_type","items":[
			{"type":"city","id":"mathura"},
			{"type":"place","id":"janmabhoomi"},
			{"type":"event","id":"holi"}
		]}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[DistributeResponse](t, rec)
	require.Equal(t, []string{"holi", "mathura", "janmabhoomi"}, itemIDs(resp.Items))
	require.NotNil(t, resp.Items[0].Date)
	assert.Equal(t, "2025-03-01", resp.Items[0].Date.Format("2006-01-02"))
	assert.Nil(t, resp.Items[1].Date)
	require.NotNil(t, resp.Items[2].Date)
	assert.Equal(t, "2025-03-02", resp.Items[2].Date.Format("2006-01-02"))
}

func TestPlanner_Distribute_Errors(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, call{method: http.MethodPost, path: "/planner/distribute", body: `{"items":[]}`})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, "RANGE_REQUIRED", errorCode(t, rec))

	rec = api.do(t, call{method: http.MethodPost, path: "/planner/distribute", body: `{"from":"2025-03-05","to":"2025-03-01","items":[]}`})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "RANGE_REQUIRED", errorCode(t, rec))

	rec = api.do(t, call{method: http.MethodPost, path: "/planner/distribute", body: `{"from":"2025-03-01","to":"2025-03-02","mode":"random","items":[]}`})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = api.do(t, call{method: http.MethodPost, path: "/planner/distribute", body: `{"from":"2025-03-01","to":"2025-03-02","groupBy":"country","items":[]}`})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

const reorderItems = `[
	{"type":"city","id":"mathura"},
	{"type":"place","id":"janmabhoomi"},
	{"type":"place","id":"vishram-ghat"},
	{"type":"city","id":"vrindavan"},
	{"type":"place","id":"banke-bihari"}
]`

func TestPlanner_Reorder_ItemAcrossGroups(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, call{
		method: http.MethodPost,
		path:   "/planner/reorder",
		body:   `{"items":` + reorderItems + `,"move":{"kind":"item","sourceGroupId":"mathura","sourceIndex":0,"destGroupId":"vrindavan","destIndex":1}}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[ReorderResponse](t, rec)
	require.True(t, resp.Applied)
	require.Equal(t, []string{"mathura", "vishram-ghat", "vrindavan", "banke-bihari", "janmabhoomi"}, itemIDs(resp.Items))
	assert.Equal(t, "vrindavan", resp.Items[4].CityIdForGrouping)
	for i, it := range resp.Items {
		require.NotNil(t, it.OrderIndex)
		assert.Equal(t, i, *it.OrderIndex)
	}
}

func TestPlanner_Reorder_Group(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, call{
		method: http.MethodPost,
		path:   "/planner/reorder",
		body:   `{"items":` + reorderItems + `,"move":{"kind":"group","sourceGroupId":"vrindavan","sourceIndex":1,"destGroupId":"vrindavan","destIndex":0}}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[ReorderResponse](t, rec)
	require.True(t, resp.Applied)
	assert.Equal(t, []string{"vrindavan", "banke-bihari", "mathura", "janmabhoomi", "vishram-ghat"}, itemIDs(resp.Items))
}

func TestPlanner_Reorder_StaleMoveIgnored(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, call{
		method: http.MethodPost,
		path:   "/planner/reorder",
		body:   `{"items":` + reorderItems + `,"move":{"kind":"item","sourceGroupId":"kolkata","sourceIndex":0,"destGroupId":"vrindavan","destIndex":0}}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[ReorderResponse](t, rec)
	assert.False(t, resp.Applied)
	assert.Equal(t, []string{"mathura", "janmabhoomi", "vishram-ghat", "vrindavan", "banke-bihari"}, itemIDs(resp.Items))

	rec = api.do(t, call{
		method: http.MethodPost,
		path:   "/planner/reorder",
		body:   `{"items":` + reorderItems + `,"move":{"kind":"swap"}}`,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
