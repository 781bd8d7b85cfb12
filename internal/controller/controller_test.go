package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsven/weather-console/internal/debounce"
	"github.com/mkarlsven/weather-console/internal/models"
	"github.com/mkarlsven/weather-console/internal/navigator"
	"github.com/mkarlsven/weather-console/internal/view"
	"github.com/mkarlsven/weather-console/internal/weather"
)

// renderRecorder implements view.Renderer and tracks what a frontend would
// display. Safe for concurrent use: the debounce goroutine renders too.
type renderRecorder struct {
	mu          sync.Mutex
	commands    []view.Command
	visible     map[view.Panel]bool
	suggestions []models.Suggestion
	highlight   int
	queryText   string
	inputError  string
	errorMsg    string
	resultLines []string
}

func newRenderRecorder() *renderRecorder {
	return &renderRecorder{visible: make(map[view.Panel]bool), highlight: navigator.None}
}

func (r *renderRecorder) Render(cmd view.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
	switch c := cmd.(type) {
	case view.HidePanel:
		r.visible[c.Panel] = false
	case view.ShowPanel:
		r.visible[c.Panel] = true
		if c.Panel == view.PanelError {
			r.errorMsg = c.Message
		}
		if c.Panel == view.PanelResult {
			r.resultLines = c.Lines
		}
	case view.UpdateSuggestionList:
		r.suggestions = c.Items
	case view.SetHighlight:
		r.highlight = c.Index
	case view.SetQueryText:
		r.queryText = c.Text
	case view.SetInputError:
		r.inputError = c.Message
	}
}

func (r *renderRecorder) visiblePanels() []view.Panel {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []view.Panel
	for _, p := range view.Panels {
		if r.visible[p] {
			out = append(out, p)
		}
	}
	return out
}

func (r *renderRecorder) sawPanel(p view.Panel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cmd := range r.commands {
		if show, ok := cmd.(view.ShowPanel); ok && show.Panel == p {
			return true
		}
	}
	return false
}

func (r *renderRecorder) snapshotSuggestions() []models.Suggestion {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Suggestion(nil), r.suggestions...)
}

// fakeSuggest returns canned suggestion lists and records queries.
type fakeSuggest struct {
	mu      sync.Mutex
	queries []string
	list    []models.Suggestion
	err     error
	block   chan struct{} // when set, Suggest waits on it before returning
}

func (f *fakeSuggest) Suggest(ctx context.Context, query string) ([]models.Suggestion, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list, f.err
}

func (f *fakeSuggest) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeSuggest) lastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return ""
	}
	return f.queries[len(f.queries)-1]
}

// fakeWeather records fetches and replies with a canned snapshot or error.
type fakeWeather struct {
	mu     sync.Mutex
	cities []string
	coords [][2]float64
	snap   models.Snapshot
	err    error
}

func (f *fakeWeather) FetchByCity(ctx context.Context, name string) (models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cities = append(f.cities, name)
	if f.err != nil {
		return models.Snapshot{}, f.err
	}
	return f.snap, nil
}

func (f *fakeWeather) FetchByCoords(ctx context.Context, lat, lon float64) (models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coords = append(f.coords, [2]float64{lat, lon})
	if f.err != nil {
		return models.Snapshot{}, f.err
	}
	return f.snap, nil
}

func londonSnapshot() models.Snapshot {
	return models.Snapshot{
		CityName: "London", CountryName: "United Kingdom", Condition: "Sunny",
		TempC: 20, TempF: 68, FeelsLikeC: 18, FeelsLikeF: 64,
		HumidityPct: 72, VisibilityKm: 10, WindKmph: 15, WindMph: 9, PressureMb: 1012,
	}
}

func londonSuggestions() []models.Suggestion {
	return []models.Suggestion{
		{DisplayName: "London", RegionLabel: "England, United Kingdom", Latitude: 51.5, Longitude: -0.12},
		{DisplayName: "London", RegionLabel: "Ontario, Canada", Latitude: 42.98, Longitude: -81.25},
		{DisplayName: "Londonderry", RegionLabel: "United Kingdom", Latitude: 55.0, Longitude: -7.3},
	}
}

func newTestController(suggest *fakeSuggest, wthr *fakeWeather) (*Controller, *renderRecorder) {
	rec := newRenderRecorder()
	c := New(suggest, wthr, rec, debounce.New(15*time.Millisecond), nil)
	return c, rec
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestController_StartsAtWelcome(t *testing.T) {
	c, rec := newTestController(&fakeSuggest{}, &fakeWeather{})
	assert.Equal(t, view.PanelWelcome, c.ActivePanel())
	assert.Equal(t, []view.Panel{view.PanelWelcome}, rec.visiblePanels())
	assert.Equal(t, models.UnitMetric, c.Unit())
}

func TestController_SubmitShowsLoadingThenResult(t *testing.T) {
	wthr := &fakeWeather{snap: londonSnapshot()}
	c, rec := newTestController(&fakeSuggest{}, wthr)

	c.Handle(SubmitQuery{Text: "London"})

	assert.True(t, rec.sawPanel(view.PanelLoading), "loading panel never shown")
	assert.Equal(t, []view.Panel{view.PanelResult}, rec.visiblePanels())
	assert.Contains(t, rec.resultLines, "20°C, feels like 18°C")
	assert.Equal(t, []string{"London"}, wthr.cities)
}

func TestController_NotFoundShowsExactMessage(t *testing.T) {
	wthr := &fakeWeather{err: fmt.Errorf("%w", weather.ErrCityNotFound)}
	c, rec := newTestController(&fakeSuggest{}, wthr)

	c.Handle(SubmitQuery{Text: "Atlantis"})

	assert.Equal(t, []view.Panel{view.PanelError}, rec.visiblePanels())
	assert.Equal(t, "City not found. Please check the spelling and try again.", rec.errorMsg)
}

func TestController_InvalidSubmitBlocksFetch(t *testing.T) {
	wthr := &fakeWeather{snap: londonSnapshot()}
	c, rec := newTestController(&fakeSuggest{}, wthr)

	c.Handle(SubmitQuery{Text: "Lond0n!"})

	assert.NotEmpty(t, rec.inputError)
	assert.Equal(t, view.PanelWelcome, c.ActivePanel())
	assert.Empty(t, wthr.cities)
}

func TestController_ShortInputNeverFetchesSuggestions(t *testing.T) {
	suggest := &fakeSuggest{list: londonSuggestions()}
	c, _ := newTestController(suggest, &fakeWeather{})

	c.Handle(InputChanged{Text: "l"})
	c.Handle(InputChanged{Text: " l "})
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 0, suggest.callCount())
}

func TestController_DebounceCollapsesBurstToOneFetch(t *testing.T) {
	suggest := &fakeSuggest{list: londonSuggestions()}
	c, rec := newTestController(suggest, &fakeWeather{})

	for _, text := range []string{"lo", "lon", "lond", "londo", "london"} {
		c.Handle(InputChanged{Text: text})
		time.Sleep(2 * time.Millisecond)
	}
	waitFor(t, func() bool { return suggest.callCount() > 0 })
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, 1, suggest.callCount())
	assert.Equal(t, "london", suggest.lastQuery())
	waitFor(t, func() bool { return len(rec.snapshotSuggestions()) == 3 })
}

func TestController_SuggestionFailureIsSilent(t *testing.T) {
	suggest := &fakeSuggest{err: errors.New("geocoding status: HTTP 500")}
	c, rec := newTestController(suggest, &fakeWeather{})

	c.Handle(InputChanged{Text: "london"})
	waitFor(t, func() bool { return suggest.callCount() > 0 })
	time.Sleep(20 * time.Millisecond)

	// No error panel, dropdown stays closed.
	assert.Equal(t, []view.Panel{view.PanelWelcome}, rec.visiblePanels())
	assert.Empty(t, rec.snapshotSuggestions())
}

func TestController_SelectSuggestionRunsSearchAndClosesDropdown(t *testing.T) {
	suggest := &fakeSuggest{list: londonSuggestions()}
	wthr := &fakeWeather{snap: londonSnapshot()}
	c, rec := newTestController(suggest, wthr)

	c.Handle(InputChanged{Text: "lond"})
	waitFor(t, func() bool { return len(rec.snapshotSuggestions()) == 3 })

	c.Handle(SelectSuggestion{Index: 2})

	assert.Equal(t, "Londonderry", rec.queryText)
	assert.Empty(t, rec.snapshotSuggestions(), "dropdown left open after selection")
	assert.Equal(t, []view.Panel{view.PanelResult}, rec.visiblePanels())
	assert.Equal(t, []string{"Londonderry"}, wthr.cities)
}

func TestController_KeyboardNavigationAndEnter(t *testing.T) {
	suggest := &fakeSuggest{list: londonSuggestions()}
	wthr := &fakeWeather{snap: londonSnapshot()}
	c, rec := newTestController(suggest, wthr)

	c.Handle(InputChanged{Text: "lond"})
	waitFor(t, func() bool { return len(rec.snapshotSuggestions()) == 3 })

	c.Handle(NavigateSuggestion{Delta: 1})
	c.Handle(NavigateSuggestion{Delta: 1})
	assert.Equal(t, 1, rec.highlight)
	c.Handle(NavigateSuggestion{Delta: 1})
	c.Handle(NavigateSuggestion{Delta: 1})
	assert.Equal(t, 2, rec.highlight, "Down must clamp to last item")
	c.Handle(NavigateSuggestion{Delta: -1})
	assert.Equal(t, 1, rec.highlight)

	c.Handle(PressEnter{Text: "lond"})
	assert.Equal(t, "London", rec.queryText)
	assert.Equal(t, []string{"London"}, wthr.cities)
	assert.Empty(t, rec.snapshotSuggestions())
}

func TestController_EnterWithoutHighlightSubmitsText(t *testing.T) {
	wthr := &fakeWeather{snap: londonSnapshot()}
	c, rec := newTestController(&fakeSuggest{}, wthr)

	c.Handle(PressEnter{Text: "Oslo"})

	assert.Equal(t, []string{"Oslo"}, wthr.cities)
	assert.Equal(t, []view.Panel{view.PanelResult}, rec.visiblePanels())
}

func TestController_DismissClosesDropdown(t *testing.T) {
	suggest := &fakeSuggest{list: londonSuggestions()}
	c, rec := newTestController(suggest, &fakeWeather{})

	c.Handle(InputChanged{Text: "lond"})
	waitFor(t, func() bool { return len(rec.snapshotSuggestions()) == 3 })

	c.Handle(DismissSuggestions{})
	assert.Empty(t, rec.snapshotSuggestions())
	assert.Equal(t, navigator.None, rec.highlight)
}

func TestController_ToggleUnitRefetchesSameCityOnce(t *testing.T) {
	wthr := &fakeWeather{snap: londonSnapshot()}
	c, rec := newTestController(&fakeSuggest{}, wthr)

	c.Handle(SubmitQuery{Text: "London"})
	require.Equal(t, []string{"London"}, wthr.cities)

	c.Handle(ToggleUnit{})

	assert.Equal(t, models.UnitImperial, c.Unit())
	assert.Equal(t, []string{"London", "London"}, wthr.cities, "toggle must trigger exactly one re-fetch")
	assert.Contains(t, rec.resultLines, "68°F, feels like 64°F")
}

func TestController_ToggleUnitWithoutSearchOnlyFlips(t *testing.T) {
	wthr := &fakeWeather{snap: londonSnapshot()}
	c, _ := newTestController(&fakeSuggest{}, wthr)

	c.Handle(ToggleUnit{})
	assert.Equal(t, models.UnitImperial, c.Unit())
	assert.Empty(t, wthr.cities)
	assert.Equal(t, view.PanelWelcome, c.ActivePanel())
}

func TestController_RetryReplaysLastSearch(t *testing.T) {
	wthr := &fakeWeather{err: fmt.Errorf("%w: HTTP 503", weather.ErrUnavailable)}
	c, rec := newTestController(&fakeSuggest{}, wthr)

	c.Handle(SubmitQuery{Text: "London"})
	assert.Equal(t, []view.Panel{view.PanelError}, rec.visiblePanels())
	assert.Equal(t, "Weather service is temporarily unavailable. Please try again later.", rec.errorMsg)

	wthr.mu.Lock()
	wthr.err = nil
	wthr.snap = londonSnapshot()
	wthr.mu.Unlock()

	c.Handle(Retry{})
	assert.Equal(t, []string{"London", "London"}, wthr.cities)
	assert.Equal(t, []view.Panel{view.PanelResult}, rec.visiblePanels())
}

func TestController_RetryWithoutSearchIsNoop(t *testing.T) {
	wthr := &fakeWeather{snap: londonSnapshot()}
	c, _ := newTestController(&fakeSuggest{}, wthr)
	c.Handle(Retry{})
	assert.Empty(t, wthr.cities)
	assert.Equal(t, view.PanelWelcome, c.ActivePanel())
}

func TestController_CoordsSearchAndRetry(t *testing.T) {
	wthr := &fakeWeather{snap: londonSnapshot()}
	c, rec := newTestController(&fakeSuggest{}, wthr)

	c.Handle(SubmitCoords{Lat: 51.5, Lon: -0.12})
	require.Len(t, wthr.coords, 1)
	assert.Equal(t, [2]float64{51.5, -0.12}, wthr.coords[0])
	assert.Equal(t, []view.Panel{view.PanelResult}, rec.visiblePanels())

	c.Handle(Retry{})
	assert.Len(t, wthr.coords, 2, "retry must replay the coordinate search verbatim")
	assert.Empty(t, wthr.cities)
}

func TestController_StaleSuggestionResponseDropped(t *testing.T) {
	blockCh := make(chan struct{})
	suggest := &fakeSuggest{
		list:  []models.Suggestion{{DisplayName: "Paris"}},
		block: blockCh,
	}
	c, rec := newTestController(suggest, &fakeWeather{})

	// Older fetch stalls in flight.
	go c.fetchSuggestions("par")
	waitFor(t, func() bool { return suggest.callCount() == 1 })

	// Newer fetch completes first.
	suggest.mu.Lock()
	suggest.block = nil
	suggest.list = londonSuggestions()
	suggest.mu.Unlock()
	c.fetchSuggestions("lond")
	require.Len(t, rec.snapshotSuggestions(), 3)

	// Older response lands late and must not overwrite the newer list.
	suggest.mu.Lock()
	suggest.list = []models.Suggestion{{DisplayName: "Paris"}}
	suggest.mu.Unlock()
	close(blockCh)
	time.Sleep(30 * time.Millisecond)

	got := rec.snapshotSuggestions()
	require.Len(t, got, 3)
	assert.Equal(t, "London", got[0].DisplayName)
}
