// Package controller wires the session state machine together: it consumes
// frontend intents, drives the suggestion and weather services, and emits
// render commands. Weather fetches run synchronously on the intent goroutine
// (the event loop); suggestion fetches run on the debounce timer goroutine
// and are sequence-tagged so a stale response can never overwrite a newer one.
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkarlsven/weather-console/internal/debounce"
	"github.com/mkarlsven/weather-console/internal/geocode"
	"github.com/mkarlsven/weather-console/internal/models"
	"github.com/mkarlsven/weather-console/internal/navigator"
	"github.com/mkarlsven/weather-console/internal/observability"
	"github.com/mkarlsven/weather-console/internal/validation"
	"github.com/mkarlsven/weather-console/internal/view"
	"github.com/mkarlsven/weather-console/internal/weather"
)

// minSuggestPrefix is the shortest trimmed input that triggers a suggestion
// fetch; anything shorter hides the dropdown immediately, bypassing the timer.
const minSuggestPrefix = 2

// search records the last user-intended fetch so Retry and ToggleUnit can
// replay it verbatim. Suggestion fetches are never recorded here.
type search struct {
	city     string
	lat, lon float64
	byCoords bool
}

// Controller owns the whole session: unit preference, last search, last
// snapshot, the dropdown, and the view state machine.
type Controller struct {
	mu sync.Mutex

	logger      *zap.Logger
	suggestions geocode.Service
	weather     weather.Service
	renderer    view.Renderer
	states      *view.StateMachine
	nav         *navigator.Navigator
	debouncer   *debounce.Debouncer

	unit       models.Unit
	lastSearch *search
	snapshot   *models.Snapshot

	items        []models.Suggestion
	dropdownOpen bool
	suggestSeq   uint64
}

// New returns a Controller in the Welcome state with metric units.
func New(suggestions geocode.Service, weatherSvc weather.Service, renderer view.Renderer, debouncer *debounce.Debouncer, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		logger:      logger,
		suggestions: suggestions,
		weather:     weatherSvc,
		renderer:    renderer,
		states:      view.NewStateMachine(renderer),
		nav:         navigator.New(),
		debouncer:   debouncer,
		unit:        models.UnitMetric,
	}
}

// Handle processes one intent. Frontends call it from a single goroutine.
func (c *Controller) Handle(intent Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch i := intent.(type) {
	case InputChanged:
		c.handleInputChanged(i.Text)
	case SubmitQuery:
		c.handleSubmit(i.Text, "submit")
	case PressEnter:
		if c.dropdownOpen && c.nav.Index() != navigator.None {
			c.handleSelect(c.nav.Index())
		} else {
			c.handleSubmit(i.Text, "submit")
		}
	case SubmitCoords:
		c.lastSearch = &search{lat: i.Lat, lon: i.Lon, byCoords: true}
		c.closeDropdown()
		c.doSearch("coords")
	case SelectSuggestion:
		c.handleSelect(i.Index)
	case NavigateSuggestion:
		c.handleNavigate(i.Delta)
	case DismissSuggestions:
		c.debouncer.Cancel()
		c.closeDropdown()
	case ToggleUnit:
		c.handleToggleUnit()
	case Retry:
		if c.lastSearch != nil {
			c.doSearch("retry")
		}
	}
}

// Unit returns the current unit preference.
func (c *Controller) Unit() models.Unit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unit
}

// ActivePanel returns the currently visible panel.
func (c *Controller) ActivePanel() view.Panel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states.Active()
}

func (c *Controller) handleInputChanged(text string) {
	_, err := validation.ValidateQuery(text)
	switch {
	case err == nil:
		c.renderer.Render(view.SetInputError{})
		c.renderer.Render(view.SetSubmitEnabled{Enabled: true})
	case errors.Is(err, validation.ErrQueryEmpty):
		// An emptied field is not an error, just unsubmittable.
		c.renderer.Render(view.SetInputError{})
		c.renderer.Render(view.SetSubmitEnabled{Enabled: false})
	default:
		c.renderer.Render(view.SetInputError{Message: inlineMessage(err)})
		c.renderer.Render(view.SetSubmitEnabled{Enabled: false})
	}

	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < minSuggestPrefix || err != nil {
		c.debouncer.Cancel()
		c.suggestSeq++
		c.closeDropdown()
		return
	}

	query := trimmed
	c.debouncer.Schedule(func() { c.fetchSuggestions(query) })
}

// fetchSuggestions runs on the debounce timer goroutine. The sequence tag
// makes out-of-order responses harmless: only the newest fetch may touch the
// dropdown.
func (c *Controller) fetchSuggestions(query string) {
	c.mu.Lock()
	c.suggestSeq++
	seq := c.suggestSeq
	c.mu.Unlock()

	ctx := observability.WithCorrelationID(context.Background(), uuid.New().String())
	list, err := c.suggestions.Suggest(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.suggestSeq {
		observability.StaleResponsesDroppedTotal.WithLabelValues("suggestion").Inc()
		return
	}
	if err != nil {
		// Suggestions are a non-essential enhancement: log, hide, move on.
		c.logger.Warn("suggestion fetch failed", zap.String("query", query), zap.Error(err))
		c.closeDropdown()
		return
	}
	if len(list) == 0 {
		c.closeDropdown()
		return
	}
	c.items = list
	c.dropdownOpen = true
	c.nav.Reset(len(list))
	c.renderer.Render(view.UpdateSuggestionList{Items: list})
	c.renderer.Render(view.SetHighlight{Index: navigator.None})
}

func (c *Controller) handleSubmit(text, trigger string) {
	query, err := validation.ValidateQuery(text)
	if err != nil {
		c.renderer.Render(view.SetInputError{Message: inlineMessage(err)})
		return
	}
	c.renderer.Render(view.SetInputError{})
	c.debouncer.Cancel()
	c.suggestSeq++
	c.closeDropdown()

	c.lastSearch = &search{city: query}
	c.doSearch(trigger)
}

func (c *Controller) handleSelect(index int) {
	if !c.dropdownOpen || index < 0 || index >= len(c.items) {
		return
	}
	item := c.items[index]
	c.renderer.Render(view.SetQueryText{Text: item.DisplayName})
	c.debouncer.Cancel()
	c.suggestSeq++
	c.closeDropdown()

	c.lastSearch = &search{city: item.DisplayName}
	c.doSearch("suggestion")
}

func (c *Controller) handleNavigate(delta int) {
	if !c.dropdownOpen {
		return
	}
	var index int
	if delta >= 0 {
		index = c.nav.Down()
	} else {
		index = c.nav.Up()
	}
	c.renderer.Render(view.SetHighlight{Index: index})
}

func (c *Controller) handleToggleUnit() {
	c.unit = c.unit.Toggle()
	if c.lastSearch == nil {
		return
	}
	// Full re-fetch rather than re-render: feels-like rounding must match the
	// unit the upstream computed it for.
	c.doSearch("unit_toggle")
}

// doSearch replays c.lastSearch: Loading, fetch, then Result or Error. The
// fetch runs synchronously on the calling goroutine, so a newer search can
// never be overwritten by an older response.
func (c *Controller) doSearch(trigger string) {
	observability.SearchesTotal.WithLabelValues(trigger).Inc()
	c.states.EnterLoading()

	s := *c.lastSearch
	ctx := observability.WithCorrelationID(context.Background(), uuid.New().String())

	var snap models.Snapshot
	var err error
	if s.byCoords {
		snap, err = c.weather.FetchByCoords(ctx, s.lat, s.lon)
	} else {
		snap, err = c.weather.FetchByCity(ctx, s.city)
	}
	if err != nil {
		c.logger.Error("weather fetch failed",
			zap.String("trigger", trigger),
			zap.String("category", string(weather.CategorizeError(err))),
			zap.Error(err))
		c.states.EnterError(weather.UserMessage(err))
		return
	}

	c.snapshot = &snap
	c.states.EnterResult(snap, c.unit)
}

func (c *Controller) closeDropdown() {
	if !c.dropdownOpen && len(c.items) == 0 {
		return
	}
	c.items = nil
	c.dropdownOpen = false
	c.nav.Reset(0)
	c.renderer.Render(view.UpdateSuggestionList{})
	c.renderer.Render(view.SetHighlight{Index: navigator.None})
}

// inlineMessage maps a validation error to the text shown next to the input.
func inlineMessage(err error) string {
	switch {
	case errors.Is(err, validation.ErrQueryEmpty):
		return "Please enter a city name"
	case errors.Is(err, validation.ErrQueryTooLong):
		return "City name is too long"
	default:
		return "Only letters, spaces, hyphens, commas, periods and apostrophes are allowed"
	}
}
