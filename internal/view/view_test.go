package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsven/weather-console/internal/models"
)

// recorder tracks panel visibility the way a frontend would.
type recorder struct {
	commands []Command
	visible  map[Panel]bool
}

func newRecorder() *recorder {
	return &recorder{visible: make(map[Panel]bool)}
}

func (r *recorder) Render(cmd Command) {
	r.commands = append(r.commands, cmd)
	switch c := cmd.(type) {
	case HidePanel:
		r.visible[c.Panel] = false
	case ShowPanel:
		r.visible[c.Panel] = true
	}
}

func (r *recorder) visiblePanels() []Panel {
	var out []Panel
	for _, p := range Panels {
		if r.visible[p] {
			out = append(out, p)
		}
	}
	return out
}

func sampleSnapshot() models.Snapshot {
	return models.Snapshot{
		CityName:     "London",
		CountryName:  "United Kingdom",
		Condition:    "Partly cloudy",
		TempC:        20,
		TempF:        68,
		FeelsLikeC:   18,
		FeelsLikeF:   64,
		HumidityPct:  72,
		VisibilityKm: 10,
		WindKmph:     15,
		WindMph:      9,
		PressureMb:   1012,
	}
}

func TestStateMachine_StartsAtWelcome(t *testing.T) {
	rec := newRecorder()
	m := NewStateMachine(rec)

	assert.Equal(t, PanelWelcome, m.Active())
	assert.Equal(t, []Panel{PanelWelcome}, rec.visiblePanels())
}

func TestStateMachine_ExactlyOnePanelVisible(t *testing.T) {
	rec := newRecorder()
	m := NewStateMachine(rec)

	m.EnterLoading()
	assert.Equal(t, []Panel{PanelLoading}, rec.visiblePanels())

	m.EnterError("City not found. Please check the spelling and try again.")
	assert.Equal(t, []Panel{PanelError}, rec.visiblePanels())

	m.EnterResult(sampleSnapshot(), models.UnitMetric)
	assert.Equal(t, []Panel{PanelResult}, rec.visiblePanels())

	// Retry path: Result back to Loading.
	m.EnterLoading()
	assert.Equal(t, []Panel{PanelLoading}, rec.visiblePanels())
}

func TestStateMachine_HidesBeforeShowing(t *testing.T) {
	rec := newRecorder()
	m := NewStateMachine(rec)
	rec.commands = nil

	m.EnterLoading()
	require.Len(t, rec.commands, 4)
	for _, cmd := range rec.commands[:3] {
		_, isHide := cmd.(HidePanel)
		assert.True(t, isHide, "expected HidePanel before ShowPanel, got %T", cmd)
	}
	show, ok := rec.commands[3].(ShowPanel)
	require.True(t, ok)
	assert.Equal(t, PanelLoading, show.Panel)
}

func TestStateMachine_ErrorMessageReplaced(t *testing.T) {
	rec := newRecorder()
	m := NewStateMachine(rec)

	m.EnterError("first message")
	rec.commands = nil
	m.EnterError("second message")

	var got string
	for _, cmd := range rec.commands {
		if show, ok := cmd.(ShowPanel); ok && show.Panel == PanelError {
			got = show.Message
		}
	}
	assert.Equal(t, "second message", got)
}

func TestTemperature_UnitSelection(t *testing.T) {
	s := sampleSnapshot()
	assert.Equal(t, "20°C", Temperature(s, models.UnitMetric))
	assert.Equal(t, "68°F", Temperature(s, models.UnitImperial))
}

func TestFeelsLikeAndWind_UnitSelection(t *testing.T) {
	s := sampleSnapshot()
	assert.Equal(t, "18°C", FeelsLike(s, models.UnitMetric))
	assert.Equal(t, "64°F", FeelsLike(s, models.UnitImperial))
	assert.Equal(t, "15 km/h", WindSpeed(s, models.UnitMetric))
	assert.Equal(t, "9 mph", WindSpeed(s, models.UnitImperial))
}

func TestFormatSnapshot(t *testing.T) {
	lines := FormatSnapshot(sampleSnapshot(), models.UnitMetric)
	require.NotEmpty(t, lines)
	assert.Equal(t, "London, United Kingdom", lines[0])
	assert.Contains(t, lines, "20°C, feels like 18°C")
	assert.Contains(t, lines, "Humidity 72%")
	assert.Contains(t, lines, "Wind 15 km/h")
}
