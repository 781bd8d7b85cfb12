// Package view owns which of the four display panels is visible and the
// render command stream a frontend consumes. It knows nothing about any
// particular UI toolkit: the terminal frontend, a test recorder, or a future
// GUI all implement Renderer.
package view

import (
	"github.com/mkarlsven/weather-console/internal/models"
)

// Panel is one of the four mutually exclusive top-level display regions.
type Panel string

const (
	PanelWelcome Panel = "welcome"
	PanelLoading Panel = "loading"
	PanelError   Panel = "error"
	PanelResult  Panel = "result"
)

// Panels lists all panels in display order.
var Panels = []Panel{PanelWelcome, PanelLoading, PanelError, PanelResult}

// Renderer consumes render commands emitted by the state machine and the
// controller.
type Renderer interface {
	Render(cmd Command)
}

// Command is a single render instruction. Frontends switch on the concrete
// type.
type Command interface{ isCommand() }

// HidePanel hides one panel.
type HidePanel struct{ Panel Panel }

// ShowPanel makes one panel visible. For PanelError, Message carries the
// human-readable error text; for PanelResult, Lines carries the formatted
// snapshot.
type ShowPanel struct {
	Panel   Panel
	Message string
	Lines   []string
}

// UpdateSuggestionList replaces the suggestion dropdown contents. An empty
// list closes the dropdown.
type UpdateSuggestionList struct{ Items []models.Suggestion }

// SetHighlight moves the dropdown highlight. Index -1 clears it.
type SetHighlight struct{ Index int }

// SetQueryText replaces the input field text (suggestion pick).
type SetQueryText struct{ Text string }

// SetInputError shows an inline validation message next to the input;
// empty Message clears it.
type SetInputError struct{ Message string }

// SetSubmitEnabled enables or disables the submit control.
type SetSubmitEnabled struct{ Enabled bool }

func (HidePanel) isCommand()            {}
func (ShowPanel) isCommand()            {}
func (UpdateSuggestionList) isCommand() {}
func (SetHighlight) isCommand()         {}
func (SetQueryText) isCommand()         {}
func (SetInputError) isCommand()        {}
func (SetSubmitEnabled) isCommand()     {}

// StateMachine tracks the active panel and enforces mutual exclusivity:
// entering any state hides the other three panels before showing the new one.
// Welcome is the initial state; there is no terminal state.
type StateMachine struct {
	renderer Renderer
	active   Panel
}

// NewStateMachine returns a state machine in the Welcome state and renders it.
func NewStateMachine(r Renderer) *StateMachine {
	m := &StateMachine{renderer: r}
	m.enter(PanelWelcome, "", nil)
	return m
}

// Active returns the currently visible panel.
func (m *StateMachine) Active() Panel {
	return m.active
}

// EnterLoading shows the loading panel. Entered on every fetch start,
// including retry and unit toggle.
func (m *StateMachine) EnterLoading() {
	m.enter(PanelLoading, "", nil)
}

// EnterError shows the error panel with message, replacing any previous one.
func (m *StateMachine) EnterError(message string) {
	m.enter(PanelError, message, nil)
}

// EnterResult shows the result panel rendering snapshot with unit.
func (m *StateMachine) EnterResult(snapshot models.Snapshot, unit models.Unit) {
	m.enter(PanelResult, "", FormatSnapshot(snapshot, unit))
}

func (m *StateMachine) enter(p Panel, message string, lines []string) {
	for _, other := range Panels {
		if other != p {
			m.renderer.Render(HidePanel{Panel: other})
		}
	}
	m.active = p
	m.renderer.Render(ShowPanel{Panel: p, Message: message, Lines: lines})
}
