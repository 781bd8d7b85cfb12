package controller

// Intent is one user action emitted by a frontend. The controller consumes
// intents and answers with render commands, keeping the interaction logic
// independent of any UI toolkit.
type Intent interface{ isIntent() }

// InputChanged fires on every keystroke in the query field.
type InputChanged struct{ Text string }

// SubmitQuery fires on the search button.
type SubmitQuery struct{ Text string }

// PressEnter fires on Enter in the query field: it selects the highlighted
// suggestion when the dropdown has one, otherwise submits Text.
type PressEnter struct{ Text string }

// SubmitCoords searches by the user's geographic position.
type SubmitCoords struct{ Lat, Lon float64 }

// SelectSuggestion picks a dropdown entry by index (pointer click).
type SelectSuggestion struct{ Index int }

// NavigateSuggestion moves the dropdown highlight: +1 down, -1 up.
type NavigateSuggestion struct{ Delta int }

// DismissSuggestions closes the dropdown (Escape or click outside).
type DismissSuggestions struct{}

// ToggleUnit switches between metric and imperial.
type ToggleUnit struct{}

// Retry replays the last search verbatim.
type Retry struct{}

func (InputChanged) isIntent()       {}
func (SubmitQuery) isIntent()        {}
func (PressEnter) isIntent()         {}
func (SubmitCoords) isIntent()       {}
func (SelectSuggestion) isIntent()   {}
func (NavigateSuggestion) isIntent() {}
func (DismissSuggestions) isIntent() {}
func (ToggleUnit) isIntent()         {}
func (Retry) isIntent()              {}
