package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/mkarlsven/weather-console/internal/controller"
	"github.com/mkarlsven/weather-console/internal/models"
	"github.com/mkarlsven/weather-console/internal/navigator"
	"github.com/mkarlsven/weather-console/internal/view"
)

// terminal is the line-oriented frontend: it turns REPL commands into
// controller intents and prints render commands. All interaction logic lives
// in the controller; this type only translates.
type terminal struct {
	mu        sync.Mutex
	out       io.Writer
	items     []models.Suggestion
	highlight int
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out, highlight: navigator.None}
}

// Render implements view.Renderer. Called from both the REPL goroutine and
// the debounce timer goroutine.
func (t *terminal) Render(cmd view.Command) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch c := cmd.(type) {
	case view.HidePanel:
		// Panels are printed, not positioned; hiding needs no output.
	case view.ShowPanel:
		t.showPanel(c)
	case view.UpdateSuggestionList:
		t.items = c.Items
		t.highlight = navigator.None
		if len(c.Items) == 0 {
			return
		}
		fmt.Fprintln(t.out, "Suggestions:")
		t.printSuggestions()
	case view.SetHighlight:
		t.highlight = c.Index
		if len(t.items) > 0 {
			t.printSuggestions()
		}
	case view.SetQueryText:
		fmt.Fprintf(t.out, "> %s\n", c.Text)
	case view.SetInputError:
		if c.Message != "" {
			fmt.Fprintf(t.out, "! %s\n", c.Message)
		}
	case view.SetSubmitEnabled:
		// No submit button to grey out on a terminal.
	}
}

func (t *terminal) showPanel(c view.ShowPanel) {
	switch c.Panel {
	case view.PanelWelcome:
		fmt.Fprintln(t.out, "Type a city name to look up the weather. /help lists commands.")
	case view.PanelLoading:
		fmt.Fprintln(t.out, "Fetching weather...")
	case view.PanelError:
		fmt.Fprintf(t.out, "Error: %s (/retry to try again)\n", c.Message)
	case view.PanelResult:
		for _, line := range c.Lines {
			fmt.Fprintf(t.out, "  %s\n", line)
		}
	}
}

func (t *terminal) printSuggestions() {
	for i, item := range t.items {
		marker := " "
		if i == t.highlight {
			marker = ">"
		}
		label := item.DisplayName
		if item.RegionLabel != "" {
			label += " (" + item.RegionLabel + ")"
		}
		fmt.Fprintf(t.out, " %s %d. %s\n", marker, i+1, label)
	}
}

const helpText = `Commands:
  <city>               search weather for a city (Enter)
  /find <text>         type into the search field (autocomplete)
  /pick <n>            click suggestion n
  /down, /up           move the suggestion highlight
  /esc                 close the suggestion dropdown
  /here <lat> <lon>    search weather for coordinates
  /units               toggle metric/imperial
  /retry               retry the last search
  /quit                exit`

// runLoop reads commands until EOF, /quit, or ctx cancellation.
func (t *terminal) runLoop(ctx context.Context, ctrl *controller.Controller, in io.Reader) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !t.dispatch(ctrl, line) {
				return
			}
		}
	}
}

// dispatch translates one input line into an intent. Returns false on /quit.
func (t *terminal) dispatch(ctrl *controller.Controller, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "/quit", "/q":
		return false
	case "/help":
		fmt.Fprintln(t.out, helpText)
	case "/find":
		ctrl.Handle(controller.InputChanged{Text: rest})
	case "/pick":
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || n < 1 {
			fmt.Fprintln(t.out, "! usage: /pick <n>")
			return true
		}
		ctrl.Handle(controller.SelectSuggestion{Index: n - 1})
	case "/down":
		ctrl.Handle(controller.NavigateSuggestion{Delta: 1})
	case "/up":
		ctrl.Handle(controller.NavigateSuggestion{Delta: -1})
	case "/esc":
		ctrl.Handle(controller.DismissSuggestions{})
	case "/here":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			fmt.Fprintln(t.out, "! usage: /here <lat> <lon>")
			return true
		}
		lat, errLat := strconv.ParseFloat(fields[0], 64)
		lon, errLon := strconv.ParseFloat(fields[1], 64)
		if errLat != nil || errLon != nil {
			fmt.Fprintln(t.out, "! usage: /here <lat> <lon>")
			return true
		}
		ctrl.Handle(controller.SubmitCoords{Lat: lat, Lon: lon})
	case "/units":
		ctrl.Handle(controller.ToggleUnit{})
		fmt.Fprintf(t.out, "Units: %s\n", ctrl.Unit())
	case "/retry":
		ctrl.Handle(controller.Retry{})
	default:
		ctrl.Handle(controller.PressEnter{Text: line})
	}
	return true
}
