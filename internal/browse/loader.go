package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobmerge/internal/service"
)

// ErrCancelled is returned when the user aborts the loader.
var ErrCancelled = errors.New("cancelled")

type fetchDoneMsg struct {
	resp service.Response
	err  error
}

type loaderModel struct {
	label   string
	fetchFn func(ctx context.Context) (service.Response, error)
	spinner spinner.Model
	result  service.Response
	err     error
	done    bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doFetch(), m.spinner.Tick)
}

func (m loaderModel) doFetch() tea.Cmd {
	fetchFn := m.fetchFn
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		resp, err := fetchFn(ctx)
		return fetchDoneMsg{resp: resp, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchDoneMsg:
		m.result = msg.resp
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...\n", m.spinner.View(), m.label)
}

func newSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("33"))),
	)
}

// RunLoader shows a spinner while fetchFn runs. It renders inline (no alt screen).
func RunLoader(label string, fetchFn func(ctx context.Context) (service.Response, error)) (service.Response, error) {
	m := loaderModel{
		label:   label,
		fetchFn: fetchFn,
		spinner: newSpinner(),
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return service.Response{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
