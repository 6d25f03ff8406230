// Package browse is an interactive terminal browser over search results.
package browse

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobmerge/internal/model"
	"github.com/amishk599/jobmerge/internal/service"
)

// Searcher loads one page of results.
type Searcher func(ctx context.Context, page int) (service.Response, error)

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	jobSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// pageLoadedMsg is sent when an async page load completes.
type pageLoadedMsg struct {
	page int
	resp service.Response
	err  error
}

type browseModel struct {
	search  Searcher
	page    int
	result  model.SearchResult
	cached  bool
	cursor  int
	loading bool
	loadErr string
	spinner spinner.Model

	listViewport   viewport.Model
	detailViewport viewport.Model
	view           viewState
	width          int
	height         int
	ready          bool
}

func newBrowseModel(search Searcher, first service.Response) browseModel {
	page := first.Result.Page
	if page < 1 {
		page = model.DefaultPage
	}
	return browseModel{
		search:  search,
		page:    page,
		result:  first.Result,
		cached:  first.Cached,
		spinner: newSpinner(),
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = fmt.Sprintf("failed to load page %d: %v", msg.page, msg.err)
			return m, nil
		}
		m.loadErr = ""
		m.page = msg.page
		m.result = msg.resp.Result
		m.cached = msg.resp.Cached
		m.cursor = 0
		m.listViewport.SetYOffset(0)
		m.recalcContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, max(len(m.result.Jobs)-1, 0))
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, max(len(m.result.Jobs)-1, 0))
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "n", "pgdown":
		if m.loading || m.page >= m.result.TotalPages {
			return m, nil
		}
		return m.loadPage(m.page + 1)
	case "p", "pgup":
		if m.loading || m.page <= 1 {
			return m, nil
		}
		return m.loadPage(m.page - 1)
	case "enter":
		return m.openDetailView()
	}

	var cmd tea.Cmd
	m.listViewport, cmd = m.listViewport.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if len(m.result.Jobs) > 0 {
			openURL(m.result.Jobs[m.cursor].URL)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m browseModel) loadPage(page int) (tea.Model, tea.Cmd) {
	m.loading = true
	m.loadErr = ""
	search := m.search
	load := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		resp, err := search(ctx, page)
		return pageLoadedMsg{page: page, resp: resp, err: err}
	}
	return m, tea.Batch(load, m.spinner.Tick)
}

func (m browseModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.result.Jobs) == 0 {
		return m, nil
	}
	m.view = viewDetail
	m.detailViewport = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
	m.detailViewport.SetContent(renderDetail(m.result.Jobs[m.cursor], max(m.width-8, 20)))
	return m, nil
}

func (m *browseModel) ensureCursorVisible() {
	vp := &m.listViewport
	cursorTop := m.cursor * jobItemHeight
	cursorBottom := cursorTop + jobItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m *browseModel) recalcLayout() {
	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	width := max(m.width-2, 20)
	height := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(width, height)
		m.ready = true
	} else {
		m.listViewport.Width = width
		m.listViewport.Height = height
	}
	if m.view == viewDetail && len(m.result.Jobs) > 0 {
		m.detailViewport.Width = max(m.width-4, 20)
		m.detailViewport.Height = max(m.height-4, 5)
		m.detailViewport.SetContent(renderDetail(m.result.Jobs[m.cursor], max(m.width-8, 20)))
	}
	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.listViewport.SetContent(renderJobs(m.result.Jobs, m.cursor))
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browseModel) viewList() string {
	header := fmt.Sprintf(" Jobs (%d total) · page %d/%d", m.result.TotalCount, m.page, max(m.result.TotalPages, 1))
	if m.cached {
		header += " · cached"
	}
	if m.loading {
		header += " " + m.spinner.View()
	}

	pane := borderStyle.Width(m.listViewport.Width).Render(m.listViewport.View())

	statusText := " ↑/↓ cursor  n/p page  Enter detail  q quit"
	if m.loadErr != "" {
		statusText = " " + errorStyle.Render(m.loadErr)
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerStyle.Render(header) + "\n" + pane + "\n" + statusBar
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Job Details")
	content := borderStyle.Width(m.width - 2).Render(m.detailViewport.View())
	statusBar := statusBarStyle.Width(m.width).Render(" o open URL  esc/backspace back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + statusBar
}

func renderDetail(j model.Job, wrapWidth int) string {
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", j.Title)
	addField("Company", j.Company.Name)
	addField("Location", j.Location)
	addField("Job Type", j.JobType)
	addField("Salary", formatSalary(j))
	addField("Source", string(j.Source))
	addField("Job ID", j.ID)
	addField("Posted", formatPosted(j.CreatedAt, "2006-01-02 15:04 MST"))
	if len(j.Requirements) > 0 {
		addField("Tags", strings.Join(j.Requirements, ", "))
	}
	addField("URL", j.URL)

	if j.Description != "" {
		b.WriteByte('\n')
		b.WriteString(wordWrap(j.Description, wrapWidth))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderJobs(jobs []model.Job, cursor int) string {
	if len(jobs) == 0 {
		return "  (no jobs)"
	}

	var b strings.Builder
	for i, j := range jobs {
		titleSt := jobTitleStyle
		subtitleSt := jobSubtitleStyle
		prefix := "  "
		if i == cursor {
			titleSt = selectedJobTitleStyle
			subtitleSt = selectedJobSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(j.Title))
		b.WriteString(" ")
		b.WriteString(sourceStyle.Render("[" + string(j.Source) + "]"))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %s", j.Company.Name, j.Location, formatPosted(j.CreatedAt, "2006-01-02"))))
		b.WriteByte('\n')

		if i < len(jobs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func formatSalary(j model.Job) string {
	if !j.SalaryDisclosed {
		return "Not disclosed"
	}
	return fmt.Sprintf("%d", j.Salary)
}

func formatPosted(t time.Time, layout string) string {
	if t.IsZero() || t.Unix() == 0 {
		return "n/a"
	}
	return t.Format(layout)
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	if url == "" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the full-screen browser starting from first. Page changes
// call search again.
func Run(search Searcher, first service.Response) error {
	p := tea.NewProgram(newBrowseModel(search, first), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
