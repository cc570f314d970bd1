package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/optimize"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
)

var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
)

const barWidth = 40

// =============================================================================
// Messages
// =============================================================================

// sweepPointMsg reports a finished rate.
type sweepPointMsg optimize.Point

// sweepDoneMsg carries the outcome of the sweep.
type sweepDoneMsg struct {
	result *pipeline.SweepResult
	err    error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// =============================================================================
// SweepModel - live cooling-rate sweep progress
// =============================================================================

// SweepModel is the bubbletea model shown while a sweep runs.
type SweepModel struct {
	Total    int
	Points   []optimize.Point
	Best     *optimize.Point
	Started  time.Time
	Elapsed  time.Duration
	Result   *pipeline.SweepResult
	Err      error
	Quitting bool
	Width    int
}

// NewSweepModel creates a model for a sweep over total rates.
func NewSweepModel(total int) SweepModel {
	return SweepModel{Total: total, Started: time.Now(), Width: 60}
}

func (m SweepModel) Init() tea.Cmd {
	return tick()
}

func (m SweepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Width = max(msg.Width-12, 20)
	case sweepPointMsg:
		p := optimize.Point(msg)
		m.Points = append(m.Points, p)
		if m.Best == nil || p.MeanIterations < m.Best.MeanIterations {
			m.Best = &p
		}
	case sweepDoneMsg:
		m.Result, m.Err = msg.result, msg.err
		m.Elapsed = time.Since(m.Started)
		return m, tea.Quit
	case tickMsg:
		m.Elapsed = time.Since(m.Started)
		return m, tick()
	}
	return m, nil
}

func (m SweepModel) View() string {
	if m.Result != nil || m.Err != nil || m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Sweeping cooling rates"))
	b.WriteString("\n\n")

	done := len(m.Points)
	b.WriteString(renderBar(done, m.Total, barWidth))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d/%d rates  %s", done, m.Total, m.Elapsed.Round(100*time.Millisecond))))
	b.WriteString("\n\n")

	if done > 0 {
		last := m.Points[done-1]
		b.WriteString(StyleDim.Render("last  "))
		b.WriteString(StyleValue.Render(fmt.Sprintf("rate %s  mean %.2f", formatRate(last.Rate), last.MeanIterations)))
		b.WriteString("\n")
	}
	if m.Best != nil {
		b.WriteString(StyleDim.Render("best  "))
		b.WriteString(StyleSuccess.Render(fmt.Sprintf("rate %s  mean %.2f", formatRate(m.Best.Rate), m.Best.MeanIterations)))
		b.WriteString("\n")
	}
	if chart := renderSweepChart(&optimize.Result{Points: m.Points}, m.Width, 8); chart != "" {
		b.WriteString("\n")
		b.WriteString(chart)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	return b.String()
}

// renderBar draws a done/total progress bar width cells wide.
func renderBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(done*width/total, width)
	}
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// =============================================================================
// Runner
// =============================================================================

// runSweepTUI runs req on runner while showing a SweepModel on out.
// Quitting the view cancels the sweep.
func runSweepTUI(ctx context.Context, out io.Writer, runner *pipeline.Runner, req pipeline.SweepRequest) (*pipeline.SweepResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewSweepModel(len(req.Range.Rates())),
		tea.WithContext(ctx),
		tea.WithOutput(out))

	onPoint := req.Progress
	req.Progress = func(pt optimize.Point) {
		if onPoint != nil {
			onPoint(pt)
		}
		p.Send(sweepPointMsg(pt))
	}
	go func() {
		res, err := runner.Sweep(ctx, req)
		p.Send(sweepDoneMsg{result: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeCancelled, ctx.Err(), "sweep interrupted")
		}
		return nil, fmt.Errorf("progress view: %w", err)
	}

	m := final.(SweepModel)
	if m.Quitting {
		return nil, errors.Wrap(errors.ErrCodeCancelled, context.Canceled, "sweep interrupted")
	}
	return m.Result, m.Err
}
