package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameDoneMsg reports render progress.
type FrameDoneMsg struct {
	Done, Total int
}

// DoneMsg ends the view once the pipeline has returned.
type DoneMsg struct {
	Err error
}

type tickMsg time.Time

const tickInterval = 100 * time.Millisecond

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Progress is the render progress view. Quitting only cancels the run;
// the view stays up until DoneMsg arrives.
type Progress struct {
	title    string
	done     int
	total    int
	frame    int
	start    time.Time
	cancel   context.CancelFunc
	stopping bool
	finished bool
	err      error
	width    int
}

func NewProgress(title string, total int, cancel context.CancelFunc) Progress {
	return Progress{
		title:  title,
		total:  total,
		start:  time.Now(),
		cancel: cancel,
		width:  40,
	}
}

func (m Progress) Init() tea.Cmd { return tick() }

func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !m.stopping && m.cancel != nil {
				m.cancel()
			}
			m.stopping = true
		}
	case FrameDoneMsg:
		if msg.Done > m.done {
			m.done = msg.Done
		}
		m.total = msg.Total
	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

// Done reports the frames rendered so far.
func (m Progress) Done() int { return m.done }

func (m Progress) Err() error { return m.err }

func (m Progress) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m Progress) View() string {
	var b strings.Builder

	status := valueStyle.Render(swing(m.frame) + " rendering")
	switch {
	case m.finished && m.err != nil:
		status = failStyle.Render("✗ failed")
	case m.finished:
		status = okStyle.Render("✓ done")
	case m.stopping:
		status = warnStyle.Render(swing(m.frame) + " stopping")
	}

	b.WriteString(title(m.title) + "  " + status + "\n\n")
	b.WriteString(ProgressBar(m.percent(), m.width))
	b.WriteString(fmt.Sprintf("  %s %s\n",
		valueStyle.Render(fmt.Sprintf("%d/%d", m.done, m.total)),
		labelStyle.Render("frames"),
	))

	elapsed := time.Since(m.start)
	rate := 0.0
	if s := elapsed.Seconds(); s > 0 {
		rate = float64(m.done) / s
	}
	b.WriteString(labelStyle.Render("elapsed ") + valueStyle.Render(elapsed.Round(100*time.Millisecond).String()))
	b.WriteString(labelStyle.Render("  rate ") + valueStyle.Render(fmt.Sprintf("%.1f fps", rate)) + "\n")

	if !m.finished {
		b.WriteString("\n" + hintStyle.Render("q cancel") + "\n")
	}
	return b.String()
}
