package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/san-kum/elastipend/internal/metrics"
	"github.com/san-kum/elastipend/internal/pipeline"
)

func metricLine(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-10s", label)) + valueStyle.Render(value)
}

// RunSummary renders the outcome of a finished run with a path preview
// and the energy history.
func RunSummary(res *pipeline.Result, width int) string {
	traj := res.Trajectory
	sol := traj.Solution
	p := traj.Model.Params()

	lines := []string{
		title("elastipend"),
		rule(width),
		metricLine("alpha0", fmt.Sprintf("%.3f rad", p.Alpha0)),
		metricLine("beta0", fmt.Sprintf("%.3f rad", p.Beta0)),
		metricLine("springs", fmt.Sprintf("k1=%.2f k2=%.2f", p.K1, p.K2)),
		metricLine("method", fmt.Sprintf("%s (%d steps, %d rejected)", sol.Method, sol.Steps, sol.Rejects)),
		metricLine("frames", fmt.Sprintf("%d @ %g fps", res.Frames, traj.FPS)),
		metricLine("drift", fmt.Sprintf("%.3e", res.Drift)),
		metricLine("elapsed", res.Elapsed.Round(time.Millisecond).String()),
	}
	if res.Movie != "" {
		lines = append(lines, metricLine("movie", res.Movie))
	}

	lines = append(lines,
		"",
		labelStyle.Render("energy drift"),
		DriftSparkline(metrics.EnergySeries(traj.Model, sol), width),
		"",
		Bob1Style.Render(strings.TrimRight(PathPreview(traj.Trace, width/2, width/6), "\n")),
	)
	return panelStyle.Render(strings.Join(lines, "\n"))
}
