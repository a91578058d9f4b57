package report

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/nvandessel/structsim/internal/judgment"
	"github.com/nvandessel/structsim/internal/metrics"
	"github.com/nvandessel/structsim/internal/performance"
	"github.com/nvandessel/structsim/internal/statespace"
	"github.com/nvandessel/structsim/internal/stress"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBold  = "\x1b[1m"
)

// Printer writes human-readable tables. Color is used only when the
// destination is a terminal and NO_COLOR is unset.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer for w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: colorEnabled(w)}
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

func (p *Printer) mark(ok bool) string {
	if ok {
		return p.paint(ansiGreen, "PASS")
	}
	return p.paint(ansiRed, "FAIL")
}

func (p *Printer) header(title string) {
	fmt.Fprintln(p.w, p.paint(ansiBold, title))
	fmt.Fprintln(p.w, "----------------------------------------------------------------------")
}

// Written reports a result file.
func (p *Printer) Written(path string, size int64) {
	fmt.Fprintf(p.w, "Saved: %s (%s)\n", path, humanize.Bytes(uint64(size)))
}

// Performance prints the architecture comparison.
func (p *Printer) Performance(res *performance.Result) {
	p.header(fmt.Sprintf("Performance comparison (n=%s, seed=%d)", humanize.Comma(int64(res.Samples)), res.Seed))
	fmt.Fprintf(p.w, "%-8s %8s %8s %8s %8s %10s\n", "System", "Mean", "Std", "Min", "Cat%", "Effective")
	for _, s := range res.Systems {
		m := s.Metrics
		fmt.Fprintf(p.w, "%-8s %8.2f %8.2f %8.2f %7.1f%% %10.2f\n",
			m.Label, m.Mean, m.Std, m.Min, m.CatastrophicRate, m.EffectivePerformance)
	}
	if best, ok := metrics.Best(res.Summaries()); ok {
		fmt.Fprintf(p.w, "\nHighest effective performance: %s\n", p.paint(ansiBold, best.Label))
	}
	fmt.Fprintln(p.w)
}

// Stress prints the stress suite.
func (p *Printer) Stress(res *stress.SuiteResult) {
	p.header(fmt.Sprintf("Adversarial stress (n=%s, seed=%d)", humanize.Comma(int64(res.Samples)), res.Seed))
	for _, cr := range res.Conditions {
		fmt.Fprintf(p.w, "[%s] %s\n", cr.Condition.Key, cr.Condition.Title)
		for _, arch := range cr.Condition.Systems {
			s := cr.Summaries[arch]
			line := fmt.Sprintf("  %-18s Eff=%6.2f  Std=%5.2f  Cat=%5.1f%%", stress.Label(cr.Condition.Key, arch), s.EffectivePerformance, s.Std, s.CatastrophicRate)
			if d, ok := cr.Deltas[arch]; ok {
				line += fmt.Sprintf("  (delta %+.2f)", d)
			}
			fmt.Fprintln(p.w, line)
		}
	}

	if len(res.Erosion) > 0 {
		fmt.Fprintln(p.w, "\nStructure erosion sweep (V7)")
		fmt.Fprintf(p.w, "  %-8s %10s %8s\n", "Erosion", "Effective", "Cat%")
		for _, e := range res.Erosion {
			fmt.Fprintf(p.w, "  %-8.2f %10.2f %7.1f%%\n", e.Erosion, e.Summary.EffectivePerformance, e.Summary.CatastrophicRate)
		}
	}
	if res.Drift != nil {
		fmt.Fprintf(p.w, "\nDrifting erosion (V7): Eff=%.2f Cat=%.1f%%\n", res.Drift.EffectivePerformance, res.Drift.CatastrophicRate)
	}

	v := res.Verdict
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "V7 catastrophe-free under stress:   %s\n", p.mark(v.StructuredCatastropheFree))
	fmt.Fprintf(p.w, "V7 best effective everywhere:       %s\n", p.mark(v.StructuredBestEverywhere))
	fmt.Fprintf(p.w, "Catastrophe only with erosion:      %s\n", p.mark(v.ErosionCausesCatastrophe))
	fmt.Fprintln(p.w)
}

// StateSpace prints outcome counts per system.
func (p *Printer) StateSpace(res *statespace.Result) {
	p.header(fmt.Sprintf("State space (n=%s per system, seed=%d)", humanize.Comma(int64(res.Samples)), res.Seed))
	fmt.Fprintf(p.w, "%-8s %8s %8s %8s %8s %10s\n", "System", "Success", "Fail", "Catast", "Cat%", "Danger%")
	for _, s := range res.Systems {
		fmt.Fprintf(p.w, "%-8s %8d %8d %8d %7.1f%% %9.1f%%\n",
			s.System, s.Counts.Success, s.Counts.Fail, s.Counts.Catastrophic, s.CatastrophicRate, s.DangerOccupancy)
	}
	fmt.Fprintln(p.w)
}

// Judgment prints the distribution comparison and hypothesis results.
func (p *Printer) Judgment(res *judgment.Result) {
	p.header(fmt.Sprintf("Judgment vs execution (%d runs, %d turns)", res.NRuns, res.MaxTurns))
	fmt.Fprintf(p.w, "%-20s %8s %8s %8s %8s %6s\n", "Agent", "Mean", "Std", "IQR", "Catast%", "Tau")
	for _, a := range judgment.AgentTypes {
		m := res.Metrics[a]
		fmt.Fprintf(p.w, "%-20s %8.2f %8.3f %8.3f %7.1f%% %6.1f\n",
			a.Name(), m.Mean, m.Std, m.IQR, m.CatastrophicRate*100, m.AvgTimeToAction)
	}

	ids := make([]string, 0, len(res.Hypotheses))
	for id := range res.Hypotheses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintln(p.w)
	for _, id := range ids {
		h := res.Hypotheses[id]
		fmt.Fprintf(p.w, "%s: %-32s %s\n", id, h.Description, p.mark(h.Result))
	}
	fmt.Fprintln(p.w)
}
