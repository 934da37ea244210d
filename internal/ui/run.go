package ui

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// RunUI renders the progress of a simulation run: building the communes,
// one task per scenario, then the outputs.
type RunUI struct {
	writer    io.Writer
	quiet     bool
	workflow  *Workflow
	startTime time.Time

	buildIdx  int
	scenarios map[string]int
	outputIdx map[string]int
}

// NewRunUI creates a new UI handler for the run command
func NewRunUI(w io.Writer, quiet bool) *RunUI {
	return &RunUI{
		writer:    w,
		quiet:     quiet,
		startTime: time.Now(),
		scenarios: make(map[string]int),
		outputIdx: make(map[string]int),
	}
}

// StartWorkflow lays out the tasks of a run. outputs names the artifacts
// written afterwards (results file, manifest, run store).
func (r *RunUI) StartWorkflow(scenarios, outputs []string) {
	if r.quiet {
		return
	}
	r.startTime = time.Now()
	r.workflow = NewWorkflow(r.writer, "")
	r.buildIdx = r.workflow.AddTask("Building communes")
	for _, name := range scenarios {
		r.scenarios[name] = r.workflow.AddTask("Scenario " + name)
	}
	for _, name := range outputs {
		r.outputIdx[name] = r.workflow.AddTask(name)
	}
	r.workflow.Start()
}

// StartBuilding marks the population build as running.
func (r *RunUI) StartBuilding(communes int) {
	if r.quiet || r.workflow == nil {
		return
	}
	if r.workflow.Status(r.buildIdx) == TaskDone {
		return
	}
	r.workflow.StartTask(r.buildIdx, Dim.Render(fmt.Sprintf("%d commune(s)", communes)))
}

// CompleteBuilding marks the population build as done.
func (r *RunUI) CompleteBuilding(communes int) {
	if r.quiet || r.workflow == nil {
		return
	}
	if r.workflow.Status(r.buildIdx) == TaskDone {
		return
	}
	r.workflow.CompleteTask(r.buildIdx, fmt.Sprintf("%d commune(s)", communes))
}

// StartScenario marks a scenario as running.
func (r *RunUI) StartScenario(name string, weeks int) {
	if idx, ok := r.scenarioTask(name); ok {
		r.workflow.StartTask(idx, Dim.Render(fmt.Sprintf("0/%d weeks", weeks)))
	}
}

// UpdateScenario shows how many weeks of a scenario are done.
func (r *RunUI) UpdateScenario(name string, week, weeks int) {
	idx, ok := r.scenarioTask(name)
	if !ok || weeks <= 0 {
		return
	}
	done := week + 1
	r.workflow.UpdateMessage(idx, ProgressBar(float64(done)/float64(weeks), 20)+" "+Dim.Render(fmt.Sprintf("%d/%d weeks", done, weeks)))
}

// CompleteScenario marks a scenario as done.
func (r *RunUI) CompleteScenario(name, details string) {
	if idx, ok := r.scenarioTask(name); ok {
		r.workflow.CompleteTask(idx, details)
	}
}

// FailScenario marks a scenario as failed.
func (r *RunUI) FailScenario(name, errMsg string) {
	if idx, ok := r.scenarioTask(name); ok {
		r.workflow.FailTask(idx, errMsg)
	}
}

func (r *RunUI) scenarioTask(name string) (int, bool) {
	if r.quiet || r.workflow == nil {
		return 0, false
	}
	idx, ok := r.scenarios[name]
	return idx, ok
}

// CompleteOutput marks an output task as done.
func (r *RunUI) CompleteOutput(name, details string) {
	if idx, ok := r.outputTask(name); ok {
		r.workflow.CompleteTask(idx, details)
	}
}

// SkipOutput marks an output task as skipped.
func (r *RunUI) SkipOutput(name, reason string) {
	if idx, ok := r.outputTask(name); ok {
		r.workflow.SkipTask(idx, reason)
	}
}

// FailOutput marks an output task as failed.
func (r *RunUI) FailOutput(name, errMsg string) {
	if idx, ok := r.outputTask(name); ok {
		r.workflow.FailTask(idx, errMsg)
	}
}

func (r *RunUI) outputTask(name string) (int, bool) {
	if r.quiet || r.workflow == nil {
		return 0, false
	}
	idx, ok := r.outputIdx[name]
	return idx, ok
}

// FinishWorkflow completes the workflow display
func (r *RunUI) FinishWorkflow() {
	if r.quiet || r.workflow == nil {
		return
	}
	r.workflow.Stop()
}

// RunSummary is what PrintSummary reports.
type RunSummary struct {
	RunID     string
	Seed      uint64
	Weeks     int
	Scenarios int
	Communes  int
	Records   int
	Outputs   []string // "label: path" lines
	Warnings  []string
}

// PrintSummary prints a final summary
func (r *RunUI) PrintSummary(s RunSummary) {
	if r.quiet {
		return
	}

	elapsed := time.Since(r.startTime)

	var b strings.Builder
	b.WriteString(Success.Bold(true).Render("Simulation Complete"))
	b.WriteString("\n\n")
	if s.RunID != "" {
		b.WriteString(FormatKeyValue("Run", Highlight.Render(s.RunID)))
		b.WriteString("\n")
	}
	b.WriteString(FormatKeyValue("Seed", fmt.Sprintf("%d", s.Seed)))
	b.WriteString("\n")
	b.WriteString(FormatKeyValue("Weeks", fmt.Sprintf("%d", s.Weeks)))
	b.WriteString("\n")
	b.WriteString(FormatKeyValue("Scenarios", fmt.Sprintf("%d", s.Scenarios)))
	b.WriteString("\n")
	b.WriteString(FormatKeyValue("Communes", fmt.Sprintf("%d", s.Communes)))
	b.WriteString("\n")
	b.WriteString(FormatKeyValue("Records", fmt.Sprintf("%d", s.Records)))
	for _, out := range s.Outputs {
		key, value, _ := strings.Cut(out, ": ")
		b.WriteString("\n")
		b.WriteString(FormatKeyValue(key, value))
	}
	b.WriteString("\n")
	b.WriteString(FormatKeyValue("Duration", elapsed.Round(time.Millisecond).String()))
	for _, w := range s.Warnings {
		b.WriteString("\n")
		b.WriteString(GetWarnMark() + " " + Warning.Render(w))
	}

	fmt.Fprintln(r.writer)
	fmt.Fprintln(r.writer, SuccessBox.Render(b.String()))
}

// LogStep prints a simple log message (non-workflow mode)
func (r *RunUI) LogStep(icon, message string) {
	if r.quiet {
		return
	}
	fmt.Fprintln(r.writer, FormatStatus(icon, message))
}
