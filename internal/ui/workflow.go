package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// spinnerFrames defines the spinner animation frames
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// TaskStatus represents the status of a task
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskRunning
	TaskDone
	TaskFailed
	TaskSkipped
)

// Task represents a single task in the workflow
type Task struct {
	Name    string
	Status  TaskStatus
	Message string
	Details string // shown when complete
}

// Workflow manages a list of tasks with visual progress.
//
// On a terminal the task list is redrawn in place with a spinner. On any other
// writer each task is printed once, when it reaches a final state.
type Workflow struct {
	writer     io.Writer
	title      string
	tasks      []*Task
	mu         sync.Mutex
	spinnerIdx int
	stopChan   chan struct{}
	doneChan   chan struct{}
	running    bool
	animate    bool
	printed    map[int]bool
	lastRender string
	startTime  time.Time
}

// NewWorkflow creates a new workflow tracker
func NewWorkflow(w io.Writer, title string) *Workflow {
	return &Workflow{
		writer:   w,
		title:    title,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
		animate:  IsTerminal(w),
		printed:  make(map[int]bool),
	}
}

// IsTerminal reports whether w is a character device such as a TTY.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// AddTask adds a new task to the workflow
func (wf *Workflow) AddTask(name string) int {
	wf.mu.Lock()
	defer wf.mu.Unlock()

	wf.tasks = append(wf.tasks, &Task{Name: name, Status: TaskPending})
	return len(wf.tasks) - 1
}

// StartTask marks a task as running
func (wf *Workflow) StartTask(idx int, message string) {
	wf.update(idx, func(t *Task) {
		t.Status = TaskRunning
		t.Message = message
	})
}

// CompleteTask marks a task as done
func (wf *Workflow) CompleteTask(idx int, details string) {
	wf.update(idx, func(t *Task) {
		t.Status = TaskDone
		t.Details = details
	})
}

// FailTask marks a task as failed
func (wf *Workflow) FailTask(idx int, errMsg string) {
	wf.update(idx, func(t *Task) {
		t.Status = TaskFailed
		t.Message = errMsg
	})
}

// SkipTask marks a task as skipped
func (wf *Workflow) SkipTask(idx int, reason string) {
	wf.update(idx, func(t *Task) {
		t.Status = TaskSkipped
		t.Message = reason
	})
}

// UpdateMessage updates the message of a running task
func (wf *Workflow) UpdateMessage(idx int, message string) {
	wf.update(idx, func(t *Task) { t.Message = message })
}

func (wf *Workflow) update(idx int, fn func(*Task)) {
	wf.mu.Lock()
	defer wf.mu.Unlock()

	if idx < 0 || idx >= len(wf.tasks) {
		return
	}
	fn(wf.tasks[idx])
	if wf.running && !wf.animate {
		wf.printFinishedLocked()
	}
}

// Status returns the current status of a task.
func (wf *Workflow) Status(idx int) TaskStatus {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	if idx < 0 || idx >= len(wf.tasks) {
		return TaskPending
	}
	return wf.tasks[idx].Status
}

// Elapsed is the time since Start.
func (wf *Workflow) Elapsed() time.Duration {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	if wf.startTime.IsZero() {
		return 0
	}
	return time.Since(wf.startTime)
}

// Start begins the workflow display
func (wf *Workflow) Start() {
	wf.mu.Lock()
	if wf.running {
		wf.mu.Unlock()
		return
	}
	wf.running = true
	wf.startTime = time.Now()
	if wf.title != "" {
		fmt.Fprintln(wf.writer, Title.Render(wf.title))
	}
	animate := wf.animate
	wf.mu.Unlock()

	if !animate {
		close(wf.doneChan)
		return
	}

	go func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		defer close(wf.doneChan)

		for {
			select {
			case <-wf.stopChan:
				return
			case <-ticker.C:
				wf.mu.Lock()
				wf.spinnerIdx = (wf.spinnerIdx + 1) % len(spinnerFrames)
				wf.renderLocked()
				wf.mu.Unlock()
			}
		}
	}()
}

// Stop ends the workflow display and prints the final state of every task.
func (wf *Workflow) Stop() {
	wf.mu.Lock()
	if !wf.running {
		wf.mu.Unlock()
		return
	}
	wf.running = false
	wf.mu.Unlock()

	close(wf.stopChan)
	<-wf.doneChan

	wf.mu.Lock()
	defer wf.mu.Unlock()
	if wf.animate {
		wf.renderFinalLocked()
		return
	}
	for idx := range wf.tasks {
		if !wf.printed[idx] {
			fmt.Fprintln(wf.writer, renderTaskFinal(wf.tasks[idx]))
			wf.printed[idx] = true
		}
	}
}

// printFinishedLocked prints tasks that reached a final state, in order,
// stopping at the first one still pending or running.
func (wf *Workflow) printFinishedLocked() {
	for idx, task := range wf.tasks {
		if wf.printed[idx] {
			continue
		}
		if task.Status == TaskPending || task.Status == TaskRunning {
			return
		}
		fmt.Fprintln(wf.writer, renderTaskFinal(task))
		wf.printed[idx] = true
	}
}

func (wf *Workflow) clearLocked(b *strings.Builder) {
	if wf.lastRender == "" {
		return
	}
	lineCount := strings.Count(wf.lastRender, "\n") + 1
	for i := 0; i < lineCount; i++ {
		b.WriteString("\033[A\033[K") // move up and clear line
	}
}

func (wf *Workflow) renderLocked() {
	var b strings.Builder
	wf.clearLocked(&b)
	lines := make([]string, len(wf.tasks))
	for i, task := range wf.tasks {
		lines[i] = wf.renderTask(task)
	}
	wf.lastRender = strings.Join(lines, "\n")
	b.WriteString(wf.lastRender)
	b.WriteString("\n")
	fmt.Fprint(wf.writer, b.String())
}

func (wf *Workflow) renderFinalLocked() {
	var b strings.Builder
	wf.clearLocked(&b)
	for _, task := range wf.tasks {
		b.WriteString(renderTaskFinal(task))
		b.WriteString("\n")
	}
	wf.lastRender = ""
	fmt.Fprint(wf.writer, b.String())
}

func (wf *Workflow) renderTask(task *Task) string {
	var icon string
	var nameStyle, msgStyle styleWrapper

	switch task.Status {
	case TaskPending:
		icon = Muted.Render("○")
		nameStyle, msgStyle = StepPending, Dim
	case TaskRunning:
		icon = Secondary.Render(spinnerFrames[wf.spinnerIdx])
		nameStyle, msgStyle = StepRunning, Secondary
	case TaskDone:
		icon = GetCheckMark()
		nameStyle, msgStyle = StepComplete, Dim
	case TaskFailed:
		icon = GetCrossMark()
		nameStyle, msgStyle = StepFailed, Error
	case TaskSkipped:
		icon = Warning.Render("⊘")
		nameStyle, msgStyle = StepSkipped, Warning
	}

	line := fmt.Sprintf("%s %s", icon, nameStyle.Render(task.Name))
	if task.Message != "" {
		line += " " + msgStyle.Render(task.Message)
	}
	return line
}

func renderTaskFinal(task *Task) string {
	var icon string
	var nameStyle styleWrapper

	switch task.Status {
	case TaskPending, TaskRunning:
		icon = Muted.Render("○")
		nameStyle = StepPending
	case TaskDone:
		icon = GetCheckMark()
		nameStyle = StepComplete
	case TaskFailed:
		icon = GetCrossMark()
		nameStyle = StepFailed
	case TaskSkipped:
		icon = Warning.Render("⊘")
		nameStyle = StepSkipped
	}

	line := fmt.Sprintf("%s %s", icon, nameStyle.Render(task.Name))
	switch {
	case task.Status == TaskDone && task.Details != "":
		line += " " + Dim.Render("→ "+task.Details)
	case task.Status == TaskFailed && task.Message != "":
		line += " " + Error.Render("→ "+task.Message)
	case task.Status == TaskSkipped && task.Message != "":
		line += " " + Warning.Render("→ "+task.Message)
	}
	return line
}

// SimpleSpinner provides a simple inline spinner for short operations
type SimpleSpinner struct {
	writer     io.Writer
	message    string
	stopChan   chan struct{}
	doneChan   chan struct{}
	running    bool
	mu         sync.Mutex
	spinnerIdx int
}

// NewSimpleSpinner creates a new simple spinner
func NewSimpleSpinner(w io.Writer, message string) *SimpleSpinner {
	return &SimpleSpinner{
		writer:   w,
		message:  message,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the spinner animation. Nothing is drawn on non-terminals.
func (s *SimpleSpinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	if !IsTerminal(s.writer) {
		close(s.doneChan)
		return
	}

	go func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		defer close(s.doneChan)

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.mu.Lock()
				s.spinnerIdx = (s.spinnerIdx + 1) % len(spinnerFrames)
				frame := spinnerFrames[s.spinnerIdx]
				msg := s.message
				s.mu.Unlock()

				fmt.Fprintf(s.writer, "\r\033[K%s %s", Secondary.Render(frame), msg)
			}
		}
	}()
}

// Stop ends the spinner with a result
func (s *SimpleSpinner) Stop(success bool, finalMessage string) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopChan)
	<-s.doneChan

	if IsTerminal(s.writer) {
		fmt.Fprint(s.writer, "\r\033[K")
	}
	if success {
		fmt.Fprintf(s.writer, "%s %s\n", GetCheckMark(), finalMessage)
	} else {
		fmt.Fprintf(s.writer, "%s %s\n", GetCrossMark(), Error.Render(finalMessage))
	}
}

// UpdateMessage updates the spinner message
func (s *SimpleSpinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}
