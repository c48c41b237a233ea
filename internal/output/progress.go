package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Stages reports progress through a fixed list of named steps, such as the
// strategies of one mining request.
// Example: [==========>         ] 2/3 apriori
type Stages struct {
	mu      sync.Mutex
	names   []string
	done    int
	width   int
	writer  io.Writer
	started time.Time
}

// NewStages creates a progress display for the given step names.
func NewStages(names []string) *Stages {
	return &Stages{
		names:   names,
		width:   20,
		writer:  os.Stdout,
		started: time.Now(),
	}
}

// SetWriter sets the output writer (useful for testing).
func (p *Stages) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

// Done marks one step finished and redraws. ok=false marks it failed.
func (p *Stages) Done(name string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done < len(p.names) {
		p.done++
	}

	status := colorize(colorGreen, "✓")
	if !ok {
		status = colorize(colorRed, "✗")
	}

	if writerIsTTY(p.writer) {
		fmt.Fprintf(p.writer, "\r%s %d/%d %s %s", p.bar(), p.done, len(p.names), status, name)
		if p.done == len(p.names) {
			fmt.Fprintln(p.writer)
		}
		return
	}
	// Non-TTY: one line per step keeps logs readable.
	fmt.Fprintf(p.writer, "%s %d/%d %s %s\n", p.bar(), p.done, len(p.names), status, name)
}

// Elapsed returns the time since the display was created.
func (p *Stages) Elapsed() time.Duration {
	return time.Since(p.started)
}

// bar must be called with the lock held.
func (p *Stages) bar() string {
	filled := 0
	if len(p.names) > 0 {
		filled = p.done * p.width / len(p.names)
	}
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < p.width; i++ {
		switch {
		case i < filled-1:
			b.WriteByte('=')
		case i == filled-1:
			b.WriteByte('>')
		default:
			b.WriteByte(' ')
		}
	}
	b.WriteByte(']')
	return b.String()
}

// Spinner shows an animated indicator while a single long step runs.
// Example: /  Mining grocery (12s remaining)
type Spinner struct {
	mu       sync.Mutex
	message  string
	frames   []string
	writer   io.Writer
	running  bool
	stop     chan struct{}
	finished chan struct{}
	timeout  time.Duration
	timed    bool
	started  time.Time
}

// NewSpinner creates a stopped spinner. Call WithTimeout before Start to
// show a countdown.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		frames:  []string{"|", "/", "-", "\\"},
		writer:  os.Stdout,
	}
}

// WithTimeout shows remaining time when timeout > 0 and elapsed time
// otherwise. It returns the spinner for chaining.
func (s *Spinner) WithTimeout(timeout time.Duration) *Spinner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = timeout
	s.timed = true
	return s
}

// SetWriter sets the output writer (useful for testing).
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the animation. On a non-TTY writer the message is printed
// once and no goroutine is started.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.started = time.Now()

	if !writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.stop = make(chan struct{})
	s.finished = make(chan struct{})
	go s.spin()
}

func (s *Spinner) spin() {
	defer close(s.finished)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.writer, "\r%s  %s", s.frames[frame%len(s.frames)], s.text())
			s.mu.Unlock()
		}
	}
}

// text must be called with the lock held.
func (s *Spinner) text() string {
	if !s.timed {
		return s.message
	}
	elapsed := time.Since(s.started)
	if s.timeout > 0 {
		remaining := s.timeout - elapsed
		if remaining < 0 {
			remaining = 0
		}
		return fmt.Sprintf("%s (%ds remaining)", s.message, int(remaining.Seconds()))
	}
	return fmt.Sprintf("%s (%ds elapsed)", s.message, int(elapsed.Seconds()))
}

// UpdateMessage replaces the message while the spinner runs.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Running reports whether Start was called without a matching Stop.
func (s *Spinner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop ends the animation and clears the line. It is safe to call twice.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, finished := s.stop, s.finished
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-finished

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.text())+4))
}

// StopWithMessage stops the spinner and prints a final line.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.writer, message)
}
