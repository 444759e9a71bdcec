package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// statusSpinner animates a one-line status on a terminal and doubles as a
// resolve.Reporter for batch progress. On a non-terminal writer it draws
// nothing; only the closing success or error line is printed.
type statusSpinner struct {
	out    io.Writer
	tty    bool
	ctx    context.Context
	cancel context.CancelFunc

	once    sync.Once
	stopped chan struct{}

	mu      sync.Mutex
	msg     string
	width   int
	running bool
	halted  bool
}

// newSpinner draws on stderr when it is a terminal. The animation ends when
// ctx does.
func newSpinner(ctx context.Context, msg string) *statusSpinner {
	return newSpinnerTo(ctx, os.Stderr, isatty.IsTerminal(os.Stderr.Fd()), msg)
}

func newSpinnerTo(ctx context.Context, w io.Writer, tty bool, msg string) *statusSpinner {
	ctx, cancel := context.WithCancel(ctx)
	return &statusSpinner{
		out:     w,
		tty:     tty,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		msg:     msg,
	}
}

// Start begins the animation. It is a no-op off a terminal.
func (s *statusSpinner) Start() {
	if !s.tty {
		return
	}
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *statusSpinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s %s", spinnerStyle.Render(frame), StyleDim.Render(s.msg))
	s.width = max(s.width, len(s.msg))
}

func (s *statusSpinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tty {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width+4))
	}
}

// Stop ends the animation and clears the line. Repeated calls are no-ops.
func (s *statusSpinner) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.halted = true
		running := s.running
		s.mu.Unlock()
		s.cancel()
		if running {
			<-s.stopped
		}
		s.clear()
	})
}

// Succeed stops the spinner and prints msg as a success line.
func (s *statusSpinner) Succeed(msg string) {
	s.Stop()
	printSuccess("%s", msg)
}

// Fail stops the spinner and prints msg as an error line.
func (s *statusSpinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}

// Cancelled reports whether the parent context ended before Stop.
func (s *statusSpinner) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.halted && s.ctx.Err() != nil
}

func (s *statusSpinner) SetMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
}

func (s *statusSpinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg
}

// Update implements resolve.Reporter.
func (s *statusSpinner) Update(done, total int) {
	s.SetMessage(fmt.Sprintf("resolving dependents done(%d/%d)", done, total))
}

// Finish implements resolve.Reporter.
func (s *statusSpinner) Finish(total int) {
	s.SetMessage(fmt.Sprintf("resolved %d dependents", total))
}
