package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner animates a loading indicator while a network call is in flight.
// On a non-terminal writer it prints the message once instead.
type Spinner struct {
	out    io.Writer
	frames []string
	tty    bool

	mu      sync.Mutex
	msg     string
	running bool

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a spinner on stderr with the given message.
func NewSpinner(msg string) *Spinner {
	return NewSpinnerTo(os.Stderr, msg)
}

// NewSpinnerTo creates a spinner writing to w.
func NewSpinnerTo(w io.Writer, msg string) *Spinner {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Spinner{
		out:    w,
		frames: spinnerFrames,
		tty:    tty,
		msg:    msg,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins the spinner animation in a goroutine.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	if !s.tty {
		fmt.Fprintln(s.out, StyleMeta.Render("… "+s.message()))
		close(s.done)
		return
	}
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			frame := StyleNetwork.Render(s.frames[i%len(s.frames)])
			fmt.Fprintf(s.out, "\r%s  %s", frame, s.message())
			select {
			case <-s.stop:
				fmt.Fprintf(s.out, "\r%-70s\r", "")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Update replaces the message shown next to the spinner. On a non-terminal
// writer a running spinner prints the new message on its own line.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.msg == msg {
		return
	}
	s.msg = msg
	if !s.tty && s.running {
		fmt.Fprintln(s.out, StyleMeta.Render("… "+msg))
	}
}

// Stop halts the spinner and waits for it to finish. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

// StopWithMsg halts the spinner and prints a final message.
func (s *Spinner) StopWithMsg(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, msg)
}

func (s *Spinner) message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg
}
