package mdv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

// ExitState is the state of an ExitWaiter.
type ExitState uint8

const (
	// StateListening waits for an exit key.
	StateListening ExitState = iota
	// StateExited is final; the terminal has been restored.
	StateExited
)

func (s ExitState) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// ExitWaiter holds the terminal in raw mode until q, Q, Esc or Ctrl-C is
// pressed or the wait is cancelled.
type ExitWaiter struct {
	in      io.Reader
	fd      int
	makeRaw func(fd int) (*term.State, error)
	restore func(fd int, state *term.State) error

	mu    sync.Mutex
	state ExitState
}

// NewExitWaiter returns a waiter reading keys from in, normally os.Stdin.
func NewExitWaiter(in *os.File) *ExitWaiter {
	return &ExitWaiter{
		in:      in,
		fd:      int(in.Fd()),
		makeRaw: term.MakeRaw,
		restore: term.Restore,
	}
}

// State returns the current state.
func (w *ExitWaiter) State() ExitState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *ExitWaiter) setState(s ExitState) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Wait switches the terminal to raw mode and blocks until an exit key
// arrives, ctx is done, or reading fails. The previous terminal settings
// are restored exactly once on every path. End of input and cancellation
// are normal exits and return nil.
func (w *ExitWaiter) Wait(ctx context.Context) (err error) {
	saved, err := w.makeRaw(w.fd)
	if err != nil {
		w.setState(StateExited)
		return fmt.Errorf("raw mode: %w", err)
	}
	var once sync.Once
	restore := func() {
		once.Do(func() {
			w.setState(StateExited)
			if rerr := w.restore(w.fd, saved); rerr != nil && err == nil {
				err = fmt.Errorf("restore terminal: %w", rerr)
			}
		})
	}
	defer restore()
	w.setState(StateListening)

	keys := make(chan byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go w.readKeys(keys, readErr, done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case b := <-keys:
			if isExitKey(b) {
				return nil
			}
		case rerr := <-readErr:
			if errors.Is(rerr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read key: %w", rerr)
		}
	}
}

func (w *ExitWaiter) readKeys(keys chan<- byte, readErr chan<- error, done <-chan struct{}) {
	var buf [1]byte
	for {
		n, err := w.in.Read(buf[:])
		if n > 0 {
			select {
			case keys <- buf[0]:
			case <-done:
				return
			}
		}
		if err != nil {
			readErr <- err
			return
		}
	}
}

func isExitKey(b byte) bool {
	switch b {
	case 'q', 'Q', keyEscape, keyCtrlC:
		return true
	}
	return false
}
