package supervisor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/creack/pty"

	"ptysidecar/internal/vt"
)

// Window is one PTY-backed child process, addressed by session+window name.
// All fields are guarded by mu; callers outside this package only ever see
// a Snapshot copy.
type Window struct {
	mu sync.Mutex

	snapshot Snapshot
	buffer   []byte

	ptmx *os.File
	cmd  *exec.Cmd
}

func newIdleWindow(sessionName, windowName string, cols, rows int) *Window {
	return &Window{
		snapshot: Snapshot{
			SessionName: sessionName,
			WindowName:  windowName,
			Status:      StatusIdle,
			Cols:        cols,
			Rows:        rows,
		},
	}
}

// Snapshot returns a copy of the window's current public state.
func (w *Window) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot
}

func nowUnix() int64 { return time.Now().Unix() }

func clampDim(v, def int) int {
	if v == 0 {
		return def
	}
	if v < minWindowDim {
		return minWindowDim
	}
	if v > maxWindowDim {
		return maxWindowDim
	}
	return v
}

// StartWindow spawns (or no-ops on an already-running) window's child
// process inside a PTY sized to its current cols/rows. The session's env
// overlay is read before the spawn and applied after TERM/COLORTERM/
// COLUMNS/LINES, so an overlay entry with one of those names wins.
func (r *Registry) StartWindow(sessionName, windowName, command string) error {
	env := r.sessionEnv(sessionName)
	w := r.getOrCreateWindow(sessionName, windowName)

	cols, rows, shouldSpawn := w.beginStart()
	if !shouldSpawn {
		return nil
	}

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = r.defaultShell
	}

	cmd := exec.Command(shell, "-lc", command)
	if wd, err := os.Getwd(); err == nil {
		cmd.Dir = wd
	}

	term := os.Getenv("TERM")
	if term == "" {
		term = "xterm-256color"
	}
	colorterm := os.Getenv("COLORTERM")
	if colorterm == "" {
		colorterm = "truecolor"
	}

	cmd.Env = append(os.Environ(),
		"TERM="+term,
		"COLORTERM="+colorterm,
		fmt.Sprintf("COLUMNS=%d", cols),
		fmt.Sprintf("LINES=%d", rows),
	)
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return fmt.Errorf("spawn failed: %w", err)
	}

	w.finishStart(cmd, ptmx)

	maxBuffer := r.maxBuffer()
	go w.readLoop(ptmx, maxBuffer)

	return nil
}

// beginStart transitions an idle/exited/error window to starting, resetting
// its run-state fields and buffer. If the window is already running it
// reports shouldSpawn=false so StartWindow is a no-op, matching the
// original's idempotent restart guard.
func (w *Window) beginStart() (cols, rows int, shouldSpawn bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cmd != nil && w.snapshot.Status == StatusRunning {
		return w.snapshot.Cols, w.snapshot.Rows, false
	}

	started := nowUnix()
	w.snapshot.Status = StatusStarting
	w.snapshot.StartedAt = &started
	w.snapshot.ExitedAt = nil
	w.snapshot.ExitCode = nil
	w.snapshot.Signal = nil
	w.buffer = w.buffer[:0]

	return w.snapshot.Cols, w.snapshot.Rows, true
}

func (w *Window) finishStart(cmd *exec.Cmd, ptmx *os.File) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pid := 0
	if cmd.Process != nil {
		pid = cmd.Process.Pid
	}

	w.snapshot.Status = StatusRunning
	w.snapshot.PID = pid
	w.cmd = cmd
	w.ptmx = ptmx
	w.buffer = append(w.buffer, []byte(fmt.Sprintf("[runtime] process started (pid=%d)\n", pid))...)
}

// readLoop drains the PTY master into the window's bounded buffer until EOF
// or a read error, then marks the window exited/error. It never reaps the
// child's exit code; the original prototype doesn't either.
func (w *Window) readLoop(ptmx *os.File, maxBuffer int) {
	buf := make([]byte, 4096)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			w.appendOutput(buf[:n], maxBuffer)
		}
		if err != nil {
			w.mu.Lock()
			if err == io.EOF {
				if w.snapshot.Status == StatusRunning || w.snapshot.Status == StatusStarting {
					w.snapshot.Status = StatusExited
					exited := nowUnix()
					w.snapshot.ExitedAt = &exited
				}
			} else {
				w.snapshot.Status = StatusError
				exited := nowUnix()
				w.snapshot.ExitedAt = &exited
			}
			w.mu.Unlock()
			return
		}
	}
}

func (w *Window) appendOutput(chunk []byte, maxBuffer int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buffer = append(w.buffer, toValidUTF8(chunk)...)
	if len(w.buffer) > maxBuffer {
		keep := len(w.buffer) - maxBuffer
		w.buffer = append([]byte(nil), w.buffer[keep:]...)
	}
}

// toValidUTF8 replaces invalid byte sequences with U+FFFD, matching the
// original's lossy per-chunk decoding (no cross-read buffering of partial
// multi-byte sequences).
func toValidUTF8(b []byte) []byte {
	if utf8.Valid(b) {
		return b
	}
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		out = utf8.AppendRune(out, r)
		b = b[size:]
	}
	return out
}

// TypeKeys writes literal keystrokes to the window's PTY master.
func (w *Window) TypeKeys(keys string) error {
	return w.writeToPTY([]byte(keys), "write keys failed")
}

// SendEnter writes a carriage return to the window's PTY master.
func (w *Window) SendEnter() error {
	return w.writeToPTY([]byte("\r"), "write enter failed")
}

func (w *Window) writeToPTY(data []byte, failMsg string) error {
	w.mu.Lock()
	ptmx := w.ptmx
	w.mu.Unlock()

	if ptmx == nil {
		return fmt.Errorf("window writer unavailable")
	}
	if _, err := ptmx.Write(data); err != nil {
		return fmt.Errorf("%s: %w", failMsg, err)
	}
	return nil
}

// Resize updates the window's recorded cols/rows and, if a PTY is live,
// propagates the new size to it.
func (w *Window) Resize(cols, rows int) {
	cols = clampDim(cols, builtinDefaultCols)
	rows = clampDim(rows, builtinDefaultRows)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ptmx != nil {
		_ = pty.Setsize(w.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	}
	w.snapshot.Cols = cols
	w.snapshot.Rows = rows
}

// Buffer returns a copy of the window's accumulated raw output.
func (w *Window) Buffer() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.buffer)
}

// Frame renders the window's current buffer at the given dimensions,
// falling back to the window's own recorded cols/rows when either is nil.
func (w *Window) Frame(cols, rows *int) vt.Frame {
	w.mu.Lock()
	c := w.snapshot.Cols
	r := w.snapshot.Rows
	if cols != nil {
		c = *cols
	}
	if rows != nil {
		r = *rows
	}
	buf := append([]byte(nil), w.buffer...)
	w.mu.Unlock()

	return vt.Build(buf, c, r)
}

// Stop kills the window's child process, if any, and tears down its PTY
// handles. It reports whether a running process was actually stopped.
func (w *Window) Stop() (bool, error) {
	w.mu.Lock()
	cmd := w.cmd
	ptmx := w.ptmx
	w.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return false, nil
	}

	if err := cmd.Process.Kill(); err != nil {
		return false, fmt.Errorf("kill failed: %w", err)
	}

	w.mu.Lock()
	w.snapshot.Status = StatusExited
	exited := nowUnix()
	w.snapshot.ExitedAt = &exited
	sig := "SIGTERM"
	w.snapshot.Signal = &sig
	w.cmd = nil
	w.ptmx = nil
	w.mu.Unlock()

	if ptmx != nil {
		_ = ptmx.Close()
	}
	return true, nil
}

// forceStop is Stop without surfacing an error, used by Dispose which kills
// everything on a best-effort basis.
func (w *Window) forceStop() {
	w.mu.Lock()
	cmd := w.cmd
	ptmx := w.ptmx
	w.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	if ptmx != nil {
		_ = ptmx.Close()
	}

	w.mu.Lock()
	w.cmd = nil
	w.ptmx = nil
	w.snapshot.Status = StatusExited
	exited := nowUnix()
	w.snapshot.ExitedAt = &exited
	w.mu.Unlock()
}

// StopWindow looks up session/window and stops it, reporting whether a
// running process was found and stopped.
func (r *Registry) StopWindow(sessionName, windowName string) (bool, error) {
	w, err := r.lookupWindow(sessionName, windowName)
	if err != nil {
		return false, err
	}
	return w.Stop()
}

// GetWindowBuffer returns the raw accumulated output for session/window.
func (r *Registry) GetWindowBuffer(sessionName, windowName string) (string, error) {
	w, err := r.lookupWindow(sessionName, windowName)
	if err != nil {
		return "", err
	}
	return w.Buffer(), nil
}

// GetWindowFrame renders session/window's current buffer into a VT frame.
func (r *Registry) GetWindowFrame(sessionName, windowName string, cols, rows *int) (vt.Frame, error) {
	w, err := r.lookupWindow(sessionName, windowName)
	if err != nil {
		return vt.Frame{}, err
	}
	return w.Frame(cols, rows), nil
}

// TypeKeys writes keys to session/window's PTY.
func (r *Registry) TypeKeys(sessionName, windowName, keys string) error {
	w, err := r.lookupWindow(sessionName, windowName)
	if err != nil {
		return err
	}
	return w.TypeKeys(keys)
}

// SendEnter writes a carriage return to session/window's PTY.
func (r *Registry) SendEnter(sessionName, windowName string) error {
	w, err := r.lookupWindow(sessionName, windowName)
	if err != nil {
		return err
	}
	return w.SendEnter()
}

// ResizeWindow updates session/window's recorded and live PTY size.
func (r *Registry) ResizeWindow(sessionName, windowName string, cols, rows int) error {
	w, err := r.lookupWindow(sessionName, windowName)
	if err != nil {
		return err
	}
	w.Resize(cols, rows)
	return nil
}
