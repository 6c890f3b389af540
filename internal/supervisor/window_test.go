package supervisor

import "testing"

func TestToValidUTF8ReplacesInvalidBytes(t *testing.T) {
	out := toValidUTF8([]byte{'a', 0xff, 'b'})
	if string(out) != "a�b" {
		t.Fatalf("toValidUTF8 = %q, want %q", out, "a�b")
	}
}

func TestToValidUTF8PassesThroughValidInput(t *testing.T) {
	in := []byte("hello world")
	out := toValidUTF8(in)
	if string(out) != "hello world" {
		t.Fatalf("toValidUTF8 = %q, want unchanged input", out)
	}
}

func TestAppendOutputTrimsToMaxBuffer(t *testing.T) {
	w := newIdleWindow("proj", "main", builtinDefaultCols, builtinDefaultRows)
	w.appendOutput([]byte("0123456789"), 4)
	if w.Buffer() != "6789" {
		t.Fatalf("buffer after trim = %q, want %q", w.Buffer(), "6789")
	}

	w.appendOutput([]byte("ab"), 4)
	if w.Buffer() != "89ab" {
		t.Fatalf("buffer after second trim = %q, want %q", w.Buffer(), "89ab")
	}
}

func TestWriteToPTYWithoutWriterErrors(t *testing.T) {
	w := newIdleWindow("proj", "main", builtinDefaultCols, builtinDefaultRows)
	if err := w.TypeKeys("hi"); err == nil {
		t.Fatalf("expected error writing to an idle window with no PTY")
	}
	if err := w.SendEnter(); err == nil {
		t.Fatalf("expected error sending enter to an idle window with no PTY")
	}
}

func TestStopOnIdleWindowIsNoop(t *testing.T) {
	w := newIdleWindow("proj", "main", builtinDefaultCols, builtinDefaultRows)
	stopped, err := w.Stop()
	if err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if stopped {
		t.Fatalf("Stop on idle window reported stopped=true")
	}
}

func TestClampDim(t *testing.T) {
	tests := []struct {
		v, def, want int
	}{
		{0, 140, 140},
		{1, 140, minWindowDim},
		{10000, 40, maxWindowDim},
		{80, 140, 80},
	}
	for _, tt := range tests {
		got := clampDim(tt.v, tt.def)
		if got != tt.want {
			t.Errorf("clampDim(%d, %d) = %d, want %d", tt.v, tt.def, got, tt.want)
		}
	}
}

func TestFrameUsesWindowDimsWhenNilRequested(t *testing.T) {
	w := newIdleWindow("proj", "main", builtinDefaultCols, builtinDefaultRows)
	w.appendOutput([]byte("hi"), defaultMaxBufferSize)

	frame := w.Frame(nil, nil)
	if frame.Cols != builtinDefaultCols || frame.Rows != builtinDefaultRows {
		t.Fatalf("frame dims = %dx%d, want %dx%d", frame.Cols, frame.Rows, builtinDefaultCols, builtinDefaultRows)
	}
}

func TestFrameHonorsRequestedDims(t *testing.T) {
	w := newIdleWindow("proj", "main", builtinDefaultCols, builtinDefaultRows)
	w.appendOutput([]byte("hi"), defaultMaxBufferSize)

	cols, rows := 30, 10
	frame := w.Frame(&cols, &rows)
	if frame.Cols != 30 || frame.Rows != 10 {
		t.Fatalf("frame dims = %dx%d, want 30x10", frame.Cols, frame.Rows)
	}
}
