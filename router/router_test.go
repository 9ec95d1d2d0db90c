package router

import (
	"bytes"
	"testing"
)

func TestUnboundSinkDropsOutput(t *testing.T) {
	r := New()
	r.Printf(WTrace, "hello %d", 1) // must not panic
}

func TestBindRoutesToWriter(t *testing.T) {
	r := New()
	var buf bytes.Buffer
	r.Bind(WDialog, &buf)

	if !r.IsBound(WDialog) {
		t.Fatalf("expected WDIALOG to be bound")
	}
	r.Println(WDialog, "hi")
	if buf.String() != "hi\n" {
		t.Fatalf("buf = %q, want %q", buf.String(), "hi\n")
	}
}

func TestUnbindStopsRouting(t *testing.T) {
	r := New()
	var buf bytes.Buffer
	r.Bind(WError, &buf)
	r.Unbind(WError)
	r.Println(WError, "should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected no output after Unbind, got %q", buf.String())
	}
}
