package main

import (
	"errors"
	"testing"
)

type fakeViewer struct {
	err    error
	closed int
}

func (f *fakeViewer) Run() error { return f.err }
func (f *fakeViewer) Close() { f.closed++ }

func TestRunClosesViewer(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"clean exit", nil},
		{"run error", errors.New("lost GL context")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &fakeViewer{err: tt.err}
			if err := run(v); !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
			if v.closed != 1 {
				t.Errorf("expected Close once, got %d", v.closed)
			}
		})
	}
}
