package cli

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestPickByNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  []int
	}{
		{name: "single number", input: "2", limit: 5, want: []int{1}},
		{name: "comma list with spaces", input: "1, 3", limit: 5, want: []int{0, 2}},
		{name: "out of range ignored", input: "0,6,2", limit: 5, want: []int{1}},
		{name: "duplicates collapsed", input: "2,2,2", limit: 5, want: []int{1}},
		{name: "garbage ignored", input: "a,b", limit: 5, want: nil},
		{name: "empty input", input: "", limit: 5, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pickByNumber(tt.input, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("pickByNumber(%q, %d) = %v, want %v", tt.input, tt.limit, got, tt.want)
			}
		})
	}
}

func TestLineReader(t *testing.T) {
	r := NewLineReader(strings.NewReader("hello world\nsecond\n"))

	line, err := r.ReadLine(context.Background())
	if err != nil {
		t.Fatalf("ReadLine() error = %v", err)
	}
	if line != "hello world" {
		t.Errorf("ReadLine() = %q, want %q", line, "hello world")
	}
}

func TestLineReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// A reader that never produces input must not block past the context.
	r := NewLineReader(blockingReader{})
	_, err := r.ReadLine(ctx)
	if err == nil {
		t.Fatal("ReadLine() expected error on cancelled context")
	}
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}
