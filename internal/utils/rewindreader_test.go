package utils

import (
	"io"
	"strings"
	"testing"
)

func TestRewindReader(t *testing.T) {
	r := RewindReader(strings.NewReader("world"), []byte("hello "))

	all, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("io.ReadAll error: %v", err)
	}
	if string(all) != "hello world" {
		t.Errorf("read %q, want %q", all, "hello world")
	}
}

func TestRewindReaderEmptyBuf(t *testing.T) {
	inner := strings.NewReader("payload")
	if r := RewindReader(inner, nil); r != inner {
		t.Error("empty replay buffer should return the reader unchanged")
	}
}
