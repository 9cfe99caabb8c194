package llm

import (
	"strings"
	"testing"
)

func TestSSEDecoder(t *testing.T) {
	sseData := "data: Hello\n\ndata: World\n\n"
	decoder := NewSSEDecoder(strings.NewReader(sseData))

	if !decoder.Next() {
		t.Fatal("Expected first event")
	}
	if string(decoder.Data()) != "Hello" {
		t.Errorf("Expected data 'Hello', got '%s'", string(decoder.Data()))
	}

	if !decoder.Next() {
		t.Fatal("Expected second event")
	}
	if string(decoder.Data()) != "World" {
		t.Errorf("Expected data 'World', got '%s'", string(decoder.Data()))
	}

	if decoder.Next() {
		t.Error("Expected no more events")
	}
}

func TestSSEDecoderSkipsCommentsAndEventNames(t *testing.T) {
	sseData := ": keep-alive\n\nevent: message\ndata: payload\n\n"
	decoder := NewSSEDecoder(strings.NewReader(sseData))

	if !decoder.Next() {
		t.Fatal("Expected an event")
	}
	if string(decoder.Data()) != "payload" {
		t.Errorf("Expected data 'payload', got '%s'", string(decoder.Data()))
	}
	if decoder.Next() {
		t.Error("Expected no more events")
	}
}

func TestSSEDecoderFlushesUnterminatedEvent(t *testing.T) {
	// A stream cut off mid-event still surfaces the data seen so far.
	decoder := NewSSEDecoder(strings.NewReader("data: partial"))

	if !decoder.Next() {
		t.Fatal("Expected the trailing event")
	}
	if string(decoder.Data()) != "partial" {
		t.Errorf("Expected data 'partial', got '%s'", string(decoder.Data()))
	}
}
