package spanloom

import "testing"

func TestEvent_Duration(t *testing.T) {
	e := Event{Start: 100, End: 150}
	if got := e.Duration(); got != 50 {
		t.Fatalf("Duration() = %d, want 50", got)
	}
}

func TestEvent_ArgValue_FirstMatch(t *testing.T) {
	e := Event{
		ArgKeys:   []string{"frameId", "frameId", "other"},
		ArgValues: []string{"1", "2", "x"},
	}
	if got := e.ArgValue("frameId"); got != "1" {
		t.Fatalf("ArgValue(frameId) = %q, want %q", got, "1")
	}
}

func TestEvent_ArgValue_Missing(t *testing.T) {
	e := Event{ArgKeys: []string{"a"}, ArgValues: []string{"1"}}
	if got := e.ArgValue("b"); got != "" {
		t.Fatalf("ArgValue(missing) = %q, want empty", got)
	}
}

func TestEvent_Opcode(t *testing.T) {
	e := Event{ArgKeys: []string{"debug.OPCODE"}, ArgValues: []string{"2"}}
	if got := e.Opcode(); got != "2" {
		t.Fatalf("Opcode() = %q, want %q", got, "2")
	}
}
