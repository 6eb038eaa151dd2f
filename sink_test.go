package spanloom

import "testing"

func TestSink_AppendThenAt(t *testing.T) {
	s := NewSink()
	s.Append(Span{Name: "A"})
	s.Append(Span{Name: "B"})
	s.Finalize()

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	got, err := s.At(1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "B" {
		t.Fatalf("At(1).Name = %q, want B", got.Name)
	}
}

func TestSink_At_OutOfRange(t *testing.T) {
	s := NewSink()
	s.Finalize()
	if _, err := s.At(0); err == nil {
		t.Fatalf("expected error for out-of-range index")
	}
}

func TestSink_Append_AfterFinalize_Ignored(t *testing.T) {
	s := NewSink()
	s.Finalize()
	s.Append(Span{Name: "late"})
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 (append after finalize should be a no-op)", s.Len())
	}
}
