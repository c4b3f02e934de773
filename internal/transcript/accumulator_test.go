package transcript

import "testing"

func TestAccumulator_InterimThenFinal(t *testing.T) {
	acc := NewAccumulator()

	snap := acc.ApplyRecognitionEvent(nil, "hel")
	if snap.Display != "hel" {
		t.Errorf("Expected display 'hel', got '%s'", snap.Display)
	}
	if snap.HasNewFinal {
		t.Error("Expected no new final after interim-only event")
	}
	if !snap.Interim {
		t.Error("Expected snapshot to be marked interim")
	}

	snap = acc.ApplyRecognitionEvent([]string{"hello"}, "")
	if snap.Display != "hello " {
		t.Errorf("Expected display 'hello ', got '%s'", snap.Display)
	}
	if !snap.HasNewFinal {
		t.Error("Expected new final")
	}
	if snap.NewFinal != "hello" {
		t.Errorf("Expected new final 'hello', got '%s'", snap.NewFinal)
	}
	if acc.Interim() != "" {
		t.Errorf("Expected interim to be discarded, got '%s'", acc.Interim())
	}
}

func TestAccumulator_FinalsInArrivalOrder(t *testing.T) {
	acc := NewAccumulator()

	events := []struct {
		finals  []string
		interim string
	}{
		{nil, "good"},
		{nil, "good morn"},
		{[]string{"good morning"}, "how"},
		{nil, "how are"},
		{[]string{"how are you", "doctor"}, ""},
		{nil, "I feel"},
		{[]string{"I feel sick"}, "since"},
	}

	for _, ev := range events {
		acc.ApplyRecognitionEvent(ev.finals, ev.interim)
	}

	expected := "good morning how are you doctor I feel sick "
	if acc.Finalized() != expected {
		t.Errorf("Expected finalized '%s', got '%s'", expected, acc.Finalized())
	}
	if acc.Interim() != "since" {
		t.Errorf("Expected interim 'since', got '%s'", acc.Interim())
	}
}

func TestAccumulator_InterimReplacedNotAppended(t *testing.T) {
	acc := NewAccumulator()

	acc.ApplyRecognitionEvent(nil, "a")
	acc.ApplyRecognitionEvent(nil, "ab")
	snap := acc.ApplyRecognitionEvent(nil, "abc")

	if snap.Display != "abc" {
		t.Errorf("Expected display 'abc', got '%s'", snap.Display)
	}
	if acc.Finalized() != "" {
		t.Errorf("Expected empty finalized, got '%s'", acc.Finalized())
	}
}

func TestAccumulator_MultipleFinalsDelta(t *testing.T) {
	acc := NewAccumulator()
	acc.ApplyRecognitionEvent([]string{"first"}, "")

	snap := acc.ApplyRecognitionEvent([]string{"second", "third"}, "fo")
	if snap.NewFinal != "second third" {
		t.Errorf("Expected delta 'second third', got '%s'", snap.NewFinal)
	}
	if snap.Display != "first second third fo" {
		t.Errorf("Expected display 'first second third fo', got '%s'", snap.Display)
	}
}

func TestAccumulator_EmptyEvent(t *testing.T) {
	acc := NewAccumulator()
	acc.ApplyRecognitionEvent([]string{"hi"}, "")

	snap := acc.ApplyRecognitionEvent(nil, "")
	if snap.HasNewFinal {
		t.Error("Expected no new final on empty event")
	}
	if snap.Display != "hi " {
		t.Errorf("Expected display 'hi ', got '%s'", snap.Display)
	}
}

func TestAccumulator_Clear(t *testing.T) {
	acc := NewAccumulator()
	acc.ApplyRecognitionEvent([]string{"hello"}, "wor")

	acc.Clear()

	if acc.Finalized() != "" {
		t.Errorf("Expected empty finalized after clear, got '%s'", acc.Finalized())
	}
	if acc.Interim() != "" {
		t.Errorf("Expected empty interim after clear, got '%s'", acc.Interim())
	}
	if !acc.IsEmpty() {
		t.Error("Expected accumulator to be empty after clear")
	}

	snap := acc.ApplyRecognitionEvent([]string{"again"}, "")
	if snap.Display != "again " {
		t.Errorf("Expected display 'again ', got '%s'", snap.Display)
	}
}
