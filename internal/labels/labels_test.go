package labels

import "testing"

func TestFormatAndParseRoundTripPerLayer(t *testing.T) {
	cases := []struct {
		layer Layer
		base  Base
		want  string
	}{
		{Layer1, Jump, "Layer1_Jump"},
		{Layer2, Freeze, "Layer2_Freeze"},
		{Resistant, Walk, "Resistant_Walk"},
		{Resistant, Freeze, "Resistant_Freeze"},
		{Behavior, Stationary, "Stationary"},
		{Behavior, ResistantFreeze, "Resistant_Freeze"},
		{Layer2, Missing, ""},
	}
	for _, tc := range cases {
		got := tc.layer.Format(tc.base)
		if got != tc.want {
			t.Fatalf("%s.Format(%s) = %q, want %q", tc.layer, tc.base, got, tc.want)
		}
		parsed, err := Parse(tc.layer, got)
		if err != nil {
			t.Fatalf("Parse(%s, %q): %v", tc.layer, got, err)
		}
		if parsed != tc.base {
			t.Fatalf("Parse(%s, %q) = %s, want %s", tc.layer, got, parsed, tc.base)
		}
	}
}

func TestParseRejectsForeignNamespace(t *testing.T) {
	if _, err := Parse(Layer2, "Layer1_Walk"); err == nil {
		t.Fatal("expected Layer1 label to be rejected in Layer2 namespace")
	}
	if _, err := Parse(Layer1, "Walk"); err == nil {
		t.Fatal("expected bare label to be rejected in Layer1 namespace")
	}
	if _, err := Parse(Resistant, "Resistant_Jump"); err == nil {
		t.Fatal("expected Resistant_Jump to be rejected")
	}
}

func TestResistantFreezeIsBehaviorOnly(t *testing.T) {
	if Layer2.Allows(ResistantFreeze) || Resistant.Allows(ResistantFreeze) {
		t.Fatal("ResistantFreeze must only be allowed in the Behavior layer")
	}
	// The Resistant layer renders Freeze with the same text as the promoted
	// Behavior label; the layer decides which base is meant.
	b, err := Parse(Resistant, "Resistant_Freeze")
	if err != nil || b != Freeze {
		t.Fatalf("Parse(Resistant) = %s, %v; want Freeze", b, err)
	}
	b, err = Parse(Behavior, "Resistant_Freeze")
	if err != nil || b != ResistantFreeze {
		t.Fatalf("Parse(Behavior) = %s, %v; want ResistantFreeze", b, err)
	}
}

func TestStreamSetPanicsOutsideVocabulary(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	s := NewStream(Layer2, 1)
	s.Set(0, ResistantFreeze)
}

func TestBouts(t *testing.T) {
	s := Stream{Layer: Layer2, Values: []Base{Walk, Walk, Missing, Freeze, Freeze, Freeze, Walk}}
	bouts := s.Bouts()
	want := []Bout{
		{0, 2, Walk},
		{2, 3, Missing},
		{3, 6, Freeze},
		{6, 7, Walk},
	}
	if len(bouts) != len(want) {
		t.Fatalf("got %d bouts, want %d: %+v", len(bouts), len(want), bouts)
	}
	for i := range want {
		if bouts[i] != want[i] {
			t.Fatalf("bout %d = %+v, want %+v", i, bouts[i], want[i])
		}
	}
	if got := len(s.BoutsOf(Walk)); got != 2 {
		t.Fatalf("expected 2 walk bouts, got %d", got)
	}
	if got := (Stream{Layer: Layer1}).Bouts(); got != nil {
		t.Fatalf("expected nil bouts for empty stream, got %+v", got)
	}
}

func TestMissingFraction(t *testing.T) {
	s := Stream{Layer: Behavior, Values: []Base{Walk, Missing, Missing, Freeze}}
	if got := s.MissingFraction(); got != 0.5 {
		t.Fatalf("MissingFraction = %v, want 0.5", got)
	}
}

func TestParseBase(t *testing.T) {
	if b, err := ParseBase(" Stationary "); err != nil || b != Stationary {
		t.Fatalf("ParseBase = %s, %v", b, err)
	}
	if _, err := ParseBase("resistant_freeze"); err == nil {
		t.Fatal("expected error for promoted label")
	}
}
