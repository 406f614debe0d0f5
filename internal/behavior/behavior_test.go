package behavior

import (
	"math/rand/v2"
	"testing"

	"ethogram/internal/config"
	"ethogram/internal/labels"
	"ethogram/internal/resistant"
)

const (
	M = labels.Missing
	J = labels.Jump
	W = labels.Walk
	S = labels.Stationary
	F = labels.Freeze
)

func stream(layer labels.Layer, values ...labels.Base) labels.Stream {
	s := labels.NewStream(layer, len(values))
	copy(s.Values, values)
	return s
}

func TestPromoteStripsAndPromotes(t *testing.T) {
	layer2 := stream(labels.Layer2, F, F, W, M, J, F)
	res := stream(labels.Resistant, F, M, W, M, M, M)
	out := Promote(layer2, res)
	want := []string{"Resistant_Freeze", "Freeze", "Walk", "", "Jump", "Freeze"}
	got := out.Strings()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPublishDoesNotFill(t *testing.T) {
	p := &Publisher{maxGapFrames: 10}
	out := p.Publish(stream(labels.Layer2, W, M, W), stream(labels.Resistant, M, M, M))
	if out.At(1) != M {
		t.Fatalf("plain publish filled a gap: %v", out.Strings())
	}
}

func TestFillGapsGuards(t *testing.T) {
	cases := []struct {
		name string
		in   []labels.Base
		opts GapOptions
		want []labels.Base
	}{
		{
			name: "fills matching flanks",
			in:   []labels.Base{W, W, M, M, W, W},
			opts: GapOptions{MaxGapFrames: 2},
			want: []labels.Base{W, W, W, W, W, W},
		},
		{
			name: "different flanks",
			in:   []labels.Base{W, M, S},
			opts: GapOptions{MaxGapFrames: 5},
			want: []labels.Base{W, M, S},
		},
		{
			name: "gap too long",
			in:   []labels.Base{F, M, M, M, F},
			opts: GapOptions{MaxGapFrames: 2},
			want: []labels.Base{F, M, M, M, F},
		},
		{
			name: "short flank",
			in:   []labels.Base{S, S, S, M, S},
			opts: GapOptions{MaxGapFrames: 2, MinFlankFrames: 2},
			want: []labels.Base{S, S, S, M, S},
		},
		{
			name: "flank lengths predate earlier fills",
			in:   []labels.Base{W, W, M, W, M, W, W},
			opts: GapOptions{MaxGapFrames: 1, MinFlankFrames: 2},
			want: []labels.Base{W, W, M, W, M, W, W},
		},
		{
			name: "consecutive gaps with long flanks",
			in:   []labels.Base{W, W, M, W, W, M, W, W},
			opts: GapOptions{MaxGapFrames: 1, MinFlankFrames: 2},
			want: []labels.Base{W, W, W, W, W, W, W, W},
		},
		{
			name: "response window overlap",
			in:   []labels.Base{W, W, M, W, W},
			opts: GapOptions{MaxGapFrames: 2, Response: []resistant.Window{{Start: 2, End: 3}}},
			want: []labels.Base{W, W, M, W, W},
		},
		{
			name: "response window elsewhere",
			in:   []labels.Base{W, W, M, W, W},
			opts: GapOptions{MaxGapFrames: 2, Response: []resistant.Window{{Start: 3, End: 5}}},
			want: []labels.Base{W, W, W, W, W},
		},
		{
			name: "leading and trailing gaps untouched",
			in:   []labels.Base{M, W, M, W, M},
			opts: GapOptions{MaxGapFrames: 3},
			want: []labels.Base{M, W, W, W, M},
		},
		{
			name: "resistant freeze flank differs from freeze",
			in:   []labels.Base{labels.ResistantFreeze, M, F},
			opts: GapOptions{MaxGapFrames: 3},
			want: []labels.Base{labels.ResistantFreeze, M, F},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := stream(labels.Behavior, tc.in...)
			FillGaps(s, tc.opts)
			for i := range tc.want {
				if s.At(i) != tc.want[i] {
					t.Fatalf("frame %d = %s, want %s (got %v)", i, s.At(i), tc.want[i], s.Strings())
				}
			}
		})
	}
}

func TestFillGapsNeverSynthesizesAcrossFailedGuards(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 22))
	classes := []labels.Base{M, M, J, W, S, F}
	for trial := 0; trial < 200; trial++ {
		n := 5 + rng.IntN(60)
		before := labels.NewStream(labels.Behavior, n)
		for i := range before.Values {
			before.Values[i] = classes[rng.IntN(len(classes))]
		}
		opts := GapOptions{MaxGapFrames: rng.IntN(4)}
		if rng.IntN(2) == 0 {
			start := rng.IntN(n)
			opts.Response = []resistant.Window{{Start: start, End: start + 1 + rng.IntN(5)}}
		}
		after := before.Rebase(labels.Behavior)
		FillGaps(after, opts)

		bouts := before.Bouts()
		for k, gap := range bouts {
			if gap.Label != M {
				continue
			}
			internal := k > 0 && k < len(bouts)-1
			blocked := !internal ||
				bouts[k-1].Label != bouts[k+1].Label ||
				gap.Len() > opts.MaxGapFrames ||
				overlapsAny(gap, opts.Response)
			if !blocked {
				continue
			}
			for i := gap.Start; i < gap.End; i++ {
				if after.At(i) != M {
					t.Fatalf("trial %d: gap %+v filled despite failing guard: %v -> %v", trial, gap, before.Strings(), after.Strings())
				}
			}
		}
	}
}

func TestPublishDenoisedUsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Behavior.MaxGapSeconds = 2.0 / 60
	p := New(&cfg)

	layer2 := stream(labels.Layer2, W, W, M, M, W, W, F, M, F)
	res := stream(labels.Resistant, M, M, M, M, M, M, F, M, F)
	out, filled := p.PublishDenoised(layer2, res, []resistant.Window{{Start: 7, End: 8}})
	if filled != 2 {
		t.Fatalf("filled = %d, want 2", filled)
	}
	want := []string{"Walk", "Walk", "Walk", "Walk", "Walk", "Walk", "Resistant_Freeze", "", "Resistant_Freeze"}
	got := out.Strings()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d = %q, want %q", i, got[i], want[i])
		}
	}

	cfg.Behavior.ResponseGuard = false
	out, _ = New(&cfg).PublishDenoised(layer2, res, []resistant.Window{{Start: 7, End: 8}})
	if out.Label(7) != "Resistant_Freeze" {
		t.Fatalf("guard disabled: frame 7 = %q", out.Label(7))
	}
}
