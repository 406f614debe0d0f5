package qc_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"ethogram/internal/frames"
	"ethogram/internal/labels"
	"ethogram/internal/qc"
	"ethogram/internal/testsupport"
)

func loadSession(t *testing.T, s testsupport.Session) *frames.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fly.csv")
	testsupport.WriteTelemetry(t, path, s)
	table, err := frames.ReadCSVFile(path)
	if err != nil {
		t.Fatalf("read telemetry: %v", err)
	}
	return table
}

func TestPreflightPassesCleanSession(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithExpectedTrials(1, 10))
	gate := qc.NewGate(cfg)
	v := gate.Preflight(qc.Input{Table: loadSession(t, testsupport.DefaultSession())})
	if v.State != qc.StatePassed || v.Err() != nil {
		t.Fatalf("expected pass, got %s %v", v.State, v.Failure)
	}
}

func TestPreflightStopsAtFirstFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithExpectedTrials(2, 10))
	s := testsupport.DefaultSession()
	s.Centroid = func(i int) (float64, float64) { return math.NaN(), math.NaN() }

	v := qc.NewGate(cfg).Preflight(qc.Input{Table: loadSession(t, s)})
	if v.State != qc.StateFailed || v.Failure == nil {
		t.Fatalf("expected failure, got %s", v.State)
	}
	if v.Failure.Code != qc.CodeStimulusCountMismatch {
		t.Fatalf("code = %s, want %s", v.Failure.Code, qc.CodeStimulusCountMismatch)
	}
	if got := v.Failure.MetricsJSON(); got != `{"expected":2,"observed":1,"onsets":[30],"stimulus":"looming"}` {
		t.Fatalf("metrics = %s", got)
	}
}

func TestPreflightChecks(t *testing.T) {
	cases := []struct {
		name    string
		opts    []testsupport.ConfigOption
		session func(*testsupport.Session)
		pose    bool
		poseLen int
		want    qc.Code
	}{
		{
			name: "unknown column",
			session: func(s *testsupport.Session) {
				s.Extra = map[string]func(int) float64{"mystery": func(int) float64 { return 1 }}
			},
			want: qc.CodeSchemaInvalid,
		},
		{
			name:    "motion out of domain",
			session: func(s *testsupport.Session) { s.Motion = func(int) float64 { return 2 } },
			want:    qc.CodeSchemaInvalid,
		},
		{
			name:    "negative speed",
			session: func(s *testsupport.Session) { s.Speed = func(int) float64 { return -1 } },
			want:    qc.CodeSchemaInvalid,
		},
		{
			name:    "pulse too long",
			opts:    []testsupport.ConfigOption{testsupport.WithExpectedTrials(1, 5)},
			session: func(*testsupport.Session) {},
			want:    qc.CodeStimulusDurationMismatch,
		},
		{
			name:    "onset too early",
			session: func(s *testsupport.Session) { s.Onsets = []int{10} },
			want:    qc.CodeTimelineMisaligned,
		},
		{
			name:    "tail too short",
			session: func(s *testsupport.Session) { s.Onsets = []int{60} },
			want:    qc.CodeTimelineMisaligned,
		},
		{
			name:    "no onset",
			session: func(s *testsupport.Session) { s.Onsets = nil },
			want:    qc.CodeTimelineMisaligned,
		},
		{
			name: "centroid missing",
			session: func(s *testsupport.Session) {
				s.Centroid = func(i int) (float64, float64) {
					if i%5 == 0 {
						return math.NaN(), 0
					}
					return float64(i), 0
				}
			},
			want: qc.CodeCentroidNaNExceeded,
		},
		{
			name:    "pose required but absent",
			opts:    []testsupport.ConfigOption{testsupport.WithPoseRequired(true)},
			session: func(*testsupport.Session) {},
			want:    qc.CodePoseMissing,
		},
		{
			name:    "pose length mismatch",
			opts:    []testsupport.ConfigOption{testsupport.WithPoseRequired(true)},
			session: func(*testsupport.Session) {},
			pose:    true,
			poseLen: 99,
			want:    qc.CodePoseLengthMismatch,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, tc.opts...)
			s := testsupport.DefaultSession()
			tc.session(&s)
			in := qc.Input{Table: loadSession(t, s), PosePath: "fly_pose.csv"}
			if tc.pose {
				path := filepath.Join(t.TempDir(), "fly_pose.csv")
				testsupport.WritePose(t, path, tc.poseLen, nil)
				pose, err := frames.ReadCSVFile(path)
				if err != nil {
					t.Fatalf("read pose: %v", err)
				}
				in.Pose = pose
			}
			v := qc.NewGate(cfg).Preflight(in)
			if v.Failure == nil {
				t.Fatalf("expected %s, session passed", tc.want)
			}
			if v.Failure.Code != tc.want {
				t.Fatalf("code = %s (%s), want %s", v.Failure.Code, v.Failure.MetricsJSON(), tc.want)
			}
			if !v.Failure.Fatal() {
				t.Fatalf("%s should be fatal", v.Failure.Code)
			}
		})
	}
}

func TestPreflightRejectsEmptyAndMalformed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	gate := qc.NewGate(cfg)

	v := gate.Preflight(qc.Input{Table: frames.NewTable(0)})
	if v.Failure == nil || v.Failure.Code != qc.CodeSchemaInvalid {
		t.Fatalf("empty table: %+v", v)
	}

	table := loadSession(t, testsupport.DefaultSession())
	table.Malformed["speed"] = 3
	v = gate.Preflight(qc.Input{Table: table})
	if v.Failure == nil || v.Failure.Code != qc.CodeSchemaInvalid {
		t.Fatalf("malformed cells: %+v", v)
	}
}

func scoredTable(n int, fill func(i int) labels.Base) *frames.Table {
	t := frames.NewTable(n)
	s := labels.NewStream(labels.Behavior, n)
	for i := range s.Values {
		s.Values[i] = fill(i)
	}
	t.SetLabels(frames.ColBehaviorDenoised, s)
	return t
}

func TestPostscoreCleanSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	res := qc.NewGate(cfg).Postscore(qc.Scored{
		Table:      scoredTable(70, func(int) labels.Base { return labels.Walk }),
		FirstOnset: testsupport.BaselineFrames,
	})
	if !res.Clean || len(res.Failures) != 0 {
		t.Fatalf("expected clean, got %v", res.Codes())
	}
}

func TestPostscoreReportsEveryFlag(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPoseRequired(true))
	table := scoredTable(70, func(i int) labels.Base {
		if i%2 == 0 {
			return labels.Missing
		}
		return labels.Freeze
	})
	posePath := filepath.Join(t.TempDir(), "pose.csv")
	testsupport.WritePose(t, posePath, 70, func(i int) bool { return i%2 == 0 })
	pose, err := frames.ReadCSVFile(posePath)
	if err != nil {
		t.Fatalf("read pose: %v", err)
	}

	res := qc.NewGate(cfg).Postscore(qc.Scored{Table: table, FirstOnset: testsupport.BaselineFrames, Pose: pose})
	if res.Clean {
		t.Fatal("expected flags")
	}
	want := []qc.Code{qc.CodeBehaviorNaNExceeded, qc.CodeLowBaselineExploration, qc.CodePoseViewNaNExceeded}
	got := res.Codes()
	if len(got) != len(want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] || !got[i].IsFlag() || got[i].IsFatal() {
			t.Fatalf("codes = %v, want %v", got, want)
		}
	}
}

func TestBaselineWalkFraction(t *testing.T) {
	s := labels.NewStream(labels.Behavior, 10)
	for i := 0; i < 4; i++ {
		s.Values[i] = labels.Walk
	}
	frac, window := qc.BaselineWalkFraction(s, 6, 4)
	if window != 4 || frac != 0.5 {
		t.Fatalf("fraction=%v window=%d", frac, window)
	}
	frac, window = qc.BaselineWalkFraction(s, 2, 4)
	if window != 2 || frac != 1 {
		t.Fatalf("clamped fraction=%v window=%d", frac, window)
	}
}

func TestRegistriesAreDisjoint(t *testing.T) {
	for _, c := range qc.FatalCodes {
		if c.IsFlag() {
			t.Fatalf("%s in both registries", c)
		}
	}
	if qc.Code("bogus").Valid() {
		t.Fatal("unregistered code reported valid")
	}
	f := qc.ReadFailure("x.csv", errors.New("unexpected EOF"))
	if !f.Fatal() || f.MetricsJSON() != `{"error":"unexpected EOF","path":"x.csv"}` {
		t.Fatalf("read failure = %s %s", f.Code, f.MetricsJSON())
	}
}
