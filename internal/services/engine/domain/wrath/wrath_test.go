package wrath

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"golang.org/x/text/language"
	"pgregory.net/rapid"

	"github.com/louisbranch/wrathforge/internal/core/dice"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		pool  []int
		wrath []int
		dn    int
		want  TestResult
	}{
		{
			name:  "success with shift",
			pool:  []int{4, 5, 6, 1, 2, 6},
			wrath: []int{3},
			dn:    3,
			want:  TestResult{Icons: 4, ExaltedIcons: 2, Success: true, Shift: 1},
		},
		{
			name:  "failure has no shift",
			pool:  []int{1, 2, 3, 4},
			wrath: []int{2},
			dn:    3,
			want:  TestResult{Icons: 1},
		},
		{
			name:  "complication on success",
			pool:  []int{6, 6, 6},
			wrath: []int{1},
			dn:    2,
			want:  TestResult{Icons: 3, ExaltedIcons: 3, Success: true, Shift: 1, Complications: 1},
		},
		{
			name:  "glory on failure",
			pool:  []int{1, 1},
			wrath: []int{6},
			dn:    4,
			want:  TestResult{Icons: 1, ExaltedIcons: 1, Glory: 1},
		},
		{
			name:  "pool sixes are not glory",
			pool:  []int{6},
			wrath: []int{4},
			dn:    1,
			want:  TestResult{Icons: 2, ExaltedIcons: 1, Success: true, Shift: 1},
		},
		{
			name:  "zero difficulty",
			pool:  []int{1},
			wrath: []int{2},
			dn:    0,
			want:  TestResult{Success: true},
		},
		{
			name:  "several wrath dice accumulate",
			pool:  nil,
			wrath: []int{1, 6, 1},
			dn:    1,
			want:  TestResult{Icons: 1, ExaltedIcons: 1, Success: true, Complications: 2, Glory: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.pool, tt.wrath, tt.dn)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got.Icons != tt.want.Icons || got.ExaltedIcons != tt.want.ExaltedIcons ||
				got.Success != tt.want.Success || got.Shift != tt.want.Shift ||
				got.Complications != tt.want.Complications || got.Glory != tt.want.Glory {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
			if got.DicePool != len(tt.pool) || got.Difficulty != tt.dn {
				t.Errorf("pool/dn = %d/%d", got.DicePool, got.Difficulty)
			}
		})
	}
}

func TestResolveRejectsBadFaces(t *testing.T) {
	if _, err := Resolve([]int{7}, nil, 1); !errors.Is(err, dice.ErrFaceOutOfRange) {
		t.Errorf("face 7 error = %v", err)
	}
	if _, err := Resolve(nil, []int{0}, 1); !errors.Is(err, dice.ErrFaceOutOfRange) {
		t.Errorf("face 0 error = %v", err)
	}
}

func TestPerformTestValidation(t *testing.T) {
	src := rand.New(rand.NewSource(1))
	tests := []struct {
		name              string
		pool, dn, wrathDs int
		want              error
	}{
		{name: "negative pool", pool: -1, dn: 1, wrathDs: 1, want: ErrInvalidDicePool},
		{name: "negative dn", pool: 1, dn: -1, wrathDs: 1, want: ErrInvalidDifficulty},
		{name: "negative wrath", pool: 1, dn: 1, wrathDs: -1, want: ErrInvalidWrathDice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PerformTest(src, tt.pool, tt.dn, tt.wrathDs); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPerformTestReplaysSequence(t *testing.T) {
	seq := dice.NewSequence(4, 2, 6, 1)
	got, err := PerformTest(seq, 3, 2, 1)
	if err != nil {
		t.Fatalf("PerformTest: %v", err)
	}
	if !reflect.DeepEqual(got.PoolDice, []int{4, 2, 6}) || !reflect.DeepEqual(got.WrathDice, []int{1}) {
		t.Fatalf("faces = %v / %v", got.PoolDice, got.WrathDice)
	}
	if !got.Success || got.Icons != 2 || got.Complications != 1 {
		t.Errorf("result = %+v", got)
	}
	if seq.Remaining() != 0 {
		t.Errorf("remaining faces = %d", seq.Remaining())
	}
}

func TestHospitallerPool(t *testing.T) {
	if got := DicePool(4, 3, 4); got != 11 {
		t.Errorf("DicePool = %d, want 11", got)
	}
}

func TestOpposedTestSymmetry(t *testing.T) {
	attackerFaces := []int{4, 5, 1, 6}
	defenderFaces := []int{2, 4, 3}

	forward, err := OpposedTest(dice.NewSequence(append(append([]int{}, attackerFaces...), defenderFaces...)...),
		Side{DicePool: 3, WrathDice: 1}, Side{DicePool: 2, WrathDice: 1})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	backward, err := OpposedTest(dice.NewSequence(append(append([]int{}, defenderFaces...), attackerFaces...)...),
		Side{DicePool: 2, WrathDice: 1}, Side{DicePool: 3, WrathDice: 1})
	if err != nil {
		t.Fatalf("backward: %v", err)
	}

	if forward.Winner != WinnerAttacker || backward.Winner != WinnerDefender {
		t.Errorf("winners = %s / %s", forward.Winner, backward.Winner)
	}
	if forward.Margin != 2 || backward.Margin != forward.Margin {
		t.Errorf("margins = %d / %d, want 2", forward.Margin, backward.Margin)
	}
	if forward.Attacker.Difficulty != 0 || forward.Defender.Difficulty != 0 {
		t.Error("opposed tests must roll at DN 0")
	}
}

func TestOpposedTie(t *testing.T) {
	got, err := OpposedTest(dice.NewSequence(4, 1, 5, 2), Side{DicePool: 1, WrathDice: 1}, Side{DicePool: 1, WrathDice: 1})
	if err != nil {
		t.Fatalf("OpposedTest: %v", err)
	}
	if got.Winner != WinnerTie || got.Margin != 0 {
		t.Errorf("result = %+v", got)
	}
}

func TestDifficultyName(t *testing.T) {
	tests := []struct {
		dn   int
		want string
	}{
		{0, "Simple"}, {2, "Simple"}, {3, "Easy"}, {4, "Medium"},
		{5, "Hard"}, {6, "Very Hard"}, {7, "Extreme"}, {12, "Extreme"},
	}
	for _, tt := range tests {
		if got := DifficultyName(tt.dn); got != tt.want {
			t.Errorf("DifficultyName(%d) = %q, want %q", tt.dn, got, tt.want)
		}
	}
}

func TestLocalizedDifficultyName(t *testing.T) {
	if got := LocalizedDifficultyName(language.BrazilianPortuguese, 5); got != "Difícil" {
		t.Errorf("pt-BR hard = %q", got)
	}
	if got := LocalizedDifficultyName(language.AmericanEnglish, 6); got != "Very Hard" {
		t.Errorf("en-US very hard = %q", got)
	}
	if got := LocalizedDifficultyName(language.Japanese, 7); got != "Extreme" {
		t.Errorf("fallback = %q", got)
	}
}

func TestAttributeModifier(t *testing.T) {
	for v, want := range map[int]int{0: 0, 1: 0, 2: 1, 5: 2, 8: 4, -1: -1, -3: -2} {
		if got := AttributeModifier(v); got != want {
			t.Errorf("AttributeModifier(%d) = %d, want %d", v, got, want)
		}
	}
}

func TestProbability(t *testing.T) {
	got, err := Probability(1, 1, 1)
	if err != nil {
		t.Fatalf("Probability: %v", err)
	}
	if math.Abs(got.Success-0.75) > 1e-12 {
		t.Errorf("P(success) = %v, want 0.75", got.Success)
	}
	if math.Abs(got.Complication-1.0/6) > 1e-12 || math.Abs(got.Glory-1.0/6) > 1e-12 {
		t.Errorf("wrath odds = %v / %v", got.Complication, got.Glory)
	}

	zero, err := Probability(3, 0, 1)
	if err != nil {
		t.Fatalf("Probability: %v", err)
	}
	if math.Abs(zero.Success-1) > 1e-12 {
		t.Errorf("P(dn 0) = %v", zero.Success)
	}

	if _, err := Probability(-1, 1, 1); !errors.Is(err, ErrInvalidDicePool) {
		t.Errorf("negative pool error = %v", err)
	}
}

func TestExplainSteps(t *testing.T) {
	result, err := Resolve([]int{4, 6}, []int{1}, 2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	steps := Explain(result)
	var codes []string
	for _, s := range steps {
		codes = append(codes, s.Code)
	}
	want := []string{StepRollPool, StepRollWrath, StepCountIcons, StepCompareDN, StepWrathOutcome}
	if !reflect.DeepEqual(codes, want) {
		t.Errorf("codes = %v", codes)
	}
	if steps[3].Data["success"] != true || steps[4].Data["complications"] != 1 {
		t.Errorf("steps = %+v", steps)
	}
}

func TestResolveProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		face := rapid.IntRange(1, 6)
		pool := rapid.SliceOfN(face, 0, 20).Draw(t, "pool")
		wrathFaces := rapid.SliceOfN(face, 0, 3).Draw(t, "wrath")
		dn := rapid.IntRange(0, 10).Draw(t, "dn")

		r, err := Resolve(pool, wrathFaces, dn)
		if err != nil {
			t.Fatal(err)
		}

		icons := 0
		for _, f := range append(append([]int{}, pool...), wrathFaces...) {
			if f >= 4 {
				icons++
			}
		}
		if r.Icons != icons {
			t.Fatalf("icons = %d, want %d", r.Icons, icons)
		}
		if r.Success != (icons >= dn) {
			t.Fatalf("success = %v with %d icons vs dn %d", r.Success, icons, dn)
		}
		if r.Shift != max(0, icons-dn) {
			t.Fatalf("shift = %d", r.Shift)
		}
		if r.ExaltedIcons > r.Icons {
			t.Fatalf("exalted %d > icons %d", r.ExaltedIcons, r.Icons)
		}
		for _, f := range wrathFaces {
			if f == 1 && r.Complications == 0 {
				t.Fatal("wrath 1 without complication")
			}
			if f == 6 && r.Glory == 0 {
				t.Fatal("wrath 6 without glory")
			}
		}
	})
}

func TestProbabilityDistributionSumsToOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pool := rapid.IntRange(0, 40).Draw(t, "pool")
		wrathDice := rapid.IntRange(0, 3).Draw(t, "wrath")
		p, err := Probability(pool, rapid.IntRange(0, 50).Draw(t, "dn"), wrathDice)
		if err != nil {
			t.Fatal(err)
		}
		sum := 0.0
		for _, v := range p.IconDistribution {
			sum += v
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("distribution sums to %v", sum)
		}
		if p.Success < 0 || p.Success > 1 {
			t.Fatalf("success probability %v", p.Success)
		}
	})
}
