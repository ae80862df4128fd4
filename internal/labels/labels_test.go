package labels

import "testing"

func TestDefaultsPreserveSourceSpelling(t *testing.T) {
	sets := Defaults()
	if !sets.Contains(Emotion, "Happniess") {
		t.Fatalf("emotion options must keep the source spelling, got %v", sets.Options(Emotion))
	}
	if sets.Contains(Emotion, "Happiness") {
		t.Fatalf("emotion options must not include a corrected spelling")
	}
	if got := sets.Options(HateSpeech); len(got) != 2 || got[0] != "True" || got[1] != "False" {
		t.Fatalf("hate speech options = %v", got)
	}
}

func TestDefaultsReturnsCopies(t *testing.T) {
	first := Defaults()
	first[Sentiment][0] = "mutated"
	if Defaults()[Sentiment][0] != "Neutral" {
		t.Fatalf("Defaults must not share backing arrays")
	}
}

func TestMergeOverridesNonEmptySets(t *testing.T) {
	merged := Defaults().Merge(OptionSets{
		Sentiment:         {" Mixed ", "", "Negative"},
		Emotion:           nil,
		Dimension("tone"): {"x"},
	})
	if got := merged.Options(Sentiment); len(got) != 2 || got[0] != "Mixed" || got[1] != "Negative" {
		t.Fatalf("sentiment override = %v", got)
	}
	if got := merged.Options(Emotion); len(got) != 7 {
		t.Fatalf("emotion should keep defaults, got %v", got)
	}
	if _, ok := merged[Dimension("tone")]; ok {
		t.Fatalf("unknown dimensions must be dropped")
	}
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		in   string
		want Dimension
		ok   bool
	}{
		{"emotion", Emotion, true},
		{"Hate Speech", HateSpeech, true},
		{" CYBERBULLY ", Cyberbully, true},
		{"reasoning", "", false},
	}
	for _, tt := range tests {
		got, err := ParseDimension(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseDimension(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseDimension(%q) expected error", tt.in)
		}
	}
}
