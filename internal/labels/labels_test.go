package labels

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kick In", "KICK_IN"},
		{"  snare   top  ", "SNARE_TOP"},
		{"Vox (Lead)", "VOX_LEAD"},
		{"OH L/R", "OH_L_R"},
		{"bass+di", "BASS+DI"},
		{"gtr=amp.2-b", "GTR=AMP.2-B"},
		{"__a__b__", "A_B"},
		{"tab\tsep", "TAB_SEP"},
		{"Café", "CAF"},
		{"???", ""},
		{"3", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_SkipsBlankAndComments(t *testing.T) {
	input := "\ufeffKick\n\n# drums\n   # indented comment\nSnare\n   \nhi hat\n???\n"
	table, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"KICK", "SNARE", "HI_HAT", ""}
	got := table.Labels()
	if len(got) != len(want) {
		t.Fatalf("got %d labels %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i+1, got[i], want[i])
		}
	}
	if table.Label(1) != "KICK" || table.Label(0) != "" || table.Label(5) != "" {
		t.Errorf("Label bounds: %q %q %q", table.Label(1), table.Label(0), table.Label(5))
	}
}

func TestParse_CountMatchesRetainedLines(t *testing.T) {
	inputs := []string{
		"",
		"# only comment\n",
		"a\nb\nc",
		"a\r\nb\r\n\r\n#x\r\nc\r\n",
		"\n\n\nsolo\n\n",
	}
	for _, in := range inputs {
		retained := 0
		for _, line := range strings.Split(in, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
				retained++
			}
		}
		first, err := Parse(strings.NewReader(in))
		if err != nil {
			t.Fatal(err)
		}
		second, _ := Parse(strings.NewReader(in))
		if first.Len() != retained {
			t.Errorf("Parse(%q).Len() = %d, want %d", in, first.Len(), retained)
		}
		if strings.Join(first.Labels(), "|") != strings.Join(second.Labels(), "|") {
			t.Errorf("Parse(%q) not deterministic", in)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.txt")
	if err := os.WriteFile(path, []byte("Kick\nSnare\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 || table.Label(2) != "SNARE" {
		t.Errorf("table = %v", table.Labels())
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	if !errors.Is(err, ErrMissingSource) {
		t.Errorf("err = %v, want ErrMissingSource", err)
	}
}

func TestTableIsImmutable(t *testing.T) {
	src := []string{"A", "B"}
	table := NewTable(src)
	src[0] = "Z"
	got := table.Labels()
	got[1] = "Y"
	if table.Label(1) != "A" || table.Label(2) != "B" {
		t.Errorf("table mutated: %v", table.Labels())
	}
}
