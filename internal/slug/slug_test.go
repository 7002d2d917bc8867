package slug

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":               "hello-world",
		"  Diaspora   Summit 2025 ":   "diaspora-summit-2025",
		"Café Olé":                    "cafe-ole",
		"---":                         "item",
		"":                            "item",
		"already-a-slug":              "already-a-slug",
		"Ọ̀rọ̀ Àjọ (Lagos) — recap": "oro-ajo-lagos-recap",
	}
	for in, want := range cases {
		if got := Make(in); got != want {
			t.Errorf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMake_Truncates(t *testing.T) {
	got := Make(strings.Repeat("ab ", 80))
	if len(got) > MaxLength {
		t.Fatalf("len = %d", len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("trailing dash in %q", got)
	}
}

func TestValid(t *testing.T) {
	if !Valid("my-post-1") {
		t.Fatal("expected valid")
	}
	for _, s := range []string{"My Post", "-lead", "", "a--b"} {
		if Valid(s) {
			t.Errorf("Valid(%q) = true", s)
		}
	}
}
