package services

import (
	"errors"
	"testing"
)

func TestParseLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  Language
	}{
		{"javascript", LanguageJavaScript},
		{"python", LanguagePython},
		{"java", LanguageJava},
		{"cpp", LanguageCpp},
		{"c", LanguageC},
		{"  Python  ", LanguagePython},
		{"JAVASCRIPT", LanguageJavaScript},
	}

	for _, tc := range cases {
		got, err := ParseLanguage(tc.input)
		if err != nil {
			t.Fatalf("ParseLanguage(%q) returned error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseLanguage(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseLanguageRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "ruby", "go", "python3"} {
		_, err := ParseLanguage(input)
		if !errors.Is(err, ErrUnsupportedLanguage) {
			t.Errorf("ParseLanguage(%q) error = %v, want ErrUnsupportedLanguage", input, err)
		}
	}
}

func TestJudgeIDMapping(t *testing.T) {
	cases := []struct {
		lang Language
		want int
	}{
		{LanguageJavaScript, 63},
		{LanguagePython, 71},
		{LanguageJava, 62},
		{LanguageCpp, 54},
		{LanguageC, 50},
	}

	for _, tc := range cases {
		if got := tc.lang.JudgeID(); got != tc.want {
			t.Errorf("%s.JudgeID() = %d, want %d", tc.lang, got, tc.want)
		}
	}
}

func TestSupportedLanguagesRoundTrip(t *testing.T) {
	for _, name := range SupportedLanguages() {
		lang, err := ParseLanguage(name)
		if err != nil {
			t.Fatalf("supported language %q does not parse: %v", name, err)
		}
		if lang.String() != name {
			t.Errorf("String() = %q, want %q", lang.String(), name)
		}
	}
}
