package services

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language is the closed set of languages the sandbox accepts. Adding a
// language means extending the constant block and both switches below.
type Language int

const (
	LanguageJavaScript Language = iota
	LanguagePython
	LanguageJava
	LanguageCpp
	LanguageC
)

// ParseLanguage rejects anything outside the supported set before any
// network call is made.
func ParseLanguage(name string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "javascript":
		return LanguageJavaScript, nil
	case "python":
		return LanguagePython, nil
	case "java":
		return LanguageJava, nil
	case "cpp":
		return LanguageCpp, nil
	case "c":
		return LanguageC, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, name)
	}
}

// JudgeID maps the language to the sandbox's numeric language ID.
func (l Language) JudgeID() int {
	switch l {
	case LanguageJavaScript:
		return 63
	case LanguagePython:
		return 71
	case LanguageJava:
		return 62
	case LanguageCpp:
		return 54
	case LanguageC:
		return 50
	default:
		return 0
	}
}

func (l Language) String() string {
	switch l {
	case LanguageJavaScript:
		return "javascript"
	case LanguagePython:
		return "python"
	case LanguageJava:
		return "java"
	case LanguageCpp:
		return "cpp"
	case LanguageC:
		return "c"
	default:
		return "unknown"
	}
}

// SupportedLanguages lists language names accepted by ParseLanguage.
func SupportedLanguages() []string {
	return []string{"javascript", "python", "java", "cpp", "c"}
}
