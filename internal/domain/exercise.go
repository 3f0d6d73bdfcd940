package domain

// Exercise represents a coding task as served by the Academy backend.
// It is immutable for the duration of a session; only the session's
// code buffer changes as the learner types.
type Exercise struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Instructions    string `json:"instructions"` // may contain raw markup
	Language        Language `json:"language"`
	LanguageDisplay string   `json:"language_display,omitempty"`
	Difficulty      string   `json:"difficulty_display,omitempty"`
	StarterCode     string   `json:"starter_code"`
}

// Language identifies the exercise's programming language.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageJS         Language = "js"
	LanguageHTML       Language = "html"
	LanguageCSS        Language = "css"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
	LanguageSQL        Language = "sql"
	LanguageOther      Language = "other"
)

// Normalize lowercases the tag so backend variants ("Python", "JS")
// compare equal to the canonical constants.
func (l Language) Normalize() Language {
	b := []byte(l)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return Language(b)
}

// IsWeb reports whether the language renders in a live preview
// instead of going through the remote judge.
func (l Language) IsWeb() bool {
	switch l.Normalize() {
	case LanguageHTML, LanguageCSS, LanguageJavaScript, LanguageJS:
		return true
	}
	return false
}
