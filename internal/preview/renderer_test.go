package preview

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/academy/internal/domain"
)

func TestSynthesize_HTML_Verbatim(t *testing.T) {
	source := "<h1>Hello</h1>"

	doc, err := Synthesize(domain.LanguageHTML, source)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if doc != source {
		t.Errorf("HTML must pass through verbatim, got %q", doc)
	}
}

func TestSynthesize_CSS_SkeletonAndStyle(t *testing.T) {
	source := "body{color:red}"

	doc, err := Synthesize(domain.LanguageCSS, source)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if !strings.Contains(doc, "<style>body{color:red}</style>") {
		t.Errorf("document should contain the style block, got:\n%s", doc)
	}
	if !strings.Contains(doc, "<h1>CSS Preview</h1>") {
		t.Error("document should contain the skeleton heading")
	}
	if !strings.Contains(doc, `<div class="demo">`) {
		t.Error("document should contain the demo element")
	}
}

func TestSynthesize_JS_GuardedExecution(t *testing.T) {
	source := "console.log(nosuchvariable)"

	doc, err := Synthesize(domain.LanguageJS, source)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	// The user's source must sit inside the try block, with the catch
	// rendering the error into the output panel.
	tryIdx := strings.Index(doc, "try {")
	srcIdx := strings.Index(doc, source)
	catchIdx := strings.Index(doc, "} catch (error) {")
	if tryIdx == -1 || srcIdx == -1 || catchIdx == -1 {
		t.Fatalf("document missing guard or source:\n%s", doc)
	}
	if !(tryIdx < srcIdx && srcIdx < catchIdx) {
		t.Error("user source must be inside the try block")
	}
	if !strings.Contains(doc, "Error: ' + error.message") {
		t.Error("catch block should render the error message")
	}
	if !strings.Contains(doc, `<div id="output">`) {
		t.Error("document should contain the output panel")
	}
	if !strings.Contains(doc, "console.log = function") {
		t.Error("document should intercept console.log")
	}
}

func TestSynthesize_JavaScriptAliasMatchesJS(t *testing.T) {
	a, err := Synthesize(domain.LanguageJavaScript, "console.log(1)")
	if err != nil {
		t.Fatalf("Synthesize(javascript) error = %v", err)
	}
	b, err := Synthesize(domain.LanguageJS, "console.log(1)")
	if err != nil {
		t.Fatalf("Synthesize(js) error = %v", err)
	}
	if a != b {
		t.Error("javascript and js must synthesize identically")
	}
}

func TestSynthesize_NonWebLanguage(t *testing.T) {
	_, err := Synthesize(domain.LanguagePython, "print('hi')")
	if !errors.Is(err, ErrNotWebLanguage) {
		t.Errorf("error = %v, want ErrNotWebLanguage", err)
	}
}
