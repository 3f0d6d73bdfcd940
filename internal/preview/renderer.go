// Package preview synthesizes self-contained HTML documents from
// user-authored web-language source. Documents are rendered in an
// isolated frame elsewhere; this package only builds the markup.
package preview

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/academy/internal/domain"
)

var ErrNotWebLanguage = errors.New("language has no live preview")

const cssSkeleton = `<!DOCTYPE html>
<html>
<head>
  <style>%s</style>
</head>
<body>
  <h1>CSS Preview</h1>
  <div class="demo">This is a demo element</div>
</body>
</html>`

const jsSkeleton = `<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: monospace; padding: 20px; }
    #output { border: 1px solid #ccc; padding: 10px; background: #f5f5f5; }
  </style>
</head>
<body>
  <h3>Output:</h3>
  <div id="output"></div>
  <script>
    const originalLog = console.log;
    console.log = function(...args) {
      const output = document.getElementById('output');
      output.innerHTML += args.join(' ') + '<br>';
      originalLog.apply(console, args);
    };

    try {
%s
    } catch (error) {
      document.getElementById('output').innerHTML += '<span style="color: red;">Error: ' + error.message + '</span>';
    }
  </script>
</body>
</html>`

// Synthesize builds a complete document for the given source.
// HTML passes through verbatim; CSS gets a fixed demonstration body so
// selectors have something to target; JS gets a console intercept and
// a guarded execution block so thrown errors render instead of
// breaking the preview.
func Synthesize(lang domain.Language, source string) (string, error) {
	switch lang.Normalize() {
	case domain.LanguageHTML:
		return source, nil
	case domain.LanguageCSS:
		return fmt.Sprintf(cssSkeleton, source), nil
	case domain.LanguageJavaScript, domain.LanguageJS:
		return fmt.Sprintf(jsSkeleton, source), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNotWebLanguage, lang)
	}
}
