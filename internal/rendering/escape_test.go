package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLaTeX(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Led a team of five engineers", "Led a team of five engineers"},
		{"backslash", `test\backslash`, `test\textbackslash{}backslash`},
		{"braces", "text{with}braces", `text\{with\}braces`},
		{"money and percent", "$1M+ requests at 99.9% uptime", `\$1M+ requests at 99.9\% uptime`},
		{"hash and underscore", "C# snake_case", `C\# snake\_case`},
		{"caret and tilde", "^~", `\textasciicircum{}\textasciitilde{}`},
		{"angle brackets and bar", "<a|b>", `\textless{}a\textbar{}b\textgreater{}`},
		{"bullet glyph", "• shipped", `\textbullet{} shipped`},
		{"unicode passes through", "résumé α β γ", "résumé α β γ"},
		{"ampersand", "R&D", `R\&D`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLaTeX(tt.in))
		})
	}
}

func TestEscapeURL(t *testing.T) {
	assert.Equal(t, `https://example.com/a\#b?q=1\%20`, EscapeURL("https://example.com/a#b?q=1%20"))
}
