package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_GenericPage(t *testing.T) {
	title, text, err := extract(postingHTML, &genericBoard)
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", title)
	assert.Equal(t, "Requirements\n5+ years of Go and PostgreSQL. Experience with Kubernetes and AWS.", text)
}

func TestExtract_TitleFallsBackToDocumentTitle(t *testing.T) {
	title, _, err := extract(`<html><head><title>  Data   Engineer | Acme </title></head><body><p>x</p></body></html>`, &genericBoard)
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer | Acme", title)
}

func TestExtract_FallsBackToBody(t *testing.T) {
	_, text, err := extract(`<html><body><script>var x = 1;</script><div>Alpha</div><div>Beta <b>bold</b></div></body></html>`, &genericBoard)
	require.NoError(t, err)
	assert.Equal(t, "Alpha\nBeta bold", text)
}

func TestExtract_PlatformRules(t *testing.T) {
	page := `<html><body>
<div class="job__description"><ul><li>Go</li><li>gRPC</li></ul></div>
<div class="application--wrapper">Apply now</div>
<div class="eeo-statement">Equal opportunity</div>
</body></html>`

	_, text, err := extract(page, rulesFor("https://job-boards.greenhouse.io/acme/jobs/1"))
	require.NoError(t, err)
	assert.Equal(t, "Go\ngRPC", text)
}

func TestBlockText_InlineAndBreaks(t *testing.T) {
	_, text, err := extract(`<html><body><main><p>one<br>two</p><p>three  <a href="#">four</a>
	five</p></main></body></html>`, &genericBoard)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree four five", text)
}
