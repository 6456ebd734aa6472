package email

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bizwiz/internal/dataset"
	"bizwiz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposer_Sections(t *testing.T) {
	c := NewComposer().
		Introduction("").
		Body("Numbers are up <10%> & rising").
		Markdown("## Highlights\n\n* **North** beat target\n")

	out := c.Compose("", "")
	assert.True(t, strings.HasPrefix(out, "<html><body>Hi,<br>"))
	assert.Contains(t, out, "<p>Numbers are up &lt;10%&gt; &amp; rising</p>")
	assert.Contains(t, out, "<h2>Highlights</h2>")
	assert.Contains(t, out, "<strong>North</strong>")
	assert.True(t, strings.HasSuffix(out, "<br>Regards,<br>Name Here</body></html>"))
}

func TestComposer_MarkdownDropsRawHTML(t *testing.T) {
	out := NewComposer().Markdown("<script>alert(1)</script>\n\nplain").HTML()
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<p>plain</p>")
}

func TestComposer_EmbedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, os.WriteFile(path, []byte("fakepng"), 0o644))

	c := NewComposer()
	require.NoError(t, c.EmbedImage("Weekly chart", path, "sales chart", 0, 200))
	out := c.HTML()
	assert.Contains(t, out, "Weekly chart<br>")
	assert.Contains(t, out, `src="data:image/png;base64,ZmFrZXBuZw=="`)
	assert.Contains(t, out, `alt="sales chart"`)
	assert.Contains(t, out, `width="300"`)
	assert.Contains(t, out, `height="200"`)

	err := c.EmbedImage("", filepath.Join(t.TempDir(), "missing.png"), "", 1, 1)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestComposer_EmbedTable(t *testing.T) {
	df, err := dataset.FromRecords([][]string{
		{"region", "note"},
		{"North", "<b>ok</b>"},
		{"South", ""},
	})
	require.NoError(t, err)

	c := NewComposer()
	require.NoError(t, c.EmbedTable("Summary", df))
	out := c.HTML()
	assert.Contains(t, out, "<th>region</th><th>note</th>")
	assert.Contains(t, out, "<td>North</td><td>&lt;b&gt;ok&lt;/b&gt;</td>")
	assert.Contains(t, out, "<td>South</td><td></td>")
}

func TestImageType(t *testing.T) {
	assert.Equal(t, "image/png", imageType("a.PNG"))
	assert.Equal(t, "image/svg+xml", imageType("a.svg"))
	assert.Equal(t, "image/jpeg", imageType("photo.jpg"))
	assert.Equal(t, "image/gif", imageType("spinner.gif"))
	assert.Equal(t, "image/bizwizraw", imageType("scan.bizwizraw"))
}
