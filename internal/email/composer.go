// Package email builds HTML message bodies: a greeting, paragraphs,
// markdown sections, inline images and tables, and a sign-off.
package email

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Defaults used when the caller passes empty text
const (
	DefaultIntroduction = "Hi,"
	DefaultSalutation   = "Regards,"
	DefaultSignature    = "Name Here"
)

var fragments = template.Must(template.New("email").Parse(`
{{define "image"}}{{.Header}}<br> <img src="{{.Src}}" alt="{{.Alt}}" width="{{.Width}}" height="{{.Height}}">{{end}}
{{define "table"}}<br> {{.Header}}<br><table border="1" class="dataframe">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>
</table>{{end}}
`))

// Composer accumulates the sections of an HTML email in call order. Plain
// text is escaped; markdown, images and tables are rendered to HTML.
type Composer struct {
	b strings.Builder
}

// NewComposer starts an empty message
func NewComposer() *Composer {
	c := &Composer{}
	c.b.WriteString("<html><body>")
	return c
}

// Introduction adds the greeting line
func (c *Composer) Introduction(text string) *Composer {
	if text == "" {
		text = DefaultIntroduction
	}
	c.b.WriteString(template.HTMLEscapeString(text))
	c.b.WriteString("<br>")
	return c
}

// Body adds a paragraph
func (c *Composer) Body(text string) *Composer {
	c.b.WriteString("<p>")
	c.b.WriteString(template.HTMLEscapeString(text))
	c.b.WriteString("</p>")
	return c
}

// Markdown renders md (CommonMark plus tables and fenced code) and adds it.
// Raw HTML blocks in md are dropped.
func (c *Composer) Markdown(md string) *Composer {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.SkipHTML | mdhtml.HrefTargetBlank})
	c.b.Write(markdown.ToHTML([]byte(md), p, r))
	return c
}

// EmbedImage inlines the image at path as a base64 data URI under header
func (c *Composer) EmbedImage(header, path, alt string, width, height int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound(fmt.Sprintf("image %s", path))
		}
		return fmt.Errorf("failed to read image %s: %w", path, err)
	}
	if width <= 0 {
		width = 300
	}
	if height <= 0 {
		height = 300
	}

	src := template.URL("data:" + imageType(path) + ";base64," + base64.StdEncoding.EncodeToString(data))
	return c.render("image", struct {
		Header, Alt   string
		Src           template.URL
		Width, Height int
	}{header, alt, src, width, height})
}

// EmbedTable adds df as an HTML table under header. Missing cells are blank.
func (c *Composer) EmbedTable(header string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return errors.Wrap(df.Err, "cannot embed table")
	}
	rows := make([][]string, df.Nrow())
	for i := range rows {
		rows[i] = make([]string, df.Ncol())
		for j := 0; j < df.Ncol(); j++ {
			if e := df.Elem(i, j); !e.IsNA() {
				rows[i][j] = e.String()
			}
		}
	}
	return c.render("table", struct {
		Header  string
		Columns []string
		Rows    [][]string
	}{header, df.Names(), rows})
}

// HTML returns the message so far, without a closing sign-off
func (c *Composer) HTML() string {
	return c.b.String()
}

// Compose closes the message with the salutation and signature and returns
// the full document
func (c *Composer) Compose(salutation, signature string) string {
	if salutation == "" {
		salutation = DefaultSalutation
	}
	if signature == "" {
		signature = DefaultSignature
	}
	return fmt.Sprintf("%s<br>%s<br>%s</body></html>", c.b.String(),
		template.HTMLEscapeString(salutation), template.HTMLEscapeString(signature))
}

func (c *Composer) render(name string, data any) error {
	var buf strings.Builder
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	c.b.WriteString(buf.String())
	return nil
}

// imageType maps a file extension to its MIME type, falling back to
// image/<ext> like mail clients expect
func imageType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/" + strings.TrimPrefix(ext, ".")
}
