package digest

import (
	"fmt"
	"html/template"
	"io"

	_ "embed"
)

//go:embed email.html.tmpl
var emailTemplateSrc string

var emailTemplate = template.Must(template.New("email").Parse(emailTemplateSrc))

// HTMLFormatter renders the digest as a mobile-friendly RTL HTML email
// body.
type HTMLFormatter struct {
	title string
}

// NewHTML creates an HTML email formatter. title is the digest heading
// (the configured subject prefix).
func NewHTML(title string) *HTMLFormatter {
	return &HTMLFormatter{title: title}
}

type emailData struct {
	Title    string
	DateStr  string
	Groups   []emailGroup
	Empty    bool
	Warnings []string
}

type emailGroup struct {
	Source   string
	Count    int
	Listings []emailListing
}

type emailListing struct {
	URL     string
	Snippet string
	Image   string
}

// Format writes the digest as HTML to w. Sources with no new listings
// are omitted; a run with nothing new renders a single placeholder
// section instead of an empty digest.
func (f *HTMLFormatter) Format(w io.Writer, input Input) error {
	data := emailData{
		Title:    f.title,
		DateStr:  input.Date.Format("02.01.2006 15:04"),
		Warnings: input.Warnings,
	}

	for _, g := range input.Groups {
		if len(g.Listings) == 0 {
			continue
		}
		eg := emailGroup{Source: g.Source, Count: len(g.Listings)}
		for _, l := range g.Listings {
			eg.Listings = append(eg.Listings, emailListing{
				URL:     l.URL,
				Snippet: snippet(l.Text),
				Image:   l.Image,
			})
		}
		data.Groups = append(data.Groups, eg)
	}
	data.Empty = len(data.Groups) == 0

	if err := emailTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	return nil
}
