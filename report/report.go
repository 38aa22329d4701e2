// Package report renders a pkid's stored HintsDocument (spec §3
// "hints") as a human-readable HTML page (spec §6 "the external report
// generator renders HTML using a template directory"). Rendering the
// hint report is explicitly out of this generator's core scope (spec
// §1), so this is a default/example Renderer behind an interface, not
// a step the pipeline itself calls.
package report

import (
	"embed"
	"html/template"
	"io"
	"sort"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/hintregistry"
)

//go:embed embedded/report.html.tmpl
var defaultTemplateFS embed.FS

const defaultTemplateName = "report.html.tmpl"

// Registry is the subset of hintregistry.Registry a renderer needs to
// turn a raw (tag, vars) Hint into a severity and a filled-in message.
type Registry interface {
	Severity(tag string) hintregistry.Severity
	Render(h asgen.Hint) string
}

// Renderer turns a package's HintsDocument into a rendered report.
type Renderer interface {
	Render(w io.Writer, doc asgen.HintsDocument, mediaBaseURL string) error
}

var _ Renderer = (*HTMLRenderer)(nil)

// HTMLRenderer is the default Renderer, grounded on the spec's own
// "renders HTML using a template directory" wording: TemplateDir, when
// set, is glob-parsed for "*.html.tmpl" files overriding the bundled
// default; otherwise the embedded template is used so a report can
// always be produced without any deployment-side setup.
type HTMLRenderer struct {
	Registry    Registry
	TemplateDir string

	tmpl *template.Template
}

type entry struct {
	CID      string
	Severity string
	Tag      string
	Message  string
}

type templateData struct {
	Package      string
	MediaBaseURL string
	Entries      []entry
}

// Render writes an HTML report for doc to w.
func (r *HTMLRenderer) Render(w io.Writer, doc asgen.HintsDocument, mediaBaseURL string) error {
	tmpl, err := r.template()
	if err != nil {
		return asgen.NewError("report.Render", asgen.ErrInternal, "loading report template failed", err)
	}

	data := templateData{Package: doc.Package, MediaBaseURL: mediaBaseURL}
	cids := make([]string, 0, len(doc.Hints))
	for cid := range doc.Hints {
		cids = append(cids, cid)
	}
	sort.Strings(cids)

	for _, cid := range cids {
		for _, h := range doc.Hints[cid] {
			sev := string(hintregistry.SeverityInfo)
			msg := h.Tag
			if r.Registry != nil {
				sev = string(r.Registry.Severity(h.Tag))
				msg = r.Registry.Render(h)
			}
			data.Entries = append(data.Entries, entry{CID: cid, Severity: sev, Tag: h.Tag, Message: msg})
		}
	}

	if err := tmpl.Execute(w, data); err != nil {
		return asgen.NewError("report.Render", asgen.ErrInternal, "executing report template failed", err)
	}
	return nil
}

func (r *HTMLRenderer) template() (*template.Template, error) {
	if r.tmpl != nil {
		return r.tmpl, nil
	}
	if r.TemplateDir != "" {
		tmpl, err := template.ParseGlob(r.TemplateDir + "/*.html.tmpl")
		if err == nil {
			r.tmpl = tmpl
			return r.tmpl, nil
		}
	}
	tmpl, err := template.ParseFS(defaultTemplateFS, "embedded/"+defaultTemplateName)
	if err != nil {
		return nil, err
	}
	r.tmpl = tmpl
	return r.tmpl, nil
}
