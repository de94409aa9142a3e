package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var base = template.Must(
	template.New("base").Option("missingkey=error").ParseFS(templateFS, "templates/fragments.html", "templates/layout.html"),
)

// Page names understood by Renderer.Page.
const (
	PageHome              = "home"
	PageDoctors           = "doctors"
	PageDoctorDashboard   = "doctor_dashboard"
	PageAppointments      = "appointments"
	PagePatientRecord     = "patient_record"
	PagePrescription      = "prescription"
	PageBooking           = "booking"
	PageUpdateAppointment = "update_appointment"
	PageLogin             = "login"
	PageSignup            = "signup"
	PageAddDoctor         = "add_doctor"
	PageAppointmentRecord = "appointment_record"
)

var pageNames = []string{
	PageHome, PageDoctors, PageDoctorDashboard, PageAppointments, PagePatientRecord,
	PagePrescription, PageBooking, PageUpdateAppointment, PageLogin, PageSignup, PageAddDoctor,
	PageAppointmentRecord,
}

// PageData is what every page template receives.
type PageData struct {
	Title   string
	Header  Header
	Alert   string
	Content any
}

// Renderer holds one parsed template set per page. Each set carries its own
// copy of the layout and fragment templates.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Option("missingkey=error").ParseFS(templateFS,
			"templates/fragments.html", "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Page renders a full page. The output is buffered so a template error
// never leaves a half written response.
func (r *Renderer) Page(w io.Writer, name string, data PageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("view: render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Fragment renders a list on its own, for live search responses that
// replace one container instead of the whole page.
func (r *Renderer) Fragment(w io.Writer, l *List) error {
	var buf bytes.Buffer
	if err := base.ExecuteTemplate(&buf, "list", l); err != nil {
		return fmt.Errorf("view: render list %s: %w", l.ID, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Assets serves the stylesheet and the small script that applies patches.
func Assets() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

func execute(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := base.ExecuteTemplate(&buf, name, data); err != nil {
		// Fragment templates are fixed and their inputs are plain structs.
		panic(fmt.Sprintf("view: render %s: %v", name, err))
	}
	return template.HTML(buf.String())
}
