// Package view renders the portal's header, cards, rows and pages. Every
// renderer returns markup together with the actions it exposes, so the
// markup can be tested without a browser and the actions can be dispatched
// without knowing how they were drawn.
package view

import "html/template"

type ActionKind string

const (
	ActionDeleteDoctor     ActionKind = "deleteDoctor"
	ActionLoginPrompt      ActionKind = "loginPrompt"
	ActionBook             ActionKind = "book"
	ActionAddPrescription  ActionKind = "addPrescription"
	ActionViewPrescription ActionKind = "viewPrescription"
	ActionViewRecord       ActionKind = "viewRecord"
	ActionEditAppointment  ActionKind = "editAppointment"
)

// Action is one interactive affordance of a fragment. Actions with an Href
// are plain navigations; the rest are posted to the dispatcher.
type Action struct {
	Kind    ActionKind
	Label   string
	Target  string // id of the fragment the action belongs to
	Href    string
	Confirm string
	Params  map[string]string
}

// Navigates reports whether the action is a plain link.
func (a Action) Navigates() bool { return a.Href != "" }

// Fragment is rendered markup plus the actions attached to it.
type Fragment struct {
	ID      string
	HTML    template.HTML
	Actions []Action
}

// Action returns the fragment's action of the given kind.
func (f Fragment) Action(kind ActionKind) (Action, bool) {
	for _, a := range f.Actions {
		if a.Kind == kind {
			return a, true
		}
	}
	return Action{}, false
}
