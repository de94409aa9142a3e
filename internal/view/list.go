package view

import "html/template"

// List is an ordered container of fragments: the card grid or the table
// body a page renders. Patches returned by the dispatcher are applied to it.
type List struct {
	ID    string
	Items []Fragment
	Empty string // shown when there are no items
}

func NewList(id, empty string, items ...Fragment) *List {
	return &List{ID: id, Items: items, Empty: empty}
}

// Remove drops the fragment with the given id. It reports whether anything
// was removed.
func (l *List) Remove(id string) bool {
	for i, f := range l.Items {
		if f.ID == id {
			l.Items = append(l.Items[:i:i], l.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (l *List) Get(id string) (Fragment, bool) {
	for _, f := range l.Items {
		if f.ID == id {
			return f, true
		}
	}
	return Fragment{}, false
}

// Apply performs the local part of a patch.
func (l *List) Apply(p Patch) {
	if p.Remove != "" {
		l.Remove(p.Remove)
	}
}

func (l *List) HTML() []template.HTML {
	out := make([]template.HTML, 0, len(l.Items))
	for _, f := range l.Items {
		out = append(out, f.HTML)
	}
	return out
}
