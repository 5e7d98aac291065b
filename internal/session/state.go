package session

import "github.com/keapril/webinventory/internal/model"

// State is the edit mode of the session. It is one of Browsing, Creating or
// Editing.
type State interface {
	state()
}

// Browsing is the idle state: nothing is being edited.
type Browsing struct{}

// Creating means the form holds a new item.
type Creating struct{}

// Editing means the form was populated from Item.
type Editing struct {
	Item model.CatalogItem
}

func (Browsing) state() {}
func (Creating) state() {}
func (Editing) state()  {}

// StateName returns a short label for s, used in logs and templates.
func StateName(s State) string {
	switch s.(type) {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	default:
		return "browsing"
	}
}
