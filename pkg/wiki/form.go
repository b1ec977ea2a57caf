package wiki

import (
	"strings"

	"github.com/aretw0/mdwiki/pkg/core"
)

// GenericSaveMessage is shown on the workspace form for failures that are
// neither validation nor conflict.
const GenericSaveMessage = "could not save workspace"

// WorkspaceForm is the immutable state of the workspace create/edit form.
// Transitions return a new value and never touch the network.
type WorkspaceForm struct {
	Open       bool
	EditID     int
	Name       string
	Visibility core.Visibility
	// Error is the message shown next to Field. Empty when the form is clean.
	Field string
	Error string
}

// OpenCreate opens an empty form for a new workspace.
func (f WorkspaceForm) OpenCreate() WorkspaceForm {
	return WorkspaceForm{Open: true, Visibility: core.VisibilityPrivate}
}

// OpenEdit opens the form prefilled with ws.
func (f WorkspaceForm) OpenEdit(ws core.Workspace) WorkspaceForm {
	return WorkspaceForm{Open: true, EditID: ws.ID, Name: ws.Name, Visibility: ws.Visibility}
}

func (f WorkspaceForm) WithName(name string) WorkspaceForm {
	f.Name = name
	f.Field, f.Error = "", ""
	return f
}

func (f WorkspaceForm) WithVisibility(v core.Visibility) WorkspaceForm {
	f.Visibility = v
	return f
}

// Fail records err on the form and keeps it open.
func (f WorkspaceForm) Fail(err error) WorkspaceForm {
	if fe, ok := asFieldError(err); ok {
		f.Field, f.Error = fe.Field, fe.Message
		return f
	}
	f.Field, f.Error = "", GenericSaveMessage
	return f
}

func (f WorkspaceForm) Close() WorkspaceForm {
	return WorkspaceForm{}
}

// Editing reports whether the form updates an existing workspace.
func (f WorkspaceForm) Editing() bool {
	return f.EditID != 0
}

func validateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return core.Invalid(field, field+" is required")
	}
	return nil
}
