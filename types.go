package codereview

import (
	"github.com/ant-lat/code-review-sub000/api"
	"github.com/ant-lat/code-review-sub000/menu"
	"github.com/ant-lat/code-review-sub000/route"
	"github.com/ant-lat/code-review-sub000/session"
)

// Session is the client session model.
type Session = session.Session

// User is the current-user object delivered by the backend.
type User = session.User

// MenuTree is the permission-filtered navigation tree.
type MenuTree = menu.Tree

// MenuNode is one entry of the menu tree.
type MenuNode = menu.Node

// Decision is the outcome of one navigation attempt.
type Decision = route.Decision

// Requirement is a page-declared access requirement, used only while no
// menu tree is loaded.
type Requirement = route.Requirement

// View is the unit the route registry materializes for an authorized path.
type View = route.View

// ViewFactory builds the view for a path.
type ViewFactory = route.ViewFactory

// Navigation verdicts, re-exported from the route package.
const (
	ActionAllow             = route.ActionAllow
	ActionRedirectLogin     = route.ActionRedirectLogin
	ActionRedirectForbidden = route.ActionRedirectForbidden
)

// Credentials is the login request body.
type Credentials = api.Credentials
