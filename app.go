package codereview

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ant-lat/code-review-sub000/api"
	"github.com/ant-lat/code-review-sub000/menu"
	"github.com/ant-lat/code-review-sub000/route"
	"github.com/ant-lat/code-review-sub000/session"
)

// App is the assembled client core. It owns the session, the menu tree, the
// route authorizer, and the backend clients; all shared state flows through
// the single-writer state loop.
//
// App instances are created by [Builder.Build] and are safe for concurrent
// use.
type App struct {
	cfg        Config
	store      *session.Store
	loop       *stateLoop
	notify     *notifyDispatcher
	metrics    *Metrics
	authorizer *route.Authorizer
	registry   *route.Registry

	client   *api.Client
	legacy   *api.LegacyClient
	auth     *api.AuthService
	projects *api.ProjectService
	issues   *api.IssueService
	reviews  *api.ReviewService
	users    *api.UserService
	notices  *api.NoticeService

	closed atomic.Bool
}

// Close stops the state loop and the notification dispatcher. In-flight
// requests are not aborted (cancellation is disabled in the transport); they
// fail against the closed state instead.
func (a *App) Close() {
	if a == nil || !a.closed.CompareAndSwap(false, true) {
		return
	}
	if a.notify != nil {
		a.notify.Close()
	}
	if a.loop != nil {
		a.loop.Close()
	}
}

/*
====================================
SESSION LIFECYCLE
====================================
*/

// Bootstrap restores a persisted session from durable storage, the page-
// reload path. An absent session is not an error; an expired one is cleared
// and reported as [ErrSessionExpired].
func (a *App) Bootstrap(ctx context.Context) error {
	if a.closed.Load() {
		return ErrClosed
	}

	sess, err := a.store.Load(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}

	if !sess.Valid(time.Now()) {
		if clearErr := a.store.Clear(ctx); clearErr != nil {
			return clearErr
		}
		return ErrSessionExpired
	}

	a.loop.Apply(func(s *appState) {
		s.session = sess
	})
	return nil
}

// Login authenticates, persists the resulting session, and replaces the
// in-memory state. The menu tree is fetched best-effort: a failed fetch
// leaves the authorizer in fallback mode rather than failing the login.
func (a *App) Login(ctx context.Context, username, password string) (*session.Session, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}

	result, err := a.auth.Login(ctx, api.Credentials{Username: username, Password: password})
	if err != nil {
		a.metrics.Inc(MetricLoginFailure)
		return nil, err
	}
	a.metrics.Inc(MetricLoginSuccess)

	sess := &session.Session{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
		Permissions:  result.Permissions,
	}
	if exp, err := session.TokenExpiry(result.AccessToken); err == nil && !exp.IsZero() {
		sess.ExpiresAt = exp
	} else if result.ExpiresIn > 0 {
		sess.ExpiresAt = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	}

	if err := a.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	a.loop.Apply(func(s *appState) {
		s.session = sess
		s.tree = nil
		s.pendingRedirect = ""
	})

	if tree, err := a.auth.Menu(api.WithSilent(ctx)); err == nil {
		a.loop.Apply(func(s *appState) {
			s.tree = tree
		})
	}

	return sess, nil
}

// Logout tears the session down: a best-effort silent server-side logout,
// then durable storage and in-memory state are cleared regardless of the
// server outcome.
func (a *App) Logout(ctx context.Context) error {
	if a.closed.Load() {
		return ErrClosed
	}

	if a.Session().Valid(time.Now()) {
		_ = a.auth.Logout(api.WithSilent(ctx))
	}
	return a.invalidate(ctx, "")
}

// Refresh exchanges the stored refresh token for a new access token and
// persists the updated session.
func (a *App) Refresh(ctx context.Context) error {
	if a.closed.Load() {
		return ErrClosed
	}
	_, err := a.refreshSession(ctx)
	return err
}

func (a *App) refreshSession(ctx context.Context) (*session.Session, error) {
	sess := a.Session()
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	if sess.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	result, err := a.auth.Refresh(api.WithSilent(ctx), sess.RefreshToken)
	if err != nil {
		a.metrics.Inc(MetricRefreshFailure)
		return nil, err
	}
	a.metrics.Inc(MetricRefreshSuccess)

	updated := *sess
	updated.AccessToken = result.AccessToken
	updated.ExpiresAt = time.Time{}
	if exp, err := session.TokenExpiry(result.AccessToken); err == nil && !exp.IsZero() {
		updated.ExpiresAt = exp
	} else if result.ExpiresIn > 0 {
		updated.ExpiresAt = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	}

	if err := a.store.Save(ctx, &updated); err != nil {
		return nil, err
	}
	a.loop.Apply(func(s *appState) {
		s.session = &updated
	})
	return &updated, nil
}

// refreshAccessToken adapts refreshSession to the legacy client's
// [api.RefreshFunc].
func (a *App) refreshAccessToken(ctx context.Context) (string, error) {
	sess, err := a.refreshSession(ctx)
	if err != nil {
		return "", err
	}
	return sess.AccessToken, nil
}

// CurrentUser fetches the authenticated user. A failure while holding a
// valid token means the session is gone server-side and is treated as
// invalidation.
func (a *App) CurrentUser(ctx context.Context) (*api.CurrentUserResult, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}

	result, err := a.auth.CurrentUser(ctx)
	if err != nil {
		if a.Session().Valid(time.Now()) {
			_ = a.invalidate(ctx, a.cfg.Routes.LoginPath)
		}
		return nil, err
	}

	a.loop.Apply(func(s *appState) {
		if s.session == nil {
			return
		}
		updated := *s.session
		updated.User = result.User
		updated.Permissions = result.Permissions
		s.session = &updated
	})
	return result, nil
}

// invalidate clears durable storage and in-memory session state, optionally
// recording a forced redirect target.
func (a *App) invalidate(ctx context.Context, redirect string) error {
	a.metrics.Inc(MetricSessionInvalidated)
	err := a.store.Clear(ctx)
	a.loop.Apply(func(s *appState) {
		s.session = nil
		s.tree = nil
		s.returnPath = ""
		s.pendingRedirect = redirect
	})
	return err
}

// onUnauthorized is the 401 hook of the primary client: clear the session
// everywhere and force navigation to the login screen.
func (a *App) onUnauthorized(ctx context.Context) {
	_ = a.invalidate(ctx, a.cfg.Routes.LoginPath)
}

/*
====================================
MENU AND NAVIGATION
====================================
*/

// LoadMenu fetches and installs the permission-filtered menu tree. On
// failure the previous tree is kept (or fallback mode continues) and the
// error wraps [ErrMenuUnavailable].
func (a *App) LoadMenu(ctx context.Context) error {
	if a.closed.Load() {
		return ErrClosed
	}

	tree, err := a.auth.Menu(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMenuUnavailable, err)
	}
	a.loop.Apply(func(s *appState) {
		s.tree = tree
	})
	return nil
}

// Navigate runs the authorization algorithm for one navigation attempt.
// req carries a page-declared requirement and is consulted only while no
// menu tree is loaded. A redirect-login decision records the requested path
// for post-login return.
func (a *App) Navigate(path string, req *route.Requirement) route.Decision {
	var (
		sess *session.Session
		tree menu.Tree
	)
	a.loop.Apply(func(s *appState) {
		sess = s.session
		tree = s.tree
	})

	decision := a.authorizer.Decide(sess, tree, path, req)
	switch decision.Action {
	case route.ActionAllow:
		a.metrics.Inc(MetricNavigateAllow)
	case route.ActionRedirectLogin:
		a.metrics.Inc(MetricNavigateLoginRedirect)
	case route.ActionRedirectForbidden:
		a.metrics.Inc(MetricNavigateForbidden)
	}
	if decision.Action == route.ActionRedirectLogin && decision.ReturnTo != "" {
		a.loop.Apply(func(s *appState) {
			s.returnPath = decision.ReturnTo
		})
	}
	return decision
}

// Resolve authorizes path and, when allowed, materializes its view from the
// registry. The decision is returned either way.
func (a *App) Resolve(path string, req *route.Requirement) (route.View, route.Decision) {
	decision := a.Navigate(path, req)
	if decision.Action != route.ActionAllow {
		return nil, decision
	}
	view, _ := a.registry.Resolve(path)
	return view, decision
}

// ConsumeReturnPath returns and clears the path recorded by the last
// redirect-login decision.
func (a *App) ConsumeReturnPath() string {
	var path string
	a.loop.Apply(func(s *appState) {
		path = s.returnPath
		s.returnPath = ""
	})
	return path
}

// ConsumePendingRedirect returns and clears a navigation forced outside the
// authorizer (the login path after a 401).
func (a *App) ConsumePendingRedirect() (string, bool) {
	var target string
	a.loop.Apply(func(s *appState) {
		target = s.pendingRedirect
		s.pendingRedirect = ""
	})
	return target, target != ""
}

/*
====================================
SNAPSHOTS AND ACCESSORS
====================================
*/

// Session returns the current session, or nil when unauthenticated.
func (a *App) Session() *session.Session {
	var sess *session.Session
	a.loop.Apply(func(s *appState) {
		sess = s.session
	})
	return sess
}

// Menu returns the currently installed menu tree; empty means fallback mode.
func (a *App) Menu() menu.Tree {
	var tree menu.Tree
	a.loop.Apply(func(s *appState) {
		tree = s.tree
	})
	return tree
}

// Theme returns the persisted login theme preference.
func (a *App) Theme(ctx context.Context) (string, error) {
	return a.store.Theme(ctx)
}

// SetTheme persists the login theme preference.
func (a *App) SetTheme(ctx context.Context, theme string) error {
	return a.store.SetTheme(ctx, theme)
}

// Notify emits an application-level notification through the dispatcher.
func (a *App) Notify(ctx context.Context, n Notification) {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	a.metrics.Inc(MetricNotificationEmitted)
	a.notify.Emit(ctx, n)
}

// Metrics exposes the in-process counters. Disabled metrics still return a
// usable no-op instance.
func (a *App) Metrics() *Metrics { return a.metrics }

// DroppedNotifications reports how many notifications the dispatcher
// discarded under backpressure.
func (a *App) DroppedNotifications() uint64 {
	return a.notify.Dropped()
}

// Auth exposes the authentication endpoints.
func (a *App) Auth() *api.AuthService { return a.auth }

// Projects exposes project CRUD.
func (a *App) Projects() *api.ProjectService { return a.projects }

// Issues exposes issue CRUD.
func (a *App) Issues() *api.IssueService { return a.issues }

// Reviews exposes code-review CRUD.
func (a *App) Reviews() *api.ReviewService { return a.reviews }

// Users exposes user management.
func (a *App) Users() *api.UserService { return a.users }

// Notices exposes the notification center's REST surface.
func (a *App) Notices() *api.NoticeService { return a.notices }

// Client exposes the primary backend client for endpoints this package does
// not type.
func (a *App) Client() *api.Client { return a.client }

// Legacy exposes the refresh-once client used by the older screens.
func (a *App) Legacy() *api.LegacyClient { return a.legacy }

/*
====================================
ADAPTERS
====================================
*/

type appTokenSource struct {
	app *App
}

func (ts appTokenSource) AccessToken(context.Context) (string, bool) {
	sess := ts.app.Session()
	if sess == nil || sess.AccessToken == "" {
		return "", false
	}
	return sess.AccessToken, true
}

type appNotifier struct {
	app *App
}

func (n appNotifier) Notify(ctx context.Context, an api.Notification) {
	n.app.Notify(ctx, Notification{
		Timestamp: time.Now(),
		Level:     an.Level,
		Text:      an.Text,
		Code:      an.Code,
		Status:    an.Status,
		Request:   an.Request,
		Source:    "api",
	})
}
