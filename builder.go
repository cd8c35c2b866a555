package codereview

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/ant-lat/code-review-sub000/api"
	"github.com/ant-lat/code-review-sub000/route"
	"github.com/ant-lat/code-review-sub000/session"
)

// Builder assembles an [App]. Construction order does not matter; Build
// validates the result once.
type Builder struct {
	cfg Config

	backend    session.Backend
	redis      redis.UniversalClient
	httpClient *http.Client
	sink       Sink
	views      map[string]route.ViewFactory

	built bool
}

// New starts a [Builder] from [DefaultConfig].
func New() *Builder {
	return &Builder{
		cfg:   DefaultConfig(),
		views: map[string]route.ViewFactory{},
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithStorageBackend injects the durable-storage backend. Takes precedence
// over [Builder.WithRedis] and the configured file path.
func (b *Builder) WithStorageBackend(backend session.Backend) *Builder {
	b.backend = backend
	return b
}

// WithRedis selects Redis-backed durable storage.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient replaces the underlying transport client.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithNotifySink installs the notification sink. Without one, notifications
// are dispatched to a [NoOpSink].
func (b *Builder) WithNotifySink(sink Sink) *Builder {
	b.sink = sink
	return b
}

// WithView binds a view factory to a route path.
func (b *Builder) WithView(path string, factory ViewFactory) *Builder {
	if path != "" && factory != nil {
		b.views[path] = factory
	}
	return b
}

// WithViews binds several view factories at once.
func (b *Builder) WithViews(views map[string]ViewFactory) *Builder {
	for path, factory := range views {
		b.WithView(path, factory)
	}
	return b
}

// Build validates the configuration and assembles the [App]. A Builder
// builds at most once.
func (b *Builder) Build() (*App, error) {
	if b.built {
		return nil, errors.New("codereview: builder already used")
	}
	if err := b.cfg.validate(); err != nil {
		return nil, err
	}

	backend := b.backend
	if backend == nil && b.redis != nil {
		rb, err := session.NewRedisBackend(b.redis, b.cfg.Session.RedisPrefix)
		if err != nil {
			return nil, err
		}
		backend = rb
	}
	if backend == nil {
		if b.cfg.Session.FilePath == "" {
			return nil, errors.New("codereview: no storage backend and no session file path configured")
		}
		fb, err := session.NewFileBackend(b.cfg.Session.FilePath)
		if err != nil {
			return nil, err
		}
		backend = fb
	}

	store, err := session.NewStore(backend, b.cfg.Session.Keys)
	if err != nil {
		return nil, err
	}

	authorizer, err := route.NewAuthorizer(route.Config{
		LoginPath:     b.cfg.Routes.LoginPath,
		ForbiddenPath: b.cfg.Routes.ForbiddenPath,
		DashboardPath: b.cfg.Routes.DashboardPath,
		FallbackPaths: b.cfg.Routes.FallbackPaths,
	})
	if err != nil {
		return nil, err
	}

	registry := route.NewRegistry()
	for path, factory := range b.views {
		registry.Register(path, factory)
	}

	app := &App{
		cfg:        b.cfg,
		store:      store,
		loop:       newStateLoop(),
		notify:     newNotifyDispatcher(b.cfg.Notify, b.sink),
		metrics:    NewMetrics(b.cfg.Metrics.Enabled),
		authorizer: authorizer,
		registry:   registry,
	}

	clientOpts := []api.Option{
		api.WithTokenSource(appTokenSource{app: app}),
		api.WithNotifier(appNotifier{app: app}),
		api.WithUnauthorizedHook(app.onUnauthorized),
	}
	if b.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(b.httpClient))
	}

	client, err := api.NewClient(api.Config{
		BaseURL:      b.cfg.API.BaseURL,
		Timeout:      b.cfg.API.Timeout,
		SilentHeader: b.cfg.API.SilentHeader,
		UserAgent:    b.cfg.API.UserAgent,
	}, clientOpts...)
	if err != nil {
		app.Close()
		return nil, err
	}

	legacy, err := api.NewLegacyClient(client, app.refreshAccessToken)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.client = client
	app.legacy = legacy
	app.auth = api.NewAuthService(client)
	app.projects = api.NewProjectService(client)
	app.issues = api.NewIssueService(client)
	app.reviews = api.NewReviewService(client)
	app.users = api.NewUserService(client)
	app.notices = api.NewNoticeService(client)

	b.built = true
	return app, nil
}
