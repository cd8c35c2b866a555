// Command crclient-smoke exercises the client core end to end against a
// backend: login, menu fetch, route probing, a paginated list call, logout.
//
// With no -base-url (and no CR_BASE_URL), it starts an embedded fake backend
// so the smoke run needs no infrastructure; with -storage=redis and no
// -redis-addr it starts miniredis the same way.
//
// Configuration comes from flags, falling back to environment variables
// loaded via .env when present.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"
	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	codereview "github.com/ant-lat/code-review-sub000"
	"github.com/ant-lat/code-review-sub000/api"
	"github.com/ant-lat/code-review-sub000/route"
	"github.com/ant-lat/code-review-sub000/session"
)

type envConfig struct {
	BaseURL   string   `env:"CR_BASE_URL"`
	Username  string   `env:"CR_USERNAME" envDefault:"alice"`
	Password  string   `env:"CR_PASSWORD" envDefault:"secret"`
	RedisAddr string   `env:"REDIS_ADDR"`
	Routes    []string `env:"CR_ROUTES" envSeparator:","`
}

func main() {
	_ = godotenv.Load()

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		fmt.Fprintf(os.Stderr, "env parse: %v\n", err)
		os.Exit(2)
	}

	var (
		baseURL   = flag.String("base-url", ec.BaseURL, "backend base URL; empty starts an embedded fake backend")
		username  = flag.String("username", ec.Username, "login username")
		password  = flag.String("password", ec.Password, "login password")
		storage   = flag.String("storage", "file", "session storage backend: file or redis")
		redisAddr = flag.String("redis-addr", ec.RedisAddr, "redis address; if empty with -storage=redis, miniredis is used")
		routesArg = flag.String("routes", strings.Join(ec.Routes, ","), "comma-separated routes to probe")
	)
	flag.Parse()

	ctx := context.Background()

	url := *baseURL
	if url == "" {
		addr, stop, err := startFakeBackend(*username, *password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fake backend: %v\n", err)
			os.Exit(1)
		}
		defer stop()
		url = "http://" + addr
		fmt.Printf("using embedded fake backend at %s\n", url)
	} else {
		fmt.Printf("using backend at %s\n", url)
	}

	cfg := codereview.DefaultConfig()
	cfg.API.BaseURL = url
	cfg.API.UserAgent = "crclient-smoke"

	builder := codereview.New().WithConfig(cfg)

	switch *storage {
	case "file":
		dir, err := os.MkdirTemp("", "crclient-smoke-*")
		if err != nil {
			fmt.Fprintf(os.Stderr, "temp dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		backend, err := session.NewFileBackend(dir + "/session.json")
		if err != nil {
			fmt.Fprintf(os.Stderr, "file backend: %v\n", err)
			os.Exit(1)
		}
		builder = builder.WithStorageBackend(backend)
	case "redis":
		addr := *redisAddr
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				fmt.Fprintf(os.Stderr, "miniredis: %v\n", err)
				os.Exit(1)
			}
			defer mr.Close()
			addr = mr.Addr()
			fmt.Printf("using miniredis at %s\n", addr)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		defer func() { _ = client.Close() }()
		builder = builder.WithRedis(client)
	default:
		fmt.Fprintf(os.Stderr, "unknown storage %q\n", *storage)
		os.Exit(2)
	}

	sink := codereview.NewChannelSink(64)
	app, err := builder.WithNotifySink(sink).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	go func() {
		for n := range sink.Notifications() {
			fmt.Printf("  [notify] %s: %s\n", n.Level, n.Text)
		}
	}()

	start := time.Now()
	sess, err := app.Login(ctx, *username, *password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("logged in as %s in %s\n", sess.User.Username, time.Since(start).Round(time.Millisecond))

	tree := app.Menu()
	fmt.Printf("menu paths: %v\n", tree.Paths())

	routes := tree.Paths()
	if *routesArg != "" {
		routes = strings.Split(*routesArg, ",")
	}
	routes = append(routes, "/definitely-not-a-page", "/dashboard")
	for _, path := range routes {
		decision := app.Navigate(path, nil)
		switch decision.Action {
		case route.ActionAllow:
			view, _ := app.Resolve(path, nil)
			fmt.Printf("  %-28s allow (view %s)\n", path, view.Name())
		default:
			fmt.Printf("  %-28s %s -> %s\n", path, decision.Action, decision.Target)
		}
	}

	projects, meta, err := app.Projects().List(ctx, api.ListOptions{Page: 1, PageSize: 10})
	if err != nil {
		fmt.Fprintf(os.Stderr, "projects: %v\n", err)
	} else {
		fmt.Printf("projects: %d of %d\n", len(projects), meta.Total)
	}

	if err := app.Logout(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logout: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("logged out, session cleared")
}

// startFakeBackend serves just enough of the REST surface for a smoke run.
func startFakeBackend(username, password string) (string, func(), error) {
	const token = "smoke-token"

	mux := http.NewServeMux()
	envelope := func(w http.ResponseWriter, code int, data any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "message": "ok", "data": data})
	}

	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username != username || creds.Password != password {
			envelope(w, 1001, nil)
			return
		}
		envelope(w, 0, map[string]any{
			"access_token": token,
			"expires_in":   3600,
			"user":         map[string]any{"id": 1, "username": username},
			"permissions":  []string{"project:view", "review:view"},
		})
	})
	mux.HandleFunc("GET /api/v1/auth/menus", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, 0, json.RawMessage(`[
			{"id": 1, "title": "Dashboard", "path": "/dashboard"},
			{"id": 2, "title": "Projects", "path": "/projects", "permission_code": "project:view"},
			{"id": 3, "title": "Code Review", "path": "/code-review", "permission_code": "review:view"}
		]`))
	})
	mux.HandleFunc("GET /api/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0, "message": "ok",
			"data":  json.RawMessage(`[{"id": 1, "name": "gateway"}]`),
			"total": 1, "page": 1, "page_size": 10,
		})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, 0, nil)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	stop := func() { _ = srv.Close() }
	return ln.Addr().String(), stop, nil
}
