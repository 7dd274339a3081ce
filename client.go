// Package happythoughts is the data and synchronization layer of the Happy
// Thoughts client: everything between the UI and the REST backend. It wires
// the transport, the auth store, the feed store and the like controller
// into one Client the presentation layer drives.
package happythoughts

import (
	"context"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/apiclient"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/auth"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/config"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/domain"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/health"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/kvstore"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/likes"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/logger"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/store"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/transport"
)

type Client struct {
	cfg *config.Config
	kv  *kvstore.Store

	Auth     *auth.Store
	API      *apiclient.Client
	Likes    *likes.Controller
	Thoughts *store.Store
}

// New builds a fully wired client from cfg (use config.Default() or
// config.MustLoad).
func New(cfg *config.Config) (*Client, error) {
	logger.Initialize(cfg.LogLevel, cfg.LogJSON)

	kv, err := kvstore.Open(cfg.StatePath)
	if err != nil {
		return nil, err
	}

	t := transport.New(cfg.ApiBaseURL)
	if cfg.RequestTimeout > 0 {
		t.Timeout = cfg.RequestTimeout
	}
	if cfg.MaxRetries > 0 {
		t.MaxRetries = cfg.MaxRetries
	}
	if cfg.BackoffCap > 0 {
		t.BackoffCap = cfg.BackoffCap
	}

	authStore := auth.New(kv)
	api := apiclient.New(t, authStore)
	controller := likes.NewController(api, authStore, likes.NewLikedIds(kv))
	thoughts := store.New(api, authStore, controller, store.Options{
		PageLimit:       cfg.PageLimit,
		NotificationTTL: cfg.NotificationTTL,
		HighlightTTL:    cfg.HighlightTTL,
	})

	return &Client{
		cfg:      cfg,
		kv:       kv,
		Auth:     authStore,
		API:      api,
		Likes:    controller,
		Thoughts: thoughts,
	}, nil
}

// Login authenticates against the backend, installs the returned token and
// seeds the server-confirmed liked set.
func (c *Client) Login(ctx context.Context, username domain.Username, password domain.Password) error {
	result, err := c.API.Login(ctx, domain.Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	if _, err := c.Auth.Login(result.Token); err != nil {
		return err
	}
	c.seedLiked(ctx)
	return nil
}

// Signup registers a new account and logs it in.
func (c *Client) Signup(ctx context.Context, username domain.Username, password domain.Password) error {
	result, err := c.API.Signup(ctx, domain.Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	if _, err := c.Auth.Login(result.Token); err != nil {
		return err
	}
	return nil
}

func (c *Client) Logout() {
	c.Auth.Logout()
}

func (c *Client) seedLiked(ctx context.Context) {
	liked, err := c.API.LikedThoughts(ctx)
	if err != nil {
		logger.Log.Warn("could not fetch liked thoughts", "error", err)
		return
	}
	ids := make([]domain.ThoughtId, 0, len(liked))
	for i := range liked {
		ids = append(ids, liked[i].Id)
	}
	c.Likes.SeedServerLiked(ids)
}

// WatchColdStart starts the health watcher in the background when the feed
// store has flagged the backend as cold starting; once the backend answers,
// the flag clears and the current page is re-fetched.
func (c *Client) WatchColdStart(ctx context.Context) {
	if !c.Thoughts.ServerStarting() {
		return
	}
	watcher := health.New(c.API, c.cfg.HealthInterval, func() {
		c.Thoughts.ServiceAvailable()
		if err := c.Thoughts.Refresh(ctx); err != nil {
			logger.Log.Warn("refresh after cold start failed", "error", err)
		}
	})
	go watcher.Watch(ctx)
}

// Close releases the durable state store.
func (c *Client) Close() error {
	return c.kv.Close()
}
