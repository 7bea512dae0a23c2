// Package container provides dependency injection for fm-cli.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"io"
	"time"

	"financemonkey/fm-cli/internal/api"
	"financemonkey/fm-cli/internal/config"
	"financemonkey/fm-cli/internal/gateway"
	"financemonkey/fm-cli/internal/googleauth"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/session"
	"financemonkey/fm-cli/internal/snapshot"
	"financemonkey/fm-cli/internal/state"
	"financemonkey/fm-cli/internal/store"
	"financemonkey/fm-cli/internal/validation"
)

// Container holds all application dependencies and provides methods to access them.
// Fields are private and only reachable through getters, so dependencies
// cannot be swapped after initialization.
type Container struct {
	logger logging.Logger
	config *config.Config
	now    func() time.Time

	session   *session.Service
	navigator *gateway.RouteRecorder
	gateway   *gateway.Gateway
	client    *api.Client

	tree      *state.Tree
	stores    *store.Stores
	snapshot  *snapshot.Store
	unpersist func()
}

// NewContainer creates and wires all application dependencies.
//
// The session is restored from the session file. When the snapshot is
// enabled and a user is signed in, the tree starts hydrated from it and
// every later commit is persisted.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	now := time.Now

	if err := validation.PrivateFile(cfg.Session.File); err != nil {
		logger.WithError(err).Warn("Session file is readable by other users")
	}
	sess, err := session.NewService(session.NewFileStorage(cfg.Session.File), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	navigator := gateway.NewRouteRecorder(logger)
	gw, err := gateway.New(gateway.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.HTTP.Timeout,
	}, sess, navigator, logger)
	if err != nil {
		return nil, err
	}
	sess.SetRefresher(gw)
	client := api.NewClient(gw)

	tree := state.NewTree(state.Initial(models.DefaultDateRange(now())))
	stores := store.New(tree, client, sess, now, logger)

	c := &Container{
		logger:    logger,
		config:    cfg,
		now:       now,
		session:   sess,
		navigator: navigator,
		gateway:   gw,
		client:    client,
		tree:      tree,
		stores:    stores,
	}

	if cfg.Snapshot.Enabled {
		if err := c.openSnapshot(); err != nil {
			// The snapshot only speeds things up; run without it.
			logger.WithError(err).Warn("Offline snapshot unavailable",
				logging.F(logging.FieldFile, cfg.Snapshot.File))
		}
	}

	logger.Debug("Container initialized",
		logging.F("api", gw.BaseURL()),
		logging.F(logging.FieldUser, sess.Status().Authenticated),
		logging.F("snapshot", c.snapshot != nil))

	return c, nil
}

func (c *Container) openSnapshot() error {
	snap, err := snapshot.Open(c.config.Snapshot.File, c.logger)
	if err != nil {
		return err
	}

	if c.session.IsAuthenticated() {
		saved, ok, err := snap.Load(context.Background())
		if err != nil {
			c.logger.WithError(err).Warn("Ignoring unreadable snapshot")
		} else if ok {
			c.tree.Hydrate(saved)
		}
	} else if err := snap.Clear(context.Background()); err != nil {
		c.logger.WithError(err).Warn("Failed to clear snapshot")
	}

	c.snapshot = snap
	c.unpersist = snap.Persist(c.tree)
	return nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetSession returns the session service.
func (c *Container) GetSession() *session.Service {
	return c.session
}

// GetNavigator returns the recorder of forced navigations.
func (c *Container) GetNavigator() *gateway.RouteRecorder {
	return c.navigator
}

// GetGateway returns the HTTP gateway.
func (c *Container) GetGateway() *gateway.Gateway {
	return c.gateway
}

// GetClient returns the typed API client.
func (c *Container) GetClient() *api.Client {
	return c.client
}

// GetTree returns the state tree.
func (c *Container) GetTree() *state.Tree {
	return c.tree
}

// GetStores returns the resource stores.
func (c *Container) GetStores() *store.Stores {
	return c.stores
}

// GetSnapshot returns the offline snapshot, or nil when it is disabled or
// could not be opened.
func (c *Container) GetSnapshot() *snapshot.Store {
	return c.snapshot
}

// Now returns the container's clock.
func (c *Container) Now() time.Time {
	return c.now()
}

// GoogleFlow builds the Google sign-in flow from the configured client.
// Prompts are written to out.
func (c *Container) GoogleFlow(out io.Writer) (*googleauth.Flow, error) {
	return googleauth.NewFlow(googleauth.Config{
		ClientID:     c.config.Google.ClientID,
		ClientSecret: c.config.Google.ClientSecret,
		RedirectPort: c.config.Google.RedirectPort,
	}, out, c.logger)
}

// Close stops persistence and releases the stores and the snapshot.
func (c *Container) Close() error {
	if c.unpersist != nil {
		c.unpersist()
	}
	c.stores.Close()
	if c.snapshot != nil {
		if err := c.snapshot.Close(); err != nil {
			return fmt.Errorf("failed to close snapshot: %w", err)
		}
	}
	c.logger.Debug("Container closed")
	return nil
}
