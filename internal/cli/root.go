package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/cache"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/version"
)

// ErrNotLoggedIn is returned by commands that need a session
var ErrNotLoggedIn = errors.New("not logged in (run 'habitual login' first)")

type Context struct {
	Config  *config.Config
	Store   storage.Provider
	Tokens  *storage.TokenStore
	Client  *api.Client
	Session *auth.Manager
	Habits  *habits.Service
	Poller  *version.Poller

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
}

// NewContext wires the services for one invocation. store must already be
// open; the session is not restored.
func NewContext(cfg *config.Config, store storage.Provider) *Context {
	tokens := storage.NewTokenStore(store)
	client := api.New(cfg.BaseURL, cfg.Timeout)
	session := auth.NewManager(tokens, client)
	client.SetTokenSource(session)

	queries := cache.New(cache.WithEnabled(session.IsAuthenticated))
	session.OnChange(func(s auth.State) {
		if s == auth.StateAnonymous {
			queries.Clear()
		}
	})

	return &Context{
		Config:  cfg,
		Store:   store,
		Tokens:  tokens,
		Client:  client,
		Session: session,
		Habits:  habits.NewService(client, queries),
		Poller:  version.NewPoller(client, version.WithInterval(cfg.VersionCheckInterval)),
		Out:     os.Stdout,
	}
}

// RequireSession fails with ErrNotLoggedIn unless the session is authenticated
func (c *Context) RequireSession() error {
	if !c.Session.IsAuthenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}
