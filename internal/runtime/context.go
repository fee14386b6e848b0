package runtime

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/go-github/v62/github"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/authz"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/config"
	githubpkg "github.com/department-of-veterans-affairs/actions-runner-manager/internal/github"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/lookup"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/output"
)

// Confirmer asks the user to confirm a destructive operation
type Confirmer func(message string) (bool, error)

// Context provides access to configuration, clients and output for commands
type Context struct {
	context.Context

	Config *config.Config
	Splog  *output.Splog
	// Out receives command results, one item per line
	Out io.Writer

	// UserClient is authenticated with the caller's token and is used for authorization
	UserClient *github.Client
	// AdminClient performs runner group operations. It is the app client when
	// app credentials are configured and the user client otherwise.
	AdminClient *github.Client

	// Confirm is nil when prompting is disabled
	Confirm Confirmer
}

// NewContext creates a context from already constructed clients
func NewContext(ctx context.Context, cfg *config.Config, splog *output.Splog, userClient, adminClient *github.Client) *Context {
	if adminClient == nil {
		adminClient = userClient
	}
	return &Context{
		Context:     ctx,
		Config:      cfg,
		Splog:       splog,
		Out:         os.Stdout,
		UserClient:  userClient,
		AdminClient: adminClient,
	}
}

// New builds the clients described by cfg for the given token
func New(ctx context.Context, cfg *config.Config, splog *output.Splog, token string) (*Context, error) {
	baseURL, err := cfg.BaseURL()
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}

	opts := githubpkg.Options{
		BaseURL: baseURL,
		Retries: cfg.Retries,
		Logger:  splog,
	}

	userClient, err := githubpkg.NewTokenClient(token, opts)
	if err != nil {
		return nil, err
	}

	var adminClient *github.Client
	if cfg.App.Configured() {
		splog.Debug("Using GitHub App %d for runner group operations", cfg.App.AppID)
		adminClient, err = githubpkg.NewAppClient(githubpkg.AppCredentials{
			AppID:          cfg.App.AppID,
			InstallationID: cfg.App.InstallationID,
			ClientID:       cfg.App.ClientID,
			ClientSecret:   cfg.App.ClientSecret,
			PrivateKeyPath: cfg.App.PrivateKeyPath,
		}, opts)
		if err != nil {
			return nil, err
		}
	}

	return NewContext(ctx, cfg, splog, userClient, adminClient), nil
}

// Org returns the configured organization
func (c *Context) Org() string {
	return c.Config.Org
}

// Guard returns the authorization guard, bound to the caller's own token
func (c *Context) Guard() *authz.Guard {
	return authz.NewGuard(c.UserClient, c.Org())
}

// Resolver returns the name to ID resolver
func (c *Context) Resolver() *lookup.Resolver {
	return lookup.NewResolver(c.AdminClient, c.Org())
}

// Println writes one line of command output
func (c *Context) Println(args ...interface{}) {
	_, _ = fmt.Fprintln(c.Out, args...)
}
