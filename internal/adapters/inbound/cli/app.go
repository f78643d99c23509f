package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/repograde/repograde/internal/adapters/outbound/cache"
	"github.com/repograde/repograde/internal/adapters/outbound/config"
	"github.com/repograde/repograde/internal/adapters/outbound/execrunner"
	"github.com/repograde/repograde/internal/adapters/outbound/github"
	"github.com/repograde/repograde/internal/adapters/outbound/gitrepo"
	"github.com/repograde/repograde/internal/adapters/outbound/history"
	"github.com/repograde/repograde/internal/adapters/outbound/linters"
	"github.com/repograde/repograde/internal/adapters/outbound/llm"
	"github.com/repograde/repograde/internal/adapters/outbound/logging"
	"github.com/repograde/repograde/internal/adapters/outbound/retry"
	"github.com/repograde/repograde/internal/application"
	"github.com/repograde/repograde/internal/domain"
)

type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// app holds the loaded configuration and the long-lived resources every
// command shares. close releases them.
type app struct {
	cfg    domain.Config
	logger zerolog.Logger
	store  *history.SQLiteStore
	cache  *cache.Store
}

func loadApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	cfg, err := config.New().Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	if !cfg.Store.Disabled {
		if a.store, err = history.Open(cfg.Store.Path); err != nil {
			return nil, err
		}
	}
	if cfg.Cache.Enabled {
		if a.cache, err = cache.Open(cfg.Cache.Path, cfg.Cache.TTL); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("closing result store")
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("closing cache")
		}
	}
}

// resultStore returns the store as the port, keeping a nil store a nil interface.
func (a *app) resultStore() domain.ResultStore {
	if a.store == nil {
		return nil
	}
	return a.store
}

// providers builds the repository provider chain: GitHub (or a local git
// checkout when local is set), then the content cache, then retries.
func (a *app) providers(local string) (domain.ProviderFactory, error) {
	var factory domain.ProviderFactory
	if local != "" {
		if !gitrepo.IsGitRepo(local) {
			return nil, fmt.Errorf("%s is not a git repository", local)
		}
		factory = gitrepo.Factory(local, a.logger)
	} else {
		var opts []github.Option
		if a.cfg.GitHub.BaseURL != "" {
			opts = append(opts, github.WithBaseURL(a.cfg.GitHub.BaseURL))
		}
		factory = github.Factory(domain.ResolveSecret(a.cfg.GitHub.Token), a.logger, opts...)
	}

	if a.cache != nil {
		factory = a.cache.WrapFactory(factory, a.logger)
	}
	return retry.WrapFactory(factory, retry.PolicyFrom(a.cfg.Retry), a.logger), nil
}

func (a *app) analyzeService(local string) (*application.AnalyzeService, error) {
	factory, err := a.providers(local)
	if err != nil {
		return nil, err
	}
	runner := execrunner.New(0, a.logger, localBinDirs()...)
	analyzers := linters.All(linters.Deps{Runner: runner, Config: a.cfg, Logger: a.logger})
	return application.NewAnalyzeService(factory, analyzers, a.resultStore(), a.cfg.Concurrency, a.logger), nil
}

func (a *app) generator() (domain.TextGenerator, error) {
	gen, err := llm.New(a.cfg.LLM, domain.ResolveSecret(a.cfg.LLM.APIKey), a.logger)
	if err != nil {
		return nil, err
	}
	return retry.WrapGenerator(gen, retry.PolicyFrom(a.cfg.Retry), a.logger), nil
}

// dynamicService wires the dynamic flow. requireGenerator is false for
// commands that never generate text (commit, watch).
func (a *app) dynamicService(local string, requireGenerator bool) (*application.DynamicService, error) {
	factory, err := a.providers(local)
	if err != nil {
		return nil, err
	}
	var gen domain.TextGenerator
	if requireGenerator {
		if gen, err = a.generator(); err != nil {
			return nil, err
		}
	}
	return application.NewDynamicService(factory, gen, a.resultStore(), a.cfg, a.logger), nil
}

// localBinDirs is ./node_modules/.bin, searched before PATH so a project-local
// toolchain wins over global installs.
func localBinDirs() []string {
	wd, err := os.Getwd()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(wd, "node_modules", ".bin")}
}

// repoArg resolves the repository argument. With --local and no argument the
// checkout directory names the repository.
func repoArg(args []string, local string) (domain.RepoRef, error) {
	if len(args) > 0 {
		return domain.ParseRepoRef(args[0])
	}
	if local == "" {
		return domain.RepoRef{}, errors.New("repository argument required (owner/name)")
	}
	abs, err := filepath.Abs(local)
	if err != nil {
		return domain.RepoRef{}, fmt.Errorf("resolving path: %w", err)
	}
	return domain.RepoRef{Owner: "local", Name: filepath.Base(abs)}, nil
}
