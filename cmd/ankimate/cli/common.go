package cli

import (
	"fmt"
	"os"

	"github.com/ankimate/ankimate/internal/anki"
	"github.com/ankimate/ankimate/internal/browse"
	"github.com/ankimate/ankimate/internal/compaction"
	"github.com/ankimate/ankimate/internal/config"
	"github.com/ankimate/ankimate/internal/credential"
	"github.com/ankimate/ankimate/internal/guard"
	"github.com/ankimate/ankimate/internal/observe"
	"github.com/ankimate/ankimate/internal/provider"
	"github.com/ankimate/ankimate/internal/store"
)

// app bundles the wired services every command works with.
type app struct {
	cfg       *config.Config
	obs       *observe.Observer
	store     *store.SQLiteStore
	client    *anki.Client
	completer provider.Completer
	coord     *compaction.Coordinator
	browser   *browse.Browser
}

// newApp loads config and wires the full service graph. withProvider
// controls whether an LLM backend is required; listing commands work
// without one.
func newApp(withProvider bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	var obs *observe.Observer
	if ciMode {
		obs = observe.NewJSON(os.Stderr, verbose)
	} else {
		obs = observe.New(os.Stderr, verbose)
	}

	storeLayer, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	client := anki.NewClient(cfg.Anki.URL)

	a := &app{
		cfg:     cfg,
		obs:     obs,
		store:   storeLayer,
		client:  client,
		browser: browse.New(client),
	}

	if withProvider {
		completer, err := buildCompleter(cfg, storeLayer)
		if err != nil {
			storeLayer.Close()
			return nil, err
		}
		a.completer = completer
		a.coord = compaction.New(
			client,
			compaction.ProviderRewriter{Completer: completer},
			compaction.NewPendingStore(),
			guard.New(cfg.Guard),
			obs,
		)
	}
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	a.obs.Close()
}

// providerName resolves the backend selection order: flag, then config.
func providerName(cfg *config.Config) string {
	if providerType != "" {
		return providerType
	}
	return cfg.Provider.Name
}

// buildCompleter constructs the selected LLM backend. API keys come
// from the config file or, preferably, from the encrypted store entry
// "<provider>.api_key".
func buildCompleter(cfg *config.Config, s *store.SQLiteStore) (provider.Completer, error) {
	name := providerName(cfg)
	model := modelName
	if model == "" {
		model = cfg.Provider.Model
	}

	apiKey := cfg.Provider.APIKey
	if apiKey == "" {
		stored, err := s.GetConfig(name + ".api_key")
		if err != nil {
			return nil, fmt.Errorf("failed to read stored api key: %w", err)
		}
		if stored != "" {
			manager, err := credential.NewManager()
			if err != nil {
				return nil, err
			}
			apiKey, err = manager.Decrypt(stored)
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt stored api key: %w", err)
			}
		}
	}

	switch name {
	case "openai":
		return provider.NewOpenAIProvider(apiKey, cfg.Provider.BaseURL, model)
	case "ollama":
		return provider.NewOllamaProvider(model)
	case "gemini":
		return provider.NewGeminiProvider(apiKey, model)
	case "anthropic":
		return provider.NewAnthropicProvider(apiKey, model)
	case "stub":
		return provider.NewStubProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// newRollbackCoordinator builds a coordinator without an LLM backend.
// Rollback reads everything it needs from the notes themselves.
func newRollbackCoordinator(a *app) *compaction.Coordinator {
	return compaction.New(a.client, nil, compaction.NewPendingStore(), guard.New(a.cfg.Guard), a.obs)
}

// fail prints an error and exits. Commands use it instead of returning
// errors so cobra does not print usage text after operational failures.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
