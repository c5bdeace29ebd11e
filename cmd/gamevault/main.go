package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/drake/gamevault/internal/assetcache"
	"github.com/drake/gamevault/internal/config"
	"github.com/drake/gamevault/internal/domain"
	"github.com/drake/gamevault/internal/kvstore"
	"github.com/drake/gamevault/internal/loader"
	"github.com/drake/gamevault/internal/log"
	"github.com/drake/gamevault/internal/quota"
	"github.com/drake/gamevault/internal/search"
	"github.com/drake/gamevault/internal/state"
	"github.com/drake/gamevault/internal/steam"
	"github.com/drake/gamevault/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var (
		showVersion bool
		cacheOnly   bool
		identifier  string
		clearCache  bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&cacheOnly, "cache-only", false, "replay the library from cache without network calls")
	flag.StringVar(&identifier, "identifier", "", "profile name, URL, or numeric ID to load")
	flag.BoolVar(&clearCache, "clear-cache", false, "delete all cached data and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("gamevault %s\n", Version)
		return
	}

	if err := run(cacheOnly, identifier, clearCache); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cacheOnly bool, identifier string, clearCache bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting gamevault", "version", Version)

	if clearCache {
		if err := config.ClearCache(cfg); err != nil {
			return err
		}
		fmt.Println("Cache cleared.")
		return nil
	}

	// Cache-only runs don't need credentials; live runs do.
	if !cacheOnly && !cfg.IsConfigured() {
		if err := runSetupFlow(cfg); err != nil {
			return err
		}
	}

	if identifier == "" {
		identifier = cfg.Steam.Identifier
	}
	if identifier == "" {
		identifier, err = promptIdentifier(cfg)
		if err != nil {
			return err
		}
	}

	// Shared, long-lived cache instances
	cache, err := kvstore.New(cfg.Cache.Dir, logger)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer cache.Close()

	var estimator domain.QuotaEstimator = quota.Null{}
	if cfg.Cache.Dir != "" {
		estimator = quota.NewDirEstimator(cfg.Cache.Dir, cfg.Quota.BudgetBytes)
	}
	assets, err := assetcache.New(cfg.Cache.Dir, estimator, logger)
	if err != nil {
		return fmt.Errorf("failed to open asset cache: %w", err)
	}
	defer assets.Close()

	stateStore := state.New(logger)
	searchSvc := search.New(logger)

	loaderCfg := loader.Config{
		MaxItems:   cfg.Loader.MaxItems,
		CatalogTTL: cfg.Cache.CatalogTTL,
		DetailTTL:  cfg.Cache.DetailTTL,
	}

	provider := steam.NewClient(cfg.Steam.APIKey, logger)
	live := loader.NewProgressive(provider, cache, assets, stateStore, loaderCfg, logger)
	replay := loader.NewCacheOnly(cache, stateStore, loaderCfg, logger)

	model := tui.NewModel(live, replay, stateStore, assets, searchSvc, identifier, cacheOnly)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI", "identifier", identifier, "cacheOnly", cacheOnly)

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow prompts for the Web API key on first run.
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to gamevault!")
	fmt.Println()
	fmt.Println("A Steam Web API key is required for live loads.")
	fmt.Println("Get one at https://steamcommunity.com/dev/apikey")
	fmt.Println()

	fmt.Print("API key: ")
	keyBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	fmt.Println()

	apiKey := strings.TrimSpace(string(keyBytes))
	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	cfg.Steam.APIKey = apiKey
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	return nil
}

// promptIdentifier asks which library to load and offers to remember it.
func promptIdentifier(cfg *config.Config) (string, error) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Profile name, URL, or numeric ID: ")
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	identifier := strings.TrimSpace(input)
	if identifier == "" {
		return "", fmt.Errorf("identifier cannot be empty")
	}

	fmt.Print("Remember this profile? [y/N]: ")
	answer, err := reader.ReadString('\n')
	if err == nil && strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
		cfg.Steam.Identifier = identifier
		if err := config.SaveConfig(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not save config: %v\n", err)
		}
	}

	return identifier, nil
}
