package cli

import (
	"fmt"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ikhlasbhojani/learnme/internal/config"
	"github.com/ikhlasbhojani/learnme/internal/crawler"
	"github.com/ikhlasbhojani/learnme/internal/fetcher"
	"github.com/ikhlasbhojani/learnme/internal/httpclient"
	"github.com/ikhlasbhojani/learnme/internal/logger"
	"github.com/ikhlasbhojani/learnme/internal/renderer"
	"github.com/ikhlasbhojani/learnme/internal/service"
	"github.com/ikhlasbhojani/learnme/internal/storage"
	"github.com/ikhlasbhojani/learnme/internal/titles"
	"github.com/ikhlasbhojani/learnme/internal/validator"
)

// app bundles everything a command needs after wiring.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	extractor *service.Extractor
	store     *storage.Store
}

// newApp wires the full pipeline from configuration. withStore controls
// whether the SQLite run store is opened; the one-shot extract command
// runs without persistence.
func newApp(withStore bool) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client := httpclient.New(httpclient.Options{
		Timeout:     cfg.Crawler.Timeout,
		Fingerprint: cfg.HTTP.Fingerprint,
	})

	f := fetcher.New(client, cfg.Crawler.Timeout)
	engine := crawler.New(
		f,
		titles.New(client),
		validator.New(client, validator.NewCache(validator.MaxGlobalCacheSize)),
		log,
	)

	var detector service.SPADetector
	var browser service.BrowserExtractor
	if cfg.Browser.Enabled {
		detector = renderer.NewDetector(&http.Client{Timeout: cfg.Crawler.Timeout}, log)
		browser = renderer.NewBrowser(log)
	}

	var store *storage.Store
	if withStore {
		store, err = storage.New(filepath.Join(cfg.DataDir, "learnme.db"))
		if err != nil {
			return nil, fmt.Errorf("open run store: %w", err)
		}
	}

	opts := service.Options{
		Engine:         engine,
		Detector:       detector,
		Browser:        browser,
		Fetcher:        f,
		BrowserTimeout: cfg.Browser.Timeout,
		Log:            log,
	}
	if store != nil {
		opts.Store = store
	}

	return &app{
		cfg:       cfg,
		log:       log,
		extractor: service.New(opts),
		store:     store,
	}, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	renderer.Shutdown()
	_ = a.log.Sync()
}
