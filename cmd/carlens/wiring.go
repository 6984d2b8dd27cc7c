package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"carlens/internal/cache"
	"carlens/internal/config"
	"carlens/internal/domain"
	"carlens/internal/lookup"
	"carlens/internal/unsplash"
	"carlens/internal/vpic"
)

// buildAggregator wires both API clients, their caches and the image picker.
// The returned func releases the caches.
func buildAggregator(cfg *config.Config, logger *zap.Logger) (*lookup.Aggregator, func(), error) {
	hc := &http.Client{Timeout: cfg.Timeout()}
	vpicOpts := []vpic.Option{vpic.WithHTTPClient(hc)}
	unsplashOpts := []unsplash.Option{
		unsplash.WithHTTPClient(hc),
		unsplash.WithPerPage(cfg.ImagesPerPage),
	}

	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTL)
		models, err := cache.New("vpic-models", cfg.Cache.MaxCost, ttl,
			func(v []domain.ModelRecord) int64 { return int64(len(v)) * 64 })
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, models.Close)

		types, err := cache.New("vpic-types", cfg.Cache.MaxCost, ttl,
			func(v []domain.VehicleTypeRecord) int64 { return int64(len(v)) * 32 })
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, types.Close)

		photos, err := cache.New("unsplash-search", cfg.Cache.MaxCost, ttl,
			func(v []domain.ImageResult) int64 { return int64(len(v)) * 256 })
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, photos.Close)

		vpicOpts = append(vpicOpts, vpic.WithCaches(models, types))
		unsplashOpts = append(unsplashOpts, unsplash.WithCache(photos))
	}

	if cfg.UnsplashAccessKey == "" {
		logger.Warn("no Unsplash access key configured; image lookups will fail",
			zap.String("env", config.EnvAccessKey))
	}

	agg := lookup.New(
		vpic.NewClient(cfg.VPICURL, vpicOpts...),
		unsplash.NewClient(cfg.UnsplashURL, cfg.UnsplashAccessKey, unsplashOpts...),
		lookup.Options{
			Kind:       cfg.Records,
			MaxResults: cfg.MaxResults,
			Picker:     lookup.PickerFor(cfg.ImagePick),
			Timeout:    cfg.Timeout(),
			Logger:     logger,
		},
	)
	return agg, closeAll, nil
}
