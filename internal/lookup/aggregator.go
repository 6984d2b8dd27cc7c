// Package lookup runs the two independent lookups behind one make selection.
package lookup

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"carlens/internal/domain"
)

// RecordsSource lists vehicle records for a make
type RecordsSource interface {
	ModelsForMake(ctx context.Context, carMake string) ([]domain.ModelRecord, error)
	VehicleTypesForMake(ctx context.Context, carMake string) ([]domain.VehicleTypeRecord, error)
}

// ImageSource searches photos for a free-text query
type ImageSource interface {
	SearchPhotos(ctx context.Context, query string) ([]domain.ImageResult, error)
}

// Options tune an Aggregator
type Options struct {
	Kind       domain.RecordsKind
	MaxResults int
	Picker     Picker
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Aggregator turns each lookup's outcome into a token-tagged event.
// Failures never escape as errors; they become *FailedEvent values.
type Aggregator struct {
	records RecordsSource
	images  ImageSource
	kind    domain.RecordsKind
	limit   int
	picker  Picker
	timeout time.Duration
	log     *zap.Logger
}

// New creates an Aggregator
func New(records RecordsSource, images ImageSource, opts Options) *Aggregator {
	a := &Aggregator{
		records: records,
		images:  images,
		kind:    opts.Kind,
		limit:   opts.MaxResults,
		picker:  opts.Picker,
		timeout: opts.Timeout,
		log:     opts.Logger,
	}
	if !a.kind.Valid() {
		a.kind = domain.RecordsModels
	}
	if a.limit <= 0 {
		a.limit = 10
	}
	if a.picker == nil {
		a.picker = RandomPicker{}
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	a.log = a.log.Named("lookup")
	return a
}

// Kind reports which records this Aggregator looks up
func (a *Aggregator) Kind() domain.RecordsKind {
	return a.kind
}

func (a *Aggregator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return context.WithCancel(ctx)
}

// Records runs the records branch for one cycle
func (a *Aggregator) Records(ctx context.Context, token domain.Token, carMake string) domain.BranchEvent {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	log := a.log.With(zap.Uint64("token", uint64(token)), zap.String("make", carMake), zap.String("kind", string(a.kind)))

	var (
		records []domain.Record
		err     error
	)
	switch a.kind {
	case domain.RecordsTypes:
		var types []domain.VehicleTypeRecord
		types, err = a.records.VehicleTypesForMake(ctx, carMake)
		records = domain.TypesToRecords(types, a.limit)
	default:
		var models []domain.ModelRecord
		models, err = a.records.ModelsForMake(ctx, carMake)
		records = domain.ModelsToRecords(models, a.limit)
	}

	if err != nil {
		logFailure(log, "records lookup failed", err)
		return domain.RecordsFailedEvent{
			Token:   token,
			Kind:    domain.RequestFailed,
			Message: domain.RecordsMessage(a.kind, domain.RequestFailed),
			Err:     err,
		}
	}
	if len(records) == 0 {
		log.Debug("records lookup returned nothing")
		return domain.RecordsFailedEvent{
			Token:   token,
			Kind:    domain.NoResults,
			Message: domain.RecordsMessage(a.kind, domain.NoResults),
		}
	}

	log.Debug("records lookup succeeded", zap.Int("count", len(records)))
	return domain.RecordsSucceededEvent{Token: token, Records: records}
}

// Image runs the image branch for one cycle
func (a *Aggregator) Image(ctx context.Context, token domain.Token, carMake string) domain.BranchEvent {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	log := a.log.With(zap.Uint64("token", uint64(token)), zap.String("make", carMake))

	page, err := a.images.SearchPhotos(ctx, carMake)
	if err != nil {
		logFailure(log, "image lookup failed", err)
		return domain.ImageFailedEvent{
			Token:   token,
			Kind:    domain.RequestFailed,
			Message: domain.ImageMessage(domain.RequestFailed),
			Err:     err,
		}
	}
	if len(page) == 0 {
		log.Debug("image lookup returned nothing")
		return domain.ImageFailedEvent{
			Token:   token,
			Kind:    domain.NoResults,
			Message: domain.ImageMessage(domain.NoResults),
		}
	}

	image := a.picker.Pick(page)
	log.Debug("image lookup succeeded", zap.Int("page", len(page)), zap.String("url", image.URL))
	return domain.ImageSucceededEvent{Token: token, Image: image}
}

// logFailure keeps cancellations of superseded cycles out of the warnings
func logFailure(log *zap.Logger, msg string, err error) {
	if errors.Is(err, context.Canceled) {
		log.Debug(msg, zap.Error(err))
		return
	}
	log.Warn(msg, zap.Error(err))
}

// Fetch starts both branches without ordering between them and hands each
// outcome to apply as soon as it settles. It returns once both have settled.
// apply may be called from two goroutines at once.
func (a *Aggregator) Fetch(ctx context.Context, token domain.Token, carMake string, apply func(domain.BranchEvent)) {
	var g errgroup.Group
	g.Go(func() error {
		apply(a.Records(ctx, token, carMake))
		return nil
	})
	g.Go(func() error {
		apply(a.Image(ctx, token, carMake))
		return nil
	})
	_ = g.Wait()
}
