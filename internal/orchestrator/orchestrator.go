package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bobby-s-dev/weather-now/internal/models"
	"github.com/bobby-s-dev/weather-now/internal/services"
	"go.uber.org/zap"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultMinChars = 3
)

type Resolver interface {
	ResolveByName(ctx context.Context, name string) (*models.ResolvedLocation, error)
	Suggest(ctx context.Context, partial string) []models.GeoCandidate
	ResolveByCoordinates(ctx context.Context, lat, lon float64) (*models.ResolvedLocation, error)
}

type Fetcher interface {
	FetchCurrent(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error)
}

// Timer is a pending debounce callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Options struct {
	Debounce  time.Duration
	MinChars  int
	AfterFunc AfterFunc
}

// Orchestrator owns the interactive state of one search screen and
// sequences lookups in response to user actions.
//
// Every action that starts a lookup takes a new sequence number. A result
// is applied only if its action is still the latest one, so a slow
// response can never overwrite the outcome of a later action.
type Orchestrator struct {
	resolver  Resolver
	fetcher   Fetcher
	logger    *zap.Logger
	debounce  time.Duration
	minChars  int
	afterFunc AfterFunc

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	state         models.ViewState
	seq           uint64
	queryGen      uint64
	timer         Timer
	suggestCancel context.CancelFunc
	widget        MapWidget
	subscribers   map[int]func(models.ViewState)
	nextSubID     int
	closed        bool
}

func New(resolver Resolver, fetcher Fetcher, opts Options, logger *zap.Logger) *Orchestrator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultMinChars
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		resolver:    resolver,
		fetcher:     fetcher,
		logger:      logger,
		debounce:    opts.Debounce,
		minChars:    opts.MinChars,
		afterFunc:   opts.AfterFunc,
		ctx:         ctx,
		cancel:      cancel,
		state:       models.ViewState{Mode: models.ModeText, Suggestions: []models.GeoCandidate{}},
		subscribers: make(map[int]func(models.ViewState)),
	}
}

func (o *Orchestrator) State() models.ViewState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// Subscribe registers fn to receive a copy of the state after every change.
// The returned func removes the subscription.
func (o *Orchestrator) Subscribe(fn func(models.ViewState)) func() {
	o.mu.Lock()
	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subscribers, id)
		o.mu.Unlock()
	}
}

// BindMap routes clicks on w into MapClick and uses w to show the marker.
func (o *Orchestrator) BindMap(w MapWidget) {
	o.mu.Lock()
	o.widget = w
	o.mu.Unlock()

	w.OnClick(func(ctx context.Context, lat, lon float64) {
		o.MapClick(ctx, lat, lon)
	})
}

// SetQuery records the typed text and schedules a suggestion lookup once
// typing pauses. Short queries clear the suggestion list instead.
func (o *Orchestrator) SetQuery(text string) models.ViewState {
	o.mu.Lock()
	if o.closed {
		defer o.mu.Unlock()
		return o.state.Clone()
	}

	o.state.Query = text
	o.queryGen++
	gen := o.queryGen
	o.stopSuggestLocked()

	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < o.minChars {
		o.state.Suggestions = []models.GeoCandidate{}
		o.state.SuggestionsVisible = false
	} else {
		o.timer = o.afterFunc(o.debounce, func() {
			o.runSuggest(gen, trimmed)
		})
	}

	return o.commitLocked()
}

func (o *Orchestrator) runSuggest(gen uint64, text string) {
	o.mu.Lock()
	if o.closed || gen != o.queryGen {
		o.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(o.ctx)
	o.timer = nil
	o.suggestCancel = cancel
	o.mu.Unlock()

	results := o.resolver.Suggest(ctx, text)
	cancel()

	o.mu.Lock()
	if o.closed || gen != o.queryGen {
		o.mu.Unlock()
		o.logger.Debug("Dropping suggestions for superseded query", zap.String("query", text))
		return
	}
	o.suggestCancel = nil
	o.state.Suggestions = results
	o.state.SuggestionsVisible = len(results) > 0
	o.commitLocked()
}

// SelectSuggestionAt selects the suggestion at index. Out of range indexes
// leave the state untouched and report false.
func (o *Orchestrator) SelectSuggestionAt(ctx context.Context, index int) (models.ViewState, bool) {
	o.mu.Lock()
	if index < 0 || index >= len(o.state.Suggestions) {
		defer o.mu.Unlock()
		return o.state.Clone(), false
	}
	candidate := o.state.Suggestions[index]
	o.mu.Unlock()

	return o.SelectSuggestion(ctx, candidate), true
}

// SelectSuggestion fetches weather for candidate and shows it under the
// candidate's name.
func (o *Orchestrator) SelectSuggestion(ctx context.Context, candidate models.GeoCandidate) models.ViewState {
	o.mu.Lock()
	if o.closed {
		defer o.mu.Unlock()
		return o.state.Clone()
	}
	id := o.beginLocked()
	o.state.Query = candidate.Name
	o.commitLocked()

	return o.fetchWeather(ctx, id, candidate.Location(), nil)
}

// Submit acts on the search form: the first suggestion wins if there is
// one, otherwise the typed text is resolved by name.
func (o *Orchestrator) Submit(ctx context.Context) models.ViewState {
	o.mu.Lock()
	if o.closed {
		defer o.mu.Unlock()
		return o.state.Clone()
	}
	if len(o.state.Suggestions) > 0 {
		first := o.state.Suggestions[0]
		o.mu.Unlock()
		return o.SelectSuggestion(ctx, first)
	}

	raw := o.state.Query
	name := strings.TrimSpace(raw)
	if name == "" {
		defer o.mu.Unlock()
		return o.state.Clone()
	}
	id := o.beginLocked()
	o.commitLocked()

	actx, done := o.actionContext(ctx)
	defer done()

	loc, err := o.resolver.ResolveByName(actx, name)
	if err != nil {
		return o.fail(id, err)
	}
	if loc == nil {
		return o.fail(id, services.NewCityNotFound(raw))
	}

	if _, current := o.update(id, func(s *models.ViewState) {
		s.Query = loc.Name
	}); !current {
		return o.State()
	}
	return o.fetchWeather(ctx, id, *loc, nil)
}

// MapClick shows weather for a point picked on the map. The mode returns to
// text once the lookup finishes, whatever the outcome.
func (o *Orchestrator) MapClick(ctx context.Context, lat, lon float64) models.ViewState {
	o.mu.Lock()
	if o.closed {
		defer o.mu.Unlock()
		return o.state.Clone()
	}
	widget := o.widget
	id := o.beginLocked()
	o.state.Marker = &models.Coordinate{Latitude: lat, Longitude: lon}
	o.commitLocked()

	if widget != nil {
		widget.PlaceMarker(lat, lon)
	}

	backToText := func(s *models.ViewState) {
		s.Mode = models.ModeText
	}

	actx, done := o.actionContext(ctx)
	defer done()

	loc, err := o.resolver.ResolveByCoordinates(actx, lat, lon)
	if err == nil && loc == nil {
		err = services.NewCoordinatesNotFound(lat, lon)
	}
	if err != nil {
		view, _ := o.update(id, func(s *models.ViewState) {
			s.Loading = false
			s.Error = services.UserMessage(err)
			backToText(s)
		})
		return view
	}

	clicked := *loc
	clicked.Latitude, clicked.Longitude = lat, lon
	return o.fetchWeather(ctx, id, clicked, func(s *models.ViewState) {
		if s.Report != nil {
			s.Query = clicked.Name
		}
		backToText(s)
	})
}

func (o *Orchestrator) SetMode(mode models.Mode) models.ViewState {
	o.mu.Lock()
	o.state.Mode = mode
	return o.commitLocked()
}

func (o *Orchestrator) DismissSuggestions() models.ViewState {
	o.mu.Lock()
	o.state.SuggestionsVisible = false
	return o.commitLocked()
}

// ShowSuggestions re-opens the list, e.g. when the input regains focus.
func (o *Orchestrator) ShowSuggestions() models.ViewState {
	o.mu.Lock()
	o.state.SuggestionsVisible = len(o.state.Suggestions) > 0
	return o.commitLocked()
}

// Close stops the debounce timer, cancels in-flight lookups and discards
// any result that arrives afterwards. It is safe to call more than once.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.stopSuggestLocked()
	o.subscribers = make(map[int]func(models.ViewState))
	o.mu.Unlock()

	o.cancel()
}

func (o *Orchestrator) fetchWeather(ctx context.Context, id uint64, loc models.ResolvedLocation, after func(*models.ViewState)) models.ViewState {
	actx, done := o.actionContext(ctx)
	defer done()

	snapshot, err := o.fetcher.FetchCurrent(actx, loc.Latitude, loc.Longitude)

	view, _ := o.update(id, func(s *models.ViewState) {
		s.Loading = false
		if err != nil {
			s.Error = services.UserMessage(err)
		} else {
			s.Report = &models.WeatherReport{Location: loc, Weather: *snapshot}
		}
		if after != nil {
			after(s)
		}
	})
	return view
}

func (o *Orchestrator) fail(id uint64, err error) models.ViewState {
	view, _ := o.update(id, func(s *models.ViewState) {
		s.Loading = false
		s.Error = services.UserMessage(err)
	})
	return view
}

// update applies mutate only if id is still the latest action.
func (o *Orchestrator) update(id uint64, mutate func(*models.ViewState)) (models.ViewState, bool) {
	o.mu.Lock()
	if o.closed || id != o.seq {
		defer o.mu.Unlock()
		o.logger.Debug("Dropping result of superseded action", zap.Uint64("action", id))
		return o.state.Clone(), false
	}
	mutate(&o.state)
	return o.commitLocked(), true
}

// beginLocked starts a new action: pending suggestion work is cancelled,
// the list is hidden, and the previous result and error are cleared.
func (o *Orchestrator) beginLocked() uint64 {
	o.seq++
	o.queryGen++
	o.stopSuggestLocked()

	o.state.SuggestionsVisible = false
	o.state.Loading = true
	o.state.Error = ""
	o.state.Report = nil
	return o.seq
}

func (o *Orchestrator) stopSuggestLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if o.suggestCancel != nil {
		o.suggestCancel()
		o.suggestCancel = nil
	}
}

// commitLocked snapshots the state, releases mu and notifies subscribers.
func (o *Orchestrator) commitLocked() models.ViewState {
	view := o.state.Clone()
	subs := make([]func(models.ViewState), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(view.Clone())
	}
	return view
}

// actionContext derives a context that is also cancelled by Close.
func (o *Orchestrator) actionContext(ctx context.Context) (context.Context, func()) {
	actx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(o.ctx, cancel)
	return actx, func() {
		stop()
		cancel()
	}
}
