package browse

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/s0up4200/marquee/catalog"
)

// Progress is a snapshot of the current browsing session
type Progress struct {
	List             catalog.ListKind
	Selected         bool
	Published        int
	PublishedPages   int
	HighestRequested int
	TotalPages       int
	PageSize         int
	MaxVisible       int
	Failed           bool
}

type subscription struct {
	id  uint64
	sub Subscriber
}

// itemFetch is an outstanding detail or poster fetch. seq tells a late
// completion of a cancelled fetch apart from a newer one for the same id.
type itemFetch struct {
	seq    uint64
	cancel context.CancelFunc
}

// Service browses paginated movie lists. Public methods may be called from
// any goroutine; all session state is mutated on a single owner goroutine
// that receives work through a mailbox, while fetches run on a worker pool.
type Service struct {
	client Catalog
	logger zerolog.Logger
	opts   serviceOptions
	genres *GenreIndex

	ctx       context.Context
	cancel    context.CancelFunc
	inbox     *mailbox
	pool      WorkerPool
	done      chan struct{}
	closeOnce sync.Once
	nextSub   atomic.Uint64

	// owned by the run goroutine
	pages           *PageAggregator
	tracker         *VisibilityTracker
	subs            []subscription
	index           map[int]int
	postersInFlight map[int]itemFetch
	detailsInFlight map[int]itemFetch
	fetchSeq        uint64
	genresReady     bool
	lastGenres      []catalog.Genre

	// written by the run goroutine only
	mu        sync.RWMutex
	progress  Progress
	published []catalog.Item
	details   map[int]catalog.Detail
}

// New creates a service and starts its owner goroutine, its fetch workers
// and the initial genre taxonomy load
func New(client Catalog, logger zerolog.Logger, opts ...Option) *Service {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	pages := NewPageAggregator(o.maxPages)

	s := &Service{
		client:          client,
		logger:          logger,
		opts:            o,
		genres:          NewGenreIndex(client, logger),
		ctx:             ctx,
		cancel:          cancel,
		inbox:           newMailbox(),
		pool:            NewWorkerPool(o.workers),
		done:            make(chan struct{}),
		pages:           pages,
		tracker:         NewVisibilityTracker(pages, o.prefetchThreshold),
		index:           make(map[int]int),
		postersInFlight: make(map[int]itemFetch),
		detailsInFlight: make(map[int]itemFetch),
		details:         make(map[int]catalog.Detail),
	}

	s.genres.OnLoad(func(genres []catalog.Genre) {
		s.post(func() { s.genresLoaded(genres) })
	})

	go s.run()

	s.submit(func() {
		if _, err := s.genres.Load(s.ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Genre filtering unavailable")
		}
	})

	return s
}

func (s *Service) run() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.inbox.signal:
			for _, fn := range s.inbox.drain() {
				if s.ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}
}

// Close stops the service. Outstanding fetches are cancelled and their
// completions dropped. Close must not be called from a notification.
func (s *Service) Close(ctx context.Context) error {
	var err error

	s.closeOnce.Do(func() {
		s.cancel()
		s.inbox.close()
		err = s.pool.Stop(ctx)

		select {
		case <-s.done:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
		}

		s.logger.Debug().Msg("Browsing service closed")
	})

	return err
}

func (s *Service) post(fn func()) error {
	if !s.inbox.post(fn) {
		return ErrClosed
	}
	return nil
}

func (s *Service) submit(work func()) {
	if err := s.pool.Submit(work); err != nil {
		s.logger.Debug().Err(err).Msg("Fetch not scheduled")
	}
}

// Subscribe registers sub for notifications and returns a function that
// removes it again. If the genre taxonomy has already loaded, sub receives
// OnGenresReady right away.
func (s *Service) Subscribe(sub Subscriber) func() {
	id := s.nextSub.Add(1)
	s.post(func() {
		s.subs = append(s.subs, subscription{id: id, sub: sub})
		if s.genresReady {
			sub.OnGenresReady(cloneGenres(s.lastGenres))
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.post(func() { s.unsubscribe(id) })
		})
	}
}

func (s *Service) unsubscribe(id uint64) {
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}

	if len(s.subs) == 0 {
		s.cancelItemFetches()
	}
}

// cancelItemFetches abandons every detail and poster fetch. Nobody is left
// to receive their results, so their completions are dropped.
func (s *Service) cancelItemFetches() {
	n := len(s.postersInFlight) + len(s.detailsInFlight)
	if n == 0 {
		return
	}

	for id, f := range s.postersInFlight {
		f.cancel()
		delete(s.postersInFlight, id)
	}
	for id, f := range s.detailsInFlight {
		f.cancel()
		delete(s.detailsInFlight, id)
	}
	s.logger.Debug().Int("count", n).Msg("Cancelled item fetches without subscribers")
}

// startItemFetch registers an outstanding fetch for id in inFlight
func (s *Service) startItemFetch(inFlight map[int]itemFetch, id int) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(s.ctx)
	s.fetchSeq++
	inFlight[id] = itemFetch{seq: s.fetchSeq, cancel: cancel}
	return ctx, s.fetchSeq
}

// finishItemFetch releases the fetch for id and reports whether seq is
// still the current one
func finishItemFetch(inFlight map[int]itemFetch, id int, seq uint64) bool {
	f, ok := inFlight[id]
	if !ok || f.seq != seq {
		return false
	}
	f.cancel()
	delete(inFlight, id)
	return true
}

func (s *Service) notify(fn func(Subscriber)) {
	for _, sub := range s.subs {
		fn(sub.sub)
	}
}

// SelectList starts a session on list. Selecting the current list is a
// no-op unless the session has failed, in which case it starts over.
func (s *Service) SelectList(list catalog.ListKind) error {
	return s.post(func() {
		p := s.Progress()
		if p.Selected && p.List == list && !s.pages.Failed() {
			s.logger.Debug().Str("list", list.String()).Msg("List already selected")
			return
		}
		s.startSession(list)
	})
}

// Reload discards the current session and starts it again
func (s *Service) Reload() error {
	return s.post(func() {
		p := s.Progress()
		if !p.Selected {
			return
		}
		s.startSession(p.List)
	})
}

func (s *Service) startSession(list catalog.ListKind) {
	s.pages.Reset()
	s.tracker.Reset()
	s.index = make(map[int]int)

	s.mu.Lock()
	s.published = nil
	s.progress.List = list
	s.progress.Selected = true
	s.mu.Unlock()

	s.logger.Info().Str("list", list.String()).Msg("Starting browsing session")

	s.requestPage(1)
	s.requestPage(2)
	s.updateProgress()
}

func (s *Service) requestPage(n int) {
	ctx, cancel := context.WithCancel(s.ctx)
	gen, err := s.pages.Begin(n, cancel)
	if err != nil {
		cancel()
		s.logger.Debug().Err(err).Int("page", n).Msg("Page not requested")
		return
	}

	list := s.progress.List
	s.logger.Debug().Str("list", list.String()).Int("page", n).Msg("Requesting page")

	s.submit(func() {
		result, err := s.client.FetchPage(ctx, list, n)
		if err == nil && result == nil {
			err = catalog.NewFetchError(catalog.EmptyResponse, "no page returned", nil)
		}
		s.post(func() { s.pageDone(gen, list, n, result, err) })
	})
}

func (s *Service) pageDone(gen uint64, list catalog.ListKind, n int, result *catalog.PageResult, err error) {
	defer s.updateProgress()

	if err != nil {
		if !s.pages.Fail(gen, err) {
			s.logger.Debug().Err(err).Int("page", n).Msg("Discarded stale page failure")
			return
		}

		s.logger.Error().Err(err).Str("list", list.String()).Int("page", n).Msg("Page fetch failed, session discarded")

		s.index = make(map[int]int)
		s.mu.Lock()
		s.published = nil
		s.mu.Unlock()

		s.notify(func(sub Subscriber) { sub.OnSessionError(list, err) })
		return
	}

	if result.Page != n {
		s.logger.Warn().Int("requested", n).Int("received", result.Page).Msg("Page number mismatch")
	}

	if !s.pages.Complete(gen, n, result.Items, result.TotalPages) {
		s.logger.Debug().Int("page", n).Msg("Discarded stale page")
		return
	}

	s.publish(list)
}

func (s *Service) publish(list catalog.ListKind) {
	batch := s.pages.PublishReady()
	if len(batch) == 0 {
		return
	}

	for i := range batch {
		batch[i].Genres = s.genres.Lookup(batch[i].GenreIDs)
	}

	s.mu.Lock()
	for _, item := range batch {
		s.index[item.ID] = len(s.published)
		s.published = append(s.published, item)
	}
	s.mu.Unlock()

	s.logger.Debug().Str("list", list.String()).Int("count", len(batch)).Msg("Published items")

	s.notify(func(sub Subscriber) {
		items := make([]catalog.Item, len(batch))
		copy(items, batch)
		sub.OnNewItems(list, items)
	})
}

func (s *Service) genresLoaded(genres []catalog.Genre) {
	s.mu.Lock()
	for i := range s.published {
		if len(s.published[i].Genres) == 0 && len(s.published[i].GenreIDs) > 0 {
			s.published[i].Genres = s.genres.Lookup(s.published[i].GenreIDs)
		}
	}
	s.mu.Unlock()

	s.genresReady = true
	s.lastGenres = genres

	s.notify(func(sub Subscriber) { sub.OnGenresReady(cloneGenres(genres)) })
}

// ItemBecameVisible reports that a published item is shown, fetching the
// next page once enough of the list has been scrolled
func (s *Service) ItemBecameVisible(id int) error {
	return s.post(func() {
		defer s.updateProgress()

		if !s.tracker.ItemBecameVisible(id) {
			return
		}
		s.requestPage(s.pages.HighestRequested() + 1)
	})
}

// ResolvePosterImage fetches the poster of a published item at the given
// width, or the configured list width when size is 0. Requests for an item
// whose poster is already being fetched are coalesced.
func (s *Service) ResolvePosterImage(id, size int) error {
	return s.post(func() { s.resolvePoster(id, size) })
}

func (s *Service) resolvePoster(id, size int) {
	pos, ok := s.index[id]
	if !ok {
		s.itemError(id, ErrUnknownItem)
		return
	}

	item := s.published[pos]
	if !item.HasPoster() {
		s.itemError(id, ErrNoPoster)
		return
	}
	if item.Poster != nil {
		s.notify(func(sub Subscriber) { sub.OnItemUpdated(item) })
		return
	}
	if _, busy := s.postersInFlight[id]; busy {
		s.logger.Trace().Int("id", id).Msg("Poster fetch already in flight")
		return
	}

	if size <= 0 {
		size = s.opts.posterSize
	}
	ctx, seq := s.startItemFetch(s.postersInFlight, id)

	ref := item.PosterPath
	s.submit(func() {
		img, err := s.loadImage(ctx, ref, size)
		s.post(func() { s.posterDone(id, seq, img, err) })
	})
}

func (s *Service) posterDone(id int, seq uint64, img *catalog.Image, err error) {
	if !finishItemFetch(s.postersInFlight, id, seq) {
		s.logger.Debug().Int("id", id).Msg("Discarded cancelled poster fetch")
		return
	}

	if err != nil {
		s.itemError(id, err)
		return
	}

	pos, ok := s.index[id]
	if !ok {
		s.logger.Debug().Int("id", id).Msg("Discarded poster for item outside the session")
		return
	}

	s.mu.Lock()
	s.published[pos].Poster = img
	item := s.published[pos]
	s.mu.Unlock()

	s.notify(func(sub Subscriber) { sub.OnItemUpdated(item) })
}

// FetchDetail returns the cached detail record of id when there is one.
// Otherwise it starts resolving the record and returns false; subscribers
// receive it through OnDetailReady or OnItemError. Both paths notify.
func (s *Service) FetchDetail(id int) (catalog.Detail, bool) {
	s.mu.RLock()
	detail, ok := s.details[id]
	s.mu.RUnlock()

	if ok {
		s.post(func() {
			s.notify(func(sub Subscriber) { sub.OnDetailReady(detail) })
		})
		return detail, true
	}

	s.post(func() { s.fetchDetail(id) })
	return catalog.Detail{}, false
}

func (s *Service) fetchDetail(id int) {
	if detail, ok := s.details[id]; ok {
		s.notify(func(sub Subscriber) { sub.OnDetailReady(detail) })
		return
	}
	if _, busy := s.detailsInFlight[id]; busy {
		s.logger.Trace().Int("id", id).Msg("Detail fetch already in flight")
		return
	}
	ctx, seq := s.startItemFetch(s.detailsInFlight, id)

	if item, ok := s.knownItem(id); ok && item.HasPoster() {
		size := s.opts.detailPosterSize
		s.submit(func() {
			img, err := s.loadImage(ctx, item.PosterPath, size)
			s.post(func() {
				if err != nil {
					s.detailDone(id, seq, catalog.Detail{}, err)
					return
				}
				s.detailDone(id, seq, catalog.DetailFromItem(item, img), nil)
			})
		})
		return
	}

	s.submit(func() {
		detail, err := s.loadDetail(ctx, id)
		s.post(func() { s.detailDone(id, seq, detail, err) })
	})
}

// knownItem finds id among the items received this session
func (s *Service) knownItem(id int) (catalog.Item, bool) {
	if pos, ok := s.index[id]; ok {
		return s.published[pos], true
	}

	item, ok := s.pages.Find(id)
	if ok {
		item.Genres = s.genres.Lookup(item.GenreIDs)
	}
	return item, ok
}

func (s *Service) detailDone(id int, seq uint64, detail catalog.Detail, err error) {
	if !finishItemFetch(s.detailsInFlight, id, seq) {
		s.logger.Debug().Int("id", id).Msg("Discarded cancelled detail fetch")
		return
	}

	if err != nil {
		s.itemError(id, err)
		return
	}

	s.mu.Lock()
	s.details[id] = detail
	s.mu.Unlock()

	s.logger.Debug().Int("id", id).Str("title", detail.Title).Msg("Resolved detail")
	s.notify(func(sub Subscriber) { sub.OnDetailReady(detail) })
}

// loadDetail runs on a worker
func (s *Service) loadDetail(ctx context.Context, id int) (catalog.Detail, error) {
	remote, err := s.client.FetchDetail(ctx, id)
	if err != nil {
		return catalog.Detail{}, err
	}
	if remote == nil {
		return catalog.Detail{}, catalog.NewFetchError(catalog.EmptyResponse, "no detail returned", nil)
	}

	detail := remote.Detail
	if len(detail.Genres) == 0 && len(remote.GenreIDs) > 0 {
		detail.Genres = s.genres.Lookup(remote.GenreIDs)
	}
	if detail.Genres == nil {
		detail.Genres = []catalog.Genre{}
	}

	if detail.PosterPath != "" {
		img, err := s.loadImage(ctx, detail.PosterPath, s.opts.detailPosterSize)
		if err != nil {
			return catalog.Detail{}, err
		}
		detail.Poster = img
	}

	return detail, nil
}

// loadImage runs on a worker
func (s *Service) loadImage(ctx context.Context, ref string, size int) (*catalog.Image, error) {
	data, err := s.client.FetchImage(ctx, ref, size, catalog.FormatJPG)
	if err != nil {
		return nil, err
	}
	return catalog.DecodeImage(data, catalog.FormatJPG)
}

func (s *Service) itemError(id int, err error) {
	s.logger.Warn().Err(err).Int("id", id).Msg("Item resolution failed")
	s.notify(func(sub Subscriber) { sub.OnItemError(id, err) })
}

func (s *Service) updateProgress() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress.Published = len(s.published)
	s.progress.PublishedPages = s.pages.PublishedPages()
	s.progress.HighestRequested = s.pages.HighestRequested()
	s.progress.TotalPages = s.pages.TotalPages()
	s.progress.PageSize = s.pages.PageSize()
	s.progress.MaxVisible = s.tracker.MaxVisible()
	s.progress.Failed = s.pages.Failed()
}

// Progress returns a snapshot of the current session
func (s *Service) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// List returns the selected list, if any
func (s *Service) List() (catalog.ListKind, bool) {
	p := s.Progress()
	return p.List, p.Selected
}

// Published returns the items published this session, in order
func (s *Service) Published() []catalog.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Item, len(s.published))
	copy(out, s.published)
	return out
}

// Detail returns a cached detail record without triggering a fetch
func (s *Service) Detail(id int) (catalog.Detail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	detail, ok := s.details[id]
	return detail, ok
}

// Genres returns the sorted genre list, empty until the taxonomy loads
func (s *Service) Genres() []catalog.Genre {
	return s.genres.Genres()
}

// LoadGenres waits for the genre taxonomy, loading it if needed. It blocks
// and must not be called from a notification.
func (s *Service) LoadGenres(ctx context.Context) ([]catalog.Genre, error) {
	return s.genres.Load(ctx)
}

// RefreshGenres fetches the genre taxonomy again
func (s *Service) RefreshGenres(ctx context.Context) ([]catalog.Genre, error) {
	return s.genres.Refresh(ctx)
}
