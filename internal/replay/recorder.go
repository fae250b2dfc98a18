package replay

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/docquery/internal/canonical"
	"github.com/roach88/docquery/internal/store"
	"github.com/roach88/docquery/pkg/querybuilder"
)

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithIDGenerator overrides the UUIDv7 session id generator.
func WithIDGenerator(gen IDGenerator) RecorderOption {
	return func(r *Recorder) {
		r.ids = gen
	}
}

// WithLabel attaches a human-readable label to the session.
func WithLabel(label string) RecorderOption {
	return func(r *Recorder) {
		r.label = label
	}
}

// WithRecorderLogger sets the logger for recording events.
func WithRecorderLogger(l querybuilder.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = l
	}
}

// Recorder is a Container that forwards every query to a live container
// and persists the pages it returns.
//
// Thread-safety: Recorder is safe for concurrent use. Each iterator it
// returns belongs to one goroutine, like any ItemIterator.
type Recorder struct {
	live   querybuilder.Container
	store  *store.Store
	ids    IDGenerator
	label  string
	logger querybuilder.Logger

	session store.Session

	mu    sync.Mutex
	pages int
}

// NewRecorder starts a recording session in st and returns a Recorder that
// forwards to live.
func NewRecorder(ctx context.Context, live querybuilder.Container, st *store.Store, opts ...RecorderOption) (*Recorder, error) {
	r := &Recorder{
		live:   live,
		store:  st,
		ids:    UUIDv7Generator{},
		logger: querybuilder.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}

	sess, err := st.StartSession(ctx, r.ids.Generate(), r.label)
	if err != nil {
		return nil, fmt.Errorf("new recorder: %w", err)
	}
	r.session = sess
	r.logger.Info("Recording session started", "session", sess.ID, "seq", sess.Seq)
	return r, nil
}

// Session returns the session this recorder writes to.
func (r *Recorder) Session() store.Session {
	return r.session
}

// PagesRecorded returns the number of pages persisted so far.
func (r *Recorder) PagesRecorded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pages
}

// Query implements querybuilder.Container.
func (r *Recorder) Query(spec querybuilder.QuerySpec, opts *querybuilder.QueryOptions) querybuilder.ItemIterator {
	return &recordingIterator{
		owner: r,
		inner: r.live.Query(spec, opts),
		spec:  spec,
		opts:  optionsValue(opts),
	}
}

func (r *Recorder) countPage() {
	r.mu.Lock()
	r.pages++
	r.mu.Unlock()
}

type recordingIterator struct {
	owner *Recorder
	inner querybuilder.ItemIterator
	spec  querybuilder.QuerySpec
	opts  querybuilder.QueryOptions

	// nextID is the FetchNext recording, begun on the first FetchNext.
	nextID    int64
	nextIndex int
}

func (it *recordingIterator) FetchNext(ctx context.Context) (querybuilder.FeedResponse, error) {
	page, err := it.inner.FetchNext(ctx)
	if err != nil {
		return page, err
	}

	if it.nextIndex == 0 {
		id, err := it.begin(ctx, store.MethodNext)
		if err != nil {
			return querybuilder.FeedResponse{}, err
		}
		it.nextID = id
	}
	if err := it.write(ctx, it.nextID, it.nextIndex, page); err != nil {
		return querybuilder.FeedResponse{}, err
	}
	it.nextIndex++
	return page, nil
}

func (it *recordingIterator) FetchAll(ctx context.Context) (querybuilder.FeedResponse, error) {
	page, err := it.inner.FetchAll(ctx)
	if err != nil {
		return page, err
	}

	id, err := it.begin(ctx, store.MethodAll)
	if err != nil {
		return querybuilder.FeedResponse{}, err
	}
	if err := it.write(ctx, id, 0, page); err != nil {
		return querybuilder.FeedResponse{}, err
	}
	return page, nil
}

func (it *recordingIterator) begin(ctx context.Context, method store.Method) (int64, error) {
	key, err := canonical.QueryKey(it.spec, it.opts)
	if err != nil {
		return 0, fmt.Errorf("record: %w", err)
	}
	params, err := store.MarshalParameters(it.spec.Parameters)
	if err != nil {
		return 0, fmt.Errorf("record: %w", err)
	}

	id, err := it.owner.store.BeginRecording(ctx, store.Recording{
		SessionID:    it.owner.session.ID,
		Key:          key,
		Method:       method,
		Query:        it.spec.Query,
		Parameters:   params,
		Continuation: it.opts.ContinuationToken,
	})
	if err != nil {
		return 0, fmt.Errorf("record: %w", err)
	}
	it.owner.logger.Debug("Recording query", "key", key, "method", string(method))
	return id, nil
}

func (it *recordingIterator) write(ctx context.Context, id int64, index int, page querybuilder.FeedResponse) error {
	if err := it.owner.store.WritePage(ctx, id, index, page); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	it.owner.countPage()
	return nil
}

func optionsValue(opts *querybuilder.QueryOptions) querybuilder.QueryOptions {
	if opts == nil {
		return querybuilder.QueryOptions{}
	}
	return *opts
}

var _ querybuilder.Container = (*Recorder)(nil)
