// Package syncer keeps the local character store and the remote character
// API in step.
//
// Local state always wins first: every save is committed to the store
// synchronously, and only then, when the session holds an access token, is a
// remote write scheduled. Remote writes are debounced per character so a
// burst of edits produces a single POST carrying the latest draft. The
// server's echo is folded back into the store to pick up the server id.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"character-builder/internal/api"
	"character-builder/internal/config"
	"character-builder/internal/constants"
	"character-builder/internal/domain"
	"character-builder/internal/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

type Remote interface {
	List(ctx context.Context) ([]domain.CharacterResult, error)
	Save(ctx context.Context, character domain.RawCharacter) (*domain.CharacterResult, error)
	Delete(ctx context.Context, id string) error
}

type Authenticator interface {
	IsAuthenticated() bool
}

type Options struct {
	Debounce     time.Duration
	MaxRetries   uint64
	RetryBackoff time.Duration
	RetryCap     time.Duration
	Version      string
	Now          func() time.Time
	NewLocalID   func() (string, error)
}

func DefaultOptions() Options {
	return Options{
		Debounce:     constants.SaveDebounce,
		MaxRetries:   constants.SaveMaxRetries,
		RetryBackoff: constants.SaveRetryBackoff,
		RetryCap:     constants.SaveRetryCap,
		Version:      constants.BuilderVersion,
		Now:          time.Now,
		NewLocalID:   func() (string, error) { return gonanoid.New() },
	}
}

type pendingWrite struct {
	timer *time.Timer
	draft domain.RawCharacter
	gen   uint64
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

type Mediator struct {
	store  *store.Store
	remote Remote
	auth   Authenticator
	opts   Options
	logger zerolog.Logger

	// serializes stamping so changedAt stays monotonic per record
	saveMu sync.Mutex

	mu       sync.Mutex
	gen      uint64
	pending  map[string]*pendingWrite
	failed   map[string]struct{}
	keyLocks map[string]*keyLock
	inflight int
	drained  chan struct{}

	// Writes carry the epoch they were started in. A clear or delete that
	// lands later wins over their echo. Lock order is mu, then epochMu.
	epochMu   sync.Mutex
	epoch     uint64
	clearedAt uint64
	deletedAt map[string]uint64
}

func New(st *store.Store, remote Remote, auth Authenticator, opts Options, logger zerolog.Logger) *Mediator {
	defaults := DefaultOptions()
	if opts.Debounce <= 0 {
		opts.Debounce = defaults.Debounce
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaults.RetryBackoff
	}
	if opts.RetryCap <= 0 {
		opts.RetryCap = defaults.RetryCap
	}
	if opts.Version == "" {
		opts.Version = defaults.Version
	}
	if opts.Now == nil {
		opts.Now = defaults.Now
	}
	if opts.NewLocalID == nil {
		opts.NewLocalID = defaults.NewLocalID
	}

	return &Mediator{
		store:     st,
		remote:    remote,
		auth:      auth,
		opts:      opts,
		logger:    logger,
		pending:   make(map[string]*pendingWrite),
		failed:    make(map[string]struct{}),
		keyLocks:  make(map[string]*keyLock),
		deletedAt: make(map[string]uint64),
	}
}

func NewMediator(st *store.Store, client *api.CharacterClient, auth *api.TokenSource, cfg *config.Config, logger zerolog.Logger) *Mediator {
	opts := DefaultOptions()
	opts.Debounce = cfg.SaveDebounce
	opts.MaxRetries = cfg.SaveMaxRetries
	return New(st, client, auth, opts, logger)
}

// Online is evaluated on every call; the token can come and go between calls.
func (m *Mediator) Online() bool {
	return m.auth != nil && m.remote != nil && m.auth.IsAuthenticated()
}

// Save commits the draft locally and, when online, schedules the debounced
// remote write. It returns the stamped record as stored.
func (m *Mediator) Save(draft domain.RawCharacter) (domain.RawCharacter, error) {
	record, err := m.commit(draft)
	if err != nil {
		return domain.RawCharacter{}, err
	}

	if m.Online() {
		m.schedule(record)
	}
	return record, nil
}

// SaveLocally commits the draft without ever touching the remote store.
func (m *Mediator) SaveLocally(draft domain.RawCharacter) (domain.RawCharacter, error) {
	return m.commit(draft)
}

func (m *Mediator) commit(draft domain.RawCharacter) (domain.RawCharacter, error) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	record := draft.Clone()
	existing, found := m.store.Lookup(record)

	// a copy taken before the echo landed must not drop the server identity
	if found && record.ID == "" {
		record.ID = existing.ID
	}
	if found && record.UserID == "" {
		record.UserID = existing.UserID
	}

	if record.LocalID == "" {
		if found && existing.LocalID != "" {
			record.LocalID = existing.LocalID
		} else {
			id, err := m.opts.NewLocalID()
			if err != nil {
				return domain.RawCharacter{}, fmt.Errorf("failed to generate local id: %w", err)
			}
			record.LocalID = id
		}
	}

	changedAt := m.opts.Now().UnixMilli()
	if found && existing.ChangedAt >= changedAt {
		changedAt = existing.ChangedAt + 1
	}
	record.BuilderVersion = m.opts.Version
	record.ChangedAt = changedAt

	m.store.Upsert(record)
	m.logger.Debug().
		Str("local_id", record.LocalID).
		Str("id", record.ID).
		Int64("changed_at", record.ChangedAt).
		Msg("character saved locally")
	return record, nil
}

// FetchAll replaces the local collection with the remote one when online.
// Offline it returns the local collection untouched.
func (m *Mediator) FetchAll(ctx context.Context) (store.Collection, error) {
	if !m.Online() {
		m.logger.Debug().Msg("offline, serving local characters")
		return m.store.Snapshot(), nil
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	results, err := m.remote.List(apiCtx)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to fetch characters")
		return nil, fmt.Errorf("failed to fetch characters: %w", err)
	}

	characters := make(store.Collection, 0, len(results))
	for _, result := range results {
		var character domain.RawCharacter
		if err := json.Unmarshal([]byte(result.JSONData), &character); err != nil {
			m.logger.Warn().Err(err).Str("id", result.ID).Msg("skipping undecodable character")
			continue
		}
		character.ID = result.ID
		character.UserID = result.UserID
		characters = append(characters, character)
	}

	m.logger.Info().Int("count", len(characters)).Msg("characters fetched")
	return m.store.Replace(characters), nil
}

// Delete removes the record. When online and the server knows the record,
// the remote delete must succeed first; on failure the local record stays.
func (m *Mediator) Delete(ctx context.Context, record domain.RawCharacter) error {
	if current, ok := m.store.Lookup(record); ok && record.LocalID == "" {
		record.LocalID = current.LocalID
	}
	key := identityKey(record)
	cancelled := m.cancel(key)

	// wait out any in-flight write so a fresh server id is not missed
	unlock := m.lockKey(key)
	defer unlock()

	if current, ok := m.store.Lookup(record); ok && record.ID == "" {
		record.ID = current.ID
	}

	if m.Online() && record.ID != "" {
		apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		defer cancel()

		if err := m.remote.Delete(apiCtx, record.ID); err != nil {
			m.logger.Error().Err(err).Str("id", record.ID).Str("local_id", record.LocalID).Msg("failed to delete character")
			if cancelled != nil {
				m.schedule(cancelled.draft)
			}
			return fmt.Errorf("failed to delete character %s: %w", record.ID, err)
		}
	}

	m.mu.Lock()
	delete(m.failed, key)
	m.mu.Unlock()

	m.epochMu.Lock()
	m.epoch++
	m.deletedAt[key] = m.epoch
	m.store.Remove(record)
	m.epochMu.Unlock()

	m.logger.Info().Str("id", record.ID).Str("local_id", record.LocalID).Msg("character deleted")
	return nil
}

// ClearLocal empties the local collection and drops scheduled writes. The
// remote store is never touched.
func (m *Mediator) ClearLocal() store.Collection {
	m.mu.Lock()
	for key, p := range m.pending {
		p.timer.Stop()
		delete(m.pending, key)
	}
	m.failed = make(map[string]struct{})
	m.mu.Unlock()

	m.epochMu.Lock()
	defer m.epochMu.Unlock()
	m.epoch++
	m.clearedAt = m.epoch
	return m.store.Clear()
}

// Pending lists local ids whose latest remote write failed.
func (m *Mediator) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.failed))
	for key := range m.failed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Flush sends every scheduled write now and waits until no write is in
// flight.
func (m *Mediator) Flush(ctx context.Context) error {
	m.mu.Lock()
	drafts := make([]domain.RawCharacter, 0, len(m.pending))
	for key, p := range m.pending {
		p.timer.Stop()
		delete(m.pending, key)
		drafts = append(drafts, p.draft)
	}
	epoch := m.begin(len(drafts))
	m.mu.Unlock()

	// one failed write must not cancel the others
	g := new(errgroup.Group)
	for _, draft := range drafts {
		draft := draft
		g.Go(func() error {
			defer m.done()
			return m.write(ctx, draft, epoch)
		})
	}
	err := g.Wait()

	m.mu.Lock()
	drained := m.drained
	busy := m.inflight > 0
	m.mu.Unlock()

	if busy {
		select {
		case <-drained:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *Mediator) schedule(record domain.RawCharacter) {
	key := identityKey(record)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	gen := m.gen
	if p, ok := m.pending[key]; ok {
		p.timer.Stop()
	}
	m.pending[key] = &pendingWrite{
		draft: record,
		gen:   gen,
		timer: time.AfterFunc(m.opts.Debounce, func() { m.fire(key, gen) }),
	}
}

func (m *Mediator) cancel(key string) *pendingWrite {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pending[key]
	if !ok {
		return nil
	}
	p.timer.Stop()
	delete(m.pending, key)
	return p
}

func (m *Mediator) fire(key string, gen uint64) {
	m.mu.Lock()
	p, ok := m.pending[key]
	if !ok || p.gen != gen {
		m.mu.Unlock()
		return
	}
	delete(m.pending, key)
	epoch := m.begin(1)
	m.mu.Unlock()

	defer m.done()
	_ = m.write(context.Background(), p.draft, epoch)
}

// begin registers n writes and returns the epoch they start in. It must be
// called with mu held.
func (m *Mediator) begin(n int) uint64 {
	if n > 0 && m.inflight == 0 {
		m.drained = make(chan struct{})
	}
	m.inflight += n

	m.epochMu.Lock()
	defer m.epochMu.Unlock()
	return m.epoch
}

func (m *Mediator) done() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight--
	if m.inflight == 0 && m.drained != nil {
		close(m.drained)
		m.drained = nil

		// no write holds an older epoch any more
		m.epochMu.Lock()
		clear(m.deletedAt)
		m.epochMu.Unlock()
	}
}

// superseded reports whether a clear or a delete of key happened after
// epoch. It must be called with epochMu held.
func (m *Mediator) superseded(key string, epoch uint64) bool {
	return m.clearedAt > epoch || m.deletedAt[key] > epoch
}

// write posts the newest local version of the draft and reconciles the echo.
// Writes for one character never overlap, so a second write always sees the
// id the first one brought back.
func (m *Mediator) write(ctx context.Context, draft domain.RawCharacter, epoch uint64) error {
	key := identityKey(draft)
	unlock := m.lockKey(key)
	defer unlock()

	m.epochMu.Lock()
	gone := m.superseded(key, epoch)
	m.epochMu.Unlock()
	if gone {
		m.logger.Debug().Str("local_id", draft.LocalID).Msg("character removed before remote save, skipping")
		return nil
	}

	if current, ok := m.store.Lookup(draft); ok {
		draft = current
	}

	if !m.Online() {
		m.markFailed(key, true)
		m.logger.Warn().Str("local_id", draft.LocalID).Msg("signed out before remote save, character left pending")
		return fmt.Errorf("character %s: %w", key, api.ErrUnauthenticated)
	}

	var result *domain.CharacterResult
	backoff := retry.WithMaxRetries(m.opts.MaxRetries,
		retry.WithCappedDuration(m.opts.RetryCap, retry.NewExponential(m.opts.RetryBackoff)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		defer cancel()

		res, err := m.remote.Save(apiCtx, draft)
		if err != nil {
			m.logger.Warn().Err(err).Str("local_id", draft.LocalID).Msg("remote save attempt failed")
			if retryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		m.markFailed(key, true)
		m.logger.Error().
			Err(err).
			Str("local_id", draft.LocalID).
			Str("id", draft.ID).
			Msg("remote save failed, character left pending")
		return fmt.Errorf("failed to save character %s: %w", key, err)
	}

	echo, err := decodeEcho(*result, draft)
	if err != nil {
		m.markFailed(key, true)
		m.logger.Error().Err(err).Str("local_id", draft.LocalID).Msg("failed to decode save response")
		return err
	}

	m.markFailed(key, false)

	m.epochMu.Lock()
	defer m.epochMu.Unlock()
	if m.superseded(key, epoch) {
		m.logger.Info().Str("local_id", echo.LocalID).Str("id", echo.ID).Msg("character removed while saving, echo dropped")
		return nil
	}
	m.store.Reconcile(echo)
	m.logger.Info().Str("local_id", echo.LocalID).Str("id", echo.ID).Msg("character synced")
	return nil
}

func (m *Mediator) markFailed(key string, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if failed {
		m.failed[key] = struct{}{}
	} else {
		delete(m.failed, key)
	}
}

// lockKey serializes work on one character. Idle locks are dropped.
func (m *Mediator) lockKey(key string) func() {
	m.mu.Lock()
	lock, ok := m.keyLocks[key]
	if !ok {
		lock = &keyLock{}
		m.keyLocks[key] = lock
	}
	lock.refs++
	m.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		m.mu.Lock()
		defer m.mu.Unlock()
		lock.refs--
		if lock.refs == 0 {
			delete(m.keyLocks, key)
		}
	}
}

// decodeEcho rebuilds the record from the server response. The server owns
// id and userId; a payload without a local id keeps the one that was sent.
func decodeEcho(result domain.CharacterResult, sent domain.RawCharacter) (domain.RawCharacter, error) {
	echo := sent.Clone()
	if result.JSONData != "" {
		echo = domain.RawCharacter{}
		if err := json.Unmarshal([]byte(result.JSONData), &echo); err != nil {
			return domain.RawCharacter{}, fmt.Errorf("failed to decode echoed character: %w", err)
		}
	}
	echo.ID = result.ID
	echo.UserID = result.UserID
	if echo.LocalID == "" {
		echo.LocalID = sent.LocalID
	}
	return echo, nil
}

func identityKey(r domain.RawCharacter) string {
	if r.LocalID != "" {
		return r.LocalID
	}
	return "id:" + r.ID
}

// Client errors other than timeouts and throttling will not succeed on retry.
func retryable(err error) bool {
	if errors.Is(err, api.ErrUnauthenticated) || errors.Is(err, api.ErrRemoteDisabled) {
		return false
	}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.Code
		if code >= 400 && code < 500 {
			return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests
		}
	}
	return true
}
