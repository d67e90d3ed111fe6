package session

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/LydiaBrothers/filmslides/internal/core/partition"
	"github.com/LydiaBrothers/filmslides/internal/dataset"
	"github.com/LydiaBrothers/filmslides/internal/slides"
)

// DefaultCapacity is the number of sessions kept when Options sets none.
const DefaultCapacity = 1024

// Recorder receives session gauge updates. *metrics.Collector implements it.
type Recorder interface {
	SetSessions(n int)
	SessionEvicted()
}

// Options configures a Store.
type Options struct {
	Capacity int
	Shards   int
	Deck     *slides.Deck
	Observer Observer
	Recorder Recorder
}

// Store keeps sessions in memory, sharded by id. Each shard is an LRU list;
// when a shard is full its least recently used session is evicted.
type Store struct {
	shards   []*shard
	perShard int
	deck     *slides.Deck
	observer Observer
	rec      Recorder
}

type shard struct {
	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List
}

// NewStore creates an empty store.
func NewStore(opts Options) *Store {
	n := opts.Shards
	if n <= 0 {
		n = partition.DefaultCount
	}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	perShard := (capacity + n - 1) / n

	st := &Store{
		shards:   make([]*shard, n),
		perShard: perShard,
		deck:     opts.Deck,
		observer: opts.Observer,
		rec:      opts.Recorder,
	}
	for i := range st.shards {
		st.shards[i] = &shard{items: make(map[string]*list.Element), order: list.New()}
	}
	return st
}

func (st *Store) shardFor(id string) *shard {
	return st.shards[partition.For(id, len(st.shards))]
}

// Create starts a session on ds and returns it.
func (st *Store) Create(ds *dataset.Dataset) *Session {
	s := New(uuid.NewString(), ds, st.deck, st.observer)
	sh := st.shardFor(s.ID)

	sh.mu.Lock()
	evicted := 0
	for sh.order.Len() >= st.perShard {
		oldest := sh.order.Back()
		delete(sh.items, oldest.Value.(*Session).ID)
		sh.order.Remove(oldest)
		evicted++
	}
	sh.items[s.ID] = sh.order.PushFront(s)
	sh.mu.Unlock()

	if st.rec != nil {
		for range evicted {
			st.rec.SessionEvicted()
		}
	}
	st.report()
	return s
}

// Get returns the session with the given id and marks it recently used.
func (st *Store) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	sh := st.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	elem, ok := sh.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	sh.order.MoveToFront(elem)
	return elem.Value.(*Session), nil
}

// Delete removes a session. It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	sh := st.shardFor(id)
	sh.mu.Lock()
	elem, ok := sh.items[id]
	if ok {
		delete(sh.items, id)
		sh.order.Remove(elem)
	}
	sh.mu.Unlock()

	if ok {
		st.report()
	}
	return ok
}

// Len returns the number of sessions held.
func (st *Store) Len() int {
	n := 0
	for _, sh := range st.shards {
		sh.mu.Lock()
		n += sh.order.Len()
		sh.mu.Unlock()
	}
	return n
}

func (st *Store) report() {
	if st.rec != nil {
		st.rec.SetSessions(st.Len())
	}
}
