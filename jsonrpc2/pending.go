package jsonrpc2

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Pending is an outstanding call awaiting its response. It resolves exactly
// once: with a response (result or RPC error), or with ErrTimeout,
// ErrCanceled, ErrClosed or a *TransportError.
type Pending struct {
	ID     ID
	Method string

	timestamp time.Time
	table     *pendingTable
	done      chan struct{}
	resp      *Message
	err       error
}

func newPending(msg *Message, table *pendingTable) *Pending {
	return &Pending{
		ID:        msg.ID,
		Method:    msg.Method,
		timestamp: time.Now(),
		table:     table,
		done:      make(chan struct{}),
	}
}

// Done is closed once the call is resolved.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the call resolves. If ctx ends first, the call is
// resolved with ErrTimeout (deadline) or ErrCanceled and removed from its
// client, unless a response won the race.
func (p *Pending) Wait(ctx context.Context) (*Message, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		err := ErrCanceled
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = ErrTimeout
		}
		p.table.cancel(p, err)
		<-p.done
	}
	return p.resp, p.err
}

// Result waits for the call and decodes its result into result. An RPC error
// in the response is returned as an *Error.
func (p *Pending) Result(ctx context.Context, result interface{}) error {
	msg, err := p.Wait(ctx)
	if err != nil {
		return err
	}
	return msg.UnmarshalResult(result)
}

// Cancel resolves the call with ErrCanceled. It returns false if the call
// was already resolved.
func (p *Pending) Cancel() bool {
	return p.table.cancel(p, ErrCanceled)
}

// complete must only be called by whoever removed p from its table.
func (p *Pending) complete(resp *Message, err error) {
	p.resp, p.err = resp, err
	close(p.done)
}

// pendingTable holds the outstanding calls of a Client, keyed by ID.Key().
// Removal from the table is what grants the right to resolve an entry, so
// each entry resolves exactly once.
type pendingTable struct {
	mu      sync.Mutex
	entries map[string]*Pending
	closed  bool
}

// add inserts p. When limit is reached, the discard oldest entries are
// evicted and resolved with ErrCanceled.
func (t *pendingTable) add(p *Pending, limit int, discard int) error {
	var evicted []*Pending
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.entries == nil {
		t.entries = map[string]*Pending{}
	}
	key := p.ID.Key()
	if _, ok := t.entries[key]; ok {
		t.mu.Unlock()
		return errors.New("jsonrpc2: id is already pending: " + key)
	}
	if limit > 0 && len(t.entries) >= limit && discard > 0 {
		evicted = t.cleanPending(discard)
	}
	t.entries[key] = p
	t.mu.Unlock()

	for _, old := range evicted {
		logger.Printf("Client: Evicting pending call %s (%s)", old.ID, old.Method)
		old.complete(nil, ErrCanceled)
	}
	return nil
}

// cleanPending removes num oldest entries, must hold the t.mu lock.
func (t *pendingTable) cleanPending(num int) []*Pending {
	var removed []*Pending
	for _, item := range pendingOldest(t.entries, num) {
		removed = append(removed, t.entries[item.key])
		delete(t.entries, item.key)
	}
	return removed
}

// resolve completes the entry for key. It returns false if no such entry is
// pending.
func (t *pendingTable) resolve(key string, resp *Message, err error) bool {
	t.mu.Lock()
	p, ok := t.entries[key]
	if ok {
		delete(t.entries, key)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	p.complete(resp, err)
	return true
}

// cancel completes p with err if it is still pending.
func (t *pendingTable) cancel(p *Pending, err error) bool {
	key := p.ID.Key()
	t.mu.Lock()
	current, ok := t.entries[key]
	if ok && current == p {
		delete(t.entries, key)
	}
	t.mu.Unlock()
	if !ok || current != p {
		return false
	}
	p.complete(nil, err)
	return true
}

// closeAll resolves every entry with err and refuses new ones.
func (t *pendingTable) closeAll(err error) int {
	t.mu.Lock()
	entries := t.entries
	t.entries = nil
	t.closed = true
	t.mu.Unlock()
	for _, p := range entries {
		p.complete(nil, err)
	}
	return len(entries)
}

func (t *pendingTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

type pendingItem struct {
	key       string
	timestamp time.Time
}

type pendingQueue []pendingItem

func (p pendingQueue) Len() int {
	return len(p)
}

func (p pendingQueue) Less(i, j int) bool {
	return p[i].timestamp.Before(p[j].timestamp)
}

func (p pendingQueue) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}

func pendingOldest(pending map[string]*Pending, num int) pendingQueue {
	if num > len(pending) {
		num = len(pending)
	}
	queue := make(pendingQueue, 0, len(pending))
	for key, p := range pending {
		queue = append(queue, pendingItem{
			key, p.timestamp,
		})
	}
	sort.Sort(queue)
	return queue[:num]
}
