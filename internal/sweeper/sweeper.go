// Package sweeper prunes expired messages from the in-memory view of an
// active conversation and persists the survivors. Expiry is lazy and
// best-effort: a message past its TTL stays on encrypted storage until the
// next tick or the next load, and removal is a retention policy, not a
// security boundary.
package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/slvault/slvault/internal/vault"
)

// DefaultInterval between sweep ticks.
const DefaultInterval = 5 * time.Second

// Saver persists the surviving message set for a conversation.
type Saver interface {
	SaveConversation(ctx context.Context, conversation string, messages []vault.Message) error
}

// Sweeper owns the decrypted view of one conversation while it is on
// screen. Stop it when the view is torn down.
type Sweeper struct {
	saver        Saver
	conversation string
	interval     time.Duration
	logger       *slog.Logger

	// Now is the clock; replaceable in tests.
	Now func() time.Time

	mu       sync.Mutex
	messages []vault.Message

	// sweeping keeps a tick from racing a prior tick's compaction that is
	// still in flight; a busy tick is skipped, not queued.
	sweeping sync.Mutex

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates a sweeper for the conversation.
func New(saver Saver, conversation string, interval time.Duration, logger *slog.Logger) *Sweeper {
	if conversation == "" {
		conversation = vault.GlobalConversation
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		saver:        saver,
		conversation: conversation,
		interval:     interval,
		logger:       logger,
		Now:          time.Now,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// SetMessages replaces the in-memory view, typically right after a load.
func (w *Sweeper) SetMessages(messages []vault.Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append([]vault.Message(nil), messages...)
}

// Messages returns a snapshot of the in-memory view.
func (w *Sweeper) Messages() []vault.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]vault.Message(nil), w.messages...)
}

// Append adds a message to the in-memory view.
func (w *Sweeper) Append(msg vault.Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msg)
}

// Start runs the tick loop until Stop is called or ctx is cancelled.
func (w *Sweeper) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			case <-ticker.C:
				w.Sweep(ctx)
			}
		}
	}()
}

// Stop cancels the ticker and waits for the loop to exit.
func (w *Sweeper) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}

// Sweep runs a single tick: drop expired entries from the view and persist
// the survivors. If a prior sweep's save is still in flight, the tick is
// skipped rather than raced. On save failure the view is left unchanged so
// the next tick retries.
func (w *Sweeper) Sweep(ctx context.Context) {
	if !w.sweeping.TryLock() {
		return
	}
	defer w.sweeping.Unlock()

	now := w.Now()

	w.mu.Lock()
	survivors := make([]vault.Message, 0, len(w.messages))
	expiredIDs := make(map[string]bool)
	for _, msg := range w.messages {
		if msg.Expired(now) {
			expiredIDs[msg.ID] = true
			continue
		}
		survivors = append(survivors, msg)
	}
	w.mu.Unlock()

	if len(expiredIDs) == 0 {
		return
	}

	if err := w.saver.SaveConversation(ctx, w.conversation, survivors); err != nil {
		w.logger.Warn("sweep compaction failed, will retry",
			"conversation", w.conversation, "error", err)
		return
	}

	// Remove by id rather than assigning the survivor slice, so a message
	// appended during the save is not lost from the view.
	w.mu.Lock()
	kept := w.messages[:0]
	for _, msg := range w.messages {
		if !expiredIDs[msg.ID] {
			kept = append(kept, msg)
		}
	}
	w.messages = kept
	w.mu.Unlock()

	w.logger.Info("swept expired messages",
		"conversation", w.conversation, "count", len(expiredIDs))
}
