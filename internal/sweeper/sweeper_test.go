package sweeper_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slvault/slvault/internal/sweeper"
	"github.com/slvault/slvault/internal/vault"
)

type recordingSaver struct {
	mu    sync.Mutex
	calls [][]vault.Message
	err   error
	block chan struct{}
}

func (r *recordingSaver) SaveConversation(_ context.Context, _ string, messages []vault.Message) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, append([]vault.Message(nil), messages...))
	return nil
}

func (r *recordingSaver) saved() [][]vault.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func messageExpiringAt(content string, expiresAt int64) vault.Message {
	m := vault.NewMessage(vault.RoleUser, content, "", 0)
	m.CreatedAt = expiresAt - 60_000
	m.ExpiresAt = expiresAt
	return m
}

func TestSweepRemovesExpiredAndPersistsSurvivors(t *testing.T) {
	saver := &recordingSaver{}
	w := sweeper.New(saver, "", time.Hour, nil)

	base := time.Now()
	w.Now = func() time.Time { return base }

	dead := messageExpiringAt("dead", vault.Millis(base))
	alive := messageExpiringAt("alive", vault.Millis(base.Add(time.Minute)))
	forever := vault.NewMessage(vault.RoleModel, "forever", "", 0)
	w.SetMessages([]vault.Message{dead, alive, forever})

	w.Sweep(context.Background())

	got := w.Messages()
	require.Len(t, got, 2)
	assert.Equal(t, "alive", got[0].Content)
	assert.Equal(t, "forever", got[1].Content)

	calls := saver.saved()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 2)
}

func TestSweepNoopWhenNothingExpired(t *testing.T) {
	saver := &recordingSaver{}
	w := sweeper.New(saver, "", time.Hour, nil)
	w.SetMessages([]vault.Message{vault.NewMessage(vault.RoleUser, "fresh", "", 0)})

	w.Sweep(context.Background())

	assert.Empty(t, saver.saved(), "no expired entries means no save")
}

func TestSweepKeepsViewOnSaveFailure(t *testing.T) {
	saver := &recordingSaver{err: errors.New("disk full")}
	w := sweeper.New(saver, "", time.Hour, nil)

	base := time.Now()
	w.Now = func() time.Time { return base }
	w.SetMessages([]vault.Message{messageExpiringAt("dead", vault.Millis(base))})

	w.Sweep(context.Background())

	// The failed compaction leaves the view unchanged for the next tick.
	assert.Len(t, w.Messages(), 1)
}

func TestSweepTicksUntilStopped(t *testing.T) {
	saver := &recordingSaver{}
	w := sweeper.New(saver, "alice", 10*time.Millisecond, nil)

	base := time.Now()
	w.Now = func() time.Time { return base }
	w.SetMessages([]vault.Message{messageExpiringAt("dead", vault.Millis(base))})

	w.Start(context.Background())
	require.Eventually(t, func() bool {
		return len(saver.saved()) > 0
	}, time.Second, 5*time.Millisecond)
	w.Stop()

	assert.Empty(t, w.Messages())
}

func TestStopCancelsTicker(t *testing.T) {
	saver := &recordingSaver{}
	w := sweeper.New(saver, "", 5*time.Millisecond, nil)
	w.Start(context.Background())
	w.Stop()

	base := time.Now()
	w.Now = func() time.Time { return base }
	w.SetMessages([]vault.Message{messageExpiringAt("dead", vault.Millis(base))})
	time.Sleep(30 * time.Millisecond)

	assert.Empty(t, saver.saved(), "a stopped sweeper must not tick")
}

func TestAppendDuringInFlightSaveNotLost(t *testing.T) {
	saver := &recordingSaver{block: make(chan struct{})}
	w := sweeper.New(saver, "", time.Hour, nil)

	base := time.Now()
	w.Now = func() time.Time { return base }
	w.SetMessages([]vault.Message{messageExpiringAt("dead", vault.Millis(base))})

	done := make(chan struct{})
	go func() {
		w.Sweep(context.Background())
		close(done)
	}()

	// While the compaction save is in flight, the user sends a message.
	late := vault.NewMessage(vault.RoleUser, "late", "", 0)
	w.Append(late)
	close(saver.block)
	<-done

	got := w.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "late", got[0].Content)
}
