package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"autism-diet-planner/internal/llm"
)

type fakeChat struct {
	turns int
}

func (f *fakeChat) Send(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	f.turns++
	return llm.ContentResponse{Content: prompt}, nil
}

func (f *fakeChat) Reset()     { f.turns = 0 }
func (f *fakeChat) Turns() int { return f.turns }

type fakeProvider struct {
	created int
}

func (p *fakeProvider) Name() string { return "fake" }
func (p *fakeProvider) NewSession() llm.ChatSession {
	p.created++
	return &fakeChat{}
}
func (p *fakeProvider) Close() error { return nil }

func TestRegistry_GetReusesSession(t *testing.T) {
	provider := &fakeProvider{}
	r := NewRegistry(provider, 10, time.Hour)

	a := r.Get("alice")
	_, _ = a.Send(context.Background(), "hi")

	assert.Same(t, a, r.Get("alice"))
	assert.Equal(t, 1, r.Get("alice").Turns())
	assert.NotSame(t, a, r.Get("bob"))
	assert.Equal(t, 2, provider.created)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry(&fakeProvider{}, 10, time.Hour)

	assert.False(t, r.Reset("nobody"))

	chat := r.Get("alice")
	_, _ = chat.Send(context.Background(), "hi")
	assert.True(t, r.Reset("alice"))
	assert.Equal(t, 0, chat.Turns())
	assert.Same(t, chat, r.Get("alice"))
}

// blockingChat holds its lock for the whole Send, like the real sessions.
type blockingChat struct {
	mu      sync.Mutex
	started chan struct{}
	release chan struct{}
}

func (b *blockingChat) Send(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	close(b.started)
	<-b.release
	return llm.ContentResponse{Content: prompt}, nil
}

func (b *blockingChat) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
}

func (b *blockingChat) Turns() int { return 0 }

type blockingProvider struct {
	chat *blockingChat
}

func (p *blockingProvider) Name() string { return "blocking" }
func (p *blockingProvider) NewSession() llm.ChatSession {
	if p.chat != nil {
		return &fakeChat{}
	}
	p.chat = &blockingChat{started: make(chan struct{}), release: make(chan struct{})}
	return p.chat
}
func (p *blockingProvider) Close() error { return nil }

func TestRegistry_ResetDoesNotBlockOtherSessions(t *testing.T) {
	provider := &blockingProvider{}
	r := NewRegistry(provider, 10, time.Hour)

	alice := r.Get("alice")
	sendDone := make(chan struct{})
	go func() {
		defer close(sendDone)
		_, _ = alice.Send(context.Background(), "slow")
	}()
	<-provider.chat.started

	resetDone := make(chan bool)
	go func() { resetDone <- r.Reset("alice") }()

	got := make(chan llm.ChatSession)
	go func() { got <- r.Get("bob") }()

	select {
	case bob := <-got:
		assert.NotSame(t, alice, bob)
	case <-time.After(time.Second):
		t.Fatal("Get for another session blocked behind a reset waiting on a running Send")
	}

	close(provider.chat.release)
	<-sendDone
	assert.True(t, <-resetDone)
}

func TestRegistry_Eviction(t *testing.T) {
	provider := &fakeProvider{}
	r := NewRegistry(provider, 1, time.Hour)

	first := r.Get("alice")
	r.Get("bob")

	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, first, r.Get("alice"))
}

func TestRegistry_Expiry(t *testing.T) {
	r := NewRegistry(&fakeProvider{}, 10, 20*time.Millisecond)

	first := r.Get("alice")
	time.Sleep(60 * time.Millisecond)

	assert.NotSame(t, first, r.Get("alice"))
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry(&fakeProvider{}, 10, time.Hour)
	r.Get("alice")
	r.Remove("alice")
	assert.Equal(t, 0, r.Len())
}

func TestNewID(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
	assert.Len(t, NewID(), 36)
}
