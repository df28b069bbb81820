package engine

import (
	"github.com/gradascent/nautilus-trader/internal/identifiers"
	"github.com/gradascent/nautilus-trader/internal/messages"
)

// fakeBackend is a no-op Backend for tests: it records what was sent
// without touching any real transport.
type fakeBackend struct {
	connectErr    error
	commands      []messages.SubscriptionCommand
	requests      []messages.DataRequest
	connectCalls  int
	disconnectN   int
}

func (b *fakeBackend) Connect() error {
	b.connectCalls++
	return b.connectErr
}

func (b *fakeBackend) Disconnect() error {
	b.disconnectN++
	return nil
}

func (b *fakeBackend) SendCommand(cmd messages.SubscriptionCommand) error {
	b.commands = append(b.commands, cmd)
	return nil
}

func (b *fakeBackend) SendRequest(req messages.DataRequest) error {
	b.requests = append(b.requests, req)
	return nil
}

// fakeAdapter wraps BaseAdapter so tests get the real subscription
// bookkeeping and state machine without a real venue connection.
type fakeAdapter struct {
	*BaseAdapter
	backend *fakeBackend
}

func newFakeAdapter(clientId identifiers.ClientId, venue identifiers.Venue) *fakeAdapter {
	backend := &fakeBackend{}
	return &fakeAdapter{
		BaseAdapter: NewBaseAdapter(clientId, venue, backend),
		backend:     backend,
	}
}

var _ ClientAdapter = (*fakeAdapter)(nil)
