// Package enginetest provides a testify mock of engine.Engine.
package enginetest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ytget/ytfetch/internal/engine"
)

// Mock is a scriptable engine.Engine. Download replays the events given
// through Events before returning.
type Mock struct {
	mock.Mock
	Events []engine.Event
}

var _ engine.Engine = (*Mock)(nil)

// Metadata implements engine.Engine
func (m *Mock) Metadata(ctx context.Context, url string, opts engine.MetadataOptions) (*engine.Info, error) {
	args := m.Called(ctx, url, opts)
	info, _ := args.Get(0).(*engine.Info)
	return info, args.Error(1)
}

// Download implements engine.Engine
func (m *Mock) Download(ctx context.Context, url string, cfg engine.Config, onEvent func(engine.Event)) (*engine.Outcome, error) {
	args := m.Called(ctx, url, cfg)
	if onEvent != nil {
		for _, ev := range m.Events {
			onEvent(ev)
		}
	}
	outcome, _ := args.Get(0).(*engine.Outcome)
	return outcome, args.Error(1)
}
