package ports

import (
	"context"

	"github.com/layer-3/warden/core"
)

// EventPublisher publishes login events to other interested services
type EventPublisher interface {
	PublishLogin(ctx context.Context, event core.LoginEvent) error
}
