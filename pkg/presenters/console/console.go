package console

import (
	"context"

	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
	"github.com/goliatone/go-lfg-client/pkg/presenters"
)

// Presenter writes toasts to the configured logger for debugging and for
// headless hosts.
type Presenter struct {
	name string
	log  logger.Logger
}

type Option func(*Presenter)

// WithName overrides the presenter name (defaults to "console").
func WithName(name string) Option {
	return func(p *Presenter) {
		if name != "" {
			p.name = name
		}
	}
}

// New constructs a console toast presenter.
func New(l logger.Logger, opts ...Option) *Presenter {
	if l == nil {
		l = &logger.Nop{}
	}
	p := &Presenter{name: "console", log: l}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

var _ presenters.ToastPresenter = (*Presenter)(nil)

func (p *Presenter) Show(ctx context.Context, toast presenters.Toast) error {
	p.log.Info("toast",
		logger.Field{Key: "presenter", Value: p.name},
		logger.Field{Key: "type", Value: string(toast.Type)},
		logger.Field{Key: "message", Value: toast.Message},
	)
	return nil
}
