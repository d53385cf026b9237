package healthcheck

import "context"

type (
	// Probe checks a single upstream dependency. Check reports success with an
	// optional human readable detail, or an error describing the failure.
	// Implementations must honor ctx cancellation to be interruptible.
	Probe interface {
		Name() string
		Check(ctx context.Context) (string, error)
	}

	// ProbeFunc adapts a plain function to the Probe interface.
	ProbeFunc struct {
		name string
		fn   func(ctx context.Context) (string, error)
	}
)

func NewProbeFunc(name string, fn func(ctx context.Context) (string, error)) ProbeFunc {
	return ProbeFunc{
		name: name,
		fn:   fn,
	}
}

func (p ProbeFunc) Name() string {
	return p.name
}

func (p ProbeFunc) Check(ctx context.Context) (string, error) {
	return p.fn(ctx)
}
