package service

import "context"

// StaticBackend always returns the same text. Useful offline and in tests.
type StaticBackend struct {
	Text string
}

func (b StaticBackend) Name() string {
	return "static"
}

func (b StaticBackend) Complete(ctx context.Context, _ string, _ GenerationConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.Text, nil
}

func (b StaticBackend) Ready(context.Context) error {
	return nil
}
