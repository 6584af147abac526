package termwright

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Runner binds a provider to scenario execution with a guaranteed
// session lifecycle: exactly one Close per Open on every exit path.
type Runner interface {
	Run(ctx context.Context, sc *Scenario) (*Result, error)
}

type runner struct {
	p Provider
}

func NewRunner(p Provider) Runner {
	return &runner{p}
}

func (r *runner) Run(ctx context.Context, sc *Scenario) (res *Result, err error) {
	log := zerolog.Ctx(ctx)

	sess, err := r.p.Open(ctx, sc.SessionName())
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close session: %w", cerr)
		}
	}()

	log.Info().Str("scenario", sc.Name()).Str("session", sess.Name()).Msg("scenario started")
	res = sc.Run(ctx, sess)
	log.Info().Str("scenario", sc.Name()).Bool("passed", res.Passed()).Msg("scenario finished")
	return res, nil
}
