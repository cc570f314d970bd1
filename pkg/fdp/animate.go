package fdp

import (
	"context"
	"time"
)

// Animate steps sim until it is done, waiting interval between steps, and
// hands every new frame to onFrame. A non-positive interval steps as fast as
// possible. It returns ctx.Err() if the context ends first.
//
// Animate is the only place the Delay parameter has an effect; callers
// usually pass sim.Params().Delay.
func Animate(ctx context.Context, sim *Simulation, interval time.Duration, onFrame func(Frame)) error {
	if sim == nil {
		return errNotRunnable
	}

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for !sim.Done() {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		sim.Step()
		if onFrame != nil {
			onFrame(sim.Frame())
		}
	}
	return nil
}
