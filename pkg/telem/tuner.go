package telem

import (
	"github.com/golang/glog"

	fx "github.com/robotalks/param.go/pkg/framework"
	"github.com/robotalks/param.go/pkg/param"
)

// FailPolicy selects what the tuner does when persisting an update fails.
// The storage medium gives no stronger guarantee either way; which failure
// mode is safer is a vehicle-level decision, so it stays configurable.
type FailPolicy int

const (
	// RetryNextCycle logs the failure, keeps the update pending and
	// retries it on the next cycle. The in-memory value is already
	// updated, so the vehicle flies with the new tuning meanwhile.
	RetryNextCycle FailPolicy = iota
	// Escalate returns the failure from Control for the loop (or a
	// wrapping safety monitor) to handle.
	Escalate
)

// Tuner binds the parameter store to a telemetry link. As a loop
// controller it processes at most one parameter update per cycle.
type Tuner struct {
	Store  *param.Store
	Link   Link
	Policy FailPolicy

	retry *pendingUpdate
}

type pendingUpdate struct {
	index int
	value float32
}

// NewTuner creates a Tuner.
func NewTuner(store *param.Store, link Link) *Tuner {
	return &Tuner{Store: store, Link: link}
}

// Start loads the store and propagates the validated parameter array to
// the link. It must be called once, before the loop begins.
func (t *Tuner) Start() error {
	state, err := t.Store.Load()
	if err != nil {
		return err
	}
	glog.Infof("parameter store loaded: %v, %d slots", state, t.Store.Count())
	return t.Link.SetParams(t.Store.Values())
}

// Control implements Controller.
func (t *Tuner) Control(cc fx.ControlContext) error {
	if t.retry != nil {
		// a failed persist from a previous cycle takes the slot of
		// this cycle's update
		upd := *t.retry
		t.retry = nil
		return t.apply(upd.index, upd.value)
	}
	i, ok := t.Link.UpdatedParam()
	if !ok {
		return nil
	}
	return t.apply(i, t.Link.Param(i))
}

func (t *Tuner) apply(i int, v float32) error {
	err := t.Store.Set(i, v)
	if err == param.ErrSlotRange {
		glog.Warningf("rejected update for out-of-range slot %d", i)
		return nil
	}
	if err != nil {
		if t.Policy == Escalate {
			return err
		}
		glog.Errorf("persist param[%d] failed, will retry: %v", i, err)
		t.retry = &pendingUpdate{index: i, value: v}
		return nil
	}
	if acker, ok := t.Link.(Acker); ok {
		if err = acker.AckParam(i, v); err != nil {
			glog.Warningf("ack param[%d] failed: %v", i, err)
		}
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (t *Tuner) AddToLoop(loop *fx.Loop) {
	loop.AddController(t)
	if adder, ok := t.Link.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := t.Link.(fx.Runnable); ok {
		loop.AddRunnable(fx.NamedRun("link", runnable))
	}
}
