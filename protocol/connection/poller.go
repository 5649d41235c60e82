package connection

import (
	"context"
	"errors"
	"time"

	"github.com/findy-network/findy-didexchange/core"
	"github.com/go-co-op/gocron"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// PollOnce runs UpdateState once for every connection which is waiting for
// a message. It returns the number of connections whose state changed. The
// errors are logged and the other connections are still polled.
func (cs *Connections) PollOnce(ctx context.Context) (changed int) {
	for _, h := range cs.Handles() {
		if ctx.Err() != nil {
			break
		}
		err := cs.Do(h, func(c *Connection) error {
			switch c.sm.State.(type) {
			case *Initialized, *Failed:
				return nil
			}
			before := c.sm.State.Name()
			if err := c.UpdateState(ctx); err != nil {
				return err
			}
			if c.sm.State.Name() != before {
				changed++
			}
			return nil
		})
		if err != nil && !errors.Is(err, core.ErrInvalidHandle) {
			glog.Warningln("poll connection", h, ":", err)
		}
	}
	return changed
}

// Poller drives the connections on a schedule.
type Poller struct {
	cs       *Connections
	interval time.Duration
	cron     *gocron.Scheduler

	cancel context.CancelFunc
}

func NewPoller(cs *Connections, interval time.Duration) *Poller {
	cron := gocron.NewScheduler(time.Now().Location())
	cron.SingletonModeAll()
	return &Poller{cs: cs, interval: interval, cron: cron}
}

// Start schedules the polls and returns right away.
func (p *Poller) Start() (err error) {
	defer err2.Handle(&err, "start poller")

	if p.interval <= 0 {
		return core.Errorf(core.KindInvalidOption, "poll interval %v", p.interval)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	_ = try.To1(p.cron.Every(p.interval).Do(func() {
		if n := p.cs.PollOnce(ctx); n > 0 {
			glog.V(1).Infof("poll: %d connections changed", n)
		}
	}))
	p.cron.StartAsync()
	glog.V(1).Infoln("poller started, interval", p.interval)
	return nil
}

// Stop stops the schedule and cancels the running poll.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.cron.Stop()
	glog.V(1).Infoln("poller stopped")
}
