package rotation

import (
	"context"
	"time"
)

// Runner 在真实时间上驱动 Scheduler：睡眠到最近的触发时间，
// 输入变化时通过 Wake 重新计算。每个 Scheduler 同一时刻只能有一个 Runner
type Runner struct {
	sched    *Scheduler
	wake     chan struct{}
	done     chan struct{}
	onEvents func([]Event)
	now      func() time.Time
}

// NewRunner 创建驱动器，onEvents 可为空
func NewRunner(sched *Scheduler, onEvents func([]Event)) *Runner {
	return &Runner{
		sched:    sched,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		onEvents: onEvents,
		now:      time.Now,
	}
}

// Run 启动调度并阻塞直到 ctx 取消；返回前停止调度器
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)

	r.sched.Start(r.now())
	defer r.sched.Stop()

	for {
		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		if deadline, ok := r.sched.NextDeadline(); ok {
			timer = time.NewTimer(deadline.Sub(r.now()))
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return
		case <-r.wake:
			stopTimer(timer)
		case <-timerC:
			// 取消后不再处理任何触发
			if ctx.Err() != nil {
				return
			}
			if events := r.sched.Advance(r.now()); len(events) > 0 && r.onEvents != nil {
				r.onEvents(events)
			}
		}
	}
}

// Wake 通知驱动器重新计算下一次触发时间，不阻塞
func (r *Runner) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Done 在 Run 返回后关闭
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
