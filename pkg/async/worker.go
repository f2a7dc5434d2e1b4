package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"noticeboard/pkg/logger"
)

// ErrQueueFull 任务队列已满
var ErrQueueFull = errors.New("async: task queue is full")

// ErrStopped 工作器已停止
var ErrStopped = errors.New("async: worker stopped")

// Task 表示一个异步任务
type Task struct {
	ID       string
	Handler  func(ctx context.Context) error
	Timeout  time.Duration
	RetryMax int
}

// Worker 异步任务处理器，展示会话的外部数据拉取都经由它执行
type Worker struct {
	taskQueue chan Task
	logger    *logger.Logger
	wg        sync.WaitGroup
	mu        sync.RWMutex
	stopped   bool
	seq       atomic.Uint64
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewWorker 创建一个新的工作器
func NewWorker(queueSize int, logger *logger.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		taskQueue: make(chan Task, queueSize),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start 启动工作协程
func (w *Worker) Start(numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.processTask()
	}
}

// Stop 停止接收任务，取消执行中的任务并等待退出
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.taskQueue)
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
}

// Submit 提交任务，队列已满时立即返回 ErrQueueFull，不阻塞调用方
func (w *Worker) Submit(task Task) error {
	if task.ID == "" {
		task.ID = fmt.Sprintf("task_%d", w.seq.Add(1))
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}

	select {
	case w.taskQueue <- task:
		return nil
	default:
		w.logger.Warn("异步任务队列已满，丢弃任务", "task_id", task.ID)
		return ErrQueueFull
	}
}

// AddTask 提交一个带超时的简单任务
func (w *Worker) AddTask(name string, timeout time.Duration, handler func(ctx context.Context) error) error {
	return w.Submit(Task{
		ID:      fmt.Sprintf("%s_%d", name, w.seq.Add(1)),
		Handler: handler,
		Timeout: timeout,
	})
}

// processTask 处理任务的工作循环
func (w *Worker) processTask() {
	defer w.wg.Done()

	for task := range w.taskQueue {
		w.executeTask(task)
	}
}

// executeTask 执行单个任务
func (w *Worker) executeTask(task Task) {
	start := time.Now()
	w.logger.Debug("开始执行异步任务", "task_id", task.ID)

	ctx := w.ctx
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	var err error
	for attempt := 0; attempt <= task.RetryMax; attempt++ {
		if attempt > 0 {
			w.logger.Info("重试异步任务", "task_id", task.ID, "attempt", attempt)
			select {
			case <-time.After(time.Second * time.Duration(attempt)):
			case <-ctx.Done():
				err = ctx.Err()
			}
			if ctx.Err() != nil {
				break
			}
		}

		err = w.run(ctx, task)
		if err == nil {
			break
		}
	}

	if err != nil {
		w.logger.Error("异步任务失败", "task_id", task.ID, "error", err)
		return
	}
	w.logger.Debug("异步任务完成", "task_id", task.ID, "duration", time.Since(start))
}

func (w *Worker) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.Handler(ctx)
}
