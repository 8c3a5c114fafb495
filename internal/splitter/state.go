package splitter

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/pdf-splitter/internal/logging"
)

// State 拆分运行状态
type State string

const (
	// StateNotStarted 尚未开始
	StateNotStarted State = "not_started"
	// StateValidated 输入和输出目录已检查
	StateValidated State = "validated"
	// StateLoaded 文档已加载
	StateLoaded State = "loaded"
	// StatePageProcessed 至少一页已处理
	StatePageProcessed State = "page_processed"
	// StateCompleted 全部页面处理完成
	StateCompleted State = "completed"
	// StateAborted 运行失败(终态)
	StateAborted State = "aborted"
)

// transitions 合法的状态转换
var transitions = map[State][]State{
	StateNotStarted:    {StateValidated},
	StateValidated:     {StateLoaded},
	StateLoaded:        {StatePageProcessed, StateCompleted},
	StatePageProcessed: {StatePageProcessed, StateCompleted},
}

// StateTracker 运行状态管理器
// 负责校验状态转换并记录日志
type StateTracker struct {
	state  State
	logger *logrus.Entry
	mu     sync.Mutex // 并发处理页面时保证状态转换的原子性
}

// NewStateTracker 创建状态管理器
func NewStateTracker(logger *logrus.Entry) *StateTracker {
	if logger == nil {
		logger = logrus.NewEntry(logging.Discard())
	}
	return &StateTracker{
		state:  StateNotStarted,
		logger: logger,
	}
}

// State 返回当前状态
func (t *StateTracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Transition 转换到下一个状态
func (t *StateTracker) Transition(next State) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if next == StateAborted {
		return t.abortLocked()
	}

	for _, allowed := range transitions[t.state] {
		if allowed == next {
			if next != t.state {
				t.logger.WithField(logging.FieldState, next).Debug("Split state changed")
			}
			t.state = next
			return nil
		}
	}

	return fmt.Errorf("invalid state transition: %s -> %s", t.state, next)
}

// Abort 将运行标记为失败
func (t *StateTracker) Abort() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.abortLocked()
}

func (t *StateTracker) abortLocked() error {
	switch t.state {
	case StateCompleted:
		return fmt.Errorf("invalid state transition: %s -> %s", t.state, StateAborted)
	case StateAborted:
		return nil
	}
	t.logger.WithField(logging.FieldState, StateAborted).Debug("Split state changed")
	t.state = StateAborted
	return nil
}
