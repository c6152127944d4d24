package notify

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"WrapDesk/pkg/zlog"
)

const (
	defaultPollInterval = 30 * time.Second
	refreshTimeout      = 10 * time.Second
	badgeCap            = 99
)

// Store 通知的内存快照，持有派生状态并做乐观更新。
// 未读数永远从快照推导，不单独存储，避免和列表脱节。
type Store struct {
	gw Gateway

	mu     sync.RWMutex
	items  []Notification
	total  int64
	filter ListFilter

	// pendingDeletes 防止 refresh 把已删除（或删除中）的通知重新塞回快照。
	// value 为 true 表示服务端已确认删除，等一次不含该 id 的刷新后清掉。
	pendingDeletes map[string]bool

	// readOverrides 乐观标记为已读的 id 集合，
	// 在服务端副本跟上之前，刷新合并时强制保持已读。
	readOverrides map[string]struct{}

	// generation 在 StopPolling 时递增，
	// 携带旧代号的在途刷新响应一律丢弃。
	generation uint64

	polling  bool
	stopChan chan struct{}

	lastRefreshed time.Time
	lastError     error

	onChange func()
}

// NewStore filter 里的分页与筛选条件会用于每次刷新
func NewStore(gw Gateway, filter ListFilter) *Store {
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	return &Store{
		gw:             gw,
		filter:         filter,
		pendingDeletes: make(map[string]bool),
		readOverrides:  make(map[string]struct{}),
	}
}

// SetOnChange 注册快照变更回调，在锁外调用
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// SetFilter 更新筛选条件，下一次刷新生效
func (s *Store) SetFilter(filter ListFilter) {
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
}

// Refresh 拉取最新列表并合并进快照。
// 网络调用不持锁；应用结果前校验代号，旧代号的响应直接丢弃。
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	gen := s.generation
	filter := s.filter
	s.mu.RUnlock()

	res, err := s.gw.List(ctx, filter)
	if err != nil {
		s.mu.Lock()
		s.lastError = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if s.generation != gen {
		// 响应来自已停止的轮询周期，丢弃
		s.mu.Unlock()
		return nil
	}

	seen := make(map[string]struct{}, len(res.Items))
	items := make([]Notification, 0, len(res.Items))
	for _, n := range res.Items {
		seen[n.Id] = struct{}{}
		if _, ok := s.pendingDeletes[n.Id]; ok {
			continue
		}
		if _, ok := s.readOverrides[n.Id]; ok {
			if n.IsRead {
				// 服务端副本已跟上，覆盖标记完成使命
				delete(s.readOverrides, n.Id)
			} else {
				n.IsRead = true
			}
		}
		items = append(items, n)
	}
	// 已确认删除且服务端不再返回的 id，从集合里清掉
	for id, confirmed := range s.pendingDeletes {
		if !confirmed {
			continue
		}
		if _, ok := seen[id]; !ok {
			delete(s.pendingDeletes, id)
		}
	}

	sortNotifications(items)
	s.items = items
	s.total = res.Total
	s.lastRefreshed = time.Now()
	s.lastError = nil
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

// MarkAsRead 乐观置为已读，失败时回滚。对已读通知重复调用是无操作。
func (s *Store) MarkAsRead(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx >= 0 && s.items[idx].IsRead {
		s.mu.Unlock()
		return nil
	}
	flipped := false
	if idx >= 0 {
		s.items[idx].IsRead = true
		flipped = true
	}
	s.readOverrides[id] = struct{}{}
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}

	if err := s.gw.MarkAsRead(ctx, id); err != nil {
		s.mu.Lock()
		delete(s.readOverrides, id)
		if flipped {
			if i := s.indexOf(id); i >= 0 {
				s.items[i].IsRead = false
			}
		}
		s.lastError = err
		fn = s.onChange
		s.mu.Unlock()
		if fn != nil {
			fn()
		}
		return err
	}
	return nil
}

// MarkAllAsRead 乐观置所有未读为已读，失败时只回滚本次翻转的条目
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	s.mu.Lock()
	var flipped []string
	for i := range s.items {
		if !s.items[i].IsRead {
			s.items[i].IsRead = true
			s.readOverrides[s.items[i].Id] = struct{}{}
			flipped = append(flipped, s.items[i].Id)
		}
	}
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}

	if err := s.gw.MarkAllAsRead(ctx); err != nil {
		s.mu.Lock()
		for _, id := range flipped {
			delete(s.readOverrides, id)
			if i := s.indexOf(id); i >= 0 {
				s.items[i].IsRead = false
			}
		}
		s.lastError = err
		fn = s.onChange
		s.mu.Unlock()
		if fn != nil {
			fn()
		}
		return err
	}
	return nil
}

// Delete 乐观移除并记入 pendingDeletes；失败时放回原位。
// 确认成功前后到达的刷新响应都不会把该 id 重新插回。
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	var removed Notification
	if idx >= 0 {
		removed = s.items[idx]
		s.items = append(s.items[:idx], s.items[idx+1:]...)
		if s.total > 0 {
			s.total--
		}
	}
	s.pendingDeletes[id] = false
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}

	err := s.gw.Delete(ctx, id)

	s.mu.Lock()
	if err != nil {
		delete(s.pendingDeletes, id)
		if idx >= 0 && s.indexOf(id) < 0 {
			pos := idx
			if pos > len(s.items) {
				pos = len(s.items)
			}
			s.items = append(s.items[:pos], append([]Notification{removed}, s.items[pos:]...)...)
			s.total++
		}
		s.lastError = err
		fn = s.onChange
		s.mu.Unlock()
		if fn != nil {
			fn()
		}
		return err
	}
	s.pendingDeletes[id] = true
	s.mu.Unlock()
	return nil
}

// StartPolling 启动后台轮询，重复调用是无操作
func (s *Store) StartPolling(interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	s.mu.Lock()
	if s.polling {
		s.mu.Unlock()
		return
	}
	s.polling = true
	stop := make(chan struct{})
	s.stopChan = stop
	s.mu.Unlock()

	go s.pollLoop(interval, stop)
}

// StopPolling 停止轮询，重复调用是无操作。
// 递增代号，已停止周期的在途响应不会再应用到快照。
func (s *Store) StopPolling() {
	s.mu.Lock()
	if !s.polling {
		s.mu.Unlock()
		return
	}
	s.polling = false
	close(s.stopChan)
	s.stopChan = nil
	s.generation++
	s.mu.Unlock()
}

// Close 关停轮询，语义等同 StopPolling
func (s *Store) Close() {
	s.StopPolling()
}

func (s *Store) pollLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		if err := s.Refresh(ctx); err != nil {
			// 单次失败不终止轮询，等下一个周期重试
			zlog.Warn("通知轮询刷新失败", zap.Error(err))
		}
		cancel()

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Snapshot 返回当前快照的拷贝
func (s *Store) Snapshot() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Recent 返回最新的 n 条，用于铃铛下拉
func (s *Store) Recent(n int) []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.items) {
		n = len(s.items)
	}
	out := make([]Notification, n)
	copy(out, s.items[:n])
	return out
}

// UnreadCount 未读数，始终由快照推导
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for i := range s.items {
		if !s.items[i].IsRead {
			count++
		}
	}
	return count
}

// BadgeText 角标文本，超过 99 显示 99+，零未读返回空串
func (s *Store) BadgeText() string {
	n := s.UnreadCount()
	switch {
	case n <= 0:
		return ""
	case n > badgeCap:
		return strconv.Itoa(badgeCap) + "+"
	default:
		return strconv.Itoa(n)
	}
}

// Total 服务端报告的符合条件总数
func (s *Store) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// IsPolling 轮询是否在运行
func (s *Store) IsPolling() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.polling
}

// LastRefreshed 最近一次成功刷新的时间
func (s *Store) LastRefreshed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefreshed
}

// LastError 最近一次失败的网关调用错误，成功刷新后清空
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// indexOf 调用方必须持锁
func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].Id == id {
			return i
		}
	}
	return -1
}

// sortNotifications 创建时间倒序，时间相同按 id 倒序保证稳定
func sortNotifications(items []Notification) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].Id > items[j].Id
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
