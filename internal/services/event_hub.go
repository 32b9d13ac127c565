package services

import (
	"sync"
	"time"

	"ghgp/internal/models"
)

// ReviewEvent 审核动态事件，推送给订阅的WebSocket连接
type ReviewEvent struct {
	Type            string                    `json:"type"` // record_created / record_verified / record_rejected
	CompanyID       uint                      `json:"company_id"`
	RecordID        uint                      `json:"record_id"`
	ReportingPeriod string                    `json:"reporting_period"`
	Status          models.VerificationStatus `json:"status"`
	OperatorID      uint                      `json:"operator_id"`
	Timestamp       time.Time                 `json:"timestamp"`
}

// 事件类型常量
const (
	EventRecordCreated  = "record_created"
	EventRecordVerified = "record_verified"
	EventRecordRejected = "record_rejected"
)

// EventHub 进程内事件分发器
//
// 按公司维度订阅，慢消费者直接丢弃事件而不阻塞发布方。
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan ReviewEvent]struct{}
}

var (
	eventHubInstance *EventHub
	eventHubOnce     sync.Once
)

// GetEventHub 获取事件分发器单例
func GetEventHub() *EventHub {
	eventHubOnce.Do(func() {
		eventHubInstance = &EventHub{
			subscribers: make(map[uint]map[chan ReviewEvent]struct{}),
		}
	})
	return eventHubInstance
}

// Subscribe 订阅某公司的审核事件，返回事件通道
func (h *EventHub) Subscribe(companyID uint) chan ReviewEvent {
	ch := make(chan ReviewEvent, 16)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[companyID] == nil {
		h.subscribers[companyID] = make(map[chan ReviewEvent]struct{})
	}
	h.subscribers[companyID][ch] = struct{}{}
	return ch
}

// Unsubscribe 退订并关闭通道
func (h *EventHub) Unsubscribe(companyID uint, ch chan ReviewEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subscribers[companyID]; ok {
		if _, exists := subs[ch]; exists {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, companyID)
		}
	}
}

// Publish 发布事件给该公司的所有订阅者
func (h *EventHub) Publish(event ReviewEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[event.CompanyID] {
		select {
		case ch <- event:
		default:
			// 通道已满，丢弃
		}
	}
}
