package services

import (
	"testing"
	"time"

	"ghgp/internal/models"
)

func newTestHub() *EventHub {
	return &EventHub{
		subscribers: make(map[uint]map[chan ReviewEvent]struct{}),
	}
}

func TestEventHubPublishToCompany(t *testing.T) {
	hub := newTestHub()

	ch := hub.Subscribe(1)
	defer hub.Unsubscribe(1, ch)

	event := ReviewEvent{
		Type:      EventRecordVerified,
		CompanyID: 1,
		RecordID:  42,
		Status:    models.VerificationVerified,
		Timestamp: time.Now(),
	}
	hub.Publish(event)

	select {
	case got := <-ch:
		if got.RecordID != 42 || got.Type != EventRecordVerified {
			t.Errorf("收到的事件不符: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("订阅者未收到事件")
	}
}

func TestEventHubCompanyIsolation(t *testing.T) {
	hub := newTestHub()

	ch1 := hub.Subscribe(1)
	ch2 := hub.Subscribe(2)
	defer hub.Unsubscribe(1, ch1)
	defer hub.Unsubscribe(2, ch2)

	hub.Publish(ReviewEvent{Type: EventRecordCreated, CompanyID: 1, RecordID: 7})

	select {
	case <-ch1:
	case <-time.After(time.Second):
		t.Fatal("公司1的订阅者应当收到事件")
	}

	select {
	case got := <-ch2:
		t.Fatalf("公司2不应收到公司1的事件: %+v", got)
	default:
	}
}

func TestEventHubSlowConsumerDoesNotBlock(t *testing.T) {
	hub := newTestHub()

	ch := hub.Subscribe(1)
	defer hub.Unsubscribe(1, ch)

	// 发布量超过通道容量，发布方不能被阻塞
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(ReviewEvent{Type: EventRecordCreated, CompanyID: 1, RecordID: uint(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("慢消费者阻塞了发布方")
	}
}

func TestEventHubUnsubscribeClosesChannel(t *testing.T) {
	hub := newTestHub()

	ch := hub.Subscribe(1)
	hub.Unsubscribe(1, ch)

	if _, ok := <-ch; ok {
		t.Error("退订后通道应当已关闭")
	}

	// 退订后发布不应panic
	hub.Publish(ReviewEvent{Type: EventRecordCreated, CompanyID: 1})
}
