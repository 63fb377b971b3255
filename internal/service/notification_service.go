package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/notify"
)

const (
	notificationQueueSize = 64
	notificationWorkers   = 4
	notificationTimeout   = 10 * time.Second
)

// notificationService is the concrete implementation of NotificationService
type notificationService struct {
	notifier Notifier
	log      zerolog.Logger
	queue    chan notify.Message

	mu      sync.Mutex
	started bool
	stopped bool
	// stop ends intake; done is closed once the dispatch loop has returned
	stop chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
	// sem bounds the number of webhook calls in flight
	sem chan struct{}
}

func newNotificationService(notifier Notifier, log zerolog.Logger) *notificationService {
	return &notificationService{
		notifier: notifier,
		log:      log.With().Str("service", "notification").Logger(),
		queue:    make(chan notify.Message, notificationQueueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		sem:      make(chan struct{}, notificationWorkers),
	}
}

func (s *notificationService) configured() bool {
	return s.notifier != nil && s.notifier.Configured()
}

// Send delivers an explicit notification synchronously
func (s *notificationService) Send(ctx context.Context, req *models.NotificationRequest) error {
	if !s.configured() {
		return newError(ErrUnavailable, "Notification webhook is not configured")
	}

	msg := notify.Message{Title: req.Title, Body: req.Message}
	for _, f := range req.Fields {
		msg.Fields = append(msg.Fields, notify.Field{Name: f.Name, Value: f.Value})
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		if errors.Is(err, notify.ErrNotConfigured) {
			return newError(ErrUnavailable, "Notification webhook is not configured")
		}
		s.log.Error().Err(err).Str("title", req.Title).Msg("Failed to send notification")
		return &Error{Kind: ErrUpstream, Message: "Failed to send notification", Err: err}
	}
	return nil
}

// Publish queues a workflow event for the dispatcher
func (s *notificationService) Publish(msg notify.Message) {
	if !s.configured() {
		return
	}
	select {
	case s.queue <- msg:
	default:
		s.log.Warn().Str("title", msg.Title).Msg("Notification queue full, dropping event")
	}
}

// StartDispatcher delivers queued events until StopDispatcher is called or
// ctx is cancelled. It blocks, so callers run it in a goroutine. Events still
// queued when it stops are delivered before it returns.
func (s *notificationService) StartDispatcher(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()
	defer close(s.done)

	s.log.Info().Int("workers", notificationWorkers).Msg("Notification dispatcher started")

	for {
		select {
		case <-ctx.Done():
			s.drain()
			return
		case <-s.stop:
			s.drain()
			return
		case msg := <-s.queue:
			s.dispatch(msg)
		}
	}
}

// dispatch waits for a free worker slot and delivers msg in the background.
// Only the dispatch loop calls it, so every wg.Add happens before done is
// closed and StopDispatcher's wg.Wait.
func (s *notificationService) dispatch(msg notify.Message) {
	s.sem <- struct{}{}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.sem }()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().Interface("panic", r).Str("title", msg.Title).Msg("Notification delivery panicked - recovered")
			}
		}()
		s.deliver(msg)
	}()
}

func (s *notificationService) drain() {
	for {
		select {
		case msg := <-s.queue:
			s.dispatch(msg)
		default:
			return
		}
	}
}

// deliver is bounded by its own timeout, not by the dispatcher's lifetime,
// so shutdown waits for it instead of cancelling it
func (s *notificationService) deliver(msg notify.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
	defer cancel()

	if err := s.notifier.Send(ctx, msg); err != nil {
		s.log.Warn().Err(err).Str("title", msg.Title).Msg("Workflow notification failed")
	}
}

// StopDispatcher stops intake, delivers what is still queued and waits for
// in-flight deliveries
func (s *notificationService) StopDispatcher() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	close(s.stop)
	if started {
		<-s.done
	}
	s.wg.Wait()
	s.log.Info().Msg("Notification dispatcher stopped")
}
