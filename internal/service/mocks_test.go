package service

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/repository/memory"
)

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) RentalRequested(ctx context.Context, r domain.Rental) {
	m.Called(ctx, r)
}

func (m *MockNotifier) RentalStatusChanged(ctx context.Context, r domain.Rental) {
	m.Called(ctx, r)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error {
	args := m.Called(ctx, toEmail, toName, subject, plainText, htmlContent)
	return args.Error(0)
}

// MockBlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockRecorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordRentalTransition(from, to domain.RentalStatus) {
	m.Called(from, to)
}

// recordingPublisher keeps every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// lockstepRentals holds every GetByID until gate is released, so two
// transitions read the same rental state before either writes.
type lockstepRentals struct {
	*memory.RentalRepository
	gate *sync.WaitGroup
}

func (r *lockstepRentals) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	rt, err := r.RentalRepository.GetByID(ctx, id)
	if r.gate != nil {
		r.gate.Done()
		r.gate.Wait()
	}
	return rt, err
}
