package mocks

import (
	"context"

	"accidentapi/internal/model"
	"accidentapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockTicketRepository struct {
	mock.Mock
}

var _ repository.TicketRepository = (*MockTicketRepository)(nil)

func (m *MockTicketRepository) Create(ctx context.Context, t *model.Ticket) (*model.Ticket, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketRepository) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketRepository) List(ctx context.Context, f repository.TicketFilter) (*repository.PageResult[model.Ticket], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Ticket]), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, t *model.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTicketRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTicketRepository) AddAttachment(ctx context.Context, a *model.Attachment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockTicketRepository) DeleteAttachment(ctx context.Context, ticketID, attachmentID string) error {
	args := m.Called(ctx, ticketID, attachmentID)
	return args.Error(0)
}

func (m *MockTicketRepository) CountByStatus(ctx context.Context) (map[model.TicketStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.TicketStatus]int), args.Error(1)
}
