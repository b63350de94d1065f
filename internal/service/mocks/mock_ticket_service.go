package mocks

import (
	"context"

	"accidentapi/internal/model"
	"accidentapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockTicketService struct {
	mock.Mock
}

var _ service.TicketService = (*MockTicketService)(nil)

func (m *MockTicketService) Create(ctx context.Context, extracted map[string]any) (*model.Ticket, error) {
	args := m.Called(ctx, extracted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketService) Get(ctx context.Context, id string) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketService) List(ctx context.Context, status model.TicketStatus, limit, offset int) (*service.TicketListResult, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TicketListResult), args.Error(1)
}

func (m *MockTicketService) Update(ctx context.Context, id string, upd service.TicketUpdate) (*model.Ticket, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTicketService) UploadAttachment(ctx context.Context, in service.AttachmentUpload) (*model.Attachment, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockTicketService) DeleteAttachment(ctx context.Context, ticketID, attachmentID string) error {
	args := m.Called(ctx, ticketID, attachmentID)
	return args.Error(0)
}

func (m *MockTicketService) Stats(ctx context.Context) (*service.TicketStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TicketStats), args.Error(1)
}
