package service

import (
	"context"
	"testing"

	"carserve/internal/database"
	"carserve/internal/events"
	"carserve/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterCustomer(t *testing.T) {
	repo := new(mockRepo)
	account := &models.Account{Email: "new@example.com", FullName: "New Customer"}
	profile := &models.CustomerProfile{City: "Dhaka"}

	repo.On("CreateCustomer", mock.Anything, account, profile).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Account).ID = 1
	})
	repo.On("GetCustomerProfile", mock.Anything, int64(1)).Return(profile, nil)
	repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.RecipientID == 1 && n.Title == "Welcome"
	})).Return(nil)

	svc := NewAccountService(repo, nil, testLogger())
	require.NoError(t, svc.RegisterCustomer(context.Background(), account, profile))
	repo.AssertExpectations(t)
}

func TestRegisterCustomerBlankEmail(t *testing.T) {
	svc := NewAccountService(new(mockRepo), nil, testLogger())
	err := svc.RegisterCustomer(context.Background(), &models.Account{Email: "   "}, &models.CustomerProfile{})
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestRegisterDealerPublishesEvent(t *testing.T) {
	repo := new(mockRepo)
	bus := new(mockBus)
	account := &models.Account{Email: "garage@example.com"}
	profile := &models.DealerProfile{BusinessName: "Main Street Garage"}

	repo.On("CreateDealer", mock.Anything, account, profile).Return(nil)
	bus.On("PublishJSON", events.EventDealerRegistered, mock.Anything).Return(nil)

	svc := NewAccountService(repo, bus, testLogger())
	require.NoError(t, svc.RegisterDealer(context.Background(), account, profile))
	bus.AssertExpectations(t)
}

func TestApproveDealerNotifies(t *testing.T) {
	repo := new(mockRepo)
	bus := new(mockBus)

	repo.On("SetDealerApproved", mock.Anything, int64(2), true).Return(nil)
	repo.On("RecordAdminAction", mock.Anything, mock.MatchedBy(func(a *models.AdminAction) bool {
		return a.AdminID == 99 && a.Action == "dealer_approved" && a.TargetKind == "account" && a.TargetID == 2
	})).Return(nil)
	repo.On("GetDealerProfile", mock.Anything, int64(2)).Return(&models.DealerProfile{
		AccountID: 2, BusinessName: "Main Street Garage", IsApproved: true,
	}, nil)
	repo.On("GetCustomerProfile", mock.Anything, int64(2)).Return(nil, database.ErrNotFound)
	repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.RecipientID == 2 && n.Channel == models.ChannelEmail
	})).Return(nil)
	bus.On("PublishJSON", events.EventDealerApproved, mock.Anything).Return(nil)

	svc := NewAccountService(repo, bus, testLogger())
	require.NoError(t, svc.ApproveDealer(context.Background(), 2, 99))
	repo.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestApproveDealerUnknownAccount(t *testing.T) {
	repo := new(mockRepo)
	repo.On("SetDealerApproved", mock.Anything, int64(9), true).Return(database.ErrNotFound)

	svc := NewAccountService(repo, nil, testLogger())
	err := svc.ApproveDealer(context.Background(), 9, 99)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
