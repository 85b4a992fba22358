package database

import (
	"context"
	"testing"

	"carserve/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	customer := createTestCustomer(t, db, "help@example.com")
	admin := &models.Account{Email: "support-admin@example.com", FullName: "Support Admin"}
	require.NoError(t, db.CreateAdmin(ctx, admin))

	ticket := &models.SupportTicket{
		Number: "T2608260001", UserID: customer.ID,
		Subject: "Wrong slot time", Category: "booking_issue", Priority: models.PriorityHigh,
	}
	require.NoError(t, db.CreateTicket(ctx, ticket))
	assert.Equal(t, models.TicketOpen, ticket.Status)

	require.NoError(t, db.AssignTicket(ctx, ticket.ID, admin.ID))

	got, err := db.GetTicketByNumber(ctx, "T2608260001")
	require.NoError(t, err)
	assert.Equal(t, models.TicketInProgress, got.Status)
	assert.Equal(t, admin.ID, got.AssignedTo)

	require.NoError(t, db.UpdateTicketStatus(ctx, ticket.ID, models.TicketInProgress, models.TicketResolved))

	got, err = db.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketResolved, got.Status)
	assert.NotNil(t, got.ResolvedAt)

	// A stale tab still holding in_progress loses.
	err = db.UpdateTicketStatus(ctx, ticket.ID, models.TicketInProgress, models.TicketClosed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAssignTicket_ClosedRejected(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	customer := createTestCustomer(t, db, "closed@example.com")
	ticket := &models.SupportTicket{Number: "T2608260002", UserID: customer.ID, Subject: "s", Category: "other", Priority: models.PriorityLow}
	require.NoError(t, db.CreateTicket(ctx, ticket))
	require.NoError(t, db.UpdateTicketStatus(ctx, ticket.ID, models.TicketOpen, models.TicketClosed))

	err := db.AssignTicket(ctx, ticket.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTicketMessages(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	customer := createTestCustomer(t, db, "thread@example.com")
	ticket := &models.SupportTicket{Number: "T2608260003", UserID: customer.ID, Subject: "s", Category: "other", Priority: models.PriorityMedium}
	require.NoError(t, db.CreateTicket(ctx, ticket))

	require.NoError(t, db.AddTicketMessage(ctx, &models.SupportMessage{TicketID: ticket.ID, SenderID: customer.ID, Body: "any update?"}))
	require.NoError(t, db.AddTicketMessage(ctx, &models.SupportMessage{TicketID: ticket.ID, SenderID: customer.ID, Body: "hello?"}))

	messages, err := db.ListTicketMessages(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "any update?", messages[0].Body)
}

func TestListOpenTickets_PriorityOrder(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	customer := createTestCustomer(t, db, "queue@example.com")
	low := &models.SupportTicket{Number: "T2608260010", UserID: customer.ID, Subject: "low", Category: "other", Priority: models.PriorityLow}
	require.NoError(t, db.CreateTicket(ctx, low))
	urgent := &models.SupportTicket{Number: "T2608260011", UserID: customer.ID, Subject: "urgent", Category: "payment_problem", Priority: models.PriorityUrgent}
	require.NoError(t, db.CreateTicket(ctx, urgent))

	tickets, err := db.ListOpenTickets(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, urgent.ID, tickets[0].ID)
	assert.Equal(t, low.ID, tickets[1].ID)
}
