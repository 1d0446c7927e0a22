package notification_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/notification"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	customerPhone = "+963-93-555-0147"
	courierPhone  = "+963-94-555-0112"
	operatorChat  = "ops-dispatch"
)

// recordingGateway captures sends and fails the channels listed in failOn.
type recordingGateway struct {
	sent   []ports.Notification
	failOn map[ports.NotificationChannel]error
}

func (g *recordingGateway) Send(_ context.Context, n ports.Notification) error {
	g.sent = append(g.sent, n)
	if err, ok := g.failOn[n.Channel]; ok {
		return err
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func publishedDelivery(t *testing.T) *delivery.Delivery {
	t.Helper()

	pickupPoint, err := kernel.NewGeoPoint(33.5138, 36.2765)
	require.NoError(t, err)
	dropoffPoint, err := kernel.NewGeoPoint(33.5102, 36.2913)
	require.NoError(t, err)

	pickup, err := delivery.NewAddress("12 Straight Street", "Damascus", "Layla Haddad", "+963-11-555-0101", pickupPoint)
	require.NoError(t, err)
	dropoff, err := delivery.NewAddress("7 Qassaa Avenue", "Damascus", "Omar Nassar", customerPhone, dropoffPoint)
	require.NoError(t, err)

	pkg, err := delivery.NewPackage(2.5, "documents")
	require.NoError(t, err)

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	aggregate, err := delivery.NewDelivery(
		kernel.NewUUID(), delivery.NewOrderNumber(at),
		pickup, dropoff, kernel.VehicleMotorbike, pkg, delivery.PriorityNormal, false, at)
	require.NoError(t, err)

	pricing, err := delivery.NewPricingBreakdown(
		decimal.NewFromInt(50), decimal.NewFromInt(62), decimal.Zero,
		decimal.RequireFromString("16.80"), decimal.NewFromInt(112),
		decimal.RequireFromString("78.40"), decimal.RequireFromString("33.60"),
		decimal.RequireFromString("12.40"), delivery.DistanceSourceRouting)
	require.NoError(t, err)
	require.NoError(t, aggregate.AttachPricing(pricing))

	_, err = aggregate.Publish(at)
	require.NoError(t, err)
	return aggregate
}

func testCourier(t *testing.T) *courier.Courier {
	t.Helper()
	location, err := kernel.NewGeoPoint(33.52, 36.28)
	require.NoError(t, err)
	c, err := courier.NewCourier(kernel.NewUUID(), "Samir Aswad", courierPhone, kernel.VehicleMotorbike, location)
	require.NoError(t, err)
	return c
}

func TestDispatcher_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("published notifies the customer only", func(t *testing.T) {
		gateway := &recordingGateway{}
		dispatcher := notification.NewDispatcher(gateway, operatorChat, discardLogger())
		subject := publishedDelivery(t)

		event := delivery.DispatchEvent{
			OrderNumber: subject.OrderNumber(),
			FromStatus:  delivery.StatusPending,
			ToStatus:    delivery.StatusPublished,
		}
		outcomes := dispatcher.Notify(ctx, event, subject, nil)

		require.Len(t, outcomes, 1)
		assert.Equal(t, notification.RoleCustomer, outcomes[0].Role)
		assert.Equal(t, customerPhone, outcomes[0].Recipient)
		assert.Equal(t, ports.ChannelPush, outcomes[0].Channel)
		assert.Equal(t, "delivery_published", outcomes[0].Template)
		assert.NoError(t, outcomes[0].Err)

		require.Len(t, gateway.sent, 1)
		assert.Contains(t, gateway.sent[0].Body, subject.OrderNumber())
	})

	t.Run("claimed notifies customer and courier", func(t *testing.T) {
		gateway := &recordingGateway{}
		dispatcher := notification.NewDispatcher(gateway, operatorChat, discardLogger())
		subject := publishedDelivery(t)
		claimant := testCourier(t)

		event, err := subject.Claim(claimant.ID(), time.Now().UTC())
		require.NoError(t, err)

		outcomes := dispatcher.Notify(ctx, event, subject, claimant)

		require.Len(t, outcomes, 2)
		assert.Equal(t, notification.RoleCustomer, outcomes[0].Role)
		assert.Equal(t, "courier_assigned", outcomes[0].Template)
		assert.Equal(t, notification.RoleCourier, outcomes[1].Role)
		assert.Equal(t, courierPhone, outcomes[1].Recipient)
		assert.Equal(t, "claim_confirmed", outcomes[1].Template)
	})

	t.Run("courier recipient is skipped when no courier is attached", func(t *testing.T) {
		gateway := &recordingGateway{}
		dispatcher := notification.NewDispatcher(gateway, operatorChat, discardLogger())
		subject := publishedDelivery(t)

		event, err := subject.Cancel(delivery.OperatorActor(kernel.NewUUID()), "customer changed plans", time.Now().UTC())
		require.NoError(t, err)

		outcomes := dispatcher.Notify(ctx, event, subject, nil)

		roles := make([]notification.Role, 0, len(outcomes))
		for _, o := range outcomes {
			roles = append(roles, o.Role)
		}
		assert.Equal(t, []notification.Role{notification.RoleCustomer, notification.RoleOperator}, roles)
	})

	t.Run("operator recipient is skipped when contact is not configured", func(t *testing.T) {
		gateway := &recordingGateway{}
		dispatcher := notification.NewDispatcher(gateway, "", discardLogger())
		subject := publishedDelivery(t)

		event, err := subject.Cancel(delivery.OperatorActor(kernel.NewUUID()), "customer changed plans", time.Now().UTC())
		require.NoError(t, err)

		outcomes := dispatcher.Notify(ctx, event, subject, nil)

		require.Len(t, outcomes, 1)
		assert.Equal(t, notification.RoleCustomer, outcomes[0].Role)
	})

	t.Run("push failure falls back to whatsapp", func(t *testing.T) {
		gateway := &recordingGateway{failOn: map[ports.NotificationChannel]error{
			ports.ChannelPush: errors.New("push service down"),
		}}
		dispatcher := notification.NewDispatcher(gateway, operatorChat, discardLogger())
		subject := publishedDelivery(t)

		event := delivery.DispatchEvent{
			OrderNumber: subject.OrderNumber(),
			FromStatus:  delivery.StatusPending,
			ToStatus:    delivery.StatusPublished,
		}
		outcomes := dispatcher.Notify(ctx, event, subject, nil)

		require.Len(t, outcomes, 1)
		assert.Equal(t, ports.ChannelWhatsApp, outcomes[0].Channel)
		assert.NoError(t, outcomes[0].Err)

		require.Len(t, gateway.sent, 2)
		assert.Equal(t, ports.ChannelPush, gateway.sent[0].Channel)
		assert.Equal(t, ports.ChannelWhatsApp, gateway.sent[1].Channel)
	})

	t.Run("double failure is recorded per recipient, never propagated", func(t *testing.T) {
		whatsappErr := errors.New("whatsapp relay down")
		gateway := &recordingGateway{failOn: map[ports.NotificationChannel]error{
			ports.ChannelPush:     errors.New("push service down"),
			ports.ChannelWhatsApp: whatsappErr,
		}}
		dispatcher := notification.NewDispatcher(gateway, operatorChat, discardLogger())
		subject := publishedDelivery(t)

		event := delivery.DispatchEvent{
			OrderNumber: subject.OrderNumber(),
			FromStatus:  delivery.StatusPending,
			ToStatus:    delivery.StatusPublished,
		}
		outcomes := dispatcher.Notify(ctx, event, subject, nil)

		require.Len(t, outcomes, 1)
		assert.ErrorIs(t, outcomes[0].Err, whatsappErr)
		assert.Equal(t, ports.ChannelWhatsApp, outcomes[0].Channel)
	})

	t.Run("status without templates produces no messages", func(t *testing.T) {
		gateway := &recordingGateway{}
		dispatcher := notification.NewDispatcher(gateway, operatorChat, discardLogger())
		subject := publishedDelivery(t)

		event := delivery.DispatchEvent{
			OrderNumber: subject.OrderNumber(),
			ToStatus:    delivery.StatusPending,
		}
		outcomes := dispatcher.Notify(ctx, event, subject, nil)

		assert.Empty(t, outcomes)
		assert.Empty(t, gateway.sent)
	})
}
