package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingserrors "playverse/internal/bookings/errors"
	"playverse/internal/bookings/repository"
	"playverse/internal/bookings/validator"
	"playverse/pkg/config"
	mongotx "playverse/pkg/db/mongo"
	"playverse/pkg/kafka"
	"playverse/pkg/logger"
	"playverse/pkg/model"
	"playverse/pkg/msg91"
	"playverse/pkg/payu"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// mockBookingRepository keeps events in memory and applies the same
// status-conditioned writes as the Mongo repository.
type mockBookingRepository struct {
	mu      sync.Mutex
	events  map[primitive.ObjectID]*model.Event
	refunds []*model.Refund

	appendCalls  int
	releaseCalls int

	insertRefundFunc func(ctx context.Context, refund *model.Refund) error
}

func newMockRepo(events ...*model.Event) *mockBookingRepository {
	m := &mockBookingRepository{events: map[primitive.ObjectID]*model.Event{}}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func clone(e *model.Event) *model.Event {
	c := *e
	c.Participants = append([]model.Participant(nil), e.Participants...)
	return &c
}

func (m *mockBookingRepository) event(id primitive.ObjectID) *model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.events[id])
}

func (m *mockBookingRepository) FindEvent(_ context.Context, eventID string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return nil, bookingserrors.ErrInvalidID
	}
	e, ok := m.events[id]
	if !ok {
		return nil, bookingserrors.ErrEventNotFound
	}
	return clone(e), nil
}

func (m *mockBookingRepository) FindEventByOrderID(_ context.Context, orderID string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.FindParticipantByOrderID(orderID) >= 0 {
			return clone(e), nil
		}
	}
	return nil, bookingserrors.ErrEventNotFound
}

func (m *mockBookingRepository) AppendParticipant(_ context.Context, eventID primitive.ObjectID, p model.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return bookingserrors.ErrEventNotFound
	}
	m.appendCalls++
	e.Participants = append(e.Participants, p)
	return nil
}

func (m *mockBookingRepository) participant(eventID primitive.ObjectID, orderID string, expected model.PaymentStatus) (*model.Event, *model.Participant, error) {
	e, ok := m.events[eventID]
	if !ok {
		return nil, nil, bookingserrors.ErrEventNotFound
	}
	i := e.FindParticipantByOrderID(orderID)
	if i < 0 || e.Participants[i].PaymentStatus != expected {
		return nil, nil, fmt.Errorf("%w: %s", bookingserrors.ErrStaleParticipant, orderID)
	}
	return e, &e.Participants[i], nil
}

func (m *mockBookingRepository) ConfirmParticipant(_ context.Context, eventID primitive.ObjectID, orderID string, quantity int, c repository.Confirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, p, err := m.participant(eventID, orderID, model.PaymentPending)
	if err != nil {
		return err
	}
	p.PaymentStatus = model.PaymentSuccess
	p.Amount = c.Amount
	bookedAt := c.BookingDate
	p.BookingDate = &bookedAt
	if c.PaymentID != "" {
		p.PaymentID = c.PaymentID
	}
	e.CurrentParticipants += quantity
	return nil
}

func (m *mockBookingRepository) FailParticipant(_ context.Context, eventID primitive.ObjectID, orderID, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, p, err := m.participant(eventID, orderID, model.PaymentPending)
	if err != nil {
		return err
	}
	p.PaymentStatus = model.PaymentFailed
	if paymentID != "" {
		p.PaymentID = paymentID
	}
	return nil
}

func (m *mockBookingRepository) RecordPaymentID(_ context.Context, eventID primitive.ObjectID, orderID string, status model.PaymentStatus, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, p, err := m.participant(eventID, orderID, status)
	if err != nil {
		return err
	}
	p.PaymentID = paymentID
	return nil
}

func (m *mockBookingRepository) ClaimThreshold(_ context.Context, eventID primitive.ObjectID, t model.Threshold) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.events[eventID]
	if t.Notified(e) {
		return false, nil
	}
	setFlag(e, t, true)
	return true, nil
}

func (m *mockBookingRepository) ReleaseThreshold(_ context.Context, eventID primitive.ObjectID, t model.Threshold) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseCalls++
	setFlag(m.events[eventID], t, false)
	return nil
}

func setFlag(e *model.Event, t model.Threshold, v bool) {
	if t == model.Threshold100 {
		e.Notified100 = v
		return
	}
	e.Notified75 = v
}

func (m *mockBookingRepository) InsertRefund(ctx context.Context, refund *model.Refund) error {
	if m.insertRefundFunc != nil {
		return m.insertRefundFunc(ctx, refund)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	refund.ID = primitive.NewObjectID()
	m.refunds = append(m.refunds, refund)
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	sessCtx := mongo.NewSessionContext(ctx, nil)
	return fn(sessCtx)
}

type mockGateway struct {
	verifyFunc  func(r *payu.Response) error
	refundFunc  func(ctx context.Context, req payu.RefundRequest) (*payu.RefundResult, error)
	refundCalls int
	requests    []payu.PaymentRequest
}

func (g *mockGateway) BuildPaymentRequest(req payu.PaymentRequest) payu.PaymentForm {
	g.requests = append(g.requests, req)
	return payu.PaymentForm{
		PayURL:      "https://test.payu.in/_payment",
		Key:         "merchant",
		TxnID:       req.TxnID,
		Amount:      payu.FormatAmount(req.Amount),
		ProductInfo: req.ProductInfo,
		FirstName:   req.FirstName,
		Phone:       req.Phone,
		UDF1:        req.ClientURL,
		UDF3:        req.EventID,
		Hash:        "signed",
	}
}

func (g *mockGateway) Verify(r *payu.Response) error {
	if g.verifyFunc != nil {
		return g.verifyFunc(r)
	}
	return nil
}

func (g *mockGateway) Refund(ctx context.Context, req payu.RefundRequest) (*payu.RefundResult, error) {
	g.refundCalls++
	if g.refundFunc != nil {
		return g.refundFunc(ctx, req)
	}
	return &payu.RefundResult{Token: req.Token, Raw: map[string]any{"status": float64(1)}}, nil
}

type mockMessenger struct {
	sendFunc func(ctx context.Context, t msg91.Template) (map[string]any, error)
	sent     []msg91.Template
}

func (m *mockMessenger) Send(ctx context.Context, t msg91.Template) (map[string]any, error) {
	m.sent = append(m.sent, t)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, t)
	}
	return map[string]any{"status": "success"}, nil
}

type recordingPublisher struct {
	messages []kafka.Message
}

func (p *recordingPublisher) Publish(_ context.Context, msg kafka.Message) error {
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.messages))
	for i := range p.messages {
		out = append(out, p.messages[i].GetEventType())
	}
	return out
}

type fixture struct {
	svc       BookingService
	repo      *mockBookingRepository
	gateway   *mockGateway
	messenger *mockMessenger
	publisher *recordingPublisher
}

func newFixture(t *testing.T, events ...*model.Event) *fixture {
	t.Helper()
	log := logger.Discard()
	cfg := &config.Config{Log: log, ExternalCallTimeout: time.Second}

	f := &fixture{
		repo:      newMockRepo(events...),
		gateway:   &mockGateway{},
		messenger: &mockMessenger{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewBookingService(
		f.repo,
		validator.NewBookingValidator(log),
		f.gateway,
		Alerts{
			AdminPhone:   "919999999999",
			EventBaseURL: "https://playverse.test",
			Templates:    msg91.Templates{ThresholdTemplate: "threshold", ThresholdNamespace: "ns"},
			Messenger:    f.messenger,
		},
		f.publisher,
		cfg,
	)
	return f
}

func newEvent(limit int, participants ...model.Participant) *model.Event {
	e := &model.Event{
		ID:                primitive.NewObjectID(),
		Name:              "Sunday Football",
		Date:              time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC),
		Slot:              "6:00 PM - 7:00 PM",
		Price:             250,
		SportsName:        "football",
		VenueName:         "Green Arena",
		Location:          "Indiranagar",
		ParticipantsLimit: limit,
		Participants:      participants,
	}
	for _, p := range participants {
		if p.PaymentStatus == model.PaymentSuccess {
			e.CurrentParticipants += p.Quantity
		}
	}
	return e
}

func participant(orderID string, status model.PaymentStatus, quantity int) model.Participant {
	return model.Participant{
		ID:            primitive.NewObjectID(),
		Name:          "Player " + orderID,
		Phone:         "98765432" + fmt.Sprintf("%02d", len(orderID)%100),
		SkillLevel:    model.SkillBeginner,
		PaymentStatus: status,
		OrderID:       orderID,
		Amount:        250 * float64(quantity),
		Quantity:      quantity,
	}
}
