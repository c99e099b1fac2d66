package plan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucmed/petplan/internal/model"
	"github.com/nucmed/petplan/pkg/logger"
	"github.com/nucmed/petplan/pkg/messaging"
)

type fakeSnapshotter struct {
	snap *model.CatalogSnapshot
	err  error
}

func (f *fakeSnapshotter) Snapshot(ctx context.Context, userID, setName string) (*model.CatalogSnapshot, error) {
	return f.snap, f.err
}

type published struct {
	channel string
	message interface{}
}

type fakeBroker struct {
	published  []published
	publishErr error
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{channel: channel, message: message})
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBroker) Close() error { return nil }

type fakeNotifier struct {
	sentTo   []string
	sendErr  error
	schedule *model.Schedule
}

func (f *fakeNotifier) SendPlanReady(to string, schedule *model.Schedule) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentTo = append(f.sentTo, to)
	f.schedule = schedule
	return nil
}

// solvableSnapshot is the smallest catalog the solver can schedule: one
// purchased tracer with free delivery slots and a single patient.
func solvableSnapshot() *model.CatalogSnapshot {
	snap := &model.CatalogSnapshot{SetName: "default"}

	nuclide := &model.Radionuclide{Name: "18F", HalfLifeMinutes: 109.8}
	nuclide.ID = uuid.New()
	snap.Radionuclides = append(snap.Radionuclides, nuclide)

	tracer := &model.Tracer{
		Name:           "18F-FDG",
		RadionuclideID: nuclide.ID,
		PricePerGBq:    5000,
		AnySlot:        true,
		Available:      true,
	}
	tracer.ID = uuid.New()
	snap.Tracers = append(snap.Tracers, tracer)

	scheme := &model.DosingScheme{
		Name:     "onko",
		TracerID: tracer.ID,
		DoseType: model.DoseTypeFixed, DoseValue: 200,
		Uptake1: 60, Imaging1: 20,
	}
	scheme.ID = uuid.New()
	snap.Schemes = append(snap.Schemes, scheme)

	patient := &model.Patient{Surname: "Novak", SchemeID: scheme.ID}
	patient.ID = uuid.New()
	snap.Patients = append(snap.Patients, patient)

	return snap
}

func newTestService(snap *fakeSnapshotter, broker *fakeBroker, notifier *fakeNotifier) *Service {
	return NewService(snap, Config{SolveTimeout: 5 * time.Second}, broker, notifier, nil, logger.NewLogger(nil))
}

func TestSolve_ReturnsSchedule(t *testing.T) {
	svc := newTestService(&fakeSnapshotter{snap: solvableSnapshot()}, &fakeBroker{}, &fakeNotifier{})

	schedule, report, err := svc.Solve(context.Background(), "user-1", "default")
	require.NoError(t, err)
	require.Nil(t, report)
	require.Len(t, schedule.Patients, 1)
	assert.Equal(t, "Novak", schedule.Patients[0].Surname)
}

func TestSolve_SnapshotFailurePropagates(t *testing.T) {
	svc := newTestService(&fakeSnapshotter{err: errors.New("db down")}, &fakeBroker{}, &fakeNotifier{})

	_, _, err := svc.Solve(context.Background(), "user-1", "default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestSubmitAsync_PublishesRequest(t *testing.T) {
	broker := &fakeBroker{}
	svc := newTestService(&fakeSnapshotter{snap: solvableSnapshot()}, broker, &fakeNotifier{})

	requestID, err := svc.SubmitAsync(context.Background(), "user-1", "default", "lab@nucmed.cz")
	require.NoError(t, err)
	require.NotEmpty(t, requestID)

	require.Len(t, broker.published, 1)
	assert.Equal(t, messaging.ChannelPlanRequests, broker.published[0].channel)

	req, ok := broker.published[0].message.(messaging.PlanRequest)
	require.True(t, ok)
	assert.Equal(t, requestID, req.RequestID)
	assert.Equal(t, "user-1", req.UserID)
	assert.Equal(t, "default", req.SetName)
	assert.Equal(t, "lab@nucmed.cz", req.NotifyTo)
}

func TestSubmitAsync_BrokerFailure(t *testing.T) {
	broker := &fakeBroker{publishErr: errors.New("redis unavailable")}
	svc := newTestService(&fakeSnapshotter{snap: solvableSnapshot()}, broker, &fakeNotifier{})

	_, err := svc.SubmitAsync(context.Background(), "user-1", "default", "")
	require.Error(t, err)
}

func TestProcess_PublishesSolvedResultAndNotifies(t *testing.T) {
	broker := &fakeBroker{}
	notifier := &fakeNotifier{}
	svc := newTestService(&fakeSnapshotter{snap: solvableSnapshot()}, broker, notifier)

	req := &messaging.PlanRequest{
		RequestID: uuid.NewString(),
		UserID:    "user-1",
		SetName:   "default",
		NotifyTo:  "lab@nucmed.cz",
	}
	require.NoError(t, svc.Process(context.Background(), req))

	require.Len(t, broker.published, 1)
	assert.Equal(t, messaging.ChannelPlanResults, broker.published[0].channel)

	result, ok := broker.published[0].message.(messaging.PlanResult)
	require.True(t, ok)
	assert.Equal(t, req.RequestID, result.RequestID)
	assert.Equal(t, "solved", result.Status)
	require.NotNil(t, result.Schedule)

	assert.Equal(t, []string{"lab@nucmed.cz"}, notifier.sentTo)
}

func TestProcess_InfeasibleResultCarriesReport(t *testing.T) {
	snap := solvableSnapshot()
	// two patients pinned to the same start block cannot share the scanner
	fixed := 0
	snap.Patients[0].FixedStartBlock = &fixed
	second := &model.Patient{Surname: "Svoboda", SchemeID: snap.Schemes[0].ID, FixedStartBlock: &fixed}
	second.ID = uuid.New()
	snap.Patients = append(snap.Patients, second)

	broker := &fakeBroker{}
	notifier := &fakeNotifier{}
	svc := newTestService(&fakeSnapshotter{snap: snap}, broker, notifier)

	req := &messaging.PlanRequest{RequestID: uuid.NewString(), UserID: "user-1", SetName: "default"}
	require.NoError(t, svc.Process(context.Background(), req))

	require.Len(t, broker.published, 1)
	result := broker.published[0].message.(messaging.PlanResult)
	assert.Equal(t, "infeasible", result.Status)
	require.NotNil(t, result.Report)
	assert.Empty(t, notifier.sentTo)
}

func TestProcess_NotificationFailureIsNotFatal(t *testing.T) {
	broker := &fakeBroker{}
	notifier := &fakeNotifier{sendErr: errors.New("smtp down")}
	svc := newTestService(&fakeSnapshotter{snap: solvableSnapshot()}, broker, notifier)

	req := &messaging.PlanRequest{
		RequestID: uuid.NewString(),
		UserID:    "user-1",
		SetName:   "default",
		NotifyTo:  "lab@nucmed.cz",
	}
	require.NoError(t, svc.Process(context.Background(), req))
	require.Len(t, broker.published, 1)
}
