package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/grooming-service/internal/optimistic"
	"github.com/kosarica/grooming-service/internal/report"
	"github.com/kosarica/grooming-service/internal/signals"
	"github.com/kosarica/grooming-service/internal/types"
)

var now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

type staticCollector struct {
	calls int
}

func (c *staticCollector) Collect(_ context.Context, loc signals.Location) signals.Snapshot {
	c.calls++
	return signals.Snapshot{
		Location: loc,
		Weather:  types.Weather{TemperatureC: 22, UVIndex: 5, Condition: "Clear", Source: types.SourceMock},
		Traffic:  types.Traffic{Level: types.TrafficLow, Source: types.SourceMock},
		Trends:   types.Trends{Keyword: "dog grooming", Interest: 50, Source: types.SourceMock},
	}
}

// brokenStore fails every call that is listed in fail
type brokenStore struct {
	Store
	fail map[string]error
}

func (b *brokenStore) Appointments(ctx context.Context, from, to time.Time) ([]types.RawAppointment, error) {
	if err := b.fail["appointments"]; err != nil {
		return nil, err
	}
	return b.Store.Appointments(ctx, from, to)
}

func (b *brokenStore) SetTransactionFlags(ctx context.Context, id string, g, s bool) error {
	if err := b.fail["flags:"+id]; err != nil {
		return err
	}
	return b.Store.SetTransactionFlags(ctx, id, g, s)
}

func (b *brokenStore) UpdateProductCategory(ctx context.Context, id, category string) (*types.Product, error) {
	if err := b.fail["category"]; err != nil {
		return nil, err
	}
	return b.Store.UpdateProductCategory(ctx, id, category)
}

func (b *brokenStore) Transactions(ctx context.Context, from, to time.Time) ([]types.Transaction, error) {
	if err := b.fail["transactions"]; err != nil {
		return nil, err
	}
	return b.Store.Transactions(ctx, from, to)
}

func strp(s string) *string { return &s }

func sale(id, client string, amount float64, daysAgo int, item string) types.Transaction {
	return types.Transaction{
		ID:          id,
		ClientID:    strp(client),
		CreatedAt:   now.AddDate(0, 0, -daysAgo),
		TotalAmount: amount,
		Items:       []types.LineItem{{Name: item, Quantity: 1, UnitPrice: amount}},
	}
}

func fixture() types.Dataset {
	ds := types.Dataset{
		Clients: []types.Client{{ID: "c1", Name: "Ana"}, {ID: "c2", Name: "Luis"}},
		Employees: []types.Employee{
			{ID: "e1", Name: "Marta", Active: true},
		},
		Products: []types.Product{
			{ID: "p1", Name: "Shampoo", Category: "higiene", Price: 120, Stock: 1, MinStock: 5},
		},
	}
	for i := 0; i < 10; i++ {
		ds.Transactions = append(ds.Transactions, sale(fmt.Sprintf("t%d", i), "c1", 500, i, "Baño completo"))
	}
	ds.Transactions = append(ds.Transactions, sale("t-store", "c2", 200, 3, "Collar"))
	return ds
}

func newTestService(t *testing.T, store Store) (*Service, *staticCollector) {
	t.Helper()
	collector := &staticCollector{}
	svc := NewService(store, collector, Config{}, zerolog.Nop(), WithClock(func() time.Time { return now }))
	return svc, collector
}

func period() Period {
	return Period{From: now.AddDate(0, 0, -30), To: now.Add(time.Hour)}
}

func TestPeriod_Validate(t *testing.T) {
	assert.NoError(t, period().Validate())
	assert.Error(t, Period{}.Validate())
	assert.Error(t, Period{From: now, To: now}.Validate())
}

func TestDashboard(t *testing.T) {
	svc, collector := newTestService(t, NewMemoryStore(fixture()))

	d, err := svc.Dashboard(context.Background(), period())
	require.NoError(t, err)

	assert.Equal(t, 1, collector.calls)
	assert.Len(t, d.Segments, 2)
	assert.Equal(t, "c1", d.Segments[0].ClientID)
	assert.Equal(t, 2, sumSummary(d.Summary))
	assert.NotEmpty(t, d.Forecast.History)
	assert.Len(t, d.Forecast.Forecast, 7)
	assert.InDelta(t, 5200, d.Heatmap.Total(), 0.001)
	require.NotNil(t, d.Busiest)
	assert.Equal(t, now, d.GeneratedAt)

	var inventory int
	for _, a := range d.Alerts {
		if a.Category == types.AlertInventory {
			inventory++
		}
	}
	assert.Equal(t, 1, inventory, "low stock shampoo should raise one alert")
}

func sumSummary(m map[types.Segment]int) int {
	var n int
	for _, v := range m {
		n += v
	}
	return n
}

func TestDashboard_SegmentsBeyondPeriod(t *testing.T) {
	ds := types.Dataset{
		Clients: []types.Client{{ID: "c1", Name: "Ana"}, {ID: "c2", Name: "Luis"}},
		Transactions: []types.Transaction{
			sale("old", "c1", 3000, 100, "Corte"),
			sale("gone", "c2", 800, 200, "Corte"),
			sale("recent", "c2", 150, 400, "Corte"),
		},
	}
	svc, _ := newTestService(t, NewMemoryStore(ds))

	d, err := svc.Dashboard(context.Background(), period())
	require.NoError(t, err)

	segments := map[string]types.ClientProfile{}
	for _, p := range d.Segments {
		segments[p.ClientID] = p
	}
	require.Contains(t, segments, "c1")
	assert.Equal(t, types.SegmentAtRisk, segments["c1"].Segment)
	assert.Equal(t, 100, segments["c1"].RecencyDays)
	require.Contains(t, segments, "c2")
	assert.Equal(t, types.SegmentLost, segments["c2"].Segment)
	assert.Equal(t, 1, segments["c2"].VisitCount, "purchases before the segment lookback are ignored")

	var atRisk *types.Alert
	for i, a := range d.Alerts {
		if a.Category == types.AlertClients && a.Severity == types.SeverityWarning {
			atRisk = &d.Alerts[i]
		}
	}
	require.NotNil(t, atRisk, "at-risk client should raise a warning")
	assert.Contains(t, atRisk.Message, "3000.00")

	// the period itself has no sales
	assert.Zero(t, d.Heatmap.Total())

	seg, err := svc.Segments(context.Background(), period())
	require.NoError(t, err)
	assert.Equal(t, 1, seg.Summary[types.SegmentAtRisk])
	assert.Equal(t, 1, seg.Summary[types.SegmentLost])
}

func TestDashboard_StoreError(t *testing.T) {
	store := &brokenStore{Store: NewMemoryStore(fixture()), fail: map[string]error{"transactions": errors.New("boom")}}
	svc, _ := newTestService(t, store)

	_, err := svc.Dashboard(context.Background(), period())
	assert.ErrorContains(t, err, "boom")
}

func TestTransactions_ConvertsToBusinessLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)
	svc := NewService(NewMemoryStore(fixture()), &staticCollector{}, Config{Location: loc}, zerolog.Nop())

	txs, err := svc.transactions(context.Background(), period())
	require.NoError(t, err)
	require.NotEmpty(t, txs)
	for _, tx := range txs {
		assert.Equal(t, loc, tx.CreatedAt.Location())
	}
}

func TestSegmentsAndHeatmap(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore(fixture()))
	ctx := context.Background()

	seg, err := svc.Segments(ctx, period())
	require.NoError(t, err)
	assert.Len(t, seg.Profiles, 2)

	hm, err := svc.Heatmap(ctx, Period{From: now.AddDate(0, 0, -1), To: now.Add(time.Hour)})
	require.NoError(t, err)
	// t0 and t1 fall inside the last day
	assert.InDelta(t, 1000, hm.Total(), 0.001)
}

func TestForecast_UsesStoredRules(t *testing.T) {
	ds := fixture()
	ds.Rules = []types.ClassificationRule{
		{ID: "r1", Keyword: "baño", MatchType: types.MatchContains, Target: types.TargetStore, Position: 0},
	}
	svc, _ := newTestService(t, NewMemoryStore(ds))

	res, err := svc.Forecast(context.Background(), period())
	require.NoError(t, err)
	for _, p := range res.History {
		assert.Zero(t, p.ServiceRevenue, "every item is routed to store revenue")
	}
}

func appointment(id, start, end string, status types.AppointmentStatus) types.RawAppointment {
	return types.RawAppointment{
		ID:        id,
		StartTime: start,
		EndTime:   end,
		Status:    status,
		Pet:       []byte(`{"name":"Toby"}`),
		Service:   []byte(`{"name":"Corte","category":"corte"}`),
	}
}

func TestAvailability(t *testing.T) {
	ds := fixture()
	for i := 0; i < 3; i++ {
		ds.Appointments = append(ds.Appointments,
			appointment(fmt.Sprintf("a%d", i), "2024-06-30T10:00:00Z", "2024-06-30T11:00:00Z", types.AppointmentConfirmed))
	}
	ds.Appointments = append(ds.Appointments,
		appointment("cancelled", "2024-06-30T10:00:00Z", "2024-06-30T11:00:00Z", types.AppointmentCancelled),
		appointment("other-day", "2024-07-01T10:00:00Z", "2024-07-01T11:00:00Z", types.AppointmentConfirmed),
	)
	svc, _ := newTestService(t, NewMemoryStore(ds))

	blocks := svc.Availability(context.Background(), now)
	require.Len(t, blocks, 3)
	assert.Equal(t, 3, blocks[0].Booked)
	assert.Equal(t, types.StatusLimited, blocks[0].Status)
	assert.Equal(t, types.StatusAvailable, blocks[1].Status)
}

func TestAvailability_CountsReversedRanges(t *testing.T) {
	ds := fixture()
	ds.Appointments = []types.RawAppointment{
		appointment("ok", "2024-06-30T10:00:00Z", "2024-06-30T11:00:00Z", types.AppointmentConfirmed),
		appointment("zero", "2024-06-30T10:30:00Z", "2024-06-30T10:30:00Z", types.AppointmentConfirmed),
		appointment("reversed", "2024-06-30T11:00:00Z", "2024-06-30T09:00:00Z", types.AppointmentConfirmed),
		appointment("garbage", "nope", "2024-06-30T11:00:00Z", types.AppointmentConfirmed),
	}
	svc, _ := newTestService(t, NewMemoryStore(ds))

	blocks := svc.Availability(context.Background(), now)
	require.Len(t, blocks, 3)
	assert.Equal(t, 3, blocks[0].Booked)

	view, err := svc.Calendar(context.Background(), now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, view.Events, 1)
	assert.Len(t, view.Dropped, 3)
}

func TestAvailability_FailsOpen(t *testing.T) {
	store := &brokenStore{Store: NewMemoryStore(fixture()), fail: map[string]error{"appointments": errors.New("down")}}
	svc, _ := newTestService(t, store)

	blocks := svc.Availability(context.Background(), now)
	require.Len(t, blocks, 3)
	for _, b := range blocks {
		assert.Equal(t, types.StatusAvailable, b.Status)
		assert.Zero(t, b.Booked)
	}
}

func TestCalendar(t *testing.T) {
	ds := fixture()
	ds.Appointments = []types.RawAppointment{
		appointment("a2", "2024-06-30T11:00:00Z", "2024-06-30T12:00:00Z", types.AppointmentScheduled),
		appointment("a1", "2024-06-30T09:00:00Z", "2024-06-30T10:00:00Z", types.AppointmentScheduled),
		appointment("bad", "not a date", "2024-06-30T10:00:00Z", types.AppointmentScheduled),
	}
	svc, _ := newTestService(t, NewMemoryStore(ds))

	view, err := svc.Calendar(context.Background(), now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, view.Events, 2)
	assert.Equal(t, "a1", view.Events[0].ID)
	require.Len(t, view.Dropped, 1)
	assert.Equal(t, "bad", view.Dropped[0].ID)
	assert.Len(t, view.Resources, 1)
}

func TestClassifyTransaction(t *testing.T) {
	store := NewMemoryStore(fixture())
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	flags, err := svc.ClassifyTransaction(ctx, "t-store")
	require.NoError(t, err)
	assert.False(t, flags.IsGrooming)
	assert.True(t, flags.IsStore)

	tx, err := store.GetTransaction(ctx, "t-store")
	require.NoError(t, err)
	assert.True(t, tx.IsStore)

	_, err = svc.ClassifyTransaction(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

func TestBackfill(t *testing.T) {
	store := &brokenStore{Store: NewMemoryStore(fixture()), fail: map[string]error{"flags:t3": errors.New("conflict")}}
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	res, err := svc.Backfill(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Processed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 9, res.Grooming)
	assert.Equal(t, 1, res.Store)

	res, err = svc.Backfill(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed, "only the failed row is left")
	assert.Equal(t, 1, res.Failed)
}

func TestReplaceRules(t *testing.T) {
	store := NewMemoryStore(fixture())
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	err := svc.ReplaceRules(ctx, []types.ClassificationRule{{Keyword: "", MatchType: types.MatchExact, Target: types.TargetStore}})
	require.Error(t, err)
	rules, err := svc.Rules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)

	require.NoError(t, svc.ReplaceRules(ctx, []types.ClassificationRule{
		{Keyword: "collar", MatchType: types.MatchContains, Target: types.TargetStore, Position: 1},
	}))
	rules, err = svc.Rules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.NotEmpty(t, rules[0].ID)
}

type transitions struct {
	mu  sync.Mutex
	all []optimistic.Transition[types.Product]
}

func (tr *transitions) observe(t optimistic.Transition[types.Product]) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.all = append(tr.all, t)
}

func TestUpdateProductCategory(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore(fixture()))
	var tr transitions

	p, err := svc.UpdateProductCategory(context.Background(), "p1", "baño", tr.observe)
	require.NoError(t, err)
	assert.Equal(t, "baño", p.Category)
	require.Len(t, tr.all, 2)
	assert.Equal(t, optimistic.Pending, tr.all[0].State)
	assert.Equal(t, "baño", tr.all[0].Value.Category)
	assert.Equal(t, optimistic.Confirmed, tr.all[1].State)
}

func TestUpdateProductCategory_RollsBack(t *testing.T) {
	store := &brokenStore{Store: NewMemoryStore(fixture()), fail: map[string]error{"category": errors.New("rejected")}}
	svc, _ := newTestService(t, store)
	var tr transitions

	p, err := svc.UpdateProductCategory(context.Background(), "p1", "baño", tr.observe)
	require.Error(t, err)
	assert.Equal(t, "higiene", p.Category)
	require.Len(t, tr.all, 2)
	assert.Equal(t, optimistic.RolledBack, tr.all[1].State)
	assert.Equal(t, "higiene", tr.all[1].Value.Category)
	assert.Contains(t, tr.all[1].Err, "rejected")
}

func TestUpdateProductCategory_NotFound(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore(fixture()))
	_, err := svc.UpdateProductCategory(context.Background(), "nope", "x", nil)
	assert.True(t, IsNotFound(err))
}

func TestReport_RespectsRole(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore(fixture()))
	ctx := context.Background()

	admin, err := svc.Report(ctx, period(), report.RoleAdmin)
	require.NoError(t, err)
	assert.NotNil(t, admin.Financial)
	assert.NotNil(t, admin.Clients)
	assert.NotNil(t, admin.External)

	staff, err := svc.Report(ctx, period(), report.RoleStaff)
	require.NoError(t, err)
	assert.Nil(t, staff.Financial)
	assert.Nil(t, staff.Clients)
	assert.Nil(t, staff.Predictions)
}

// countingStore counts transaction reads
type countingStore struct {
	Store
	mu    sync.Mutex
	reads int
}

func (c *countingStore) Transactions(ctx context.Context, from, to time.Time) ([]types.Transaction, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.Store.Transactions(ctx, from, to)
}

func TestReport_LoadsOnce(t *testing.T) {
	store := &countingStore{Store: NewMemoryStore(fixture())}
	svc, collector := newTestService(t, store)

	r, err := svc.Report(context.Background(), period(), report.RoleAdmin)
	require.NoError(t, err)
	// one read for the period and one for the segmentation history
	assert.Equal(t, 2, store.reads)
	assert.Equal(t, 1, collector.calls)
	require.NotNil(t, r.Operations.Heatmap)
	assert.InDelta(t, 5200, r.Operations.Heatmap.Total(), 0.001)
	assert.Len(t, r.Operations.LowStockProducts, 1)
}

func TestRecompute(t *testing.T) {
	ds := fixture()
	ds.Appointments = []types.RawAppointment{
		appointment("a1", "2024-06-30T13:00:00Z", "2024-06-30T14:00:00Z", types.AppointmentScheduled),
	}
	svc, _ := newTestService(t, NewMemoryStore(ds))

	published := map[string]any{}
	publish := func(kind string, payload any) { published[kind] = payload }

	require.NoError(t, svc.Recompute(context.Background(), []string{"appointments"}, publish))
	require.Contains(t, published, ChangeCalendar)
	assert.NotContains(t, published, ChangeAnalytics)
	view := published[ChangeCalendar].(CalendarView)
	assert.Len(t, view.Events, 1)

	published = map[string]any{}
	require.NoError(t, svc.Recompute(context.Background(), []string{"products"}, publish))
	assert.Contains(t, published, ChangeCatalog)
	assert.Contains(t, published, ChangeAnalytics)
	assert.NotContains(t, published, ChangeCalendar)
}
