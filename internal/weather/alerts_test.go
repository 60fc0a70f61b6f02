package weather

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func count(n int) *int { return &n }

func newTestEvaluator(store Store, n Notifier) *AlertEvaluator {
	return NewAlertEvaluator(store, n, AlertDefaults{Threshold: 30, ConsecutiveCount: 3, WindowHours: 24}, quietLogger(), nil).
		WithClock(fixedClock)
}

func TestCheck_TrailingRunAboveThreshold(t *testing.T) {
	store := &sliceStore{readings: celsiusSeries("Tokyo", 31, 32, 33)}

	alerts, err := newTestEvaluator(store, nil).Check(context.Background(), AlertQuery{})
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "Tokyo", a.City)
	assert.Equal(t, 3, a.ConsecutiveCount)
	assert.InDelta(t, 33, a.CurrentTemp, 1e-9)
	assert.Equal(t, 30.0, a.Threshold)
	assert.Len(t, a.ViolationTimestamps, 3)
	assert.Equal(t, "Tokyo has exceeded 30°C for 3 consecutive readings", a.Message)
}

func TestCheck_CurrentTempRoundedToOneDecimal(t *testing.T) {
	store := &sliceStore{readings: celsiusSeries("Lima", 24.1, 25.3)}

	alerts, err := newTestEvaluator(store, nil).Check(context.Background(),
		AlertQuery{Threshold: float(20), ConsecutiveCount: count(2)})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 25.3, alerts[0].CurrentTemp)

	body, err := json.Marshal(alerts[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), `"currentTemp":25.3,`)
}

func TestCheck_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		temps     []float64
		query     AlertQuery
		wantCount int // 0 means no alert
	}{
		{"run broken in the middle", []float64{31, 29, 33}, AlertQuery{}, 0},
		{"reading at threshold resets", []float64{31, 32, 30, 33}, AlertQuery{ConsecutiveCount: count(2)}, 0},
		{"trailing run not longest run", []float64{31, 32, 33, 34, 20, 31, 32}, AlertQuery{}, 0},
		{"trailing run counted", []float64{31, 32, 33, 34, 20, 31, 32}, AlertQuery{ConsecutiveCount: count(2)}, 2},
		{"longer run reported in full", []float64{35, 35, 35, 35, 35}, AlertQuery{}, 5},
		{"below threshold", []float64{10, 11, 12}, AlertQuery{}, 0},
		{"custom threshold", []float64{21, 22, 23}, AlertQuery{Threshold: float(20)}, 3},
		{"zero threshold honoured", []float64{1, 2, 3}, AlertQuery{Threshold: float(0)}, 3},
		{"single reading needed", []float64{10, 31}, AlertQuery{ConsecutiveCount: count(1)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &sliceStore{readings: celsiusSeries("Tokyo", tt.temps...)}

			alerts, err := newTestEvaluator(store, nil).Check(context.Background(), tt.query)
			require.NoError(t, err)

			if tt.wantCount == 0 {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.wantCount, alerts[0].ConsecutiveCount)
			assert.Len(t, alerts[0].ViolationTimestamps, tt.wantCount)
		})
	}
}

func TestCheck_EmptyWindow(t *testing.T) {
	old := celsiusSeries("Tokyo", 40, 40, 40)
	for i := range old {
		old[i].Timestamp = old[i].Timestamp.AddDate(0, 0, -3)
	}
	store := &sliceStore{readings: old}

	alerts, err := newTestEvaluator(store, nil).Check(context.Background(), AlertQuery{})
	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestCheck_OneAlertPerCitySortedByCity(t *testing.T) {
	var readings []Reading
	readings = append(readings, celsiusSeries("Tokyo", 31, 32, 33)...)
	readings = append(readings, celsiusSeries("Cairo", 38, 39, 40, 41)...)
	readings = append(readings, celsiusSeries("Oslo", 10, 12, 11)...)
	store := &sliceStore{readings: readings}

	alerts, err := newTestEvaluator(store, nil).Check(context.Background(), AlertQuery{})
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "Cairo", alerts[0].City)
	assert.Equal(t, 4, alerts[0].ConsecutiveCount)
	assert.Equal(t, "Tokyo", alerts[1].City)
}

func TestCheck_StoreErrorPropagated(t *testing.T) {
	store := &sliceStore{rangeErr: errStoreDown}

	alerts, err := newTestEvaluator(store, nil).Check(context.Background(), AlertQuery{})
	assert.ErrorIs(t, err, errStoreDown)
	assert.Nil(t, alerts)
}

func TestCheck_InvalidQuery(t *testing.T) {
	ev := newTestEvaluator(&sliceStore{}, nil)

	for _, q := range []AlertQuery{
		{ConsecutiveCount: count(-1)},
		{ConsecutiveCount: count(0)},
		{WindowHours: count(-5)},
		{WindowHours: count(0)},
	} {
		_, err := ev.Check(context.Background(), q)
		assert.ErrorIs(t, err, ErrInvalidAlertQuery)
	}
}

func TestGroupByCity_OrdersByTimestamp(t *testing.T) {
	rs := celsiusSeries("Tokyo", 1, 2, 3)
	shuffled := []Reading{rs[2], rs[0], rs[1]}

	got := groupByCity(shuffled)
	require.Len(t, got["Tokyo"], 3)
	assert.Equal(t, rs[0].Timestamp, got["Tokyo"][0].Timestamp)
	assert.Equal(t, rs[2].Timestamp, got["Tokyo"][2].Timestamp)
}

func TestNotify_BestEffort(t *testing.T) {
	n := &recordingNotifier{failFor: map[string]bool{"Cairo": true}}
	ev := newTestEvaluator(&sliceStore{}, n)

	results := ev.Notify(context.Background(), []Alert{{City: "Cairo"}, {City: "Tokyo"}})

	assert.Equal(t, []NotificationResult{{City: "Cairo", Sent: false}, {City: "Tokyo", Sent: true}}, results)
	assert.Len(t, n.got, 2)
}

func TestNotify_PanicAndNilNotifier(t *testing.T) {
	ev := newTestEvaluator(&sliceStore{}, &recordingNotifier{panics: true})
	results := ev.Notify(context.Background(), []Alert{{City: "Tokyo"}})
	assert.Equal(t, []NotificationResult{{City: "Tokyo", Sent: false}}, results)

	ev = newTestEvaluator(&sliceStore{}, nil)
	results = ev.Notify(context.Background(), []Alert{{City: "Tokyo"}})
	assert.False(t, results[0].Sent)
}
