package orgimport

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/tabular"
	"github.com/dalemusser/ideatrack/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	ids       map[string]string // code -> id
	metrics   map[string]models.Metrics
	lookupErr error
	updateErr error
	failOn    string // id whose update fails
	lookups   int
}

func newFakeStore(codes ...string) *fakeStore {
	fs := &fakeStore{ids: map[string]string{}, metrics: map[string]models.Metrics{}}
	for _, c := range codes {
		fs.ids[c] = "id-" + c
		fs.metrics["id-"+c] = models.Metrics{}
	}
	return fs
}

func (f *fakeStore) IDsByCode(_ context.Context, codes []string) (map[string]string, error) {
	f.lookups++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	out := map[string]string{}
	for _, c := range codes {
		if id, ok := f.ids[c]; ok {
			out[c] = id
		}
	}
	return out, nil
}

func (f *fakeStore) AddMetrics(_ context.Context, id string, d models.Metrics) error {
	if f.updateErr != nil && (f.failOn == "" || f.failOn == id) {
		return f.updateErr
	}
	f.metrics[id] = f.metrics[id].Add(d)
	return nil
}

func (f *fakeStore) of(code string) models.Metrics { return f.metrics["id-"+code] }

const header = "code,pre_registration,vos_completed,group_formation,idea_submissions\n"

func batch(t *testing.T, csv string) tabular.Batch {
	t.Helper()
	b, err := tabular.ParseCSV(strings.NewReader(csv), tabular.DefaultOptions())
	require.NoError(t, err)
	return b
}

func TestImport_AddsOntoExistingCounters(t *testing.T) {
	store := newFakeStore("A")
	store.metrics["id-A"] = models.Metrics{PreRegistration: 10, IdeaSubmissions: 1}

	rc := New(store, nil, Options{SkipFirstRow: false}, zap.NewNop())
	res, err := rc.Import(context.Background(), batch(t, header+
		"A,5,1,0,2\n"+
		"A,3,0,1,2\n"))

	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, models.Metrics{PreRegistration: 18, VOSCompleted: 1, GroupFormation: 1, IdeaSubmissions: 5}, store.of("A"))
}

func TestImport_SkipsFirstRowByDefault(t *testing.T) {
	store := newFakeStore("A", "B")

	rc := New(store, nil, DefaultOptions(), zap.NewNop())
	res, err := rc.Import(context.Background(), batch(t, header+
		"A,100,100,100,100\n"+
		"B,1,2,3,4\n"))

	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, models.Metrics{}, store.of("A"))
	assert.Equal(t, models.Metrics{PreRegistration: 1, VOSCompleted: 2, GroupFormation: 3, IdeaSubmissions: 4}, store.of("B"))
}

func TestImport_EmptyRowsDroppedBeforeSkip(t *testing.T) {
	store := newFakeStore("A", "B")

	rc := New(store, nil, DefaultOptions(), zap.NewNop())
	res, err := rc.Import(context.Background(), batch(t, header+
		",,,,\n"+
		"A,1,1,1,1\n"+
		",,,,\n"+
		"B,2,2,2,2\n"))

	require.NoError(t, err)
	assert.Equal(t, 2, res.Dropped)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, models.Metrics{}, store.of("A"))
	assert.Equal(t, int64(2), store.of("B").IdeaSubmissions)
}

func TestImport_ZeroRowsDroppedLikeBlankOnes(t *testing.T) {
	store := newFakeStore("A", "B")

	rc := New(store, nil, DefaultOptions(), zap.NewNop())
	res, err := rc.Import(context.Background(), batch(t, header+
		"A,1,1,1,1\n"+
		",0,0,0,0\n"+
		"B,2,2,2,2\n"))

	require.NoError(t, err)
	assert.Equal(t, Result{Applied: 1, Dropped: 1, Skipped: 1}, res)
	assert.Equal(t, models.Metrics{}, store.of("A"))
	assert.Equal(t, models.Metrics{PreRegistration: 2, VOSCompleted: 2, GroupFormation: 2, IdeaSubmissions: 2}, store.of("B"))
}

func TestFalsyRow(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   bool
	}{
		{"all blank", map[string]string{"code": "", "vos_completed": " "}, true},
		{"zeros", map[string]string{"code": "", "vos_completed": "0", "idea_submissions": "0.0"}, true},
		{"code only", map[string]string{"code": "A", "vos_completed": "0"}, false},
		{"one count", map[string]string{"code": "", "vos_completed": "3"}, false},
		{"garbage", map[string]string{"code": "", "vos_completed": "n/a"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, falsyRow(tabular.Record{Line: 2, Values: tt.values}))
		})
	}
}

func TestImport_MissingColumn(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no code", "pre_registration,vos_completed,group_formation,idea_submissions\n", "code"},
		{"two missing reports first", "code,pre_registration,group_formation\n", "vos_completed"},
		{"last missing", "code,pre_registration,vos_completed,group_formation\n", "idea_submissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore("A")
			rc := New(store, nil, Options{}, zap.NewNop())

			_, err := rc.Import(context.Background(), batch(t, tt.header+"A,1,1,1,1\nA,1,1,1,1\n"))

			var mc *MissingColumnError
			require.True(t, errors.As(err, &mc), "got %v", err)
			assert.Equal(t, tt.want, mc.Column)
			assert.Equal(t, 0, store.lookups)
			assert.Equal(t, models.Metrics{}, store.of("A"))
		})
	}
}

func TestImport_UnknownCodeSequentialKeepsEarlierRows(t *testing.T) {
	store := newFakeStore("A", "B")

	rc := New(store, nil, Options{Mode: ModeSequential}, zap.NewNop())
	res, err := rc.Import(context.Background(), batch(t, header+
		"A,1,0,0,0\n"+
		"B,2,0,0,0\n"+
		"NOPE,3,0,0,0\n"+
		"A,4,0,0,0\n"))

	var uc *UnknownCodeError
	require.True(t, errors.As(err, &uc), "got %v", err)
	assert.Equal(t, "NOPE", uc.Code)
	assert.Equal(t, 4, uc.Line)
	assert.Equal(t, 2, uc.Applied)
	assert.Equal(t, 2, res.Applied)

	assert.Equal(t, int64(1), store.of("A").PreRegistration, "row after the failure must not run")
	assert.Equal(t, int64(2), store.of("B").PreRegistration)
}

func TestImport_UnknownCodeAtomicAppliesNothing(t *testing.T) {
	store := newFakeStore("A", "B")
	ran := false
	run := func(ctx context.Context, fn func(context.Context) error) error {
		ran = true
		return fn(ctx)
	}

	rc := New(store, run, Options{Mode: ModeAtomic}, zap.NewNop())
	res, err := rc.Import(context.Background(), batch(t, header+
		"A,1,0,0,0\n"+
		"B,2,0,0,0\n"+
		"NOPE,3,0,0,0\n"))

	var uc *UnknownCodeError
	require.True(t, errors.As(err, &uc), "got %v", err)
	assert.Equal(t, 0, uc.Applied)
	assert.Equal(t, 0, res.Applied)
	assert.False(t, ran, "writes must not start when a code is unknown")
	assert.Equal(t, models.Metrics{}, store.of("A"))
	assert.Equal(t, models.Metrics{}, store.of("B"))
	assert.Equal(t, 1, store.lookups, "codes resolve in one query")
}

func TestImport_AtomicRunsWritesInRunner(t *testing.T) {
	store := newFakeStore("A", "B")
	ran := 0
	run := func(ctx context.Context, fn func(context.Context) error) error {
		ran++
		return fn(ctx)
	}

	rc := New(store, run, Options{Mode: ModeAtomic}, zap.NewNop())
	res, err := rc.Import(context.Background(), batch(t, header+
		"A,1,0,0,0\n"+
		"B,2,0,0,0\n"+
		"A,3,0,0,0\n"))

	require.NoError(t, err)
	assert.Equal(t, 1, ran)
	assert.Equal(t, 3, res.Applied)
	assert.Equal(t, int64(4), store.of("A").PreRegistration)
	assert.Equal(t, int64(2), store.of("B").PreRegistration)
}

func TestImport_InvalidValueAppliesNothing(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		column string
		value  string
	}{
		{"negative", "B,1,-2,0,0", "vos_completed", "-2"},
		{"text", "B,1,0,lots,0", "group_formation", "lots"},
		{"fraction", "B,1,0,0,1.5", "idea_submissions", "1.5"},
		{"empty code", ",1,0,0,0", "code", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore("A", "B")
			rc := New(store, nil, Options{}, zap.NewNop())

			_, err := rc.Import(context.Background(), batch(t, header+"A,1,1,1,1\n"+tt.row+"\n"))

			var iv *InvalidValueError
			require.True(t, errors.As(err, &iv), "got %v", err)
			assert.Equal(t, tt.column, iv.Column)
			assert.Equal(t, tt.value, iv.Value)
			assert.Equal(t, 3, iv.Line)
			assert.Equal(t, models.Metrics{}, store.of("A"), "no row may apply before validation passes")
		})
	}
}

func TestImport_EmptyMetricCellIsZero(t *testing.T) {
	store := newFakeStore("A")
	rc := New(store, nil, Options{}, zap.NewNop())

	_, err := rc.Import(context.Background(), batch(t, header+"A,,2,,12.0\n"))

	require.NoError(t, err)
	assert.Equal(t, models.Metrics{VOSCompleted: 2, IdeaSubmissions: 12}, store.of("A"))
}

func TestImport_PersistenceError(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("lookup", func(t *testing.T) {
		store := newFakeStore("A")
		store.lookupErr = boom
		rc := New(store, nil, Options{}, zap.NewNop())

		_, err := rc.Import(context.Background(), batch(t, header+"A,1,1,1,1\n"))

		var pe *PersistenceError
		require.True(t, errors.As(err, &pe), "got %v", err)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("update after one row", func(t *testing.T) {
		store := newFakeStore("A", "B")
		store.updateErr = boom
		store.failOn = "id-B"
		rc := New(store, nil, Options{}, zap.NewNop())

		_, err := rc.Import(context.Background(), batch(t, header+"A,1,1,1,1\nB,1,1,1,1\n"))

		var pe *PersistenceError
		require.True(t, errors.As(err, &pe), "got %v", err)
		assert.Equal(t, 1, pe.Applied)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("atomic runner failure", func(t *testing.T) {
		store := newFakeStore("A")
		run := func(context.Context, func(context.Context) error) error { return boom }
		rc := New(store, run, Options{Mode: ModeAtomic}, zap.NewNop())

		res, err := rc.Import(context.Background(), batch(t, header+"A,1,1,1,1\n"))

		var pe *PersistenceError
		require.True(t, errors.As(err, &pe), "got %v", err)
		assert.Equal(t, 0, res.Applied)
	})
}

func TestImport_OnlyHeaderRow(t *testing.T) {
	store := newFakeStore("A")
	rc := New(store, nil, DefaultOptions(), zap.NewNop())

	res, err := rc.Import(context.Background(), batch(t, header+"A,1,1,1,1\n"))

	require.NoError(t, err)
	assert.Equal(t, 0, res.Applied)
	assert.Equal(t, 0, store.lookups)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"", 0, true},
		{"  ", 0, true},
		{"7", 7, true},
		{"-3", -3, true},
		{"7.0", 7, true},
		{"7.25", 0, false},
		{"seven", 0, false},
		{"NaN", 0, false},
		{"1e400", 0, false},
		{"9223372036854775807", math.MaxInt64, true},
		{"9223372036854775808", 0, false},
		{"9.223372036854775808e18", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseCount(tt.in)
		assert.Equal(t, tt.ok, ok, "parseCount(%q)", tt.in)
		assert.Equal(t, tt.want, got, "parseCount(%q)", tt.in)
	}
}
