package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"candle-labels/internal/client"
	"candle-labels/internal/label"
	"candle-labels/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListCandles(ctx context.Context, filter model.CandleFilter) ([]model.Candle, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Candle), args.Error(1)
}

func (m *MockStore) SetQuantity(ctx context.Context, id int64, quantity int) (*model.Candle, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candle), args.Error(1)
}

func (m *MockStore) AdjustQuantity(ctx context.Context, id int64, delta int) (*model.Candle, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candle), args.Error(1)
}

func (m *MockStore) GenerateLabels(ctx context.Context, req *label.Request) (*client.Sheet, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Sheet), args.Error(1)
}

var catalogFixture = []model.Candle{
	{ID: 10, SequenceNumber: 1, Name: "A", Quantity: 1},
	{ID: 20, SequenceNumber: 2, Name: "B", Quantity: 5},
	{ID: 30, SequenceNumber: 3, Name: "C", Quantity: 100},
	{ID: 40, SequenceNumber: 4, Name: "D", Quantity: 2},
}

func loadedView(t *testing.T, store *MockStore) *View {
	t.Helper()
	fixture := append([]model.Candle(nil), catalogFixture...)
	store.On("ListCandles", mock.Anything, model.CandleFilter{Limit: loadPageSize}).Return(fixture, nil).Once()

	v := New(store, zerolog.Nop())
	require.NoError(t, v.Load(context.Background(), model.CandleFilter{}))
	return v
}

func ids(candles []model.Candle) []int64 {
	out := make([]int64, len(candles))
	for i, c := range candles {
		out[i] = c.ID
	}
	return out
}

func TestView_Selection(t *testing.T) {
	v := loadedView(t, new(MockStore))

	require.NoError(t, v.Select(30, true))
	on, err := v.Toggle(20)
	require.NoError(t, err)
	assert.True(t, on)

	assert.Equal(t, []int64{20, 30}, v.SelectedIDs(), "selection follows catalog order, not click order")
	assert.Equal(t, []int64{20, 30, 10, 40}, ids(v.Ordered()))

	on, err = v.Toggle(30)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, []int64{20}, v.SelectedIDs())

	assert.ErrorIs(t, v.Select(99, true), ErrUnknownCandle)

	v.SelectAll()
	assert.Len(t, v.SelectedIDs(), 4)
	v.ClearSelection()
	assert.Empty(t, v.SelectedIDs())
}

func TestView_ReloadDropsMissingSelection(t *testing.T) {
	store := new(MockStore)
	v := loadedView(t, store)
	require.NoError(t, v.Select(10, true))
	require.NoError(t, v.Select(40, true))

	store.On("ListCandles", mock.Anything, model.CandleFilter{Search: "D", Limit: loadPageSize}).
		Return([]model.Candle{{ID: 40, Name: "D", Quantity: 2}}, nil)

	require.NoError(t, v.Load(context.Background(), model.CandleFilter{Search: "D"}))
	assert.Equal(t, []int64{40}, v.SelectedIDs())
}

func TestView_LoadPagesThroughCatalog(t *testing.T) {
	makePage := func(from, n int) []model.Candle {
		out := make([]model.Candle, n)
		for i := range out {
			out[i] = model.Candle{ID: int64(from + i), Quantity: 1}
		}
		return out
	}

	t.Run("Reads until a short page", func(t *testing.T) {
		store := new(MockStore)
		store.On("ListCandles", mock.Anything, model.CandleFilter{Limit: loadPageSize}).
			Return(makePage(1, loadPageSize), nil).Once()
		store.On("ListCandles", mock.Anything, model.CandleFilter{Skip: loadPageSize, Limit: loadPageSize}).
			Return(makePage(loadPageSize+1, 20), nil).Once()

		v := New(store, zerolog.Nop())
		require.NoError(t, v.Load(context.Background(), model.CandleFilter{}))

		assert.Len(t, v.Candles(), loadPageSize+20)
		require.NoError(t, v.Select(loadPageSize+20, true))
		store.AssertExpectations(t)
	})

	t.Run("Explicit limit is a single page", func(t *testing.T) {
		store := new(MockStore)
		store.On("ListCandles", mock.Anything, model.CandleFilter{Skip: 10, Limit: 3}).
			Return(makePage(11, 3), nil).Once()

		v := New(store, zerolog.Nop())
		require.NoError(t, v.Load(context.Background(), model.CandleFilter{Skip: 10, Limit: 3}))

		assert.Equal(t, []int64{11, 12, 13}, ids(v.Candles()))
		store.AssertExpectations(t)
	})

	t.Run("Failed page keeps the previous list", func(t *testing.T) {
		store := new(MockStore)
		v := loadedView(t, store)

		store.On("ListCandles", mock.Anything, model.CandleFilter{Search: "A", Limit: loadPageSize}).
			Return(makePage(1, loadPageSize), nil).Once()
		store.On("ListCandles", mock.Anything, model.CandleFilter{Search: "A", Skip: loadPageSize, Limit: loadPageSize}).
			Return(nil, errors.New("timeout")).Once()

		require.Error(t, v.Load(context.Background(), model.CandleFilter{Search: "A"}))
		assert.Equal(t, []int64{10, 20, 30, 40}, ids(v.Candles()))
	})
}

func TestView_SetQuantity(t *testing.T) {
	tests := []struct {
		name      string
		input     int
		sent      int
		storeErr  error
		wantShown int
		wantErr   bool
	}{
		{"Clamped low", 0, 1, nil, 1, false},
		{"Clamped high", 150, 100, nil, 100, false},
		{"In range", 7, 7, nil, 7, false},
		{"Failure restores previous value", 9, 9, errors.New("network down"), 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			v := loadedView(t, store)

			var ret *model.Candle
			if tt.storeErr == nil {
				ret = &model.Candle{ID: 20, Quantity: tt.sent}
			}
			store.On("SetQuantity", mock.Anything, int64(20), tt.sent).Return(ret, tt.storeErr)

			shown, err := v.SetQuantity(context.Background(), 20, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.storeErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantShown, shown)
			c, _ := v.Candle(20)
			assert.Equal(t, tt.wantShown, c.Quantity)
			store.AssertExpectations(t)
		})
	}
}

func TestView_OptimisticValueVisibleDuringCall(t *testing.T) {
	store := new(MockStore)
	v := loadedView(t, store)

	var during int
	store.On("SetQuantity", mock.Anything, int64(10), 42).
		Run(func(mock.Arguments) {
			c, _ := v.Candle(10)
			during = c.Quantity
		}).
		Return(nil, errors.New("rejected"))

	_, err := v.SetQuantity(context.Background(), 10, 42)
	require.Error(t, err)

	assert.Equal(t, 42, during)
	c, _ := v.Candle(10)
	assert.Equal(t, 1, c.Quantity)
}

func TestView_ReloadDuringQuantityEdit(t *testing.T) {
	tests := []struct {
		name     string
		saved    *model.Candle
		storeErr error
	}{
		{"Failure does not roll back reloaded value", nil, errors.New("network down")},
		{"Late success does not overwrite reloaded value", &model.Candle{ID: 20, Quantity: 7}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			v := loadedView(t, store)

			store.On("ListCandles", mock.Anything, model.CandleFilter{Limit: loadPageSize}).
				Return([]model.Candle{{ID: 10, Quantity: 1}, {ID: 20, Quantity: 42}}, nil).Once()
			store.On("SetQuantity", mock.Anything, int64(20), 7).
				Run(func(mock.Arguments) {
					require.NoError(t, v.Load(context.Background(), model.CandleFilter{}))
				}).
				Return(tt.saved, tt.storeErr)

			shown, err := v.SetQuantity(context.Background(), 20, 7)
			if tt.storeErr != nil {
				assert.ErrorIs(t, err, tt.storeErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 42, shown)
			}

			c, _ := v.Candle(20)
			assert.Equal(t, 42, c.Quantity)
			store.AssertExpectations(t)
		})
	}
}

func TestView_AdjustQuantity(t *testing.T) {
	tests := []struct {
		name       string
		id         int64
		delta      int
		sentDelta  int
		expectCall bool
		wantShown  int
	}{
		{"Increment", 20, 1, 1, true, 6},
		{"Clamped at top", 30, 5, 0, false, 100},
		{"Partially clamped at bottom", 40, -5, -1, true, 1},
		{"Decrement at minimum", 10, -1, 0, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			v := loadedView(t, store)

			if tt.expectCall {
				store.On("AdjustQuantity", mock.Anything, tt.id, tt.sentDelta).
					Return(&model.Candle{ID: tt.id, Quantity: tt.wantShown}, nil)
			}

			shown, err := v.AdjustQuantity(context.Background(), tt.id, tt.delta)
			require.NoError(t, err)
			assert.Equal(t, tt.wantShown, shown)

			if !tt.expectCall {
				store.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestView_ConcurrentRowMutations(t *testing.T) {
	store := new(MockStore)
	v := loadedView(t, store)

	store.On("SetQuantity", mock.Anything, int64(10), 3).Return(&model.Candle{ID: 10, Quantity: 3}, nil)
	store.On("SetQuantity", mock.Anything, int64(20), 8).Return(nil, errors.New("conflict"))
	store.On("SetQuantity", mock.Anything, int64(40), 9).Return(&model.Candle{ID: 40, Quantity: 9}, nil)

	var wg sync.WaitGroup
	for id, q := range map[int64]int{10: 3, 20: 8, 40: 9} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = v.SetQuantity(context.Background(), id, q)
		}()
	}
	wg.Wait()

	a, _ := v.Candle(10)
	b, _ := v.Candle(20)
	d, _ := v.Candle(40)
	assert.Equal(t, 3, a.Quantity)
	assert.Equal(t, 5, b.Quantity)
	assert.Equal(t, 9, d.Quantity)
}

func TestView_Generate(t *testing.T) {
	t.Run("Empty selection", func(t *testing.T) {
		store := new(MockStore)
		v := loadedView(t, store)

		sheet, err := v.Generate(context.Background(), GenerateOptions{})
		assert.Nil(t, sheet)
		assert.ErrorIs(t, err, label.ErrEmptySelection)
		store.AssertNotCalled(t, "GenerateLabels", mock.Anything, mock.Anything)
	})

	t.Run("Sends selection in catalog order", func(t *testing.T) {
		store := new(MockStore)
		v := loadedView(t, store)
		require.NoError(t, v.Select(40, true))
		require.NoError(t, v.Select(10, true))

		store.On("GenerateLabels", mock.Anything, &label.Request{
			CandleIDs:     []int64{10, 40},
			Format:        label.FormatHTML,
			LabelsPerPage: label.PerPage,
			PrintType:     label.PrintFull,
		}).Return(&client.Sheet{HTML: []byte("<html>"), Filename: "labels_2025-12-01.html"}, nil)

		sheet, err := v.Generate(context.Background(), GenerateOptions{PrintType: label.PrintFull})
		require.NoError(t, err)
		assert.Equal(t, "labels_2025-12-01.html", sheet.Filename)
		assert.Equal(t, StateIdle, v.State())
	})

	t.Run("Second call while in flight", func(t *testing.T) {
		store := new(MockStore)
		v := loadedView(t, store)
		v.SelectAll()

		started := make(chan struct{})
		release := make(chan struct{})
		store.On("GenerateLabels", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(&client.Sheet{}, nil).Once()

		done := make(chan error, 1)
		go func() {
			_, err := v.Generate(context.Background(), GenerateOptions{})
			done <- err
		}()

		<-started
		assert.Equal(t, StateGenerating, v.State())
		_, err := v.Generate(context.Background(), GenerateOptions{})
		assert.ErrorIs(t, err, ErrGenerationInFlight)

		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, StateIdle, v.State())
	})

	t.Run("Failure offers no document", func(t *testing.T) {
		store := new(MockStore)
		v := loadedView(t, store)
		v.SelectAll()

		store.On("GenerateLabels", mock.Anything, mock.Anything).Return(nil, errors.New("render failed"))

		sheet, err := v.Generate(context.Background(), GenerateOptions{})
		assert.Nil(t, sheet)
		require.Error(t, err)
		assert.Equal(t, StateIdle, v.State())
	})
}

func TestView_CloseDiscardsLateResponses(t *testing.T) {
	t.Run("Quantity", func(t *testing.T) {
		store := new(MockStore)
		v := loadedView(t, store)

		store.On("SetQuantity", mock.Anything, int64(20), 50).
			Run(func(mock.Arguments) { v.Close() }).
			Return(&model.Candle{ID: 20, Quantity: 50}, nil)

		_, err := v.SetQuantity(context.Background(), 20, 50)
		assert.ErrorIs(t, err, ErrClosed)

		_, err = v.SetQuantity(context.Background(), 20, 60)
		assert.ErrorIs(t, err, ErrClosed)
		store.AssertNumberOfCalls(t, "SetQuantity", 1)
	})

	t.Run("Generate", func(t *testing.T) {
		store := new(MockStore)
		v := loadedView(t, store)
		v.SelectAll()

		store.On("GenerateLabels", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { v.Close() }).
			Return(&client.Sheet{HTML: []byte("late")}, nil)

		sheet, err := v.Generate(context.Background(), GenerateOptions{})
		assert.Nil(t, sheet)
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("Load", func(t *testing.T) {
		store := new(MockStore)
		v := loadedView(t, store)

		store.On("ListCandles", mock.Anything, model.CandleFilter{Search: "x", Limit: loadPageSize}).
			Run(func(mock.Arguments) { v.Close() }).
			Return([]model.Candle{}, nil)

		assert.ErrorIs(t, v.Load(context.Background(), model.CandleFilter{Search: "x"}), ErrClosed)
		assert.Len(t, v.Candles(), 4)
	})
}
