package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"candle-labels/internal/label"
	"candle-labels/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = LabelDefaults{
	Logo:          "/uploads/logos/logo.png",
	QR:            "/uploads/qr/qr.png",
	Uncategorized: "Магическая свеча",
}

func newTestLabelService(candles *MockCandleRepository, sets *MockLabelSetRepository) *labelService {
	s := NewLabelService(candles, sets, nil, testDefaults, zerolog.Nop()).(*labelService)
	s.now = func() time.Time { return time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestLabelService_Generate(t *testing.T) {
	ctx := context.Background()

	mockCandles := new(MockCandleRepository)
	service := newTestLabelService(mockCandles, new(MockLabelSetRepository))

	mockCandles.On("GetByIDs", ctx, []int64{2, 1, 77}).Return([]model.Candle{
		{ID: 1, Name: "Первая", Quantity: 3},
		{ID: 2, Name: "Вторая", Quantity: 4},
	}, nil)

	doc, err := service.Generate(ctx, &label.Request{CandleIDs: []int64{2, 1, 77}})
	require.NoError(t, err)

	assert.Equal(t, "labels_2025-12-01.html", doc.Filename)
	assert.Equal(t, 7, doc.Labels)
	assert.Equal(t, 2, doc.Pages)
	assert.Equal(t, []int64{77}, doc.Skipped)

	html := string(doc.HTML)
	assert.Equal(t, 7, strings.Count(html, `<div class="label">`))
	// selection order is kept: the first label is candle 2
	assert.Less(t, strings.Index(html, "Вторая"), strings.Index(html, "Первая"))
	mockCandles.AssertExpectations(t)
}

func TestLabelService_Generate_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		req     label.Request
		setup   func(m *MockCandleRepository)
		wantErr error
	}{
		{
			name:    "Empty selection",
			req:     label.Request{},
			setup:   func(m *MockCandleRepository) {},
			wantErr: model.ErrEmptySelection,
		},
		{
			name:    "Unsupported format",
			req:     label.Request{CandleIDs: []int64{1}, Format: "pdf"},
			setup:   func(m *MockCandleRepository) {},
			wantErr: model.ErrUnsupportedFormat,
		},
		{
			name:    "Unsupported density",
			req:     label.Request{CandleIDs: []int64{1}, LabelsPerPage: 9},
			setup:   func(m *MockCandleRepository) {},
			wantErr: model.ErrUnsupportedDensity,
		},
		{
			name: "Nothing found",
			req:  label.Request{CandleIDs: []int64{5}},
			setup: func(m *MockCandleRepository) {
				m.On("GetByIDs", ctx, []int64{5}).Return([]model.Candle{}, nil)
			},
			wantErr: model.ErrEmptySelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCandles := new(MockCandleRepository)
			service := newTestLabelService(mockCandles, new(MockLabelSetRepository))
			tt.setup(mockCandles)

			req := tt.req
			doc, err := service.Generate(ctx, &req)
			assert.Nil(t, doc)
			assert.Equal(t, tt.wantErr, err)
			mockCandles.AssertExpectations(t)
		})
	}

	t.Run("Repository error", func(t *testing.T) {
		mockCandles := new(MockCandleRepository)
		service := newTestLabelService(mockCandles, new(MockLabelSetRepository))
		mockCandles.On("GetByIDs", ctx, []int64{1}).Return(nil, errors.New("database error"))

		_, err := service.Generate(ctx, &label.Request{CandleIDs: []int64{1}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database error")
	})
}

func TestLabelService_GenerateForSet(t *testing.T) {
	ctx := context.Background()

	mockCandles := new(MockCandleRepository)
	mockSets := new(MockLabelSetRepository)
	service := newTestLabelService(mockCandles, mockSets)

	mockSets.On("GetByID", ctx, int64(3)).Return(&model.LabelSet{ID: 3}, []int64{4}, nil)
	mockSets.On("GetByID", ctx, int64(404)).Return(nil, nil, nil)
	mockCandles.On("GetByIDs", ctx, []int64{4}).Return([]model.Candle{{ID: 4, Name: "A", Quantity: 2}}, nil)

	doc, err := service.GenerateForSet(ctx, 3, &label.Request{PrintType: label.PrintFull})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Labels)
	assert.Equal(t, 2, strings.Count(string(doc.HTML), `<div class="card">`))

	_, err = service.GenerateForSet(ctx, 404, &label.Request{})
	assert.Equal(t, model.ErrLabelSetNotFound, err)
}
