package label

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"candle-labels/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInliner struct {
	mu    sync.Mutex
	calls map[string]int
	urls  map[string]string
	err   error
}

func (f *fakeInliner) DataURL(_ context.Context, ref string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[ref]++
	if f.err != nil {
		return "", false, f.err
	}
	url, ok := f.urls[ref]
	return url, ok, nil
}

func testOptions(inliner ImageInliner) Options {
	return Options{
		DefaultLogo:   "/uploads/logos/logo.png",
		DefaultQR:     "/uploads/qr/qr.png",
		Uncategorized: "Магическая свеча",
		Inliner:       inliner,
	}
}

func composeOne(t *testing.T, c model.Candle) *Sheet {
	sheet, err := Compose([]int64{c.ID}, map[int64]model.Candle{c.ID: c})
	require.NoError(t, err)
	return sheet
}

func TestRender_LabelsLayout(t *testing.T) {
	sheet := composeOne(t, model.Candle{
		ID: 1, Name: "Свеча удачи", Description: "На удачу", BrandName: "АРТ-СВЕЧИ",
		Website: "art-svechi.ligardi.ru", Quantity: 7,
	})

	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, sheet, testOptions(nil)))
	html := buf.String()

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Equal(t, 2, strings.Count(html, `class="page page-labels"`))
	assert.Equal(t, 7, strings.Count(html, `<div class="label">`))
	assert.Equal(t, 5, strings.Count(html, `class="slot-blank"`))
	assert.Zero(t, strings.Count(html, `<div class="card">`))
	assert.Contains(t, html, "Магическая свеча")
	assert.Contains(t, html, "art-svechi.ligardi.ru")
	assert.Contains(t, html, `src="/uploads/logos/logo.png"`)
	assert.NotContains(t, html, "<link", "document must not fetch external stylesheets")
}

func TestRender_PrintTypes(t *testing.T) {
	c := model.Candle{ID: 1, Name: "A", Description: "d", Practice: "p", RitualText: "r", Quantity: 2}

	tests := []struct {
		printType string
		labels    int
		cards     int
		pages     int
	}{
		{"", 2, 0, 1},
		{PrintLabels, 2, 0, 1},
		{PrintInstructions, 0, 2, 1},
		{PrintFull, 2, 2, 2},
	}

	for _, tt := range tests {
		t.Run("print type "+tt.printType, func(t *testing.T) {
			opts := testOptions(nil)
			opts.PrintType = tt.printType

			var buf bytes.Buffer
			require.NoError(t, Render(context.Background(), &buf, composeOne(t, c), opts))
			html := buf.String()

			assert.Equal(t, tt.labels, strings.Count(html, `<div class="label">`))
			assert.Equal(t, tt.cards, strings.Count(html, `<div class="card">`))
			assert.Equal(t, tt.pages, strings.Count(html, `<div class="page `))
		})
	}

	var buf bytes.Buffer
	opts := testOptions(nil)
	opts.PrintType = "stickers"
	assert.Error(t, Render(context.Background(), &buf, composeOne(t, c), opts))
}

func TestRender_EscapesText(t *testing.T) {
	sheet := composeOne(t, model.Candle{
		ID: 1, Name: `<script>alert("x")</script>`, Description: "a & b", Quantity: 1,
		LogoImage: `javascript:alert(1)`,
	})

	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, sheet, testOptions(nil)))
	html := buf.String()

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "a &amp; b")
	assert.NotContains(t, html, "javascript:alert")
}

func TestRender_LongName(t *testing.T) {
	sheet := composeOne(t, model.Candle{ID: 1, Name: "Очень длинное название", Quantity: 1})

	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, sheet, testOptions(nil)))
	assert.Contains(t, buf.String(), "label-name long-title")
}

func TestRender_InlinesImagesOnce(t *testing.T) {
	inliner := &fakeInliner{urls: map[string]string{
		"/uploads/logos/logo.png": "data:image/png;base64,TE9HTw==",
		"/uploads/qr/own.png":     "data:image/png;base64,UVI=",
	}}

	ids := []int64{1, 2}
	recs := map[int64]model.Candle{
		1: {ID: 1, Name: "A", Quantity: 3, QRImage: "/uploads/qr/own.png"},
		2: {ID: 2, Name: "B", Quantity: 2},
	}
	sheet, err := Compose(ids, recs)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, sheet, testOptions(inliner)))
	html := buf.String()

	assert.Equal(t, 5, strings.Count(html, `src="data:image/png;base64,TE9HTw=="`))
	assert.Equal(t, 3, strings.Count(html, `src="data:image/png;base64,UVI="`))
	// default QR is not resolvable, reference kept
	assert.Equal(t, 2, strings.Count(html, `src="/uploads/qr/qr.png"`))

	for ref, n := range inliner.calls {
		assert.Equal(t, 1, n, "ref %s resolved more than once", ref)
	}
	assert.Len(t, inliner.calls, 3)
}

func TestRender_InlinerError(t *testing.T) {
	inliner := &fakeInliner{err: errors.New("disk failure")}
	sheet := composeOne(t, model.Candle{ID: 1, Name: "A", Quantity: 1})

	var buf bytes.Buffer
	err := Render(context.Background(), &buf, sheet, testOptions(inliner))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk failure")
	assert.Zero(t, buf.Len(), "no partial document on failure")
}

func TestRender_EmptySheet(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Render(context.Background(), &buf, nil, testOptions(nil)), ErrEmptySelection)
	assert.ErrorIs(t, Render(context.Background(), &buf, &Sheet{}, testOptions(nil)), ErrEmptySelection)
}
