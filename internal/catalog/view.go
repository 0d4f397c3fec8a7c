// Package catalog holds the operator-side state of the candle catalogue: the
// loaded list, the print selection, optimistic quantity edits and the
// single in-flight label generation.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"candle-labels/internal/client"
	"candle-labels/internal/label"
	"candle-labels/internal/model"

	"github.com/rs/zerolog"
)

var (
	// ErrGenerationInFlight is returned when Generate is called while a previous call is running.
	ErrGenerationInFlight = errors.New("label generation already in progress")

	// ErrClosed is returned for responses that arrive after Close. They leave the view unchanged.
	ErrClosed = errors.New("catalog view closed")

	// ErrUnknownCandle is returned for ids that are not in the loaded list.
	ErrUnknownCandle = errors.New("candle is not in the loaded catalog")
)

// Generation states reported by State.
const (
	StateIdle       = "idle"
	StateGenerating = "generating"
)

// Store is the slice of the API the view talks to. *client.Client implements it.
type Store interface {
	ListCandles(ctx context.Context, filter model.CandleFilter) ([]model.Candle, error)
	SetQuantity(ctx context.Context, id int64, quantity int) (*model.Candle, error)
	AdjustQuantity(ctx context.Context, id int64, delta int) (*model.Candle, error)
	GenerateLabels(ctx context.Context, req *label.Request) (*client.Sheet, error)
}

// GenerateOptions are the per-print options; the selection comes from the view.
type GenerateOptions struct {
	PrintType string
	Download  bool
}

// View is safe for concurrent use. The mutex guards local state only and is
// never held across a Store call.
type View struct {
	store  Store
	logger zerolog.Logger

	mu       sync.Mutex
	candles  []model.Candle
	index    map[int64]int
	selected map[int64]bool
	versions map[int64]uint64
	closed   bool

	generating atomic.Bool
}

// New creates an empty view over store.
func New(store Store, logger zerolog.Logger) *View {
	return &View{
		store:    store,
		logger:   logger.With().Str("component", "catalog").Logger(),
		index:    map[int64]int{},
		selected: map[int64]bool{},
		versions: map[int64]uint64{},
	}
}

// loadPageSize matches the largest page the API serves.
const loadPageSize = 500

// Load fetches the catalogue in the server's sort order. A filter without a
// Limit pages through every match. Selected ids that are no longer listed are
// dropped from the selection, and in-flight quantity edits no longer settle
// over the reloaded values.
func (v *View) Load(ctx context.Context, filter model.CandleFilter) error {
	candles, err := v.fetch(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}

	v.candles = candles
	v.index = make(map[int64]int, len(candles))
	for i, c := range candles {
		v.index[c.ID] = i
	}
	for id := range v.versions {
		v.versions[id]++
	}
	for id := range v.selected {
		if _, ok := v.index[id]; !ok {
			delete(v.selected, id)
		}
	}

	v.logger.Debug().Int("count", len(candles)).Int("selected", len(v.selected)).Msg("catalog loaded")
	return nil
}

func (v *View) fetch(ctx context.Context, filter model.CandleFilter) ([]model.Candle, error) {
	if filter.Limit > 0 {
		return v.store.ListCandles(ctx, filter)
	}

	var all []model.Candle
	page := filter
	page.Limit = loadPageSize
	for {
		candles, err := v.store.ListCandles(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, candles...)
		if len(candles) < loadPageSize {
			return all, nil
		}
		page.Skip += len(candles)
	}
}

// Candles returns a copy of the loaded list in catalog order.
func (v *View) Candles() []model.Candle {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]model.Candle(nil), v.candles...)
}

// Candle returns the locally displayed record for id.
func (v *View) Candle(id int64) (model.Candle, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i, ok := v.index[id]
	if !ok {
		return model.Candle{}, false
	}
	return v.candles[i], true
}

// Select adds or removes id from the print selection.
func (v *View) Select(id int64, on bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.index[id]; !ok {
		return ErrUnknownCandle
	}
	if on {
		v.selected[id] = true
	} else {
		delete(v.selected, id)
	}
	return nil
}

// Toggle flips the selection of id and reports the new state.
func (v *View) Toggle(id int64) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.index[id]; !ok {
		return false, ErrUnknownCandle
	}
	if v.selected[id] {
		delete(v.selected, id)
		return false, nil
	}
	v.selected[id] = true
	return true, nil
}

// SelectAll selects every loaded candle.
func (v *View) SelectAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, c := range v.candles {
		v.selected[c.ID] = true
	}
}

// ClearSelection empties the print selection.
func (v *View) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	clear(v.selected)
}

// Ordered returns the selected candles first, then the rest, each group in catalog order.
func (v *View) Ordered() []model.Candle {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]model.Candle, 0, len(v.candles))
	for _, c := range v.candles {
		if v.selected[c.ID] {
			out = append(out, c)
		}
	}
	for _, c := range v.candles {
		if !v.selected[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// SelectedIDs returns the selection in catalog order.
func (v *View) SelectedIDs() []int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selectedIDsLocked()
}

func (v *View) selectedIDsLocked() []int64 {
	ids := make([]int64, 0, len(v.selected))
	for _, c := range v.candles {
		if v.selected[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// SetQuantity displays the clamped quantity immediately and saves it. On
// failure the previous value is restored.
func (v *View) SetQuantity(ctx context.Context, id int64, quantity int) (int, error) {
	quantity = model.ClampQuantity(quantity)
	prev, version, err := v.apply(id, func(int) int { return quantity })
	if err != nil {
		return 0, err
	}

	saved, err := v.store.SetQuantity(ctx, id, quantity)
	return v.settle(id, prev, version, saved, err)
}

// AdjustQuantity moves the quantity by delta within [1, 100]. A delta that
// clamps to no change does not reach the store.
func (v *View) AdjustQuantity(ctx context.Context, id int64, delta int) (int, error) {
	var effective int
	prev, version, err := v.apply(id, func(cur int) int {
		next := model.ClampQuantity(cur + delta)
		effective = next - cur
		return next
	})
	if err != nil {
		return 0, err
	}
	if effective == 0 {
		return prev, nil
	}

	saved, err := v.store.AdjustQuantity(ctx, id, effective)
	return v.settle(id, prev, version, saved, err)
}

// apply sets the optimistic quantity and returns the snapshot it replaced.
func (v *View) apply(id int64, next func(cur int) int) (prev int, version uint64, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return 0, 0, ErrClosed
	}
	i, ok := v.index[id]
	if !ok {
		return 0, 0, ErrUnknownCandle
	}

	prev = v.candles[i].Quantity
	v.candles[i].Quantity = next(prev)
	v.versions[id]++
	return prev, v.versions[id], nil
}

// settle applies the store's answer. Only the latest mutation of a row may
// overwrite or roll back its displayed value.
func (v *View) settle(id int64, prev int, version uint64, saved *model.Candle, storeErr error) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return 0, ErrClosed
	}

	i, ok := v.index[id]
	latest := ok && v.versions[id] == version

	if storeErr != nil {
		if latest {
			v.candles[i].Quantity = prev
		}
		v.logger.Warn().Err(storeErr).Int64("candle_id", id).Int("restored", prev).Msg("quantity update failed")
		return prev, fmt.Errorf("failed to update quantity: %w", storeErr)
	}

	if !ok {
		return saved.Quantity, nil
	}
	if latest {
		v.candles[i].Quantity = saved.Quantity
	}
	return v.candles[i].Quantity, nil
}

// State reports whether a generation is in flight.
func (v *View) State() string {
	if v.generating.Load() {
		return StateGenerating
	}
	return StateIdle
}

// Generate renders the current selection. Only one call runs at a time; an
// empty selection fails without contacting the store.
func (v *View) Generate(ctx context.Context, opts GenerateOptions) (*client.Sheet, error) {
	v.mu.Lock()
	closed := v.closed
	ids := v.selectedIDsLocked()
	v.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}
	if len(ids) == 0 {
		return nil, label.ErrEmptySelection
	}
	if !v.generating.CompareAndSwap(false, true) {
		return nil, ErrGenerationInFlight
	}
	defer v.generating.Store(false)

	sheet, err := v.store.GenerateLabels(ctx, &label.Request{
		CandleIDs:     ids,
		Format:        label.FormatHTML,
		LabelsPerPage: label.PerPage,
		PrintType:     opts.PrintType,
		Download:      opts.Download,
	})

	v.mu.Lock()
	closed = v.closed
	v.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if err != nil {
		v.logger.Error().Err(err).Int("candles", len(ids)).Msg("label generation failed")
		return nil, fmt.Errorf("failed to generate labels: %w", err)
	}

	return sheet, nil
}

// Close dismisses the view. In-flight calls are not cancelled; their results are discarded.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}
