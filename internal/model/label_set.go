package model

import "time"

// LabelSet is a named, ordered selection of candles kept for reprinting.
type LabelSet struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// LabelSetCandle links a candle to a label set at a fixed position.
type LabelSetCandle struct {
	LabelSetID int64 `json:"-"`
	CandleID   int64 `json:"candle_id"`
	Position   int   `json:"position"`
}

// LabelSetRequest is the payload for creating a label set.
type LabelSetRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	CandleIDs   []int64 `json:"candle_ids"`
}

// LabelSetResponse is a label set with its candles in position order.
type LabelSetResponse struct {
	LabelSet
	CandleIDs []int64  `json:"candle_ids"`
	Candles   []Candle `json:"candles"`
}
