package model

import "time"

// Category groups candles on the label sheet and in the catalogue.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryCreate is the payload for creating a category.
type CategoryCreate struct {
	Name string `json:"name"`
}
