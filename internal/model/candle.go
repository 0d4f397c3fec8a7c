package model

import (
	"strings"
	"time"
)

const (
	// MinQuantity and MaxQuantity bound the number of label copies per candle.
	MinQuantity = 1
	MaxQuantity = 100

	DefaultBrandName = "АРТ-СВЕЧИ"
	DefaultWebsite   = "art-svechi.ligardi.ru"
)

// Candle represents a candle product in the catalogue.
type Candle struct {
	ID             int64     `json:"id"`
	SequenceNumber int64     `json:"sequence_number"`
	CategoryID     *int64    `json:"category_id,omitempty"`
	Category       *Category `json:"category,omitempty"`
	Name           string    `json:"name"`
	Tagline        string    `json:"tagline,omitempty"`
	Description    string    `json:"description"`
	Practice       string    `json:"practice"`
	RitualText     string    `json:"ritual_text,omitempty"`
	Color          string    `json:"color,omitempty"`
	Scent          string    `json:"scent,omitempty"`
	BrandName      string    `json:"brand_name"`
	Website        string    `json:"website"`
	LogoImage      string    `json:"logo_image,omitempty"`
	QRImage        string    `json:"qr_image,omitempty"`
	Quantity       int       `json:"quantity"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CategoryName returns the category label or fallback when the candle is uncategorized.
func (c *Candle) CategoryName(fallback string) string {
	if c.Category == nil || c.Category.Name == "" {
		return fallback
	}
	return c.Category.Name
}

// CandleCreate is the payload for creating a candle.
type CandleCreate struct {
	CategoryID  *int64 `json:"category_id,omitempty"`
	Name        string `json:"name"`
	Tagline     string `json:"tagline,omitempty"`
	Description string `json:"description"`
	Practice    string `json:"practice"`
	RitualText  string `json:"ritual_text,omitempty"`
	Color       string `json:"color,omitempty"`
	Scent       string `json:"scent,omitempty"`
	BrandName   string `json:"brand_name,omitempty"`
	Website     string `json:"website,omitempty"`
	LogoImage   string `json:"logo_image,omitempty"`
	QRImage     string `json:"qr_image,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// Normalize trims text fields, fills defaults and clamps the quantity.
func (c *CandleCreate) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	c.Practice = strings.TrimSpace(c.Practice)
	c.Tagline = strings.TrimSpace(c.Tagline)
	if strings.TrimSpace(c.BrandName) == "" {
		c.BrandName = DefaultBrandName
	}
	if strings.TrimSpace(c.Website) == "" {
		c.Website = DefaultWebsite
	}
	c.Quantity = ClampQuantity(c.Quantity)
	if c.IsActive == nil {
		active := true
		c.IsActive = &active
	}
}

// Validate reports the first missing required field.
func (c *CandleCreate) Validate() error {
	switch {
	case c.Name == "":
		return MissingField("name")
	case c.Description == "":
		return MissingField("description")
	case c.Practice == "":
		return MissingField("practice")
	}
	return nil
}

// CandleUpdate is a partial update; nil fields are left untouched.
type CandleUpdate struct {
	CategoryID  *int64  `json:"category_id,omitempty"`
	Name        *string `json:"name,omitempty"`
	Tagline     *string `json:"tagline,omitempty"`
	Description *string `json:"description,omitempty"`
	Practice    *string `json:"practice,omitempty"`
	RitualText  *string `json:"ritual_text,omitempty"`
	Color       *string `json:"color,omitempty"`
	Scent       *string `json:"scent,omitempty"`
	BrandName   *string `json:"brand_name,omitempty"`
	Website     *string `json:"website,omitempty"`
	LogoImage   *string `json:"logo_image,omitempty"`
	QRImage     *string `json:"qr_image,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// Normalize clamps the quantity if present.
func (u *CandleUpdate) Normalize() {
	if u.Quantity != nil {
		q := ClampQuantity(*u.Quantity)
		u.Quantity = &q
	}
}

// Validate rejects blanking a required field.
func (u *CandleUpdate) Validate() error {
	required := []struct {
		field string
		value *string
	}{
		{"name", u.Name},
		{"description", u.Description},
		{"practice", u.Practice},
	}
	for _, r := range required {
		if r.value != nil && strings.TrimSpace(*r.value) == "" {
			return MissingField(r.field)
		}
	}
	return nil
}

// Apply copies the set fields of u onto c.
func (u *CandleUpdate) Apply(c *Candle) {
	if u.CategoryID != nil {
		c.CategoryID = u.CategoryID
	}
	setString(&c.Name, u.Name)
	setString(&c.Tagline, u.Tagline)
	setString(&c.Description, u.Description)
	setString(&c.Practice, u.Practice)
	setString(&c.RitualText, u.RitualText)
	setString(&c.Color, u.Color)
	setString(&c.Scent, u.Scent)
	setString(&c.BrandName, u.BrandName)
	setString(&c.Website, u.Website)
	setString(&c.LogoImage, u.LogoImage)
	setString(&c.QRImage, u.QRImage)
	if u.Quantity != nil {
		c.Quantity = ClampQuantity(*u.Quantity)
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// QuantityChange sets an absolute quantity or adjusts by a delta.
type QuantityChange struct {
	Quantity *int `json:"quantity,omitempty"`
	Delta    *int `json:"delta,omitempty"`
}

// ClampQuantity bounds q to [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	return min(max(q, MinQuantity), MaxQuantity)
}

// CandleFilter holds list parameters for the catalogue view.
type CandleFilter struct {
	Skip       int
	Limit      int
	CategoryID *int64
	IsActive   *bool
	Search     string
	SortBy     string
	SortOrder  string
}

// Sort keys accepted by the candle list.
const (
	SortBySequence  = "sequence_number"
	SortByName      = "name"
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"

	SortAsc  = "asc"
	SortDesc = "desc"
)
