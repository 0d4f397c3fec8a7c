// Package label expands a candle selection into label instances, lays them
// out on A4 pages and renders the printable sheet.
package label

import (
	"strings"
	"time"

	"candle-labels/internal/model"
)

// Page geometry: six slots, two columns by three rows, filled row-major.
const (
	PerPage = 6
	Columns = 2
	Rows    = PerPage / Columns
)

// FormatHTML is the only supported output format.
const FormatHTML = "html"

// Print types.
const (
	PrintLabels       = "labels"
	PrintInstructions = "instructions"
	PrintFull         = "full"
)

// ErrEmptySelection is returned when a selection yields no label instances.
var ErrEmptySelection = model.ErrEmptySelection

// Instance is one physical label for one copy of a candle.
type Instance struct {
	Index  int // global position in the expanded stream
	Page   int
	Slot   int
	Row    int
	Col    int
	Copy   int // 1-based copy number within its candle
	Candle model.Candle
}

// Page holds up to PerPage instances; nil slots are blank.
type Page struct {
	Number int
	Slots  [PerPage]*Instance
}

// Filled returns the number of occupied slots.
func (p *Page) Filled() int {
	n := 0
	for _, s := range p.Slots {
		if s != nil {
			n++
		}
	}
	return n
}

// Sheet is the composed layout of a selection.
type Sheet struct {
	Instances []Instance
	Pages     []Page
	Skipped   []int64 // requested ids without a record
}

// Compose expands ids into label instances, each candle contributing quantity
// consecutive copies in the order given, and assigns instance i to page i/6,
// slot i%6. Ids without a record are skipped.
func Compose(ids []int64, records map[int64]model.Candle) (*Sheet, error) {
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}

	sheet := &Sheet{}
	for _, id := range ids {
		c, ok := records[id]
		if !ok {
			sheet.Skipped = append(sheet.Skipped, id)
			continue
		}

		copies := model.ClampQuantity(c.Quantity)
		for n := 1; n <= copies; n++ {
			i := len(sheet.Instances)
			slot := i % PerPage
			sheet.Instances = append(sheet.Instances, Instance{
				Index:  i,
				Page:   i / PerPage,
				Slot:   slot,
				Row:    slot / Columns,
				Col:    slot % Columns,
				Copy:   n,
				Candle: c,
			})
		}
	}

	if len(sheet.Instances) == 0 {
		return nil, ErrEmptySelection
	}

	sheet.Pages = make([]Page, (len(sheet.Instances)+PerPage-1)/PerPage)
	for i := range sheet.Pages {
		sheet.Pages[i].Number = i
	}
	for i := range sheet.Instances {
		inst := &sheet.Instances[i]
		sheet.Pages[inst.Page].Slots[inst.Slot] = inst
	}

	return sheet, nil
}

// Request is a label generation request.
type Request struct {
	CandleIDs     []int64 `json:"candle_ids"`
	Format        string  `json:"format,omitempty"`
	LabelsPerPage int     `json:"labels_per_page,omitempty"`
	PrintType     string  `json:"print_type,omitempty"`
	Download      bool    `json:"download,omitempty"`
}

// Normalize fills defaults for omitted options.
func (r *Request) Normalize() {
	r.Format = strings.ToLower(strings.TrimSpace(r.Format))
	if r.Format == "" {
		r.Format = FormatHTML
	}
	if r.LabelsPerPage == 0 {
		r.LabelsPerPage = PerPage
	}
	r.PrintType = strings.ToLower(strings.TrimSpace(r.PrintType))
	if r.PrintType == "" {
		r.PrintType = PrintLabels
	}
}

// Validate checks the normalized options. The selection itself is checked by Compose.
func (r *Request) Validate() error {
	if r.Format != FormatHTML {
		return model.ErrUnsupportedFormat
	}
	if r.LabelsPerPage != PerPage {
		return model.ErrUnsupportedDensity
	}
	switch r.PrintType {
	case PrintLabels, PrintInstructions, PrintFull:
	default:
		return model.ErrInvalidPrintType
	}
	return nil
}

// Filename returns the download name for a sheet generated at t.
func Filename(t time.Time) string {
	return "labels_" + t.Format(time.DateOnly) + ".html"
}
