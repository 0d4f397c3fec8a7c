package label

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

//go:embed templates/sheet.html.tmpl
var templateFS embed.FS

var sheetTemplate = template.Must(template.ParseFS(templateFS, "templates/sheet.html.tmpl"))

// longNameRunes is the name length above which the label uses a smaller font.
const longNameRunes = 15

// inlineWorkers bounds concurrent image reads while rendering.
const inlineWorkers = 4

// ImageInliner resolves an image reference to an embeddable data: URL. ok is
// false when the reference should be kept as-is.
type ImageInliner interface {
	DataURL(ctx context.Context, ref string) (url string, ok bool, err error)
}

// Options controls rendering.
type Options struct {
	PrintType     string
	Title         string
	DefaultLogo   string
	DefaultQR     string
	Uncategorized string
	Inliner       ImageInliner // optional
}

type face struct {
	Category    string
	Name        string
	LongName    bool
	Tagline     string
	Description string
	Practice    string
	Ritual      string
	Brand       string
	Website     string
	Logo        any
	QR          any
}

type pageView struct {
	Kind   string
	Number int
	Slots  []*face
}

type document struct {
	Title   string
	Columns int
	Rows    int
	Pages   []pageView
}

// Render writes sheet as a self-contained HTML document.
func Render(ctx context.Context, w io.Writer, sheet *Sheet, opts Options) error {
	if sheet == nil || len(sheet.Instances) == 0 {
		return ErrEmptySelection
	}

	images, err := inlineImages(ctx, sheet, opts)
	if err != nil {
		return err
	}

	faces := make([]face, len(sheet.Instances))
	for i, inst := range sheet.Instances {
		c := inst.Candle
		faces[i] = face{
			Category:    c.CategoryName(opts.Uncategorized),
			Name:        c.Name,
			LongName:    utf8.RuneCountInString(c.Name) > longNameRunes,
			Tagline:     c.Tagline,
			Description: c.Description,
			Practice:    c.Practice,
			Ritual:      c.RitualText,
			Brand:       c.BrandName,
			Website:     c.Website,
			Logo:        images[orDefault(c.LogoImage, opts.DefaultLogo)],
			QR:          images[orDefault(c.QRImage, opts.DefaultQR)],
		}
	}

	doc := document{
		Title:   opts.Title,
		Columns: Columns,
		Rows:    Rows,
	}
	if doc.Title == "" {
		doc.Title = "Этикетки для свечей"
	}

	printType := opts.PrintType
	if printType == "" {
		printType = PrintLabels
	}
	if printType == PrintLabels || printType == PrintFull {
		doc.Pages = append(doc.Pages, pages(sheet, faces, PrintLabels)...)
	}
	if printType == PrintInstructions || printType == PrintFull {
		doc.Pages = append(doc.Pages, pages(sheet, faces, PrintInstructions)...)
	}
	if len(doc.Pages) == 0 {
		return fmt.Errorf("unknown print type %q", printType)
	}

	if err := sheetTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("failed to render label sheet: %w", err)
	}
	return nil
}

func pages(sheet *Sheet, faces []face, kind string) []pageView {
	out := make([]pageView, len(sheet.Pages))
	for i, p := range sheet.Pages {
		slots := make([]*face, PerPage)
		for s, inst := range p.Slots {
			if inst != nil {
				slots[s] = &faces[inst.Index]
			}
		}
		out[i] = pageView{Kind: kind, Number: p.Number + 1, Slots: slots}
	}
	return out
}

// inlineImages resolves every distinct image reference on the sheet. The
// result maps the reference to a template value: a trusted data: URL, or the
// original reference left for the template to sanitise.
func inlineImages(ctx context.Context, sheet *Sheet, opts Options) (map[string]any, error) {
	var refs []string
	seen := map[string]bool{}
	for _, inst := range sheet.Instances {
		for _, ref := range []string{
			orDefault(inst.Candle.LogoImage, opts.DefaultLogo),
			orDefault(inst.Candle.QRImage, opts.DefaultQR),
		} {
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}

	resolved := make([]any, len(refs))
	for i, ref := range refs {
		resolved[i] = ref
	}

	if opts.Inliner != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(inlineWorkers)
		for i, ref := range refs {
			if ref == "" {
				continue
			}
			g.Go(func() error {
				url, ok, err := opts.Inliner.DataURL(gctx, ref)
				if err != nil {
					return fmt.Errorf("failed to inline image %s: %w", ref, err)
				}
				if ok {
					resolved[i] = template.URL(url)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	images := make(map[string]any, len(refs))
	for i, ref := range refs {
		images[ref] = resolved[i]
	}
	return images, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
