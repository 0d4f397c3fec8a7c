package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"candle-labels/internal/model"
	"candle-labels/internal/repository"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// candleRecord is one import row. Values stay textual until coercion so a bad
// cell fails only its own row.
type candleRecord struct {
	Name        string `csv:"name"`
	Tagline     string `csv:"tagline"`
	Category    string `csv:"category"`
	Description string `csv:"description"`
	Practice    string `csv:"practice"`
	RitualText  string `csv:"ritual_text"`
	Color       string `csv:"color"`
	Scent       string `csv:"scent"`
	BrandName   string `csv:"brand_name"`
	Website     string `csv:"website"`
	QRImage     string `csv:"qr_image"`
	LogoImage   string `csv:"logo_image"`
	IsActive    string `csv:"is_active"`
	Quantity    string `csv:"quantity"`
}

var templateRecords = []candleRecord{{
	Name:        "СВЕЧА ОЧИЩЕНИЯ",
	Tagline:     "Путь к чистоте",
	Category:    "Программная свеча",
	Description: "Свеча для глубокого очищения ауры и пространства",
	Practice:    "Зажгите свечу в тихом месте. Сосредоточьтесь на намерении очищения.",
	RitualText:  "Огонь горит - очищает. Свет сияет - защищает. Да будет так.",
	Color:       "Белый",
	Scent:       "Лаванда",
	BrandName:   model.DefaultBrandName,
	Website:     model.DefaultWebsite,
	QRImage:     "/uploads/qr/qr.png",
	LogoImage:   "/uploads/logos/logo.png",
	IsActive:    "1",
	Quantity:    "1",
}}

// importService implements ImportService.
type importService struct {
	candleRepo   repository.CandleRepository
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewImportService creates a new import service.
func NewImportService(
	candleRepo repository.CandleRepository,
	categoryRepo repository.CategoryRepository,
	logger zerolog.Logger,
) ImportService {
	return &importService{
		candleRepo:   candleRepo,
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "import").Logger(),
	}
}

// Import parses the file by extension and creates one candle per row.
func (s *importService) Import(ctx context.Context, filename string, r io.Reader) (*model.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var (
		records   []candleRecord
		firstRow  int
		rowPrefix string
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = parseCSV(data)
		firstRow, rowPrefix = 2, "row"
	case ".json":
		records, err = parseJSON(data)
		firstRow, rowPrefix = 1, "item"
	default:
		return nil, model.ErrUnsupportedFile
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("filename", filename).Msg("failed to parse import file")
		return nil, model.NewDomainError(model.ErrCodeInvalidFile, err.Error())
	}

	result := &model.ImportResult{Errors: []string{}}
	categories := map[string]int64{}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := s.importRecord(ctx, rec, categories); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s %d: %s", rowPrefix, firstRow+i, err))
			continue
		}
		result.Imported++
	}
	result.Total = result.Imported + len(result.Errors)

	s.logger.Info().
		Str("filename", filename).
		Int("imported", result.Imported).
		Int("failed", len(result.Errors)).
		Msg("import finished")

	return result, nil
}

func (s *importService) importRecord(ctx context.Context, rec candleRecord, categories map[string]int64) error {
	req, err := rec.toCreate()
	if err != nil {
		return err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	if name := strings.TrimSpace(rec.Category); name != "" {
		id, ok := categories[name]
		if !ok {
			category, err := s.categoryRepo.GetOrCreate(ctx, name)
			if err != nil {
				s.logger.Error().Err(err).Str("category", name).Msg("failed to get or create category")
				return fmt.Errorf("category %q: %w", name, err)
			}
			id = category.ID
			categories[name] = id
		}
		req.CategoryID = &id
	}

	if _, err := s.candleRepo.Create(ctx, req); err != nil {
		s.logger.Error().Err(err).Str("name", req.Name).Msg("failed to import candle")
		return fmt.Errorf("failed to create candle: %w", err)
	}

	return nil
}

// toCreate coerces the textual record into a create request.
func (rec candleRecord) toCreate() (*model.CandleCreate, error) {
	req := &model.CandleCreate{
		Name:        rec.Name,
		Tagline:     strings.TrimSpace(rec.Tagline),
		Description: rec.Description,
		Practice:    rec.Practice,
		RitualText:  strings.TrimSpace(rec.RitualText),
		Color:       strings.TrimSpace(rec.Color),
		Scent:       strings.TrimSpace(rec.Scent),
		BrandName:   strings.TrimSpace(rec.BrandName),
		Website:     strings.TrimSpace(rec.Website),
		QRImage:     strings.TrimSpace(rec.QRImage),
		LogoImage:   strings.TrimSpace(rec.LogoImage),
	}

	if q := strings.TrimSpace(rec.Quantity); q != "" {
		n, err := parseQuantity(q)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q", q)
		}
		req.Quantity = n
	}

	if v := strings.TrimSpace(rec.IsActive); v != "" {
		active, err := parseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid is_active %q", v)
		}
		req.IsActive = &active
	}

	return req, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "yes", "y", "on", "да":
		return true, nil
	case "no", "n", "off", "нет":
		return false, nil
	}
	return cast.ToBoolE(v)
}

// parseQuantity reads a decimal count. Leading zeros are not a base prefix:
// "010" is 10 and "0x10" is rejected.
func parseQuantity(v string) (int, error) {
	sign := ""
	if strings.HasPrefix(v, "-") || strings.HasPrefix(v, "+") {
		sign, v = v[:1], v[1:]
	}
	digits := strings.TrimLeft(v, "0")
	if digits == "" || digits[0] == '.' {
		digits = "0" + digits
	}
	return cast.ToIntE(sign + digits)
}

func parseCSV(data []byte) ([]candleRecord, error) {
	var records []candleRecord
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	return records, nil
}

// parseJSON reads an array of objects keyed like the CSV header. Values of any
// JSON type are coerced to text.
func parseJSON(data []byte) ([]candleRecord, error) {
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("JSON must contain an array of objects: %w", err)
	}

	records := make([]candleRecord, len(items))
	for i, item := range items {
		str := func(key string) string {
			v, ok := item[key]
			if !ok || v == nil {
				return ""
			}
			return cast.ToString(v)
		}
		records[i] = candleRecord{
			Name:        str("name"),
			Tagline:     str("tagline"),
			Category:    str("category"),
			Description: str("description"),
			Practice:    str("practice"),
			RitualText:  str("ritual_text"),
			Color:       str("color"),
			Scent:       str("scent"),
			BrandName:   str("brand_name"),
			Website:     str("website"),
			QRImage:     str("qr_image"),
			LogoImage:   str("logo_image"),
			IsActive:    str("is_active"),
			Quantity:    str("quantity"),
		}
	}
	return records, nil
}

// WriteTemplate writes a header row and one example row.
func (s *importService) WriteTemplate(w io.Writer) error {
	if err := gocsv.Marshal(templateRecords, w); err != nil {
		return fmt.Errorf("failed to write CSV template: %w", err)
	}
	return nil
}
