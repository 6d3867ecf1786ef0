package validate

import (
	"errors"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	reUsername = regexp.MustCompile(`^[\p{L}\p{N}@.+_-]{1,150}$`)
	reImageExt = regexp.MustCompile(`^\.(jpe?g|png|gif|webp)$`)
)

// Username accepts letters, digits and @.+-_ up to 150 characters.
func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUsername.MatchString(s)
}

// Q normalizes a free-text search term: trims and caps it at 100 characters.
func Q(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 100 {
		s = string([]rune(s)[:100])
	}
	return s
}

// ID parses a positive numeric identifier.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Sort keeps only the known sort keys; anything else means default order.
func Sort(s string) string {
	switch s = strings.TrimSpace(s); s {
	case "amount_asc", "amount_desc":
		return s
	}
	return ""
}

// ImageExt returns the lowercased extension when the file name looks like a supported image.
func ImageExt(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	return ext, reImageExt.MatchString(ext)
}

// Decimal parses a money or percent amount, accepting a comma as decimal separator.
func Decimal(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	return d, err == nil
}

var structs = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			x, _ := d.Float64()
			return x
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Struct checks `validate` tags on v.
func Struct(v any) error { return structs.Struct(v) }

// Messages turns a Struct error into one readable line per field.
func Messages(err error) []string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		if err != nil {
			return []string{err.Error()}
		}
		return nil
	}
	out := make([]string, 0, len(ves))
	for _, e := range ves {
		out = append(out, e.Field()+": "+message(e))
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return "value is too long"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	default:
		return "invalid value"
	}
}
