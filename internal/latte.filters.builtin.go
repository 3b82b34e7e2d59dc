package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// Default filter parameters
const (
	DefaultCurrencySymbol = "$"
	DefaultDateFormat     = "%B %d, %Y"
	CurrencyDecimals      = 2
	ThousandsSeparator    = ","
	DecimalPoint          = "."
)

// latexSpecials maps LaTeX-active characters to their escaped forms. The
// backslash is handled separately because it must be replaced before any
// escape sequence containing one is introduced.
var latexSpecials = []struct {
	from string
	to   string
}{
	{"&", `\&`},
	{"%", `\%`},
	{"$", `\$`},
	{"#", `\#`},
	{"_", `\_`},
	{"{", `\{`},
	{"}", `\}`},
	{"~", `\textasciitilde{}`},
	{"^", `\textasciicircum{}`},
}

// Expected-shape descriptions for filter value errors
const (
	ExpectedNumeric    = "a number or numeric string"
	ExpectedDateString = "a recognized date string or time value"
	ExpectedSequence   = "a sequence"
)

// Common date format constants
const (
	DateFormatISO     = "2006-01-02"
	DateFormatUS      = "01/02/2006"
	DateFormatEU      = "02/01/2006"
	DateTimeFormatISO = "2006-01-02T15:04:05Z07:00"
)

// Common time parsing formats tried in order
var commonTimeFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	DateTimeFormatISO,
	DateFormatISO,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.RFC822Z,
	DateFormatUS,
	DateFormatEU,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// RegisterBuiltinFilters registers all built-in filters with the registry.
func RegisterBuiltinFilters(r *FilterRegistry) {
	r.MustRegister(&Filter{Name: FilterNameLatexEscape, MinArgs: 0, MaxArgs: 0, Fn: filterLatexEscape})
	r.MustRegister(&Filter{Name: FilterNameEscape, MinArgs: 0, MaxArgs: 0, Fn: filterLatexEscape})
	r.MustRegister(&Filter{Name: FilterNameCurrency, MinArgs: 0, MaxArgs: 1, Fn: filterCurrency})
	r.MustRegister(&Filter{Name: FilterNameDateFormat, MinArgs: 0, MaxArgs: 1, Fn: filterDateFormat})
	r.MustRegister(&Filter{Name: FilterNameImage, MinArgs: 0, MaxArgs: 1, Fn: filterImage})
	r.MustRegister(&Filter{Name: FilterNameUpper, MinArgs: 0, MaxArgs: 0, Fn: filterUpper})
	r.MustRegister(&Filter{Name: FilterNameLower, MinArgs: 0, MaxArgs: 0, Fn: filterLower})
	r.MustRegister(&Filter{Name: FilterNameTrim, MinArgs: 0, MaxArgs: 0, Fn: filterTrim})
	r.MustRegister(&Filter{Name: FilterNameJoin, MinArgs: 0, MaxArgs: 1, Fn: filterJoin})
	r.MustRegister(&Filter{Name: FilterNameLength, MinArgs: 0, MaxArgs: 0, Fn: filterLength})
	r.MustRegister(&Filter{Name: FilterNameDefault, MinArgs: 1, MaxArgs: 1, Fn: filterDefault})
}

// filterLatexEscape escapes LaTeX-active characters in the value. Applying it
// twice escapes the backslashes introduced by the first pass, so it must run
// exactly once over raw data.
func filterLatexEscape(value any, _ []any) (any, error) {
	s := Stringify(value)
	s = strings.ReplaceAll(s, `\`, `\textbackslash{}`)
	for _, sp := range latexSpecials {
		s = strings.ReplaceAll(s, sp.from, sp.to)
	}
	return s, nil
}

// filterCurrency formats a numeric value as an amount with a currency symbol,
// thousands separators and two decimal places.
func filterCurrency(value any, args []any) (any, error) {
	symbol := DefaultCurrencySymbol
	if len(args) > 0 {
		symbol = Stringify(args[0])
	}

	num, ok := toNumber(value)
	if !ok {
		if s, isStr := value.(string); isStr {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, NewFilterValueError(FilterNameCurrency, value, ExpectedNumeric)
			}
			num = parsed
		} else {
			return nil, NewFilterValueError(FilterNameCurrency, value, ExpectedNumeric)
		}
	}

	return symbol + formatGrouped(num), nil
}

// formatGrouped renders a float with two decimals and comma-grouped integer
// digits.
func formatGrouped(num float64) string {
	formatted := strconv.FormatFloat(num, 'f', CurrencyDecimals, 64)

	sign := StringValueEmpty
	if strings.HasPrefix(formatted, "-") {
		sign = "-"
		formatted = formatted[1:]
	}

	intPart := formatted
	fracPart := StringValueEmpty
	if idx := strings.Index(formatted, DecimalPoint); idx >= 0 {
		intPart = formatted[:idx]
		fracPart = formatted[idx:]
	}

	if len(intPart) <= 3 {
		return sign + intPart + fracPart
	}

	var sb strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		sb.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(ThousandsSeparator)
		}
		sb.WriteString(intPart[i : i+3])
	}

	return sign + sb.String() + fracPart
}

// filterDateFormat parses a date value and reformats it using a strftime
// pattern. Without arguments it renders like "January 15, 2024".
func filterDateFormat(value any, args []any) (any, error) {
	layout := DefaultDateFormat
	if len(args) > 0 {
		layout = Stringify(args[0])
	}

	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case string:
		parsed, err := parseTimeString(v)
		if err != nil {
			return nil, NewFilterValueError(FilterNameDateFormat, value, ExpectedDateString)
		}
		t = parsed
	default:
		return nil, NewFilterValueError(FilterNameDateFormat, value, ExpectedDateString)
	}

	return strftime.Format(layout, t), nil
}

// parseTimeString attempts to parse a string into time.Time using common formats.
func parseTimeString(s string) (time.Time, error) {
	for _, format := range commonTimeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time: %s", s)
}

// filterImage emits an \includegraphics directive for an image path. An empty
// path yields an empty string so optional images drop out of the document.
// Windows-style path separators are normalized.
func filterImage(value any, args []any) (any, error) {
	path := Stringify(value)
	if path == StringValueEmpty {
		return StringValueEmpty, nil
	}

	path = strings.ReplaceAll(path, `\`, "/")

	if len(args) > 0 {
		options := Stringify(args[0])
		if options != StringValueEmpty {
			return fmt.Sprintf(`\includegraphics[%s]{%s}`, options, path), nil
		}
	}

	return fmt.Sprintf(`\includegraphics{%s}`, path), nil
}

func filterUpper(value any, _ []any) (any, error) {
	return strings.ToUpper(Stringify(value)), nil
}

func filterLower(value any, _ []any) (any, error) {
	return strings.ToLower(Stringify(value)), nil
}

func filterTrim(value any, _ []any) (any, error) {
	return strings.TrimSpace(Stringify(value)), nil
}

// filterJoin joins a sequence into a single string, comma-separated unless a
// separator argument is given.
func filterJoin(value any, args []any) (any, error) {
	sep := ", "
	if len(args) > 0 {
		sep = Stringify(args[0])
	}

	switch v := value.(type) {
	case []string:
		return strings.Join(v, sep), nil
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, sep), nil
	default:
		return nil, NewFilterValueError(FilterNameJoin, value, ExpectedSequence)
	}
}

// filterLength returns the element count of a sequence, map or string.
func filterLength(value any, _ []any) (any, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case string:
		return len(v), nil
	case []any:
		return len(v), nil
	case []string:
		return len(v), nil
	case []map[string]any:
		return len(v), nil
	case map[string]any:
		return len(v), nil
	default:
		return nil, NewFilterValueError(FilterNameLength, value, ExpectedSequence)
	}
}

// filterDefault substitutes a fallback when the value is nil or empty.
func filterDefault(value any, args []any) (any, error) {
	if value == nil {
		return args[0], nil
	}
	if s, ok := value.(string); ok && s == StringValueEmpty {
		return args[0], nil
	}
	return value, nil
}

// Stringify converts a value to its template output representation. Nil
// renders as an empty string; floats drop insignificant trailing zeros so
// JSON-decoded integers print without a decimal point.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return StringValueEmpty
	case string:
		return val
	case bool:
		if val {
			return StringValueTrue
		}
		return StringValueFalse
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
