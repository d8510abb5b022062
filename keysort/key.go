package keysort

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	duerrors "github.com/amp-labs/duesort/errors"
	"golang.org/x/text/unicode/norm"
)

// DefaultDateLayout is fixed width, so string order equals calendar order.
const DefaultDateLayout = time.DateOnly

// DefaultSeparator joins the date and identifier parts of a key.
const DefaultSeparator = "-"

// DefaultAcceptedLayouts are tried in order when a due date arrives as a string.
var DefaultAcceptedLayouts = []string{ //nolint:gochecknoglobals
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"2-Jan-2006",
}

// keyer turns the raw field values of a record into its sort key.
type keyer struct {
	separator string
	layout    string
	accepted  []string
	canonical bool
	normalize bool
}

func missing(what string) error {
	return fmt.Errorf("%w: %s is missing", duerrors.ErrInvalidRecord, what)
}

// key builds textual(due) + separator + textual(id).
func (k *keyer) key(due any, dueOK bool, id any, idOK bool) (string, string, error) {
	if !dueOK {
		return "", FieldDueDate, missing("due date")
	}

	dueText, err := k.dueText(due)
	if err != nil {
		return "", FieldDueDate, err
	}

	if !idOK {
		return "", FieldID, missing("id")
	}

	idText, err := k.idText(id)
	if err != nil {
		return "", FieldID, err
	}

	return dueText + k.separator + idText, "", nil
}

func (k *keyer) dueText(val any) (string, error) {
	switch v := val.(type) {
	case nil:
		return "", missing("due date")
	case time.Time:
		if v.IsZero() {
			return "", missing("due date")
		}

		return v.Format(k.layout), nil
	case *time.Time:
		if v == nil {
			return "", missing("due date")
		}

		return k.dueText(*v)
	case string:
		return k.dueString(v)
	case *string:
		if v == nil {
			return "", missing("due date")
		}

		return k.dueString(*v)
	case fmt.Stringer:
		if isNilPointer(v) {
			return "", missing("due date")
		}

		return k.dueString(v.String())
	default:
		return "", fmt.Errorf("%w: %w: unsupported type %T", duerrors.ErrInvalidRecord, duerrors.ErrInvalidDate, val)
	}
}

func (k *keyer) dueString(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", missing("due date")
	}

	if !k.canonical {
		return s, nil
	}

	for _, layout := range k.accepted {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(k.layout), nil
		}
	}

	return "", fmt.Errorf("%w: %w: cannot parse %q", duerrors.ErrInvalidRecord, duerrors.ErrInvalidDate, s)
}

func (k *keyer) idText(val any) (string, error) {
	var s string

	switch v := val.(type) {
	case nil:
		return "", missing("id")
	case string:
		s = v
	case *string:
		if v == nil {
			return "", missing("id")
		}

		s = *v
	case fmt.Stringer:
		if isNilPointer(v) {
			return "", missing("id")
		}

		s = v.String()
	case int:
		s = strconv.FormatInt(int64(v), 10)
	case int8:
		s = strconv.FormatInt(int64(v), 10)
	case int16:
		s = strconv.FormatInt(int64(v), 10)
	case int32:
		s = strconv.FormatInt(int64(v), 10)
	case int64:
		s = strconv.FormatInt(v, 10)
	case uint:
		s = strconv.FormatUint(uint64(v), 10)
	case uint8:
		s = strconv.FormatUint(uint64(v), 10)
	case uint16:
		s = strconv.FormatUint(uint64(v), 10)
	case uint32:
		s = strconv.FormatUint(uint64(v), 10)
	case uint64:
		s = strconv.FormatUint(v, 10)
	case float64:
		// JSON and YAML decoders hand integers over as float64.
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			s = strconv.FormatInt(int64(v), 10)
		} else {
			s = strconv.FormatFloat(v, 'f', -1, 64)
		}
	default:
		return "", fmt.Errorf("%w: unsupported id type %T", duerrors.ErrInvalidRecord, val)
	}

	if strings.TrimSpace(s) == "" {
		return "", missing("id")
	}

	if k.normalize {
		s = norm.NFC.String(s)
	}

	return s, nil
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
