package query

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"github.com/tobsdb/tablekit/internal/builder"
	"golang.org/x/text/cases"
)

// ISO_TIME is how date values are matched by the global filter.
const ISO_TIME = "2006-01-02T15:04:05.000Z"

func fold(s string) string {
	// a Caser keeps state, so one per call
	return cases.Fold().String(s)
}

// Stringify is the display and text match form of a cell value.
func Stringify[R any](col *builder.Column[R], value any) string {
	if col != nil && col.Stringify != nil {
		return col.Stringify(value)
	}
	return StringifyValue(value)
}

func StringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.UTC().Format(ISO_TIME)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.UTC().Format(ISO_TIME)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

// containsText reports if value, or any primitive nested in it, contains text.
// text must already be folded.
func containsText(value any, text string) bool {
	switch v := value.(type) {
	case nil:
		return text == ""
	case string:
		return strings.Contains(fold(v), text)
	case time.Time:
		return strings.Contains(fold(v.UTC().Format(ISO_TIME)), text)
	case *time.Time:
		return v != nil && strings.Contains(fold(v.UTC().Format(ISO_TIME)), text)
	case fmt.Stringer:
		return strings.Contains(fold(v.String()), text)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return text == ""
		}
		return containsText(rv.Elem().Interface(), text)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if containsText(rv.Index(i).Interface(), text) {
				return true
			}
		}
		return false
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			if containsText(rv.MapIndex(k).Interface(), text) {
				return true
			}
		}
		return false
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if rv.Type().Field(i).IsExported() && containsText(rv.Field(i).Interface(), text) {
				return true
			}
		}
		return false
	}
	return strings.Contains(fold(StringifyValue(value)), text)
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, !math.IsNaN(v)
	}
	return 0, false
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		t, err := dateparse.ParseAny(strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// CompareValues orders two non nil cell values.
// Numbers compare numerically, times chronologically, false before true,
// everything else by natural case insensitive order of its string form.
func CompareValues(a, b any) int {
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			return compareFloat(an, bn)
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			}
			return 1
		}
	}
	return NaturalCompare(fold(StringifyValue(a)), fold(StringifyValue(b)))
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// NaturalCompare compares strings treating runs of digits as numbers,
// so "item 2" sorts before "item 10".
func NaturalCompare(a, b string) int {
	ar, br := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si, sj := i, j
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			na := strings.TrimLeft(string(ar[si:i]), "0")
			nb := strings.TrimLeft(string(br[sj:j]), "0")
			if len(na) != len(nb) {
				return compareFloat(float64(len(na)), float64(len(nb)))
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			continue
		}
		if ar[i] != br[j] {
			if ar[i] < br[j] {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	return compareFloat(float64(len(ar)-i), float64(len(br)-j))
}
