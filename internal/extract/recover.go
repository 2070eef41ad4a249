// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/pdiddy/talent-engine/internal/logger"
	"github.com/pdiddy/talent-engine/pkg/types"
)

var (
	fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")
	braceSpan   = regexp.MustCompile(`(?s)\{.*\}`)
)

const logPreview = 200

// ParseJSON recovers a JSON object from a model response. It tries, in
// order: the whole text, the first fenced code block, and the widest
// brace-delimited span. When all fail it logs the response and returns an
// empty map; it never returns nil.
func ParseJSON(raw string, log *zap.Logger) map[string]any {
	if log == nil {
		log = zap.NewNop()
	}
	text := strings.TrimSpace(raw)

	if m, ok := parseObject(text); ok {
		return m
	}
	if match := fencedBlock.FindStringSubmatch(text); match != nil {
		if m, ok := parseObject(strings.TrimSpace(match[1])); ok {
			return m
		}
	}
	if span := braceSpan.FindString(text); span != "" {
		if m, ok := parseObject(span); ok {
			return m
		}
	}

	log.Warn("could not recover JSON from model response",
		zap.Int("length", len(raw)),
		zap.String("preview", logger.TruncateForLog(raw, logPreview)),
	)
	return map[string]any{}
}

func parseObject(s string) (map[string]any, bool) {
	if s == "" {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// decodeFields copies src into the struct pointed to by dst one field at a
// time, matching keys to json tag names. Nested objects recurse into nested
// structs. A field whose value cannot be decoded keeps its zero value and is
// logged, so one malformed field never discards the rest.
func decodeFields(src map[string]any, dst any, path string, log *zap.Logger) {
	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		value, ok := src[name]
		if !ok || value == nil {
			continue
		}

		fieldPath := name
		if path != "" {
			fieldPath = path + "." + name
		}

		if nested, isMap := value.(map[string]any); isMap && field.Type.Kind() == reflect.Struct {
			decodeFields(nested, rv.Field(i).Addr().Interface(), fieldPath, log)
			continue
		}

		target := reflect.New(field.Type)
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			TagName:          "json",
			Result:           target.Interface(),
		})
		if err != nil {
			log.Warn("building decoder", zap.String("field", fieldPath), zap.Error(err))
			continue
		}
		if err := dec.Decode(value); err != nil {
			log.Warn("dropping malformed field", zap.String("field", fieldPath), zap.Error(err))
			continue
		}
		rv.Field(i).Set(target.Elem())
	}
}

// coerceFloat reads a number from a decoded JSON value, accepting numeric
// strings such as "8" or "7.5/10".
func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		if before, _, found := strings.Cut(s, "/"); found {
			s = strings.TrimSpace(before)
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// subScore validates a 1-10 sub-score. Out-of-range or non-numeric values
// are dropped with a warning.
func subScore(v any, field string, log *zap.Logger) *float64 {
	if v == nil {
		return nil
	}
	f, ok := coerceFloat(v)
	if !ok || f < 1 || f > 10 {
		log.Warn("discarding sub-score outside 1-10", zap.String("field", field), zap.Any("value", v))
		return nil
	}
	return types.Score(f)
}
