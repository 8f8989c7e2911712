package storage

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// DecodeProps flattens loosely typed strategy parameters into display strings.
// Numbers keep their shortest exact form, bools become "true"/"false" and
// nested values are rendered with fmt.
func DecodeProps(raw map[string]interface{}) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	if len(raw) == 0 {
		return out, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       propToString,
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode props: %w", err)
	}
	return out, nil
}

func propToString(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.String || data == nil {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case decimal.Decimal:
		return v.String(), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	switch from.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return fmt.Sprint(data), nil
	}
	return data, nil
}
