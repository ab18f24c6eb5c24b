package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

var ErrNoJSONObject = errors.New("no json object in llm output")

// ExtractJSONObject returns the text between the first '{' and the last '}'.
// Models often wrap JSON in prose or markdown fences; everything outside is dropped.
func ExtractJSONObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSONObject
	}
	return raw[start : end+1], nil
}

// DecodeObject extracts the embedded JSON object from raw and decodes it into v.
func DecodeObject(raw string, v any) error {
	obj, err := ExtractJSONObject(raw)
	if err != nil {
		return err
	}
	if err := sonic.UnmarshalString(obj, v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}
