package v1beta1

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Entry is one [key, value] pair of an ordered map as it travels on the wire.
type Entry[T any] struct {
	Key   string
	Value T
}

func (e Entry[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Key, e.Value})
}

func (e *Entry[T]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("map entry must have exactly 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Key); err != nil {
		return fmt.Errorf("map entry key: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Value); err != nil {
		return fmt.Errorf("map entry %q value: %w", e.Key, err)
	}
	return nil
}

// KeyValueList is the wire form of a map<string, string>.
type KeyValueList []Entry[string]

// ToMap flattens the list. Later duplicates win.
func (l KeyValueList) ToMap() map[string]string {
	if len(l) == 0 {
		return nil
	}
	out := make(map[string]string, len(l))
	for _, e := range l {
		out[e.Key] = e.Value
	}
	return out
}

// KeyValueListFromMap builds a list sorted by key so the result is deterministic.
func KeyValueListFromMap(m map[string]string) KeyValueList {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(KeyValueList, 0, len(keys))
	for _, k := range keys {
		out = append(out, Entry[string]{Key: k, Value: m[k]})
	}
	return out
}
