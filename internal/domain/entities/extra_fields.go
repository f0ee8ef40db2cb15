package entities

import (
	"encoding/json"
	"log"
)

// decodeWithExtra decodes b into known and returns every top-level key that
// is not listed in keys, verbatim. A known key whose value does not fit its
// field is skipped and kept verbatim with the extra keys, so one mistyped
// field never costs the rest of the object.
func decodeWithExtra(b []byte, known any, keys []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, known); err != nil {
		for _, k := range keys {
			v, ok := all[k]
			if !ok {
				continue
			}
			one, err := json.Marshal(map[string]json.RawMessage{k: v})
			if err != nil {
				continue
			}
			if err := json.Unmarshal(one, known); err != nil {
				log.Printf("[items][decode] skipped mistyped field key=%s err=%v", k, err)
				continue
			}
			delete(all, k)
		}
	} else {
		for _, k := range keys {
			delete(all, k)
		}
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// encodeWithExtra marshals known and merges extra keys that known did not emit.
func encodeWithExtra(known any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return b, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// CloneExtra copies a set of preserved raw fields.
func CloneExtra(in map[string]json.RawMessage) map[string]json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
