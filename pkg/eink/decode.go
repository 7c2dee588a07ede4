package eink

import (
	"encoding/json"
	"fmt"
)

// listKeys are the wrapper fields a list body may nest its items under.
var listKeys = []string{"items", "resources", "displays", "images", "transformers", "image_transformers"}

type identified struct {
	ID json.RawMessage `json:"id"`
}

// decodeResourceID extracts an id from a body that is either a bare JSON
// string or number, or an object with an "id" field.
func decodeResourceID(resp *Response) (string, error) {
	var raw json.RawMessage

	err := resp.Decode(&raw)
	if err != nil {
		return "", err
	}

	id, ok := idFromRaw(raw)
	if !ok {
		return "", fmt.Errorf("decoding %s %s: %w", resp.Method, resp.Path, ErrMissingResourceID)
	}

	return id, nil
}

// decodeResourceIDs extracts ids from a list body: an array of objects, an
// array of bare ids, or an object wrapping one of those arrays.
func decodeResourceIDs(resp *Response, wrapperKeys ...string) ([]string, error) {
	var items []json.RawMessage

	err := json.Unmarshal(resp.Body, &items)
	if err != nil {
		var wrapper map[string]json.RawMessage

		decodeErr := resp.Decode(&wrapper)
		if decodeErr != nil {
			return nil, decodeErr
		}

		items, err = unwrapList(wrapper, append(wrapperKeys, listKeys...))
		if err != nil {
			return nil, fmt.Errorf("decoding %s %s: %w", resp.Method, resp.Path, err)
		}
	}

	ids := make([]string, 0, len(items))

	for _, item := range items {
		id, ok := idFromRaw(item)
		if !ok {
			return nil, fmt.Errorf("decoding %s %s: %w", resp.Method, resp.Path, ErrMissingResourceID)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func unwrapList(wrapper map[string]json.RawMessage, keys []string) ([]json.RawMessage, error) {
	for _, key := range keys {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}

		var items []json.RawMessage

		err := json.Unmarshal(raw, &items)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}

		return items, nil
	}

	return nil, ErrMissingResourceID
}

func idFromRaw(raw json.RawMessage) (string, bool) {
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str, str != ""
	}

	var num json.Number
	if json.Unmarshal(raw, &num) == nil {
		return num.String(), true
	}

	var obj identified
	if json.Unmarshal(raw, &obj) == nil && len(obj.ID) > 0 {
		return idFromScalar(obj.ID)
	}

	return "", false
}

func idFromScalar(raw json.RawMessage) (string, bool) {
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str, str != ""
	}

	var num json.Number
	if json.Unmarshal(raw, &num) == nil {
		return num.String(), true
	}

	return "", false
}

// decodeFlag reads a JSON boolean, or an object carrying the flag under one of keys.
func decodeFlag(resp *Response, keys ...string) (bool, error) {
	var raw json.RawMessage

	err := resp.Decode(&raw)
	if err != nil {
		return false, err
	}

	var flag bool
	if json.Unmarshal(raw, &flag) == nil {
		return flag, nil
	}

	var obj map[string]json.RawMessage

	err = json.Unmarshal(raw, &obj)
	if err != nil {
		return false, fmt.Errorf("decoding %s %s: %w", resp.Method, resp.Path, err)
	}

	for _, key := range keys {
		value, ok := obj[key]
		if !ok {
			continue
		}

		err = json.Unmarshal(value, &flag)
		if err != nil {
			return false, fmt.Errorf("decoding %s %s: field %q: %w", resp.Method, resp.Path, key, err)
		}

		return flag, nil
	}

	return false, fmt.Errorf("decoding %s %s: %w: %v", resp.Method, resp.Path, ErrUnexpectedBody, keys)
}
