package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// readObject reads the request body as a JSON object. An empty body is an
// empty object. URL-encoded forms are accepted and converted, each value
// becoming a JSON string.
func readObject(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, errInvalidJSON
	}

	if isForm(r) {
		return formObject(data)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(data) {
		return nil, errInvalidJSON
	}
	if data[0] != '{' {
		return nil, errNotObject
	}
	return data, nil
}

func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}

func formObject(data []byte) (json.RawMessage, error) {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, errInvalidJSON
	}
	obj := make(map[string]string, len(values))
	for k := range values {
		obj[k] = values.Get(k)
	}
	return json.Marshal(obj)
}

// decodeCreate decodes a create body, keeping numbers as json.Number.
func decodeCreate(raw json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, errInvalidJSON
	}
	return body, nil
}

// decodeUpdate decodes an update body into its raw fields.
func decodeUpdate(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errInvalidJSON
	}
	return body, nil
}
