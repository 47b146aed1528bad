package resources

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shareshine/backend/internal/middleware"
	"github.com/shareshine/backend/internal/models"
	"github.com/shareshine/backend/internal/store"
)

var validate = models.NewValidator()

func badRequest(msg string, err error) *middleware.HTTPError {
	return &middleware.HTTPError{Status: http.StatusBadRequest, Message: msg, Err: err}
}

// readObject reads the request body as a JSON object, keeping raw values so
// presence and explicit nulls can be told apart.
func readObject(body io.Reader) (map[string]json.RawMessage, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &middleware.HTTPError{Status: http.StatusRequestEntityTooLarge, Message: "request body too large"}
		}
		return nil, badRequest("failed to read request body", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, badRequest("request body must be a JSON object", err)
	}
	for _, k := range []string{store.ColumnID, store.ColumnCreatedAt, store.ColumnUpdatedAt} {
		delete(raw, k)
	}
	return raw, nil
}

// firstMissing returns the first required field that is absent or empty.
// Empty means null, "", 0 or false, the same values a form treats as unset.
func firstMissing(raw map[string]json.RawMessage, required []string) string {
	for _, f := range required {
		v, ok := raw[f]
		if !ok || isEmpty(v) {
			return f
		}
	}
	return ""
}

func isEmpty(v json.RawMessage) bool {
	s := string(bytes.TrimSpace(v))
	switch s {
	case "", "null", `""`, "false":
		return true
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && n == 0 {
		return true
	}
	return false
}

// toRecord checks raw against the resource schema and returns the fields to
// write. Keys sent as null are kept as nil so an update can clear them.
func toRecord(desc Descriptor, raw map[string]json.RawMessage) (store.Record, error) {
	for _, f := range desc.NotNull {
		if v, ok := raw[f]; ok && string(bytes.TrimSpace(v)) == "null" {
			return nil, badRequest("Field cannot be null: "+f, nil)
		}
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, badRequest("invalid request body", err)
	}
	schema := desc.Schema()
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.DisallowUnknownFields()
	if err := dec.Decode(schema); err != nil {
		return nil, badRequest(decodeMessage(err), err)
	}
	if err := validate.Struct(schema); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, badRequest(fmt.Sprintf("Invalid value for field: %s", verrs[0].Field()), err)
		}
		return nil, badRequest("invalid request body", err)
	}

	normalized, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", desc.Name, err)
	}
	rec := store.Record{}
	if err := json.Unmarshal(normalized, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", desc.Name, err)
	}
	for k, v := range raw {
		if string(bytes.TrimSpace(v)) == "null" {
			rec[k] = nil
		}
	}
	return rec, nil
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("Invalid value for field: %s", typeErr.Field)
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "json: unknown field ") {
		return "Unknown field: " + strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`)
	}
	return "invalid request body"
}
