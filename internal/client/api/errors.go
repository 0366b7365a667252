package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/carechain/carechain/internal/common"
)

// APIError is a non-2xx server response carrying a human-readable message
// extracted from the response body. Raw transport details never reach the
// UI layer through this type.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// detailBody mirrors the backend error envelope: {"detail": ...} where
// detail is either a plain string or a list of {loc, msg} validation items.
type detailBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// decodeError maps a non-2xx response to an error. 401 maps to
// common.ErrorUnauthorized so callers can trigger session teardown with
// errors.Is; everything else becomes an *APIError with the extracted detail.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	msg := detailMessage(body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", msg, common.ErrorUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, common.ErrorNotFound)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// detailMessage extracts a displayable message from an error body.
// Supported shapes, in order: {"detail": "..."} and
// {"detail": [{"loc": [...], "msg": "..."}]} (first item wins).
func detailMessage(body []byte) string {
	var envelope detailBody
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []validationItem
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		if len(items[0].Loc) > 0 {
			return fmt.Sprintf("%v: %s", items[0].Loc[len(items[0].Loc)-1], items[0].Msg)
		}
		return items[0].Msg
	}

	// Unknown object shape: fall back to a generic message rather than
	// leaking the raw body.
	return ""
}
