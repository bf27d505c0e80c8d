// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package auravant

import (
	"fmt"
	"net/http"
	"strings"
)

// AuthError means the server rejected the token.
type AuthError struct {
	Op      string // operation, e.g. "getfields"
	Status  int    // HTTP status, if any
	Message string // server message, if any
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authorization failed (status %d): %s", e.Op, e.Status, e.Message)
}

// NotFoundError means the requested farm, field or record does not exist.
type NotFoundError struct {
	Op      string
	Kind    string // "farm", "field", "ndvi", or "resource" for HTTP 404
	ID      string
	Message string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s: %s '%s' not found", e.Op, e.Kind, e.ID)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// MalformedResponseError means the response body could not be decoded into the
// expected schema.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// APIError is any other failure reported by the server.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API error (status %d): %s", e.Op, e.Status, e.Message)
}

// DatasetMissingError means the local harvest dataset does not exist yet. It
// is produced by the companion ingestion script.
type DatasetMissingError struct {
	Path string
}

func (e *DatasetMissingError) Error() string {
	return fmt.Sprintf("there's no file '%s'; in order to build it, please run: %s",
		e.Path, IngestionCommand)
}

// IngestionCommand builds the harvest dataset.
const IngestionCommand = "python3 tcf_scraping.py"

// errorBody is the envelope of error-flagged responses. Auravant may report
// failures with a 2xx status and a body such as {"error": "...", "code": 401}.
type errorBody struct {
	Error   any    `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// flagged reports whether the body carries an error, and its message.
func (b *errorBody) flagged() (string, bool) {
	switch v := b.Error.(type) {
	case nil:
		return "", false
	case bool:
		if !v {
			return "", false
		}
		return b.Message, true
	case string:
		if v == "" {
			return "", false
		}
		if b.Message != "" {
			return v + ": " + b.Message, true
		}
		return v, true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// classify maps an HTTP status and server message to a typed error. Status 0
// stands for an error-flagged 2xx body, in which case the body code is used.
func classify(op string, status, code int, msg string) error {
	if status == 0 || (status >= 200 && status < 300) {
		status = code
	}
	lower := strings.ToLower(msg)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(lower, "token") || strings.Contains(lower, "unauthorized"):
		return &AuthError{Op: op, Status: status, Message: msg}
	case status == http.StatusNotFound:
		return &NotFoundError{Op: op, Kind: "resource", ID: op, Message: msg}
	}
	return &APIError{Op: op, Status: status, Message: msg}
}
