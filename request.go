package datastar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// QueryKey is the query parameter that carries the signals of GET requests.
const QueryKey = "datastar"

// Rejection is the reason extracting signals from a request failed.
type Rejection uint8

const (
	// RejectionQueryString means the query string could not be decoded.
	RejectionQueryString Rejection = iota + 1
	// RejectionQueryNotFound means the query string has no datastar parameter.
	RejectionQueryNotFound
	// RejectionQueryJSON means the datastar parameter is not valid JSON for the target.
	RejectionQueryJSON
	// RejectionBodyRead means the request body could not be read.
	RejectionBodyRead
	// RejectionBodyJSON means the request body is not valid JSON for the target.
	RejectionBodyJSON
)

var rejectionMessages = [...]string{
	RejectionQueryString:   "Failed to deserialize datastar query string",
	RejectionQueryNotFound: "Query string with the format `?datastar=<json>` was not found",
	RejectionQueryJSON:     "Failed to deserialize inner json of datastar query string",
	RejectionBodyRead:      "Failed to read request body",
	RejectionBodyJSON:      "Failed to deserialize datastar request body",
}

// Message returns the fixed text sent to the client for the rejection.
func (r Rejection) Message() string {
	if r == 0 || int(r) >= len(rejectionMessages) {
		return http.StatusText(http.StatusBadRequest)
	}
	return rejectionMessages[r]
}

// RequestError is returned when the signals can't be extracted from a request.
type RequestError struct {
	Rejection Rejection
	// Err is the underlying error. It is nil for RejectionQueryNotFound.
	Err error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return "go-datastar: " + e.Rejection.Message()
	}
	return fmt.Sprintf("go-datastar: %s: %v", e.Rejection.Message(), e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *RequestError with the same rejection.
func (e *RequestError) Is(target error) bool {
	t, ok := target.(*RequestError)
	return ok && t.Rejection == e.Rejection && t.Err == nil
}

// Sentinel values to compare errors against using errors.Is.
var (
	ErrQueryString   error = &RequestError{Rejection: RejectionQueryString}
	ErrQueryNotFound error = &RequestError{Rejection: RejectionQueryNotFound}
	ErrQueryJSON     error = &RequestError{Rejection: RejectionQueryJSON}
	ErrBodyRead      error = &RequestError{Rejection: RejectionBodyRead}
	ErrBodyJSON      error = &RequestError{Rejection: RejectionBodyJSON}
)

var errInvalidJSON = errors.New("invalid JSON")

func jsonRejection(method string) Rejection {
	if method == http.MethodGet {
		return RejectionQueryJSON
	}
	return RejectionBodyJSON
}

// queryValue returns the unescaped value of the first pair named key in
// rawQuery. Pairs are separated by '&' only; other pairs are not decoded, so
// malformed unrelated parameters don't affect the result.
func queryValue(rawQuery, key string) (string, bool, error) {
	for rawQuery != "" {
		var pair string
		pair, rawQuery, _ = strings.Cut(rawQuery, "&")
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(rawKey)
		if err != nil || k != key {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return "", true, err
		}
		return value, true, nil
	}
	return "", false, nil
}

// ExtractSignals returns the raw JSON signals of a request, without parsing them.
// GET requests carry them in the datastar query parameter of rawQuery; all
// other requests carry them in body. The body may be nil.
//
// Errors are of type *RequestError.
func ExtractSignals(method, rawQuery string, body io.Reader) ([]byte, error) {
	if method == http.MethodGet {
		value, ok, err := queryValue(rawQuery, QueryKey)
		if err != nil {
			return nil, &RequestError{Rejection: RejectionQueryString, Err: err}
		}
		if !ok {
			return nil, &RequestError{Rejection: RejectionQueryNotFound}
		}
		return []byte(value), nil
	}

	if body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &RequestError{Rejection: RejectionBodyRead, Err: err}
	}
	return data, nil
}

// DecodeSignals extracts the signals like ExtractSignals does and decodes
// them into v using encoding/json.
func DecodeSignals(method, rawQuery string, body io.Reader, v any) error {
	data, err := ExtractSignals(method, rawQuery, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &RequestError{Rejection: jsonRejection(method), Err: err}
	}
	return nil
}

// ReadSignals decodes the signals Datastar sent with r into v.
//
// Errors are of type *RequestError; use Reject to answer the client with them.
func ReadSignals(r *http.Request, v any) error {
	return DecodeSignals(r.Method, r.URL.RawQuery, r.Body, v)
}

// RawSignals returns the signals Datastar sent with r for path lookups,
// for example RawSignals(r).Get("user.name"), without decoding them into a type.
func RawSignals(r *http.Request) (gjson.Result, error) {
	data, err := ExtractSignals(r.Method, r.URL.RawQuery, r.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	data = bytes.TrimSpace(data)
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, &RequestError{Rejection: jsonRejection(r.Method), Err: errInvalidJSON}
	}
	return gjson.ParseBytes(data), nil
}

// Reject answers the client with the error returned by ReadSignals or RawSignals.
// Request errors are sent as 400 Bad Request with their fixed message;
// any other error results in a 500 Internal Server Error.
func Reject(w http.ResponseWriter, err error) {
	var rerr *RequestError
	if !errors.As(err, &rerr) {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set(headerContentType, "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = io.WriteString(w, rerr.Rejection.Message())
}
