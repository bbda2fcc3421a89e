package gate

import (
	"encoding/json"
	"fmt"
)

// Kind tags which way an open attempt settled.
type Kind int

const (
	// KindSuccess means the server answered with a 2xx status.
	KindSuccess Kind = iota
	// KindHTTPError means a response arrived with a non-2xx status.
	KindHTTPError
	// KindTransportError means no response arrived: DNS, connect, TLS or the
	// deadline aborted the request.
	KindTransportError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindHTTPError:
		return "http_error"
	case KindTransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the settled result of one open attempt. Status, StatusText and
// Body are set for KindSuccess and KindHTTPError; Err only for
// KindTransportError.
type Outcome struct {
	Kind       Kind   `json:"kind"`
	Status     int    `json:"status,omitempty"`
	StatusText string `json:"statusText,omitempty"`
	Body       string `json:"body,omitempty"`
	Err        string `json:"error,omitempty"`
}

// Success builds a KindSuccess outcome.
func Success(status int) Outcome {
	return Outcome{Kind: KindSuccess, Status: status}
}

// HTTPError builds a KindHTTPError outcome.
func HTTPError(status int, statusText, body string) Outcome {
	return Outcome{Kind: KindHTTPError, Status: status, StatusText: statusText, Body: body}
}

// TransportError builds a KindTransportError outcome.
func TransportError(msg string) Outcome {
	return Outcome{Kind: KindTransportError, Err: msg}
}

// OK reports whether the gate accepted the request.
func (o Outcome) OK() bool { return o.Kind == KindSuccess }

// responseRepr is what a failed response looks like inside a log line.
type responseRepr struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	Body       string `json:"body"`
}

// Response renders the response part of a log line. Transport failures have
// no response and render as "undefined".
func (o Outcome) Response() string {
	if o.Kind == KindTransportError {
		return "undefined"
	}
	data, err := json.Marshal(responseRepr{Status: o.Status, StatusText: o.StatusText, Body: o.Body})
	if err != nil {
		return fmt.Sprintf("{\"status\":%d}", o.Status)
	}
	return string(data)
}

// Message is the human-readable line appended to the log for this outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case KindSuccess:
		return "😄 opened"
	case KindHTTPError:
		return "😧 failed to open, response: " + o.Response()
	default:
		return fmt.Sprintf("🫤 failed to open, error: %s, response: %s", o.Err, o.Response())
	}
}
