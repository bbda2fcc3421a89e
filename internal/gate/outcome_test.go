package gate

import (
	"encoding/json"
	"testing"
)

func TestOutcome_Message(t *testing.T) {
	for _, tc := range []struct {
		name string
		out  Outcome
		want string
	}{
		{
			name: "Success",
			out:  Success(200),
			want: "😄 opened",
		},
		{
			name: "HTTPError",
			out:  HTTPError(404, "Not Found", "nope"),
			want: `😧 failed to open, response: {"status":404,"statusText":"Not Found","body":"nope"}`,
		},
		{
			name: "HTTPErrorEmptyBody",
			out:  HTTPError(502, "Bad Gateway", ""),
			want: `😧 failed to open, response: {"status":502,"statusText":"Bad Gateway","body":""}`,
		},
		{
			name: "TransportError",
			out:  TransportError("Network request failed"),
			want: "🫤 failed to open, error: Network request failed, response: undefined",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.out.Message(); got != tc.want {
				t.Errorf("Message() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestOutcome_ResponseIsJSON(t *testing.T) {
	out := HTTPError(418, "I'm a teapot", `{"quoted":"<b>"}`)

	var got responseRepr
	if err := json.Unmarshal([]byte(out.Response()), &got); err != nil {
		t.Fatalf("Response() is not JSON: %v", err)
	}
	if got.Status != 418 || got.StatusText != "I'm a teapot" || got.Body != `{"quoted":"<b>"}` {
		t.Errorf("Response() round-trip = %+v", got)
	}
}

func TestOutcome_OK(t *testing.T) {
	if !Success(204).OK() {
		t.Error("Success(204).OK() = false")
	}
	if HTTPError(500, "", "").OK() {
		t.Error("HTTPError.OK() = true")
	}
	if TransportError("x").OK() {
		t.Error("TransportError.OK() = true")
	}
}

func TestKind_String(t *testing.T) {
	for k, want := range map[Kind]string{
		KindSuccess:        "success",
		KindHTTPError:      "http_error",
		KindTransportError: "transport_error",
		Kind(9):            "kind(9)",
	} {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
