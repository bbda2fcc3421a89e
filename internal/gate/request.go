package gate

// Request is the body POSTed to the open endpoint.
type Request struct {
	Action      string      `json:"action"`
	ToServer    ToServer    `json:"toServer"`
	Passthrough Passthrough `json:"passthrough"`
}

// ToServer holds options interpreted by the backend.
type ToServer struct {
	ShortResponse bool `json:"shortResponse"`
}

// Passthrough is forwarded untouched to the gate controller.
type Passthrough struct {
	Who string `json:"who"`
}

// OpenRequest returns the fixed open-gate payload sent by the phone client.
func OpenRequest() Request {
	return Request{
		Action:      "open",
		ToServer:    ToServer{ShortResponse: true},
		Passthrough: Passthrough{Who: "phone"},
	}
}
