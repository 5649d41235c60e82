package agency

import (
	"encoding/json"
	"fmt"
)

// MessageStatusCode is the status of a message in the mediator's inbox.
type MessageStatusCode int

const (
	Created MessageStatusCode = iota + 101
	Sent
	Received
	Accepted
	Rejected
	Reviewed
	Redirected
)

func (s MessageStatusCode) Valid() bool {
	return s >= Created && s <= Redirected
}

// String returns the wire code, e.g. MS-103.
func (s MessageStatusCode) String() string {
	return fmt.Sprintf("MS-%d", int(s))
}

func ParseStatus(code string) (MessageStatusCode, error) {
	var n int
	if _, err := fmt.Sscanf(code, "MS-%d", &n); err != nil {
		return 0, fmt.Errorf("message status %q: %w", code, err)
	}
	s := MessageStatusCode(n)
	if !s.Valid() {
		return 0, fmt.Errorf("message status %q out of range", code)
	}
	return s, nil
}

func (s MessageStatusCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *MessageStatusCode) UnmarshalJSON(data []byte) (err error) {
	var code string
	if err = json.Unmarshal(data, &code); err != nil {
		return err
	}
	*s, err = ParseStatus(code)
	return err
}
