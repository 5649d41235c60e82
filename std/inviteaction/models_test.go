package inviteaction

import (
	"encoding/json"
	"testing"
)

func TestNewInvite(t *testing.T) {
	tests := []struct {
		name string
		data Data
		want string
	}{
		{"no ack",
			Data{GoalCode: "automotive.inspect.tire"},
			`{"@type":"https://didcomm.org/invite-action/0.9/invite","@id":"id","goal_code":"automotive.inspect.tire"}`},
		{"ack",
			Data{GoalCode: "automotive.inspect.tire", AckOn: []string{"ACCEPT"}},
			`{"@type":"https://didcomm.org/invite-action/0.9/invite","@id":"id","goal_code":"automotive.inspect.tire","~please_ack":{"on":["ACCEPT"]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := NewInvite(tt.data)
			if inv.ID == "" {
				t.Fatal("no @id")
			}
			inv.ID = "id"
			got, err := json.Marshal(inv)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("NewInvite() = %s, want %s", got, tt.want)
			}
		})
	}
}
