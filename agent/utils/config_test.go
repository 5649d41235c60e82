package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/findy-network/findy-didexchange/core"
	"github.com/lainio/err2/assert"
)

func TestDefaultConfig(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	c := DefaultConfig()
	assert.NoError(c.Validate())
	assert.Equal(c.Timeouts.Short, 5*time.Second)
	assert.Equal(c.Timeouts.Medium, 20*time.Second)
	assert.Equal(c.Timeouts.Long, 60*time.Second)
	assert.Equal(c.AgencyEndpoint(), "http://localhost:8080/agency/msg")
	assert.ThatNot(c.HasAgency())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"bad URL", func(c *Config) { c.AgencyURL = "localhost" }},
		{"version", func(c *Config) { c.ProtocolVersion = "2.0" }},
		{"timeout", func(c *Config) { c.Timeouts.Medium = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()

			c := DefaultConfig()
			tt.modify(c)
			err := c.Validate()
			assert.That(errors.Is(err, core.ErrInvalidOption))
		})
	}
}
