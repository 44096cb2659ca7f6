package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentFilter_Check(t *testing.T) {
	f := NewContentFilter()

	tests := []struct {
		text   string
		ok     bool
		reason string
	}{
		{"", true, ""},
		{"Is the condo still available? Call me at 555-0100.", true, ""},
		{"Email me at buyer@example.com", true, ""},
		{"This price is BULLSHIT", false, ReasonLanguage},
		{"Scunthorpe is a lovely town", true, ""},
		{"heyyyyyyyy are you there", false, ReasonSpam},
		{"reply now!!!!!!", false, ReasonSpam},
		{"PLEASE ANSWER RIGHT AWAY TODAY", false, ReasonCaps},
		{"The HVAC and the HOA fees are fine", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ok, reason := f.Check(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestContentFilter_RejectionMessage(t *testing.T) {
	f := NewContentFilter()
	assert.Equal(t, "Your message appears to be spam.", f.RejectionMessage(ReasonSpam))
	assert.Equal(t, "Your message does not meet our content guidelines.", f.RejectionMessage("other"))
}
