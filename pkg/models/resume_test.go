package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTailorResultDishonestyScore(t *testing.T) {
	t.Run("recorded score", func(t *testing.T) {
		r := &TailorResult{Intermediates: map[string]any{"dishonesty_score": 35}}
		assert.Equal(t, 35, r.DishonestyScore())
	})

	t.Run("no validation ran", func(t *testing.T) {
		r := &TailorResult{Intermediates: map[string]any{}}
		assert.Equal(t, -1, r.DishonestyScore())
		assert.Equal(t, -1, (&TailorResult{}).DishonestyScore())
	})
}

func TestTailorResultFinalDocument(t *testing.T) {
	working := Document{"profile": "w"}
	formatted := Document{"profile": "f"}

	r := &TailorResult{WorkingDocument: working}
	assert.Equal(t, working, r.FinalDocument())

	r.FormattedDocument = formatted
	assert.Equal(t, formatted, r.FinalDocument())
}

func TestJobDisplayName(t *testing.T) {
	j := &Job{JobTitle: "Data Engineer", Company: "Acme"}
	assert.Equal(t, "Data Engineer at Acme", j.DisplayName())

	empty := &Job{}
	assert.Equal(t, "Unknown Job at Unknown Company", empty.DisplayName())
}

func TestJobSearchText(t *testing.T) {
	j := &Job{JobTitle: "Data Engineer", Company: "Acme", Location: "Seattle"}
	assert.Equal(t, "data engineer acme seattle", j.SearchText())
}
