package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPascalCase(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase words capitalized", "senior engineer", "SeniorEngineer"},
		{"acronyms preserved", "senior ML engineer", "SeniorMLEngineer"},
		{"mixed case preserved", "iOS developer", "IOSDeveloper"},
		{"punctuation stripped", "AT&T Corp.", "ATTCorp"},
		{"parentheses removed", "Engineer (Remote)", "Engineer"},
		{"brackets removed", "Engineer [Contract]", "Engineer"},
		{"apostrophes removed", "O'Brien's Bakery", "OBriensBakery"},
		{"compact dotted suffix kept", "C3.ai", "C3ai"},
		{"slashes split words", "Data/ML Engineer", "DataMLEngineer"},
		{"empty input", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PascalCase(tc.in))
		})
	}
}

func TestCleanLocation(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple city state", "Seattle, WA", "SeattleWA"},
		{"multiple locations joined", "Seattle, WA / San Francisco, CA", "SeattleWASanFranciscoCA"},
		{"semicolon separator", "Boston; Remote", "BostonRemote"},
		{"empty falls back", "", "UnknownLocation"},
		{"whitespace falls back", "   ", "UnknownLocation"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanLocation(tc.in))
		})
	}
}

func TestResumeFilenames(t *testing.T) {
	t.Run("directory is score-prefixed, files are not", func(t *testing.T) {
		names := ResumeFilenames("Jane Doe", "senior ML engineer", "Acme Corp", "Seattle, WA", 85)
		assert.Equal(t, "85_AcmeCorp_SeniorMLEngineer_SeattleWA", names.Dir)
		assert.Equal(t, "Jane_Doe_AcmeCorp_SeniorMLEngineer_SeattleWA", names.Base)
		assert.Equal(t, "85_AcmeCorp_SeniorMLEngineer_SeattleWA/Jane_Doe_AcmeCorp_SeniorMLEngineer_SeattleWA.yaml", names.YAML)
		assert.Equal(t, "85_AcmeCorp_SeniorMLEngineer_SeattleWA/Jane_Doe_AcmeCorp_SeniorMLEngineer_SeattleWA.pdf", names.PDF)
	})

	t.Run("missing fields get placeholders", func(t *testing.T) {
		names := ResumeFilenames("", "", "", "", 0)
		assert.Equal(t, "0_NoCompany_NoJobTitle_UnknownLocation", names.Dir)
		assert.Equal(t, "Resume_NoCompany_NoJobTitle_UnknownLocation", names.Base)
	})
}
