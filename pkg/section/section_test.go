package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Section
	}{
		{"materials", Materials},
		{"/materiais", Materials},
		{"  Montagem ", Assembly},
		{"visao", Overview},
		{"/procedimento/", Procedure},
		{"relatorio", Report},
		{"perguntar", General},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Parse(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want.Key(), got.Key())
		})
	}

	_, ok := Parse("/admin")
	assert.False(t, ok)
	_, ok = Parse("")
	assert.False(t, ok)
}

func TestSectionFlags(t *testing.T) {
	for _, s := range Required {
		assert.True(t, s.AutoLoad(), s.Key())
		assert.True(t, s.Askable(), s.Key())
		assert.False(t, s.RequiresQuestion(), s.Key())
	}

	assert.False(t, Report.AutoLoad())
	assert.False(t, Report.Askable())
	assert.False(t, General.AutoLoad())
	assert.True(t, General.RequiresQuestion())
	assert.Equal(t, "/relatorio", Report.Route())
}

func TestPrompt(t *testing.T) {
	p, err := Materials.Prompt(" Irrigation System ", "")
	require.NoError(t, err)
	assert.Equal(t, "Liste materiais para o projeto 'Irrigation System' com quantidades.", p)

	p, err = Materials.Prompt("Irrigation System", "List 3 low-cost materials")
	require.NoError(t, err)
	assert.Contains(t, p, "Irrigation System")
	assert.Contains(t, p, "List 3 low-cost materials")
	assert.Contains(t, p, "Materiais")

	_, err = General.Prompt("X", "  ")
	assert.Error(t, err)

	_, err = Report.Prompt("X", "anything")
	assert.Error(t, err)
}

func TestAllIsOrdered(t *testing.T) {
	for i := 1; i < len(All); i++ {
		assert.Less(t, All[i-1].Order(), All[i].Order())
	}
}

func TestMustParsePanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() { MustParse("nope") })
	assert.True(t, Overview.Equal(MustParse("overview")))
}
