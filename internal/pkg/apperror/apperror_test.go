package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("provider exploded")
	err := Wrap(KindUpstream, "falha ao consultar o modelo", base)
	wrapped := fmt.Errorf("ask: %w", err)

	assert.Equal(t, KindUpstream, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindUpstream))
	assert.ErrorIs(t, wrapped, base)

	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, KindInternal))
}

func TestWithDetail(t *testing.T) {
	err := New(KindIncompleteReport, "faltam seções").WithDetail("faltantes", []string{"assembly"})

	assert.Equal(t, []string{"assembly"}, err.Details["faltantes"])
	assert.Contains(t, err.Error(), "incomplete_report")
}
