package i18n_test

import (
	"strings"
	"testing"

	"github.com/aretw0/reportflow/pkg/catalog"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_CoversBuiltinCatalog(t *testing.T) {
	b := i18n.Default()
	assert.Empty(t, b.Missing(catalog.Default()))
}

func TestText_FillsGuidelinesLink(t *testing.T) {
	b := i18n.Default()
	got := b.Text(domain.Msg("report.projectInstructions"))
	assert.Contains(t, got, "[Community Guidelines](/community_guidelines)")
	assert.NotContains(t, got, "{CommunityGuidelinesLink}")
}

func TestText_UnknownFallsBackToID(t *testing.T) {
	assert.Equal(t, "nope.missing", i18n.Default().Text(domain.Msg("nope.missing")))
}

func TestMerge_Overrides(t *testing.T) {
	b := i18n.Default()
	require.NoError(t, b.Merge(strings.NewReader(`report.send: "Enviar"`)))
	assert.Equal(t, "Enviar", b.Text(domain.Msg("report.send")))
	assert.Equal(t, "Next", b.Text(domain.Msg("general.next")))
}

func TestWithValue(t *testing.T) {
	b, err := i18n.New(strings.NewReader(`greet: "see {Link}"`), i18n.WithValue("Link", "here"))
	require.NoError(t, err)
	assert.Equal(t, "see here", b.Text(domain.Msg("greet")))
}
