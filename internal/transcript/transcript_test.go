package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_JSONMessages(t *testing.T) {
	text := `[
		{"fromMe": true, "body": "Olá, em que posso ajudar?"},
		{"fromMe": false, "body": "Minha fatura veio errada"},
		{"from": "Atendente Ana", "message": "Vou verificar"},
		{"from": "5511999999999", "content": "Obrigado"},
		{"role": "assistant", "text": "Resolvido"},
		{"role": "user", "text": "Valeu"},
		{"id": 7}
	]`

	got := Parse(text)

	require.Len(t, got, 7)
	assert.Equal(t, Message{Index: 0, Role: RoleAgent, Content: "Olá, em que posso ajudar?"}, got[0])
	assert.Equal(t, RoleCustomer, got[1].Role)
	assert.Equal(t, RoleAgent, got[2].Role)
	assert.Equal(t, "Vou verificar", got[2].Content)
	assert.Equal(t, RoleCustomer, got[3].Role)
	assert.Equal(t, RoleAgent, got[4].Role)
	assert.Equal(t, RoleCustomer, got[5].Role)
	assert.Equal(t, `{"id":7}`, got[6].Content)
}

func TestParse_FromMeTakesPrecedence(t *testing.T) {
	got := Parse(`[{"fromMe": false, "from": "me", "role": "agent", "body": "x"}]`)
	require.Len(t, got, 1)
	assert.Equal(t, RoleCustomer, got[0].Role)
}

func TestParse_NullFromMeIsCustomer(t *testing.T) {
	got := Parse(`[{"fromMe": null, "from": "me", "role": "agent", "body": "x"}]`)
	require.Len(t, got, 1)
	assert.Equal(t, RoleCustomer, got[0].Role)
}

func TestParse_FromVariants(t *testing.T) {
	for _, from := range []string{"me", "ME", "true", "support-agent", "admin@empresa"} {
		got := Parse(`[{"from": "` + from + `", "body": "x"}]`)
		assert.Equal(t, RoleAgent, got[0].Role, from)
	}
}

func TestParse_EmptyContentFallsThrough(t *testing.T) {
	got := Parse(`[{"body": "", "text": "from text"}]`)
	assert.Equal(t, "from text", got[0].Content)
}

func TestParse_PlainLines(t *testing.T) {
	got := Parse("Atendente: Bom dia\nCliente: Oi\nsem prefixo")

	require.Len(t, got, 3)
	assert.Equal(t, Message{Index: 0, Role: RoleAgent, Content: "Bom dia"}, got[0])
	assert.Equal(t, Message{Index: 1, Role: RoleCustomer, Content: "Oi"}, got[1])
	assert.Equal(t, Message{Index: 2, Role: RoleCustomer, Content: "sem prefixo"}, got[2])
}

func TestParse_CaseInsensitiveSpeakerTag(t *testing.T) {
	got := Parse("ATENDENTE: tudo certo")
	assert.Equal(t, RoleAgent, got[0].Role)
	assert.Equal(t, "tudo certo", got[0].Content)
}

func TestParse_JSONWithoutMessages(t *testing.T) {
	assert.Empty(t, Parse(`[]`))
	assert.Empty(t, Parse(`{}`))
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse(`""`))
}

func TestParse_JSONEncodedPlainText(t *testing.T) {
	got := Parse(`"Atendente: Olá\nCliente: Oi"`)
	require.Len(t, got, 2)
	assert.Equal(t, Message{Index: 0, Role: RoleAgent, Content: "Olá"}, got[0])
	assert.Equal(t, Message{Index: 1, Role: RoleCustomer, Content: "Oi"}, got[1])
}
