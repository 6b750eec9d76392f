package classification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/grooming-service/internal/types"
)

func strPtr(s string) *string { return &s }

func item(name string, category string) types.LineItem {
	li := types.LineItem{Name: name, Quantity: 1, UnitPrice: 100}
	if category != "" {
		li.Category = strPtr(category)
	}
	return li
}

func TestClassify_EmptyItemsIsStore(t *testing.T) {
	f := Classify(nil, nil)
	assert.Equal(t, Flags{IsGrooming: false, IsStore: true}, f)

	f = Classify([]types.LineItem{}, []types.ClassificationRule{
		{Keyword: "corte", MatchType: types.MatchContains, Target: types.TargetGrooming},
	})
	assert.Equal(t, Flags{IsStore: true}, f)
}

func TestClassify_DefaultKeywords(t *testing.T) {
	tests := []struct {
		name     string
		items    []types.LineItem
		expected Flags
	}{
		{"corte is grooming", []types.LineItem{item("Corte de pelo", "")}, Flags{IsGrooming: true}},
		{"baño with accent", []types.LineItem{item("BAÑO medicado", "")}, Flags{IsGrooming: true}},
		{"category servicio", []types.LineItem{item("Paquete premium", "Servicios")}, Flags{IsGrooming: true}},
		{"plain product is store", []types.LineItem{item("Croquetas 2kg", "Alimento")}, Flags{IsStore: true}},
		{"mixed ticket", []types.LineItem{item("Deslanado", ""), item("Collar", "Accesorios")}, Flags{IsGrooming: true, IsStore: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.items, nil))
		})
	}
}

func TestClassify_FirstRuleWins(t *testing.T) {
	rules := []types.ClassificationRule{
		{ID: "r2", Keyword: "shampoo", MatchType: types.MatchContains, Target: types.TargetGrooming, Position: 2},
		{ID: "r1", Keyword: "shampoo antipulgas", MatchType: types.MatchExact, Target: types.TargetStore, Position: 1},
	}

	f := Classify([]types.LineItem{item("Shampoo Antipulgas", "")}, rules)
	assert.Equal(t, Flags{IsStore: true}, f, "exact rule at position 1 must win")

	f = Classify([]types.LineItem{item("Shampoo con avena", "")}, rules)
	assert.Equal(t, Flags{IsGrooming: true}, f)
}

func TestClassify_RuleOverridesDefaults(t *testing.T) {
	rules := []types.ClassificationRule{
		{Keyword: "cortauñas", MatchType: types.MatchContains, Target: types.TargetStore, Position: 1},
		{Keyword: "servicio a domicilio", MatchType: types.MatchExact, Target: types.TargetStore, Position: 2},
	}

	assert.Equal(t, Flags{IsStore: true}, Classify([]types.LineItem{item("Cortaunas acero", "")}, rules))
	assert.Equal(t, Flags{IsStore: true}, Classify([]types.LineItem{item("Servicio a domicilio", "")}, rules))
	assert.Equal(t, Flags{IsGrooming: true}, Classify([]types.LineItem{item("Servicio completo", "")}, rules))
}

func TestClassify_ExactMatchesCategory(t *testing.T) {
	rules := []types.ClassificationRule{
		{Keyword: "spa", MatchType: types.MatchExact, Target: types.TargetGrooming, Position: 1},
	}

	assert.Equal(t, Flags{IsGrooming: true}, Classify([]types.LineItem{item("Tratamiento hidratante", "SPA")}, rules))
	assert.Equal(t, Flags{IsStore: true}, Classify([]types.LineItem{item("Tratamiento", "spa line")}, rules))
}

func TestClassify_Idempotent(t *testing.T) {
	rules := []types.ClassificationRule{
		{Keyword: "collar", MatchType: types.MatchContains, Target: types.TargetStore, Position: 1},
	}
	items := []types.LineItem{item("Baño", ""), item("Collar rojo", "")}

	first := Classify(items, rules)
	second := Classify(items, rules)
	assert.Equal(t, first, second)

	e := NewEngine(rules)
	assert.Equal(t, e.Classify(items), e.Classify(items))
}

func TestNewEngine_SkipsInvalidRules(t *testing.T) {
	e := NewEngine([]types.ClassificationRule{
		{Keyword: "  ", MatchType: types.MatchContains, Target: types.TargetStore},
		{Keyword: "x", MatchType: "regex", Target: types.TargetStore},
		{Keyword: "y", MatchType: types.MatchExact, Target: "other"},
		{Keyword: "ok", MatchType: types.MatchExact, Target: types.TargetStore},
	})

	rules := e.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, "ok", rules[0].Keyword)
}

func TestValidateRules(t *testing.T) {
	err := ValidateRules([]types.ClassificationRule{
		{Keyword: "ok", MatchType: types.MatchExact, Target: types.TargetStore},
		{Keyword: "bad", MatchType: "fuzzy", Target: types.TargetStore},
	})
	require.Error(t, err)

	var invalid ErrInvalidRule
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, invalid.Index)

	assert.NoError(t, ValidateRules(nil))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "bano completo", Fold("  Baño   COMPLETO "))
	assert.Equal(t, "cepillado", Fold("Cepillado"))
	assert.Equal(t, "", Fold("   "))
}

func TestLoadRulesYAML(t *testing.T) {
	doc := `
rules:
  - keyword: shampoo
    match_type: contains
    target: store
  - keyword: Spa
    match_type: exact
    target: grooming
`
	rules, err := LoadRulesYAML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, 1, rules[0].Position)
	assert.Equal(t, 2, rules[1].Position)
	assert.Equal(t, types.TargetGrooming, rules[1].Target)

	_, err = LoadRulesYAML(strings.NewReader("rules:\n  - keyword: x\n    match_type: nope\n    target: store\n"))
	assert.Error(t, err)

	rules, err = LoadRulesYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rules)
}
