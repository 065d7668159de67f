package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResponse = `{
	"overall_score": 78.5,
	"coreScore": 80,
	"adjScore": 75,
	"skill_breakdown": [{"skill": "MLOps", "score": 70}],
	"gap_analysis": "Needs more LLM fine-tuning work",
	"action_plan": ["Ship a fine-tuned model", "Write about evals", "Earn a cloud ML cert"]
}`

func TestValidate_ScoringResponse(t *testing.T) {
	assert.NoError(t, Validate(ScoringResponse, []byte(validResponse)))
}

func TestValidate_MissingRequiredField(t *testing.T) {
	err := Validate(ScoringResponse, []byte(`{"overall_score": 1, "coreScore": 1, "adjScore": 1, "skill_breakdown": [], "gap_analysis": "x"}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, ScoringResponse, validationErr.Schema)
	require.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, validationErr.Error(), "action_plan")
}

func TestValidate_WrongType(t *testing.T) {
	err := Validate(ScoringResponse, []byte(`{"overall_score": "high", "coreScore": 1, "adjScore": 1, "skill_breakdown": [], "gap_analysis": "x", "action_plan": []}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "overall_score", validationErr.Errors[0].Field)
}

func TestValidate_MalformedDocument(t *testing.T) {
	err := Validate(ScoringResponse, []byte(`{not json`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", []byte(`{}`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing.schema.json", loadErr.Path)
}

func TestValidateFile_Profile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"fullName":"Jane","currentRole":"","about":"","experience":[{"title":"Eng","company":"","duration":""}],"skills":["Go"],"hasFeaturedMedia":false,"url":"https://x"}`), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte(`{"fullName":"Jane","skills":[""]}`), 0o600))

	assert.NoError(t, ValidateFile(Profile, good))
	assert.Error(t, ValidateFile(Profile, bad))
	assert.Error(t, ValidateFile(Profile, filepath.Join(dir, "missing.json")))
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type":"object","required":["name"],"properties":{"name":{"type":"string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name":"x"}`))

	err := ValidateJSONString(schema, `{}`)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)

	err = ValidateJSONString(`{"type": "nonsense"}`, `{}`)
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}
