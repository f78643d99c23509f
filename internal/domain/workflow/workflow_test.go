package workflow_test

import (
	"testing"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validWorkflow = `name: ESLint
on:
  push:
    branches: [main]
jobs:
  lint:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4`

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "name: x\n", "name: x"},
		{"yaml fence", "```yaml\nname: x\njobs: {}\n```", "name: x\njobs: {}"},
		{"bare fence", "```\nname: x\n```\n", "name: x"},
		{"leading whitespace", "  \n```yml\nname: x\n```  ", "name: x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, workflow.StripFences(tt.in))
		})
	}
}

func TestValidate_Prefix(t *testing.T) {
	assert.NoError(t, workflow.Validate("name: anything", false))

	err := workflow.Validate("Here is your workflow:\nname: x", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)

	assert.ErrorIs(t, workflow.Validate("", false), domain.ErrMalformedOutput)
}

func TestValidate_Strict(t *testing.T) {
	assert.NoError(t, workflow.Validate(validWorkflow, true))

	err := workflow.Validate("name: x\non: push\n", true)
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)
	assert.Contains(t, err.Error(), `"jobs"`)

	err = workflow.Validate("name: x\njobs: [\n", true)
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)
}

func TestNormalize(t *testing.T) {
	out, err := workflow.Normalize("```yaml\n"+validWorkflow+"\n```", true)
	require.NoError(t, err)
	assert.Equal(t, validWorkflow, out)

	_, err = workflow.Normalize("Sure! ```yaml\nname: x\n```", false)
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)
}
