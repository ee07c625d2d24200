package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/resumeforge/resumeforge/backend/go-services/internal/reconcile"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/resume"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestReconcileCommand(t *testing.T) {
	prev := writeFile(t, "prev.json", `{"name":"Ada","experience":[{"id":"e1","title":"Analyst"},{"id":"e2","title":"Translator"}]}`)
	returned := writeFile(t, "returned.yaml", `
name: Ada L.
experience:
  - id: e2
    title: Senior Translator
  - title: Poet
`)

	out, err := run(t, "reconcile", "--previous", prev, "--returned", returned, "--deterministic")
	require.NoError(t, err)

	var res reconcile.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Ada L.", res.Document.Name)
	assert.Equal(t, []string{"e2", "id-1"}, res.Document.IDs(resume.KindExperience))
	assert.Equal(t, []string{"e1"}, res.Report[resume.KindExperience].DroppedIDs)
}

func TestReconcileCommandYAMLOutput(t *testing.T) {
	prev := writeFile(t, "prev.json", `{"websites":[{"id":"w1","url":"https://a.dev"}]}`)
	returned := writeFile(t, "returned.json", `{"websites":[{"id":"w1","url":"https://b.dev"}]}`)

	out, err := run(t, "reconcile", "--format", "yaml", "--previous", prev, "--returned", returned)
	require.NoError(t, err)

	var res reconcile.Result
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	require.Len(t, res.Document.Websites, 1)
	assert.Equal(t, "w1", res.Document.Websites[0].ID)
	assert.Equal(t, 1, res.Report[resume.KindWebsites].Preserved)
}

func TestReconcileCommandRequiresFlags(t *testing.T) {
	_, err := run(t, "reconcile")
	require.Error(t, err)

	_, err = run(t, "reconcile", "--previous", "/nonexistent.json", "--returned", "/nonexistent.json")
	require.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	good := writeFile(t, "good.json", `{"name":"Ada","contact":{"email":"ada@example.com"}}`)
	out, err := run(t, "validate", good)
	require.NoError(t, err)
	var res ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Valid)

	bad := writeFile(t, "bad.json", `{"contact":{"email":"nope"},"projects":[{"id":"p1","name":"a"},{"id":"p1","name":"b"}]}`)
	out, err = run(t, "validate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 problem(s)")
	res = ValidationResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Valid)
	assert.Len(t, res.Problems, 2)
}

func TestBlankCommand(t *testing.T) {
	out, err := run(t, "blank")
	require.NoError(t, err)
	var doc resume.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.True(t, doc.Equal(resume.Blank()))
	assert.Contains(t, out, `"experience": []`)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "--format", "xml", "blank")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
