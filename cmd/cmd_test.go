package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/certifica/internal/catalog"
	"github.com/abhisek/certifica/internal/store"
)

// run executes the root command against dbPath and returns stdout.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--db", dbPath, "--driver", "sqlite"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func testDB(t *testing.T) string {
	t.Helper()
	t.Setenv("CERTIFICA_LOG_LEVEL", "error")
	return filepath.Join(t.TempDir(), "certifica.db")
}

func TestVersion(t *testing.T) {
	out, err := run(t, testDB(t), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "certifica "), out)

	version = "v1.4.0"
	t.Cleanup(func() { version = "" })
	out, err = run(t, testDB(t), "version")
	require.NoError(t, err)
	assert.Equal(t, "certifica v1.4.0\n", out)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testDB(t)
	out, err := run(t, db, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Created 87 courses, 0 already present.")
	require.Len(t, catalog.Titles, 87)

	out, err = run(t, db, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Created 0 courses, 87 already present.")
}

func TestCourseAddListDelete(t *testing.T) {
	db := testDB(t)

	out, err := run(t, db, "course", "add", "Gestão", "Ambiental", "--hours", "0", "--description", "", "--price-cents", "4990")
	require.NoError(t, err)
	assert.Contains(t, out, "Course 1 added: Gestão Ambiental (60 h)")

	_, err = run(t, db, "course", "add", "Gestão Ambiental", "--hours", "0", "--description", "", "--price-cents", "0")
	assert.ErrorIs(t, err, store.ErrDuplicateTitle)

	out, err = run(t, db, "course", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Gestão Ambiental")
	assert.Contains(t, out, "R$ 49,90")

	out, err = run(t, db, "course", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Course 1 deleted.")

	out, err = run(t, db, "course", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No courses")

	_, err = run(t, db, "course", "delete", "abc")
	assert.Error(t, err)
}

func TestUserRenewAndCredits(t *testing.T) {
	db := testDB(t)

	out, err := run(t, db, "user", "renew", "Ana@Example.com", "--credits", "1", "--name", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Created ana@example.com with 1 credits.")

	out, err = run(t, db, "user", "credits", "ana@example.com", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "ana@example.com now has 5 credits.")

	_, err = run(t, db, "user", "credits", "ana@example.com", "-9")
	assert.ErrorIs(t, err, store.ErrInsufficientCredits)

	out, err = run(t, db, "user", "renew", "ana@example.com", "--credits", "2", "--name", "")
	require.NoError(t, err)
	assert.Contains(t, out, "ana@example.com now has 2 credits.")

	_, err = run(t, db, "user", "credits", "nobody@example.com", "1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = run(t, db, "user", "renew", "ana@example.com", "--credits", "-1", "--name", "")
	assert.Error(t, err)
}

func TestLLMCommandsOnEmptyLog(t *testing.T) {
	db := testDB(t)

	out, err := run(t, db, "llm", "list", "--limit", "20", "--purpose", "", "--since", "0s")
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM calls recorded.")

	out, err = run(t, db, "llm", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM usage recorded yet.")

	_, err = run(t, db, "llm", "view", "42")
	assert.Error(t, err)
}

func TestWriteStats(t *testing.T) {
	var out bytes.Buffer
	writeStats(&out,
		[]store.LLMUsage{{Purpose: "exam-gen", Calls: 2, InputTokens: 1000, OutputTokens: 500, AvgLatencyMs: 900}},
		[]store.LLMUsage{
			{Model: "gemini-2.0-flash", Calls: 1, InputTokens: 1000, OutputTokens: 500},
			{Model: "mystery-model", Calls: 1},
		})
	s := out.String()
	assert.Contains(t, s, "exam-gen")
	assert.Contains(t, s, "TOTAL (partial)")
	assert.True(t, strings.Contains(s, "Pricing unavailable for: mystery-model"))
}

func TestExamRequiresKnownCourse(t *testing.T) {
	db := testDB(t)
	_, err := run(t, db, "exam", "Curso Inexistente", "--email", "", "--duration", "0", "--log-file", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
