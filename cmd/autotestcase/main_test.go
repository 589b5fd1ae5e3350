package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"
	"go.uber.org/zap/zapcore"

	"autotestcase/internal/config"
	"autotestcase/internal/engine"
	"autotestcase/internal/export"
	"autotestcase/internal/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

const fakeCompletion = "Here are the cases:\n```json\n" + `[
  {"feature": "Login", "test_id": "TC001", "title": "Valid login",
   "steps": ["Open login page", "Enter valid credentials", "Click Login"],
   "expected_result": "Dashboard is shown", "priority": "high"},
  {"title": "Missing password"}
]` + "\n```"

// resetFlags restores package-level flag state and points the CLI at dir.
func resetFlags(t *testing.T, dir string) {
	t.Helper()
	verbose = false
	configPath = filepath.Join(dir, "config.yaml")
	outputPath = filepath.Join(dir, "out", "testcases.xlsx")
	engineOverride = ""
	modelOverride = ""
	timeout = 30 * time.Second
	sampleOutput = filepath.Join(dir, "sample.xlsx")
	forceInit = false
	newEngine = engine.NewFromConfig

	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("AUTOTESTCASE_ENGINE", "")
	t.Cleanup(func() { logging.Set(nil) })
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeOpenAIConfig(t *testing.T, baseURL string) {
	t.Helper()
	writeFile(t, configPath, fmt.Sprintf(`ai_engine: openai
openai:
  api_key: sk-test
  model: gpt-test
  base_url: %s
  max_retries: 0
output:
  sheet_name: Login Cases
`, baseURL))
}

func newOpenAIServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req engine.OpenAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "Users log in with email") {
			t.Errorf("requirement text missing from prompt: %+v", req.Messages)
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunGenerate_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	server := newOpenAIServer(t, fakeCompletion)
	writeOpenAIConfig(t, server.URL)

	input := filepath.Join(dir, "requirements.txt")
	writeFile(t, input, "Users log in with email and password.")

	cmd, out := newTestCommand()
	require.NoError(t, runGenerate(cmd, []string{input}))

	printed := out.String()
	assert.Contains(t, printed, "Reading requirement document: "+input)
	assert.Contains(t, printed, "Extracted 37 characters from document")
	assert.Contains(t, printed, "Using AI engine: openai (model: gpt-test)")
	assert.Contains(t, printed, "Generated 2 test cases")
	assert.Contains(t, printed, "Excel file saved successfully: "+outputPath)
	assert.Contains(t, printed, "Test case generation completed successfully!")

	f, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Login Cases")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, export.Columns, rows[0])
	assert.Equal(t, []string{
		"TC001", "Login", "Valid login",
		"1. Open login page\n2. Enter valid credentials\n3. Click Login",
		"Dashboard is shown", "High", "Not Executed",
	}, rows[1][:7])
	assert.Equal(t, []string{"TC002", "Feature 2", "Missing password"}, rows[2][:3])

	props, err := f.GetDocProps()
	require.NoError(t, err)
	_, err = uuid.Parse(props.Identifier)
	assert.NoError(t, err, "workbook should carry the run id")
}

func TestRunGenerate_InputNotFound(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	missing := filepath.Join(dir, "nope.pdf")
	cmd, _ := newTestCommand()
	err := runGenerate(cmd, []string{missing})
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf("input file %q not found", missing), err.Error())
}

func TestRunGenerate_BlankDocument(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	input := filepath.Join(dir, "blank.txt")
	writeFile(t, input, "  \n\t\n")

	cmd, _ := newTestCommand()
	err := runGenerate(cmd, []string{input})
	require.Error(t, err)
	assert.Equal(t, "no text content found in the document", err.Error())
}

func TestRunGenerate_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	input := filepath.Join(dir, "notes.md")
	writeFile(t, input, "# Notes")

	cmd, _ := newTestCommand()
	err := runGenerate(cmd, []string{input})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Supported formats: .pdf, .docx, .txt")
}

func TestRunGenerate_MissingConfig(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	input := filepath.Join(dir, "req.txt")
	writeFile(t, input, "Users log in with email.")

	cmd, _ := newTestCommand()
	err := runGenerate(cmd, []string{input})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestRunGenerate_MissingAPIKey(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	writeFile(t, configPath, "ai_engine: openai\n")
	input := filepath.Join(dir, "req.txt")
	writeFile(t, input, "Users log in with email.")

	cmd, _ := newTestCommand()
	err := runGenerate(cmd, []string{input})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenAI API key not configured")
}

func TestRunGenerate_NoTestCases(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	server := newOpenAIServer(t, "[]")
	writeOpenAIConfig(t, server.URL)

	input := filepath.Join(dir, "req.txt")
	writeFile(t, input, "Users log in with email.")

	cmd, _ := newTestCommand()
	err := runGenerate(cmd, []string{input})
	require.Error(t, err)
	assert.Equal(t, "no test cases were generated", err.Error())

	_, statErr := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(statErr), "no workbook should be written")
}

func TestRunGenerate_UnparsableResponse(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	server := newOpenAIServer(t, "Sorry, I cannot help with that.")
	writeOpenAIConfig(t, server.URL)

	input := filepath.Join(dir, "req.txt")
	writeFile(t, input, "Users log in with email.")

	cmd, _ := newTestCommand()
	err := runGenerate(cmd, []string{input})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing OpenAI response")
}

type stubEngine struct {
	model string
}

func (s stubEngine) Name() string  { return "Stub" }
func (s stubEngine) Model() string { return s.model }
func (s stubEngine) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return `[{"title": "Only case"}]`, nil
}

func TestRunGenerate_EngineAndModelOverrides(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	writeFile(t, configPath, "ai_engine: openai\ngemini:\n  api_key: g-key\n")
	input := filepath.Join(dir, "req.txt")
	writeFile(t, input, "Users log in with email.")

	engineOverride = "Gemini"
	modelOverride = "gemini-test"

	var seen *config.Config
	newEngine = func(ctx context.Context, cfg *config.Config) (engine.Engine, error) {
		seen = cfg
		return stubEngine{model: cfg.Gemini.Model}, nil
	}

	cmd, out := newTestCommand()
	require.NoError(t, runGenerate(cmd, []string{input}))

	require.NotNil(t, seen)
	assert.Equal(t, "gemini", seen.Engine())
	assert.Equal(t, "gemini-test", seen.Gemini.Model)
	assert.Equal(t, "gpt-4", seen.OpenAI.Model)
	assert.Contains(t, out.String(), "Using AI engine: gemini (model: gemini-test)")
	assert.Contains(t, out.String(), "Generated 1 test cases")
}

func TestRunSample(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	cmd, out := newTestCommand()
	require.NoError(t, runSample(cmd, nil))
	assert.Contains(t, out.String(), "Sample Excel file created")

	f, err := excelize.OpenFile(sampleOutput)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Test Cases")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestRunConfigInit(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	cmd, out := newTestCommand()
	require.NoError(t, runConfigInit(cmd, nil))
	assert.Contains(t, out.String(), "Configuration written to "+configPath)

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	err = runConfigInit(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	forceInit = true
	assert.NoError(t, runConfigInit(cmd, nil))
}

func TestInitLogging_VerboseForcesDebug(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	logFile := filepath.Join(dir, "logs", "run.log")
	verbose = true
	require.NoError(t, initLogging(config.LoggingConfig{Level: "error", Format: "json", File: logFile}))

	logging.APIDebug("debug line visible")
	require.NoError(t, logging.Sync())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug line visible")
}

func TestInitLogging_HonorsConfiguredLevel(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	require.NoError(t, initLogging(config.DefaultConfig().Logging))
	assert.False(t, logging.L().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logging.L().Core().Enabled(zapcore.WarnLevel))

	require.NoError(t, initLogging(config.LoggingConfig{Level: "info", Format: "console"}))
	assert.True(t, logging.L().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logging.L().Core().Enabled(zapcore.DebugLevel))
}

func TestRootCommand_RequiresInput(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, dir)

	rootCmd.SetArgs([]string{})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}
