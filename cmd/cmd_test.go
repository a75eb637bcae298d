package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rogersnm/taskdesk/internal/api/apitest"
	"github.com/rogersnm/taskdesk/internal/config"
	"github.com/rogersnm/taskdesk/internal/markdown"
	"github.com/rogersnm/taskdesk/internal/model"
	"github.com/rogersnm/taskdesk/internal/repofile"
	"github.com/rogersnm/taskdesk/internal/viewmodel"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags clears flag values left behind by a previous Execute, since
// cobra commands are package globals.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type result struct {
	out, errOut string
	err         error
}

func setupEnv(t *testing.T, seed ...model.Record) (*apitest.Server, string) {
	t.Helper()
	srv := apitest.NewServer(seed...)
	t.Cleanup(srv.Close)
	t.Setenv(envAPIURL, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	dir := t.TempDir()
	return srv, dir
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

// runMain goes through Execute so top-level error printing is included.
func runMain(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := Execute()
	return errOut.String(), err
}

func runAPI(t *testing.T, srv *apitest.Server, dir string, args ...string) result {
	t.Helper()
	return run(t, "", append(args, "--data-dir", dir, "--api-url", srv.URL)...)
}

func seed() []model.Record {
	return []model.Record{
		{ID: 1, Task: "Buy milk", Process: model.ProcessDone, Priority: model.PriorityLow},
		{ID: 2, Task: "Buy bread", Process: model.ProcessInProcess, Priority: model.PriorityHigh},
		{ID: 3, Task: "Call mom"},
	}
}

func TestList_RendersTable(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	res := runAPI(t, srv, dir, "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Buy milk")
	assert.Contains(t, res.out, "Buy bread")
	assert.Contains(t, res.out, "Call mom")
}

func TestList_Empty(t *testing.T) {
	srv, dir := setupEnv(t)
	res := runAPI(t, srv, dir, "ls")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, markdown.NoTasks)
}

func TestList_NoMatches(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	res := runAPI(t, srv, dir, "list", "--search", "zzz")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, markdown.NoMatches)
	assert.NotContains(t, res.out, "Buy milk")
}

func TestList_FilterSearchSortJSON(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	res := runAPI(t, srv, dir, "list", "-q", "buy", "--sort", "task", "--json")
	require.NoError(t, res.err)

	var rows []model.Record
	require.NoError(t, json.Unmarshal([]byte(res.out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Buy bread", rows[0].Task)
	assert.Equal(t, "Buy milk", rows[1].Task)

	res = runAPI(t, srv, dir, "list", "--status", "done", "--json")
	require.NoError(t, res.err)
	require.NoError(t, json.Unmarshal([]byte(res.out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].ID)
}

func TestList_DescDefaultsToID(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	res := runAPI(t, srv, dir, "list", "--desc", "--json")
	require.NoError(t, res.err)

	var rows []model.Record
	require.NoError(t, json.Unmarshal([]byte(res.out), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{rows[0].ID, rows[1].ID, rows[2].ID})
}

func TestList_InvalidFlags(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	assert.Error(t, runAPI(t, srv, dir, "list", "--status", "bogus").err)
	assert.Error(t, runAPI(t, srv, dir, "list", "--sort", "color").err)
	assert.Equal(t, 0, srv.CountMethod(http.MethodGet))
}

func TestList_APIFailureNotifies(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	srv.FailNext(http.MethodGet, http.StatusInternalServerError)
	res := runAPI(t, srv, dir, "list")
	require.Error(t, res.err)
	assert.Contains(t, res.errOut, "Could not load tasks")
}

func TestCreate_FromArgs(t *testing.T) {
	srv, dir := setupEnv(t)
	res := runAPI(t, srv, dir, "create", "Buy milk", "--priority", "high")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Created task #1")

	recs := srv.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "Buy milk", recs[0].Task)
	assert.Equal(t, model.PriorityHigh, recs[0].Priority)
	assert.Equal(t, model.ProcessUnset, recs[0].Process)
}

func TestCreate_FromStdin(t *testing.T) {
	srv, dir := setupEnv(t)
	res := run(t, "Water plants\n", "create", "--data-dir", dir, "--api-url", srv.URL)
	require.NoError(t, res.err)

	recs := srv.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "Water plants", recs[0].Task)
}

func TestCreate_EmptyTaskRejectedBeforeRequest(t *testing.T) {
	srv, dir := setupEnv(t)
	res := run(t, "  \n", "create", "--data-dir", dir, "--api-url", srv.URL)
	require.ErrorIs(t, res.err, model.ErrTaskRequired)
	assert.Equal(t, 0, srv.CountMethod(http.MethodPost))
}

func TestCreate_APIFailure(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	srv.FailNext(http.MethodPost, http.StatusInternalServerError)
	res := runAPI(t, srv, dir, "create", "Walk dog")
	require.Error(t, res.err)
	assert.Contains(t, res.errOut, "Could not create task")
	assert.NotContains(t, res.out, "Created")
	assert.Len(t, srv.Records(), 3)
}

func TestShow(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	res := runAPI(t, srv, dir, "show", "#2")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "task: Buy bread")
	assert.Contains(t, res.out, "process: In process")
}

func TestShow_NotFound(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	res := runAPI(t, srv, dir, "show", "99")
	assert.ErrorIs(t, res.err, viewmodel.ErrNotFound)
}

func TestShow_InvalidID(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	assert.Error(t, runAPI(t, srv, dir, "show", "abc").err)
	assert.Equal(t, 0, srv.CountMethod(http.MethodGet))
}

func TestUpdate_Flags(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	res := runAPI(t, srv, dir, "update", "1", "--status", "In process", "--priority", "")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Updated task #1")

	recs := srv.Records()
	assert.Equal(t, model.ProcessInProcess, recs[0].Process)
	assert.Equal(t, model.PriorityUnset, recs[0].Priority)
	assert.Equal(t, "Buy milk", recs[0].Task)
}

func TestUpdate_SendsOnlyChangedFields(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	require.NoError(t, runAPI(t, srv, dir, "update", "2", "--task", "Buy rye bread").err)

	var patch *apitest.Request
	for _, r := range srv.Requests() {
		r := r // per-iteration copy (go < 1.22 loop semantics)
		if r.Method == http.MethodPatch {
			patch = &r
		}
	}
	require.NotNil(t, patch)
	assert.Equal(t, "/2", patch.Path)
	assert.Equal(t, map[string]any{"task": "Buy rye bread"}, patch.Body)
}

func TestUpdate_RequiresAFlag(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	assert.Error(t, runAPI(t, srv, dir, "update", "1").err)
	assert.Equal(t, 0, srv.CountMethod(http.MethodPatch))
}

func TestUpdate_EmptyTaskRejected(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	res := runAPI(t, srv, dir, "update", "1", "--task", "")
	require.ErrorIs(t, res.err, model.ErrTaskRequired)
	assert.Equal(t, 0, srv.CountMethod(http.MethodPatch))
}

func TestUpdate_NotFound(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	res := runAPI(t, srv, dir, "update", "42", "--status", "Done")
	require.Error(t, res.err)
	assert.Contains(t, res.errOut, "Could not update task #42")
}

func TestEdit_ViaEditor(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	script := filepath.Join(t.TempDir(), "ed.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsed -i 's/^task: .*/task: Buy oat milk/' \"$1\"\n"), 0755))
	t.Setenv("EDITOR", script)

	res := runAPI(t, srv, dir, "edit", "1")
	require.NoError(t, res.err)
	assert.Equal(t, "Buy oat milk", srv.Records()[0].Task)
}

func TestEdit_NoChanges(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	t.Setenv("EDITOR", "true")
	t.Setenv("VISUAL", "")

	res := runAPI(t, srv, dir, "edit", "1")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "No changes")
	assert.Equal(t, 0, srv.CountMethod(http.MethodPatch))
}

func TestDelete_Force(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	res := runAPI(t, srv, dir, "delete", "2", "--force")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Deleted task #2")
	assert.Len(t, srv.Records(), 2)
}

func TestDelete_WithoutConfirmationRefused(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	res := runAPI(t, srv, dir, "delete", "2")
	require.Error(t, res.err)
	assert.Equal(t, 0, srv.CountMethod(http.MethodDelete))
	assert.Len(t, srv.Records(), 3)
}

func TestNoAPIConfigured(t *testing.T) {
	_, dir := setupEnv(t)
	res := run(t, "", "list", "--data-dir", dir)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "config set api_url")
}

func TestAPIURL_FromConfigAndLink(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	require.NoError(t, config.Save(dir, &config.Config{APIURL: "http://127.0.0.1:1/unused"}))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	res := run(t, "", "link", srv.URL, "--data-dir", dir)
	require.NoError(t, res.err)
	u, err := repofile.Read(cwd)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, u)

	// the repo link wins over the config file
	res = run(t, "", "list", "--data-dir", dir)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Buy milk")

	require.NoError(t, run(t, "", "unlink", "--data-dir", dir).err)
	u, err = repofile.Read(cwd)
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestAPIURL_EnvOverridesConfig(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	require.NoError(t, config.Save(dir, &config.Config{APIURL: "http://127.0.0.1:1/unused"}))
	t.Setenv(envAPIURL, srv.URL)

	res := run(t, "", "list", "--data-dir", dir)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Call mom")
}

func TestLink_InvalidURL(t *testing.T) {
	_, dir := setupEnv(t)
	assert.Error(t, run(t, "", "link", "localhost:3000", "--data-dir", dir).err)
}

func TestConfig_SetAndStatus(t *testing.T) {
	_, dir := setupEnv(t)
	require.NoError(t, run(t, "", "config", "set", "api_url", "https://tasks.example.com/", "--data-dir", dir).err)
	require.NoError(t, run(t, "", "config", "set", "default_sort", "task:desc", "--data-dir", dir).err)
	require.NoError(t, run(t, "", "config", "set", "api_key", "secret-key", "--data-dir", dir).err)

	c, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://tasks.example.com/", c.APIURL)
	assert.Equal(t, "task:desc", c.DefaultSort)

	res := run(t, "", "config", "status", "--data-dir", dir)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "API URL: https://tasks.example.com/")
	assert.Contains(t, res.out, "API key: secr...")
	assert.NotContains(t, res.out, "secret-key")
	assert.Contains(t, res.out, "Default sort: task:desc")
}

func TestConfig_SetRejectsInvalid(t *testing.T) {
	_, dir := setupEnv(t)
	assert.Error(t, run(t, "", "config", "set", "color", "blue", "--data-dir", dir).err)
	assert.Error(t, run(t, "", "config", "set", "timeout", "soon", "--data-dir", dir).err)
	assert.Error(t, run(t, "", "config", "set", "default_sort", "color", "--data-dir", dir).err)
	assert.Error(t, run(t, "", "config", "set", "api_url", "ftp://x", "--data-dir", dir).err)
}

func TestConfig_StatusUnconfigured(t *testing.T) {
	_, dir := setupEnv(t)
	res := run(t, "", "config", "status", "--data-dir", dir)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Not configured")
}

func TestDefaultSortFromConfig(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	require.NoError(t, config.Save(dir, &config.Config{DefaultSort: "task:desc"}))

	res := runAPI(t, srv, dir, "list", "--json")
	require.NoError(t, res.err)
	var rows []model.Record
	require.NoError(t, json.Unmarshal([]byte(res.out), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "Call mom", rows[0].Task)
	assert.Equal(t, "Buy bread", rows[2].Task)
}

func TestExecute_NotifiedErrorPrintedOnce(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)
	srv.FailNext(http.MethodGet, http.StatusInternalServerError)

	errOut, err := runMain(t, "list", "--data-dir", dir, "--api-url", srv.URL)
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(errOut, "Could not load tasks"))
	assert.NotContains(t, errOut, "Error:")
}

func TestExecute_PlainErrorPrinted(t *testing.T) {
	srv, dir := setupEnv(t, seed()...)

	errOut, err := runMain(t, "list", "--status", "bogus", "--data-dir", dir, "--api-url", srv.URL)
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(errOut, "Error:"))
	assert.Contains(t, errOut, "bogus")
}
