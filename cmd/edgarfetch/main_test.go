package main_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	main "github.com/ebarkan/edgarseg/cmd/edgarfetch"
	"github.com/ebarkan/edgarseg/edgar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccession = "0000320193-24-000123"
	testCIK       = "320193"
	testUA        = "Acme Research admin@acme.example"
	containerBody = "<SEC-DOCUMENT>0000320193-24-000123.txt : 20241101\n</SEC-DOCUMENT>\n"
)

// archiveServer serves one container at the real EDGAR archive path and
// counts requests.
func archiveServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/Archives/edgar/data/320193/000032019324000123/0000320193-24-000123.txt", r.URL.Path)
		assert.Equal(t, testUA, r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		if status == http.StatusOK {
			fmt.Fprint(w, containerBody)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func serverMain(srv *httptest.Server) *main.Main {
	m := main.NewMain()
	m.ClientOptions = []edgar.Option{edgar.WithBaseURL(srv.URL)}
	return m
}

func runMain(t *testing.T, m *main.Main, args ...string) (*bytes.Buffer, *bytes.Buffer, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), args, stdout, stderr)
	return stdout, stderr, err
}

func TestFetchCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("downloads a container to the output directory", func(t *testing.T) {
		t.Parallel()

		srv, hits := archiveServer(t, http.StatusOK)
		out := t.TempDir()

		stdout, _, err := runMain(t, serverMain(srv),
			testCIK+"/"+testAccession, "--out", out, "--user-agent", testUA, "--rps", "1000")
		require.NoError(t, err)

		assert.Equal(t, int32(1), hits.Load())
		assert.Contains(t, stdout.String(), "ok    "+testAccession)
		assert.Contains(t, stdout.String(), "Fetched 1 containers")

		data, err := os.ReadFile(filepath.Join(out, testAccession+".txt"))
		require.NoError(t, err)
		assert.Equal(t, containerBody, string(data))
	})

	t.Run("accepts undashed accession numbers", func(t *testing.T) {
		t.Parallel()

		srv, _ := archiveServer(t, http.StatusOK)
		out := t.TempDir()

		_, _, err := runMain(t, serverMain(srv),
			testCIK+"/000032019324000123", "--out", out, "--user-agent", testUA, "--rps", "1000")
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(out, testAccession+".txt"))
		assert.NoError(t, err, "the file name should use the dashed form")
	})

	t.Run("skips containers already on disk", func(t *testing.T) {
		t.Parallel()

		srv, hits := archiveServer(t, http.StatusOK)
		out := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(out, testAccession+".txt"), []byte("already here"), 0644))

		stdout, _, err := runMain(t, serverMain(srv),
			testCIK+"/"+testAccession, "--out", out, "--user-agent", testUA, "--rps", "1000")
		require.NoError(t, err)

		assert.Equal(t, int32(0), hits.Load(), "an existing container should not be re-fetched")
		assert.Contains(t, stdout.String(), "skip  "+testAccession+" (exists)")
	})

	t.Run("dedupes repeated accessions", func(t *testing.T) {
		t.Parallel()

		srv, hits := archiveServer(t, http.StatusOK)
		out := t.TempDir()

		stdout, _, err := runMain(t, serverMain(srv),
			testCIK+"/"+testAccession, testCIK+"/000032019324000123",
			"--out", out, "--user-agent", testUA, "--rps", "1000")
		require.NoError(t, err)

		assert.Equal(t, int32(1), hits.Load())
		assert.Contains(t, stdout.String(), "skip  "+testAccession+" (duplicate)")
		assert.Contains(t, stdout.String(), "1 skipped")
	})

	t.Run("reads targets from a list file", func(t *testing.T) {
		t.Parallel()

		srv, hits := archiveServer(t, http.StatusOK)
		dir := t.TempDir()
		list := filepath.Join(dir, "filings.txt")
		listContent := "# holdings under review\n\n" + testCIK + " " + testAccession + "\n"
		require.NoError(t, os.WriteFile(list, []byte(listContent), 0644))

		_, _, err := runMain(t, serverMain(srv),
			"--list", list, "--out", dir, "--user-agent", testUA, "--rps", "1000")
		require.NoError(t, err)

		assert.Equal(t, int32(1), hits.Load())
		_, err = os.Stat(filepath.Join(dir, testAccession+".txt"))
		assert.NoError(t, err)
	})

	t.Run("reports failed downloads", func(t *testing.T) {
		t.Parallel()

		srv, _ := archiveServer(t, http.StatusNotFound)
		out := t.TempDir()

		stdout, _, err := runMain(t, serverMain(srv),
			testCIK+"/"+testAccession, "--out", out, "--user-agent", testUA, "--rps", "1000")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 downloads failed")
		assert.Contains(t, stdout.String(), "fail  "+testAccession)

		_, statErr := os.Stat(filepath.Join(out, testAccession+".txt"))
		assert.True(t, os.IsNotExist(statErr), "no file should be left behind for a failed download")
	})

	t.Run("rejects a malformed pair", func(t *testing.T) {
		t.Parallel()

		srv, _ := archiveServer(t, http.StatusOK)

		_, stderr, err := runMain(t, serverMain(srv),
			"320193", "--out", t.TempDir(), "--user-agent", testUA)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "invalid filing")
	})
}

func TestMain_Run_RequiresUserAgent(t *testing.T) {
	t.Setenv("EDGAR_USER_AGENT", "")

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"320193/" + testAccession}, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EDGAR_USER_AGENT")
	assert.Contains(t, stderr.String(), "Hint:")
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Usage:")
	assert.Contains(t, stdout.String(), "CIK/ACCESSION")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{}, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no filings specified")
}
