// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jcodagnone/cityres/resolve"
	"github.com/jcodagnone/cityres/sparql"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLines(t *testing.T) {
	got, err := readLines(strings.NewReader("a;1,2,3,4\n\nb;1,2,3,4\r\n\r\nc;1,2,3,4"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a;1,2,3,4", "b;1,2,3,4", "c;1,2,3,4"}, got)
}

func TestPrintQuery(t *testing.T) {
	// neither the cache nor the overrides file is opened, the missing file would fail
	o := &Options{
		Types:         []string{"dbo:Village"},
		CacheDir:      filepath.Join(t.TempDir(), "missing", "cache"),
		OverridesFile: filepath.Join(t.TempDir(), "missing.json"),
	}

	var buf bytes.Buffer
	require.NoError(t, printQuery(&buf, o, "Montreal;45.7058,-73.9742,45.41,-73.474"))
	assert.Contains(t, buf.String(), "?uri a dbo:Village .")
	assert.Contains(t, buf.String(), "?lat < 45.7058")

	buf.Reset()
	require.Error(t, printQuery(&buf, o, "Montreal;45.7058"))
	assert.Empty(t, buf.String())
}

func TestWriteBatch(t *testing.T) {
	items := []resolve.BatchItem{
		{Search: "a", Result: &resolve.Result{Found: true, Source: resolve.SourceLive, Chosen: "urn:a"}},
		{Search: "b", Result: &resolve.Result{Source: resolve.SourceNone}},
		{Search: "c", Err: errors.New("boom")},
	}

	var buf bytes.Buffer
	writeBatch(&buf, items)

	assert.Equal(t, "a\tlive\turn:a\nb\tnone\t\nc\terror\tboom\n", buf.String())
}

func TestWriteScores(t *testing.T) {
	var buf bytes.Buffer
	writeScores(&buf, "Montreal", []string{
		"http://dbpedia.org/resource/Moscow",
		"http://dbpedia.org/resource/Montreal",
	})

	assert.Equal(t,
		"1\t8\t28\thttp://dbpedia.org/resource/Montreal\n"+
			"2\t3\t31\thttp://dbpedia.org/resource/Moscow\n",
		buf.String())
}

func TestWriteOverridesTable(t *testing.T) {
	table := resolve.NewOverrideTable(
		resolve.OverrideEntry{Search: "Montréal;1,2,3,4", Candidates: []string{"urn:a", "urn:b"}},
	)

	var buf bytes.Buffer
	require.NoError(t, writeOverridesTable(&buf, table))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "│ Montréal;1,2,3,4 │ urn:a      │", lines[3])
	assert.Equal(t, "│                  │ urn:b      │", lines[4])
}

func TestNewExecutor(t *testing.T) {
	_, _, err := newExecutor(&Options{Transport: "carrier-pigeon"})
	require.Error(t, err)

	exec, closer, err := newExecutor(&Options{Transport: transportHTTP})
	require.NoError(t, err)
	assert.IsType(t, &sparql.HTTPExecutor{}, exec)
	assert.IsType(t, nopCloser{}, closer)
	require.NoError(t, closer.Close())

	exec, closer, err = newExecutor(&Options{Transport: transportCommand, CacheDir: filepath.Join(t.TempDir(), "cache")})
	require.NoError(t, err)
	assert.IsType(t, &sparql.CachingExecutor{}, exec)
	require.NoError(t, closer.Close())
}

func TestWithTimeout(t *testing.T) {
	slow := sparql.ExecutorFunc(func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()

		return "", ctx.Err()
	})

	_, err := withTimeout(slow, 10*time.Millisecond).Execute(context.Background(), "q", "e")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewServiceOverrides(t *testing.T) {
	svc, closer, err := newService(&Options{Transport: transportHTTP})
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, resolve.DefaultOverrides().Len(), svc.Overrides().Len())

	svc, closer, err = newService(&Options{Transport: transportHTTP, NoOverrides: true})
	require.NoError(t, err)
	defer closer.Close()
	assert.Zero(t, svc.Overrides().Len())

	_, _, err = newService(&Options{Transport: transportHTTP, OverridesFile: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
}

func TestResolveOne(t *testing.T) {
	exec := sparql.ExecutorFunc(func(_ context.Context, query, _ string) (string, error) {
		if strings.Contains(query, "?lat < 45.7058") {
			return "uri\nhttp://dbpedia.org/resource/Montreal\n", nil
		}

		return "uri\n", nil
	})
	svc := resolve.NewService(exec, "http://sparql.test/query")

	c := &cobra.Command{}
	c.SetContext(context.Background())

	var out, errOut bytes.Buffer

	require.NoError(t, resolveOne(c, svc, "Montreal;45.7058,-73.9742,45.41,-73.474", &out, &errOut))
	assert.Equal(t, "http://dbpedia.org/resource/Montreal\n", out.String())

	out.Reset()

	err := resolveOne(c, svc, "Nowhere;1,2,3,4", &out, &errOut)
	require.ErrorIs(t, err, errNoMatch)
	assert.Empty(t, out.String())
	assert.Equal(t, "could not find any resource for Nowhere;1,2,3,4\n", errOut.String())
}
