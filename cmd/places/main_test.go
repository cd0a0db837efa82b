package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"placebook/internal/geocode"
	"placebook/internal/store"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResolver struct {
	address string
	err     error
	calls   int
}

func (f *fakeResolver) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	f.calls++
	return f.address, f.err
}

// setupWorkspace points every global at a fresh temp dir and runs the same
// preparation as the root command.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()

	dir := t.TempDir()
	configPath = filepath.Join(dir, "places.yaml")
	dbPath = filepath.Join(dir, "places.db")
	t.Setenv("PLACEBOOK_PHOTO_DIR", filepath.Join(dir, "photos"))
	t.Setenv("PLACEBOOK_METRICS_TEXTFILE", "")
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	t.Setenv("PLACEBOOK_DB", "")
	t.Setenv("PLACEBOOK_DB_DRIVER", "")

	addTitle, addImage, addAddress = "", "", ""
	addLat, addLng = 0, 0
	purgePhoto = false

	origResolver := newResolver
	t.Cleanup(func() {
		newResolver = origResolver
		dbPath = ""
	})

	require.NoError(t, prepare())
	return dir
}

func writePhoto(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "capture.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0644))
	return path
}

func countPhotos(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(cfg.Photos.Directory)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

func TestInitCreatesStoreAndConfig(t *testing.T) {
	setupWorkspace(t)

	output := captureOutput(t, func() {
		require.NoError(t, runInit(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "Place store ready")
	assert.Contains(t, output, "Wrote default config")

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
	_, err = os.Stat(configPath)
	assert.NoError(t, err)

	// Second run leaves the existing config alone.
	output = captureOutput(t, func() {
		require.NoError(t, runInit(&cobra.Command{}, nil))
	})
	assert.NotContains(t, output, "Wrote default config")
}

func TestInitKeepsOverridesOutOfConfig(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	configPath = filepath.Join(dir, "places.yaml")
	dbPath = filepath.Join(dir, "override.db")
	t.Cleanup(func() { dbPath = "" })
	t.Setenv("GOOGLE_MAPS_API_KEY", "SECRET-KEY")
	t.Setenv("PLACEBOOK_PHOTO_DIR", filepath.Join(dir, "photos"))
	t.Setenv("PLACEBOOK_METRICS_TEXTFILE", "")
	t.Setenv("PLACEBOOK_DB", "")
	t.Setenv("PLACEBOOK_DB_DRIVER", "")
	require.NoError(t, prepare())

	captureOutput(t, func() {
		require.NoError(t, runInit(&cobra.Command{}, nil))
	})

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "SECRET-KEY")
	assert.NotContains(t, string(data), "override.db")
	assert.NotContains(t, string(data), dir)
}

func TestAddListShowDelete(t *testing.T) {
	dir := setupWorkspace(t)

	addTitle = "Eiffel Tower"
	addImage = writePhoto(t, dir)
	addLat, addLng = 48.8584, 2.2945
	addAddress = "Paris, France"

	output := captureOutput(t, func() {
		require.NoError(t, runAdd(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "Added place 1")
	assert.Equal(t, 1, countPhotos(t))

	output = captureOutput(t, func() {
		require.NoError(t, runList(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "Eiffel Tower")
	assert.Contains(t, output, "Paris, France")

	cfg.Geocoding.APIKey = "k"
	output = captureOutput(t, func() {
		require.NoError(t, runShow(&cobra.Command{}, []string{"1"}))
	})
	assert.Contains(t, output, "48.8584, 2.2945")
	assert.Contains(t, output, "staticmap?center=48.8584,2.2945")

	purgePhoto = true
	output = captureOutput(t, func() {
		require.NoError(t, runDelete(&cobra.Command{}, []string{"1"}))
	})
	assert.Contains(t, output, "Deleted place 1")
	assert.Equal(t, 0, countPhotos(t))

	err := runShow(&cobra.Command{}, []string{"1"})
	assert.ErrorContains(t, err, "no place with id 1")

	// Deleting again is fine.
	captureOutput(t, func() {
		assert.NoError(t, runDelete(&cobra.Command{}, []string{"1"}))
	})
}

func TestAddResolvesAddress(t *testing.T) {
	dir := setupWorkspace(t)
	resolver := &fakeResolver{address: "Colosseum, Rome"}
	newResolver = func() (geocode.Resolver, error) { return resolver, nil }

	addTitle = "Colosseum"
	addImage = writePhoto(t, dir)
	addLat, addLng = 41.8902, 12.4922

	output := captureOutput(t, func() {
		require.NoError(t, runAdd(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "Colosseum, Rome")
	assert.Equal(t, 1, resolver.calls)
}

func TestAddResolveFailureSavesNothing(t *testing.T) {
	dir := setupWorkspace(t)
	newResolver = func() (geocode.Resolver, error) {
		return &fakeResolver{err: geocode.ErrNoResults}, nil
	}

	addTitle = "Nowhere"
	addImage = writePhoto(t, dir)
	addLat, addLng = 0, 0

	err := runAdd(&cobra.Command{}, nil)
	assert.ErrorIs(t, err, geocode.ErrNoResults)
	assert.Equal(t, 0, countPhotos(t))

	output := captureOutput(t, func() {
		require.NoError(t, runList(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "No places saved yet.")
}

func TestAddWithoutGeocoding(t *testing.T) {
	dir := setupWorkspace(t)

	addTitle = "Somewhere"
	addImage = writePhoto(t, dir)

	err := runAdd(&cobra.Command{}, nil)
	assert.ErrorContains(t, err, "geocoding is disabled")
}

func TestSchemaFailureAborts(t *testing.T) {
	dir := setupWorkspace(t)
	cfg.Storage.DatabasePath = dir

	err := runList(&cobra.Command{}, nil)
	var initErr *store.InitError
	assert.True(t, errors.As(err, &initErr), "expected InitError, got %v", err)
}

func TestInvalidID(t *testing.T) {
	setupWorkspace(t)

	for _, arg := range []string{"abc", "0", "-3"} {
		assert.Error(t, runShow(&cobra.Command{}, []string{arg}))
		assert.Error(t, runDelete(&cobra.Command{}, []string{arg}))
	}
}

func TestWriteMetrics(t *testing.T) {
	dir := setupWorkspace(t)
	cfg.Metrics.Textfile = filepath.Join(dir, "places.prom")

	captureOutput(t, func() {
		require.NoError(t, runList(&cobra.Command{}, nil))
	})
	require.NoError(t, writeMetrics())

	data, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `placebook_store_operations_total{operation="fetch_all",outcome="ok"} 1`), string(data))
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}
