package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/config"
	"salesboard/internal/storage"
	"salesboard/internal/storage/storagetest"
)

const table550 = "week,weekday,평균매출수량\n10,1,5\n10,2,7\n10,3,9\n"

func withStore(t *testing.T, store storage.BlobStore) {
	t.Helper()
	t.Setenv("SALESBOARD_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SALESBOARD_LOGGING_LEVEL", "error")
	prev := openStore
	openStore = func(context.Context, config.StorageConfig) (storage.BlobStore, error) {
		return store, nil
	}
	t.Cleanup(func() { openStore = prev })
}

func TestRun_WritesChartAndExport(t *testing.T) {
	store := storagetest.NewMemory().Put(config.DefaultBucket, "erp/550.csv", []byte(table550))
	withStore(t, store)

	dir := t.TempDir()
	chartPath := filepath.Join(dir, "chart.svg")
	exportPath := filepath.Join(dir, "window.xlsx")

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-product", "550", "-date", "2024-03-06", "-days", "1",
		"-out", chartPath, "-export", exportPath,
	}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "선택한 날짜는 10주차, 수요일에 해당합니다.", lines[0])
	assert.Equal(t, "선택한 10주차, 수요일의 평균 매출수량은 7입니다.", lines[1])
	assert.Equal(t, "선택한 날짜 기준 전후 1일간의 데이터를 그래프로 표시합니다.", lines[2])

	svg, err := os.ReadFile(chartPath)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	xlsx, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(xlsx[:2]))

	// Messages, chart and export come from a single fetch.
	assert.Equal(t, 1, store.Calls())
}

func TestRun_ZeroDayChart(t *testing.T) {
	withStore(t, storagetest.NewMemory().Put(config.DefaultBucket, "erp/550.csv", []byte(table550)))

	chartPath := filepath.Join(t.TempDir(), "chart.png")
	err := run(context.Background(), []string{"-product", "550", "-date", "2024-03-06", "-days", "0", "-out", chartPath}, &bytes.Buffer{})
	require.NoError(t, err)

	png, err := os.ReadFile(chartPath)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))
}

func TestRun_NoData(t *testing.T) {
	withStore(t, storagetest.NewMemory().Put(config.DefaultBucket, "erp/550.csv", []byte(table550)))

	chartPath := filepath.Join(t.TempDir(), "chart.png")
	var out bytes.Buffer
	err := run(context.Background(), []string{"-product", "550", "-date", "2024-06-05", "-days", "2", "-out", chartPath}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "선택한 날짜에 대한 데이터가 없습니다.")
	assert.Contains(t, out.String(), "선택한 날짜 전후 2일 간의 데이터가 없습니다.")
	assert.NoFileExists(t, chartPath)
}

func TestRun_StorageFailure(t *testing.T) {
	withStore(t, storagetest.NewMemory().Fail(config.DefaultBucket, "erp/550.csv", http.StatusForbidden))

	err := run(context.Background(), []string{"-product", "550", "-date", "2024-03-06"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, "파일을 가져오지 못했습니다. HTTP 상태 코드: 403", err.Error())
}

func TestRun_InvalidFlags(t *testing.T) {
	withStore(t, storagetest.NewMemory())

	err := run(context.Background(), []string{"-date", "06/03/2024"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid -date")

	err = run(context.Background(), []string{"-product", "550", "extra"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unexpected arguments")
}

func TestParseFlags_Defaults(t *testing.T) {
	cfg := config.Default()
	opts, err := parseFlags(nil, cfg, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, cfg.Storage.ProductNames()[0], opts.product)
	assert.Equal(t, cfg.Report.WindowDays, opts.days)
	assert.Len(t, opts.date, len("2006-01-02"))
}
