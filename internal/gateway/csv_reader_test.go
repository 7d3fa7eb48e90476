package gateway

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTable_CSV(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected [][]string
		wantErr  bool
	}{
		{
			name:     "header and rows",
			lines:    []string{"a,b,c", "1,2,3", "4,5,6"},
			expected: [][]string{{"a", "b", "c"}, {"1", "2", "3"}, {"4", "5", "6"}},
		},
		{
			name:     "ragged rows",
			lines:    []string{"a,b,c", "1,2", "4,5,6,7"},
			expected: [][]string{{"a", "b", "c"}, {"1", "2"}, {"4", "5", "6", "7"}},
		},
		{
			name:     "quoted commas",
			lines:    []string{"a,b", `"1,200",x`},
			expected: [][]string{{"a", "b"}, {"1,200", "x"}},
		},
		{
			name:    "empty file",
			lines:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTempCSVFromLines(t, tt.lines, "table.csv")

			got, err := readTable(context.Background(), path, "")
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReadTable_FileErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("file not found", func(t *testing.T) {
		_, err := readTable(ctx, "nonexistent_file.csv", "")
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := readTable(ctx, "rules.pdf", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported file type")
	})

	t.Run("cancelled context", func(t *testing.T) {
		path := createTempCSV(t, [][]string{{"a"}, {"1"}})
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := readTable(cctx, path, "")
		assert.Error(t, err)
	})
}

// Test helpers

func createTempCSV(t testing.TB, data [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	writer := csv.NewWriter(file)
	require.NoError(t, writer.WriteAll(data))
	return path
}

func createTempCSVFromLines(t testing.TB, lines []string, filename string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)

	var content string
	for i, line := range lines {
		if i > 0 {
			content += "\n"
		}
		content += line
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// Benchmark tests

func BenchmarkGetTransactions(b *testing.B) {
	data := [][]string{TransactionColumns}
	for i := 0; i < 1000; i++ {
		data = append(data, []string{
			"2025-05-10", "gala 500g", "Gala Apple", "鲜果",
			"C" + strconv.Itoa(i%50), "S1", "A" + strconv.Itoa(i%7), "3",
		})
	}
	path := createTempCSV(b, data)

	repo := NewTableRepository(DefaultReaderOptions())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := repo.GetTransactions(ctx, path); err != nil {
			b.Fatalf("Error in benchmark: %v", err)
		}
	}
}
