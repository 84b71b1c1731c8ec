package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantHeader []string
		wantRows   [][]string
		wantErr    bool
	}{
		{
			name:       "header only",
			body:       "a,b,c\n",
			wantHeader: []string{"a", "b", "c"},
			wantRows:   [][]string{},
		},
		{
			name:     "empty body",
			body:     "",
			wantRows: [][]string{},
		},
		{
			name:       "quoted multiline cell and ragged rows",
			body:       "a,b\n1,\"line one\nline two\"\n\n2\n",
			wantHeader: []string{"a", "b"},
			wantRows:   [][]string{{"1", "line one\nline two"}, {"2"}},
		},
		{
			name:       "byte order mark",
			body:       "\xef\xbb\xbfid,name\n1,周瑜芳\n",
			wantHeader: []string{"id", "name"},
			wantRows:   [][]string{{"1", "周瑜芳"}},
		},
		{
			name:    "bare quote",
			body:    "a,b\n1,x\"y\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, rows, err := parseCSV([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, header)
			assert.Equal(t, tt.wantRows, rows)
		})
	}
}

func TestSheetRecords(t *testing.T) {
	sheet := &Sheet{
		Header: []string{"姓名", "職稱", "姓名"},
		Rows: [][]string{
			{"周瑜芳", "X1", "ignored"},
			{"林欣毅"},
		},
	}

	assert.Equal(t, []map[string]string{
		{"姓名": "周瑜芳", "職稱": "X1"},
		{"姓名": "林欣毅", "職稱": ""},
	}, sheet.Records())
}
