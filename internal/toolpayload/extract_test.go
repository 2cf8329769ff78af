package toolpayload

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "bare object",
			text:   `{"type":"venue_grid","total":3}`,
			want:   `{"type":"venue_grid","total":3}`,
			wantOK: true,
		},
		{
			name:   "leading and trailing noise",
			text:   "Search done.\nResult: {\"a\": 1, \"b\": {\"c\": [1, 2, {\"d\": null}]}} -- end of output",
			want:   `{"a": 1, "b": {"c": [1, 2, {"d": null}]}}`,
			wantOK: true,
		},
		{
			name:   "escaped quote inside string does not toggle string state",
			text:   `note {"name": "the \"Blue {Room\" club", "n": 2} tail }`,
			want:   `{"name": "the \"Blue {Room\" club", "n": 2}`,
			wantOK: true,
		},
		{
			name:   "escaped backslash before closing quote",
			text:   `{"path": "C:\\", "ok": true}`,
			want:   `{"path": "C:\\", "ok": true}`,
			wantOK: true,
		},
		{
			name:   "first of two objects",
			text:   `{"first": 1} and {"second": 2}`,
			want:   `{"first": 1}`,
			wantOK: true,
		},
		{
			name:   "no brace",
			text:   "no structured output here",
			wantOK: false,
		},
		{
			name:   "unterminated object",
			text:   `{"venues": [{"id": 1}, {"id": 2`,
			wantOK: false,
		},
		{
			name:   "balanced but not json",
			text:   `{not json at all}`,
			wantOK: false,
		},
		{
			name:   "empty input",
			text:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.text)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, got)
				return
			}

			var want Object
			require.NoError(t, sonic.UnmarshalString(tt.want, &want))
			assert.Equal(t, want, got)
		})
	}
}

func TestExtract_EmbeddedObjectsMatchDirectParse(t *testing.T) {
	objects := []string{
		`{}`,
		`{"k": "v"}`,
		`{"unicode": "città — caffè", "n": -1.5e3}`,
		`{"nested": {"deep": {"deeper": {"list": [{}, {"x": "}"}]}}}}`,
		`{"quote": "\"", "brace": "{", "close": "}"}`,
	}
	noise := []struct{ prefix, suffix string }{
		{"", ""},
		{"prefix text ", " suffix text"},
		{"line1\nline2: ", "\n\ntrailing } brace"},
		{"[log] ", " }}}"},
	}

	for _, obj := range objects {
		var want Object
		require.NoError(t, sonic.UnmarshalString(obj, &want))

		for _, n := range noise {
			got, ok := Extract(n.prefix + obj + n.suffix)
			require.True(t, ok, "object %s with noise %q", obj, n.prefix)
			assert.Equal(t, want, got)
		}
	}
}
