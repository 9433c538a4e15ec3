package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(mode OutputMode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"text", ModeText},
		{"markdown", ModeMarkdown},
		{"json", ModeJSON},
		{"yaml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{"auto on terminal", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeMarkdown},
		{"explicit text piped", ModeText, false, ModeText},
		{"explicit json on terminal", ModeJSON, true, ModeJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_NonFileIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_StatusLines(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeMarkdown, false)

	r.Success("wrote 2 tables")
	r.Warning("stale rule")
	r.Error("boom")

	assert.Empty(t, out.String())
	assert.Equal(t, "✓ wrote 2 tables\n! stale rule\n✗ boom\n", errOut.String())
}

func TestRenderer_JSONSuppressesStatus(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeJSON, false)

	r.Success("done")
	r.Muted("detail")
	require.NoError(t, r.JSON(map[string]int{"tables": 2}))

	assert.Empty(t, errOut.String())
	assert.Equal(t, "{\n  \"tables\": 2\n}\n", out.String())
}

func TestRenderer_Header(t *testing.T) {
	r, out, _ := newTestRenderer(ModeMarkdown, false)
	r.Header("Columns")
	assert.Equal(t, "## Columns\n\n", out.String())
}

func TestRenderer_Table(t *testing.T) {
	rows := [][]string{
		{"orders", "order_id", "identifier"},
		{"orders", "customer_sk", "identifier,reference"},
	}

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeMarkdown, false)
		r.Table([]string{"Table", "Column", "Categories"}, rows)

		s := out.String()
		assert.True(t, strings.HasPrefix(s, "|"))
		assert.Contains(t, s, "customer_sk")
		assert.Contains(t, s, "identifier,reference")
		assert.NotContains(t, s, "\x1b[")
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText, false)
		r.Table([]string{"Table", "Column", "Categories"}, rows)

		s := out.String()
		assert.Contains(t, s, "┌")
		assert.Contains(t, s, "order_id")
	})
}
