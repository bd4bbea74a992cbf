package query

import (
	"testing"

	"github.com/asaidimu/go-loadoptions/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixFilterAndSearch(t *testing.T) {
	fix := FixFilterAndSearch(schema.TypeSchema{"int": schema.KindInt})

	t.Run("fixes filter int", func(t *testing.T) {
		out, err := fix(map[string]any{
			"filter": []any{[]any{"int", "=", "34"}},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"filter": []any{[]any{"int", "=", int64(34)}},
		}, out)
	})

	t.Run("fixes search int", func(t *testing.T) {
		out, err := fix(map[string]any{
			"searchExpr":      "int",
			"searchOperation": "=",
			"searchValue":     "34",
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"searchExpr":      "int",
			"searchOperation": "=",
			"searchValue":     int64(34),
		}, out)
	})

	t.Run("filter given as JSON string", func(t *testing.T) {
		out, err := fix(map[string]any{"filter": `[["int","=","34"]]`})
		require.NoError(t, err)
		assert.Equal(t, []any{[]any{"int", "=", int64(34)}}, out["filter"])
	})

	t.Run("incomplete search is left alone", func(t *testing.T) {
		in := map[string]any{"searchExpr": "int", "searchValue": "34", "take": 10}
		out, err := fix(in)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("input is not modified", func(t *testing.T) {
		in := map[string]any{"filter": []any{"int", "=", "34"}}
		_, err := fix(in)
		require.NoError(t, err)
		assert.Equal(t, []any{"int", "=", "34"}, in["filter"])
	})

	t.Run("malformed filter", func(t *testing.T) {
		_, err := fix(map[string]any{"filter": "[["})
		assert.ErrorIs(t, err, ErrMalformedJSON)
	})

	t.Run("nil map", func(t *testing.T) {
		out, err := fix(nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
