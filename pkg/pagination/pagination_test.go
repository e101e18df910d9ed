package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	b := DefaultBounds()

	tests := []struct {
		name      string
		limit     string
		offset    string
		want      Params
		wantError bool
	}{
		{name: "defaults", want: Params{Limit: DefaultLimit, Offset: 0}},
		{name: "explicit", limit: "5", offset: "10", want: Params{Limit: 5, Offset: 10}},
		{name: "capped", limit: "1000", want: Params{Limit: MaxLimit}},
		{name: "zero limit", limit: "0", wantError: true},
		{name: "negative offset", offset: "-1", wantError: true},
		{name: "not a number", limit: "ten", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Parse(tt.limit, tt.offset)
			if tt.wantError {
				require.ErrorIs(t, err, ErrInvalidParams)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCustomBounds(t *testing.T) {
	b := Bounds{DefaultLimit: 50, MaxLimit: 10}

	got, err := b.Parse("", "")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Limit)
}

func TestNewPage(t *testing.T) {
	p := NewPage(5, []string{"a", "b"}, Params{Limit: 2, Offset: 0})
	require.NotNil(t, p.NextCursor)
	assert.Equal(t, 2, *p.NextCursor)

	p = NewPage(5, []string{"e"}, Params{Limit: 2, Offset: 4})
	assert.Nil(t, p.NextCursor)

	empty := NewPage[string](0, nil, Params{Limit: 2})
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
	assert.Nil(t, empty.NextCursor)
}

func TestPagesReconstructCollection(t *testing.T) {
	all := []int{1, 2, 3, 4, 5, 6, 7}
	var (
		seen   []int
		offset = 0
	)
	for {
		params := Params{Limit: 3, Offset: offset}
		end := offset + params.Limit
		if end > len(all) {
			end = len(all)
		}
		page := NewPage(int64(len(all)), all[offset:end], params)
		assert.LessOrEqual(t, len(page.Items), params.Limit)
		seen = append(seen, page.Items...)
		if page.NextCursor == nil {
			break
		}
		offset = *page.NextCursor
	}
	assert.Equal(t, all, seen)
}
