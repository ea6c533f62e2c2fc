package util

import (
	"context"
	"errors"
	"testing"

	"github.com/makkenzo/content-cms-api/internal/ierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSlug(t *testing.T) {
	cases := map[string]string{
		"My Blog!":             "my-blog",
		"  Hello   World  ":    "hello-world",
		"already-a-slug":       "already-a-slug",
		"double--dash":         "double-dash",
		"Tom & Jerry":          "tom-jerry",
		"snake_case Title":     "snake_case-title",
		"Product #42 (Deluxe)": "product-42-deluxe",
		"!!!":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeSlug(in), "input %q", in)
	}
}

func taken(slugs ...string) SlugExistsFunc {
	set := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		set[s] = true
	}
	return func(_ context.Context, candidate string) (bool, error) {
		return set[candidate], nil
	}
}

func TestAllocateSlug(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return normalized base when free", func(t *testing.T) {
		got, err := AllocateSlug(ctx, "My Blog!", taken())
		require.NoError(t, err)
		assert.Equal(t, "my-blog", got)
	})

	t.Run("Should append first free suffix", func(t *testing.T) {
		got, err := AllocateSlug(ctx, "My Blog!", taken("my-blog"))
		require.NoError(t, err)
		assert.Equal(t, "my-blog-1", got)

		got, err = AllocateSlug(ctx, "My Blog!", taken("my-blog", "my-blog-1"))
		require.NoError(t, err)
		assert.Equal(t, "my-blog-2", got)
	})

	t.Run("Should give up after bounded attempts", func(t *testing.T) {
		calls := 0
		last := ""
		always := func(_ context.Context, candidate string) (bool, error) {
			calls++
			last = candidate
			return true, nil
		}
		_, err := AllocateSlug(ctx, "products", always)
		require.Error(t, err)
		assert.ErrorIs(t, err, ierr.ErrSlugExhausted)
		assert.ErrorIs(t, err, ierr.ErrConflict)
		assert.Equal(t, MaxSlugAttempts, calls)
		assert.Equal(t, "products-999", last)
	})

	t.Run("Should reject slug without word characters", func(t *testing.T) {
		_, err := AllocateSlug(ctx, "?!", taken())
		assert.ErrorIs(t, err, ierr.ErrValidation)
	})

	t.Run("Should propagate store errors", func(t *testing.T) {
		boom := errors.New("connection reset")
		_, err := AllocateSlug(ctx, "x", func(context.Context, string) (bool, error) { return false, boom })
		assert.ErrorIs(t, err, boom)
	})
}
