package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWindow(t *testing.T) {
	t.Run("explicit range wins over date", func(t *testing.T) {
		w, err := resolveWindow("2026-09-01", "2026-08-28", "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, "2026-08-28", w.StartString())
		assert.Equal(t, "2026-08-30", w.EndString())
		assert.Equal(t, "2026-08-30", w.DateString())
	})

	t.Run("date resolves to the delivery day", func(t *testing.T) {
		// 2026-08-31 is a Monday; the next delivery is Tuesday the 1st.
		w, err := resolveWindow("2026-08-31", "", "")
		require.NoError(t, err)
		assert.Equal(t, "2026-09-01", w.DateString())
	})

	t.Run("defaults to the next window from today", func(t *testing.T) {
		w, err := resolveWindow("", "", "")
		require.NoError(t, err)
		day := w.Date.Weekday()
		assert.True(t, day == time.Tuesday || day == time.Saturday)
	})

	t.Run("rejects a lone start or end", func(t *testing.T) {
		_, err := resolveWindow("", "2026-08-28", "")
		require.Error(t, err)
		_, err = resolveWindow("", "", "2026-08-30")
		require.Error(t, err)
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		_, err := resolveWindow("", "2026-08-30", "2026-08-28")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "before")
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		_, err := resolveWindow("next tuesday", "", "")
		require.Error(t, err)
		_, err = resolveWindow("", "08/28/2026", "2026-08-30")
		require.Error(t, err)
	})
}
