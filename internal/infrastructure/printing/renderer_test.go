package printing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	t.Run("accepts a complete request", func(t *testing.T) {
		err := validateRequest(&RenderRequest{
			HTML:      "<table><tr><td>Dairy</td></tr></table>",
			PaperSize: PaperSizeLetter,
		})
		assert.Nil(t, err)
	})

	t.Run("rejects nil request", func(t *testing.T) {
		err := validateRequest(nil)
		require.NotNil(t, err)
		assert.Equal(t, ErrCodeInvalidHTML, err.Code)
	})

	t.Run("rejects blank sheet HTML", func(t *testing.T) {
		err := validateRequest(&RenderRequest{HTML: "   \n", PaperSize: PaperSizeLetter})
		require.NotNil(t, err)
		assert.Equal(t, ErrCodeInvalidHTML, err.Code)
	})

	t.Run("rejects unknown paper size", func(t *testing.T) {
		err := validateRequest(&RenderRequest{HTML: "<p>ok</p>", PaperSize: PaperSize("tabloid")})
		require.NotNil(t, err)
		assert.Equal(t, ErrCodeInvalidPaperSize, err.Code)
	})
}

func TestRenderTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, renderTimeout(&RenderRequest{Timeout: 5 * time.Second}, time.Minute))
	assert.Equal(t, time.Minute, renderTimeout(&RenderRequest{}, time.Minute))
}

func TestTimeoutError(t *testing.T) {
	t.Run("deadline exceeded", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		err := timeoutError(ctx, 30*time.Second, assert.AnError)
		require.NotNil(t, err)
		assert.Equal(t, ErrCodeRenderTimeout, err.Code)
		assert.Contains(t, err.Message, "30s")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := timeoutError(ctx, time.Second, assert.AnError)
		require.NotNil(t, err)
		assert.Equal(t, ErrCodeRenderTimeout, err.Code)
	})

	t.Run("backend failure is not a timeout", func(t *testing.T) {
		assert.Nil(t, timeoutError(context.Background(), time.Second, assert.AnError))
	})
}

func TestWrapDocument(t *testing.T) {
	t.Run("full documents pass through", func(t *testing.T) {
		html := "<!DOCTYPE html><html><body>sheet</body></html>"
		assert.Equal(t, html, wrapDocument(&RenderRequest{HTML: html}))
	})

	t.Run("fragments get a document shell", func(t *testing.T) {
		got := wrapDocument(&RenderRequest{HTML: "<p>tote labels</p>", Title: "Tote Labels"})
		assert.Contains(t, got, "<!DOCTYPE html>")
		assert.Contains(t, got, "<title>Tote Labels</title>")
		assert.Contains(t, got, "<p>tote labels</p>")
	})
}
