//go:build integration

package driver_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcheck/internal/driver"
)

const translatorHTML = `<html><head><title>Fake Translator</title></head><body>
<div class="card"><div class="panel-title">Singlish</div><textarea id="in"></textarea></div>
<div class="card"><div class="panel-title">Sinhala</div><div id="out"></div></div>
<button>Clear</button><button>Copy</button>
<input id="ro" readonly value="fixed">
<script>
const input = document.getElementById('in');
const out = document.getElementById('out');
input.addEventListener('input', () => {
	const v = input.value;
	setTimeout(() => { out.textContent = v.toUpperCase(); }, 150);
});
document.querySelector('button').addEventListener('click', () => {
	input.value = '';
	out.textContent = '';
});
</script></body></html>`

func newRodDriver(t *testing.T) (*driver.RodDriver, string) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, translatorHTML)
	}))
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	d, err := driver.NewRodDriver(ctx, driver.RodOptions{Headless: true, NavigationTimeout: 10 * time.Second})
	require.NoError(t, err, "failed to start browser")
	t.Cleanup(func() { d.Close() })
	return d, ts.URL
}

func TestRodDriver_Integration(t *testing.T) {
	d, url := newRodDriver(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := d.NewSession(ctx)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Navigate(ctx, url))

	title, err := s.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Fake Translator", title)

	input, err := s.Locate(ctx, driver.Locator{CSS: "textarea"})
	require.NoError(t, err)
	editable, err := input.Editable(ctx)
	require.NoError(t, err)
	assert.True(t, editable)

	require.NoError(t, input.Fill(ctx, "mama"))
	value, err := input.Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mama", value)

	out, err := s.Locate(ctx, driver.Locator{XPath: "//div[@class='panel-title' and text()='Sinhala']/following-sibling::div[1]"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		text, err := out.Text(ctx)
		return err == nil && strings.TrimSpace(text) == "MAMA"
	}, 5*time.Second, 50*time.Millisecond)

	clearBtn, err := s.Locate(ctx, driver.Locator{CSS: "button", Text: "(?i)^clear$"})
	require.NoError(t, err)
	visible, err := clearBtn.Visible(ctx)
	require.NoError(t, err)
	assert.True(t, visible)
	require.NoError(t, clearBtn.Click(ctx))

	value, err = input.Value(ctx)
	require.NoError(t, err)
	assert.Empty(t, value)

	second, err := s.Locate(ctx, driver.Locator{CSS: "button", Nth: 1})
	require.NoError(t, err)
	text, err := second.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Copy", text)

	ro, err := s.Locate(ctx, driver.Locator{CSS: "#ro"})
	require.NoError(t, err)
	editable, err = ro.Editable(ctx)
	require.NoError(t, err)
	assert.False(t, editable)
}

func TestRodDriver_LocateMissing(t *testing.T) {
	d, url := newRodDriver(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := d.NewSession(ctx)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Navigate(ctx, url))

	lctx, lcancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer lcancel()
	_, err = s.Locate(lctx, driver.Locator{CSS: "#does-not-exist"})
	assert.ErrorIs(t, err, driver.ErrNotFound)
}

func TestRodDriver_SessionsAreIsolated(t *testing.T) {
	d, url := newRodDriver(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := d.NewSession(ctx)
	require.NoError(t, err)
	defer a.Close()
	b, err := d.NewSession(ctx)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Navigate(ctx, url))
	require.NoError(t, b.Navigate(ctx, url))

	inA, err := a.Locate(ctx, driver.Locator{CSS: "textarea"})
	require.NoError(t, err)
	require.NoError(t, inA.Fill(ctx, "only in a"))

	inB, err := b.Locate(ctx, driver.Locator{CSS: "textarea"})
	require.NoError(t, err)
	value, err := inB.Value(ctx)
	require.NoError(t, err)
	assert.Empty(t, value)
}
