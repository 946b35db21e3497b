package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBannerCompactIsOneLine(t *testing.T) {
	var buf bytes.Buffer
	Banner(&buf, BannerInfo{
		Version:    "0.1.0",
		Addr:       "0.0.0.0:8000",
		Workers:    4,
		Allocator:  "jemalloc",
		Production: true,
	})

	out := buf.String()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
	assert.Contains(t, out, "0.0.0.0:8000")
	assert.Contains(t, out, "jemalloc")
}

func TestBannerVerboseIsBoxDrawnAndMentionsFields(t *testing.T) {
	var buf bytes.Buffer
	Banner(&buf, BannerInfo{
		Version:      "0.1.0",
		Addr:         "127.0.0.1:8000",
		Workers:      2,
		Allocator:    "malloc",
		CacheL1:      true,
		CacheL2:      true,
		StaticMounts: 3,
		Production:   false,
	})

	out := buf.String()
	assert.Contains(t, out, "╔")
	assert.Contains(t, out, "╚")
	assert.Contains(t, out, "127.0.0.1:8000")
	assert.Contains(t, out, "L1+L2")
	assert.Contains(t, out, "3")
}

func TestBannerVerboseColorsWrapLinesInEscapes(t *testing.T) {
	var buf bytes.Buffer
	Banner(&buf, BannerInfo{Version: "0.1.0", Addr: "x", Colors: true})
	assert.Contains(t, buf.String(), "\033[")
}

func TestVisibleLenIgnoresAnsiEscapes(t *testing.T) {
	plain := "hello"
	colored := ansiGreen + plain + ansiReset
	assert.Equal(t, len(plain), visibleLen(colored))
}
