package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trafficlens/trafficlens/internal/logstore"
)

const socialLine = `date=2024-03-01 time=09:15:00 logid="0211008192" srcip=10.0.0.5 srcname="jkowalski-pc" srcport=51234 dstip=157.240.1.35 dstport=443 proto=6 action="accept" policyname="LAN-WAN" service="HTTPS" app="Facebook" appid=15832 appcat="Social.Media" apprisk="medium" duration=3600000 sentbyte=120000 rcvdbyte=4500000 sentpkt=800 rcvdpkt=3200 osname="Windows" mastersrcmac=aa:bb:cc:dd:ee:ff`

func TestParseLine(t *testing.T) {
	rec, ok := ParseLine(socialLine)
	require.True(t, ok)

	assert.Equal(t, "2024-03-01", rec.Date)
	assert.Equal(t, "09:15:00", rec.Time)
	assert.Equal(t, "jkowalski-pc", rec.SrcName)
	assert.Equal(t, "10.0.0.5", rec.SrcIP)
	assert.Equal(t, 51234, rec.SrcPort)
	assert.Equal(t, "Facebook", rec.App)
	assert.Equal(t, "Social.Media", rec.AppCat)
	assert.Equal(t, int64(3_600_000), rec.Duration)
	assert.Equal(t, int64(4_500_000), rec.RcvdByte)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", rec.MasterSrcMac)
}

func TestParseLineQuotedValuesStripped(t *testing.T) {
	rec, ok := ParseLine(`appcat="Game" app="Counter Strike" srcname="pc-01" duration=10`)
	require.True(t, ok)
	assert.Equal(t, "Game", rec.AppCat)
	assert.Equal(t, "pc-01", rec.SrcName)
}

func TestParseLineCategoryFilter(t *testing.T) {
	for _, cat := range []string{"Social.Media", "Video.Audio", "Game", "Adult"} {
		_, ok := ParseLine(`appcat="` + cat + `" app="X"`)
		assert.True(t, ok, cat)
	}

	_, ok := ParseLine(`appcat="Business" app="Salesforce" duration=100`)
	assert.False(t, ok)

	// No appcat at all.
	_, ok = ParseLine(`srcip=10.0.0.1 dstip=10.0.0.2 action="accept"`)
	assert.False(t, ok)
}

func TestParseLineBadNumbers(t *testing.T) {
	rec, ok := ParseLine(`appcat="Game" srcport=N/A duration=abc sentbyte=500`)
	require.True(t, ok)
	assert.Zero(t, rec.SrcPort)
	assert.Zero(t, rec.Duration)
	assert.Equal(t, int64(500), rec.SentByte)
}

func TestLoadFile(t *testing.T) {
	store, err := logstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate())

	lines := []string{
		socialLine,
		`date=2024-03-01 time=10:00:00 srcname="anowak-pc" app="YouTube" appcat="Video.Audio" duration=1800000 rcvdbyte=900000000`,
		`date=2024-03-01 time=10:05:00 srcname="anowak-pc" app="Teams" appcat="Collaboration" duration=600000`,
		"",
	}
	path := filepath.Join(t.TempDir(), "traffic.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := NewLoader(store, logger)
	res, err := loader.LoadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, res.LinesRead)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Skipped)

	n, err := store.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestLoadFileMissing(t *testing.T) {
	store, err := logstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	loader := NewLoader(store, nil)
	_, err = loader.LoadFile(context.Background(), "/nonexistent/file.log")
	assert.Error(t, err)
}
