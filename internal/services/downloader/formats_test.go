package downloader

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/denisAlshanov/ytgrab/internal/models"
	"github.com/denisAlshanov/ytgrab/internal/services/youtube"
)

func combined(itag int, label, mime string, length int64) youtube.RawFormat {
	return youtube.RawFormat{
		Itag:          itag,
		QualityLabel:  label,
		MimeType:      mime,
		ContentLength: length,
		HasVideo:      true,
		HasAudio:      true,
	}
}

func TestSelectFormatsFiltersIncompleteEntries(t *testing.T) {
	raw := []youtube.RawFormat{
		combined(22, "720p", "video/mp4", 2048),
		{Itag: 137, QualityLabel: "1080p", MimeType: "video/mp4", ContentLength: 4096, HasVideo: true},
		{Itag: 140, Quality: "tiny", MimeType: "audio/mp4", ContentLength: 512, HasAudio: true},
		combined(18, "360p", "video/mp4", 0),
		combined(43, "480p", "video/webm", -1),
	}

	got := SelectFormats(raw)
	want := []models.FormatOption{
		{Quality: "720p", MimeType: "video/mp4", ContentLength: 2048, Itag: 22},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestSelectFormatsSortsAndDeduplicates(t *testing.T) {
	raw := []youtube.RawFormat{
		combined(18, "360p", "video/mp4", 100),
		combined(37, "1080p", "video/mp4", 900),
		combined(22, "720p", "video/mp4", 500),
		combined(46, "1080p", "video/webm", 800),
		combined(43, "360p", "video/webm", 90),
	}

	got := SelectFormats(raw)
	want := []models.FormatOption{
		{Quality: "1080p", MimeType: "video/mp4", ContentLength: 900, Itag: 37},
		{Quality: "720p", MimeType: "video/mp4", ContentLength: 500, Itag: 22},
		{Quality: "360p", MimeType: "video/mp4", ContentLength: 100, Itag: 18},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestSelectFormatsEarlierEntryWinsTie(t *testing.T) {
	raw := []youtube.RawFormat{
		combined(1, "720p", "video/webm", 10),
		combined(2, "720p", "video/mp4", 20),
	}

	got := SelectFormats(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].MimeType != "video/webm" || got[0].Itag != 1 {
		t.Errorf("expected the first raw entry to survive, got %+v", got[0])
	}
}

func TestSelectFormatsNonNumericLabels(t *testing.T) {
	// Falls back to the platform quality name, which has no numeric prefix and sorts as 0.
	raw := []youtube.RawFormat{
		{Itag: 5, Quality: "hd720", MimeType: "video/mp4", ContentLength: 10, HasVideo: true, HasAudio: true},
		combined(18, "360p", "video/mp4", 20),
		combined(6, "medium", "video/mp4", 30),
		combined(22, "720p60", "video/mp4", 40),
	}

	got := SelectFormats(raw)
	labels := make([]string, len(got))
	for i, f := range got {
		labels[i] = f.Quality
	}
	want := []string{"720p60", "360p", "hd720", "medium"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("expected %v, got %v", want, labels)
	}
}

func TestSelectFormatsIsRepeatable(t *testing.T) {
	raw := []youtube.RawFormat{
		combined(37, "1080p", "video/mp4", 900),
		combined(46, "1080p", "video/webm", 800),
		combined(22, "720p", "video/mp4", 500),
	}

	first, err := json.Marshal(SelectFormats(raw))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(SelectFormats(raw))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("expected identical output, got %s and %s", first, second)
	}
}

func TestSelectFormatsEmpty(t *testing.T) {
	got := SelectFormats(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestLeadingInt(t *testing.T) {
	testCases := []struct {
		in       string
		expected int64
	}{
		{"1080p", 1080},
		{"720p60", 720},
		{"  144p", 144},
		{"-5x", -5},
		{"+48", 48},
		{"hd720", 0},
		{"", 0},
		{"-", 0},
		{"99999999999999999999999p", 9223372036854775807},
	}

	for _, tc := range testCases {
		if got := leadingInt(tc.in); got != tc.expected {
			t.Errorf("leadingInt(%q) = %d, expected %d", tc.in, got, tc.expected)
		}
	}
}
