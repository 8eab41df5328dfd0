package downloader

import (
	"math"
	"sort"

	"github.com/denisAlshanov/ytgrab/internal/models"
	"github.com/denisAlshanov/ytgrab/internal/services/youtube"
)

// SelectFormats turns the raw encoding list into the options offered to clients.
//
// Only entries carrying both tracks and a known length survive. They are stable-sorted by the
// integer prefix of their label, highest first, and the first entry per label wins. Labels without
// a numeric prefix sort as 0, so "hd720" does not rank as 720.
func SelectFormats(raw []youtube.RawFormat) []models.FormatOption {
	options := make([]models.FormatOption, 0, len(raw))
	for _, format := range raw {
		if !format.HasVideo || !format.HasAudio || format.ContentLength <= 0 {
			continue
		}
		options = append(options, models.FormatOption{
			Quality:       qualityLabel(format),
			MimeType:      format.MimeType,
			ContentLength: format.ContentLength,
			Itag:          format.Itag,
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		return leadingInt(options[i].Quality) > leadingInt(options[j].Quality)
	})

	seen := make(map[string]struct{}, len(options))
	selected := make([]models.FormatOption, 0, len(options))
	for _, option := range options {
		if _, dup := seen[option.Quality]; dup {
			continue
		}
		seen[option.Quality] = struct{}{}
		selected = append(selected, option)
	}

	return selected
}

func qualityLabel(format youtube.RawFormat) string {
	if format.QualityLabel != "" {
		return format.QualityLabel
	}
	return format.Quality
}

// leadingInt reads an optionally signed run of digits after leading whitespace, the way
// "1080p60" reads as 1080. Anything else is 0.
func leadingInt(s string) int64 {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}

	negative := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		negative = s[i] == '-'
		i++
	}

	var n int64
	digits := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n > (math.MaxInt64-9)/10 {
			n = math.MaxInt64
			continue
		}
		n = n*10 + int64(s[i]-'0')
		digits++
	}

	if digits == 0 {
		return 0
	}
	if negative {
		return -n
	}
	return n
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
