package utils

import "strings"

// illegalPathChars strips the characters Windows and POSIX file systems refuse in a file name.
var illegalPathChars = strings.NewReplacer(
	"<", "",
	">", "",
	":", "",
	"\"", "",
	"/", "",
	"\\", "",
	"|", "",
	"?", "",
	"*", "",
)

// SanitizeTitle removes < > : " / \ | ? * from a video title. Everything else is kept as is.
func SanitizeTitle(title string) string {
	return illegalPathChars.Replace(title)
}

// DownloadFilename is the attachment name a title is saved under.
func DownloadFilename(title, extension string) string {
	name := SanitizeTitle(title)
	if extension == "" {
		return name
	}
	return name + "." + strings.TrimPrefix(extension, ".")
}
