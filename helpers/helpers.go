package helpers

import (
	"strings"
	"time"

	"github.com/hako/durafmt"
)

func AppendSlashUrl(url string) string {
	if url == "" {
		return "/"
	}
	if len(url) > 0 && url[len(url)-1:] != "/" {
		return url + "/"
	}
	return url
}

func MakeUrlWithPort(url string, port string) string {
	if port == "" {
		return AppendSlashUrl(url)
	}
	return AppendSlashUrl(url + ":" + port)
}

// CleanFileName strips characters that are unsafe in file names so a prompt
// can be used as part of an artifact name.
func CleanFileName(fileName string) string {
	if len(fileName) > 220 {
		fileName = fileName[:220]
	}

	for _, bad := range []string{" ", "/", "\\", ":", "*", "?", "\"", "<", ">", "|", "."} {
		fileName = strings.ReplaceAll(fileName, bad, "-")
	}

	fileName = strings.Trim(fileName, "-")
	for strings.Contains(fileName, "--") {
		fileName = strings.ReplaceAll(fileName, "--", "-")
	}

	return strings.ToLower(fileName)
}

// Ago renders a duration since t like "3 minutes 12 seconds ago".
func Ago(t time.Time) string {
	d := time.Since(t)
	if d < time.Second {
		return "just now"
	}
	return durafmt.Parse(d).LimitFirstN(2).String() + " ago"
}
