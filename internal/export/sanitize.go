package export

import (
	"regexp"
	"strings"
)

// reservedRe matches path separators, characters reserved on common
// filesystems, and control characters.
var reservedRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFilename makes an object name safe to use as a single path
// element. Reserved characters become underscores; leading and trailing
// dots and spaces are stripped so names cannot escape the target
// directory or collide with special entries.
func SanitizeFilename(name string) string {
	name = reservedRe.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")
	if name == "" {
		return "_"
	}
	return name
}
