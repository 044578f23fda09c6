package results

import (
	"fmt"
	"strconv"
	"strings"
)

// Key renders the display key of a leaderboard or column. The id keeps
// same-titled leaderboards apart.
func Key(title string, id int64) string {
	return fmt.Sprintf("%s(%d)", title, id)
}

// ParseKey splits a key produced by Key. Titles may contain parentheses
// themselves, so only the last "(" separates the id.
func ParseKey(key string) (title string, id int64, ok bool) {
	if !strings.HasSuffix(key, ")") {
		return "", 0, false
	}
	i := strings.LastIndex(key, "(")
	if i < 0 {
		return "", 0, false
	}
	id, err := strconv.ParseInt(key[i+1:len(key)-1], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return key[:i], id, true
}
