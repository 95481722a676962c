package aggregate

import "strings"

// IsFastball reports whether category names a fastball.
func (c *Calculator) IsFastball(category string) bool {
	s := strings.ToLower(strings.TrimSpace(category))
	for _, k := range c.fastball {
		if strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
