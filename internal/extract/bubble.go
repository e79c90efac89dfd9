package extract

import (
	"regexp"
	"strconv"
)

var bubbleClass = regexp.MustCompile(`\bbubble_(\d+)\b`)

// BubbleRating decodes the bubble_NN class convention where NN is the
// rating times ten (bubble_45 is 4.5). The bool distinguishes "class
// absent" from a genuine zero rating: bubble_0 is a found zero.
func BubbleRating(class string) (float64, bool) {
	m := bubbleClass.FindStringSubmatch(class)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return float64(n) / 10, true
}
