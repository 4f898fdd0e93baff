package labels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/polysplit/internal/config"
)

// Normalize returns the label segment to use in the filename of a 1-based
// channel. Under the default style raw is returned as is. Under the smart
// style labels that only repeat the channel number ("3", "03", "CH03",
// "03_03") become empty, and a leading "<NN>_" prefix is stripped once.
// Normalize(c, Normalize(c, x)) == Normalize(c, x) for every x.
func Normalize(channel int, raw string, style config.NameStyle, padWidth int) string {
	if style != config.NameSmart {
		return raw
	}
	if redundant(channel, raw, padWidth) {
		return ""
	}
	rest, ok := stripIndexPrefix(channel, raw, padWidth)
	if !ok {
		return raw
	}
	if redundant(channel, rest, padWidth) {
		return ""
	}
	// A second strippable prefix is kept verbatim so repeated
	// normalization never removes more than the first pass.
	if _, again := stripIndexPrefix(channel, rest, padWidth); again {
		return raw
	}
	return rest
}

// redundant reports whether label carries no information beyond the
// channel number.
func redundant(channel int, label string, padWidth int) bool {
	if label == "" || numericEqual(label, channel) {
		return true
	}
	padded := pad(channel, padWidth)
	return label == "CH"+padded || label == "CH_"+padded
}

// stripIndexPrefix removes a leading "<index>_" where index is the padded
// or plain channel number.
func stripIndexPrefix(channel int, label string, padWidth int) (string, bool) {
	for _, p := range indexForms(channel, padWidth) {
		if strings.HasPrefix(label, p+"_") {
			return label[len(p)+1:], true
		}
	}
	return label, false
}

func indexForms(channel int, padWidth int) []string {
	padded := pad(channel, padWidth)
	plain := strconv.Itoa(channel)
	if padded == plain {
		return []string{padded}
	}
	return []string{padded, plain}
}

// numericEqual reports whether s is all digits and equals n.
func numericEqual(s string, n int) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	v, err := strconv.Atoi(s)
	return err == nil && v == n
}

func pad(channel, width int) string {
	return fmt.Sprintf("%0*d", width, channel)
}
