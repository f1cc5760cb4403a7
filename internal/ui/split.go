package ui

// MaxMessageSize is the transport limit for one outbound text message.
const MaxMessageSize = 4096

var breakRunes = []rune{'\n', ' ', ','}

// SplitMessage splits text into chunks of at most maxSize runes. Within each
// window it prefers to break after the last line break, space or comma; when
// the window contains none it breaks at the hard limit. Concatenating the
// chunks reproduces the input exactly, and a chunk never ends mid-codepoint
// because splitting is done on runes.
func SplitMessage(s string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = MaxMessageSize
	}

	runes := []rune(s)
	result := make([]string, 0, 1)
	start := 0
	for {
		rest := runes[start:]
		if len(rest) < maxSize {
			if len(rest) > 0 || len(result) == 0 {
				result = append(result, string(rest))
			}
			break
		}

		window := rest[:maxSize]
		pos := -1
		for _, br := range breakRunes {
			pos = lastIndexRune(window, br)
			if pos > -1 {
				break
			}
		}
		if pos == -1 {
			result = append(result, string(window))
			start += maxSize
		} else {
			result = append(result, string(window[:pos+1]))
			start += pos + 1
		}
	}
	return result
}

func lastIndexRune(window []rune, r rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == r {
			return i
		}
	}
	return -1
}
