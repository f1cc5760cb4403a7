package ui

// Outbound is one message the dialogue engine asks the transport to deliver.
// Keyboard rows hold button labels; a nil keyboard keeps the previous one.
type Outbound struct {
	Text      string
	PhotoURLs []string
	Keyboard  [][]string
}

func Text(text string) Outbound {
	return Outbound{Text: text}
}

func WithKeyboard(text string, keyboard [][]string) Outbound {
	return Outbound{Text: text, Keyboard: keyboard}
}
