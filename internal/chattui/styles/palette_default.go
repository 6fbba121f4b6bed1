package styles

// DefaultTheme is the baseline dark palette.
var DefaultTheme = Theme{
	Name:          "default",
	SenderPalette: append([]string(nil), SenderColorPalette...),
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Message: MessageColors{
		Own:   "81",
		Other: "147",
		Bot:   "214",
	},
	Status: StatusColors{
		OK:    "41",
		Warn:  "220",
		Error: "203",
	},
	Chrome: ChromeColors{
		Title:        "111",
		Instructions: "246",
		Footer:       "110",
		FocusedInput: "75",
		BlurredInput: "240",
	},
}
