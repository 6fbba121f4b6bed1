package styles

// HighContrastTheme favors legibility on low-quality terminals.
var HighContrastTheme = Theme{
	Name: "high-contrast",
	Base: BaseColors{
		Background: "16",
		Foreground: "231",
		Muted:      "250",
		Accent:     "51",
		Border:     "231",
	},
	Message: MessageColors{
		Own:   "87",
		Other: "225",
		Bot:   "229",
	},
	Status: StatusColors{
		OK:    "46",
		Warn:  "226",
		Error: "196",
	},
	Chrome: ChromeColors{
		Title:        "117",
		Instructions: "252",
		Footer:       "159",
		FocusedInput: "51",
		BlurredInput: "250",
	},
}
