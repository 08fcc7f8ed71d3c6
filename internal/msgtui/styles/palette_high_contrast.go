package styles

// HighContrastTheme is a high-visibility palette for low-color terminals.
var HighContrastTheme = Theme{
	Name:        "high-contrast",
	UserPalette: []string{"21", "27", "33", "39", "45", "51", "93", "129"},
	Base: BaseColors{
		Background: "16",
		Foreground: "231",
		Muted:      "250",
		Accent:     "51",
		Border:     "250",
		Error:      "196",
	},
	Message: MessageColors{
		Own:    "51",
		Other:  "231",
		System: "226",
	},
	Status: StatusColors{
		Online: "46",
		Unread: "196",
	},
	Chrome: ChromeColors{
		Header:       "231",
		Footer:       "231",
		SelectedItem: "51",
	},
	Borders: BorderColors{
		ActivePane:   "51",
		InactivePane: "250",
		Divider:      "244",
	},
}
