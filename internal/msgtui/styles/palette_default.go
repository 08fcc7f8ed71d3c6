package styles

// DefaultTheme is the baseline dark palette for the messaging TUI.
var DefaultTheme = Theme{
	Name:        "default",
	UserPalette: append([]string(nil), UserColorPalette...),
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
		Error:      "203",
	},
	Message: MessageColors{
		Own:    "81",
		Other:  "147",
		System: "214",
	},
	Status: StatusColors{
		Online: "41",
		Unread: "203",
	},
	Chrome: ChromeColors{
		Header:       "111",
		Footer:       "110",
		SelectedItem: "75",
	},
	Borders: BorderColors{
		ActivePane:   "75",
		InactivePane: "240",
		Divider:      "238",
	},
}
