package remap

// Hungarian maps characters typed on a Hungarian QWERTZ keyboard to the keys
// that produce them on a US QWERTY keyboard.
//
// The y/z swap is authoritative: 'z' appears exactly once, as z -> y.
// í and Í live on the ISO 102nd key, which US keyboards lack, so they are
// left out and pass through unchanged.
var Hungarian = MustTable(hungarianEntries())

func hungarianEntries() []Entry {
	var entries []Entry

	// Keys that carry the same character on both layouts.
	entries = append(entries, identity("abcdefghijklmnopqrstuvwx")...)
	entries = append(entries, identity("ABCDEFGHIJKLMNOPQRSTUVWX")...)
	entries = append(entries, identity("123456789,.%")...)

	entries = append(entries,
		// y and z trade places
		Entry{'z', "y"},
		Entry{'y', "z"},
		Entry{'Z', "Y"},
		Entry{'Y', "Z"},

		// number row
		Entry{'0', "`"},
		Entry{'ö', "0"},
		Entry{'ü', "-"},
		Entry{'ó', "="},
		Entry{'§', "~"},
		Entry{'\'', "!"},
		Entry{'"', "@"},
		Entry{'+', "#"},
		Entry{'!', "$"},
		Entry{'/', "^"},
		Entry{'=', "&"},
		Entry{'(', "*"},
		Entry{')', "("},
		Entry{'Ö', ")"},
		Entry{'Ü', "_"},
		Entry{'Ó', "+"},

		// top row
		Entry{'ő', "["},
		Entry{'ú', "]"},
		Entry{'Ő', "{"},
		Entry{'Ú', "}"},

		// home row
		Entry{'é', ";"},
		Entry{'á', "'"},
		Entry{'ű', `\`},
		Entry{'É', ":"},
		Entry{'Á', `"`},
		Entry{'Ű', "|"},

		// bottom row
		Entry{'-', "/"},
		Entry{'?', "<"},
		Entry{':', ">"},
		Entry{'_', "?"},
	)

	return entries
}

func identity(chars string) []Entry {
	out := make([]Entry, 0, len(chars))
	for _, r := range chars {
		out = append(out, Entry{From: r, To: string(r)})
	}
	return out
}
