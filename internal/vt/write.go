package vt

// writeChar writes a single decoded rune to the grid, honoring the display
// width policy (0 for combining marks/controls, 1 otherwise), deferred wrap,
// and cursor advance.
func (t *terminal) writeChar(ch rune) {
	if t.rows == 0 || t.cols == 0 {
		return
	}

	width := charDisplayWidth(ch)
	if width == 0 {
		prevCol := t.cursorCol
		if prevCol > 0 {
			prevCol--
		}
		if t.cursorRow < t.rows && prevCol < t.cols {
			t.lines[t.cursorRow][prevCol].text += string(ch)
		}
		return
	}

	if t.wrapPending {
		t.cursorCol = 0
		t.lineFeed()
		t.wrapPending = false
	}

	if t.cursorCol >= t.cols {
		t.cursorCol = 0
		t.lineFeed()
	}

	t.lines[t.cursorRow][t.cursorCol] = cell{text: string(ch), style: t.style}

	if t.cursorCol >= t.cols-1 {
		t.wrapPending = true
	} else {
		t.cursorCol++
	}
}

func charDisplayWidth(ch rune) int {
	cp := uint32(ch)
	if cp == 0 {
		return 0
	}
	if cp < 0x20 || (cp >= 0x7F && cp < 0xA0) {
		return 0
	}
	switch {
	case cp >= 0x0300 && cp <= 0x036F:
		return 0
	case cp >= 0x1AB0 && cp <= 0x1AFF:
		return 0
	case cp >= 0x1DC0 && cp <= 0x1DFF:
		return 0
	case cp >= 0x20D0 && cp <= 0x20FF:
		return 0
	case cp >= 0xFE20 && cp <= 0xFE2F:
		return 0
	case cp == 0x200D:
		return 0
	case cp >= 0xFE00 && cp <= 0xFE0F:
		return 0
	}
	return 1
}

var ansi16Palette = [16]string{
	"#000000", "#cd3131", "#0dbc79", "#e5e510",
	"#2472c8", "#bc3fbc", "#11a8cd", "#e5e5e5",
	"#666666", "#f14c4c", "#23d18b", "#f5f543",
	"#3b8eea", "#d670d6", "#29b8db", "#ffffff",
}

func ansi16Color(index int) (string, bool) {
	if index < 0 || index >= len(ansi16Palette) {
		return "", false
	}
	return ansi16Palette[index], true
}

func (t *terminal) applySGR(params []param) {
	if len(params) == 0 {
		t.style = Style{}
		return
	}
	// An escape like "\x1b[m" parses to a single absent parameter, which is
	// also a reset.
	if len(params) == 1 && !params[0].valid {
		t.style = Style{}
		return
	}

	for i := 0; i < len(params); i++ {
		code := 0
		if params[i].valid {
			code = params[i].val
		}
		switch {
		case code == 0:
			t.style = Style{}
		case code == 1:
			t.style.Bold = true
		case code == 3:
			t.style.Italic = true
		case code == 4:
			t.style.Underline = true
		case code == 7:
			t.style.Inverse = true
		case code == 22:
			t.style.Bold = false
		case code == 23:
			t.style.Italic = false
		case code == 24:
			t.style.Underline = false
		case code == 27:
			t.style.Inverse = false
		case code >= 30 && code <= 37:
			if c, ok := ansi16Color(code - 30); ok {
				t.style.FG = c
			}
		case code == 39:
			t.style.FG = ""
		case code >= 40 && code <= 47:
			if c, ok := ansi16Color(code - 40); ok {
				t.style.BG = c
			}
		case code == 49:
			t.style.BG = ""
		case code >= 90 && code <= 97:
			if c, ok := ansi16Color(code - 90 + 8); ok {
				t.style.FG = c
			}
		case code >= 100 && code <= 107:
			if c, ok := ansi16Color(code - 100 + 8); ok {
				t.style.BG = c
			}
		case code == 38 || code == 48:
			isFG := code == 38
			mode, modeOK := paramAt(params, i+1)
			switch {
			case modeOK && mode == 2:
				r, rOK := paramAt(params, i+2)
				g, gOK := paramAt(params, i+3)
				b, bOK := paramAt(params, i+4)
				if rOK && gOK && bOK {
					color := rgbHex(r, g, b)
					if isFG {
						t.style.FG = color
					} else {
						t.style.BG = color
					}
				}
				i += 4
			case modeOK && mode == 5:
				idx, idxOK := paramAt(params, i+2)
				if idxOK {
					if color, ok := xterm256Color(idx); ok {
						if isFG {
							t.style.FG = color
						} else {
							t.style.BG = color
						}
					}
				}
				i += 2
			}
		}
	}
}

func paramAt(params []param, index int) (int, bool) {
	if index < 0 || index >= len(params) || !params[index].valid {
		return 0, false
	}
	return params[index].val, true
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func rgbHex(r, g, b int) string {
	const hex = "0123456789abcdef"
	r, g, b = clampByte(r), clampByte(g), clampByte(b)
	out := make([]byte, 7)
	out[0] = '#'
	out[1], out[2] = hex[r>>4], hex[r&0xF]
	out[3], out[4] = hex[g>>4], hex[g&0xF]
	out[5], out[6] = hex[b>>4], hex[b&0xF]
	return string(out)
}

var xterm256Levels = [6]int{0, 95, 135, 175, 215, 255}

func xterm256Color(index int) (string, bool) {
	if index < 0 || index > 255 {
		return "", false
	}
	if index < 16 {
		return ansi16Color(index)
	}
	if index >= 232 {
		v := 8 + (index-232)*10
		return rgbHex(v, v, v), true
	}
	i := index - 16
	r := i / 36
	g := (i % 36) / 6
	b := i % 6
	return rgbHex(xterm256Levels[r], xterm256Levels[g], xterm256Levels[b]), true
}
