package vt

// frame builds the emitted Frame from the current grid: right-trims trailing
// cells whose text is a single space (whatever their style), coalesces runs
// sharing a style key,
// and folds inverse video into swapped fg/bg at emission time.
func (t *terminal) frame() Frame {
	lines := make([]Line, 0, t.rows)

	for _, row := range t.lines {
		end := len(row)
		for end > 0 && row[end-1].text == " " {
			end--
		}

		if end == 0 {
			lines = append(lines, Line{Segments: []Segment{{Text: ""}}})
			continue
		}

		var segments []Segment
		currentText := ""
		currentStyle := applied(row[0].style)

		for _, c := range row[:end] {
			style := applied(c.style)
			if style.key() != currentStyle.key() {
				segments = append(segments, segmentFor(currentText, currentStyle))
				currentText = ""
				currentStyle = style
			}
			currentText += c.text
		}
		segments = append(segments, segmentFor(currentText, currentStyle))
		lines = append(lines, Line{Segments: segments})
	}

	return Frame{
		Cols:          t.cols,
		Rows:          t.rows,
		Lines:         lines,
		CursorRow:     minInt(t.cursorRow, t.rows-1),
		CursorCol:     minInt(t.cursorCol, t.cols-1),
		CursorVisible: t.cursorVis,
	}
}

// applied resolves inverse video into a concrete fg/bg pair for emission.
func applied(s Style) Style {
	if !s.Inverse {
		return s
	}
	return Style{
		FG:        s.BG,
		BG:        s.FG,
		Bold:      s.Bold,
		Italic:    s.Italic,
		Underline: s.Underline,
	}
}

func segmentFor(text string, s Style) Segment {
	return Segment{
		Text:      text,
		FG:        s.FG,
		BG:        s.BG,
		Bold:      s.Bold,
		Italic:    s.Italic,
		Underline: s.Underline,
	}
}
