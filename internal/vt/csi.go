package vt

import "strconv"

// param is an optionally-absent numeric CSI parameter.
type param struct {
	val   int
	valid bool
}

func parseParams(raw string) []param {
	if raw == "" {
		return []param{{}}
	}
	params := make([]param, 0, 4)
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ';' {
			part := raw[start:i]
			if part == "" {
				params = append(params, param{})
			} else if v, err := strconv.Atoi(part); err == nil {
				params = append(params, param{val: v, valid: true})
			} else {
				params = append(params, param{})
			}
			start = i + 1
		}
	}
	return params
}

func paramOr(params []param, index, def int) int {
	if index < len(params) && params[index].valid {
		return params[index].val
	}
	return def
}

func (t *terminal) handleCSI(raw string, final rune) {
	private := len(raw) > 0 && raw[0] == '?'
	paramsRaw := raw
	if private {
		paramsRaw = raw[1:]
	}
	params := parseParams(paramsRaw)

	switch final {
	case 'A':
		n := maxInt(paramOr(params, 0, 1), 1)
		t.wrapPending = false
		t.cursorRow = subFloor0(t.cursorRow, n)
	case 'B':
		n := maxInt(paramOr(params, 0, 1), 1)
		t.wrapPending = false
		t.cursorRow = minInt(t.cursorRow+n, t.rows-1)
	case 'C':
		n := maxInt(paramOr(params, 0, 1), 1)
		t.wrapPending = false
		t.cursorCol = minInt(t.cursorCol+n, t.cols-1)
	case 'D':
		n := maxInt(paramOr(params, 0, 1), 1)
		t.wrapPending = false
		t.cursorCol = subFloor0(t.cursorCol, n)
	case 'G':
		col := maxInt(paramOr(params, 0, 1), 1)
		t.wrapPending = false
		t.cursorCol = minInt(col-1, t.cols-1)
		if t.cursorCol < 0 {
			t.cursorCol = 0
		}
	case 'd':
		row := maxInt(paramOr(params, 0, 1), 1)
		t.wrapPending = false
		t.cursorRow = minInt(row-1, t.rows-1)
		if t.cursorRow < 0 {
			t.cursorRow = 0
		}
	case 'H', 'f':
		row := maxInt(paramOr(params, 0, 1), 1)
		col := maxInt(paramOr(params, 1, 1), 1)
		t.wrapPending = false
		t.cursorRow = clamp(row-1, 0, t.rows-1)
		t.cursorCol = clamp(col-1, 0, t.cols-1)
	case 'J':
		t.wrapPending = false
		t.eraseDisplay(paramOr(params, 0, 0))
	case 'K':
		t.wrapPending = false
		t.eraseLine(paramOr(params, 0, 0))
	case 'm':
		t.applySGR(params)
	case 'r':
		top := maxInt(paramOr(params, 0, 1), 1)
		bottom := maxInt(paramOr(params, 1, t.rows), 1)
		top0 := clamp(top-1, 0, t.rows-1)
		bottom0 := clamp(bottom-1, 0, t.rows-1)
		if top0 < bottom0 {
			t.scrollTop = top0
			t.scrollBottom = bottom0
			t.cursorRow = top0
			t.cursorCol = 0
			t.wrapPending = false
		}
	case 's':
		t.savedRow = t.cursorRow
		t.savedCol = t.cursorCol
		t.wrapPending = false
	case 'u':
		t.cursorRow = minInt(t.savedRow, t.rows-1)
		t.cursorCol = minInt(t.savedCol, t.cols-1)
		t.wrapPending = false
	case 'h', 'l':
		if !private {
			return
		}
		set := final == 'h'
		for _, p := range params {
			if !p.valid {
				continue
			}
			switch p.val {
			case 25:
				t.cursorVis = set
			case 1049:
				if set {
					t.enterAltScreen()
				} else {
					t.leaveAltScreen()
				}
			}
		}
		t.wrapPending = false
	}
}

func (t *terminal) enterAltScreen() {
	if t.savedPrimary != nil {
		return
	}
	t.savedPrimary = &savedScreen{
		lines:         t.lines,
		cursorRow:     t.cursorRow,
		cursorCol:     t.cursorCol,
		savedRow:      t.savedRow,
		savedCol:      t.savedCol,
		style:         t.style,
		scrollTop:     t.scrollTop,
		scrollBottom:  t.scrollBottom,
		cursorVisible: t.cursorVis,
	}
	t.resetGrid()
}

func (t *terminal) leaveAltScreen() {
	s := t.savedPrimary
	if s == nil {
		return
	}
	t.savedPrimary = nil
	t.lines = s.lines
	t.cursorRow = minInt(s.cursorRow, t.rows-1)
	t.cursorCol = minInt(s.cursorCol, t.cols-1)
	t.savedRow = minInt(s.savedRow, t.rows-1)
	t.savedCol = minInt(s.savedCol, t.cols-1)
	t.style = s.style
	t.scrollTop = minInt(s.scrollTop, t.rows-1)
	t.scrollBottom = minInt(s.scrollBottom, t.rows-1)
	t.cursorVis = s.cursorVisible
	t.wrapPending = false
}

func (t *terminal) eraseDisplay(mode int) {
	switch mode {
	case 0:
		t.eraseLine(0)
		for row := t.cursorRow + 1; row < t.rows; row++ {
			t.lines[row] = makeRow(t.cols)
		}
	case 1:
		for row := 0; row < t.cursorRow; row++ {
			t.lines[row] = makeRow(t.cols)
		}
		t.eraseLine(1)
	case 2, 3:
		for row := 0; row < t.rows; row++ {
			t.lines[row] = makeRow(t.cols)
		}
	}
}

func (t *terminal) eraseLine(mode int) {
	switch mode {
	case 0:
		for col := t.cursorCol; col < t.cols; col++ {
			t.lines[t.cursorRow][col] = blankCell()
		}
	case 1:
		end := minInt(t.cursorCol, t.cols-1)
		for col := 0; col <= end; col++ {
			t.lines[t.cursorRow][col] = blankCell()
		}
	case 2:
		t.lines[t.cursorRow] = makeRow(t.cols)
	}
}

func (t *terminal) lineFeed() {
	if t.cursorRow >= t.scrollTop && t.cursorRow <= t.scrollBottom {
		if t.cursorRow == t.scrollBottom {
			t.scrollRegionUp(t.scrollTop, t.scrollBottom, 1)
		} else {
			t.cursorRow = minInt(t.cursorRow+1, t.rows-1)
		}
		return
	}
	t.cursorRow = minInt(t.cursorRow+1, t.rows-1)
}

func (t *terminal) reverseIndex() {
	if t.cursorRow >= t.scrollTop && t.cursorRow <= t.scrollBottom {
		if t.cursorRow == t.scrollTop {
			t.scrollRegionDown(t.scrollTop, t.scrollBottom, 1)
		} else {
			t.cursorRow = subFloor0(t.cursorRow, 1)
		}
		return
	}
	t.cursorRow = subFloor0(t.cursorRow, 1)
}

// scrollRegionUp discards the top row of [top,bottom] and appends a blank
// row at bottom, shifting the rows between up by one.
func (t *terminal) scrollRegionUp(top, bottom, count int) {
	if top >= bottom || bottom >= t.rows {
		return
	}
	n := minInt(maxInt(count, 1), bottom-top+1)
	for i := 0; i < n; i++ {
		copy(t.lines[top:bottom], t.lines[top+1:bottom+1])
		t.lines[bottom] = makeRow(t.cols)
	}
}

// scrollRegionDown discards the bottom row of [top,bottom] and inserts a
// blank row at top, shifting the rows between down by one.
func (t *terminal) scrollRegionDown(top, bottom, count int) {
	if top >= bottom || bottom >= t.rows {
		return
	}
	n := minInt(maxInt(count, 1), bottom-top+1)
	for i := 0; i < n; i++ {
		copy(t.lines[top+1:bottom+1], t.lines[top:bottom])
		t.lines[top] = makeRow(t.cols)
	}
}
