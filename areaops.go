package textart

// Area operations work on the selected rectangle of the current layer,
// or on the whole layer when nothing is selected. Each one captures the
// area before and after the mutation and records a single layer-change
// history entry.

// areaRectangle returns the target area in layer-local coordinates.
func (es *EditState) areaRectangle() (Rectangle, *Layer, error) {
	l, err := es.GetCurrentLayer()
	if err != nil {
		return Rectangle{}, nil, err
	}
	rect := es.SelectedRectangle()
	if rect.IsEmpty() {
		return Rectangle{Size: l.Size}, l, nil
	}
	rect = rect.Intersect(l.Rectangle())
	if rect.IsEmpty() {
		return Rectangle{}, l, nil
	}
	rect.Start = rect.Start.Sub(l.Offset)
	return rect, l, nil
}

func (es *EditState) applyAreaChange(description string, mutate func(l *Layer, area Rectangle)) error {
	area, l, err := es.areaRectangle()
	if err != nil {
		return err
	}
	if l.IsLocked {
		return editorErr("layer %d is locked", es.currentLayer)
	}
	if area.IsEmpty() {
		return nil
	}
	old := LayerFromArea(l, area)
	mutate(l, area)
	changed := LayerFromArea(l, area)
	es.push(&undoLayerChange{
		description: description,
		layer:       es.currentLayer,
		area:        area,
		old:         old,
		new:         changed,
	})
	return nil
}

// blankChar returns the cell that counts as empty on the layer.
func blankChar(l *Layer) AttributedChar {
	if l.HasAlphaChannel {
		return InvisibleChar()
	}
	return DefaultChar()
}

// isBlankCell reports whether the cell counts as empty for justification.
func isBlankCell(ch AttributedChar) bool {
	return !ch.IsVisible() || ch.IsTransparent()
}

// justifyRows repositions the content span of every row in the area.
// newLead maps the blank budget of a row to the number of blanks that
// end up before the content.
func justifyRows(l *Layer, area Rectangle, newLead func(blanks int) int) {
	w := area.Size.Width
	blank := blankChar(l)
	for y := 0; y < area.Size.Height; y++ {
		row := make([]AttributedChar, w)
		for x := 0; x < w; x++ {
			row[x] = l.GetChar(area.Start.Add(Pos(x, y)))
		}
		lead := 0
		for lead < w && isBlankCell(row[lead]) {
			lead++
		}
		if lead == w {
			continue
		}
		trail := 0
		for isBlankCell(row[w-1-trail]) {
			trail++
		}
		shift := newLead(lead + trail)
		for x := 0; x < w; x++ {
			ch := blank
			if x >= shift && x-shift < w-lead-trail {
				ch = row[lead+x-shift]
			}
			l.SetChar(area.Start.Add(Pos(x, y)), ch)
		}
	}
}

// JustifyLeft pushes each row's content against the left edge of the
// area.
func (es *EditState) JustifyLeft() error {
	return es.applyAreaChange("Justify left", func(l *Layer, area Rectangle) {
		justifyRows(l, area, func(int) int { return 0 })
	})
}

// JustifyRight pushes each row's content against the right edge of the
// area.
func (es *EditState) JustifyRight() error {
	return es.applyAreaChange("Justify right", func(l *Layer, area Rectangle) {
		justifyRows(l, area, func(blanks int) int { return blanks })
	})
}

// Center places each row's content in the middle of the area.
func (es *EditState) Center() error {
	return es.applyAreaChange("Justify center", func(l *Layer, area Rectangle) {
		justifyRows(l, area, func(blanks int) int { return blanks / 2 })
	})
}

// FlipX mirrors the area horizontally.
func (es *EditState) FlipX() error {
	return es.applyAreaChange("Flip X", func(l *Layer, area Rectangle) {
		for y := 0; y < area.Size.Height; y++ {
			for x := 0; x < area.Size.Width/2; x++ {
				a := area.Start.Add(Pos(x, y))
				b := area.Start.Add(Pos(area.Size.Width-1-x, y))
				l.SwapChar(a, b)
			}
		}
	})
}

// FlipY mirrors the area vertically.
func (es *EditState) FlipY() error {
	return es.applyAreaChange("Flip Y", func(l *Layer, area Rectangle) {
		for x := 0; x < area.Size.Width; x++ {
			for y := 0; y < area.Size.Height/2; y++ {
				a := area.Start.Add(Pos(x, y))
				b := area.Start.Add(Pos(x, area.Size.Height-1-y))
				l.SwapChar(a, b)
			}
		}
	})
}

// spansLayerWidth reports whether the area covers every column, which
// lets the vertical scrolls rotate whole lines instead of cells.
func spansLayerWidth(l *Layer, area Rectangle) bool {
	return area.Start.X == 0 && area.Size.Width == l.Size.Width
}

func ensureLines(l *Layer, rows int) {
	for len(l.Lines) < rows {
		l.Lines = append(l.Lines, NewLine())
	}
}

// ScrollAreaUp rotates the rows of the area up by one, wrapping the top
// row to the bottom.
func (es *EditState) ScrollAreaUp() error {
	return es.applyAreaChange("Scroll area up", func(l *Layer, area Rectangle) {
		y1, y2 := area.Start.Y, area.Start.Y+area.Size.Height
		if spansLayerWidth(l, area) {
			ensureLines(l, y2)
			top := l.Lines[y1]
			copy(l.Lines[y1:y2-1], l.Lines[y1+1:y2])
			l.Lines[y2-1] = top
			return
		}
		for x := 0; x < area.Size.Width; x++ {
			top := l.GetChar(area.Start.Add(Pos(x, 0)))
			for y := 0; y < area.Size.Height-1; y++ {
				l.SetChar(area.Start.Add(Pos(x, y)), l.GetChar(area.Start.Add(Pos(x, y+1))))
			}
			l.SetChar(area.Start.Add(Pos(x, area.Size.Height-1)), top)
		}
	})
}

// ScrollAreaDown rotates the rows of the area down by one, wrapping the
// bottom row to the top.
func (es *EditState) ScrollAreaDown() error {
	return es.applyAreaChange("Scroll area down", func(l *Layer, area Rectangle) {
		y1, y2 := area.Start.Y, area.Start.Y+area.Size.Height
		if spansLayerWidth(l, area) {
			ensureLines(l, y2)
			bottom := l.Lines[y2-1]
			copy(l.Lines[y1+1:y2], l.Lines[y1:y2-1])
			l.Lines[y1] = bottom
			return
		}
		for x := 0; x < area.Size.Width; x++ {
			bottom := l.GetChar(area.Start.Add(Pos(x, area.Size.Height-1)))
			for y := area.Size.Height - 1; y > 0; y-- {
				l.SetChar(area.Start.Add(Pos(x, y)), l.GetChar(area.Start.Add(Pos(x, y-1))))
			}
			l.SetChar(area.Start.Add(Pos(x, 0)), bottom)
		}
	})
}

// ScrollAreaLeft rotates each row of the area left by one, wrapping the
// first column to the last.
func (es *EditState) ScrollAreaLeft() error {
	return es.applyAreaChange("Scroll area left", func(l *Layer, area Rectangle) {
		for y := 0; y < area.Size.Height; y++ {
			first := l.GetChar(area.Start.Add(Pos(0, y)))
			for x := 0; x < area.Size.Width-1; x++ {
				l.SetChar(area.Start.Add(Pos(x, y)), l.GetChar(area.Start.Add(Pos(x+1, y))))
			}
			l.SetChar(area.Start.Add(Pos(area.Size.Width-1, y)), first)
		}
	})
}

// ScrollAreaRight rotates each row of the area right by one, wrapping
// the last column to the first.
func (es *EditState) ScrollAreaRight() error {
	return es.applyAreaChange("Scroll area right", func(l *Layer, area Rectangle) {
		for y := 0; y < area.Size.Height; y++ {
			last := l.GetChar(area.Start.Add(Pos(area.Size.Width-1, y)))
			for x := area.Size.Width - 1; x > 0; x-- {
				l.SetChar(area.Start.Add(Pos(x, y)), l.GetChar(area.Start.Add(Pos(x-1, y))))
			}
			l.SetChar(area.Start.Add(Pos(0, y)), last)
		}
	})
}
