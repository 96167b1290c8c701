// Package orientation maps the abstract main-axis/cross-axis model onto
// concrete vertical or horizontal layout (spec §4.6). CSS property swapping
// becomes lipgloss style-field swapping: main-axis size is Height for a
// vertical list and Width for a horizontal one, and vice versa for the
// cross axis.
package orientation

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/newbpydev/vlistengine/pkg/vlisterr"
)

// Orientation is the scroll axis of the list.
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

// CrossAlign controls cross-axis alignment of positioned items.
type CrossAlign int

const (
	CrossStart CrossAlign = iota
	CrossCenter
	CrossEnd
	CrossStretch
)

// Manager resolves axis-abstracted geometry onto concrete styling. Reverse
// flips main-axis direction (last item first); CrossAlign controls
// perpendicular alignment.
type Manager struct {
	Orientation Orientation
	Reverse     bool
	Align       CrossAlign
}

// New validates orientation at construction (spec §7: invalid orientation
// is a configuration error, fails fast).
func New(o Orientation, reverse bool, align CrossAlign) (*Manager, error) {
	if o != Vertical && o != Horizontal {
		return nil, vlisterr.ErrInvalidOrientation
	}
	return &Manager{Orientation: o, Reverse: reverse, Align: align}, nil
}

// AutoDetect selects Horizontal when the container's aspect ratio
// (width/height) exceeds 1.5, Vertical otherwise.
func AutoDetect(width, height int) Orientation {
	if height <= 0 {
		return Horizontal
	}
	if float64(width)/float64(height) > 1.5 {
		return Horizontal
	}
	return Vertical
}

// MainAxisSize returns the size of a cell along the scroll axis.
func (m *Manager) MainAxisSize(width, height int) int {
	if m.Orientation == Vertical {
		return height
	}
	return width
}

// CrossAxisSize returns the size of a cell along the perpendicular axis.
func (m *Manager) CrossAxisSize(width, height int) int {
	if m.Orientation == Vertical {
		return width
	}
	return height
}

// MainAxisOffset translates a logical main-axis position into the
// position actually used, applying Reverse when set.
func (m *Manager) MainAxisOffset(position, itemSize, totalVirtualSize int) int {
	if !m.Reverse {
		return position
	}
	return totalVirtualSize - position - itemSize
}

// Position computes the lipgloss style for an item cell from crossSize and
// the Align policy. content, mainOffset and contentCrossSize do not affect
// the result.
func (m *Manager) Position(content string, mainOffset, crossSize, contentCrossSize int) lipgloss.Style {
	style := lipgloss.NewStyle()

	switch m.Align {
	case CrossCenter:
		style = style.Align(lipgloss.Center)
	case CrossEnd:
		style = style.Align(lipgloss.Right)
	case CrossStretch:
		if m.Orientation == Vertical {
			style = style.Width(crossSize)
		} else {
			style = style.Height(crossSize)
		}
	default: // CrossStart
		style = style.Align(lipgloss.Left)
	}

	if m.Orientation == Vertical {
		style = style.Width(crossSize)
	} else {
		style = style.Height(crossSize)
	}
	return style
}

// ScrollProperty/SizeProperty/CrossSizeProperty name the CSS-analogue
// dimension this orientation maps the main/cross axis onto, used for
// diagnostics and tests rather than styling itself.
func (m *Manager) ScrollProperty() string {
	if m.Orientation == Vertical {
		return "top"
	}
	return "left"
}

func (m *Manager) SizeProperty() string {
	if m.Orientation == Vertical {
		return "height"
	}
	return "width"
}

func (m *Manager) CrossSizeProperty() string {
	if m.Orientation == Vertical {
		return "width"
	}
	return "height"
}
