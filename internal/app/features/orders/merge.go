// internal/app/features/orders/merge.go
package orders

import (
	"github.com/dalemusser/slothstore/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineDelta is one requested cart change. Quantity is nil when the client
// omitted it, which counts as 1.
type LineDelta struct {
	ProductID primitive.ObjectID
	Size      string
	Color     string
	Quantity  *int
}

func (d LineDelta) qty() int {
	if d.Quantity == nil {
		return 1
	}
	return *d.Quantity
}

func findLine(lines []models.OrderLine, d LineDelta) int {
	for i, l := range lines {
		if l.Matches(d.ProductID, d.Size, d.Color) {
			return i
		}
	}
	return -1
}

// mergeLines applies deltas to a copy of lines. On an existing line a
// quantity of 0 removes it and any other value is added; a line driven to
// zero or below is removed. A new line with quantity 0 is appended with
// quantity 1; a negative quantity never creates a line.
func mergeLines(lines []models.OrderLine, deltas []LineDelta) []models.OrderLine {
	out := append([]models.OrderLine{}, lines...)
	for _, d := range deltas {
		q := d.qty()
		i := findLine(out, d)
		switch {
		case i >= 0 && q == 0:
			out = removeLine(out, i)
		case i >= 0:
			n := out[i].Quantity + q
			if n <= 0 {
				out = removeLine(out, i)
			} else {
				out[i].Quantity = n
			}
		case q == 0:
			out = append(out, newLine(d, 1))
		case q > 0:
			out = append(out, newLine(d, q))
		}
	}
	return out
}

// setLines is like mergeLines but treats each quantity as the target value.
func setLines(lines []models.OrderLine, deltas []LineDelta) []models.OrderLine {
	out := append([]models.OrderLine{}, lines...)
	for _, d := range deltas {
		q := d.qty()
		i := findLine(out, d)
		switch {
		case i >= 0 && q <= 0:
			out = removeLine(out, i)
		case i >= 0:
			out[i].Quantity = q
		case q > 0:
			out = append(out, newLine(d, q))
		}
	}
	return out
}

func newLine(d LineDelta, q int) models.OrderLine {
	return models.OrderLine{ProductID: d.ProductID, Quantity: q, Size: d.Size, Color: d.Color}
}

func removeLine(lines []models.OrderLine, i int) []models.OrderLine {
	return append(lines[:i], lines[i+1:]...)
}
