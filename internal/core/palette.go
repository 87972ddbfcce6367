package core

import (
	"errors"
	"fmt"
)

// PaletteSize is the number of colors a category can be assigned.
const PaletteSize = 18

var palette = [PaletteSize]string{
	"bg-blue-100 text-blue-800 border-blue-200",
	"bg-green-100 text-green-800 border-green-200",
	"bg-purple-100 text-purple-800 border-purple-200",
	"bg-pink-100 text-pink-800 border-pink-200",
	"bg-yellow-100 text-yellow-800 border-yellow-200",
	"bg-indigo-100 text-indigo-800 border-indigo-200",
	"bg-red-100 text-red-800 border-red-200",
	"bg-orange-100 text-orange-800 border-orange-200",
	"bg-teal-100 text-teal-800 border-teal-200",
	"bg-gray-100 text-gray-800 border-gray-200",
	"bg-cyan-100 text-cyan-800 border-cyan-200",
	"bg-lime-100 text-lime-800 border-lime-200",
	"bg-amber-100 text-amber-800 border-amber-200",
	"bg-emerald-100 text-emerald-800 border-emerald-200",
	"bg-sky-100 text-sky-800 border-sky-200",
	"bg-fuchsia-100 text-fuchsia-800 border-fuchsia-200",
	"bg-violet-100 text-violet-800 border-violet-200",
	"bg-rose-100 text-rose-800 border-rose-200",
}

var ErrInvalidCount = errors.New("invalid category count")

// InvalidCountError is returned when the active category count cannot be
// used to pick a color.
type InvalidCountError struct {
	Count int
}

func (e *InvalidCountError) Error() string {
	return fmt.Sprintf("invalid category count %d: must be non-negative", e.Count)
}

func (e *InvalidCountError) Is(target error) bool {
	return target == ErrInvalidCount
}

// Palette returns a copy of the ordered color tokens.
func Palette() []string {
	out := make([]string, PaletteSize)
	copy(out, palette[:])
	return out
}

// ColorFor picks the color for a new category given the number of active
// categories that already exist.
func ColorFor(activeCount int) (string, error) {
	if activeCount < 0 {
		return "", &InvalidCountError{Count: activeCount}
	}
	return palette[activeCount%PaletteSize], nil
}

// ColorOrDefault is ColorFor with the first palette entry as fallback.
func ColorOrDefault(activeCount int) string {
	color, err := ColorFor(activeCount)
	if err != nil {
		return palette[0]
	}
	return color
}
