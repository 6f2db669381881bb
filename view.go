package directbuf

import "fmt"

// TypedView is a fixed-shape [count, width] window over an Arena. Writes go
// straight to the arena memory, so the renderer sees them at the next
// Submit without any copy.
//
// Slices returned by Row and Data alias the arena and must not be used
// after the owning registration is replaced or the Context is closed.
type TypedView[T float32 | int32] struct {
	arena *Arena
	count int
	width int
}

func newView[T float32 | int32](a *Arena, count, width int) *TypedView[T] {
	return &TypedView[T]{arena: a, count: count, width: width}
}

// Len returns the number of rows (primitives).
func (v *TypedView[T]) Len() int { return v.count }

// Width returns the number of elements per row.
func (v *TypedView[T]) Width() int { return v.width }

// Shape returns (count, width).
func (v *TypedView[T]) Shape() (count, width int) { return v.count, v.width }

// Size returns count*width.
func (v *TypedView[T]) Size() int { return v.count * v.width }

// Released reports whether the underlying arena has been released.
func (v *TypedView[T]) Released() bool { return v.arena.Released() }

// Arena returns the arena the view aliases.
func (v *TypedView[T]) Arena() *Arena { return v.arena }

// Data returns the whole view as a flat slice aliasing the arena, or nil
// after release.
func (v *TypedView[T]) Data() []T {
	return elements[T](v.arena)
}

func (v *TypedView[T]) data(op string) ([]T, error) {
	d := elements[T](v.arena)
	if d == nil {
		return nil, newError(op, CodeReleased, v.arena.label, nil)
	}
	return d, nil
}

func (v *TypedView[T]) checkRow(op string, i int) error {
	if i < 0 || i >= v.count {
		return newError(op, CodeIndexOutOfRange,
			fmt.Sprintf("%s: row %d outside [0, %d)", v.arena.label, i, v.count), nil)
	}
	return nil
}

func (v *TypedView[T]) checkCell(op string, i, j int) error {
	if err := v.checkRow(op, i); err != nil {
		return err
	}
	if j < 0 || j >= v.width {
		return newError(op, CodeIndexOutOfRange,
			fmt.Sprintf("%s: column %d outside [0, %d)", v.arena.label, j, v.width), nil)
	}
	return nil
}

// At returns element j of row i.
func (v *TypedView[T]) At(i, j int) (T, error) {
	d, err := v.data("view.At")
	if err != nil {
		return 0, err
	}
	if err := v.checkCell("view.At", i, j); err != nil {
		return 0, err
	}
	return d[i*v.width+j], nil
}

// Set writes element j of row i.
func (v *TypedView[T]) Set(i, j int, val T) error {
	d, err := v.data("view.Set")
	if err != nil {
		return err
	}
	if err := v.checkCell("view.Set", i, j); err != nil {
		return err
	}
	d[i*v.width+j] = val
	return nil
}

// Row returns row i as a slice aliasing the arena.
func (v *TypedView[T]) Row(i int) ([]T, error) {
	d, err := v.data("view.Row")
	if err != nil {
		return nil, err
	}
	if err := v.checkRow("view.Row", i); err != nil {
		return nil, err
	}
	off := i * v.width
	return d[off : off+v.width : off+v.width], nil
}

// SetRow overwrites row i. vals must hold exactly Width elements.
func (v *TypedView[T]) SetRow(i int, vals []T) error {
	d, err := v.data("view.SetRow")
	if err != nil {
		return err
	}
	if err := v.checkRow("view.SetRow", i); err != nil {
		return err
	}
	if len(vals) != v.width {
		return newError("view.SetRow", CodeInvalidArgument,
			fmt.Sprintf("%s: %d values for width %d", v.arena.label, len(vals), v.width), nil)
	}
	copy(d[i*v.width:], vals)
	return nil
}

// SetRows overwrites consecutive rows starting at start. len(vals) must be
// a multiple of Width and the rows must fit in the view.
func (v *TypedView[T]) SetRows(start int, vals []T) error {
	d, err := v.data("view.SetRows")
	if err != nil {
		return err
	}
	if len(vals)%v.width != 0 {
		return newError("view.SetRows", CodeInvalidArgument,
			fmt.Sprintf("%s: %d values is not a multiple of width %d", v.arena.label, len(vals), v.width), nil)
	}
	rows := len(vals) / v.width
	if start < 0 || rows > v.count || start > v.count-rows {
		return newError("view.SetRows", CodeIndexOutOfRange,
			fmt.Sprintf("%s: %d rows at %d outside [0, %d)", v.arena.label, rows, start, v.count), nil)
	}
	copy(d[start*v.width:], vals)
	return nil
}

// CopyFrom overwrites the whole view. vals must hold exactly Size elements.
func (v *TypedView[T]) CopyFrom(vals []T) error {
	d, err := v.data("view.CopyFrom")
	if err != nil {
		return err
	}
	if len(vals) != len(d) {
		return newError("view.CopyFrom", CodeInvalidArgument,
			fmt.Sprintf("%s: %d values for %d elements", v.arena.label, len(vals), len(d)), nil)
	}
	copy(d, vals)
	return nil
}

// Fill sets every element to val.
func (v *TypedView[T]) Fill(val T) error {
	d, err := v.data("view.Fill")
	if err != nil {
		return err
	}
	for i := range d {
		d[i] = val
	}
	return nil
}
