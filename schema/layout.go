package schema

import "github.com/d07RiV/d4data/errors"

// Step is one instruction of a class's decode plan: skip Skip bytes, then
// read Field. The last step of a plan may have no field.
type Step struct {
	Skip  int
	Field *Field
}

// Layout returns the decode plan of c's own fields, starting where the
// parent's layout ends. Fields must not overlap each other or the parent,
// and every field must end within its record.
func (c *Class) Layout() ([]Step, error) {
	offset := 0
	if c.Parent != nil {
		offset = c.Parent.Size
		for _, f := range c.Inherited {
			if f.End() > offset {
				return nil, errors.FieldOverrun(c.File, c.Name, f.Name, f.End(), offset)
			}
		}
	}
	steps := make([]Step, 0, len(c.Fields)+1)
	for _, f := range c.Fields {
		var st Step
		switch {
		case f.Offset > offset:
			st.Skip = f.Offset - offset
			offset = f.Offset
		case f.Offset < offset:
			return nil, errors.FieldOverlap(c.File, c.Name, f.Name, f.Offset, offset)
		}
		st.Field = f
		steps = append(steps, st)
		offset += f.Type.Size()
		if offset > c.Size {
			return nil, errors.FieldOverrun(c.File, c.Name, f.Name, offset, c.Size)
		}
	}
	if c.Size > offset {
		steps = append(steps, Step{Skip: c.Size - offset})
	}
	return steps, nil
}
