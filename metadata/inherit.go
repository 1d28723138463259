package metadata

import "fmt"

// InheritError reports a function whose inheritFrom base cannot be
// resolved.
type InheritError struct {
	Name    string
	Version int
	Base    string
	Cycle   bool
}

func (e *InheritError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("function %s (version %d): inheritance cycle through %s", e.Name, e.Version, e.Base)
	}
	return fmt.Sprintf("function %s (version %d): inherits from unknown function %s", e.Name, e.Version, e.Base)
}

// resolveInheritance fills functions declaring inheritFrom with the newest
// version of their base. Values the derived function sets itself win;
// its arguments replace the base arguments index by index.
func (m *Metadata) resolveInheritance() error {
	newest := make(map[string]int)
	for i, f := range m.Functions {
		if j, ok := newest[f.Name]; !ok || m.Functions[j].Version <= f.Version {
			newest[f.Name] = i
		}
	}

	const (
		pending = iota
		visiting
		done
	)
	state := make([]int, len(m.Functions))

	var resolve func(i int) error
	resolve = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			f := m.Functions[i]
			return &InheritError{Name: f.Name, Version: f.Version, Base: f.InheritFrom, Cycle: true}
		}
		f := &m.Functions[i]
		if f.InheritFrom == "" {
			state[i] = done
			return nil
		}
		j, ok := newest[f.InheritFrom]
		if !ok {
			return &InheritError{Name: f.Name, Version: f.Version, Base: f.InheritFrom}
		}
		state[i] = visiting
		if err := resolve(j); err != nil {
			return err
		}
		inherit(f, m.Functions[j])
		state[i] = done
		return nil
	}

	for i := range m.Functions {
		if err := resolve(i); err != nil {
			return err
		}
	}
	return nil
}

func inherit(f *Function, base Function) {
	if f.Return.Type == "" {
		f.Return = base.Return
	}
	if f.Level == "" {
		f.Level = base.Level
	}
	if len(f.Types) == 0 {
		f.Types = append([]string(nil), base.Types...)
	}
	if f.RecCond == "" {
		f.RecCond = base.RecCond
	}

	f.CustomDriver = f.CustomDriver || base.CustomDriver
	f.ExecOverride = f.ExecOverride || base.ExecOverride
	f.RecWrap = f.RecWrap || base.RecWrap
	f.PreToken = f.PreToken || base.PreToken
	f.PostToken = f.PostToken || base.PostToken
	f.StateTrack = f.StateTrack || base.StateTrack
	f.EndFrameTag = f.EndFrameTag || base.EndFrameTag
	f.Custom = f.Custom || base.Custom

	args := append([]Field(nil), base.Args...)
	for i, a := range f.Args {
		if i < len(args) {
			args[i] = a
		} else {
			args = append(args, a)
		}
	}
	f.Args = args
}
