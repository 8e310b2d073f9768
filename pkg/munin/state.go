package munin

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StateFile returns the path of the plugin state file: the value of
// MUNIN_STATEFILE, or a path derived from the plugin name under the system
// temp directory.
func (p *Plugin) StateFile() string { return p.stateFile }

// SaveState serializes v as YAML and writes it to the state file. The write
// goes through a temporary file in the same directory followed by a rename,
// so a concurrent reader never observes a half-written file.
func (p *Plugin) SaveState(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return &StatePersistenceError{Path: p.stateFile, Op: "save", Err: err}
	}

	dir := filepath.Dir(p.stateFile)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &StatePersistenceError{Path: p.stateFile, Op: "save", Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(p.stateFile)+".*")
	if err != nil {
		return &StatePersistenceError{Path: p.stateFile, Op: "save", Err: err}
	}

	_, werr := tmp.Write(data)
	cerr := tmp.Close()

	if werr != nil || cerr != nil {
		os.Remove(tmp.Name())

		if werr == nil {
			werr = cerr
		}

		return &StatePersistenceError{Path: p.stateFile, Op: "save", Err: werr}
	}

	if err := os.Rename(tmp.Name(), p.stateFile); err != nil {
		os.Remove(tmp.Name())

		return &StatePersistenceError{Path: p.stateFile, Op: "save", Err: err}
	}

	return nil
}

// RestoreState reads the state file and unmarshals it into v. Returns false
// with a nil error when no state has been saved yet; read and decode
// failures surface as *StatePersistenceError.
func (p *Plugin) RestoreState(v any) (bool, error) {
	data, err := os.ReadFile(p.stateFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, &StatePersistenceError{Path: p.stateFile, Op: "restore", Err: err}
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return false, &StatePersistenceError{Path: p.stateFile, Op: "restore", Err: err}
	}

	return true, nil
}
