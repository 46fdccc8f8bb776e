package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"SharedBoard/internal/state"
)

// Snapshot is the on-disk form of a room, the same shape the coordinator
// serves at /rooms/:room/snapshot.
type Snapshot struct {
	Room    string         `json:"room"`
	Actions []state.Action `json:"actions"`
}

func WriteSnapshot(w io.Writer, s Snapshot) error {
	if s.Actions == nil {
		s.Actions = []state.Action{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ReadSnapshot decodes a snapshot and drops entries that fail validation.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	valid := s.Actions[:0]
	for _, a := range s.Actions {
		if a.Validate() == nil {
			valid = append(valid, a)
		}
	}
	s.Actions = valid
	return s, nil
}

func SaveSnapshot(path string, s Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSnapshot(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadSnapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}
