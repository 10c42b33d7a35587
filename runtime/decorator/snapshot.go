package decorator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SnapshotVersion is the schema version written by Snapshot.
const SnapshotVersion = "1.0"

// Snapshot is a serializable export of a registry's metadata tables.
type Snapshot struct {
	ID        string           `json:"id"`
	Version   string           `json:"version"`
	Generated time.Time        `json:"generated"`
	Members   []SnapshotMember `json:"members"`
}

// SnapshotMember is one exported member.
type SnapshotMember struct {
	MemberKey
	Metadata Table `json:"metadata,omitempty"`
}

// Snapshot exports every installed member, sorted by key.
func (r *Registry) Snapshot() *Snapshot {
	snap := &Snapshot{
		ID:        uuid.NewString(),
		Version:   SnapshotVersion,
		Generated: time.Now().UTC(),
		Members:   []SnapshotMember{},
	}

	for _, m := range r.installed() {
		snap.Members = append(snap.Members, SnapshotMember{
			MemberKey: m.Key,
			Metadata:  m.table,
		})
	}
	return snap
}

// Marshal returns the snapshot as indented JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return data, nil
}

// LoadSnapshot parses a snapshot produced by Marshal.
func LoadSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if snap.Version == "" {
		return nil, fmt.Errorf("snapshot has no version")
	}
	return &snap, nil
}

// ShortName returns "Type.Property" without the package path.
func (k MemberKey) ShortName() string {
	typ := k.Type
	if i := strings.LastIndex(typ, "."); i >= 0 {
		typ = typ[i+1:]
	}
	if typ == "" {
		return k.Property
	}
	return typ + "." + k.Property
}

// Member finds an exported member by its full or short name. A full-name
// match wins over short-name matches; a name matching more than one member
// fails with ErrAmbiguousMember. The result carries the metadata table but
// no callable.
func (s *Snapshot) Member(name string) (*Member, error) {
	var full, short []SnapshotMember
	for _, sm := range s.Members {
		switch name {
		case sm.MemberKey.String():
			full = append(full, sm)
		case sm.MemberKey.ShortName():
			short = append(short, sm)
		}
	}

	matches := full
	if len(matches) == 0 {
		matches = short
	}
	switch len(matches) {
	case 0:
		return nil, newError(ErrPropertyNotFound, MemberKey{Property: name}, "")
	case 1:
		sm := matches[0]
		return &Member{Key: sm.MemberKey, table: sm.Metadata.clone()}, nil
	}

	err := newError(ErrAmbiguousMember, MemberKey{Property: name}, "")
	for _, sm := range matches {
		err.Candidates = append(err.Candidates, sm.MemberKey.String())
	}
	return nil, err
}

// Names returns the short names of every member in the snapshot.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.Members))
	for _, sm := range s.Members {
		names = append(names, sm.MemberKey.ShortName())
	}
	return names
}
