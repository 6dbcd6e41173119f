package bundlelib

import "github.com/specialistvlad/vuldesign/internal/vulerr"

// Snapshot stores a deep copy of the library state and returns its id. Each
// id must be consumed exactly once by Rollback or Commit.
func (l *Library) Snapshot() int {
	l.nextID++
	l.snapshots[l.nextID] = l.cur.clone()
	return l.nextID
}

// Rollback restores the state stored under id and discards it.
func (l *Library) Rollback(id int) error {
	s, ok := l.snapshots[id]
	if !ok {
		return vulerr.New(vulerr.SnapshotNotFound, "snapshot %d not found", id)
	}
	delete(l.snapshots, id)
	l.cur = s
	return nil
}

// Commit discards the state stored under id, accepting the current one.
func (l *Library) Commit(id int) error {
	if _, ok := l.snapshots[id]; !ok {
		return vulerr.New(vulerr.SnapshotNotFound, "snapshot %d not found", id)
	}
	delete(l.snapshots, id)
	return nil
}
