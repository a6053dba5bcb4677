package session

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type EntryKind string

const (
	EntryKindText  EntryKind = "text"
	EntryKindPhoto EntryKind = "photo"
)

// PhotoSuffix is appended to the description of every photo entry.
const PhotoSuffix = " (zdjęcie)"

type Entry struct {
	Description string
	Kind        EntryKind
	AssetRef    string
}

// Snapshot is a point-in-time copy of a Session.
type Snapshot struct {
	Active           bool
	HandoverID       string
	UnitID           string
	ResponsibleParty string
	StartedAt        time.Time
	Entries          []Entry
}

// Handover is what End hands back: the bindings of the finished handover and its entries.
type Handover struct {
	HandoverID       string
	UnitID           string
	ResponsibleParty string
	StartedAt        time.Time
	Entries          []Entry
}

// Session is the per-conversation handover state. The zero value is idle.
// The mutex keeps fields consistent under concurrent delivery; it is never held
// across external calls, so events of one conversation may still interleave.
type Session struct {
	mu               sync.Mutex
	active           bool
	handoverID       string
	unitID           string
	responsibleParty string
	startedAt        time.Time
	entries          []Entry

	now func() time.Time
}

func New() *Session {
	return &Session{now: time.Now}
}

// Begin activates the session. rawUnitID is normalized with NormalizeUnitID.
func (s *Session) Begin(rawUnitID, responsibleParty string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return "", ErrAlreadyActive
	}
	s.active = true
	s.handoverID = ulid.Make().String()
	s.unitID = NormalizeUnitID(rawUnitID)
	s.responsibleParty = responsibleParty
	s.startedAt = s.clock()
	s.entries = nil
	return s.unitID, nil
}

// AddTextEntry appends a text entry and returns the entry count after insertion.
func (s *Session) AddTextEntry(description string) (int, error) {
	return s.add(Entry{Description: description, Kind: EntryKindText})
}

// AddPhotoEntry appends a photo entry whose description gets PhotoSuffix.
func (s *Session) AddPhotoEntry(description, assetRef string) (int, error) {
	return s.add(Entry{Description: description + PhotoSuffix, Kind: EntryKindPhoto, AssetRef: assetRef})
}

func (s *Session) add(e Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return 0, ErrNotActive
	}
	s.entries = append(s.entries, e)
	return len(s.entries), nil
}

// RemoveEntry removes the first entry whose description equals description.
func (s *Session) RemoveEntry(description string) (Entry, error) {
	return s.remove(func(e Entry) bool {
		return e.Description == description
	})
}

// RemoveTextEntry removes the first text entry whose description equals
// description. Photo entries are never matched, so their assets stay tracked.
func (s *Session) RemoveTextEntry(description string) (Entry, error) {
	return s.remove(textMatcher(description))
}

// RemovePhotoEntry removes the first photo entry matching both description and asset ref.
func (s *Session) RemovePhotoEntry(description, assetRef string) (Entry, error) {
	return s.remove(photoMatcher(description, assetRef))
}

// FindPhotoEntry reports whether a photo entry matching both values is present.
func (s *Session) FindPhotoEntry(description, assetRef string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match := photoMatcher(description, assetRef)
	for _, e := range s.entries {
		if match(e) {
			return e, true
		}
	}
	return Entry{}, false
}

func textMatcher(description string) func(Entry) bool {
	return func(e Entry) bool {
		return e.Kind == EntryKindText && e.Description == description
	}
}

func photoMatcher(description, assetRef string) func(Entry) bool {
	return func(e Entry) bool {
		return e.Kind == EntryKindPhoto && e.Description == description && e.AssetRef == assetRef
	}
}

func (s *Session) remove(match func(Entry) bool) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Entry{}, ErrNotActive
	}
	for i, e := range s.entries {
		if !match(e) {
			continue
		}
		s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
		return e, nil
	}
	return Entry{}, ErrNotFound
}

// End returns the finished handover and resets the session to idle. The reset
// does not depend on what the caller manages to commit.
func (s *Session) End() (Handover, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Handover{}, ErrNotActive
	}
	h := Handover{
		HandoverID:       s.handoverID,
		UnitID:           s.unitID,
		ResponsibleParty: s.responsibleParty,
		StartedAt:        s.startedAt,
		Entries:          s.entries,
	}
	if h.Entries == nil {
		h.Entries = []Entry{}
	}
	s.resetLocked()
	return h, nil
}

func (s *Session) resetLocked() {
	s.active = false
	s.handoverID = ""
	s.unitID = ""
	s.responsibleParty = ""
	s.startedAt = time.Time{}
	s.entries = nil
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	return Snapshot{
		Active:           s.active,
		HandoverID:       s.handoverID,
		UnitID:           s.unitID,
		ResponsibleParty: s.responsibleParty,
		StartedAt:        s.startedAt,
		Entries:          entries,
	}
}

func (s *Session) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
