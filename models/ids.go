package models

// ID accessors used by the record store to assign and read identifiers
// without reflection.

func (p *Player) GetID() string                 { return p.ID }
func (p *Player) SetID(id string)               { p.ID = id }
func (e *Event) GetID() string                  { return e.ID }
func (e *Event) SetID(id string)                { e.ID = id }
func (s *Signup) GetID() string                 { return s.ID }
func (s *Signup) SetID(id string)               { s.ID = id }
func (a *Attendee) GetID() string               { return a.ID }
func (a *Attendee) SetID(id string)             { a.ID = id }
func (t *Transaction) GetID() string            { return t.ID }
func (t *Transaction) SetID(id string)          { t.ID = id }
func (m *MatchHistoryEntry) GetID() string      { return m.ID }
func (m *MatchHistoryEntry) SetID(id string)    { m.ID = id }
func (x *ExperienceAdjustment) GetID() string   { return x.ID }
func (x *ExperienceAdjustment) SetID(id string) { x.ID = id }
