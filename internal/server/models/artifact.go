package models

// Section is a structural subdivision of a Record.
type Section struct {
	ID        int64
	RecordID  int64
	Title     string
	StartTime int64
	EndTime   int64
}

type Quiz struct {
	ID       int64
	RecordID int64
	Question string
	Answer   string
}

// Analysis is generated per Section.
type Analysis struct {
	ID        int64
	SectionID int64
	Content   string
}

type Keyword struct {
	ID         int64
	RecordID   int64
	Word       string
	Importance float64
}
