package types

// MapStatistics counts the content of one map
type MapStatistics struct {
	Topics       int `json:"topics"`
	Associations int `json:"associations"`
	Occurrences  int `json:"occurrences"`
}

// Occurrence categories counted per topic
const (
	ImageOccurrence = "image"
	VideoOccurrence = "video"
	AudioOccurrence = "audio"
	NoteOccurrence  = "note"
	FileOccurrence  = "file"
	URLOccurrence   = "url"
	TextOccurrence  = "text"
	SceneOccurrence = "3d-scene"
)

// OccurrenceCategories lists the counted categories
func OccurrenceCategories() []string {
	return []string{
		ImageOccurrence, VideoOccurrence, AudioOccurrence, NoteOccurrence,
		FileOccurrence, URLOccurrence, TextOccurrence, SceneOccurrence,
	}
}

// OccurrenceStatistics counts a topic's occurrences per category
type OccurrenceStatistics struct {
	Image int `json:"image"`
	Video int `json:"video"`
	Audio int `json:"audio"`
	Note  int `json:"note"`
	File  int `json:"file"`
	URL   int `json:"url"`
	Text  int `json:"text"`
	Scene int `json:"3dScene"`
}

// Add records count occurrences of instanceOf. Uncounted categories are ignored.
func (s *OccurrenceStatistics) Add(instanceOf string, count int) {
	switch instanceOf {
	case ImageOccurrence:
		s.Image += count
	case VideoOccurrence:
		s.Video += count
	case AudioOccurrence:
		s.Audio += count
	case NoteOccurrence:
		s.Note += count
	case FileOccurrence:
		s.File += count
	case URLOccurrence:
		s.URL += count
	case TextOccurrence:
		s.Text += count
	case SceneOccurrence:
		s.Scene += count
	}
}

// Total sums every category
func (s OccurrenceStatistics) Total() int {
	return s.Image + s.Video + s.Audio + s.Note + s.File + s.URL + s.Text + s.Scene
}
