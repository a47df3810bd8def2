// Package album defines the data model shared by every stage of the album
// generation pipeline: input photos, their analysis, the storyboard that lays
// them out, per-page backgrounds, and the composed page rasters.
//
// Everything here is produced once per job and treated as read-only by the
// stages downstream of its producer.
package album

import "time"

// PhotoType classifies what a photograph contributes to the story.
type PhotoType string

const (
	TypeKeyMoment      PhotoType = "key_moment"
	TypeContextual     PhotoType = "contextual"
	TypePortrait       PhotoType = "portrait"
	TypeDetail         PhotoType = "detail"
	TypeLandscapeScene PhotoType = "landscape_scene"
)

// Quality is the coarse technical quality verdict for a photograph.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityUsable    Quality = "usable"
)

// SlotClass is the aspect-ratio class of a photo slot.
type SlotClass string

const (
	SlotPortrait  SlotClass = "portrait"
	SlotLandscape SlotClass = "landscape"
	SlotSquare    SlotClass = "square"
	SlotAuto      SlotClass = "auto"
)

// LayoutType is the page layout chosen by a planner.
type LayoutType string

const (
	LayoutCover     LayoutType = "cover"
	LayoutSingle    LayoutType = "single"
	LayoutDouble    LayoutType = "double"
	LayoutTriple    LayoutType = "triple"
	LayoutTextFocus LayoutType = "text_focus"
	LayoutBackCover LayoutType = "back_cover"
)

// Placement anchors a page's text block vertically.
type Placement string

const (
	PlacementTop    Placement = "top"
	PlacementCenter Placement = "center"
	PlacementBottom Placement = "bottom"
)

// PlanSource records which planner produced a storyboard.
type PlanSource string

const (
	SourceAI      PlanSource = "ai"
	SourceCurator PlanSource = "curator"
)

// PhotoInput is a caller-provided photograph reference. Width and Height may
// be estimates; the analyzer corrects them from the decoded image header.
type PhotoInput struct {
	ID        string `json:"id"`
	SourceURL string `json:"sourceUrl"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Analysis is the classification record for one photo.
type Analysis struct {
	Content       string    `json:"content"`
	Emotion       string    `json:"emotion"`
	Type          PhotoType `json:"type"`
	Quality       Quality   `json:"quality"`
	SuggestedSlot SlotClass `json:"suggestedSlot"`
}

// AnalyzedPhoto is a PhotoInput plus its analysis. Synthetic is set when the
// analysis is the deterministic default substituted after a failure.
type AnalyzedPhoto struct {
	PhotoInput
	IsPortrait bool      `json:"isPortrait"`
	Analysis   Analysis  `json:"analysis"`
	TakenAt    time.Time `json:"takenAt,omitempty"`
	Camera     string    `json:"camera,omitempty"`
	Synthetic  bool      `json:"synthetic,omitempty"`
}

// Slot is a normalized rectangle in page-fraction units reserved for one photo.
type Slot struct {
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	W      float64   `json:"w"`
	H      float64   `json:"h"`
	Aspect SlotClass `json:"aspect"`
}

// StoryboardPage is one planned page. PhotoIDs[i] is placed into Slots[i].
type StoryboardPage struct {
	Index            int        `json:"index"`
	Layout           LayoutType `json:"layoutType"`
	PhotoIDs         []string   `json:"photoIds"`
	Slots            []Slot     `json:"slots"`
	Title            string     `json:"title,omitempty"`
	Caption          string     `json:"caption,omitempty"`
	Mood             string     `json:"mood,omitempty"`
	TextPlacement    Placement  `json:"textPlacement,omitempty"`
	BackgroundPrompt string     `json:"backgroundPrompt"`
}

// Storyboard is the ordered plan for a whole album.
type Storyboard struct {
	AlbumTitle string           `json:"albumTitle"`
	Narrative  string           `json:"narrative"`
	Pages      []StoryboardPage `json:"pages"`
	Source     PlanSource       `json:"source"`
}

// Background is the backdrop for one page: either a stored image reference or
// a hex color when synthesis was unavailable.
type Background struct {
	PageIndex int    `json:"pageIndex"`
	ImageRef  string `json:"imageRef,omitempty"`
	Color     string `json:"color,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"`
}

// ComposedPage is a fully rendered page raster in storage.
type ComposedPage struct {
	PageIndex int    `json:"pageIndex"`
	ImageRef  string `json:"imageRef"`
}

// IsPortrait reports whether the dimensions describe a portrait image.
// Square images are not portrait.
func IsPortrait(width, height int) bool {
	return height > width
}

// SlotClassFor derives the aspect class from raw dimensions.
func SlotClassFor(width, height int) SlotClass {
	switch {
	case height > width:
		return SlotPortrait
	case width > height:
		return SlotLandscape
	default:
		return SlotSquare
	}
}
