package domain

// Label is one of the closed set of emotion categories the classifier emits.
type Label string

const (
	LabelAnger    Label = "anger"
	LabelDisgust  Label = "disgust"
	LabelFear     Label = "fear"
	LabelJoy      Label = "joy"
	LabelNeutral  Label = "neutral"
	LabelSadness  Label = "sadness"
	LabelSurprise Label = "surprise"
)

// Labels lists every known emotion label.
var Labels = []Label{
	LabelAnger,
	LabelDisgust,
	LabelFear,
	LabelJoy,
	LabelNeutral,
	LabelSadness,
	LabelSurprise,
}

// unknownEmoji is shown for labels outside the known set.
const unknownEmoji = "❓"

var emojis = map[Label]string{
	LabelAnger:    "😠",
	LabelDisgust:  "🤢",
	LabelFear:     "😨",
	LabelJoy:      "😊",
	LabelNeutral:  "😐",
	LabelSadness:  "😢",
	LabelSurprise: "😮",
}

// Valid reports whether l belongs to the known label set.
func (l Label) Valid() bool {
	_, ok := emojis[l]
	return ok
}

// Emoji returns the display symbol for the label, or a placeholder for
// labels outside the known set.
func (l Label) Emoji() string {
	if e, ok := emojis[l]; ok {
		return e
	}
	return unknownEmoji
}

// Prediction is one (label, confidence) pair from the classifier's ranking.
type Prediction struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

// Annotation is the selected top prediction plus its display symbol,
// produced fresh per message.
type Annotation struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
	Emoji string  `json:"emoji"`
}

// TopPrediction selects the highest-scoring prediction. Ties keep the
// earliest pair in the ranking; the input order is never changed.
// The second return is false when the slice is empty.
func TopPrediction(preds []Prediction) (Prediction, bool) {
	if len(preds) == 0 {
		return Prediction{}, false
	}
	top := preds[0]
	for _, p := range preds[1:] {
		if p.Score > top.Score {
			top = p
		}
	}
	return top, true
}

// Annotate builds the annotation for a prediction.
func Annotate(p Prediction) Annotation {
	return Annotation{Label: p.Label, Score: p.Score, Emoji: p.Label.Emoji()}
}
