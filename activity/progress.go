package activity

import "fmt"

const (
	// constructionCounterCap is the counter value of a finished construction.
	constructionCounterCap = 10_000_000
	constructionPercentDiv = constructionCounterCap / 100
)

// Message keys used when rendering progress.
const (
	MsgProgressNoInfo   = "%s…"
	MsgProgressWithInfo = "%s: %s"
	MsgReadingProgress  = "%s %d -> %d (%d%%)"
	MsgStopPhrase       = "Stop %s?"
)

// ProgressMessage renders the status text shown while the activity runs.
// It returns false when the instance is inactive or its kind has no verb.
// A nil reader disables the suffixes that need world or inventory facts.
func (i *Instance) ProgressMessage(r ProgressReader, p Printer) (string, bool) {
	if !i.Active() || i.kind.verb == "" {
		return "", false
	}

	var extra string
	switch i.kind.category {
	case CategoryCraft:
		if r != nil && len(i.Targets) > 0 {
			if name, ok := r.ItemName(i.Targets[0]); ok {
				extra = name
			}
		}
	case CategoryRead:
		if r != nil && len(i.Targets) > 0 {
			extra = readingProgress(r, p, i.Targets[0])
		}
	case CategoryExcavation, CategoryDig:
		if i.MovesTotal > 0 {
			extra = fmt.Sprintf("%d%%", (i.MovesTotal-i.MovesLeft)*100/i.MovesTotal)
		}
	case CategoryBuild:
		if r != nil && i.MovesTotal > 0 {
			if counter, ok := r.ConstructionCounter(i.Placement); ok {
				extra = fmt.Sprintf("%d%%", min(counter, constructionCounterCap)/constructionPercentDiv)
			}
		}
	}

	verb := sprintf(p, i.kind.verb)
	if extra == "" {
		return sprintf(p, MsgProgressNoInfo, verb), true
	}
	return sprintf(p, MsgProgressWithInfo, verb, extra), true
}

func readingProgress(r ProgressReader, p Printer, t Target) string {
	book, ok := r.Book(t)
	if !ok || book.Skill == "" {
		return ""
	}
	skill := r.Skill(book.Skill)
	if skill.Level >= book.Level || !skill.Trainable || !r.HasIdentified(book.TypeID) {
		return ""
	}
	name := book.SkillName
	if name == "" {
		name = book.Skill
	}
	return sprintf(p, MsgReadingProgress, name, skill.Level, skill.Level+1, skill.Exercise)
}
